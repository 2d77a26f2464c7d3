package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/jobguard/internal/fetch"
	"github.com/nao1215/jobguard/internal/model"
)

// DBFileName is the name of the history database inside the data directory.
const DBFileName = "jobguard.db"

// timestampLayout is the stored timestamp format. Fixed-width UTC so that
// text ordering equals time ordering.
const timestampLayout = "2006-01-02 15:04:05.000000"

// ErrEmptyURL is returned when a report is saved without a URL or text.
var ErrEmptyURL = errors.New("report needs a URL or text")

// HistoryDB provides SQLite-based storage for analyses and scam reports.
//
// Design decision: Analyses are stored with their full classifier result as
// JSON plus a few indexed columns. Listing history reads only the columns,
// and the JSON is decoded when a single analysis is shown.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// now returns the current time. Replaced in tests.
	now func() time.Time
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so `jobguard history` can read
	// while a batch scan writes.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a scan first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	-- Analyses store one classifier verdict per scanned page
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		title TEXT,
		text TEXT NOT NULL,
		prediction TEXT NOT NULL,
		score INTEGER NOT NULL,
		confidence REAL DEFAULT 0,
		highlighted INTEGER DEFAULT 0,
		result_json TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_url ON analyses(url);
	CREATE INDEX IF NOT EXISTS idx_analyses_timestamp ON analyses(timestamp);

	-- Reports store postings submitted as scams
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT,
		text TEXT,
		feedback TEXT,
		status TEXT,
		message TEXT,
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_url ON reports(url);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// AnalysisRecord is a stored analysis.
type AnalysisRecord struct {
	ID          string
	URL         string
	Title       string
	Text        string
	Prediction  string
	Score       int
	Confidence  float64
	Highlighted int
	Timestamp   time.Time

	// Result is the full classifier response. It is only loaded by
	// GetAnalysis and LatestAnalysis.
	Result *model.AnalysisResult
}

// Verdict returns the display band of the stored score.
func (r *AnalysisRecord) Verdict() model.Verdict {
	return (&model.AnalysisResult{Score: r.Score}).Verdict()
}

// SaveAnalysis stores the classifier result of a scan and returns the new
// record ID. Scans without a result are rejected. Page URLs are stored
// normalized (see fetch.NormalizeURL) so that lookups match however the
// URL was typed.
func (h *HistoryDB) SaveAnalysis(ctx context.Context, scan *model.PageScan) (string, error) {
	if scan == nil || scan.Result == nil {
		return "", errors.New("scan has no analysis result")
	}

	resultJSON, err := json.Marshal(scan.Result)
	if err != nil {
		return "", fmt.Errorf("failed to serialize result: %w", err)
	}

	highlighted := 0
	if scan.Highlight != nil {
		highlighted = scan.Highlight.Highlighted
	}

	id := uuid.NewString()
	query := `
	INSERT INTO analyses (id, url, title, text, prediction, score, confidence, highlighted, result_json, timestamp)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = h.db.ExecContext(ctx, query,
		id,
		fetch.NormalizeURL(scan.Source()),
		scan.Title,
		scan.Text,
		scan.Result.Prediction,
		scan.Result.Score,
		scan.Result.Confidence,
		highlighted,
		string(resultJSON),
		h.timestamp(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save analysis: %w", err)
	}

	return id, nil
}

// GetAnalysis retrieves an analysis by ID. It returns nil when not found.
// A unique ID prefix (as printed by `jobguard history`) is accepted.
func (h *HistoryDB) GetAnalysis(ctx context.Context, id string) (*AnalysisRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}

	query := analysisColumns + `, result_json FROM analyses
	WHERE id = ? OR id LIKE ?
	ORDER BY timestamp DESC
	LIMIT 2
	`

	records, err := h.queryAnalyses(ctx, query, true, id, id+"%")
	if err != nil {
		return nil, err
	}
	switch len(records) {
	case 0:
		return nil, nil
	case 1:
		return &records[0], nil
	default:
		for i := range records {
			if records[i].ID == id {
				return &records[i], nil
			}
		}
		return nil, fmt.Errorf("analysis ID prefix %q is ambiguous", id)
	}
}

// LatestAnalysis returns the most recent analysis for url, or the most
// recent analysis of any page when url is empty. It returns nil when there
// is none.
func (h *HistoryDB) LatestAnalysis(ctx context.Context, url string) (*AnalysisRecord, error) {
	query := analysisColumns + `, result_json FROM analyses`
	args := make([]any, 0, 1)
	if url != "" {
		query += " WHERE url = ?"
		args = append(args, fetch.NormalizeURL(url))
	}
	query += " ORDER BY timestamp DESC, rowid DESC LIMIT 1"

	records, err := h.queryAnalyses(ctx, query, true, args...)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// ListOptions filters ListAnalyses.
type ListOptions struct {
	// URL restricts the list to one page.
	URL string

	// Limit caps the number of records. Zero means no limit.
	Limit int
}

// ListAnalyses returns stored analyses, newest first, without their full
// results.
func (h *HistoryDB) ListAnalyses(ctx context.Context, opts ListOptions) ([]AnalysisRecord, error) {
	query := analysisColumns + ` FROM analyses WHERE 1=1`
	args := make([]any, 0, 2)

	if opts.URL != "" {
		query += " AND url = ?"
		args = append(args, fetch.NormalizeURL(opts.URL))
	}

	query += " ORDER BY timestamp DESC, rowid DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	return h.queryAnalyses(ctx, query, false, args...)
}

const analysisColumns = `
	SELECT id, url, title, text, prediction, score, confidence, highlighted, timestamp`

func (h *HistoryDB) queryAnalyses(ctx context.Context, query string, withResult bool, args ...any) ([]AnalysisRecord, error) {
	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	records := make([]AnalysisRecord, 0)
	for rows.Next() {
		var rec AnalysisRecord
		var title sql.NullString
		var timestamp string
		var resultJSON string

		dest := []any{
			&rec.ID,
			&rec.URL,
			&title,
			&rec.Text,
			&rec.Prediction,
			&rec.Score,
			&rec.Confidence,
			&rec.Highlighted,
			&timestamp,
		}
		if withResult {
			dest = append(dest, &resultJSON)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}

		rec.Title = title.String
		rec.Timestamp = parseTimestamp(timestamp)

		if withResult {
			var result model.AnalysisResult
			if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
				return nil, fmt.Errorf("failed to parse result: %w", err)
			}
			rec.Result = &result
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// ReportRecord is a stored scam report.
type ReportRecord struct {
	ID        int64
	URL       string
	Text      string
	Feedback  string
	Status    string
	Message   string
	Timestamp time.Time
}

// SaveReport stores a submitted report together with the classifier's
// acknowledgement, which may be nil when submission failed.
func (h *HistoryDB) SaveReport(ctx context.Context, req model.ReportRequest, resp *model.ReportResponse) (int64, error) {
	if req.URL == "" && req.Text == "" {
		return 0, ErrEmptyURL
	}

	var status, message string
	if resp != nil {
		status = resp.Status
		message = resp.Message
	}

	query := `
	INSERT INTO reports (url, text, feedback, status, message, timestamp)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := h.db.ExecContext(ctx, query,
		req.URL,
		req.Text,
		req.UserFeedback,
		status,
		message,
		h.timestamp(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}

	return result.LastInsertId()
}

// ListReports returns stored reports, newest first. Zero limit means all.
func (h *HistoryDB) ListReports(ctx context.Context, limit int) ([]ReportRecord, error) {
	query := `
	SELECT id, url, text, feedback, status, message, timestamp
	FROM reports
	ORDER BY timestamp DESC, id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := make([]ReportRecord, 0)
	for rows.Next() {
		var rec ReportRecord
		var url, text, feedback, status, message sql.NullString
		var timestamp string

		if err := rows.Scan(&rec.ID, &url, &text, &feedback, &status, &message, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		rec.URL = url.String
		rec.Text = text.String
		rec.Feedback = feedback.String
		rec.Status = status.String
		rec.Message = message.String
		rec.Timestamp = parseTimestamp(timestamp)
		reports = append(reports, rec)
	}

	return reports, rows.Err()
}

// DeleteBefore removes analyses and reports older than cutoff and returns
// the number of removed rows.
func (h *HistoryDB) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ts := cutoff.UTC().Format(timestampLayout)

	var total int64
	for _, table := range []string{"analyses", "reports"} {
		result, err := h.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE timestamp < ?", ts) //nolint:gosec // table names are constants
		if err != nil {
			return total, fmt.Errorf("failed to prune %s: %w", table, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (h *HistoryDB) timestamp() string {
	return h.now().UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	"2006-01-02 15:04:05",  // SQLite default datetime format
	"2006-01-02T15:04:05Z", // ISO 8601 with Z suffix
	time.RFC3339,
	time.RFC3339Nano,
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
