package main

import (
	"fmt"
	"time"

	"github.com/nao1215/jobguard/internal/config"
	"github.com/nao1215/jobguard/internal/database"
	"github.com/nao1215/jobguard/internal/model"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of entries listed by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command and its subcommands.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previous checks and reports",
		Long: `History lists the job postings checked before, newest first.

Examples:
  # Recent checks
  jobguard history

  # Checks of one posting
  jobguard history --url https://jobs.example.com/postings/123

  # Full result of one check (the ID prefix is enough)
  jobguard history show 3f9a2c1b

  # Delete entries older than 90 days
  jobguard history prune --older-than 2160h`,
		Args: cobra.NoArgs,
		RunE: runHistoryListCmd,
	}

	cmd.PersistentFlags().String("db-dir", "", "Directory of the history database")
	cmd.Flags().String("url", "", "Only list checks of this URL")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of entries (0 for all)")

	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryReportsCmd())
	cmd.AddCommand(newHistoryPruneCmd())

	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the full result of a previous check",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShowCmd,
	}
	cmd.Flags().BoolP("json", "j", false, "Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false, "Output in Markdown format")
	return cmd
}

func newHistoryReportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List submitted scam reports",
		Args:  cobra.NoArgs,
		RunE:  runHistoryReportsCmd,
	}
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of entries (0 for all)")
	return cmd
}

func newHistoryPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old checks and reports",
		Args:  cobra.NoArgs,
		RunE:  runHistoryPruneCmd,
	}
	cmd.Flags().Duration("older-than", 30*24*time.Hour, "Delete entries older than this")
	return cmd
}

// historyConfig reads the history flags. The configuration file only
// holds classifier and site settings, so it is not loaded here.
func historyConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	dbDir := ""
	if err := stringFlag(cmd, "db-dir", &dbDir); err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}
	if err := boolFlag(cmd, "json", &cfg.JSONReport); err != nil {
		return nil, err
	}
	if err := boolFlag(cmd, "markdown", &cfg.MarkdownReport); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openHistoryFromFlags opens the existing history database.
func openHistoryFromFlags(cmd *cobra.Command) (*database.HistoryDB, error) {
	cfg, err := historyConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openHistoryForRead(cfg)
}

// runHistoryListCmd lists stored analyses.
func runHistoryListCmd(cmd *cobra.Command, _ []string) error {
	url, err := cmd.Flags().GetString("url")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	db, err := openHistoryFromFlags(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.ListAnalyses(cmd.Context(), database.ListOptions{URL: url, Limit: limit})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No checks found")
		return nil
	}

	fmt.Fprintf(out, "Previous checks (%d):\n\n", len(records))
	fmt.Fprintf(out, "  %-8s  %-19s  %-7s  %5s  %6s  %s\n", "ID", "Date", "Verdict", "Score", "Marked", "Page")
	for _, r := range records {
		fmt.Fprintf(out, "  %-8s  %-19s  %-7s  %5d  %6d  %s\n",
			shortID(r.ID),
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			r.Verdict(),
			r.Score,
			r.Highlighted,
			pageLabel(r.URL, r.Title),
		)
	}
	return nil
}

// runHistoryShowCmd prints one stored analysis as a report.
func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	db, err := openHistoryFromFlags(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	record, err := db.GetAnalysis(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("no check with ID %s", args[0])
	}

	cfg, err := historyConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return config.ErrConflictingReportFormats
	}

	_, err = newReportWriter(cfg, cmd.OutOrStdout(), cmd.OutOrStdout()).Write(recordScan(record))
	return err
}

// recordScan rebuilds the scan a stored analysis came from. The
// highlighted page itself is not stored.
func recordScan(r *database.AnalysisRecord) *model.PageScan {
	scan := model.NewPageScan(r.URL)
	scan.URL = r.URL
	scan.Title = r.Title
	scan.Text = r.Text
	scan.DateScanned = r.Timestamp
	scan.AnalysisID = r.ID
	scan.Result = r.Result
	return scan
}

// runHistoryReportsCmd lists stored scam reports.
func runHistoryReportsCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	db, err := openHistoryFromFlags(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	reports, err := db.ListReports(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(reports) == 0 {
		fmt.Fprintln(out, "No reports found")
		return nil
	}

	fmt.Fprintf(out, "Submitted reports (%d):\n\n", len(reports))
	fmt.Fprintf(out, "  %-5s  %-19s  %-10s  %s\n", "ID", "Date", "Status", "Page")
	for _, r := range reports {
		status := r.Status
		if status == "" {
			status = "failed"
		}
		fmt.Fprintf(out, "  %-5d  %-19s  %-10s  %s\n",
			r.ID,
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			status,
			pageLabel(r.URL, r.Text),
		)
		if r.Feedback != "" {
			fmt.Fprintf(out, "         %s\n", truncate(r.Feedback, 70))
		}
	}
	return nil
}

// runHistoryPruneCmd deletes old entries.
func runHistoryPruneCmd(cmd *cobra.Command, _ []string) error {
	olderThan, err := cmd.Flags().GetDuration("older-than")
	if err != nil {
		return err
	}
	if olderThan <= 0 {
		return fmt.Errorf("--older-than must be positive, got %s", olderThan)
	}

	db, err := openHistoryFromFlags(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	cutoff := time.Now().Add(-olderThan)
	n, err := db.DeleteBefore(cmd.Context(), cutoff)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d entries older than %s\n", n, cutoff.Local().Format("2006-01-02 15:04"))
	return nil
}

// shortID returns the ID prefix shown in listings.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// pageLabel returns url, or fallback when the entry has no URL.
func pageLabel(url, fallback string) string {
	if url != "" {
		return url
	}
	return truncate(fallback, 60)
}

// truncate shortens s to maxRunes runes.
func truncate(s string, maxRunes int) string {
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	return string(r[:maxRunes-3]) + "..."
}
