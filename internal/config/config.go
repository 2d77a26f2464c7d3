package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultAPIURL is the address of a locally running classifier.
	DefaultAPIURL = "http://localhost:8000"

	// DefaultTimeout bounds each classifier call and page download.
	DefaultTimeout = 30 * time.Second

	// DefaultMinTextLength is the shortest page text worth analysing.
	// Shorter pages are usually navigation shells or error pages.
	DefaultMinTextLength = 50

	// DefaultMaxTextLength caps the text sent to the classifier, in runes.
	DefaultMaxTextLength = 5000

	// DefaultMaxPhrases is the number of classifier phrases highlighted per page.
	DefaultMaxPhrases = 10

	// DefaultBatchSize is the number of pages scanned concurrently.
	// The classifier is usually a single local process, so keep this small.
	DefaultBatchSize = 4

	// DefaultUserAgent identifies jobguard when downloading postings.
	DefaultUserAgent = "jobguard/1.0 (+https://github.com/nao1215/jobguard)"

	// DefaultMaxBodySize limits the size of downloaded pages.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultListenAddress is where `jobguard serve` listens.
	DefaultListenAddress = "127.0.0.1:8080"

	// AppName is the application name used for XDG directory paths.
	AppName = "jobguard"
)

// Config holds all runtime options. It is built from CLI flags and the
// optional config file, then passed down explicitly.
type Config struct {
	// APIURL is the base URL of the classifier API.
	APIURL string

	// APIKey is sent as X-Api-Key when set.
	APIKey string

	// Timeout applies to each HTTP request.
	Timeout time.Duration

	// MinTextLength is the minimum trimmed page text length in runes.
	MinTextLength int

	// MaxTextLength is the maximum page text length in runes.
	MaxTextLength int

	// MaxPhrases caps the classifier phrases highlighted per page.
	MaxPhrases int

	// BatchSize is the number of pages scanned concurrently.
	BatchSize int

	// Signals enables local signal detection (crypto wallets, messenger
	// contacts, free-mail recruiters) alongside the classifier.
	Signals bool

	// UserAgent is sent when downloading pages.
	UserAgent string

	// MaxBodySize is the maximum downloaded page size in bytes.
	MaxBodySize int64

	// OutputDir receives the highlighted HTML of each scanned page.
	// Empty means the highlighted pages are not written.
	OutputDir string

	// DBDir is the directory of the history database.
	DBDir string

	// SaveToDB enables recording analyses in the history database.
	SaveToDB bool

	// JSONReport selects JSON report output.
	JSONReport bool

	// MarkdownReport selects Markdown report output.
	MarkdownReport bool

	// ReportFile redirects the report from stdout to a file.
	ReportFile string

	// ListenAddress is the address of the HTTP server.
	ListenAddress string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the explicit config file path, if any.
	ConfigFilePath string

	// File holds the loaded config file.
	File *File

	// Targets are the URLs or file paths to scan.
	Targets []string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		APIURL:        DefaultAPIURL,
		Timeout:       DefaultTimeout,
		MinTextLength: DefaultMinTextLength,
		MaxTextLength: DefaultMaxTextLength,
		MaxPhrases:    DefaultMaxPhrases,
		BatchSize:     DefaultBatchSize,
		Signals:       true,
		UserAgent:     DefaultUserAgent,
		MaxBodySize:   DefaultMaxBodySize,
		ListenAddress: DefaultListenAddress,
		DBDir:         XDGDataDir(),
		File:          NewFile(),
	}
}

// XDGDataDir returns the XDG data directory for jobguard.
// On Linux: ~/.local/share/jobguard
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for jobguard.
// On Linux: ~/.config/jobguard
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ApplyFile copies API settings from the config file into c. Values already
// changed from their defaults (by flags) win over the file.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.File = f

	if f.API.URL != "" && c.APIURL == DefaultAPIURL {
		c.APIURL = f.API.URL
	}
	if f.API.Key != "" && c.APIKey == "" {
		c.APIKey = f.API.Key
	}
	if f.API.Timeout > 0 && c.Timeout == DefaultTimeout {
		c.Timeout = f.API.Timeout
	}
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	return c.ValidateRuntime()
}

// ValidateRuntime checks everything except the target list. Commands that
// do not take targets (serve) use it directly.
func (c *Config) ValidateRuntime() error {
	if c.APIURL == "" {
		return ErrNoAPIURL
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MinTextLength < 0 {
		return ErrInvalidMinTextLength
	}
	if c.MaxTextLength <= 0 || c.MaxTextLength < c.MinTextLength {
		return ErrInvalidMaxTextLength
	}
	if c.MaxPhrases < 0 {
		return ErrInvalidMaxPhrases
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}
