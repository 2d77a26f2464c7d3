package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nao1215/jobguard/internal/classifier"
	"github.com/nao1215/jobguard/internal/config"
	"github.com/nao1215/jobguard/internal/database"
	"github.com/nao1215/jobguard/internal/log"
	"github.com/nao1215/jobguard/internal/signals"
	"github.com/spf13/cobra"
)

// apiKeyEnv is read when --api-key is not given.
const apiKeyEnv = "JOBGUARD_API_KEY"

// addClassifierFlags adds the flags shared by commands that call the
// classifier.
func addClassifierFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("api-url", "u", config.DefaultAPIURL,
		"Base URL of the classifier service")
	cmd.Flags().String("api-key", "",
		"API key for the classifier (default $"+apiKeyEnv+")")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for page downloads and classifier requests")
	cmd.Flags().StringP("config", "c", "",
		"Path to configuration file (default: .jobguard)")
}

// addTextFlags adds the extraction and highlighting limits.
func addTextFlags(cmd *cobra.Command) {
	cmd.Flags().Int("min-text", config.DefaultMinTextLength,
		"Minimum posting text length in characters")
	cmd.Flags().Int("max-text", config.DefaultMaxTextLength,
		"Maximum posting text length sent to the classifier")
	cmd.Flags().IntP("max-phrases", "n", config.DefaultMaxPhrases,
		"Maximum number of classifier phrases to highlight per page")
	cmd.Flags().Bool("no-signals", false,
		"Do not highlight local signals (crypto wallets, messenger contacts, free-mail addresses)")
}

// addHistoryFlags adds the history database flags.
func addHistoryFlags(cmd *cobra.Command, saveByDefault bool) {
	cmd.Flags().String("db-dir", "",
		"Directory of the history database (default: "+config.XDGDataDir()+")")
	if saveByDefault {
		cmd.Flags().Bool("no-save", false, "Do not record results in the history database")
	} else {
		cmd.Flags().Bool("save", false, "Record results in the history database")
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the command logger. Page text and API keys are
// masked by the secure handler.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	return log.NewSecureLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command, logger *slog.Logger) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// buildConfig creates a Config from the flags the command defines and the
// configuration file. Flags changed from their defaults win over the file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Targets = args

	if err := stringFlag(cmd, "api-url", &cfg.APIURL); err != nil {
		return nil, err
	}
	if err := stringFlag(cmd, "api-key", &cfg.APIKey); err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(apiKeyEnv)
	}
	if err := durationFlag(cmd, "timeout", &cfg.Timeout); err != nil {
		return nil, err
	}
	if err := intFlag(cmd, "min-text", &cfg.MinTextLength); err != nil {
		return nil, err
	}
	if err := intFlag(cmd, "max-text", &cfg.MaxTextLength); err != nil {
		return nil, err
	}
	if err := intFlag(cmd, "max-phrases", &cfg.MaxPhrases); err != nil {
		return nil, err
	}
	if err := intFlag(cmd, "batch", &cfg.BatchSize); err != nil {
		return nil, err
	}
	if err := stringFlag(cmd, "output-dir", &cfg.OutputDir); err != nil {
		return nil, err
	}
	if err := boolFlag(cmd, "json", &cfg.JSONReport); err != nil {
		return nil, err
	}
	if err := boolFlag(cmd, "markdown", &cfg.MarkdownReport); err != nil {
		return nil, err
	}
	if err := stringFlag(cmd, "output", &cfg.ReportFile); err != nil {
		return nil, err
	}
	if err := stringFlag(cmd, "listen", &cfg.ListenAddress); err != nil {
		return nil, err
	}

	noSignals := false
	if err := boolFlag(cmd, "no-signals", &noSignals); err != nil {
		return nil, err
	}
	cfg.Signals = !noSignals

	dbDir := ""
	if err := stringFlag(cmd, "db-dir", &dbDir); err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	switch {
	case cmd.Flags().Lookup("no-save") != nil:
		noSave, err := cmd.Flags().GetBool("no-save")
		if err != nil {
			return nil, err
		}
		cfg.SaveToDB = !noSave
	case cmd.Flags().Lookup("save") != nil:
		save, err := cmd.Flags().GetBool("save")
		if err != nil {
			return nil, err
		}
		cfg.SaveToDB = save
	}

	if err := stringFlag(cmd, "config", &cfg.ConfigFilePath); err != nil {
		return nil, err
	}
	if err := loadConfigFile(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadConfigFile applies the configuration file to cfg.
// If the user explicitly specified a path, a missing file is an error.
// Otherwise an empty configuration is used when no file is found.
func loadConfigFile(cfg *config.Config) error {
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	switch {
	case configPath != "":
		f, err := config.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(f)
	case explicitConfigPath:
		return fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.File = config.NewFile()
	}
	return nil
}

// newClassifier creates the classifier client for cfg.
func newClassifier(cfg *config.Config, logger *slog.Logger) (*classifier.Client, error) {
	return classifier.NewClient(cfg.APIURL,
		classifier.WithTimeout(cfg.Timeout),
		classifier.WithAPIKey(cfg.APIKey),
		classifier.WithUserAgent(cfg.UserAgent),
		classifier.WithLogger(logger),
	)
}

// warnIfUnavailable prints a warning when the classifier is not ready.
// Scans still run; pages fail individually with a clear error.
func warnIfUnavailable(ctx context.Context, cmd *cobra.Command, client *classifier.Client) {
	status := client.CheckService(ctx)
	if status == classifier.ServiceStatusOK {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Warning: classifier at %s: %s\n", client.BaseURL(), status)
}

// newSignalScanner returns the local signal scanner, or nil when cfg
// disables it.
func newSignalScanner(cfg *config.Config, logger *slog.Logger) *signals.Scanner {
	if !cfg.Signals {
		return nil
	}
	return signals.NewScanner(func(o *signals.Options) {
		o.Logger = logger
	})
}

// openHistory opens the history database when cfg enables it.
// It returns nil without error when saving is disabled.
func openHistory(cfg *config.Config) (*database.HistoryDB, error) {
	if !cfg.SaveToDB {
		return nil, nil
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return db, nil
}

// openHistoryForRead opens an existing history database.
func openHistoryForRead(cfg *config.Config) (*database.HistoryDB, error) {
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	return database.Open(cfg.DBDir, opts)
}

func stringFlag(cmd *cobra.Command, name string, dst *string) error {
	if cmd.Flags().Lookup(name) == nil {
		return nil
	}
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func intFlag(cmd *cobra.Command, name string, dst *int) error {
	if cmd.Flags().Lookup(name) == nil {
		return nil
	}
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func boolFlag(cmd *cobra.Command, name string, dst *bool) error {
	if cmd.Flags().Lookup(name) == nil {
		return nil
	}
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func durationFlag(cmd *cobra.Command, name string, dst *time.Duration) error {
	if cmd.Flags().Lookup(name) == nil {
		return nil
	}
	v, err := cmd.Flags().GetDuration(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// errScansFailed is returned when at least one page could not be scanned.
var errScansFailed = errors.New("some pages could not be scanned")
