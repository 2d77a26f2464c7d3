package main

import (
	"fmt"
	"log/slog"

	"github.com/nao1215/jobguard/internal/config"
	"github.com/nao1215/jobguard/internal/extract"
	"github.com/nao1215/jobguard/internal/log"
	"github.com/nao1215/jobguard/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the highlighting HTTP service",
		Long: `Serve starts an HTTP service that a browser extension or another tool can
send pages to.

Endpoints:
  GET  /health     service and classifier status
  POST /highlight  {"html": "...", "phrases": [...]} -> highlighted page
  POST /message    {"html": "...", "message": {"action": "highlight", ...}}
  POST /scan       {"html": "...", "url": "..."} -> analysis and highlighted page

/scan needs the classifier. With --offline only /highlight and /message
are useful.

Examples:
  jobguard serve
  jobguard serve -l 0.0.0.0:9090 --save`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	addClassifierFlags(cmd)
	addTextFlags(cmd)
	addHistoryFlags(cmd, false)

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddress, "Address to listen on")
	cmd.Flags().Bool("offline", false, "Do not connect to the classifier")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd, nil)
	if err != nil {
		return err
	}
	if err := cfg.ValidateRuntime(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	offline, err := cmd.Flags().GetBool("offline")
	if err != nil {
		return err
	}

	logger := log.NewSecureJSONLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(cmd, logger)
	defer cancel()

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithSites(cfg.File),
		server.WithMaxPhrases(cfg.MaxPhrases),
		server.WithExtractor(extract.New(
			extract.WithMinLength(cfg.MinTextLength),
			extract.WithMaxLength(cfg.MaxTextLength),
		)),
		server.WithVersion(getVersion()),
	}

	if !offline {
		client, err := newClassifier(cfg, logger)
		if err != nil {
			return err
		}
		warnIfUnavailable(ctx, cmd, client)
		opts = append(opts, server.WithAnalyzer(client), server.WithServiceChecker(client))
	}

	db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if scanner := newSignalScanner(cfg, logger); scanner != nil {
		opts = append(opts, server.WithSignals(scanner))
	}
	if db != nil {
		defer db.Close()
		opts = append(opts, server.WithStore(db))
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "jobguard listening on http://%s\n", cfg.ListenAddress)
	return server.New(opts...).ListenAndServe(ctx, cfg.ListenAddress)
}
