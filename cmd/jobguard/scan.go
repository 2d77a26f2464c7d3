package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/nao1215/jobguard/internal/config"
	"github.com/nao1215/jobguard/internal/fetch"
	"github.com/nao1215/jobguard/internal/model"
	"github.com/nao1215/jobguard/internal/pipeline"
	"github.com/nao1215/jobguard/internal/report"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url|file]...",
		Short: "Check job postings and highlight suspicious phrases",
		Long: `Scan downloads each job posting (or reads a saved HTML file), sends its text
to the classifier and highlights the suspicious phrases in the page.

A report with the trust score, red flags and highlighted phrases is printed
for every page. With --output-dir the highlighted pages are written as HTML
files that can be opened in a browser.

Examples:
  # Check a posting
  jobguard scan https://jobs.example.com/postings/123

  # Check saved pages and write highlighted copies
  jobguard scan --glob 'saved/**/*.html' -O highlighted

  # JSON report for several postings, four at a time
  jobguard scan -j -b 4 https://a.example.com/job/1 https://b.example.com/job/2`,
		RunE: runScanCmd,
	}

	addClassifierFlags(cmd)
	addTextFlags(cmd)
	addHistoryFlags(cmd, true)

	cmd.Flags().StringSliceP("glob", "g", nil,
		"Glob pattern for local HTML files (e.g. 'pages/**/*.html'), repeatable")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of pages to scan concurrently")
	cmd.Flags().StringP("output-dir", "O", "",
		"Directory for highlighted HTML pages (not written when empty)")
	cmd.Flags().BoolP("json", "j", false,
		"Output report in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output report in Markdown format")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to file; JSON and Markdown reports also print a text summary to stdout")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	patterns, err := cmd.Flags().GetStringSlice("glob")
	if err != nil {
		return err
	}
	if len(patterns) > 0 {
		matches, err := fetch.ExpandGlobs(patterns...)
		if err != nil {
			return err
		}
		cfg.Targets = append(cfg.Targets, matches...)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(cmd, logger)
	defer cancel()

	return runScan(ctx, cmd, cfg, logger)
}

// runScan scans every target and writes one report per page.
func runScan(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scan",
		"targets", len(cfg.Targets),
		"api_url", cfg.APIURL,
		"batch_size", cfg.BatchSize,
	)

	client, err := newClassifier(cfg, logger)
	if err != nil {
		return err
	}
	warnIfUnavailable(ctx, cmd, client)

	db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	out, closeOut, err := reportOutput(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeOut()
	writer := newReportWriter(cfg, out, cmd.OutOrStdout())

	fetcher := fetch.New(
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithHeaders(func(host string) map[string]string {
			return cfg.File.GetSiteConfig(host).Headers
		}),
		fetch.WithLogger(logger),
	)

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineTextLimits(cfg.MinTextLength, cfg.MaxTextLength),
		pipeline.WithPipelineMaxPhrases(cfg.MaxPhrases),
		pipeline.WithPipelineOutputDir(cfg.OutputDir),
		pipeline.WithPipelineSites(cfg.File),
		pipeline.WithPipelineLogger(logger),
	}
	if db != nil {
		configOpts = append(configOpts, pipeline.WithPipelineStore(db))
	}
	if scanner := newSignalScanner(cfg, logger); scanner != nil {
		configOpts = append(configOpts, pipeline.WithPipelineSignals(scanner))
	}
	factory := func() *pipeline.Pipeline {
		return pipeline.DefaultPipeline(fetcher, client,
			[]pipeline.Option{pipeline.WithLogger(logger)}, configOpts...)
	}

	concurrency := min(cfg.BatchSize, len(cfg.Targets))
	bp := pipeline.NewBatchProcessor(factory,
		pipeline.WithConcurrency(concurrency),
		pipeline.WithBatchLogger(logger),
	)

	var (
		mu     sync.Mutex
		failed int
		werr   error
	)
	progress := cmd.ErrOrStderr()
	err = bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(scan *model.PageScan, _ int) {
		mu.Lock()
		defer mu.Unlock()

		if scan.Failed() {
			failed++
			fmt.Fprintf(progress, "✗ %s: %s\n", scan.Target, scan.ErrorMessage)
		}
		if _, err := writer.Write(scan); err != nil && werr == nil {
			werr = fmt.Errorf("failed to write report: %w", err)
		}
	})
	if err != nil {
		return err
	}
	if werr != nil {
		return werr
	}

	if cfg.ReportFile != "" {
		fmt.Fprintf(progress, "Report written to %s\n", cfg.ReportFile)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d failed", errScansFailed, failed, len(cfg.Targets))
	}
	return nil
}

// reportOutput returns the report destination. Reports may quote page
// text, so report files are created with owner-only permissions.
func reportOutput(cmd *cobra.Command, cfg *config.Config) (io.Writer, func(), error) {
	if cfg.ReportFile == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// newReportWriter picks the report format requested by cfg. A JSON or
// Markdown report going to a file is paired with a text report on the
// terminal.
func newReportWriter(cfg *config.Config, out, terminal io.Writer) report.Writer {
	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewFullJSONWriter(out, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}

	if cfg.ReportFile == "" {
		return w
	}
	return report.NewMultiWriter(w, report.NewSimpleWriter(terminal, report.WithVerbose(cfg.Verbose)))
}
