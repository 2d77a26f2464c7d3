package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nao1215/jobguard/internal/config"
	"github.com/nao1215/jobguard/internal/extract"
	"github.com/nao1215/jobguard/internal/fetch"
	"github.com/nao1215/jobguard/internal/model"
	"github.com/nao1215/jobguard/internal/pipeline"
	"github.com/spf13/cobra"
)

// errNothingToReport is returned when neither a page nor --text is given.
var errNothingToReport = errors.New("specify a posting URL or file, or the posting text with --text")

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [url|file]",
		Short: "Report a job posting as a scam",
		Long: `Report sends a job posting to the classifier service as a confirmed or
suspected scam, together with an optional comment. Reports help improve
the classifier and are kept in the local history.

Examples:
  jobguard report https://jobs.example.com/postings/123 -f "Asked for a training fee"
  jobguard report --text "Pay $50 registration to start today" -f "Seen on a chat group"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runReportCmd,
	}

	addClassifierFlags(cmd)
	addHistoryFlags(cmd, true)

	cmd.Flags().StringP("feedback", "f", "", "Why you think the posting is a scam")
	cmd.Flags().String("text", "", "Report this posting text instead of loading a page")
	cmd.Flags().Int("max-text", config.DefaultMaxTextLength,
		"Maximum posting text length sent to the classifier")

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	// Reported text can be short; the classifier decides.
	cfg.MinTextLength = 0
	if err := cfg.ValidateRuntime(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	feedback, err := cmd.Flags().GetString("feedback")
	if err != nil {
		return err
	}
	text, err := cmd.Flags().GetString("text")
	if err != nil {
		return err
	}

	logger := setupLogger(cmd)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(cmd, logger)
	defer cancel()

	req := model.ReportRequest{
		Text:         strings.TrimSpace(text),
		UserFeedback: strings.TrimSpace(feedback),
	}
	if len(cfg.Targets) > 0 {
		scan, err := loadPostingText(ctx, cfg, logger, cfg.Targets[0])
		if err != nil {
			return err
		}
		req.URL = scan.Source()
		if req.Text == "" {
			req.Text = scan.Text
		}
	}
	if req.Text == "" {
		return errNothingToReport
	}

	client, err := newClassifier(cfg, logger)
	if err != nil {
		return err
	}

	resp, submitErr := client.Report(ctx, req)

	db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		if _, err := db.SaveReport(ctx, req, resp); err != nil {
			logger.Warn("failed to record report", "error", err)
		}
	}

	if submitErr != nil {
		return fmt.Errorf("failed to submit report: %w", submitErr)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Report %s", resp.Status)
	if resp.Message != "" {
		fmt.Fprintf(out, ": %s", resp.Message)
	}
	fmt.Fprintln(out)
	return nil
}

// loadPostingText loads target and extracts its posting text.
func loadPostingText(ctx context.Context, cfg *config.Config, logger *slog.Logger, target string) (*model.PageScan, error) {
	fetcher := fetch.New(
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithHeaders(func(host string) map[string]string {
			return cfg.File.GetSiteConfig(host).Headers
		}),
		fetch.WithLogger(logger),
	)

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewLoadStep(fetcher, pipeline.WithLoadLogger(logger)),
		pipeline.NewExtractStep(extract.New(
			extract.WithMinLength(cfg.MinTextLength),
			extract.WithMaxLength(cfg.MaxTextLength),
		)),
	)

	scan := model.NewPageScan(target)
	if err := p.Execute(ctx, scan); err != nil {
		return nil, err
	}
	return scan, nil
}
