package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/jobguard/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of pages scanned at once when
// WithConcurrency is not given.
const DefaultConcurrency = 4

// BatchProcessor scans multiple pages concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline so that the Pipeline stays focused on a single
// page and each page gets a fresh Pipeline from the factory.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each scan.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent scans.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent scans.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch scans targets concurrently and returns one PageScan per
// target in input order.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
//
// A failed page does not stop the batch; its error is recorded on its
// PageScan. The returned error is only set when ctx was cancelled, in which
// case scans that never started are nil.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]*model.PageScan, error) {
	results := make([]*model.PageScan, len(targets))
	err := bp.ProcessBatchWithCallback(ctx, targets, func(scan *model.PageScan, index int) {
		// Each goroutine writes a distinct index.
		results[index] = scan
	})
	return results, err
}

// ProcessBatchWithCallback scans targets and calls callback for each
// completed scan. The callback is called from the goroutine that completed
// the scan, so it must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []string,
	callback func(scan *model.PageScan, index int),
) error {
	bp.logger.Info("starting batch processing",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("scanning page",
				"target", target,
				"index", i+1,
				"total", len(targets),
			)

			scan := model.NewPageScan(target)
			pipeline := bp.pipelineFactory()
			if err := pipeline.Execute(ctx, scan); err != nil {
				bp.logger.Warn("scan failed",
					"target", target,
					"error", err,
				)
			} else if scan.Result != nil {
				bp.logger.Info("scan completed",
					"target", target,
					"prediction", scan.Result.Prediction,
					"score", scan.Result.Score,
				)
			}

			callback(scan, i)

			// Errors are recorded in the scan so the other pages continue.
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch processing complete",
		"total_targets", len(targets),
		"elapsed", time.Since(startTime),
	)

	return err
}
