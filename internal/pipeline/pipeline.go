package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/jobguard/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the scan
// accumulated by previous steps.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state (clients, limits)
// 2. It provides a Name() method for logging and the performed step list
type Step interface {
	// Do executes the pipeline step.
	// It returns an error if the scan cannot continue. A step that decides
	// the page should not be scanned sets scan.Skipped and returns nil.
	Do(ctx context.Context, scan *model.PageScan) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
// Cancellation is checked before each step; steps handle their own
// timeouts. A step that marks the scan as skipped ends the run without
// error.
//
// The run stops at the first failing step, whose error is recorded in
// the scan and returned.
//
// Design decision: There is no continue-on-error mode. Every step of a
// page scan needs the previous one's output (no text, no verdict; no
// verdict, nothing to highlight).
func (p *Pipeline) Execute(ctx context.Context, scan *model.PageScan) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			scan.TimedOut = true
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"target", scan.Target,
		)

		if err := step.Do(ctx, scan); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"target", scan.Target,
				"error", err,
			)

			scan.Error = err
			scan.ErrorMessage = err.Error()
			return err
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"target", scan.Target,
		)

		scan.PerformedSteps = append(scan.PerformedSteps, step.Name())

		if scan.Skipped {
			p.logger.Info("scan skipped by site configuration",
				"step", step.Name(),
				"target", scan.Target,
			)
			return nil
		}
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
