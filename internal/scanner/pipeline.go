package scanner

import (
	"context"
	"log/slog"
)

// Step is one stage of a scan. Steps run in sequence, and each one sees the
// job as left by the steps before it.
//
// Design decision: Steps are an interface rather than plain functions so
// that each one can carry its collaborators (classifier, store, notifier)
// and report a Name() for logging. The Service assembles them per scan.
type Step interface {
	// Do executes the step.
	// A returned error stops the pipeline. Failures the user can live with
	// (enrichment, persistence) are recorded in the job and return nil.
	Do(ctx context.Context, job *ScanJob) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline executes steps in order and records which of them ran.
// A Pipeline is built for one job and is not safe for concurrent use.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline creates an empty Pipeline.
// Steps are added with AddStep after creation.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}

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

// Execute runs the steps in sequence and appends the name of every step
// that completed to job.PerformedSteps.
//
// Design decision: Cancellation is checked before each step, never during
// one. Steps that block (WHOIS lookups, database writes) receive ctx and
// honour it themselves, so a classified job is never left half-enriched.
//
// Returns ctx.Err() when cancelled between steps, or the first step error.
// Whatever the earlier steps wrote to job stays in place either way.
func (p *Pipeline) Execute(ctx context.Context, job *ScanJob) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("scan cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"url", job.URL,
		)

		if err := step.Do(ctx, job); err != nil {
			p.logger.Debug("step failed",
				"step", step.Name(),
				"url", job.URL,
				"error", err,
			)
			return err
		}

		job.PerformedSteps = append(job.PerformedSteps, step.Name())
	}

	return nil
}
