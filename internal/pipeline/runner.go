package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/rpattn/gamesetl/internal/storage"

	"github.com/google/uuid"
)

// StageResult describes a completed stage.
type StageResult struct {
	Name      string
	Artifacts []string
	Duration  time.Duration
}

// Report is the outcome of a run.
type Report struct {
	RunID  string
	Stages []StageResult
}

// Runner executes stages strictly in order and stops at the first failure.
type Runner struct {
	runID     string
	publisher storage.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option {
	return func(r *Runner) {
		if id != "" {
			r.runID = id
		}
	}
}

// WithPublisher receives each stage's artifacts after it succeeds.
func WithPublisher(p storage.Publisher) Option {
	return func(r *Runner) {
		if p != nil {
			r.publisher = p
		}
	}
}

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// NewRunner creates a runner with a fresh run id and no publication.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		runID:     NewRunID(),
		publisher: storage.NopPublisher{},
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("run_id", r.runID)
	return r
}

// RunID returns the id stamped on this run.
func (r *Runner) RunID() string {
	return r.runID
}

// Run executes stages in order. The first failing stage, cancellation or
// publication error ends the run with a *StageError; the report still lists
// the stages that completed.
func (r *Runner) Run(ctx context.Context, stages ...Stage) (Report, error) {
	report := Report{RunID: r.runID}
	r.logger.Info("run started", "stages", len(stages))

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return report, NewStageError(r.runID, stage.Name(), "execute", err)
		}

		r.logger.Info("stage started", "stage", stage.Name())
		start := r.now()
		artifacts, err := stage.Run(ctx)
		duration := r.now().Sub(start)
		if err != nil {
			r.logger.Error("stage failed", "stage", stage.Name(), "duration", duration, "error", err)
			return report, NewStageError(r.runID, stage.Name(), "execute", err)
		}

		if err := r.publisher.Publish(ctx, artifacts); err != nil {
			return report, NewStageError(r.runID, stage.Name(), "publish", err)
		}

		report.Stages = append(report.Stages, StageResult{Name: stage.Name(), Artifacts: artifacts, Duration: duration})
		r.logger.Info("stage completed", "stage", stage.Name(), "duration", duration, "artifacts", len(artifacts))
	}

	r.logger.Info("run completed")
	return report, nil
}
