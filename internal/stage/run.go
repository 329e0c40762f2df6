package stage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"discflight/internal/logging"
	"discflight/internal/services"
	"discflight/internal/store"
)

// RunRecorder persists run-status records.
type RunRecorder interface {
	RecordRun(ctx context.Context, run store.Run) error
}

// Options controls a single stage execution.
type Options struct {
	Logger   *slog.Logger
	Recorder RunRecorder
	Runner   Runner
	// Now is overridable in tests.
	Now func() time.Time
}

// Execute runs one stage invocation under a fresh run ID. A "running" record
// is stored before the stage starts and replaced with the outcome afterwards,
// so concurrent runs each own their status record. The returned run is
// populated on failure as well.
func Execute(ctx context.Context, opts Options) (store.Run, error) {
	if opts.Runner == nil {
		return store.Run{}, errors.New("stage runner unavailable")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	name := opts.Runner.Name()
	run := store.Run{
		ID:        uuid.NewString(),
		Stage:     name,
		StartedAt: now().UTC(),
		Outcome:   store.OutcomeRunning,
	}

	stageCtx := services.WithStage(services.WithRunID(ctx, run.ID), name)
	stageLogger := logging.WithContext(stageCtx, logger)

	stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))
	persist(stageCtx, stageLogger, opts.Recorder, run)

	result, runErr := opts.Runner.Run(stageCtx)

	finished := now().UTC()
	run.FinishedAt = &finished
	run.Counts = result.Counts
	if runErr != nil {
		run.Outcome = store.OutcomeFailed
		run.Message = strings.TrimSpace(runErr.Error())
		logging.ErrorWithContext(stageLogger, "stage failed", "stage_failure",
			logging.String(logging.FieldErrorHint, errorHint(runErr)),
			logging.Duration("duration", finished.Sub(run.StartedAt)),
			logging.String("counts", CountsSummary(result.Counts)),
			logging.Error(runErr),
		)
		persist(stageCtx, stageLogger, opts.Recorder, run)
		return run, runErr
	}

	run.Outcome = store.OutcomeSucceeded
	run.Message = result.Message
	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("duration", finished.Sub(run.StartedAt)),
		logging.String("counts", CountsSummary(result.Counts)),
		logging.String("message", result.Message),
	)
	persist(stageCtx, stageLogger, opts.Recorder, run)
	return run, nil
}

// Status records are advisory; a failure to store one never fails the run.
func persist(ctx context.Context, logger *slog.Logger, recorder RunRecorder, run store.Run) {
	if recorder == nil {
		return
	}
	if err := recorder.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		logging.WarnWithContext(logger, "failed to record run status", "run_record_failed",
			logging.String(logging.FieldErrorHint, "check database permissions and disk space"),
			logging.String(logging.FieldImpact, fmt.Sprintf("last-run status for %s may be stale", run.Stage)),
			logging.Error(err),
		)
	}
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, services.ErrSourceUnavailable):
		return "check the source site is reachable"
	case errors.Is(err, services.ErrModelUnavailable):
		return "check model storage and the uploaded artifact"
	case errors.Is(err, services.ErrPersistence):
		return "check database health"
	case errors.Is(err, services.ErrConfiguration):
		return "run discflight config validate"
	default:
		return "check logs for details"
	}
}
