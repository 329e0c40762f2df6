package predict

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"discflight/internal/config"
	"discflight/internal/delta"
	"discflight/internal/features"
	"discflight/internal/logging"
	"discflight/internal/model"
	"discflight/internal/services"
	"discflight/internal/stage"
	"discflight/internal/store"
)

const stageName = stage.Predict

// Store is the persistence the engine needs.
type Store interface {
	ListDiscs(ctx context.Context) ([]store.Disc, error)
	PredictionURLs(ctx context.Context) ([]string, error)
	InsertPredictions(ctx context.Context, predictions []store.Prediction) (int, error)
	Ping(ctx context.Context) error
}

// ModelSource hands out a loaded predictor for the duration of one run. A
// failed Acquire leaves nothing to release.
type ModelSource interface {
	Acquire(ctx context.Context) (*model.Lease, error)
}

// Engine is the prediction stage.
type Engine struct {
	store          Store
	models         ModelSource
	trigger        Trigger
	triggerTimeout time.Duration
	logger         *slog.Logger
	now            func() time.Time

	pending sync.WaitGroup
}

// Option customizes an Engine.
type Option func(*Engine)

// WithTrigger sets the publish trigger fired after a successful insert.
func WithTrigger(t Trigger, timeout time.Duration) Option {
	return func(e *Engine) {
		e.trigger = t
		if timeout > 0 {
			e.triggerTimeout = timeout
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New builds an engine.
func New(st Store, models ModelSource, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	e := &Engine{
		store:          st,
		models:         models,
		triggerTimeout: 10 * time.Second,
		logger:         logging.NewComponentLogger(logger, stageName),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewFromConfig wires the S3-backed model handle and the HTTP publish trigger.
func NewFromConfig(cfg *config.Config, st Store, logger *slog.Logger) (*Engine, error) {
	handle, err := model.NewHandleFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	var opts []Option
	if t := NewHTTPTrigger(cfg.Predictor.PublishTriggerURL, cfg.Auth.APIKey, cfg.TriggerTimeout()); t != nil {
		opts = append(opts, WithTrigger(t, cfg.TriggerTimeout()))
	}
	return New(st, handle, logger, opts...), nil
}

// Name implements stage.Runner.
func (e *Engine) Name() string { return stageName }

// Wait blocks until background trigger calls finish.
func (e *Engine) Wait() { e.pending.Wait() }

// Run implements stage.Runner.
func (e *Engine) Run(ctx context.Context) (result stage.Result, err error) {
	logger := logging.WithContext(ctx, e.logger)
	counts := map[string]int{"new": 0, "predicted": 0}
	result.Counts = counts

	discs, err := e.store.ListDiscs(ctx)
	if err != nil {
		return result, services.Wrap(services.ErrPersistence, stageName, "list discs", "", err)
	}
	processed, err := e.store.PredictionURLs(ctx)
	if err != nil {
		return result, services.Wrap(services.ErrPersistence, stageName, "list predictions", "", err)
	}
	pending := delta.Select(discs, processed)
	counts["new"] = len(pending)
	if len(pending) == 0 {
		logger.Info("no new discs to predict", logging.Int("known", len(discs)))
		result.Message = "No new discs to predict for."
		return result, nil
	}

	lease, err := e.models.Acquire(ctx)
	if err != nil {
		return result, err
	}
	defer func() {
		if releaseErr := lease.Release(); releaseErr != nil {
			logging.WarnWithContext(logger, "model release failed", "model_release_failed",
				logging.String(logging.FieldErrorHint, "remove the cached model file manually"),
				logging.String(logging.FieldImpact, "next run may reuse a stale model"),
				logging.Error(releaseErr),
			)
		}
	}()
	predictor := lease.Predictor

	vectors := make([]features.FeatureVector, len(pending))
	incomplete := 0
	for i, disc := range pending {
		vec, missing := features.FromDisc(disc)
		vectors[i] = vec
		if len(missing) == 0 {
			continue
		}
		incomplete++
		logging.WarnWithContext(logger, "disc has unparsable measurements",
			"feature_parse_failure",
			logging.String(logging.FieldURL, disc.URL),
			logging.String("fields", strings.Join(missing, ",")),
			logging.String(logging.FieldErrorHint, services.ErrParse.Error()),
			logging.String(logging.FieldImpact, "fields imputed; prediction continues"),
		)
	}
	counts["incomplete"] = incomplete

	estimates, err := predictor.Predict(vectors)
	if err != nil {
		return result, services.Wrap(services.ErrModelUnavailable, stageName, "inference", "", err)
	}
	if len(estimates) != len(pending) {
		return result, services.Wrap(services.ErrModelUnavailable, stageName, "inference",
			fmt.Sprintf("model returned %d estimates for %d discs", len(estimates), len(pending)), nil)
	}

	createdAt := e.now().UTC()
	predictions := make([]store.Prediction, len(pending))
	for i, disc := range pending {
		flight := RoundEstimate(estimates[i])
		predictions[i] = store.Prediction{
			Disc:      disc,
			Speed:     flight.Speed,
			Glide:     flight.Glide,
			Turn:      flight.Turn,
			Fade:      flight.Fade,
			Published: false,
			CreatedAt: createdAt,
		}
	}

	inserted, err := e.store.InsertPredictions(ctx, predictions)
	if err != nil {
		return result, services.Wrap(services.ErrPersistence, stageName, "insert predictions", "", err)
	}
	counts["predicted"] = inserted
	if skipped := len(predictions) - inserted; skipped > 0 {
		counts["duplicate"] = skipped
		logger.Info("predictions already present", logging.Int("duplicate", skipped))
	}

	result.Message = fmt.Sprintf("%d predictions uploaded successfully to predictions", inserted)
	if inserted > 0 {
		e.fireAsync(ctx, logger)
	}
	return result, nil
}

// HealthCheck implements stage.Runner.
func (e *Engine) HealthCheck(ctx context.Context) stage.Health {
	if e.store == nil {
		return stage.Unhealthy(stageName, "store not configured")
	}
	if e.models == nil {
		return stage.Unhealthy(stageName, "model storage not configured")
	}
	if err := e.store.Ping(ctx); err != nil {
		return stage.Unhealthy(stageName, fmt.Sprintf("store unreachable: %v", err))
	}
	return stage.Healthy(stageName)
}
