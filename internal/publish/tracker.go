package publish

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"discflight/internal/config"
	"discflight/internal/logging"
	"discflight/internal/services"
	"discflight/internal/stage"
	"discflight/internal/store"
)

const stageName = stage.Publish

// Store is the persistence the tracker needs.
type Store interface {
	UnpublishedPredictions(ctx context.Context) ([]store.Prediction, error)
	MarkPublished(ctx context.Context, url string, at time.Time) (bool, error)
	Ping(ctx context.Context) error
}

// Tracker is the publish stage.
type Tracker struct {
	store     Store
	announcer Announcer
	timeout   time.Duration
	logger    *slog.Logger
	now       func() time.Time

	// running admits one scan at a time so overlapping triggers never
	// announce the same record twice.
	running chan struct{}
}

// NewTracker builds a tracker. timeout bounds each announcement; zero leaves
// it to the announcer's client.
func NewTracker(st Store, announcer Announcer, timeout time.Duration, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Tracker{
		store:     st,
		announcer: announcer,
		timeout:   timeout,
		logger:    logging.NewComponentLogger(logger, stageName),
		now:       time.Now,
		running:   make(chan struct{}, 1),
	}
}

// NewFromConfig wires the announcer selected by publisher.channel.
func NewFromConfig(cfg *config.Config, st Store, logger *slog.Logger) (*Tracker, error) {
	announcer, err := NewAnnouncer(cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewTracker(st, announcer, cfg.PublisherTimeout(), logger), nil
}

// Name implements stage.Runner.
func (t *Tracker) Name() string { return stageName }

// Run implements stage.Runner.
func (t *Tracker) Run(ctx context.Context) (stage.Result, error) {
	logger := logging.WithContext(ctx, t.logger)
	counts := map[string]int{"pending": 0, "published": 0, "failed": 0}
	result := stage.Result{Counts: counts}

	select {
	case t.running <- struct{}{}:
	case <-ctx.Done():
		return result, services.Wrap(services.ErrPublish, stageName, "scan", "waiting for another run", ctx.Err())
	}
	defer func() { <-t.running }()

	pending, err := t.store.UnpublishedPredictions(ctx)
	if err != nil {
		return result, services.Wrap(services.ErrPersistence, stageName, "list unpublished", "", err)
	}
	counts["pending"] = len(pending)

	for _, prediction := range pending {
		if err := ctx.Err(); err != nil {
			return result, services.Wrap(services.ErrPublish, stageName, "scan", "interrupted", err)
		}
		if t.publishOne(ctx, logger, prediction) {
			counts["published"]++
		} else {
			counts["failed"]++
		}
	}

	result.Message = fmt.Sprintf("%d tweets created successfully.", counts["published"])
	return result, nil
}

// publishOne announces a single record and flips its flag. Any failure is
// logged and leaves the record eligible for the next scan.
func (t *Tracker) publishOne(ctx context.Context, logger *slog.Logger, p store.Prediction) bool {
	recordLogger := logger.With(logging.String(logging.FieldURL, p.URL))

	announceCtx := ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		announceCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	if err := t.announcer.Announce(announceCtx, Render(p)); err != nil {
		err = services.Wrap(services.ErrPublish, stageName, "announce", p.URL, err)
		logging.WarnWithContext(recordLogger, "announcement failed", "publish_failure",
			logging.String(logging.FieldErrorHint, "check publisher channel credentials and reachability"),
			logging.Error(err),
		)
		return false
	}

	flipped, err := t.store.MarkPublished(ctx, p.URL, t.now().UTC())
	if err != nil {
		logging.WarnWithContext(recordLogger, "announced but flag update failed", "publish_flag_failure",
			logging.String(logging.FieldErrorHint, "check database health"),
			logging.String(logging.FieldImpact, "record may be announced again on the next scan"),
			logging.Error(services.Wrap(services.ErrPersistence, stageName, "mark published", p.URL, err)),
		)
		return false
	}
	if !flipped {
		recordLogger.Info("record already published by another run")
		return true
	}
	recordLogger.Info("prediction published",
		logging.String(logging.FieldEventType, "prediction_published"),
		logging.String("name", p.Name),
	)
	return true
}

// HealthCheck implements stage.Runner.
func (t *Tracker) HealthCheck(ctx context.Context) stage.Health {
	if t.store == nil {
		return stage.Unhealthy(stageName, "store not configured")
	}
	if t.announcer == nil {
		return stage.Unhealthy(stageName, "announcer not configured")
	}
	if err := t.store.Ping(ctx); err != nil {
		return stage.Unhealthy(stageName, fmt.Sprintf("store unreachable: %v", err))
	}
	return stage.Healthy(stageName)
}
