package predict

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"discflight/internal/logging"
)

// Trigger asks the publisher to run.
type Trigger interface {
	Fire(ctx context.Context) error
}

// HTTPTrigger posts to the publisher's trigger endpoint with the shared API key.
type HTTPTrigger struct {
	client *resty.Client
	url    string
	apiKey string
}

// NewHTTPTrigger returns nil when url is empty so callers can skip the call.
func NewHTTPTrigger(url, apiKey string, timeout time.Duration) *HTTPTrigger {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	client := resty.New().SetTimeout(timeout)
	return &HTTPTrigger{client: client, url: url, apiKey: apiKey}
}

// Fire implements Trigger.
func (t *HTTPTrigger) Fire(ctx context.Context) error {
	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("X-API-KEY", t.apiKey).
		Post(t.url)
	if err != nil {
		return fmt.Errorf("publish trigger: %w", err)
	}
	if resp.IsError() {
		body := strings.TrimSpace(resp.String())
		if len(body) > 2048 {
			body = body[:2048]
		}
		return fmt.Errorf("publish trigger: status %d: %s", resp.StatusCode(), body)
	}
	return nil
}

// fireAsync runs the trigger detached from the caller's cancellation,
// bounded by timeout. Failures are logged only.
func (e *Engine) fireAsync(ctx context.Context, logger *slog.Logger) {
	if e.trigger == nil {
		return
	}
	base := context.WithoutCancel(ctx)
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		fireCtx, cancel := context.WithTimeout(base, e.triggerTimeout)
		defer cancel()
		if err := e.trigger.Fire(fireCtx); err != nil {
			logging.WarnWithContext(logger, "publish trigger failed", "publish_trigger_failed",
				logging.String(logging.FieldErrorHint, "check predictor.publish_trigger_url and the publisher service"),
				logging.String(logging.FieldImpact, "predictions stay unpublished until the next publish run"),
				logging.Error(err),
			)
			return
		}
		logger.Debug("publish trigger sent")
	}()
}
