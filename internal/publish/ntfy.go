package publish

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"discflight/internal/config"
)

const ntfyTitle = "discflight - New Disc Approved"

var ntfyTags = []string{"flying_disc", "discflight"}

// NtfyAnnouncer pushes announcements to an ntfy topic URL.
type NtfyAnnouncer struct {
	client   *resty.Client
	endpoint string
	priority string
}

// NewNtfyAnnouncer builds an announcer for the configured topic.
func NewNtfyAnnouncer(cfg config.Ntfy, timeout time.Duration) *NtfyAnnouncer {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)
	return &NtfyAnnouncer{
		client:   client,
		endpoint: strings.TrimSpace(cfg.Topic),
		priority: strings.TrimSpace(cfg.Priority),
	}
}

// Announce implements Announcer.
func (n *NtfyAnnouncer) Announce(ctx context.Context, text string) error {
	req := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/plain; charset=utf-8").
		SetHeader("Title", ntfyTitle).
		SetHeader("Tags", strings.Join(ntfyTags, ",")).
		SetBody(text)
	if n.priority != "" && n.priority != "default" {
		req.SetHeader("Priority", n.priority)
	}

	resp, err := req.Post(n.endpoint)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	if resp.StatusCode() >= 300 {
		body := strings.TrimSpace(resp.String())
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode(), body)
	}
	return nil
}
