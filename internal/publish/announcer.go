package publish

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"discflight/internal/config"
	"discflight/internal/logging"
	"discflight/internal/services"
)

// Announcer delivers announcement text to a channel. A nil error is the
// publish acknowledgment.
type Announcer interface {
	Announce(ctx context.Context, text string) error
}

// NewAnnouncer builds the announcer for publisher.channel. The log channel
// writes announcements to the structured log only.
func NewAnnouncer(cfg *config.Config, logger *slog.Logger) (Announcer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Publisher.Channel)) {
	case config.ChannelTwitter:
		if !cfg.TwitterConfigured() {
			return nil, services.Wrap(services.ErrConfiguration, "publish", "announcer",
				"twitter channel selected but credentials are incomplete", nil)
		}
		return NewTwitterAnnouncer(cfg.Twitter, cfg.PublisherTimeout()), nil
	case config.ChannelNtfy:
		if strings.TrimSpace(cfg.Ntfy.Topic) == "" {
			return nil, services.Wrap(services.ErrConfiguration, "publish", "announcer",
				"ntfy channel selected but no topic is configured", nil)
		}
		return NewNtfyAnnouncer(cfg.Ntfy, cfg.PublisherTimeout()), nil
	case config.ChannelLog, "":
		return NewLogAnnouncer(logger), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "publish", "announcer",
			fmt.Sprintf("unknown channel %q", cfg.Publisher.Channel), nil)
	}
}

type logAnnouncer struct {
	logger *slog.Logger
}

// NewLogAnnouncer returns an announcer that logs each announcement at INFO.
func NewLogAnnouncer(logger *slog.Logger) Announcer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return logAnnouncer{logger: logging.NewComponentLogger(logger, "announcer")}
}

func (a logAnnouncer) Announce(ctx context.Context, text string) error {
	logging.WithContext(ctx, a.logger).Info("announcement",
		logging.String(logging.FieldEventType, "announcement"),
		logging.String("text", text),
	)
	return nil
}
