package publish

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/go-resty/resty/v2"

	"discflight/internal/config"
)

const (
	defaultTwitterBaseURL = "https://api.twitter.com"
	userAgent             = "discflight/0.1.0"
	maxErrorBody          = 2048
)

type tweetRequest struct {
	Text string `json:"text"`
}

type tweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// TwitterAnnouncer posts announcements with user-context OAuth 1.0a signing.
type TwitterAnnouncer struct {
	client   *resty.Client
	endpoint string
}

// NewTwitterAnnouncer builds a client signed with the account's tokens.
func NewTwitterAnnouncer(cfg config.Twitter, timeout time.Duration) *TwitterAnnouncer {
	oauthConfig := oauth1.NewConfig(cfg.APIKey, cfg.APIKeySecret)
	token := oauth1.NewToken(cfg.AccessToken, cfg.AccessTokenSecret)
	httpClient := oauthConfig.Client(oauth1.NoContext, token)

	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultTwitterBaseURL
	}
	client := resty.NewWithClient(httpClient).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)
	return &TwitterAnnouncer{client: client, endpoint: base + "/2/tweets"}
}

// Announce implements Announcer.
func (t *TwitterAnnouncer) Announce(ctx context.Context, text string) error {
	var out tweetResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(tweetRequest{Text: text}).
		SetResult(&out).
		Post(t.endpoint)
	if err != nil {
		return fmt.Errorf("create tweet: %w", err)
	}
	if resp.IsError() {
		body := strings.TrimSpace(resp.String())
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return fmt.Errorf("twitter returned %d: %s", resp.StatusCode(), body)
	}
	if strings.TrimSpace(out.Data.ID) == "" {
		return fmt.Errorf("twitter returned %d without a tweet id", resp.StatusCode())
	}
	return nil
}
