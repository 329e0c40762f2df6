package testsupport

import (
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"discflight/internal/config"
)

// TestAPIKey is the trigger secret configured by NewConfig.
const TestAPIKey = "test-api-key"

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Auth.APIKey = TestAPIKey
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.Database = filepath.Join(base, "data", "discflight.db")
	cfgVal.Predictor.ModelDir = filepath.Join(base, "model")
	cfgVal.Predictor.PublishTriggerURL = ""
	cfgVal.Scraper.Bind = "127.0.0.1:0"
	cfgVal.Predictor.Bind = "127.0.0.1:0"
	cfgVal.Publisher.Bind = "127.0.0.1:0"
	cfgVal.Logging.Format = "json"

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithAdmin configures basic-auth credentials, storing a bcrypt hash of password.
func WithAdmin(username, password string) ConfigOption {
	return func(b *configBuilder) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			b.t.Fatalf("hash admin password: %v", err)
		}
		b.cfg.Auth.AdminUsername = username
		b.cfg.Auth.AdminPasswordHash = string(hash)
	}
}

// WithScraperBaseURL points the scraper at a test server.
func WithScraperBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scraper.BaseURL = url
	}
}

// WithPublishTrigger sets the URL the predictor calls after storing predictions.
func WithPublishTrigger(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Predictor.PublishTriggerURL = url
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
