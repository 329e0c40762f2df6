package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAuth()
	c.normalizeScraper()
	if err := c.normalizePredictor(); err != nil {
		return err
	}
	c.normalizeStorage()
	c.normalizePublisher()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.Database) == "" {
		c.Paths.Database = filepath.Join(c.Paths.DataDir, defaultDatabaseName)
	}
	if c.Paths.Database, err = expandPath(c.Paths.Database); err != nil {
		return fmt.Errorf("paths.database: %w", err)
	}
	return nil
}

func (c *Config) normalizeAuth() {
	c.Auth.APIKey = envFallback(c.Auth.APIKey, "DISCFLIGHT_API_KEY")
	c.Auth.AdminUsername = strings.TrimSpace(c.Auth.AdminUsername)
	c.Auth.AdminPasswordHash = envFallback(c.Auth.AdminPasswordHash, "DISCFLIGHT_ADMIN_PASSWORD_HASH")
}

func (c *Config) normalizeScraper() {
	c.Scraper.Bind = strings.TrimSpace(c.Scraper.Bind)
	c.Scraper.BaseURL = strings.TrimRight(strings.TrimSpace(c.Scraper.BaseURL), "/")
	if c.Scraper.BaseURL == "" {
		c.Scraper.BaseURL = defaultScraperBaseURL
	}
	c.Scraper.ListPath = strings.TrimSpace(c.Scraper.ListPath)
	if c.Scraper.ListPath == "" {
		c.Scraper.ListPath = defaultScraperListPath
	}
	if !strings.HasPrefix(c.Scraper.ListPath, "/") {
		c.Scraper.ListPath = "/" + c.Scraper.ListPath
	}
	if strings.TrimSpace(c.Scraper.UserAgent) == "" {
		c.Scraper.UserAgent = defaultScraperUserAgent
	}
}

func (c *Config) normalizePredictor() error {
	var err error
	c.Predictor.Bind = strings.TrimSpace(c.Predictor.Bind)
	if strings.TrimSpace(c.Predictor.ModelDir) == "" {
		c.Predictor.ModelDir = defaultModelDir
	}
	if c.Predictor.ModelDir, err = expandPath(c.Predictor.ModelDir); err != nil {
		return fmt.Errorf("predictor.model_dir: %w", err)
	}
	c.Predictor.ModelName = strings.TrimSpace(c.Predictor.ModelName)
	if c.Predictor.ModelName == "" {
		c.Predictor.ModelName = defaultModelName
	}
	c.Predictor.PublishTriggerURL = strings.TrimSpace(c.Predictor.PublishTriggerURL)
	return nil
}

func (c *Config) normalizeStorage() {
	c.Storage.Endpoint = strings.TrimRight(strings.TrimSpace(c.Storage.Endpoint), "/")
	c.Storage.Bucket = strings.TrimSpace(c.Storage.Bucket)
	c.Storage.Region = strings.TrimSpace(c.Storage.Region)
	c.Storage.AccessKey = envFallback(c.Storage.AccessKey, "DISCFLIGHT_S3_ACCESS_KEY")
	c.Storage.SecretKey = envFallback(c.Storage.SecretKey, "DISCFLIGHT_S3_SECRET_KEY")
}

func (c *Config) normalizePublisher() {
	c.Publisher.Bind = strings.TrimSpace(c.Publisher.Bind)
	c.Publisher.Channel = strings.ToLower(strings.TrimSpace(c.Publisher.Channel))
	if c.Publisher.Channel == "" {
		c.Publisher.Channel = defaultPublisherChannel
	}
	c.Twitter.BaseURL = strings.TrimRight(strings.TrimSpace(c.Twitter.BaseURL), "/")
	if c.Twitter.BaseURL == "" {
		c.Twitter.BaseURL = defaultTwitterBaseURL
	}
	c.Twitter.APIKey = envFallback(c.Twitter.APIKey, "TWITTER_API_KEY")
	c.Twitter.APIKeySecret = envFallback(c.Twitter.APIKeySecret, "TWITTER_API_KEY_SECRET")
	c.Twitter.AccessToken = envFallback(c.Twitter.AccessToken, "TWITTER_ACCESS_TOKEN")
	c.Twitter.AccessTokenSecret = envFallback(c.Twitter.AccessTokenSecret, "TWITTER_ACCESS_TOKEN_SECRET")
	c.Ntfy.Topic = envFallback(c.Ntfy.Topic, "DISCFLIGHT_NTFY_TOPIC")
	c.Ntfy.Priority = strings.ToLower(strings.TrimSpace(c.Ntfy.Priority))
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func envFallback(value, key string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	if env, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(env)
	}
	return ""
}
