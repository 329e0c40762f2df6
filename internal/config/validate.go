package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAuth(); err != nil {
		return err
	}
	if err := c.validateScraper(); err != nil {
		return err
	}
	if err := c.validatePredictor(); err != nil {
		return err
	}
	if err := c.validatePublisher(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAuth() error {
	if c.Auth.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("auth.api_key is required. Set DISCFLIGHT_API_KEY env var or edit %s (create with 'discflight config init')", defaultPath)
	}
	if c.Auth.AdminPasswordHash != "" && c.Auth.AdminUsername == "" {
		return errors.New("auth.admin_username must be set when auth.admin_password_hash is set")
	}
	return nil
}

func (c *Config) validateScraper() error {
	if err := validateHTTPURL("scraper.base_url", c.Scraper.BaseURL); err != nil {
		return err
	}
	if c.Scraper.RequestTimeout < 0 {
		return errors.New("scraper.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validatePredictor() error {
	if strings.ContainsAny(c.Predictor.ModelName, `/\`) {
		return errors.New("predictor.model_name must be a file name, not a path")
	}
	if c.Predictor.PublishTriggerURL != "" {
		if err := validateHTTPURL("predictor.publish_trigger_url", c.Predictor.PublishTriggerURL); err != nil {
			return err
		}
	}
	if c.Predictor.TriggerTimeout < 0 {
		return errors.New("predictor.trigger_timeout must be positive")
	}
	if c.Storage.RequestTimeout < 0 {
		return errors.New("storage.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validatePublisher() error {
	switch c.Publisher.Channel {
	case ChannelLog:
	case ChannelTwitter:
		if !c.TwitterConfigured() {
			return errors.New("twitter.api_key, api_key_secret, access_token, and access_token_secret must be set when publisher.channel is \"twitter\"")
		}
		if err := validateHTTPURL("twitter.base_url", c.Twitter.BaseURL); err != nil {
			return err
		}
	case ChannelNtfy:
		if c.Ntfy.Topic == "" {
			return errors.New("ntfy.topic must be set when publisher.channel is \"ntfy\"")
		}
		if err := validateHTTPURL("ntfy.topic", c.Ntfy.Topic); err != nil {
			return err
		}
		switch c.Ntfy.Priority {
		case "", "min", "low", "default", "high", "max", "urgent":
		default:
			return fmt.Errorf("ntfy.priority: unsupported value %q", c.Ntfy.Priority)
		}
	default:
		return fmt.Errorf("publisher.channel: unsupported value %q (expected %q, %q, or %q)", c.Publisher.Channel, ChannelTwitter, ChannelNtfy, ChannelLog)
	}
	if c.Publisher.RequestTimeout < 0 {
		return errors.New("publisher.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// ValidateStorage reports whether the model bucket is reachable in principle.
// Only the predictor needs it, so Load does not enforce it.
func (c *Config) ValidateStorage() error {
	if c.Storage.Endpoint == "" {
		return errors.New("storage.endpoint must be set to fetch model artifacts")
	}
	if err := validateHTTPURL("storage.endpoint", c.Storage.Endpoint); err != nil {
		return err
	}
	if c.Storage.Bucket == "" {
		return errors.New("storage.bucket must be set to fetch model artifacts")
	}
	return nil
}

func validateHTTPURL(field, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", field, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", field, value)
	}
	return nil
}
