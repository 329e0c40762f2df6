package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and database locations.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	Database string `toml:"database"`
}

// Auth contains the shared trigger secret and admin credentials.
type Auth struct {
	APIKey            string `toml:"api_key"`
	AdminUsername     string `toml:"admin_username"`
	AdminPasswordHash string `toml:"admin_password_hash"`
}

// Scraper contains configuration for the certification list scraper.
type Scraper struct {
	Bind           string `toml:"bind"`
	BaseURL        string `toml:"base_url"`
	ListPath       string `toml:"list_path"`
	UserAgent      string `toml:"user_agent"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Predictor contains configuration for the prediction stage.
type Predictor struct {
	Bind              string `toml:"bind"`
	ModelDir          string `toml:"model_dir"`
	ModelName         string `toml:"model_name"`
	PublishTriggerURL string `toml:"publish_trigger_url"`
	TriggerTimeout    int    `toml:"trigger_timeout"`
}

// Storage contains configuration for the S3-compatible model bucket.
type Storage struct {
	Endpoint       string `toml:"endpoint"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	Region         string `toml:"region"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Publisher contains configuration for the announcement stage.
type Publisher struct {
	Bind           string `toml:"bind"`
	Channel        string `toml:"channel"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Twitter contains user-context OAuth 1.0a credentials for the tweet API.
type Twitter struct {
	BaseURL           string `toml:"base_url"`
	APIKey            string `toml:"api_key"`
	APIKeySecret      string `toml:"api_key_secret"`
	AccessToken       string `toml:"access_token"`
	AccessTokenSecret string `toml:"access_token_secret"`
}

// Ntfy contains the topic used by the ntfy announcement channel.
type Ntfy struct {
	Topic    string `toml:"topic"`
	Priority string `toml:"priority"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for discflight.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories and the SQLite database
//   - Auth: X-API-KEY secret and admin basic credentials
//   - Scraper: source site location and request limits
//   - Predictor: model cache location and the publish trigger
//   - Storage: S3-compatible bucket holding model artifacts
//   - Publisher: announcement channel selection
//   - Twitter: tweet API credentials
//   - Ntfy: push topic for the ntfy channel
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Auth      Auth      `toml:"auth"`
	Scraper   Scraper   `toml:"scraper"`
	Predictor Predictor `toml:"predictor"`
	Storage   Storage   `toml:"storage"`
	Publisher Publisher `toml:"publisher"`
	Twitter   Twitter   `toml:"twitter"`
	Ntfy      Ntfy      `toml:"ntfy"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and environment fallbacks applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("discflight.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data, log, and model cache directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.LogDir, c.Predictor.ModelDir, filepath.Dir(c.Paths.Database)}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ScraperTimeout bounds each request to the source site.
func (c *Config) ScraperTimeout() time.Duration {
	return seconds(c.Scraper.RequestTimeout, defaultScraperRequestTimeout)
}

// StorageTimeout bounds listing and downloading model artifacts.
func (c *Config) StorageTimeout() time.Duration {
	return seconds(c.Storage.RequestTimeout, defaultStorageRequestTimeout)
}

// PublisherTimeout bounds each announcement request.
func (c *Config) PublisherTimeout() time.Duration {
	return seconds(c.Publisher.RequestTimeout, defaultPublisherRequestTimeout)
}

// TriggerTimeout bounds the fire-and-forget publish trigger.
func (c *Config) TriggerTimeout() time.Duration {
	return seconds(c.Predictor.TriggerTimeout, defaultTriggerTimeout)
}

// ModelPath returns the fixed local name of the cached model artifact.
func (c *Config) ModelPath() string {
	return filepath.Join(c.Predictor.ModelDir, c.Predictor.ModelName)
}

// TwitterConfigured reports whether every tweet API credential is present.
func (c *Config) TwitterConfigured() bool {
	return c.Twitter.APIKey != "" && c.Twitter.APIKeySecret != "" &&
		c.Twitter.AccessToken != "" && c.Twitter.AccessTokenSecret != ""
}

func seconds(value, fallback int) time.Duration {
	if value <= 0 {
		value = fallback
	}
	return time.Duration(value) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
