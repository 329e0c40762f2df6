package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"syscall"

	"discflight/internal/config"
	"discflight/internal/logging"
	"discflight/internal/predict"
	"discflight/internal/preflight"
	"discflight/internal/publish"
	"discflight/internal/scrape"
	"discflight/internal/server"
	"discflight/internal/stage"
	"discflight/internal/store"
)

// Options configures daemon process runtime behavior.
type Options struct {
	// Stages selects which stage servers to start. Empty means all of them.
	Stages   []string
	LogLevel string
	// Logger overrides the config-derived logger.
	Logger *slog.Logger
	// Ready, when set, receives the bound address of every server once all
	// listeners are up.
	Ready func(addrs map[string]string)
}

// StageStore is the persistence surface shared by all three stages and their
// servers.
type StageStore interface {
	scrape.Store
	predict.Store
	publish.Store
	server.Store
}

// NewRunner builds the runner for a single stage name.
func NewRunner(cfg *config.Config, st StageStore, logger *slog.Logger, name string) (stage.Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	switch name {
	case stage.Scrape:
		return scrape.NewFromConfig(cfg, st, logger), nil
	case stage.Predict:
		engine, err := predict.NewFromConfig(cfg, st, logger)
		if err != nil {
			return nil, err
		}
		return engine, nil
	case stage.Publish:
		tracker, err := publish.NewFromConfig(cfg, st, logger)
		if err != nil {
			return nil, err
		}
		return tracker, nil
	default:
		return nil, fmt.Errorf("unknown stage %q (expected one of %s)", name, strings.Join(stage.Names, ", "))
	}
}

// NewRunners builds the runners for names, in pipeline order. Duplicate names
// are collapsed.
func NewRunners(cfg *config.Config, st StageStore, logger *slog.Logger, names []string) ([]stage.Runner, error) {
	selected, err := selectStages(names)
	if err != nil {
		return nil, err
	}
	runners := make([]stage.Runner, 0, len(selected))
	for _, name := range selected {
		runner, err := NewRunner(cfg, st, logger, name)
		if err != nil {
			return nil, fmt.Errorf("build %s stage: %w", name, err)
		}
		runners = append(runners, runner)
	}
	return runners, nil
}

func selectStages(names []string) ([]string, error) {
	if len(names) == 0 {
		return slices.Clone(stage.Names), nil
	}
	want := make(map[string]bool, len(names))
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if !slices.Contains(stage.Names, name) {
			return nil, fmt.Errorf("unknown stage %q (expected one of %s)", raw, strings.Join(stage.Names, ", "))
		}
		want[name] = true
	}
	var out []string
	for _, name := range stage.Names {
		if want[name] {
			out = append(out, name)
		}
	}
	return out, nil
}

// Run starts the selected stage servers and blocks until the context is
// cancelled or a signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return errors.New("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := opts.Logger
	if logger == nil {
		if level := strings.TrimSpace(opts.LogLevel); level != "" {
			cfg.Logging.Level = level
		}
		var err error
		logger, err = logging.NewFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
	}

	logConfigSnapshot(logger, cfg)
	for _, check := range preflight.Failed(preflight.RunAll(signalCtx, cfg, opts.Stages)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", check.Name),
			logging.String("detail", check.Detail),
			logging.String(logging.FieldImpact, "triggers for the affected stage may fail"),
		)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "discflightd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		return err
	}
	defer st.Close()

	runners, err := NewRunners(cfg, st, logger, opts.Stages)
	if err != nil {
		return err
	}

	servers := make([]*server.Server, 0, len(runners))
	for _, runner := range runners {
		srv, err := server.NewFromConfig(cfg, st, runner, logger)
		if err != nil {
			return fmt.Errorf("create %s server: %w", runner.Name(), err)
		}
		servers = append(servers, srv)
	}

	if opts.Ready != nil {
		for _, srv := range servers {
			if err := srv.Start(); err != nil {
				return err
			}
		}
		addrs := make(map[string]string, len(servers))
		for i, srv := range servers {
			addrs[runners[i].Name()] = srv.Addr()
		}
		opts.Ready(addrs)
	}

	err = server.Run(signalCtx, servers...)
	for _, runner := range runners {
		if w, ok := runner.(interface{ Wait() }); ok {
			w.Wait()
		}
	}
	logger.Info("discflight daemon shutting down")
	return err
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logConfigSnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	logger.Info("configuration snapshot",
		logging.String(logging.FieldEventType, "config_snapshot"),
		logging.String("database", cfg.Paths.Database),
		logging.String("source_url", cfg.Scraper.BaseURL),
		logging.Bool("storage_configured", cfg.ValidateStorage() == nil),
		logging.String("model_path", cfg.ModelPath()),
		logging.Bool("publish_trigger_set", strings.TrimSpace(cfg.Predictor.PublishTriggerURL) != ""),
		logging.String("publisher_channel", cfg.Publisher.Channel),
		logging.Bool("twitter_configured", cfg.TwitterConfigured()),
		logging.Bool("admin_enabled", cfg.Auth.AdminPasswordHash != ""),
	)
}
