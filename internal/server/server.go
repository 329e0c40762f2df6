package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"discflight/internal/config"
	"discflight/internal/logging"
	"discflight/internal/stage"
	"discflight/internal/store"
)

// Store is the persistence the HTTP layer needs.
type Store interface {
	stage.RunRecorder
	LastRun(ctx context.Context, stage string) (*store.Run, error)
	RecordUsage(ctx context.Context, entry store.UsageEntry) error
	UsageEntries(ctx context.Context, limit int) ([]store.UsageEntry, error)
	UsageSummary(ctx context.Context) ([]store.EndpointUsage, error)
	ListPredictions(ctx context.Context, filter store.PredictionFilter) ([]store.Prediction, error)
}

// Routes names a stage's trigger and last-run endpoints.
type Routes struct {
	Trigger string
	LastRun string
	// Label is used in the never-run message, e.g. "Scrape and store".
	Label string
}

// RoutesFor returns the fixed routes of a stage.
func RoutesFor(stageName string) (Routes, error) {
	switch stageName {
	case stage.Scrape:
		return Routes{Trigger: "/scrape_and_store", LastRun: "/last_scraped", Label: stage.Label("scrape_and_store")}, nil
	case stage.Predict:
		return Routes{Trigger: "/predict", LastRun: "/last_predicted", Label: stage.Label("predict")}, nil
	case stage.Publish:
		return Routes{Trigger: "/create_tweet", LastRun: "/last_published", Label: stage.Label("create_tweet")}, nil
	default:
		return Routes{}, fmt.Errorf("unknown stage %q", stageName)
	}
}

// Options configures a stage server.
type Options struct {
	Bind              string
	APIKey            string
	AdminUsername     string
	AdminPasswordHash string
	Store             Store
	Runner            stage.Runner
	Logger            *slog.Logger
}

// Server serves one stage.
type Server struct {
	bind      string
	apiKey    string
	adminUser string
	adminHash string
	store     Store
	runner    stage.Runner
	routes    Routes
	logger    *slog.Logger
	metrics   *metrics

	mux        *http.ServeMux
	httpServer *http.Server

	mu       sync.Mutex
	listener net.Listener
}

// New builds a stage server.
func New(opts Options) (*Server, error) {
	if opts.Runner == nil {
		return nil, errors.New("stage runner is required")
	}
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	name := opts.Runner.Name()
	routes, err := RoutesFor(name)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &Server{
		bind:      strings.TrimSpace(opts.Bind),
		apiKey:    opts.APIKey,
		adminUser: opts.AdminUsername,
		adminHash: opts.AdminPasswordHash,
		store:     opts.Store,
		runner:    opts.Runner,
		routes:    routes,
		logger:    logger.With(logging.String(logging.FieldComponent, name+"-server")),
		metrics:   newMetrics(name),
		mux:       http.NewServeMux(),
	}

	s.mux.HandleFunc("POST "+routes.Trigger, s.instrument(routes.Trigger, s.requireAPIKey(s.logUsage(routes.Trigger, s.handleTrigger))))
	s.mux.HandleFunc("GET "+routes.LastRun, s.instrument(routes.LastRun, s.handleLastRun))
	s.mux.HandleFunc("GET /admin", s.instrument("/admin", s.requireAdmin(s.handleAdmin)))
	s.mux.HandleFunc("GET /health", s.instrument("/health", s.handleHealth))
	s.mux.Handle("GET /metrics", s.metrics.handler())
	if name == stage.Publish {
		s.mux.HandleFunc("GET /predictions", s.instrument("/predictions", s.handlePredictions))
	}

	// Triggers run synchronously, so writes may take as long as a full scrape.
	s.httpServer = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// NewFromConfig builds a server for runner using the stage's bind address
// and the shared auth settings.
func NewFromConfig(cfg *config.Config, st Store, runner stage.Runner, logger *slog.Logger) (*Server, error) {
	if runner == nil {
		return nil, errors.New("stage runner is required")
	}
	var bind string
	switch runner.Name() {
	case stage.Scrape:
		bind = cfg.Scraper.Bind
	case stage.Predict:
		bind = cfg.Predictor.Bind
	case stage.Publish:
		bind = cfg.Publisher.Bind
	}
	return New(Options{
		Bind:              bind,
		APIKey:            cfg.Auth.APIKey,
		AdminUsername:     cfg.Auth.AdminUsername,
		AdminPasswordHash: cfg.Auth.AdminPasswordHash,
		Store:             st,
		Runner:            runner,
		Logger:            logger,
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start binds the listener without serving.
func (s *Server) Start() error {
	if s.bind == "" {
		return fmt.Errorf("%s server: bind address not configured", s.runner.Name())
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("%s server listen: %w", s.runner.Name(), err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	s.logger.Info("server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Serve runs until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	if s.Addr() == "" {
		if err := s.Start(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("server shutdown incomplete", logging.Error(err))
	}
	s.logger.Info("server stopped")
	return <-errCh
}

// Run serves every server until ctx is cancelled or one of them fails.
// Servers that were not started yet are bound first.
func Run(ctx context.Context, servers ...*Server) error {
	for _, srv := range servers {
		if srv.Addr() != "" {
			continue
		}
		if err := srv.Start(); err != nil {
			return err
		}
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error { return srv.Serve(gctx) })
	}
	return g.Wait()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logging.NewNop()
}
