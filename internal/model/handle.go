package model

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"discflight/internal/config"
	"discflight/internal/logging"
	"discflight/internal/services"
)

const (
	lockFileName   = "model.lock"
	lockRetryDelay = 100 * time.Millisecond
)

// Handle manages the single local copy of the newest model artifact.
type Handle struct {
	store   ObjectStore
	path    string
	lock    *flock.Flock
	timeout time.Duration
	logger  *slog.Logger

	// slot admits one run at a time; the flock alone does not exclude
	// goroutines sharing the same Flock.
	slot chan struct{}
}

// NewHandle builds a handle that caches artifacts from store at path.
// A zero timeout leaves remote calls bounded only by the caller's context.
func NewHandle(store ObjectStore, path string, timeout time.Duration, logger *slog.Logger) *Handle {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handle{
		store:   store,
		path:    path,
		lock:    flock.New(filepath.Join(filepath.Dir(path), lockFileName)),
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "model"),
		slot:    make(chan struct{}, 1),
	}
}

// NewHandleFromConfig wires an S3 object store using the [storage] and
// [predictor] sections.
func NewHandleFromConfig(cfg *config.Config, logger *slog.Logger) (*Handle, error) {
	if err := cfg.ValidateStorage(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "predict", "storage", "invalid storage config", err)
	}
	st, err := NewS3Store(cfg.Storage)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "predict", "storage", "create client", err)
	}
	return NewHandle(st, cfg.ModelPath(), cfg.StorageTimeout(), logger), nil
}

// Path returns the local artifact location.
func (h *Handle) Path() string { return h.path }

// EnsureLocalCopy downloads the newest remote artifact unless a local copy
// already exists. The download lands in a temporary file and is renamed into
// place so readers never observe a partial artifact. Pipeline runs reach it
// through Acquire, which holds the lock around it.
func (h *Handle) EnsureLocalCopy(ctx context.Context) error {
	if _, err := os.Stat(h.path); err == nil {
		h.logger.Debug("model already cached", logging.String("path", h.path))
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return services.Wrap(services.ErrModelUnavailable, "predict", "stat model", h.path, err)
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return services.Wrap(services.ErrModelUnavailable, "predict", "create model dir", "", err)
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	objects, err := h.store.List(ctx)
	if err != nil {
		return services.Wrap(services.ErrModelUnavailable, "predict", "list artifacts", "", err)
	}
	newest, ok := Newest(objects)
	if !ok {
		return services.Wrap(services.ErrModelUnavailable, "predict", "list artifacts", "no artifacts in storage", nil)
	}

	partial := h.path + ".part"
	if err := h.store.Download(ctx, newest.Key, partial); err != nil {
		_ = os.Remove(partial)
		return services.Wrap(services.ErrModelUnavailable, "predict", "download artifact", newest.Key, err)
	}
	if err := os.Rename(partial, h.path); err != nil {
		_ = os.Remove(partial)
		return services.Wrap(services.ErrModelUnavailable, "predict", "install artifact", newest.Key, err)
	}

	h.logger.Info("model downloaded",
		logging.String("key", newest.Key),
		logging.Int64("size", newest.Size),
		logging.String("last_modified", newest.LastModified.UTC().Format(time.RFC3339)),
	)
	return nil
}

// Load decodes the local artifact.
func (h *Handle) Load() (Predictor, error) {
	f, err := os.Open(h.path)
	if err != nil {
		return nil, &LoadError{Path: h.path, Err: err}
	}
	defer f.Close()

	artifact, err := DecodeArtifact(f)
	if err != nil {
		return nil, &LoadError{Path: h.path, Err: err}
	}
	m, err := NewLinearModel(artifact)
	if err != nil {
		return nil, &LoadError{Path: h.path, Err: err}
	}
	return m, nil
}

// Acquire waits for exclusive use of the local copy, ensures it exists and
// loads it. Runs sharing a Handle queue on an in-process slot; separate
// processes queue on the lock file. On error nothing is held and nothing
// needs releasing; anything Acquire itself took has already been cleaned up.
func (h *Handle) Acquire(ctx context.Context) (*Lease, error) {
	select {
	case h.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, services.Wrap(services.ErrModelUnavailable, "predict", "lock model", "waiting for another run", ctx.Err())
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		<-h.slot
		return nil, services.Wrap(services.ErrModelUnavailable, "predict", "create model dir", "", err)
	}
	locked, err := h.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		<-h.slot
		if err == nil {
			return nil, services.Wrap(services.ErrModelUnavailable, "predict", "lock model", "lock not acquired", nil)
		}
		return nil, services.Wrap(services.ErrModelUnavailable, "predict", "lock model", "", err)
	}

	lease := &Lease{release: h.release}
	predictor, err := h.acquireLocked(ctx)
	if err != nil {
		if releaseErr := lease.Release(); releaseErr != nil {
			return nil, errors.Join(err, releaseErr)
		}
		return nil, err
	}
	lease.Predictor = predictor
	return lease, nil
}

func (h *Handle) acquireLocked(ctx context.Context) (Predictor, error) {
	if err := h.EnsureLocalCopy(ctx); err != nil {
		return nil, err
	}
	return h.Load()
}

// release deletes the local copy and any partial download, then drops the
// host lock and the in-process slot. Only a Lease calls it.
func (h *Handle) release() error {
	var errs []error
	for _, p := range []string{h.path, h.path + ".part"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", p, err))
		}
	}
	if err := h.lock.Unlock(); err != nil {
		errs = append(errs, fmt.Errorf("unlock model: %w", err))
	}
	<-h.slot
	if err := errors.Join(errs...); err != nil {
		return err
	}
	h.logger.Debug("model released", logging.String("path", h.path))
	return nil
}

// Lease is one run's exclusive hold on the local model copy.
type Lease struct {
	Predictor Predictor

	once    sync.Once
	release func() error
	err     error
}

// NewLease wraps a predictor with a release callback. release may be nil.
func NewLease(p Predictor, release func() error) *Lease {
	return &Lease{Predictor: p, release: release}
}

// Release deletes the local copy and lets the next run in. Only the first
// call has any effect.
func (l *Lease) Release() error {
	if l == nil {
		return nil
	}
	l.once.Do(func() {
		if l.release != nil {
			l.err = l.release()
		}
	})
	return l.err
}
