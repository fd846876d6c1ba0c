// Package daemon runs the long-lived detection service: it enforces
// single-instance execution with a file lock, owns the run registry and
// the detector, and exposes the HTTP API.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"veritext/internal/config"
	"veritext/internal/detector"
	"veritext/internal/logging"
	"veritext/internal/runs"
)

// Daemon coordinates the detection service and enforces single-instance
// execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *runs.Store
	detector *detector.Service

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	api     *apiServer
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	ModelReady   bool
	RunsDBPath   string
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *runs.Store, svc *detector.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || svc == nil {
		return nil, errors.New("daemon requires config, store, and detector")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "veritextd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		detector: svc,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and brings up the API server. It returns
// once the server is listening; Stop or context cancellation shuts it down.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another instance holds %s", d.lockPath)
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	api, err := newAPIServer(d.cfg, d, d.logger)
	if err != nil {
		cancel()
		d.releaseLock()
		return err
	}
	d.api = api
	if err := d.api.start(runCtx); err != nil {
		cancel()
		d.releaseLock()
		return err
	}

	d.running.Store(true)
	d.logger.Info("daemon started",
		slog.Int("pid", os.Getpid()),
		slog.String("lock", d.lockPath),
		slog.Bool("model_ready", d.detector.IsReady()))
	return nil
}

// Stop shuts down the API server and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Swap(false) {
		return
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.api.stop()
	d.releaseLock()
	d.logger.Info("daemon stopped")
}

// Status reports runtime information for the status surface.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		ModelReady:   d.detector.IsReady(),
		RunsDBPath:   d.store.Path(),
		LockFilePath: d.lockPath,
	}
}

// Addr returns the API server's bound address, for tests and logs.
func (d *Daemon) Addr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

func (d *Daemon) releaseLock() {
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("releasing daemon lock", logging.Error(err))
	}
	_ = os.Remove(d.lockPath)
}
