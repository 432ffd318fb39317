package sidecar

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Handle is the caller's structured ownership of the running sidecar
// machinery: the shared store, the supervisor (which exclusively owns the
// child process), and the watchdog goroutine's cancellation. Nothing is
// detached or leaked; Shutdown joins every goroutine deterministically.
type Handle struct {
	state   *State
	sup     *Supervisor
	logger  *zap.SugaredLogger
	metrics MetricsCollector

	binaryPath string
	resolver   *Resolver
	intervalMs int

	gracePeriod  time.Duration
	pollInterval time.Duration
	restartDelay time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Start resolves the sidecar binary, spawns it, and starts the restart
// watchdog. Failures do not abort startup: they surface through the
// store's status so the presentation layer can render the classified
// condition (missing binary, admin rights, ...) while the rest of the
// application keeps working. The watchdog runs only when a binary path
// was resolved.
func Start(opts ...Option) *Handle {
	h := &Handle{
		state:        NewState(),
		logger:       zap.NewNop().Sugar(),
		metrics:      NewNoopMetricsCollector(),
		intervalMs:   DefaultIntervalMillis,
		gracePeriod:  DefaultGracePeriod,
		pollInterval: DefaultPollInterval,
		restartDelay: DefaultRestartDelay,
	}
	for _, opt := range opts {
		opt(h)
	}

	h.sup = NewSupervisor(h.state, h.logger, h.metrics, h.intervalMs)

	path := h.binaryPath
	if path == "" {
		if h.resolver == nil {
			h.resolver = NewResolver("", "", h.logger)
		}
		resolved, err := h.resolver.Resolve()
		if err != nil {
			// Message contains "not found", so it classifies as
			// binary_not_found for the UI.
			h.logger.Errorw("sidecar binary not found", "error", err)
			h.state.SetStatus(ErrorStatus(err.Error()))
			return h
		}
		path = resolved
	}

	if err := h.sup.Spawn(path); err != nil {
		h.logger.Errorw("sidecar failed to start", "error", err)
	} else {
		h.logger.Info("sidecar started successfully")
		h.state.ResetRestartCount()
	}

	// The watchdog starts even after a failed initial spawn: it observes
	// the Error status on its first poll and exits on its own.
	wd := NewWatchdog(h.sup, path, h.logger, h.metrics)
	wd.gracePeriod = h.gracePeriod
	wd.pollInterval = h.pollInterval
	wd.restartDelay = h.restartDelay

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		wd.Run(ctx)
	}()

	return h
}

// State returns the shared store for consumers
func (h *Handle) State() *State {
	return h.state
}

// Supervisor returns the process supervisor
func (h *Handle) Supervisor() *Supervisor {
	return h.sup
}

// Shutdown cancels the watchdog, stops the sidecar process, and waits for
// the watchdog and reader goroutines to exit. Returns ctx.Err() if they
// do not finish in time.
func (h *Handle) Shutdown(ctx context.Context) error {
	h.logger.Info("sidecar supervisor shutting down")

	if h.cancel != nil {
		h.cancel()
	}

	done := make(chan struct{})
	go func() {
		// Join the watchdog before killing the child: a watchdog past its
		// restart backoff could otherwise respawn right after Stop and
		// leave an untracked process behind.
		h.wg.Wait()
		h.sup.Stop()
		h.sup.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.logger.Info("sidecar supervisor shutdown complete")
		return nil
	case <-ctx.Done():
		h.logger.Warn("sidecar supervisor shutdown timeout")
		return ctx.Err()
	}
}
