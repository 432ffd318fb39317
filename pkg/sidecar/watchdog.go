package sidecar

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Default watchdog timings. The grace period avoids racing the freshly
// spawned process; the restart delay gives a crashing sidecar room to
// release its sensor handles before the next attempt.
const (
	DefaultGracePeriod  = 5 * time.Second
	DefaultPollInterval = 3 * time.Second
	DefaultRestartDelay = 2 * time.Second
)

// Watchdog is the single long-lived loop that polls the store's status
// and drives the bounded restart policy. It runs independently of the
// reader goroutine and exits on context cancellation, on restart budget
// exhaustion, or on observing an Error status at the top of an iteration.
type Watchdog struct {
	sup     *Supervisor
	state   *State
	path    string
	logger  *zap.SugaredLogger
	metrics MetricsCollector

	gracePeriod  time.Duration
	pollInterval time.Duration
	restartDelay time.Duration
}

// NewWatchdog creates a watchdog that respawns the sidecar at the given
// resolved path.
func NewWatchdog(sup *Supervisor, path string, logger *zap.SugaredLogger, metrics MetricsCollector) *Watchdog {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if metrics == nil {
		metrics = NewNoopMetricsCollector()
	}

	return &Watchdog{
		sup:          sup,
		state:        sup.State(),
		path:         path,
		logger:       logger,
		metrics:      metrics,
		gracePeriod:  DefaultGracePeriod,
		pollInterval: DefaultPollInterval,
		restartDelay: DefaultRestartDelay,
	}
}

// Run polls until the context is cancelled or a terminal condition is hit.
func (w *Watchdog) Run(ctx context.Context) {
	defer w.logger.Info("sidecar watchdog stopped")

	if !sleepCtx(ctx, w.gracePeriod) {
		return
	}

	for {
		if !sleepCtx(ctx, w.pollInterval) {
			return
		}

		w.metrics.Stalled(w.state.IsStalled())

		status := w.state.Status()
		switch status.Code {
		case StatusStopped:
			if !w.state.CanRestart() {
				w.logger.Warnw("max restart attempts reached, giving up",
					"attempts", MaxRestartAttempts)
				w.setStatus(ErrorStatus(fmt.Sprintf(
					"sidecar crashed %d times, giving up", MaxRestartAttempts)))
				return
			}

			count := w.state.IncrementRestartCount()
			w.logger.Infow("attempting sidecar restart",
				"attempt", count, "max", MaxRestartAttempts)
			w.metrics.Restart(count)

			if !sleepCtx(ctx, w.restartDelay) {
				return
			}

			if err := w.sup.Spawn(w.path); err != nil {
				// Spawn recorded the Error status. The loop keeps polling
				// anyway; the Error branch only exits once it is observed
				// at the top of the next iteration.
				w.logger.Errorw("sidecar restart failed", "error", err)
				continue
			}

			// The restart counter resets only once the reader observes
			// Running again, not here.
			w.logger.Info("sidecar restart successful")

		case StatusRunning:
			if w.state.RestartCount() > 0 {
				w.state.ResetRestartCount()
			}

		case StatusError:
			w.logger.Infow("sidecar in error state, watchdog exiting",
				"reason", status.Reason)
			return

		case StatusNotStarted:
			// Nothing to supervise yet; check again next poll.
		}
	}
}

func (w *Watchdog) setStatus(status Status) {
	prev := w.state.SetStatus(status)
	if prev.Code != status.Code {
		w.metrics.StatusTransition(prev.Code, status.Code)
	}
}

// sleepCtx sleeps for d unless the context is cancelled first. Returns
// false on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
