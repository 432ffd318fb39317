package sidecar

import (
	"time"

	"go.uber.org/zap"
)

// DefaultIntervalMillis is the reporting interval requested from the
// sidecar process.
const DefaultIntervalMillis = 1000

// Option configures Start
type Option func(*Handle)

// WithLogger sets the logger used by the supervisor and watchdog
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(h *Handle) {
		h.logger = logger
	}
}

// WithMetricsCollector sets the metrics collector
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(h *Handle) {
		h.metrics = mc
	}
}

// WithBinaryPath pins the sidecar executable path, bypassing discovery
func WithBinaryPath(path string) Option {
	return func(h *Handle) {
		h.binaryPath = path
	}
}

// WithResolver sets the binary resolver used when no path is pinned
func WithResolver(r *Resolver) Option {
	return func(h *Handle) {
		h.resolver = r
	}
}

// WithIntervalMillis sets the reporting interval passed to the sidecar
func WithIntervalMillis(ms int) Option {
	return func(h *Handle) {
		h.intervalMs = ms
	}
}

// WithGracePeriod sets the watchdog's initial delay before the first check
func WithGracePeriod(d time.Duration) Option {
	return func(h *Handle) {
		h.gracePeriod = d
	}
}

// WithPollInterval sets the watchdog's poll cadence
func WithPollInterval(d time.Duration) Option {
	return func(h *Handle) {
		h.pollInterval = d
	}
}

// WithRestartDelay sets the fixed backoff before a restart attempt
func WithRestartDelay(d time.Duration) Option {
	return func(h *Handle) {
		h.restartDelay = d
	}
}
