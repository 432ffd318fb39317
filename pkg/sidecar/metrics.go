package sidecar

// MetricsCollector defines the interface for collecting supervisor metrics
type MetricsCollector interface {
	// SnapshotReceived records one accepted snapshot line
	SnapshotReceived()

	// ParseError records one malformed stdout line
	ParseError()

	// Spawn records a spawn attempt and its outcome
	Spawn(success bool)

	// Restart records a watchdog-driven restart attempt
	Restart(attempt int)

	// StatusTransition records a status change
	StatusTransition(from, to StatusCode)

	// Stalled records the current stall condition
	Stalled(stalled bool)
}

// noopMetricsCollector is a no-op implementation of MetricsCollector
type noopMetricsCollector struct{}

func (n *noopMetricsCollector) SnapshotReceived()                     {}
func (n *noopMetricsCollector) ParseError()                           {}
func (n *noopMetricsCollector) Spawn(success bool)                    {}
func (n *noopMetricsCollector) Restart(attempt int)                   {}
func (n *noopMetricsCollector) StatusTransition(from, to StatusCode)  {}
func (n *noopMetricsCollector) Stalled(stalled bool)                  {}

// NewNoopMetricsCollector creates a no-op metrics collector
func NewNoopMetricsCollector() MetricsCollector {
	return &noopMetricsCollector{}
}
