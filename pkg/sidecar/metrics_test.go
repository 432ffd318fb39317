package sidecar

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// countingMetrics is a MetricsCollector recording call counts for test
// assertions.
type countingMetrics struct {
	mu             sync.Mutex
	snapshotCount  int
	parseErrCount  int
	spawnOK        int
	spawnFail      int
	restartCount   int
	lastAttempt    int
	transitions    int
	lastTransition [2]StatusCode
	stalledValue   bool
}

func (c *countingMetrics) SnapshotReceived() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshotCount++
}

func (c *countingMetrics) ParseError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parseErrCount++
}

func (c *countingMetrics) Spawn(success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if success {
		c.spawnOK++
	} else {
		c.spawnFail++
	}
}

func (c *countingMetrics) Restart(attempt int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.restartCount++
	c.lastAttempt = attempt
}

func (c *countingMetrics) StatusTransition(from, to StatusCode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transitions++
	c.lastTransition = [2]StatusCode{from, to}
}

func (c *countingMetrics) Stalled(stalled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stalledValue = stalled
}

func (c *countingMetrics) snapshots() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotCount
}

func (c *countingMetrics) parseErrors() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.parseErrCount
}

func (c *countingMetrics) spawnTotal() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spawnOK + c.spawnFail
}

func (c *countingMetrics) restarts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.restartCount
}

var _ MetricsCollector = (*countingMetrics)(nil)

func TestNoopMetricsCollector(t *testing.T) {
	m := NewNoopMetricsCollector()

	// Every call is a safe no-op.
	assert.NotPanics(t, func() {
		m.SnapshotReceived()
		m.ParseError()
		m.Spawn(true)
		m.Spawn(false)
		m.Restart(1)
		m.StatusTransition(StatusNotStarted, StatusRunning)
		m.Stalled(true)
	})
}
