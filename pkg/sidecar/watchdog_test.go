package sidecar

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestWatchdog builds a watchdog with timings short enough for tests.
func newTestWatchdog(sup *Supervisor, path string, metrics MetricsCollector) *Watchdog {
	wd := NewWatchdog(sup, path, nil, metrics)
	wd.gracePeriod = time.Millisecond
	wd.pollInterval = 5 * time.Millisecond
	wd.restartDelay = time.Millisecond
	return wd
}

// runWatchdog runs the watchdog in the background and returns a channel
// closed when Run exits.
func runWatchdog(ctx context.Context, wd *Watchdog) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		wd.Run(ctx)
	}()
	return done
}

func waitFor(t *testing.T, done <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal(msg)
	}
}

func TestWatchdogGivesUpAfterBudget(t *testing.T) {
	state := NewState()
	sup := NewSupervisor(state, nil, nil, 500)

	// Budget already spent; the next Stopped observation is terminal.
	state.SetStatus(Status{Code: StatusStopped})
	for i := 0; i < MaxRestartAttempts; i++ {
		state.IncrementRestartCount()
	}

	wd := newTestWatchdog(sup, "/nonexistent", nil)
	done := runWatchdog(context.Background(), wd)
	waitFor(t, done, "watchdog did not give up")

	status := state.Status()
	assert.Equal(t, StatusError, status.Code)
	assert.Equal(t,
		fmt.Sprintf("sidecar crashed %d times, giving up", MaxRestartAttempts),
		status.Reason)
	assert.Equal(t, MaxRestartAttempts, state.RestartCount())
}

func TestWatchdogContinuesAfterFailedRestart(t *testing.T) {
	state := NewState()
	sup := NewSupervisor(state, nil, nil, 500)
	state.SetStatus(Status{Code: StatusStopped})

	metrics := &countingMetrics{}
	wd := newTestWatchdog(sup, filepath.Join(t.TempDir(), "gone"), metrics)
	done := runWatchdog(context.Background(), wd)

	// The failed spawn sets Error; the loop only exits once it observes
	// that status on the following poll, so Run still terminates on its
	// own.
	waitFor(t, done, "watchdog did not exit after failed restart")

	assert.Equal(t, StatusError, state.Status().Code)
	assert.Equal(t, 1, state.RestartCount())
	assert.Equal(t, 1, metrics.restarts())
}

func TestWatchdogRestartsCrashedSidecar(t *testing.T) {
	path := fakeSidecar(t, "exit 0\n")

	state := NewState()
	sup := NewSupervisor(state, nil, nil, 500)
	require.NoError(t, sup.Spawn(path))

	metrics := &countingMetrics{}
	wd := newTestWatchdog(sup, path, metrics)
	done := runWatchdog(context.Background(), wd)

	// Each respawn exits immediately, so the watchdog burns through the
	// whole budget and gives up.
	waitFor(t, done, "watchdog never exhausted the restart budget")

	status := state.Status()
	assert.Equal(t, StatusError, status.Code)
	assert.Contains(t, status.Reason, "giving up")
	assert.GreaterOrEqual(t, metrics.restarts(), 1)
	sup.Wait()
}

func TestWatchdogResetsCounterOnRecovery(t *testing.T) {
	state := NewState()
	sup := NewSupervisor(state, nil, nil, 500)

	state.IncrementRestartCount()
	state.IncrementRestartCount()
	state.SetStatus(Status{Code: StatusRunning})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wd := newTestWatchdog(sup, "/unused", nil)
	done := runWatchdog(ctx, wd)

	require.Eventually(t, func() bool {
		return state.RestartCount() == 0
	}, 5*time.Second, 5*time.Millisecond, "counter was never reset")

	cancel()
	waitFor(t, done, "watchdog did not stop on cancellation")
}

func TestWatchdogExitsOnErrorStatus(t *testing.T) {
	state := NewState()
	sup := NewSupervisor(state, nil, nil, 500)
	state.SetStatus(ErrorStatus("sidecar binary not found"))

	wd := newTestWatchdog(sup, "/unused", nil)
	done := runWatchdog(context.Background(), wd)
	waitFor(t, done, "watchdog did not exit on Error status")

	// The error is left untouched for the UI.
	assert.Equal(t, "sidecar binary not found", state.Status().Reason)
}

func TestWatchdogIdlesOnNotStarted(t *testing.T) {
	state := NewState()
	sup := NewSupervisor(state, nil, nil, 500)

	ctx, cancel := context.WithCancel(context.Background())
	wd := newTestWatchdog(sup, "/unused", nil)
	done := runWatchdog(ctx, wd)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StatusNotStarted, state.Status().Code)
	assert.Equal(t, 0, state.RestartCount())

	cancel()
	waitFor(t, done, "watchdog did not stop on cancellation")
}

func TestWatchdogCancelDuringGrace(t *testing.T) {
	state := NewState()
	sup := NewSupervisor(state, nil, nil, 500)

	wd := NewWatchdog(sup, "/unused", nil, nil)
	wd.gracePeriod = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := runWatchdog(ctx, wd)
	cancel()
	waitFor(t, done, "watchdog did not stop during grace period")
}
