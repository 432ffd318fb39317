package sidecar

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

// Supervisor owns the sidecar child process handle and its output stream.
// No other component signals or waits on the child. One OS process and one
// reader goroutine exist per successful Spawn.
type Supervisor struct {
	state      *State
	logger     *zap.SugaredLogger
	metrics    MetricsCollector
	intervalMs int

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{} // closed by the reader once the child is reaped
	wg   sync.WaitGroup
}

// NewSupervisor creates a supervisor writing into the given store. The
// interval is passed to the sidecar as its reporting cadence in
// milliseconds.
func NewSupervisor(state *State, logger *zap.SugaredLogger, metrics MetricsCollector, intervalMs int) *Supervisor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if metrics == nil {
		metrics = NewNoopMetricsCollector()
	}
	if intervalMs <= 0 {
		intervalMs = DefaultIntervalMillis
	}

	return &Supervisor{
		state:      state,
		logger:     logger,
		metrics:    metrics,
		intervalMs: intervalMs,
	}
}

// State returns the shared store this supervisor writes into
func (s *Supervisor) State() *State {
	return s.state
}

// Spawn launches the sidecar executable and starts consuming its output.
// On success the status is Running and a reader goroutine feeds every
// stdout line through ParseLine into the store. On failure the status is
// set to Error with the failure text and the error is returned; no process
// is tracked. Stdout is captured exclusively for parsing; stderr is only
// drained into the debug log.
func (s *Supervisor) Spawn(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Infow("starting sidecar", "path", path, "interval_ms", s.intervalMs)

	cmd := exec.Command(path, "--interval", strconv.Itoa(s.intervalMs))

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return s.spawnFailed(fmt.Errorf("failed to capture sidecar stdout: %w", err))
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return s.spawnFailed(fmt.Errorf("failed to capture sidecar stderr: %w", err))
	}

	if err := cmd.Start(); err != nil {
		return s.spawnFailed(fmt.Errorf("failed to spawn sidecar: %w", err))
	}

	done := make(chan struct{})
	stderrDone := make(chan struct{})
	s.cmd = cmd
	s.done = done

	s.setStatus(Status{Code: StatusRunning})
	s.metrics.Spawn(true)

	s.wg.Add(2)
	go s.drainStderr(stderr, stderrDone)
	go s.readLoop(cmd, stdout, stderrDone, done)

	return nil
}

func (s *Supervisor) spawnFailed(err error) error {
	s.logger.Errorw("sidecar spawn failed", "error", err)
	s.setStatus(ErrorStatus(err.Error()))
	s.metrics.Spawn(false)
	return err
}

// readLoop consumes stdout line by line until EOF or a read error, then
// marks the sidecar Stopped and reaps the child. This is the sole path by
// which process death is observed; the supervisor never polls the child.
func (s *Supervisor) readLoop(cmd *exec.Cmd, stdout io.Reader, stderrDone, done chan struct{}) {
	defer s.wg.Done()
	defer close(done)

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		data, err := ParseLine(line)
		if err != nil {
			// Transient: one bad line never disturbs the stored snapshot.
			s.metrics.ParseError()
			s.logger.Warnw("sidecar line parse error", "error", err, "line", line)
			continue
		}
		if data == nil {
			continue
		}

		if s.state.Status().Code != StatusRunning {
			s.logger.Info("sidecar receiving data")
			s.setStatus(Status{Code: StatusRunning})
		}
		s.state.SetData(data)
		s.metrics.SnapshotReceived()
	}

	if err := scanner.Err(); err != nil {
		s.logger.Warnw("sidecar read error", "error", err)
	}

	s.logger.Info("sidecar process ended")
	s.setStatus(Status{Code: StatusStopped})

	// Both pipes reach EOF when the process exits, so the stderr drain is
	// done or about to be; wait for it before reaping.
	<-stderrDone
	if err := cmd.Wait(); err != nil {
		s.logger.Debugw("sidecar exit status", "error", err)
	}
}

func (s *Supervisor) drainStderr(stderr io.Reader, stderrDone chan struct{}) {
	defer s.wg.Done()
	defer close(stderrDone)

	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		s.logger.Debugw("sidecar stderr", "line", scanner.Text())
	}
}

// Stop terminates the tracked sidecar process, waits for the reader to
// reap it, and unconditionally sets the status to Stopped. Idempotent and
// safe to call with no process tracked.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	cmd := s.cmd
	done := s.done
	s.cmd = nil
	s.done = nil
	s.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		s.logger.Info("stopping sidecar process")
		_ = cmd.Process.Kill()
		if done != nil {
			<-done
		}
	}

	s.setStatus(Status{Code: StatusStopped})
}

// Wait blocks until all reader goroutines have exited
func (s *Supervisor) Wait() {
	s.wg.Wait()
}

func (s *Supervisor) setStatus(status Status) {
	prev := s.state.SetStatus(status)
	if prev.Code != status.Code {
		s.metrics.StatusTransition(prev.Code, status.Code)
	}
}
