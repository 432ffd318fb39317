package sidecar

import (
	"sync"
	"time"
)

const (
	// MaxRestartAttempts bounds watchdog-driven restarts before giving up
	MaxRestartAttempts = 3

	// StallTimeout is how long without an accepted snapshot before the
	// sidecar counts as stalled
	StallTimeout = 10 * time.Second
)

// State is the concurrency-safe container for the latest snapshot, the
// supervisor status, the restart counter, and the last-data instant. It is
// the single owner of all shared mutable state; the Supervisor and
// Watchdog hold non-owning handles to it. Reads never observe a torn
// snapshot: Data pointers are swapped whole under the lock.
type State struct {
	mu           sync.RWMutex
	data         *Data
	status       Status
	restartCount int
	lastData     time.Time
}

// NewState creates an empty store in the NotStarted status
func NewState() *State {
	return &State{status: Status{Code: StatusNotStarted}}
}

// Data returns the latest accepted snapshot, or nil if none ever arrived.
// The returned snapshot is immutable; callers must not modify it.
func (s *State) Data() *Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// SetData replaces the stored snapshot wholesale and refreshes the
// last-data instant. A child-reported error inside the snapshot also
// transitions the status to Error while the rest of the snapshot remains
// readable.
func (s *State) SetData(d *Data) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.Error != nil {
		s.status = ErrorStatus(*d.Error)
	}
	s.lastData = time.Now()
	s.data = d
}

// Status returns the current supervisor status
func (s *State) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// SetStatus replaces the status and returns the previous one so callers
// can record the transition
func (s *State) SetStatus(status Status) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.status
	s.status = status
	return prev
}

// StatusInfo returns the classified, consumer-facing status
func (s *State) StatusInfo() StatusInfo {
	return Classify(s.Status())
}

// IncrementRestartCount bumps the restart counter and returns the new count
func (s *State) IncrementRestartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.restartCount++
	return s.restartCount
}

// ResetRestartCount zeroes the restart counter. Called on a fresh
// successful spawn and when the watchdog observes a recovery.
func (s *State) ResetRestartCount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restartCount = 0
}

// RestartCount returns the current restart counter
func (s *State) RestartCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.restartCount
}

// CanRestart reports whether the restart budget allows another attempt
func (s *State) CanRestart() bool {
	return s.RestartCount() < MaxRestartAttempts
}

// IsStalled reports whether data has been received before but none within
// the stall timeout. It drives no status transition; it only feeds
// readiness checks and the stall gauge.
func (s *State) IsStalled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastData.IsZero() {
		return false
	}
	return time.Since(s.lastData) > StallTimeout
}

// CPUTemperature returns the CPU temperature from the latest snapshot
func (s *State) CPUTemperature() (float64, bool) {
	d := s.Data()
	if d == nil || d.CPU == nil || d.CPU.Temperature == nil {
		return 0, false
	}
	return *d.CPU.Temperature, true
}

// CPUCoreTemperatures returns per-core temperatures from the latest
// snapshot. Cores whose sensor could not be read are nil; order follows
// the sidecar's core enumeration.
func (s *State) CPUCoreTemperatures() []*float64 {
	d := s.Data()
	if d == nil || d.CPU == nil {
		return nil
	}
	return d.CPU.CoreTemperatures
}

// CPUPower returns the CPU package power draw from the latest snapshot
func (s *State) CPUPower() (float64, bool) {
	d := s.Data()
	if d == nil || d.CPU == nil || d.CPU.Power == nil {
		return 0, false
	}
	return *d.CPU.Power, true
}
