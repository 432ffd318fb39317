package sidecar

import "strings"

// StatusCode is the supervisor-level lifecycle state of the sidecar.
// Exactly one code holds at any instant.
type StatusCode int

const (
	// StatusNotStarted - no spawn has been attempted yet
	StatusNotStarted StatusCode = iota
	// StatusRunning - process is alive and its output is being consumed
	StatusRunning
	// StatusStopped - process exited (crash or termination); recoverable
	StatusStopped
	// StatusError - spawn failure, child-reported error, or restart budget
	// exhaustion; carries a reason
	StatusError
)

// String returns the string representation of a StatusCode
func (c StatusCode) String() string {
	switch c {
	case StatusNotStarted:
		return "NotStarted"
	case StatusRunning:
		return "Running"
	case StatusStopped:
		return "Stopped"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Status pairs a StatusCode with its reason text. Reason is set only when
// Code is StatusError.
type Status struct {
	Code   StatusCode
	Reason string
}

// ErrorStatus builds a StatusError with the given reason
func ErrorStatus(reason string) Status {
	return Status{Code: StatusError, Reason: reason}
}

// StatusInfo is the classified, UI-facing projection of a Status.
type StatusInfo struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Classified status values as rendered to consumers
const (
	StatusInfoNotStarted     = "not_started"
	StatusInfoRunning        = "running"
	StatusInfoStopped        = "stopped"
	StatusInfoError          = "error"
	StatusInfoRequiresAdmin  = "requires_admin"
	StatusInfoBinaryNotFound = "binary_not_found"
)

// Classify maps a Status into its consumer-facing form. Error reasons are
// matched with case-insensitive substring rules, first match wins; the
// wire protocol carries no structured failure code, so the reason text is
// all there is to go on. Non-error codes map one to one.
func Classify(s Status) StatusInfo {
	switch s.Code {
	case StatusRunning:
		return StatusInfo{Status: StatusInfoRunning}
	case StatusStopped:
		return StatusInfo{Status: StatusInfoStopped}
	case StatusError:
		reason := strings.ToLower(s.Reason)
		switch {
		case strings.Contains(reason, "admin") ||
			strings.Contains(reason, "access denied") ||
			strings.Contains(reason, "permission"):
			return StatusInfo{Status: StatusInfoRequiresAdmin}
		case strings.Contains(reason, "not found") ||
			strings.Contains(reason, "binary"):
			return StatusInfo{Status: StatusInfoBinaryNotFound}
		default:
			return StatusInfo{Status: StatusInfoError, Message: s.Reason}
		}
	default:
		return StatusInfo{Status: StatusInfoNotStarted}
	}
}
