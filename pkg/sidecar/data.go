package sidecar

import (
	"errors"
	"strings"

	json "github.com/goccy/go-json"
)

// Data is one decoded sidecar output line. It is immutable once stored:
// the State replaces it wholesale on every accepted line, so readers may
// hold onto a *Data without copying.
type Data struct {
	CPU       *CPUData  `json:"cpu"`
	GPU       []GPUData `json:"gpu"`
	Timestamp int64     `json:"timestamp"`

	// Error is reported by the sidecar itself inside a structurally valid
	// line (e.g. it started but cannot open the sensor driver). This is
	// distinct from supervisor-level failures such as a crashed process.
	Error *string `json:"error,omitempty"`
}

// CPUData carries the sensor readings for the CPU package. Every field is
// optional; a sensor the sidecar cannot read decodes to nil, never to a
// fabricated zero.
type CPUData struct {
	Name               *string    `json:"name"`
	Temperature        *float64   `json:"temperature"`
	PackageTemperature *float64   `json:"package_temperature"`
	CoreTemperatures   []*float64 `json:"core_temperatures"`
	MaxTemperature     *float64   `json:"max_temperature"`
	Power              *float64   `json:"power"`
	CorePowers         []*float64 `json:"core_powers"`
}

// GPUData carries the sensor readings for one GPU.
type GPUData struct {
	Name               *string  `json:"name"`
	Vendor             *string  `json:"vendor"`
	Temperature        *float64 `json:"temperature"`
	HotSpotTemperature *float64 `json:"hot_spot_temperature"`
	Power              *float64 `json:"power"`
	CoreClock          *float64 `json:"core_clock"`
	MemoryClock        *float64 `json:"memory_clock"`
	FanSpeed           *float64 `json:"fan_speed"`
	Load               *float64 `json:"load"`
}

// ParseLine decodes one line of sidecar stdout. A whitespace-only line
// yields (nil, nil): it is skipped, not treated as an error. A decode
// failure yields a non-nil error; the caller logs it and leaves the
// previous snapshot in place. The timestamp is the only mandatory field:
// a line without one is rejected as malformed.
func ParseLine(line string) (*Data, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, nil
	}

	var d Data
	aux := struct {
		*Data
		Timestamp *int64 `json:"timestamp"`
	}{Data: &d}
	if err := json.Unmarshal([]byte(trimmed), &aux); err != nil {
		return nil, err
	}
	if aux.Timestamp == nil {
		return nil, errors.New("snapshot line missing timestamp")
	}
	d.Timestamp = *aux.Timestamp

	return &d, nil
}
