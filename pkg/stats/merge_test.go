package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminsdev/hardware-monitoring/pkg/sidecar"
)

func f64(v float64) *float64 { return &v }

func TestOverlayNilSnapshot(t *testing.T) {
	base := SystemStats{
		CPU:       CPUStats{Name: "test-cpu", Usage: 12.5},
		Timestamp: 100,
	}

	assert.Equal(t, base, Overlay(base, nil))
}

func TestOverlayCPUTemperature(t *testing.T) {
	base := SystemStats{CPU: CPUStats{Name: "test-cpu"}}
	snap := &sidecar.Data{CPU: &sidecar.CPUData{Temperature: f64(67.5)}}

	merged := Overlay(base, snap)
	require.NotNil(t, merged.CPU.Temperature)
	assert.Equal(t, 67.5, *merged.CPU.Temperature)
}

func TestOverlayCPUTemperatureOverwrites(t *testing.T) {
	// The sidecar reading wins even when the baseline already has one.
	base := SystemStats{CPU: CPUStats{Temperature: f64(40.0)}}
	snap := &sidecar.Data{CPU: &sidecar.CPUData{Temperature: f64(72.0)}}

	merged := Overlay(base, snap)
	assert.Equal(t, 72.0, *merged.CPU.Temperature)
}

func TestOverlayCPUTemperatureAbsent(t *testing.T) {
	base := SystemStats{CPU: CPUStats{Temperature: f64(40.0)}}
	snap := &sidecar.Data{CPU: &sidecar.CPUData{}}

	// A snapshot without the reading leaves the baseline value alone.
	merged := Overlay(base, snap)
	assert.Equal(t, 40.0, *merged.CPU.Temperature)
}

func TestOverlayGPUTemperatureOverwrites(t *testing.T) {
	base := SystemStats{GPU: &GPUStats{Name: "test-gpu", Temperature: f64(50.0)}}
	snap := &sidecar.Data{GPU: []sidecar.GPUData{{Temperature: f64(78.0)}}}

	merged := Overlay(base, snap)
	require.NotNil(t, merged.GPU)
	assert.Equal(t, 78.0, *merged.GPU.Temperature)

	// The caller's record is never mutated in place.
	assert.Equal(t, 50.0, *base.GPU.Temperature)
}

func TestOverlayFanSpeedFillsGapOnly(t *testing.T) {
	snap := &sidecar.Data{GPU: []sidecar.GPUData{{FanSpeed: f64(1500.0)}}}

	// Baseline has no fan reading: the snapshot fills it.
	merged := Overlay(SystemStats{GPU: &GPUStats{}}, snap)
	require.NotNil(t, merged.GPU.FanSpeed)
	assert.Equal(t, 1500.0, *merged.GPU.FanSpeed)

	// Baseline already has one: it wins over the snapshot.
	merged = Overlay(SystemStats{GPU: &GPUStats{FanSpeed: f64(900.0)}}, snap)
	assert.Equal(t, 900.0, *merged.GPU.FanSpeed)
}

func TestOverlayNoBaselineGPU(t *testing.T) {
	snap := &sidecar.Data{GPU: []sidecar.GPUData{{Temperature: f64(80.0)}}}

	// With no baseline GPU record there is nothing to merge into; the
	// readings stay available on the raw snapshot.
	merged := Overlay(SystemStats{}, snap)
	assert.Nil(t, merged.GPU)
}

func TestOverlayEmptySnapshotGPUList(t *testing.T) {
	base := SystemStats{GPU: &GPUStats{Temperature: f64(55.0)}}
	snap := &sidecar.Data{GPU: []sidecar.GPUData{}}

	merged := Overlay(base, snap)
	assert.Equal(t, 55.0, *merged.GPU.Temperature)
}
