package stats

import (
	"github.com/luminsdev/hardware-monitoring/pkg/sidecar"
)

// Overlay merges the latest sidecar snapshot into a baseline stats record.
// The sidecar is authoritative for temperatures: a CPU or GPU temperature
// it reports unconditionally overwrites the baseline value. GPU fan speed
// is the one asymmetric field: the baseline wins when it already has a
// reading, and the snapshot only fills the gap. With no snapshot the
// baseline passes through unmodified.
//
// The baseline carries at most one GPU record, so it is matched against
// the snapshot's first GPU entry; the remaining entries stay available on
// the raw snapshot.
func Overlay(base SystemStats, snap *sidecar.Data) SystemStats {
	if snap == nil {
		return base
	}

	if snap.CPU != nil && snap.CPU.Temperature != nil {
		t := *snap.CPU.Temperature
		base.CPU.Temperature = &t
	}

	if base.GPU != nil && len(snap.GPU) > 0 {
		gpu := *base.GPU // copy so the caller's record is never aliased
		entry := snap.GPU[0]

		if entry.Temperature != nil {
			t := *entry.Temperature
			gpu.Temperature = &t
		}
		if gpu.FanSpeed == nil && entry.FanSpeed != nil {
			f := *entry.FanSpeed
			gpu.FanSpeed = &f
		}

		base.GPU = &gpu
	}

	return base
}
