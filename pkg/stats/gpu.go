package stats

import (
	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"go.uber.org/zap"
)

// GPUMonitor samples the primary NVIDIA GPU through NVML. Construction is
// best-effort: on machines without the driver NewGPUMonitor returns nil
// and the baseline simply carries no GPU record; the sidecar snapshot
// then remains the only GPU source.
type GPUMonitor struct {
	device nvml.Device
	logger *zap.SugaredLogger
}

// NewGPUMonitor initializes NVML and grabs device 0. Returns nil when the
// library or the device is unavailable.
func NewGPUMonitor(logger *zap.SugaredLogger) *GPUMonitor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	if ret := nvml.Init(); ret != nvml.SUCCESS {
		logger.Infow("NVML unavailable, baseline GPU stats disabled",
			"reason", nvml.ErrorString(ret))
		return nil
	}

	device, ret := nvml.DeviceGetHandleByIndex(0)
	if ret != nvml.SUCCESS {
		logger.Infow("no NVML device, baseline GPU stats disabled",
			"reason", nvml.ErrorString(ret))
		_ = nvml.Shutdown()
		return nil
	}

	return &GPUMonitor{device: device, logger: logger}
}

// Collect samples the device. Sensors the driver cannot read are left at
// their zero value or nil, never fabricated.
func (g *GPUMonitor) Collect() *GPUStats {
	stats := &GPUStats{}

	if name, ret := g.device.GetName(); ret == nvml.SUCCESS {
		stats.Name = name
	}
	if util, ret := g.device.GetUtilizationRates(); ret == nvml.SUCCESS {
		stats.Usage = float64(util.Gpu)
	}
	if mi, ret := g.device.GetMemoryInfo(); ret == nvml.SUCCESS {
		stats.MemoryTotal = mi.Total
		stats.MemoryUsed = mi.Used
	}
	if temp, ret := g.device.GetTemperature(nvml.TEMPERATURE_GPU); ret == nvml.SUCCESS {
		t := float64(temp)
		stats.Temperature = &t
	}
	if fan, ret := g.device.GetFanSpeed(); ret == nvml.SUCCESS {
		f := float64(fan)
		stats.FanSpeed = &f
	}

	return stats
}

// Close releases the NVML handle
func (g *GPUMonitor) Close() {
	_ = nvml.Shutdown()
}
