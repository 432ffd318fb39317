package stats

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// DefaultTopProcesses is how many processes the top-by-CPU listing keeps
const DefaultTopProcesses = 10

// Monitor is the baseline stats provider: it samples CPU, RAM, GPU, and
// host information on its own cadence, independent of the sidecar. The
// most recent collection is cached so consumer reads are cheap and the
// CPU usage deltas stay warm.
//
// CPU temperature is always nil in the baseline; it comes from the
// sidecar via Overlay. The GPU record exists only when NVML is
// available; its temperature and fan speed are then refined by Overlay.
type Monitor struct {
	logger *zap.SugaredLogger
	topN   int
	gpu    *GPUMonitor

	mu   sync.RWMutex
	last SystemStats
}

// NewMonitor creates a monitor. topN bounds the top-processes listing;
// zero or negative means DefaultTopProcesses.
func NewMonitor(logger *zap.SugaredLogger, topN int) *Monitor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if topN <= 0 {
		topN = DefaultTopProcesses
	}

	// Prime the CPU usage counters so the first real collection has a
	// delta window to measure against.
	_, _ = cpu.Percent(0, true)

	return &Monitor{
		logger: logger,
		topN:   topN,
		gpu:    NewGPUMonitor(logger),
	}
}

// HasGPUSupport reports whether a baseline GPU provider is available
func (m *Monitor) HasGPUSupport() bool {
	return m.gpu != nil
}

// Close releases the GPU provider's driver handle
func (m *Monitor) Close() {
	if m.gpu != nil {
		m.gpu.Close()
	}
}

// Run refreshes the cache on the given interval until the context is
// cancelled.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.Refresh()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Refresh()
		}
	}
}

// Refresh collects a full statistics record now, caches it, and returns it
func (m *Monitor) Refresh() SystemStats {
	stats := SystemStats{
		CPU:       m.collectCPU(),
		RAM:       m.collectRAM(),
		GPU:       m.collectGPU(),
		System:    m.collectSystemInfo(),
		Processes: m.collectTopProcesses(),
		Timestamp: uint64(time.Now().UnixMilli()),
	}
	if stats.GPU != nil {
		stats.System.GPUName = stats.GPU.Name
		stats.System.GPUVRAMTotal = stats.GPU.MemoryTotal
	}

	m.mu.Lock()
	m.last = stats
	m.mu.Unlock()

	return stats
}

// Latest returns the most recent collection, refreshing first if none has
// happened yet.
func (m *Monitor) Latest() SystemStats {
	m.mu.RLock()
	last := m.last
	m.mu.RUnlock()

	if last.Timestamp == 0 {
		return m.Refresh()
	}
	return last
}

func (m *Monitor) collectCPU() CPUStats {
	stats := CPUStats{}

	perCore, err := cpu.Percent(0, true)
	if err != nil {
		m.logger.Warnw("cpu usage collection failed", "error", err)
	}
	stats.PerCoreUsage = perCore

	if len(perCore) > 0 {
		var total float64
		for _, u := range perCore {
			total += u
		}
		stats.Usage = total / float64(len(perCore))
	}

	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		stats.Name = infos[0].ModelName
		stats.Frequency = uint64(infos[0].Mhz)
	} else if err != nil {
		m.logger.Warnw("cpu info collection failed", "error", err)
	}

	if physical, err := cpu.Counts(false); err == nil {
		stats.Cores = physical
	}
	if logical, err := cpu.Counts(true); err == nil {
		stats.LogicalCores = logical
	}

	return stats
}

func (m *Monitor) collectRAM() RAMStats {
	vm, err := mem.VirtualMemory()
	if err != nil || vm == nil {
		m.logger.Warnw("memory collection failed", "error", err)
		return RAMStats{}
	}

	return RAMStats{
		Total:        vm.Total,
		Used:         vm.Used,
		Available:    vm.Available,
		UsagePercent: vm.UsedPercent,
	}
}

func (m *Monitor) collectGPU() *GPUStats {
	if m.gpu == nil {
		return nil
	}
	return m.gpu.Collect()
}

func (m *Monitor) collectSystemInfo() SystemInfo {
	info := SystemInfo{}

	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		info.CPUName = infos[0].ModelName
	}
	if physical, err := cpu.Counts(false); err == nil {
		info.CPUCores = physical
	}
	if logical, err := cpu.Counts(true); err == nil {
		info.CPUThreads = logical
	}
	if vm, err := mem.VirtualMemory(); err == nil && vm != nil {
		info.RAMTotal = vm.Total
	}
	hi, err := host.Info()
	if err != nil || hi == nil {
		m.logger.Warnw("host info collection failed", "error", err)
		return info
	}

	info.OSName = hi.Platform
	info.OSVersion = hi.PlatformVersion
	info.Hostname = hi.Hostname
	info.UptimeSeconds = hi.Uptime

	return info
}

func (m *Monitor) collectTopProcesses() []ProcessInfo {
	procs, err := process.Processes()
	if err != nil {
		m.logger.Warnw("process listing failed", "error", err)
		return nil
	}

	infos := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}

		cpuUsage, _ := p.CPUPercent()

		var memory uint64
		if mi, err := p.MemoryInfo(); err == nil && mi != nil {
			memory = mi.RSS
		}

		// Skip fully idle processes
		if cpuUsage == 0 && memory == 0 {
			continue
		}

		infos = append(infos, ProcessInfo{
			PID:      p.Pid,
			Name:     name,
			CPUUsage: cpuUsage,
			Memory:   memory,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CPUUsage > infos[j].CPUUsage
	})

	if len(infos) > m.topN {
		infos = infos[:m.topN]
	}
	return infos
}
