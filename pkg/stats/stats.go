// Package stats collects baseline system statistics and overlays the
// sidecar's sensor readings onto them. The baseline collector runs on its
// own cadence, fully independent of the sidecar; the two meet only in
// Overlay.
package stats

// CPUStats holds baseline CPU statistics. Temperature is nil here; it is
// filled in from the sidecar snapshot by Overlay.
type CPUStats struct {
	Name         string    `json:"name"`
	Usage        float64   `json:"usage"`
	Frequency    uint64    `json:"frequency"`
	Cores        int       `json:"cores"`
	LogicalCores int       `json:"logical_cores"`
	PerCoreUsage []float64 `json:"per_core_usage"`
	Temperature  *float64  `json:"temperature"`
}

// RAMStats holds memory statistics in bytes
type RAMStats struct {
	Total        uint64  `json:"total"`
	Used         uint64  `json:"used"`
	Available    uint64  `json:"available"`
	UsagePercent float64 `json:"usage_percent"`
}

// GPUStats holds baseline GPU statistics for the primary GPU, when a
// baseline provider reports one.
type GPUStats struct {
	Name        string   `json:"name"`
	Usage       float64  `json:"usage"`
	MemoryTotal uint64   `json:"memory_total"`
	MemoryUsed  uint64   `json:"memory_used"`
	Temperature *float64 `json:"temperature"`
	FanSpeed    *float64 `json:"fan_speed"`
}

// SystemInfo holds static host information. The GPU fields are empty
// when no baseline GPU provider is available.
type SystemInfo struct {
	CPUName       string `json:"cpu_name"`
	CPUCores      int    `json:"cpu_cores"`
	CPUThreads    int    `json:"cpu_threads"`
	RAMTotal      uint64 `json:"ram_total"`
	GPUName       string `json:"gpu_name"`
	GPUVRAMTotal  uint64 `json:"gpu_vram_total"`
	OSName        string `json:"os_name"`
	OSVersion     string `json:"os_version"`
	Hostname      string `json:"hostname"`
	UptimeSeconds uint64 `json:"uptime_seconds"`
}

// ProcessInfo holds one entry of the top-processes listing
type ProcessInfo struct {
	PID      int32   `json:"pid"`
	Name     string  `json:"name"`
	CPUUsage float64 `json:"cpu_usage"`
	Memory   uint64  `json:"memory"`
}

// SystemStats is the combined statistics payload served to consumers
type SystemStats struct {
	CPU       CPUStats      `json:"cpu"`
	RAM       RAMStats      `json:"ram"`
	GPU       *GPUStats     `json:"gpu"`
	System    SystemInfo    `json:"system_info"`
	Processes []ProcessInfo `json:"processes"`
	Timestamp uint64        `json:"timestamp"`
}
