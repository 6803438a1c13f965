package collector

import "time"

// ============================================================================
// DATA STRUCTURES
// ============================================================================

// Sample is one timestamped snapshot of host telemetry. It is immutable once
// collected; every downstream consumer (history, weather, advisor, alerts)
// only reads it.
type Sample struct {
	Timestamp time.Time    `json:"timestamp"`
	CPU       CPUStats     `json:"cpu"`
	Memory    MemoryStats  `json:"memory"`
	Network   NetworkStats `json:"network"`
	Disks     []DiskUsage  `json:"disks"`
	Processes ProcessStats `json:"processes"`
}

// CPUStats holds processor readings for one sample.
type CPUStats struct {
	UsagePercent float64   `json:"usage_percent"` // 0-100
	PerCore      []float64 `json:"per_core,omitempty"`
	CoreCount    int       `json:"core_count"`
	Model        string    `json:"model,omitempty"`

	// TemperatureC is only meaningful when TemperatureKnown is true.
	// Many hosts expose no readable thermal sensor.
	TemperatureC     float64 `json:"temperature_c"`
	TemperatureKnown bool    `json:"temperature_known"`
}

// MemoryStats holds RAM and swap readings in bytes.
type MemoryStats struct {
	TotalBytes    uint64 `json:"total_bytes"`
	UsedBytes     uint64 `json:"used_bytes"`
	FreeBytes     uint64 `json:"free_bytes"`
	SwapTotalBytes uint64 `json:"swap_total_bytes"`
	SwapUsedBytes  uint64 `json:"swap_used_bytes"`
}

// UsagePercent derives used/total as a percentage. Returns 0 when total is
// unknown so callers never divide by zero.
func (m MemoryStats) UsagePercent() float64 {
	if m.TotalBytes == 0 {
		return 0
	}
	return float64(m.UsedBytes) / float64(m.TotalBytes) * 100
}

// InterfaceCounters holds cumulative traffic counters for one NIC.
type InterfaceCounters struct {
	Name    string `json:"name"`
	RxBytes uint64 `json:"rx_bytes"`
	TxBytes uint64 `json:"tx_bytes"`
}

// NetworkStats holds per-interface cumulative counters plus the name of the
// primary (busiest) interface.
type NetworkStats struct {
	PrimaryInterface string              `json:"primary_interface,omitempty"`
	Interfaces       []InterfaceCounters `json:"interfaces,omitempty"`
}

// TotalRx sums received bytes across all interfaces.
func (n NetworkStats) TotalRx() uint64 {
	var sum uint64
	for _, ifc := range n.Interfaces {
		sum += ifc.RxBytes
	}
	return sum
}

// TotalTx sums transmitted bytes across all interfaces.
func (n NetworkStats) TotalTx() uint64 {
	var sum uint64
	for _, ifc := range n.Interfaces {
		sum += ifc.TxBytes
	}
	return sum
}

// DiskUsage holds usage for one mounted filesystem.
type DiskUsage struct {
	Filesystem     string  `json:"filesystem"`
	MountPoint     string  `json:"mount_point"`
	UsagePercent   float64 `json:"usage_percent"` // 0-100
	AvailableBytes uint64  `json:"available_bytes"`
}

// ProcessStats holds process-table counts plus the observed process names
// used by the advisor's productivity rules.
type ProcessStats struct {
	Running  int      `json:"running"`
	Blocked  int      `json:"blocked"`
	Sleeping int      `json:"sleeping"`
	Total    int      `json:"total"`
	Names    []string `json:"names,omitempty"`
}

// AvgDiskUsage averages usage percent across all mounted filesystems in the
// sample. Returns 0 for a sample with no disk entries.
func (s *Sample) AvgDiskUsage() float64 {
	if len(s.Disks) == 0 {
		return 0
	}
	var sum float64
	for _, d := range s.Disks {
		sum += d.UsagePercent
	}
	return sum / float64(len(s.Disks))
}

// Normalize clamps every percent field into [0,100]. Sensors occasionally
// report transient values slightly outside the range (gopsutil rounding,
// counter wraps), and classification assumes the invariant holds.
func (s *Sample) Normalize() {
	s.CPU.UsagePercent = clampPct(s.CPU.UsagePercent)
	for i := range s.CPU.PerCore {
		s.CPU.PerCore[i] = clampPct(s.CPU.PerCore[i])
	}
	for i := range s.Disks {
		s.Disks[i].UsagePercent = clampPct(s.Disks[i].UsagePercent)
	}
	if s.CPU.TemperatureKnown && s.CPU.TemperatureC < 0 {
		s.CPU.TemperatureC = 0
	}
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
