// Package metrics reads host telemetry through a Provider and turns raw
// readings into immutable snapshots.
package metrics

import "time"

// CPUSnapshot describes the processor and host at one point in time.
type CPUSnapshot struct {
	Hostname      string    `json:"hostname" yaml:"hostname"`
	OSName        string    `json:"os_name" yaml:"os_name"`
	OSVersion     string    `json:"os_version" yaml:"os_version"`
	Model         string    `json:"model" yaml:"model"`
	PhysicalCores int       `json:"physical_cores" yaml:"physical_cores"`
	LogicalCores  int       `json:"logical_cores" yaml:"logical_cores"`
	GlobalUsage   float64   `json:"global_usage" yaml:"global_usage"`
	PerCoreUsage  []float64 `json:"per_core_usage" yaml:"per_core_usage"`
	FrequencyMHz  uint64    `json:"frequency_mhz" yaml:"frequency_mhz"`
	Load1         float64   `json:"load_1" yaml:"load_1"`
	Load5         float64   `json:"load_5" yaml:"load_5"`
	Load15        float64   `json:"load_15" yaml:"load_15"`
	UptimeSeconds uint64    `json:"uptime_seconds" yaml:"uptime_seconds"`
}

// MemorySnapshot holds RAM and swap totals. Used never exceeds Total.
type MemorySnapshot struct {
	Total        uint64  `json:"total" yaml:"total"`
	Used         uint64  `json:"used" yaml:"used"`
	Available    uint64  `json:"available" yaml:"available"`
	UsagePercent float64 `json:"usage_percent" yaml:"usage_percent"`
	SwapTotal    uint64  `json:"swap_total" yaml:"swap_total"`
	SwapUsed     uint64  `json:"swap_used" yaml:"swap_used"`
	SwapPercent  float64 `json:"swap_percent" yaml:"swap_percent"`
}

// DiskSnapshot is the aggregate over all enumerated partitions.
type DiskSnapshot struct {
	Total        uint64  `json:"total" yaml:"total"`
	Used         uint64  `json:"used" yaml:"used"`
	Available    uint64  `json:"available" yaml:"available"`
	UsagePercent float64 `json:"usage_percent" yaml:"usage_percent"`
}

// DiskInfo describes a single mounted partition.
type DiskInfo struct {
	Name         string  `json:"name" yaml:"name"`
	MountPoint   string  `json:"mount_point" yaml:"mount_point"`
	FSType       string  `json:"fs_type" yaml:"fs_type"`
	Total        uint64  `json:"total" yaml:"total"`
	Used         uint64  `json:"used" yaml:"used"`
	Available    uint64  `json:"available" yaml:"available"`
	UsagePercent float64 `json:"usage_percent" yaml:"usage_percent"`
	Removable    bool    `json:"removable" yaml:"removable"`
}

// NetworkInterface carries cumulative counters and the per-refresh rate
// supplied by the provider.
type NetworkInterface struct {
	Name               string `json:"name" yaml:"name"`
	Received           uint64 `json:"received" yaml:"received"`
	Transmitted        uint64 `json:"transmitted" yaml:"transmitted"`
	RxRate             uint64 `json:"rx_rate" yaml:"rx_rate"`
	TxRate             uint64 `json:"tx_rate" yaml:"tx_rate"`
	PacketsReceived    uint64 `json:"packets_received" yaml:"packets_received"`
	PacketsTransmitted uint64 `json:"packets_transmitted" yaml:"packets_transmitted"`
	ErrorsReceived     uint64 `json:"errors_received" yaml:"errors_received"`
	ErrorsTransmitted  uint64 `json:"errors_transmitted" yaml:"errors_transmitted"`
}

// NetworkSnapshot lists interfaces plus aggregate byte totals.
type NetworkSnapshot struct {
	Interfaces []NetworkInterface `json:"interfaces" yaml:"interfaces"`
	TotalRx    uint64             `json:"total_rx" yaml:"total_rx"`
	TotalTx    uint64             `json:"total_tx" yaml:"total_tx"`
}

// BatteryInfo reports battery state. Present=false is a normal result on
// machines without one.
type BatteryInfo struct {
	Present       bool           `json:"present" yaml:"present"`
	Percent       float64        `json:"percent" yaml:"percent"`
	Charging      bool           `json:"charging" yaml:"charging"`
	Plugged       bool           `json:"plugged" yaml:"plugged"`
	TimeRemaining *time.Duration `json:"time_remaining,omitempty" yaml:"time_remaining,omitempty"`
	Health        float64        `json:"health" yaml:"health"`
	Status        string         `json:"status" yaml:"status"`
	Technology    string         `json:"technology" yaml:"technology"`
	Vendor        string         `json:"vendor" yaml:"vendor"`
}

// ProcessInfo is one row of the process table. PID is unique within a snapshot.
type ProcessInfo struct {
	PID           int32     `json:"pid" yaml:"pid"`
	Name          string    `json:"name" yaml:"name"`
	User          string    `json:"user" yaml:"user"`
	CPUPercent    float64   `json:"cpu_percent" yaml:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent" yaml:"memory_percent"`
	MemoryBytes   uint64    `json:"memory_bytes" yaml:"memory_bytes"`
	DiskRead      uint64    `json:"disk_read" yaml:"disk_read"`
	DiskWrite     uint64    `json:"disk_write" yaml:"disk_write"`
	Threads       int32     `json:"threads" yaml:"threads"`
	Status        string    `json:"status" yaml:"status"`
	StartTime     time.Time `json:"start_time" yaml:"start_time"`
	ExePath       string    `json:"exe_path" yaml:"exe_path"`
}

// Snapshot bundles everything produced by one acquisition.
type Snapshot struct {
	Timestamp time.Time       `json:"timestamp" yaml:"timestamp"`
	CPU       CPUSnapshot     `json:"cpu" yaml:"cpu"`
	Memory    MemorySnapshot  `json:"memory" yaml:"memory"`
	Disk      DiskSnapshot    `json:"disk" yaml:"disk"`
	Disks     []DiskInfo      `json:"disks" yaml:"disks"`
	Network   NetworkSnapshot `json:"network" yaml:"network"`
	Battery   BatteryInfo     `json:"battery" yaml:"battery"`
	Processes []ProcessInfo   `json:"processes" yaml:"processes"`
}

// UsagePercent is used/total*100, or 0 when total is 0.
func UsagePercent(used, total uint64) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(used) / float64(total) * 100
}

// SaturatingSub returns a-b, or 0 when b > a.
func SaturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// ClampPercent bounds p to [0, 100].
func ClampPercent(p float64) float64 {
	switch {
	case p != p: // NaN
		return 0
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
