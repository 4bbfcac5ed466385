// Package export writes snapshot reports to disk in JSON, YAML, CSV,
// Markdown, and HTML.
package export

import (
	"time"

	"github.com/rileyhilliard/systrix/internal/metrics"
)

// TimestampLayout is how report timestamps are written.
const TimestampLayout = "2006-01-02 15:04:05"

// Bundle is the report document. Every format is rendered from it, so the
// field set is the same across formats.
type Bundle struct {
	Timestamp      string         `json:"timestamp" yaml:"timestamp"`
	System         SystemReport   `json:"system" yaml:"system"`
	CPU            CPUReport      `json:"cpu" yaml:"cpu"`
	Memory         MemoryReport   `json:"memory" yaml:"memory"`
	Disk           UsageReport    `json:"disk" yaml:"disk"`
	DiskPartitions []PartitionRow `json:"disk_partitions" yaml:"disk_partitions"`
	Network        NetworkReport  `json:"network" yaml:"network"`
	Battery        *BatteryReport `json:"battery" yaml:"battery"`
	Processes      []ProcessRow   `json:"processes" yaml:"processes"`
}

type SystemReport struct {
	Device        string  `json:"device" yaml:"device"`
	OS            string  `json:"os" yaml:"os"`
	OSVersion     string  `json:"os_version" yaml:"os_version"`
	UptimeSeconds uint64  `json:"uptime_seconds" yaml:"uptime_seconds"`
	Load1         float64 `json:"load_1" yaml:"load_1"`
	Load5         float64 `json:"load_5" yaml:"load_5"`
	Load15        float64 `json:"load_15" yaml:"load_15"`
}

type CPUReport struct {
	Model         string    `json:"model" yaml:"model"`
	PhysicalCores int       `json:"physical_cores" yaml:"physical_cores"`
	LogicalCores  int       `json:"logical_cores" yaml:"logical_cores"`
	UsagePercent  float64   `json:"usage_percent" yaml:"usage_percent"`
	FrequencyMHz  uint64    `json:"frequency_mhz" yaml:"frequency_mhz"`
	PerCoreUsage  []float64 `json:"per_core_usage" yaml:"per_core_usage"`
}

type MemoryReport struct {
	UsageReport `yaml:",inline"`
	SwapTotal   uint64  `json:"swap_total_bytes" yaml:"swap_total_bytes"`
	SwapUsed    uint64  `json:"swap_used_bytes" yaml:"swap_used_bytes"`
	SwapPercent float64 `json:"swap_percent" yaml:"swap_percent"`
}

// UsageReport is a total/used/available triple in bytes.
type UsageReport struct {
	Total        uint64  `json:"total_bytes" yaml:"total_bytes"`
	Used         uint64  `json:"used_bytes" yaml:"used_bytes"`
	Available    uint64  `json:"available_bytes" yaml:"available_bytes"`
	UsagePercent float64 `json:"usage_percent" yaml:"usage_percent"`
}

type PartitionRow struct {
	Name         string  `json:"name" yaml:"name"`
	MountPoint   string  `json:"mount_point" yaml:"mount_point"`
	Filesystem   string  `json:"filesystem" yaml:"filesystem"`
	Total        uint64  `json:"total_bytes" yaml:"total_bytes"`
	Used         uint64  `json:"used_bytes" yaml:"used_bytes"`
	Available    uint64  `json:"available_bytes" yaml:"available_bytes"`
	UsagePercent float64 `json:"usage_percent" yaml:"usage_percent"`
}

type NetworkReport struct {
	TotalRx    uint64         `json:"total_rx_bytes" yaml:"total_rx_bytes"`
	TotalTx    uint64         `json:"total_tx_bytes" yaml:"total_tx_bytes"`
	Interfaces []InterfaceRow `json:"interfaces" yaml:"interfaces"`
}

// InterfaceRow rates are bytes moved since the previous refresh.
type InterfaceRow struct {
	Name               string `json:"name" yaml:"name"`
	Received           uint64 `json:"received_bytes" yaml:"received_bytes"`
	Transmitted        uint64 `json:"transmitted_bytes" yaml:"transmitted_bytes"`
	RxRate             uint64 `json:"rx_rate_bytes" yaml:"rx_rate_bytes"`
	TxRate             uint64 `json:"tx_rate_bytes" yaml:"tx_rate_bytes"`
	PacketsReceived    uint64 `json:"packets_received" yaml:"packets_received"`
	PacketsTransmitted uint64 `json:"packets_transmitted" yaml:"packets_transmitted"`
}

type BatteryReport struct {
	Percentage           float64 `json:"percentage" yaml:"percentage"`
	Status               string  `json:"status" yaml:"status"`
	Charging             bool    `json:"is_charging" yaml:"is_charging"`
	Plugged              bool    `json:"is_plugged" yaml:"is_plugged"`
	TimeRemainingSeconds *int64  `json:"time_remaining_seconds" yaml:"time_remaining_seconds"`
	HealthPercent        float64 `json:"health_percent" yaml:"health_percent"`
	Technology           string  `json:"technology" yaml:"technology"`
	Vendor               string  `json:"vendor" yaml:"vendor"`
}

type ProcessRow struct {
	PID           int32   `json:"pid" yaml:"pid"`
	Name          string  `json:"name" yaml:"name"`
	User          string  `json:"user" yaml:"user"`
	CPUPercent    float64 `json:"cpu_percent" yaml:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent" yaml:"memory_percent"`
	MemoryBytes   uint64  `json:"memory_bytes" yaml:"memory_bytes"`
	DiskRead      uint64  `json:"disk_read_bytes" yaml:"disk_read_bytes"`
	DiskWrite     uint64  `json:"disk_write_bytes" yaml:"disk_write_bytes"`
	Threads       int32   `json:"threads" yaml:"threads"`
	Status        string  `json:"status" yaml:"status"`
	Executable    string  `json:"executable" yaml:"executable"`
}

// NewBundle converts a snapshot. The timestamp is the snapshot's own, or
// now when the snapshot has none. Processes keep the snapshot's order.
func NewBundle(s metrics.Snapshot, now time.Time) Bundle {
	ts := s.Timestamp
	if ts.IsZero() {
		ts = now
	}

	b := Bundle{
		Timestamp: ts.Local().Format(TimestampLayout),
		System: SystemReport{
			Device:        s.CPU.Hostname,
			OS:            s.CPU.OSName,
			OSVersion:     s.CPU.OSVersion,
			UptimeSeconds: s.CPU.UptimeSeconds,
			Load1:         s.CPU.Load1,
			Load5:         s.CPU.Load5,
			Load15:        s.CPU.Load15,
		},
		CPU: CPUReport{
			Model:         s.CPU.Model,
			PhysicalCores: s.CPU.PhysicalCores,
			LogicalCores:  s.CPU.LogicalCores,
			UsagePercent:  s.CPU.GlobalUsage,
			FrequencyMHz:  s.CPU.FrequencyMHz,
			PerCoreUsage:  append([]float64{}, s.CPU.PerCoreUsage...),
		},
		Memory: MemoryReport{
			UsageReport: UsageReport{
				Total:        s.Memory.Total,
				Used:         s.Memory.Used,
				Available:    s.Memory.Available,
				UsagePercent: s.Memory.UsagePercent,
			},
			SwapTotal:   s.Memory.SwapTotal,
			SwapUsed:    s.Memory.SwapUsed,
			SwapPercent: s.Memory.SwapPercent,
		},
		Disk: UsageReport{
			Total:        s.Disk.Total,
			Used:         s.Disk.Used,
			Available:    s.Disk.Available,
			UsagePercent: s.Disk.UsagePercent,
		},
		DiskPartitions: make([]PartitionRow, 0, len(s.Disks)),
		Network: NetworkReport{
			TotalRx:    s.Network.TotalRx,
			TotalTx:    s.Network.TotalTx,
			Interfaces: make([]InterfaceRow, 0, len(s.Network.Interfaces)),
		},
		Processes: make([]ProcessRow, 0, len(s.Processes)),
	}

	for _, d := range s.Disks {
		b.DiskPartitions = append(b.DiskPartitions, PartitionRow{
			Name:         d.Name,
			MountPoint:   d.MountPoint,
			Filesystem:   d.FSType,
			Total:        d.Total,
			Used:         d.Used,
			Available:    d.Available,
			UsagePercent: d.UsagePercent,
		})
	}
	for _, i := range s.Network.Interfaces {
		b.Network.Interfaces = append(b.Network.Interfaces, InterfaceRow{
			Name:               i.Name,
			Received:           i.Received,
			Transmitted:        i.Transmitted,
			RxRate:             i.RxRate,
			TxRate:             i.TxRate,
			PacketsReceived:    i.PacketsReceived,
			PacketsTransmitted: i.PacketsTransmitted,
		})
	}
	if s.Battery.Present {
		bat := &BatteryReport{
			Percentage:    s.Battery.Percent,
			Status:        s.Battery.Status,
			Charging:      s.Battery.Charging,
			Plugged:       s.Battery.Plugged,
			HealthPercent: s.Battery.Health,
			Technology:    s.Battery.Technology,
			Vendor:        s.Battery.Vendor,
		}
		if s.Battery.TimeRemaining != nil {
			secs := int64(s.Battery.TimeRemaining.Seconds())
			bat.TimeRemainingSeconds = &secs
		}
		b.Battery = bat
	}
	for _, p := range s.Processes {
		b.Processes = append(b.Processes, ProcessRow{
			PID:           p.PID,
			Name:          p.Name,
			User:          p.User,
			CPUPercent:    p.CPUPercent,
			MemoryPercent: p.MemoryPercent,
			MemoryBytes:   p.MemoryBytes,
			DiskRead:      p.DiskRead,
			DiskWrite:     p.DiskWrite,
			Threads:       p.Threads,
			Status:        p.Status,
			Executable:    p.ExePath,
		})
	}
	return b
}
