package export

import (
	"encoding/csv"
	"io"
	"strconv"
)

// csvWriter writes a sectioned report: each section starts with a
// "=== NAME ===" row followed by key/value rows or a header and table rows.
type csvWriter struct{}

func (csvWriter) Format() Format { return FormatCSV }

func (csvWriter) Write(w io.Writer, b Bundle) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"Systrix System Monitor Export"},
		{"Timestamp", b.Timestamp},
		{},
		{"=== SYSTEM INFORMATION ==="},
		{"Device", b.System.Device},
		{"OS", b.System.OS},
		{"OS Version", b.System.OSVersion},
		{"Uptime (seconds)", u64(b.System.UptimeSeconds)},
		{"Load Average", f2(b.System.Load1), f2(b.System.Load5), f2(b.System.Load15)},
		{},
		{"=== CPU ==="},
		{"Model", b.CPU.Model},
		{"Physical Cores", strconv.Itoa(b.CPU.PhysicalCores)},
		{"Logical Cores", strconv.Itoa(b.CPU.LogicalCores)},
		{"Usage (%)", f2(b.CPU.UsagePercent)},
		{"Frequency (MHz)", u64(b.CPU.FrequencyMHz)},
		{},
		{"=== MEMORY ==="},
		{"Total (bytes)", u64(b.Memory.Total)},
		{"Used (bytes)", u64(b.Memory.Used)},
		{"Available (bytes)", u64(b.Memory.Available)},
		{"Usage (%)", f2(b.Memory.UsagePercent)},
		{"Swap Total (bytes)", u64(b.Memory.SwapTotal)},
		{"Swap Used (bytes)", u64(b.Memory.SwapUsed)},
		{},
		{"=== DISK (Total) ==="},
		{"Total (bytes)", u64(b.Disk.Total)},
		{"Used (bytes)", u64(b.Disk.Used)},
		{"Available (bytes)", u64(b.Disk.Available)},
		{"Usage (%)", f2(b.Disk.UsagePercent)},
		{},
	}

	if len(b.DiskPartitions) > 0 {
		rows = append(rows,
			[]string{"=== DISK PARTITIONS ==="},
			[]string{"Name", "Mount Point", "Filesystem", "Total (bytes)", "Used (bytes)", "Available (bytes)", "Usage (%)"})
		for _, d := range b.DiskPartitions {
			rows = append(rows, []string{d.Name, d.MountPoint, d.Filesystem,
				u64(d.Total), u64(d.Used), u64(d.Available), f2(d.UsagePercent)})
		}
		rows = append(rows, []string{})
	}

	rows = append(rows,
		[]string{"=== NETWORK ==="},
		[]string{"Total RX (bytes)", u64(b.Network.TotalRx)},
		[]string{"Total TX (bytes)", u64(b.Network.TotalTx)},
		[]string{})
	if len(b.Network.Interfaces) > 0 {
		rows = append(rows,
			[]string{"=== NETWORK INTERFACES ==="},
			[]string{"Name", "RX (bytes)", "TX (bytes)", "RX Rate (bytes)", "TX Rate (bytes)", "Packets RX", "Packets TX"})
		for _, i := range b.Network.Interfaces {
			rows = append(rows, []string{i.Name, u64(i.Received), u64(i.Transmitted),
				u64(i.RxRate), u64(i.TxRate), u64(i.PacketsReceived), u64(i.PacketsTransmitted)})
		}
		rows = append(rows, []string{})
	}

	if bat := b.Battery; bat != nil {
		rows = append(rows,
			[]string{"=== BATTERY ==="},
			[]string{"Percentage", strconv.FormatFloat(bat.Percentage, 'f', 0, 64)},
			[]string{"Status", bat.Status},
			[]string{"Charging", strconv.FormatBool(bat.Charging)},
			[]string{"Plugged", strconv.FormatBool(bat.Plugged)})
		if bat.TimeRemainingSeconds != nil {
			rows = append(rows, []string{"Time Remaining (seconds)", strconv.FormatInt(*bat.TimeRemainingSeconds, 10)})
		}
		rows = append(rows, []string{"Health (%)", strconv.FormatFloat(bat.HealthPercent, 'f', 0, 64)}, []string{})
	}

	if len(b.Processes) > 0 {
		rows = append(rows,
			[]string{"=== PROCESSES ==="},
			[]string{"PID", "Name", "User", "CPU (%)", "Memory (%)", "Memory (bytes)",
				"Disk Read (bytes)", "Disk Write (bytes)", "Threads", "Status", "Executable"})
		for _, p := range b.Processes {
			rows = append(rows, []string{
				strconv.FormatInt(int64(p.PID), 10), p.Name, p.User,
				f2(p.CPUPercent), f2(p.MemoryPercent), u64(p.MemoryBytes),
				u64(p.DiskRead), u64(p.DiskWrite),
				strconv.FormatInt(int64(p.Threads), 10), p.Status, p.Executable,
			})
		}
	}

	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func u64(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func f2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
