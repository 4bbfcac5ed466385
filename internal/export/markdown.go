package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

// MaxMarkdownProcesses caps the process table in Markdown and HTML reports.
// JSON, YAML, and CSV always carry every process.
const MaxMarkdownProcesses = 50

type markdownWriter struct{}

func (markdownWriter) Format() Format { return FormatMarkdown }

func (markdownWriter) Write(w io.Writer, b Bundle) error {
	_, err := io.WriteString(w, renderMarkdown(b))
	return err
}

func renderMarkdown(b Bundle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Systrix System Report\n\n")
	fmt.Fprintf(&sb, "Generated %s\n\n", b.Timestamp)

	sb.WriteString("## System Information\n\n")
	kvTable(&sb, [][2]string{
		{"Device", b.System.Device},
		{"OS", strings.TrimSpace(b.System.OS + " " + b.System.OSVersion)},
		{"Uptime", uptime(b.System.UptimeSeconds)},
		{"Load Average", fmt.Sprintf("%.2f %.2f %.2f", b.System.Load1, b.System.Load5, b.System.Load15)},
	})

	sb.WriteString("## CPU\n\n")
	kvTable(&sb, [][2]string{
		{"Model", b.CPU.Model},
		{"Cores", fmt.Sprintf("%d physical, %d logical", b.CPU.PhysicalCores, b.CPU.LogicalCores)},
		{"Usage", percent(b.CPU.UsagePercent)},
		{"Frequency", fmt.Sprintf("%d MHz", b.CPU.FrequencyMHz)},
	})

	sb.WriteString("## Memory\n\n")
	kvTable(&sb, [][2]string{
		{"Total", humanize.IBytes(b.Memory.Total)},
		{"Used", fmt.Sprintf("%s (%s)", humanize.IBytes(b.Memory.Used), percent(b.Memory.UsagePercent))},
		{"Available", humanize.IBytes(b.Memory.Available)},
		{"Swap", fmt.Sprintf("%s of %s", humanize.IBytes(b.Memory.SwapUsed), humanize.IBytes(b.Memory.SwapTotal))},
	})

	sb.WriteString("## Disk\n\n")
	kvTable(&sb, [][2]string{
		{"Total", humanize.IBytes(b.Disk.Total)},
		{"Used", fmt.Sprintf("%s (%s)", humanize.IBytes(b.Disk.Used), percent(b.Disk.UsagePercent))},
		{"Available", humanize.IBytes(b.Disk.Available)},
	})
	if len(b.DiskPartitions) > 0 {
		sb.WriteString("### Partitions\n\n")
		sb.WriteString("| Name | Mount | Filesystem | Total | Used | Usage |\n")
		sb.WriteString("|---|---|---|---:|---:|---:|\n")
		for _, d := range b.DiskPartitions {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n",
				escapeCell(d.Name), escapeCell(d.MountPoint), escapeCell(d.Filesystem),
				humanize.IBytes(d.Total), humanize.IBytes(d.Used), percent(d.UsagePercent))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Network\n\n")
	kvTable(&sb, [][2]string{
		{"Total Received", humanize.IBytes(b.Network.TotalRx)},
		{"Total Transmitted", humanize.IBytes(b.Network.TotalTx)},
	})
	if len(b.Network.Interfaces) > 0 {
		sb.WriteString("| Interface | Received | Transmitted | RX Rate | TX Rate |\n")
		sb.WriteString("|---|---:|---:|---:|---:|\n")
		for _, i := range b.Network.Interfaces {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n",
				escapeCell(i.Name), humanize.IBytes(i.Received), humanize.IBytes(i.Transmitted),
				humanize.IBytes(i.RxRate), humanize.IBytes(i.TxRate))
		}
		sb.WriteString("\n")
	}

	if bat := b.Battery; bat != nil {
		sb.WriteString("## Battery\n\n")
		rows := [][2]string{
			{"Charge", fmt.Sprintf("%.0f%%", bat.Percentage)},
			{"Status", bat.Status},
			{"Health", fmt.Sprintf("%.0f%%", bat.HealthPercent)},
		}
		if bat.TimeRemainingSeconds != nil {
			rows = append(rows, [2]string{"Time Remaining", fmt.Sprintf("%dh %02dm",
				*bat.TimeRemainingSeconds/3600, (*bat.TimeRemainingSeconds%3600)/60)})
		}
		kvTable(&sb, rows)
	}

	procs := b.Processes
	fmt.Fprintf(&sb, "## Top Processes (%d total)\n\n", len(procs))
	if len(procs) > MaxMarkdownProcesses {
		procs = procs[:MaxMarkdownProcesses]
	}
	sb.WriteString("| PID | Name | User | CPU | Memory | Threads | Status |\n")
	sb.WriteString("|---:|---|---|---:|---:|---:|---|\n")
	for _, p := range procs {
		fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s | %d | %s |\n",
			p.PID, escapeCell(p.Name), escapeCell(p.User), percent(p.CPUPercent),
			humanize.IBytes(p.MemoryBytes), p.Threads, escapeCell(p.Status))
	}
	return sb.String()
}

func kvTable(sb *strings.Builder, rows [][2]string) {
	sb.WriteString("| | |\n|---|---|\n")
	for _, r := range rows {
		fmt.Fprintf(sb, "| **%s** | %s |\n", r[0], escapeCell(r[1]))
	}
	sb.WriteString("\n")
}

func uptime(seconds uint64) string {
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	mins := (seconds % 3600) / 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// escapeCell keeps user-controlled text (process names, mount points) from
// breaking the table or injecting markup.
func escapeCell(s string) string {
	r := strings.NewReplacer("|", `\|`, "\n", " ", "\r", " ", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
