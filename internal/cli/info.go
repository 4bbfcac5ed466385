package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/systrix/internal/config"
	"github.com/rileyhilliard/systrix/internal/metrics"
	"github.com/rileyhilliard/systrix/internal/ui"
)

const barWidth = 24

// netRateWindow is how long `systrix net` waits between its two samples.
var netRateWindow = time.Second

func infoCommand(ctx context.Context, w io.Writer, s *session) error {
	snap, err := s.sampler.Sample(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(w, renderInfo(snap, s.cfg.Thresholds))
	return nil
}

// renderInfo formats the one-shot system summary.
func renderInfo(snap metrics.Snapshot, th config.ThresholdsConfig) string {
	cpu, mem, disk := snap.CPU, snap.Memory, snap.Disk

	var sb strings.Builder
	sb.WriteString(ui.RenderSection("System", ui.RenderKeyValues([][2]string{
		{"Host", cpu.Hostname},
		{"OS", strings.TrimSpace(cpu.OSName + " " + cpu.OSVersion)},
		{"Uptime", formatUptime(cpu.UptimeSeconds)},
	})))
	sb.WriteString("\n")

	sb.WriteString(ui.RenderSection("CPU", ui.RenderKeyValues([][2]string{
		{"Model", cpu.Model},
		{"Cores", fmt.Sprintf("%d physical, %d logical", cpu.PhysicalCores, cpu.LogicalCores)},
		{"Usage", ui.RenderProgressBar(cpu.GlobalUsage, barWidth, th.CPU)},
		{"Frequency", fmt.Sprintf("%d MHz", cpu.FrequencyMHz)},
		{"Load", fmt.Sprintf("%.2f %.2f %.2f", cpu.Load1, cpu.Load5, cpu.Load15)},
	})))
	sb.WriteString("\n")

	sb.WriteString(ui.RenderSection("Memory", ui.RenderKeyValues([][2]string{
		{"Usage", ui.RenderProgressBar(mem.UsagePercent, barWidth, th.Memory)},
		{"Used", humanize.IBytes(mem.Used) + " of " + humanize.IBytes(mem.Total)},
		{"Available", humanize.IBytes(mem.Available)},
		{"Swap", fmt.Sprintf("%s of %s (%.1f%%)", humanize.IBytes(mem.SwapUsed), humanize.IBytes(mem.SwapTotal), mem.SwapPercent)},
	})))
	sb.WriteString("\n")

	sb.WriteString(ui.RenderSection("Disk", ui.RenderKeyValues([][2]string{
		{"Usage", ui.RenderProgressBar(disk.UsagePercent, barWidth, th.Disk)},
		{"Used", humanize.IBytes(disk.Used) + " of " + humanize.IBytes(disk.Total)},
		{"Available", humanize.IBytes(disk.Available)},
		{"Partitions", fmt.Sprintf("%d", len(snap.Disks))},
	})))

	if b := snap.Battery; b.Present {
		state := "discharging"
		switch {
		case b.Charging:
			state = "charging"
		case b.Plugged:
			state = "plugged in"
		}
		pairs := [][2]string{
			{"Charge", fmt.Sprintf("%.0f%% (%s)", b.Percent, state)},
		}
		if b.TimeRemaining != nil {
			pairs = append(pairs, [2]string{"Remaining", b.TimeRemaining.Truncate(time.Minute).String()})
		}
		if b.Health > 0 {
			pairs = append(pairs, [2]string{"Health", fmt.Sprintf("%.0f%%", b.Health)})
		}
		sb.WriteString("\n")
		sb.WriteString(ui.RenderSection("Battery", ui.RenderKeyValues(pairs)))
	}
	return sb.String()
}

func netCommand(ctx context.Context, w io.Writer, s *session, window time.Duration) error {
	snap, err := s.sampler.Sample(ctx)
	if err != nil {
		return err
	}
	// Rates need two readings; the first sample only primes the counters.
	var elapsed time.Duration
	if window > 0 {
		first := snap.Timestamp
		timer := time.NewTimer(window)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		if snap, err = s.sampler.Sample(ctx); err != nil {
			return err
		}
		elapsed = snap.Timestamp.Sub(first)
	}
	fmt.Fprint(w, renderNet(snap.Network, elapsed))
	return nil
}

func renderNet(n metrics.NetworkSnapshot, elapsed time.Duration) string {
	if len(n.Interfaces) == 0 {
		return "No network interfaces found\n"
	}
	rows := make([][]string, 0, len(n.Interfaces))
	for _, iface := range n.Interfaces {
		rows = append(rows, []string{
			iface.Name,
			humanize.IBytes(iface.Received),
			humanize.IBytes(iface.Transmitted),
			rate(iface.RxRate, elapsed),
			rate(iface.TxRate, elapsed),
			fmt.Sprintf("%d", iface.ErrorsReceived+iface.ErrorsTransmitted),
		})
	}
	cols := []ui.TableColumn{
		{Title: "INTERFACE", Width: 16},
		{Title: "RX", Width: 11},
		{Title: "TX", Width: 11},
		{Title: "RX/S", Width: 12},
		{Title: "TX/S", Width: 12},
		{Title: "ERRORS", Width: 7},
	}
	return ui.RenderTable(cols, rows) + "\n" +
		fmt.Sprintf("Total: %s received, %s sent\n", humanize.IBytes(n.TotalRx), humanize.IBytes(n.TotalTx))
}

// rate converts a byte delta measured over elapsed into a per-second string.
func rate(delta uint64, elapsed time.Duration) string {
	if elapsed <= 0 {
		return "-"
	}
	return humanize.IBytes(uint64(float64(delta)/elapsed.Seconds())) + "/s"
}

func diskCommand(ctx context.Context, w io.Writer, s *session) error {
	snap, err := s.sampler.Sample(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(w, renderDisks(snap, s.cfg.Thresholds.Disk))
	return nil
}

func renderDisks(snap metrics.Snapshot, th config.ThresholdValues) string {
	if len(snap.Disks) == 0 {
		return "No disk partitions found\n"
	}
	rows := make([][]string, 0, len(snap.Disks))
	for _, d := range snap.Disks {
		mount := d.MountPoint
		if d.Removable {
			mount += " *"
		}
		rows = append(rows, []string{
			mount,
			d.Name,
			d.FSType,
			humanize.IBytes(d.Total),
			humanize.IBytes(d.Used),
			humanize.IBytes(d.Available),
			fmt.Sprintf("%.1f%%", d.UsagePercent),
		})
	}
	cols := []ui.TableColumn{
		{Title: "MOUNT", Width: 20},
		{Title: "DEVICE", Width: 16},
		{Title: "TYPE", Width: 8},
		{Title: "TOTAL", Width: 10},
		{Title: "USED", Width: 10},
		{Title: "AVAIL", Width: 10},
		{Title: "USE%", Width: 6},
	}
	return ui.RenderTable(cols, rows) + "\n" +
		"Total " + ui.RenderProgressBar(snap.Disk.UsagePercent, barWidth, th) + "\n"
}

// formatUptime renders seconds as "3d 4h 5m", dropping zero days.
func formatUptime(seconds uint64) string {
	d := time.Duration(seconds) * time.Second
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	mins := d / time.Minute
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}
