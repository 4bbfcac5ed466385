package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/systrix/internal/config"
	"github.com/rileyhilliard/systrix/internal/metrics"
)

const (
	barWidth    = 24
	graphHeight = 2
)

func (r renderer) renderOverview(height int) string {
	snap := r.c.Snapshot()
	width := r.contentWidth()
	settings := r.st.Settings
	var sections []string

	// CPU
	cpu := snap.CPU
	cpuLines := []string{
		r.sty.label.Render("Model   ") + r.sty.value.Render(cpu.Model),
		r.sty.label.Render("Cores   ") + r.sty.value.Render(fmt.Sprintf("%d physical / %d logical @ %d MHz",
			cpu.PhysicalCores, cpu.LogicalCores, cpu.FrequencyMHz)),
		r.sty.label.Render("Load    ") + r.sty.value.Render(fmt.Sprintf("%.2f %.2f %.2f", cpu.Load1, cpu.Load5, cpu.Load15)) +
			r.sty.label.Render("   Uptime ") + r.sty.value.Render(formatUptime(cpu.UptimeSeconds)),
		r.sty.label.Render("Usage   ") + r.sty.progressBar(barWidth, cpu.GlobalUsage, r.thresholds.CPU),
	}
	if settings.ShowPerCoreCPU {
		cpuLines = append(cpuLines, r.perCoreLines(cpu.PerCoreUsage, width-4)...)
	}
	if settings.ShowGraphs && r.hist != nil {
		graph := renderBrailleSparkline(r.hist.CPU(DefaultHistorySize), (width-4)/2, graphHeight, r.colorFor(r.thresholds.CPU))
		if graph != "" {
			cpuLines = append(cpuLines, strings.Split(graph, "\n")...)
		}
	}
	sections = append(sections, r.sty.section("CPU", fmt.Sprintf("%.1f%%", cpu.GlobalUsage), cpuLines, width))

	// Memory
	mem := snap.Memory
	memLines := []string{
		r.sty.label.Render("RAM     ") + r.sty.progressBar(barWidth, mem.UsagePercent, r.thresholds.Memory) +
			r.sty.value.Render(fmt.Sprintf("  %s / %s", formatBytes(mem.Used), formatBytes(mem.Total))),
		r.sty.label.Render("Swap    ") + r.sty.progressBar(barWidth, mem.SwapPercent, r.thresholds.Memory) +
			r.sty.value.Render(fmt.Sprintf("  %s / %s", formatBytes(mem.SwapUsed), formatBytes(mem.SwapTotal))),
	}
	if settings.ShowGraphs && r.hist != nil {
		graph := renderBrailleSparkline(r.hist.Memory(DefaultHistorySize), (width-4)/2, graphHeight, r.colorFor(r.thresholds.Memory))
		if graph != "" {
			memLines = append(memLines, strings.Split(graph, "\n")...)
		}
	}
	sections = append(sections, r.sty.section("Memory", fmt.Sprintf("%.1f%%", mem.UsagePercent), memLines, width))

	disk := snap.Disk
	sections = append(sections, r.sty.section("Disk", fmt.Sprintf("%.1f%%", disk.UsagePercent), []string{
		r.sty.label.Render("All     ") + r.sty.progressBar(barWidth, disk.UsagePercent, r.thresholds.Disk) +
			r.sty.value.Render(fmt.Sprintf("  %s / %s across %d partitions",
				formatBytes(disk.Used), formatBytes(disk.Total), len(snap.Disks))),
	}, width))

	var rxRate, txRate uint64
	for _, iface := range snap.Network.Interfaces {
		rxRate += iface.RxRate
		txRate += iface.TxRate
	}
	netLines := []string{
		r.sty.label.Render("↓ ") + r.sty.value.Render(formatRate(rxRate, r.c.RateWindow())) +
			r.sty.label.Render("   ↑ ") + r.sty.value.Render(formatRate(txRate, r.c.RateWindow())) +
			r.sty.label.Render(fmt.Sprintf("   total ↓ %s ↑ %s", formatBytes(snap.Network.TotalRx), formatBytes(snap.Network.TotalTx))),
	}
	if settings.ShowGraphs && r.hist != nil {
		rx, tx := r.hist.Network(DefaultHistorySize)
		if len(rx) > 0 {
			netLines = append(netLines,
				r.sty.label.Render("↓ ")+renderMiniSparkline(rx, (width-8)/2, r.sty.pal.Graph),
				r.sty.label.Render("↑ ")+renderMiniSparkline(tx, (width-8)/2, r.sty.pal.Secondary))
		}
	}
	sections = append(sections, r.sty.section("Network", fmt.Sprintf("%d interfaces", len(snap.Network.Interfaces)), netLines, width))

	if b := snap.Battery; b.Present {
		sections = append(sections, r.sty.section("Battery", fmt.Sprintf("%.0f%%", b.Percent), r.batteryLines(b), width))
	}

	out := strings.Join(sections, "\n")
	if lipgloss.Height(out) > height {
		lines := strings.Split(out, "\n")
		out = strings.Join(lines[:height], "\n")
	}
	return out
}

func (r renderer) perCoreLines(usage []float64, width int) []string {
	const cell = 18
	perRow := width / cell
	if perRow < 1 {
		perRow = 1
	}
	var lines []string
	var row strings.Builder
	for i, u := range usage {
		fmt.Fprintf(&row, "%s%s %s ",
			r.sty.label.Render(fmt.Sprintf("%3d ", i)),
			r.sty.progressBar(8, u, r.thresholds.CPU),
			lipgloss.NewStyle().Foreground(r.sty.metricColor(u, r.thresholds.CPU)).Render(fmt.Sprintf("%3.0f%%", u)))
		if (i+1)%perRow == 0 {
			lines = append(lines, row.String())
			row.Reset()
		}
	}
	if row.Len() > 0 {
		lines = append(lines, row.String())
	}
	return lines
}

func (r renderer) batteryLines(b metrics.BatteryInfo) []string {
	state := "discharging"
	switch {
	case b.Charging:
		state = "charging"
	case b.Plugged:
		state = "plugged in"
	}
	remaining := "unknown"
	if b.TimeRemaining != nil {
		remaining = b.TimeRemaining.Round(time.Minute).String()
	}
	// Low charge is the alarming end, so the thresholds run backwards.
	color := r.sty.pal.Healthy
	switch {
	case b.Percent < 20:
		color = r.sty.pal.Critical
	case b.Percent < 40:
		color = r.sty.pal.Warning
	}
	filled := clampInt(int(b.Percent/100*barWidth), barWidth)
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("▰", filled)) +
		r.sty.muted.Render(strings.Repeat("▱", barWidth-filled))
	return []string{
		r.sty.label.Render("Charge  ") + bar +
			r.sty.value.Render(fmt.Sprintf("  %.0f%% %s", b.Percent, state)),
		r.sty.label.Render("Health  ") + r.sty.value.Render(fmt.Sprintf("%.0f%%", b.Health)) +
			r.sty.label.Render("   Remaining ") + r.sty.value.Render(remaining),
		r.sty.label.Render("Type    ") + r.sty.value.Render(strings.TrimSpace(b.Vendor+" "+b.Technology)),
	}
}

func (r renderer) renderProcesses(height int) string {
	width := r.contentWidth()
	procs := r.c.VisibleProcesses()
	cursor := r.c.Cursor()

	var top string
	switch {
	case r.st.Search == SearchActive:
		top = r.sty.title.Render("/") + r.sty.value.Render(r.st.Query) + r.sty.title.Render("█")
	case r.st.Query != "":
		top = r.sty.label.Render("filter: ") + r.sty.value.Render(r.st.Query) + r.sty.muted.Render("  (esc clears)")
	default:
		top = r.sty.muted.Render("press / to search")
	}
	top += r.sty.muted.Render(fmt.Sprintf("   %d of %d processes", len(procs), len(r.c.Processes())))

	header := r.sty.tableHdr.Render(processRow("PID", "NAME", "USER", "CPU%", "MEM%", "MEM", "READ", "WRITE", "THR", "STATUS", width))

	rows := height - 2
	if rows < 1 {
		rows = 1
	}
	start := 0
	if cursor >= rows {
		start = cursor - rows + 1
	}
	end := start + rows
	if end > len(procs) {
		end = len(procs)
	}

	lines := []string{top, header}
	if len(procs) == 0 {
		lines = append(lines, r.sty.muted.Render("no matching processes"))
	}
	for i := start; i < end; i++ {
		p := procs[i]
		line := processRow(
			fmt.Sprintf("%d", p.PID), p.Name, p.User,
			fmt.Sprintf("%.1f", p.CPUPercent), fmt.Sprintf("%.1f", p.MemoryPercent),
			formatBytes(p.MemoryBytes), formatBytes(p.DiskRead), formatBytes(p.DiskWrite),
			fmt.Sprintf("%d", p.Threads), p.Status, width)
		if i == cursor {
			line = r.sty.selected.Render(line)
		} else {
			line = r.sty.value.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// processRow lays out one table row. NAME takes whatever width is left.
func processRow(pid, name, user, cpu, memPct, mem, read, write, threads, status string, width int) string {
	fixed := fmt.Sprintf(" %-10s %6s %6s %10s %10s %10s %4s %-8s",
		truncate(user, 10), cpu, memPct, mem, read, write, threads, truncate(status, 8))
	nameWidth := width - 8 - lipgloss.Width(fixed)
	if nameWidth < 8 {
		nameWidth = 8
	}
	return fmt.Sprintf("%7s %-*s", pid, nameWidth, truncate(name, nameWidth)) + fixed
}

func (r renderer) renderNetwork(height int) string {
	ifaces := r.c.Snapshot().Network.Interfaces
	window := r.c.RateWindow()
	lines := []string{r.sty.tableHdr.Render(fmt.Sprintf("%-16s %12s %12s %12s %12s %10s %10s %8s",
		"INTERFACE", "RX/s", "TX/s", "RECEIVED", "SENT", "PKT IN", "PKT OUT", "ERRORS"))}

	rows := visibleRange(len(ifaces), r.st.Scroll[PanelNetwork], height-1)
	for _, i := range rows {
		iface := ifaces[i]
		lines = append(lines, r.sty.value.Render(fmt.Sprintf("%-16s %12s %12s %12s %12s %10d %10d %8d",
			truncate(iface.Name, 16),
			formatRate(iface.RxRate, window), formatRate(iface.TxRate, window),
			formatBytes(iface.Received), formatBytes(iface.Transmitted),
			iface.PacketsReceived, iface.PacketsTransmitted,
			iface.ErrorsReceived+iface.ErrorsTransmitted)))
	}
	if len(ifaces) == 0 {
		lines = append(lines, r.sty.muted.Render("no network interfaces"))
	}
	return strings.Join(lines, "\n")
}

func (r renderer) renderDisks(height int) string {
	disks := r.c.Snapshot().Disks
	lines := []string{r.sty.tableHdr.Render(fmt.Sprintf("%-20s %-18s %-8s %10s %10s %10s  %-14s %s",
		"DEVICE", "MOUNT", "FS", "TOTAL", "USED", "FREE", "USAGE", ""))}

	rows := visibleRange(len(disks), r.st.Scroll[PanelDisk], height-1)
	for _, i := range rows {
		d := disks[i]
		flag := ""
		if d.Removable {
			flag = "removable"
		}
		lines = append(lines, fmt.Sprintf("%s %s %s",
			r.sty.value.Render(fmt.Sprintf("%-20s %-18s %-8s %10s %10s %10s ",
				truncate(d.Name, 20), truncate(d.MountPoint, 18), truncate(d.FSType, 8),
				formatBytes(d.Total), formatBytes(d.Used), formatBytes(d.Available))),
			r.sty.progressBar(10, d.UsagePercent, r.thresholds.Disk)+
				lipgloss.NewStyle().Foreground(r.sty.metricColor(d.UsagePercent, r.thresholds.Disk)).Render(fmt.Sprintf(" %5.1f%%", d.UsagePercent)),
			r.sty.muted.Render(flag)))
	}
	if len(disks) == 0 {
		lines = append(lines, r.sty.muted.Render("no partitions"))
	}
	return strings.Join(lines, "\n")
}

func (r renderer) renderSettings() string {
	s := r.st.Settings
	var menu []string
	for i := 0; i < categoryCount; i++ {
		cat := SettingsCategory(i)
		label := fmt.Sprintf("%d %s", i+1, cat)
		if cat == s.Category {
			menu = append(menu, r.sty.selected.Render("▶ "+label))
		} else {
			menu = append(menu, r.sty.value.Render("  "+label))
		}
	}
	menuBox := r.sty.section("Settings", "", menu, 26)

	var details []string
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	switch s.Category {
	case CategoryAppearance:
		details = []string{
			r.sty.label.Render("Theme          ") + r.sty.value.Render(r.st.Theme.String()),
			"",
			r.sty.muted.Render("+/- or t cycles dark, light, dracula"),
		}
	case CategoryPerformance:
		paused := "running"
		if r.st.Paused {
			paused = "paused"
		}
		details = []string{
			r.sty.label.Render("Refresh        ") + r.sty.value.Render(r.c.RefreshInterval().String()),
			r.sty.label.Render("Acquisition    ") + r.sty.value.Render(paused),
			"",
			r.sty.muted.Render(fmt.Sprintf("+/- changes the interval by %s (minimum %s)", refreshStep, config.MinRefreshInterval)),
		}
	case CategoryDisplay:
		details = []string{
			r.sty.label.Render("Process limit  ") + r.sty.value.Render(fmt.Sprintf("%d", s.ProcessLimit)),
			r.sty.label.Render("Graphs         ") + r.sty.value.Render(onOff(s.ShowGraphs)),
			r.sty.label.Render("Per-core CPU   ") + r.sty.value.Render(onOff(s.ShowPerCoreCPU)),
			r.sty.label.Render("Sort           ") + r.sty.value.Render(r.st.Sort.Label()),
			"",
			r.sty.muted.Render("+/- limit, g graphs, c per-core, o sort"),
		}
	case CategoryKeyboard:
		details = strings.Split(r.help.FullHelpView(r.keys.FullHelp()), "\n")
	case CategoryAbout:
		details = []string{
			r.sty.title.Render("systrix"),
			r.sty.value.Render("Terminal system monitor"),
			"",
			r.sty.label.Render("CPU, memory, disks, network, battery and processes"),
			r.sty.label.Render("Kill, suspend and resume processes from the Processes tab"),
		}
	}
	detailWidth := r.contentWidth() - 27
	if detailWidth < 30 {
		detailWidth = 30
	}
	detailBox := r.sty.section(s.Category.String(), "", details, detailWidth)
	return lipgloss.JoinHorizontal(lipgloss.Top, menuBox, " ", detailBox)
}

func (r renderer) colorFor(th config.ThresholdValues) func(float64) lipgloss.Color {
	return func(v float64) lipgloss.Color {
		return r.sty.metricColor(v, th)
	}
}

// visibleRange returns the indices shown for a list of n rows scrolled to
// offset with room for rows lines.
func visibleRange(n, offset, rows int) []int {
	if rows < 1 {
		rows = 1
	}
	if offset > n {
		offset = n
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + rows
	if end > n {
		end = n
	}
	out := make([]int, 0, end-offset)
	for i := offset; i < end; i++ {
		out = append(out, i)
	}
	return out
}
