package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/systrix/internal/errors"
)

// Minimum terminal size the dashboard lays itself out for.
const (
	minWidth  = 60
	minHeight = 16
)

// renderer draws one frame. It only reads from the controller.
type renderer struct {
	c          *Controller
	st         State
	sty        styles
	hist       *History
	thresholds Thresholds
	help       help.Model
	keys       keyMap
	modalBody  string
	width      int
	height     int
}

func newRenderer(c *Controller, hist *History, th Thresholds, h help.Model, keys keyMap, modalBody string, width, height int) renderer {
	st := c.State()
	if width < minWidth {
		width = minWidth
	}
	if height < minHeight {
		height = minHeight
	}
	return renderer{
		c:          c,
		st:         st,
		sty:        newStyles(st.Theme),
		hist:       hist,
		thresholds: th,
		help:       h,
		keys:       keys,
		modalBody:  modalBody,
		width:      width,
		height:     height,
	}
}

// render returns the whole screen.
func (r renderer) render() string {
	if r.st.ShowHelp {
		return r.renderHelpOverlay()
	}
	if r.st.Modal.Open() {
		return r.renderModal()
	}

	header := r.renderHeader()
	tabs := r.renderTabs()
	footer := r.renderFooter()

	bodyHeight := r.height - lipgloss.Height(header) - lipgloss.Height(tabs) - lipgloss.Height(footer)
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	body := lipgloss.NewStyle().
		Width(r.width).
		Height(bodyHeight).
		MaxHeight(bodyHeight).
		Render(r.renderPanel(bodyHeight))

	return lipgloss.JoinVertical(lipgloss.Left, header, tabs, body, footer)
}

func (r renderer) renderHeader() string {
	snap := r.c.Snapshot()
	title := r.sty.title.Render("SYSTRIX")
	stats := r.sty.label.Render(fmt.Sprintf(" │ CPU: %5.1f%% │ RAM: %5.1f%% │ DISK: %5.1f%%",
		snap.CPU.GlobalUsage, snap.Memory.UsagePercent, snap.Disk.UsagePercent))
	host := ""
	if snap.CPU.Hostname != "" {
		host = r.sty.muted.Render(" │ " + snap.CPU.Hostname)
	}
	line := title + stats + host
	if r.st.Paused {
		line += " " + r.sty.badge.Render("PAUSED")
	}
	return r.sty.header.Width(r.width).Render(line)
}

func (r renderer) renderTabs() string {
	tabs := make([]string, 0, PanelCount)
	for i := 0; i < PanelCount; i++ {
		p := Panel(i)
		label := fmt.Sprintf("%d %s", i+1, p)
		if p == r.st.Panel {
			tabs = append(tabs, r.sty.tabOn.Render(label))
		} else {
			tabs = append(tabs, r.sty.tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (r renderer) renderPanel(height int) string {
	switch r.st.Panel {
	case PanelProcesses:
		return r.renderProcesses(height)
	case PanelNetwork:
		return r.renderNetwork(height)
	case PanelDisk:
		return r.renderDisks(height)
	case PanelSettings:
		return r.renderSettings()
	default:
		return r.renderOverview(height)
	}
}

func (r renderer) renderFooter() string {
	status := []string{
		fmt.Sprintf("sort: %s", r.st.Sort.Label()),
		fmt.Sprintf("refresh: %s", r.c.RefreshInterval()),
		fmt.Sprintf("theme: %s", r.st.Theme),
	}
	if ts := r.c.Snapshot().Timestamp; !ts.IsZero() {
		status = append(status, "updated "+ts.Format(time.TimeOnly))
	}
	line := r.sty.footer.Render(strings.Join(status, " | "))
	if err := r.c.LastError(); err != nil {
		line += r.sty.errText.Render(truncate(" ✗ "+errors.Describe(err), r.width-lipgloss.Width(line)))
	}

	h := r.help
	h.Width = r.width - 2
	return lipgloss.JoinVertical(lipgloss.Left, line, r.sty.footer.Render(h.View(r.keys)))
}

// contentWidth is the width available to boxed sections.
func (r renderer) contentWidth() int {
	return r.width - 2
}

func formatBytes(b uint64) string {
	return humanize.IBytes(b)
}

// formatRate turns a byte delta measured over window into a per-second
// rate. A zero window has no rate yet.
func formatRate(delta uint64, window time.Duration) string {
	if window <= 0 {
		return "-"
	}
	return humanize.IBytes(uint64(bytesPerSecond(delta, window))) + "/s"
}

func bytesPerSecond(delta uint64, window time.Duration) float64 {
	return float64(delta) / window.Seconds()
}

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
