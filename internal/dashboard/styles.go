package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rileyhilliard/systrix/internal/config"
)

// palette is the set of colors for one theme.
type palette struct {
	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	Healthy  lipgloss.Color
	Warning  lipgloss.Color
	Critical lipgloss.Color

	Text      lipgloss.Color
	TextDim   lipgloss.Color
	TextMuted lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Graph     lipgloss.Color
}

var (
	darkPalette = palette{
		Background: lipgloss.Color("#0A0A0F"),
		Surface:    lipgloss.Color("#12121A"),
		Border:     lipgloss.Color("#2A2A4A"),
		Healthy:    lipgloss.Color("#39FF14"),
		Warning:    lipgloss.Color("#FFAA00"),
		Critical:   lipgloss.Color("#FF0055"),
		Text:       lipgloss.Color("#FFFFFF"),
		TextDim:    lipgloss.Color("#B4B4D0"),
		TextMuted:  lipgloss.Color("#6B6B8D"),
		Primary:    lipgloss.Color("#00FFFF"),
		Secondary:  lipgloss.Color("#BF40FF"),
		Graph:      lipgloss.Color("#00FFFF"),
	}

	lightPalette = palette{
		Background: lipgloss.Color("#FAFAFA"),
		Surface:    lipgloss.Color("#FFFFFF"),
		Border:     lipgloss.Color("#C8C8D8"),
		Healthy:    lipgloss.Color("#1A7F37"),
		Warning:    lipgloss.Color("#9A6700"),
		Critical:   lipgloss.Color("#CF222E"),
		Text:       lipgloss.Color("#1F2328"),
		TextDim:    lipgloss.Color("#57606A"),
		TextMuted:  lipgloss.Color("#8C959F"),
		Primary:    lipgloss.Color("#0969DA"),
		Secondary:  lipgloss.Color("#8250DF"),
		Graph:      lipgloss.Color("#0969DA"),
	}

	draculaPalette = palette{
		Background: lipgloss.Color("#282A36"),
		Surface:    lipgloss.Color("#343746"),
		Border:     lipgloss.Color("#6272A4"),
		Healthy:    lipgloss.Color("#50FA7B"),
		Warning:    lipgloss.Color("#F1FA8C"),
		Critical:   lipgloss.Color("#FF5555"),
		Text:       lipgloss.Color("#F8F8F2"),
		TextDim:    lipgloss.Color("#BFBFBF"),
		TextMuted:  lipgloss.Color("#6272A4"),
		Primary:    lipgloss.Color("#BD93F9"),
		Secondary:  lipgloss.Color("#FF79C6"),
		Graph:      lipgloss.Color("#8BE9FD"),
	}
)

func paletteFor(t Theme) palette {
	switch t {
	case ThemeLight:
		return lightPalette
	case ThemeDracula:
		return draculaPalette
	default:
		return darkPalette
	}
}

// Thresholds are the warning/critical percentages for usage coloring.
type Thresholds struct {
	CPU    config.ThresholdValues
	Memory config.ThresholdValues
	Disk   config.ThresholdValues
}

// DefaultThresholds matches the config defaults.
func DefaultThresholds() Thresholds {
	d := config.DefaultConfig().Thresholds
	return Thresholds{CPU: d.CPU, Memory: d.Memory, Disk: d.Disk}
}

// ThresholdsFromConfig copies the configured levels.
func ThresholdsFromConfig(cfg *config.Config) Thresholds {
	return Thresholds{CPU: cfg.Thresholds.CPU, Memory: cfg.Thresholds.Memory, Disk: cfg.Thresholds.Disk}
}

// styles are the lipgloss styles derived from a palette.
type styles struct {
	pal palette

	header   lipgloss.Style
	footer   lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	muted    lipgloss.Style
	title    lipgloss.Style
	tab      lipgloss.Style
	tabOn    lipgloss.Style
	selected lipgloss.Style
	tableHdr lipgloss.Style
	errText  lipgloss.Style
	badge    lipgloss.Style
}

func newStyles(t Theme) styles {
	p := paletteFor(t)
	return styles{
		pal: p,
		header: lipgloss.NewStyle().
			Foreground(p.Primary).
			Background(p.Surface).
			Bold(true).
			Padding(0, 1),
		footer: lipgloss.NewStyle().
			Foreground(p.TextMuted).
			Padding(0, 1),
		label: lipgloss.NewStyle().Foreground(p.TextDim),
		value: lipgloss.NewStyle().Foreground(p.Text),
		muted: lipgloss.NewStyle().Foreground(p.TextMuted),
		title: lipgloss.NewStyle().Foreground(p.Primary).Bold(true),
		tab: lipgloss.NewStyle().
			Foreground(p.TextDim).
			Padding(0, 1),
		tabOn: lipgloss.NewStyle().
			Foreground(p.Background).
			Background(p.Primary).
			Bold(true).
			Padding(0, 1),
		selected: lipgloss.NewStyle().
			Foreground(p.Background).
			Background(p.Primary).
			Bold(true),
		tableHdr: lipgloss.NewStyle().Foreground(p.Secondary).Bold(true),
		errText:  lipgloss.NewStyle().Foreground(p.Critical),
		badge: lipgloss.NewStyle().
			Foreground(p.Background).
			Background(p.Warning).
			Bold(true).
			Padding(0, 1),
	}
}

// metricColor picks green, yellow, or red for a percentage.
func (s styles) metricColor(percent float64, th config.ThresholdValues) lipgloss.Color {
	switch {
	case percent >= float64(th.Critical):
		return s.pal.Critical
	case percent >= float64(th.Warning):
		return s.pal.Warning
	default:
		return s.pal.Healthy
	}
}

// progressBar renders a bracketless ▰▱ bar colored by threshold.
func (s styles) progressBar(width int, percent float64, th config.ThresholdValues) string {
	if width < 1 {
		width = 1
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}

	bar := lipgloss.NewStyle().Foreground(s.metricColor(percent, th)).Render(strings.Repeat("▰", filled))
	empty := lipgloss.NewStyle().Foreground(s.pal.TextMuted).Render(strings.Repeat("▱", width-filled))
	return bar + empty
}

// sectionHeader renders ╭─ Title ───── Value ╮ at the given width.
func (s styles) sectionHeader(title, value string, width int) string {
	if width < 10 {
		width = 10
	}
	leftWidth := 3 + lipgloss.Width(title) + 1
	rightWidth := 1 + lipgloss.Width(value) + 2
	fillWidth := width - leftWidth - rightWidth
	if fillWidth < 1 {
		fillWidth = 1
	}

	border := lipgloss.NewStyle().Foreground(s.pal.Border)
	valueStyle := lipgloss.NewStyle().Foreground(s.pal.Secondary).Bold(true)
	return border.Render("╭─ ") +
		s.title.Render(title) +
		border.Render(" "+strings.Repeat("─", fillWidth)+" ") +
		valueStyle.Render(value) +
		border.Render(" ╮")
}

// sectionFooter renders ╰────╯.
func (s styles) sectionFooter(width int) string {
	if width < 2 {
		width = 2
	}
	return lipgloss.NewStyle().Foreground(s.pal.Border).Render("╰" + strings.Repeat("─", width-2) + "╯")
}

// sectionLine renders │ content │ padded to width. Overlong content is truncated.
func (s styles) sectionLine(content string, width int) string {
	if width < 4 {
		width = 4
	}
	inner := width - 4
	if lipgloss.Width(content) > inner {
		content = truncate(content, inner)
	}
	padding := inner - lipgloss.Width(content)
	if padding < 0 {
		padding = 0
	}
	border := lipgloss.NewStyle().Foreground(s.pal.Border)
	return border.Render("│") + " " + content + strings.Repeat(" ", padding) + " " + border.Render("│")
}

// section wraps lines in a titled box.
func (s styles) section(title, value string, lines []string, width int) string {
	out := make([]string, 0, len(lines)+2)
	out = append(out, s.sectionHeader(title, value, width))
	for _, l := range lines {
		out = append(out, s.sectionLine(l, width))
	}
	out = append(out, s.sectionFooter(width))
	return strings.Join(out, "\n")
}

// truncate cuts s to width display cells, ending with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}
