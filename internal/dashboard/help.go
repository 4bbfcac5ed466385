package dashboard

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// newHelp returns a help model styled for theme t.
func newHelp(t Theme) help.Model {
	p := paletteFor(t)
	h := help.New()
	h.ShortSeparator = " | "
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(p.TextDim).Bold(true)
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(p.TextMuted)
	h.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(p.Border)
	h.Styles.FullKey = lipgloss.NewStyle().Foreground(p.Text).Bold(true)
	h.Styles.FullDesc = lipgloss.NewStyle().Foreground(p.TextDim)
	h.Styles.FullSeparator = lipgloss.NewStyle().Foreground(p.Border)
	h.Styles.Ellipsis = lipgloss.NewStyle().Foreground(p.TextMuted)
	return h
}

// renderHelpOverlay draws the full key reference centered on screen.
func (r renderer) renderHelpOverlay() string {
	p := r.sty.pal
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Background(p.Surface).
		Padding(1, 2)

	lines := []string{
		r.sty.title.MarginBottom(1).Render("Keyboard Shortcuts"),
		r.help.FullHelpView(r.keys.FullHelp()),
		"",
		r.sty.label.Render("While searching, typed characters go to the filter;"),
		r.sty.label.Render("enter keeps the filter, esc clears it."),
		"",
		r.sty.muted.Render("Press ? or esc to close"),
	}

	return lipgloss.Place(
		r.width,
		r.height,
		lipgloss.Center,
		lipgloss.Center,
		box.Render(strings.Join(lines, "\n")),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(p.Background),
	)
}
