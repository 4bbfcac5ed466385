package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors for usage levels and status lines. ANSI codes keep them
// readable on both light and dark terminals.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// DisableColors switches lipgloss to plain ASCII output. Used for --no-color
// and when NO_COLOR is set.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// Styles returns foreground styles for the common CLI roles.
func Styles() (ok, warn, bad, muted lipgloss.Style) {
	return lipgloss.NewStyle().Foreground(ColorSuccess),
		lipgloss.NewStyle().Foreground(ColorWarning),
		lipgloss.NewStyle().Foreground(ColorError),
		lipgloss.NewStyle().Foreground(ColorMuted)
}
