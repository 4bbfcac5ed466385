package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/systrix/internal/config"
)

// Progress bar block characters.
const (
	progressFilled = '█'
	progressEmpty  = '░'
)

// ThresholdColor picks green, yellow, or red for a usage percentage.
func ThresholdColor(percent float64, th config.ThresholdValues) lipgloss.Color {
	switch {
	case percent >= float64(th.Critical):
		return ColorError
	case percent >= float64(th.Warning):
		return ColorWarning
	default:
		return ColorSuccess
	}
}

// RenderProgressBar draws a usage bar of width cells followed by the
// percentage, e.g. [████████░░░░]  67%. percent is clamped to 0-100 and the
// bar is colored by th.
func RenderProgressBar(percent float64, width int, th config.ThresholdValues) string {
	if width <= 0 {
		return ""
	}
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}

	filled := int((percent / 100.0) * float64(width))

	var sb strings.Builder
	sb.Grow(width*3 + 2)
	sb.WriteRune('[')
	sb.WriteString(strings.Repeat(string(progressFilled), filled))
	sb.WriteString(strings.Repeat(string(progressEmpty), width-filled))
	sb.WriteRune(']')

	style := lipgloss.NewStyle().Foreground(ThresholdColor(percent, th))
	return style.Render(sb.String()) + fmt.Sprintf(" %3.0f%%", percent)
}
