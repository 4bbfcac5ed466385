package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/rileyhilliard/systrix/internal/config"
	"github.com/stretchr/testify/assert"
)

var testThresholds = config.ThresholdValues{Warning: 70, Critical: 90}

func TestThresholdColor(t *testing.T) {
	tests := []struct {
		percent float64
		want    string
	}{
		{0, string(ColorSuccess)},
		{69.9, string(ColorSuccess)},
		{70, string(ColorWarning)},
		{89, string(ColorWarning)},
		{90, string(ColorError)},
		{100, string(ColorError)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(ThresholdColor(tt.percent, testThresholds)), "percent %v", tt.percent)
	}
}

func TestRenderProgressBar(t *testing.T) {
	t.Run("zero width", func(t *testing.T) {
		assert.Empty(t, RenderProgressBar(50, 0, testThresholds))
	})

	t.Run("half", func(t *testing.T) {
		got := ansi.Strip(RenderProgressBar(50, 10, testThresholds))
		assert.Equal(t, "[█████░░░░░]  50%", got)
	})

	t.Run("clamped", func(t *testing.T) {
		over := ansi.Strip(RenderProgressBar(150, 4, testThresholds))
		under := ansi.Strip(RenderProgressBar(-3, 4, testThresholds))
		assert.Equal(t, "[████] 100%", over)
		assert.Equal(t, "[░░░░]   0%", under)
	})
}

func TestRenderTable(t *testing.T) {
	cols := []TableColumn{{Title: "PID", Width: 7}, {Title: "NAME", Width: 12}}

	assert.Empty(t, RenderTable(cols, nil))

	out := ansi.Strip(RenderTable(cols, [][]string{{"42", "postgres"}, {"7", "nginx"}}))
	assert.Contains(t, out, "PID")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "postgres")
	assert.Contains(t, out, "nginx")
	assert.Less(t, strings.Index(out, "postgres"), strings.Index(out, "nginx"))
}

func TestRenderKeyValues(t *testing.T) {
	out := ansi.Strip(RenderKeyValues([][2]string{{"Host", "box"}, {"Uptime", "1d 2h"}}))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "  Host    box", lines[0])
	assert.Equal(t, "  Uptime  1d 2h", lines[1])
}

func TestRenderSection(t *testing.T) {
	out := ansi.Strip(RenderSection("CPU", "body\n"))
	assert.Equal(t, "CPU\nbody\n", out)
}
