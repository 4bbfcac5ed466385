package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille graphs use the 2x4 dot matrix of U+2800..U+28FF, so each cell
// plots two samples with four vertical levels.
const brailleBase = '⠀'

// sparklineBlocks are the eight block heights, lowest first.
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// brailleDots maps [row][col] to the bit for that dot.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// renderBrailleSparkline plots percentages (0-100) over width cells and
// height rows. Short series are right-aligned. colorOf picks the color of a
// column from its highest value.
func renderBrailleSparkline(data []float64, width, height int, colorOf func(float64) lipgloss.Color) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	totalDots := height * 4
	targetPoints := width * 2
	points := data
	if len(points) > targetPoints {
		points = resampleData(points, targetPoints)
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = brailleBase
		}
	}
	colMax := make([]float64, width)

	offset := targetPoints - len(points)
	for i, val := range points {
		dots := clampInt(int(val/100*float64(totalDots)), totalDots)
		col := (i + offset) / 2
		sub := (i + offset) % 2
		if val > colMax[col] {
			colMax[col] = val
		}
		for dot := 0; dot < dots; dot++ {
			row := height - 1 - dot/4
			grid[row][col] |= rune(1) << brailleDots[3-dot%4][sub]
		}
	}

	lines := make([]string, 0, height)
	for _, row := range grid {
		var b strings.Builder
		for col, ch := range row {
			b.WriteString(lipgloss.NewStyle().Foreground(colorOf(colMax[col])).Render(string(ch)))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// renderMiniSparkline is a one-row block sparkline scaled to the series
// maximum. Used for byte rates, which have no fixed range.
func renderMiniSparkline(data []float64, width int, color lipgloss.Color) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	points := data
	if len(points) > width {
		points = resampleData(points, width)
	}

	maxVal := 0.0
	for _, v := range points {
		if v > maxVal {
			maxVal = v
		}
	}

	var b strings.Builder
	top := len(sparklineBlocks) - 1
	for _, v := range points {
		idx := 0
		if maxVal > 0 {
			idx = clampInt(int(v/maxVal*float64(top)), top)
		}
		b.WriteRune(sparklineBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Render(b.String())
}

// resampleData shrinks data to size points, keeping the maximum of each
// bucket so spikes survive.
func resampleData(data []float64, size int) []float64 {
	if len(data) == 0 || size <= 0 {
		return nil
	}
	if len(data) <= size {
		return data
	}

	result := make([]float64, size)
	bucket := float64(len(data)) / float64(size)
	for i := 0; i < size; i++ {
		start := int(float64(i) * bucket)
		end := int(float64(i+1) * bucket)
		if end > len(data) {
			end = len(data)
		}
		if start >= end {
			start = end - 1
		}
		maxVal := data[start]
		for _, v := range data[start+1 : end] {
			if v > maxVal {
				maxVal = v
			}
		}
		result[i] = maxVal
	}
	return result
}

func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}
