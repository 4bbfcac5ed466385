package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a non-interactive Bubbles table sized to fit every row.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: c.Width,
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.
		Foreground(ColorPrimary)
	// The cursor row is always rendered with Selected; plain output should
	// not highlight it.
	s.Selected = lipgloss.NewStyle()

	t.SetStyles(s)
	// Header line plus its bottom border, so every row fits.
	t.SetHeight(len(rows) + 2)
	return t
}

// RenderTable renders rows as a plain table string for CLI output.
// Returns "" when there are no rows.
func RenderTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}
	return NewTable(columns, tableRows).View()
}

// RenderKeyValues renders label/value pairs with the labels padded to a
// common width.
func RenderKeyValues(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		if w := lipgloss.Width(p[0]); w > width {
			width = w
		}
	}
	label := lipgloss.NewStyle().Foreground(ColorMuted)

	var sb strings.Builder
	for _, p := range pairs {
		sb.WriteString("  ")
		sb.WriteString(label.Render(padRight(p[0], width)))
		sb.WriteString("  ")
		sb.WriteString(p[1])
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderSection renders a bold section title followed by body.
func RenderSection(title, body string) string {
	head := lipgloss.NewStyle().Bold(true).Foreground(ColorInfo).Render(title)
	return head + "\n" + body
}

// padRight pads a string to the specified visible width.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}
