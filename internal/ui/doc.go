// Package ui provides the styled building blocks for systrix's
// non-interactive command output (info, ps, net, disk).
//
// The dashboard has its own themed renderer; this package only serves
// one-shot commands that print and exit.
//
// # Color Scheme
//
// Colors are ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Usage below the warning threshold
//	ColorWarning   (yellow) - Usage at or above warning
//	ColorError     (red)    - Usage at or above critical, failures
//	ColorInfo      (cyan)   - Section titles
//	ColorMuted     (gray)   - Labels and secondary text
//
// Use DisableColors() to switch to monochrome output (for --no-color).
//
// # Tables
//
// RenderTable wraps the Bubbles table component with focus and cursor
// highlighting turned off, so the result is a plain string:
//
//	out := ui.RenderTable([]ui.TableColumn{{Title: "PID", Width: 7}}, rows)
//
// # Progress Bars
//
// RenderProgressBar colors the bar with the configured thresholds:
//
//	ui.RenderProgressBar(67.5, 20, cfg.Thresholds.Memory)  // [█████████████░░░░░░░]  68%
package ui
