// Package procview derives the filtered, cursor-tracked process list shown
// by the dashboard.
package procview

import (
	"strings"

	"github.com/rileyhilliard/systrix/internal/metrics"
	"golang.org/x/text/cases"
)

// Filter returns the indices of processes whose name or user contains query,
// compared with Unicode case folding. An empty query matches every process.
// Order follows the input; Filter never sorts.
func Filter(processes []metrics.ProcessInfo, query string) []int {
	indices := make([]int, 0, len(processes))
	if query == "" {
		for i := range processes {
			indices = append(indices, i)
		}
		return indices
	}

	fold := cases.Fold()
	needle := fold.String(query)
	for i, p := range processes {
		if strings.Contains(fold.String(p.Name), needle) || strings.Contains(fold.String(p.User), needle) {
			indices = append(indices, i)
		}
	}
	return indices
}

// View is a filtered index list plus a selection cursor that always points
// inside it.
type View struct {
	indices []int
	cursor  int
}

// Recompute refilters and clamps the cursor to min(cursor, max(0, len-1)).
func (v *View) Recompute(processes []metrics.ProcessInfo, query string) {
	v.indices = Filter(processes, query)
	v.clamp()
}

// Indices returns the filtered indices. Callers must not modify the slice.
func (v *View) Indices() []int {
	return v.indices
}

// Len is the number of visible processes.
func (v *View) Len() int {
	return len(v.indices)
}

// Cursor is the selected position within the view.
func (v *View) Cursor() int {
	return v.cursor
}

// Move shifts the cursor by delta, clamped to the view.
func (v *View) Move(delta int) {
	v.cursor += delta
	v.clamp()
}

// Home selects the first row.
func (v *View) Home() {
	v.cursor = 0
}

// End selects the last row.
func (v *View) End() {
	v.cursor = len(v.indices) - 1
	v.clamp()
}

// ResetCursor selects the first row.
func (v *View) ResetCursor() {
	v.cursor = 0
}

// Selected returns the process index under the cursor. ok is false when the
// view is empty.
func (v *View) Selected() (index int, ok bool) {
	if len(v.indices) == 0 {
		return 0, false
	}
	return v.indices[v.cursor], true
}

func (v *View) clamp() {
	maxCursor := len(v.indices) - 1
	if maxCursor < 0 {
		maxCursor = 0
	}
	if v.cursor > maxCursor {
		v.cursor = maxCursor
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}
