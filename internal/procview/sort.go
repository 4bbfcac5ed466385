package procview

import (
	"sort"
	"strings"

	"github.com/rileyhilliard/systrix/internal/metrics"
)

// SortKey orders the process table.
type SortKey string

const (
	SortCPU    SortKey = "cpu"
	SortMemory SortKey = "memory"
	SortIO     SortKey = "io"
	SortPID    SortKey = "pid"
	SortName   SortKey = "name"
)

// SortKeys lists keys in cycling order.
var SortKeys = []SortKey{SortCPU, SortMemory, SortIO, SortPID, SortName}

// ParseSortKey accepts a key name or common alias. Unknown names mean cpu.
func ParseSortKey(s string) (SortKey, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cpu":
		return SortCPU, true
	case "memory", "mem":
		return SortMemory, true
	case "io", "disk":
		return SortIO, true
	case "pid":
		return SortPID, true
	case "name":
		return SortName, true
	default:
		return SortCPU, false
	}
}

// Next returns the key after k in SortKeys, wrapping around.
func (k SortKey) Next() SortKey {
	for i, key := range SortKeys {
		if key == k {
			return SortKeys[(i+1)%len(SortKeys)]
		}
	}
	return SortCPU
}

// Label is the column header text for k.
func (k SortKey) Label() string {
	switch k {
	case SortMemory:
		return "MEM"
	case SortIO:
		return "I/O"
	case SortPID:
		return "PID"
	case SortName:
		return "NAME"
	default:
		return "CPU"
	}
}

// SortProcesses sorts procs in place. Numeric keys sort descending; pid and
// name sort ascending. Ties fall back to ascending pid so order is stable
// across refreshes.
func SortProcesses(procs []metrics.ProcessInfo, key SortKey) {
	less := func(a, b metrics.ProcessInfo) bool {
		switch key {
		case SortMemory:
			if a.MemoryBytes != b.MemoryBytes {
				return a.MemoryBytes > b.MemoryBytes
			}
		case SortIO:
			ai, bi := a.DiskRead+a.DiskWrite, b.DiskRead+b.DiskWrite
			if ai != bi {
				return ai > bi
			}
		case SortPID:
		case SortName:
			an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
			if an != bn {
				return an < bn
			}
		default:
			if a.CPUPercent != b.CPUPercent {
				return a.CPUPercent > b.CPUPercent
			}
		}
		return a.PID < b.PID
	}
	sort.SliceStable(procs, func(i, j int) bool { return less(procs[i], procs[j]) })
}

// Limit returns at most n leading processes. n <= 0 means no limit.
func Limit(procs []metrics.ProcessInfo, n int) []metrics.ProcessInfo {
	if n <= 0 || len(procs) <= n {
		return procs
	}
	return procs[:n]
}
