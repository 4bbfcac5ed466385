package dashboard

import (
	"time"

	"github.com/rileyhilliard/systrix/internal/metrics"
)

// DefaultHistorySize is the number of samples kept per series.
const DefaultHistorySize = 60

// History keeps recent CPU, memory, and network throughput samples for the
// sparkline graphs. It is only touched from the update loop.
type History struct {
	size int
	cpu  *ringBuffer
	mem  *ringBuffer
	rx   *ringBuffer
	tx   *ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a history holding size samples per series.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size: size,
		cpu:  newRingBuffer(size),
		mem:  newRingBuffer(size),
		rx:   newRingBuffer(size),
		tx:   newRingBuffer(size),
	}
}

// Push records one snapshot. Network values are bytes per second over
// window, summed over interfaces and skipping loopback. Without a window
// the network series is left as is.
func (h *History) Push(s metrics.Snapshot, window time.Duration) {
	h.cpu.push(s.CPU.GlobalUsage)
	h.mem.push(s.Memory.UsagePercent)
	if window <= 0 {
		return
	}

	var rx, tx uint64
	for _, iface := range s.Network.Interfaces {
		if iface.Name == "lo" || iface.Name == "lo0" {
			continue
		}
		rx += iface.RxRate
		tx += iface.TxRate
	}
	h.rx.push(bytesPerSecond(rx, window))
	h.tx.push(bytesPerSecond(tx, window))
}

// CPU returns up to count CPU percentages, oldest first.
func (h *History) CPU(count int) []float64 {
	return h.cpu.getLast(count)
}

// Memory returns up to count memory percentages, oldest first.
func (h *History) Memory(count int) []float64 {
	return h.mem.getLast(count)
}

// Network returns up to count received and transmitted bytes per second.
func (h *History) Network(count int) (rx, tx []float64) {
	return h.rx.getLast(count), h.tx.getLast(count)
}

// Len is the number of samples recorded so far, capped at the buffer size.
func (h *History) Len() int {
	return h.cpu.count
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order.
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}
	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)
	// head is the next write position, so the newest value sits at head-1.
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}
