package metrics

import (
	"context"
	"time"

	"github.com/rileyhilliard/systrix/internal/errors"
	"github.com/rileyhilliard/systrix/internal/logger"
)

// DefaultCPUSettle is the wait between the two CPU refreshes of a sample.
const DefaultCPUSettle = 200 * time.Millisecond

// Sampler produces snapshots from a shared Handle.
type Sampler struct {
	handle *Handle
	settle time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
	now    func() time.Time
	log    logger.Logger
}

// SamplerOption configures a Sampler.
type SamplerOption func(*Sampler)

// WithCPUSettle overrides the pause between CPU refreshes.
func WithCPUSettle(d time.Duration) SamplerOption {
	return func(s *Sampler) {
		if d >= 0 {
			s.settle = d
		}
	}
}

// WithSleep replaces the settle wait, mainly so tests don't sleep.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) SamplerOption {
	return func(s *Sampler) { s.sleep = fn }
}

// WithClock sets the timestamp source.
func WithClock(fn func() time.Time) SamplerOption {
	return func(s *Sampler) { s.now = fn }
}

// WithLogger sets the logger used for acquisition diagnostics.
func WithLogger(l logger.Logger) SamplerOption {
	return func(s *Sampler) { s.log = l }
}

// NewSampler creates a sampler over h.
func NewSampler(h *Handle, opts ...SamplerOption) *Sampler {
	s := &Sampler{
		handle: h,
		settle: DefaultCPUSettle,
		sleep:  sleepContext,
		now:    time.Now,
		log:    logger.Noop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle returns the handle the sampler reads through.
func (s *Sampler) Handle() *Handle {
	return s.handle
}

// Sample performs one acquisition. CPU counters are refreshed twice with
// the settle interval in between; only the second reading is used, since a
// single refresh has no time delta to measure against. Any provider error
// aborts the whole sample. A battery error is not fatal and reports an
// absent battery instead.
func (s *Sampler) Sample(ctx context.Context) (Snapshot, error) {
	start := s.now()

	var (
		cpuR    CPUReading
		memR    MemoryReading
		diskR   []DiskReading
		netR    []NetworkReading
		procR   []ProcessReading
		battery BatteryInfo
	)

	err := s.handle.Do(ctx, func(p Provider) error {
		var err error
		if _, err = p.RefreshCPU(ctx); err != nil {
			return wrapAcquire(err, "CPU")
		}
		if err = s.sleep(ctx, s.settle); err != nil {
			return wrapAcquire(err, "CPU")
		}
		if cpuR, err = p.RefreshCPU(ctx); err != nil {
			return wrapAcquire(err, "CPU")
		}
		if memR, err = p.RefreshMemory(ctx); err != nil {
			return wrapAcquire(err, "memory")
		}
		if diskR, err = p.RefreshDisks(ctx); err != nil {
			return wrapAcquire(err, "disk")
		}
		if netR, err = p.RefreshNetwork(ctx); err != nil {
			return wrapAcquire(err, "network")
		}
		if procR, err = p.RefreshProcesses(ctx); err != nil {
			return wrapAcquire(err, "process")
		}
		b, berr := p.ReadBattery(ctx)
		if berr != nil {
			s.log.Debug("battery unavailable: %v", berr)
			b = BatteryInfo{}
		}
		battery = b
		return nil
	})
	if err != nil {
		if !errors.IsCode(err, errors.ErrAcquire) {
			err = wrapAcquire(err, "telemetry")
		}
		s.log.Warn("acquisition failed: %s", errors.Describe(err))
		return Snapshot{}, err
	}

	memory := BuildMemory(memR)
	disk, disks := BuildDisks(diskR)
	snap := Snapshot{
		Timestamp: start,
		CPU:       BuildCPU(cpuR),
		Memory:    memory,
		Disk:      disk,
		Disks:     disks,
		Network:   BuildNetwork(netR),
		Battery:   battery,
		Processes: BuildProcesses(procR, memory.Total),
	}

	s.log.Debug("sampled %d processes, %d disks, %d interfaces in %s",
		len(snap.Processes), len(snap.Disks), len(snap.Network.Interfaces), s.now().Sub(start))
	return snap, nil
}

// BuildCPU converts a reading, clamping every usage value into [0, 100].
func BuildCPU(r CPUReading) CPUSnapshot {
	perCore := make([]float64, len(r.PerCoreUsage))
	for i, u := range r.PerCoreUsage {
		perCore[i] = ClampPercent(u)
	}
	return CPUSnapshot{
		Hostname:      r.Hostname,
		OSName:        r.OSName,
		OSVersion:     r.OSVersion,
		Model:         r.Model,
		PhysicalCores: r.PhysicalCores,
		LogicalCores:  r.LogicalCores,
		GlobalUsage:   ClampPercent(r.GlobalUsage),
		PerCoreUsage:  perCore,
		FrequencyMHz:  r.FrequencyMHz,
		Load1:         r.Load1,
		Load5:         r.Load5,
		Load15:        r.Load15,
		UptimeSeconds: r.UptimeSeconds,
	}
}

// BuildMemory derives used bytes and percentages. Used is total minus
// available, floored at zero.
func BuildMemory(r MemoryReading) MemorySnapshot {
	used := SaturatingSub(r.Total, r.Available)
	swapUsed := r.SwapUsed
	if swapUsed > r.SwapTotal {
		swapUsed = r.SwapTotal
	}
	return MemorySnapshot{
		Total:        r.Total,
		Used:         used,
		Available:    r.Available,
		UsagePercent: UsagePercent(used, r.Total),
		SwapTotal:    r.SwapTotal,
		SwapUsed:     swapUsed,
		SwapPercent:  UsagePercent(swapUsed, r.SwapTotal),
	}
}

// BuildDisks returns the aggregate and per-partition views of the same
// enumeration. The aggregate is summed from raw totals, not from the
// per-partition results.
func BuildDisks(readings []DiskReading) (DiskSnapshot, []DiskInfo) {
	var total, available uint64
	disks := make([]DiskInfo, 0, len(readings))
	for _, r := range readings {
		total += r.Total
		available += r.Available

		used := SaturatingSub(r.Total, r.Available)
		disks = append(disks, DiskInfo{
			Name:         r.Name,
			MountPoint:   r.MountPoint,
			FSType:       r.FSType,
			Total:        r.Total,
			Used:         used,
			Available:    r.Available,
			UsagePercent: UsagePercent(used, r.Total),
			Removable:    r.Removable,
		})
	}
	used := SaturatingSub(total, available)
	return DiskSnapshot{
		Total:        total,
		Used:         used,
		Available:    available,
		UsagePercent: UsagePercent(used, total),
	}, disks
}

// BuildNetwork copies interface counters and sums the totals.
func BuildNetwork(readings []NetworkReading) NetworkSnapshot {
	snap := NetworkSnapshot{Interfaces: make([]NetworkInterface, 0, len(readings))}
	for _, r := range readings {
		snap.Interfaces = append(snap.Interfaces, NetworkInterface{
			Name:               r.Name,
			Received:           r.Received,
			Transmitted:        r.Transmitted,
			RxRate:             r.RxDelta,
			TxRate:             r.TxDelta,
			PacketsReceived:    r.PacketsReceived,
			PacketsTransmitted: r.PacketsTransmitted,
			ErrorsReceived:     r.ErrorsReceived,
			ErrorsTransmitted:  r.ErrorsTransmitted,
		})
		snap.TotalRx += r.Received
		snap.TotalTx += r.Transmitted
	}
	return snap
}

// BuildProcesses converts readings, deriving memory percent from total
// system memory. Duplicate pids keep their first entry.
func BuildProcesses(readings []ProcessReading, totalMemory uint64) []ProcessInfo {
	procs := make([]ProcessInfo, 0, len(readings))
	seen := make(map[int32]struct{}, len(readings))
	for _, r := range readings {
		if _, dup := seen[r.PID]; dup {
			continue
		}
		seen[r.PID] = struct{}{}
		procs = append(procs, ProcessInfo{
			PID:           r.PID,
			Name:          r.Name,
			User:          r.User,
			CPUPercent:    r.CPUPercent,
			MemoryPercent: UsagePercent(r.MemoryBytes, totalMemory),
			MemoryBytes:   r.MemoryBytes,
			DiskRead:      r.DiskRead,
			DiskWrite:     r.DiskWrite,
			Threads:       r.Threads,
			Status:        r.Status,
			StartTime:     r.StartTime,
			ExePath:       r.ExePath,
		})
	}
	return procs
}

func wrapAcquire(err error, what string) error {
	return errors.WrapWithCode(err, errors.ErrAcquire,
		"Failed to read "+what+" metrics",
		"The previous snapshot is kept; systrix retries on the next tick")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
