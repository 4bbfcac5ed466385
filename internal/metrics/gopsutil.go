package metrics

import (
	"context"
	stderrors "errors"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rileyhilliard/systrix/internal/errors"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	psnet "github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// cpuJiffies stores CPU time counters for delta calculation.
type cpuJiffies struct {
	total float64
	idle  float64
}

func jiffiesOf(t cpu.TimesStat) cpuJiffies {
	total := t.User + t.System + t.Idle + t.Nice + t.Iowait + t.Irq + t.Softirq + t.Steal
	return cpuJiffies{total: total, idle: t.Idle + t.Iowait}
}

// busyPercent is the non-idle share of the time elapsed between two samples.
func busyPercent(prev, cur cpuJiffies) float64 {
	dt := cur.total - prev.total
	if dt <= 0 {
		return 0
	}
	idle := cur.idle - prev.idle
	return ClampPercent((dt - idle) / dt * 100)
}

// trackedProcess keeps a gopsutil handle alive between refreshes so
// PercentWithContext(0) measures the delta since the previous call.
type trackedProcess struct {
	proc      *process.Process
	createdMS int64
}

// hostInfo is static host metadata read once.
type hostInfo struct {
	hostname      string
	osName        string
	osVersion     string
	model         string
	mhz           uint64
	physicalCores int
	logicalCores  int
}

// GopsutilProvider reads the local host through gopsutil. It is stateful
// and must be accessed through a Handle.
type GopsutilProvider struct {
	info     *hostInfo
	prevAll  *cpuJiffies
	prevCore []cpuJiffies
	prevNet  map[string]psnet.IOCountersStat
	procs    map[int32]*trackedProcess
	battery  func(context.Context) (BatteryInfo, error)
}

// NewGopsutilProvider creates a provider for the local machine.
func NewGopsutilProvider() *GopsutilProvider {
	return &GopsutilProvider{
		prevNet: make(map[string]psnet.IOCountersStat),
		procs:   make(map[int32]*trackedProcess),
		battery: readBattery,
	}
}

func (g *GopsutilProvider) loadHostInfo(ctx context.Context) *hostInfo {
	if g.info != nil {
		return g.info
	}
	info := &hostInfo{}
	if h, err := host.InfoWithContext(ctx); err == nil {
		info.hostname = h.Hostname
		info.osName = h.Platform
		if info.osName == "" {
			info.osName = h.OS
		}
		info.osVersion = h.PlatformVersion
		if info.osVersion == "" {
			info.osVersion = h.KernelVersion
		}
	}
	if info.hostname == "" {
		info.hostname, _ = os.Hostname()
	}
	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		info.model = strings.TrimSpace(cpus[0].ModelName)
		info.mhz = uint64(cpus[0].Mhz)
	}
	info.physicalCores, _ = cpu.CountsWithContext(ctx, false)
	info.logicalCores, _ = cpu.CountsWithContext(ctx, true)
	g.info = info
	return info
}

// RefreshCPU samples CPU counters and returns usage since the previous call.
// The first call has no baseline and reports zero usage.
func (g *GopsutilProvider) RefreshCPU(ctx context.Context) (CPUReading, error) {
	all, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return CPUReading{}, err
	}
	cores, err := cpu.TimesWithContext(ctx, true)
	if err != nil {
		return CPUReading{}, err
	}

	info := g.loadHostInfo(ctx)
	r := CPUReading{
		Hostname:      info.hostname,
		OSName:        info.osName,
		OSVersion:     info.osVersion,
		Model:         info.model,
		PhysicalCores: info.physicalCores,
		LogicalCores:  info.logicalCores,
		FrequencyMHz:  info.mhz,
		PerCoreUsage:  make([]float64, len(cores)),
	}
	if r.LogicalCores == 0 {
		r.LogicalCores = len(cores)
	}

	if len(all) > 0 {
		cur := jiffiesOf(all[0])
		if g.prevAll != nil {
			r.GlobalUsage = busyPercent(*g.prevAll, cur)
		}
		g.prevAll = &cur
	}

	nextCore := make([]cpuJiffies, len(cores))
	for i, t := range cores {
		nextCore[i] = jiffiesOf(t)
		if i < len(g.prevCore) {
			r.PerCoreUsage[i] = busyPercent(g.prevCore[i], nextCore[i])
		}
	}
	g.prevCore = nextCore

	if avg, err := load.AvgWithContext(ctx); err == nil {
		r.Load1, r.Load5, r.Load15 = avg.Load1, avg.Load5, avg.Load15
	}
	if up, err := host.UptimeWithContext(ctx); err == nil {
		r.UptimeSeconds = up
	}
	return r, nil
}

// RefreshMemory reads RAM and swap usage.
func (g *GopsutilProvider) RefreshMemory(ctx context.Context) (MemoryReading, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemoryReading{}, err
	}
	r := MemoryReading{Total: vm.Total, Available: vm.Available}
	if sw, err := mem.SwapMemoryWithContext(ctx); err == nil {
		r.SwapTotal, r.SwapUsed = sw.Total, sw.Used
	}
	return r, nil
}

// RefreshDisks enumerates physical partitions. Mounts that can't be
// stat'ed (permissions, stale network mounts) are skipped.
func (g *GopsutilProvider) RefreshDisks(ctx context.Context) ([]DiskReading, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	readings := make([]DiskReading, 0, len(parts))
	for _, p := range parts {
		if seen[p.Mountpoint] {
			continue
		}
		seen[p.Mountpoint] = true

		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil || usage.Total == 0 {
			continue
		}
		readings = append(readings, DiskReading{
			Name:       p.Device,
			MountPoint: p.Mountpoint,
			FSType:     p.Fstype,
			Total:      usage.Total,
			Available:  usage.Free,
			Removable:  isRemovableMount(p.Mountpoint),
		})
	}
	return readings, nil
}

// isRemovableMount guesses from the conventional automount locations.
func isRemovableMount(mount string) bool {
	for _, prefix := range []string{"/media/", "/run/media/", "/mnt/", "/Volumes/"} {
		if strings.HasPrefix(mount, prefix) {
			return true
		}
	}
	return false
}

// RefreshNetwork reads per-interface counters. Deltas are relative to the
// previous call; the first call and counter resets report zero.
func (g *GopsutilProvider) RefreshNetwork(ctx context.Context) ([]NetworkReading, error) {
	counters, err := psnet.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, err
	}

	next := make(map[string]psnet.IOCountersStat, len(counters))
	readings := make([]NetworkReading, 0, len(counters))
	for _, c := range counters {
		next[c.Name] = c
		r := NetworkReading{
			Name:               c.Name,
			Received:           c.BytesRecv,
			Transmitted:        c.BytesSent,
			PacketsReceived:    c.PacketsRecv,
			PacketsTransmitted: c.PacketsSent,
			ErrorsReceived:     c.Errin,
			ErrorsTransmitted:  c.Errout,
		}
		if prev, ok := g.prevNet[c.Name]; ok {
			r.RxDelta = SaturatingSub(c.BytesRecv, prev.BytesRecv)
			r.TxDelta = SaturatingSub(c.BytesSent, prev.BytesSent)
		}
		readings = append(readings, r)
	}
	g.prevNet = next

	sort.Slice(readings, func(i, j int) bool { return readings[i].Name < readings[j].Name })
	return readings, nil
}

// RefreshProcesses lists live processes. Handles are cached per pid (and
// creation time, to survive pid reuse) so CPU percent is a delta.
func (g *GopsutilProvider) RefreshProcesses(ctx context.Context) ([]ProcessReading, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return nil, err
	}

	alive := make(map[int32]*trackedProcess, len(pids))
	readings := make([]ProcessReading, 0, len(pids))
	for _, pid := range pids {
		tp := g.track(ctx, pid)
		if tp == nil {
			continue
		}
		r, ok := readProcess(ctx, tp)
		if !ok {
			continue
		}
		alive[pid] = tp
		readings = append(readings, r)
	}
	g.procs = alive
	return readings, nil
}

func (g *GopsutilProvider) track(ctx context.Context, pid int32) *trackedProcess {
	if tp, ok := g.procs[pid]; ok {
		created, err := tp.proc.CreateTimeWithContext(ctx)
		if err == nil && created == tp.createdMS {
			return tp
		}
	}
	proc, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return nil
	}
	created, _ := proc.CreateTimeWithContext(ctx)
	return &trackedProcess{proc: proc, createdMS: created}
}

// readProcess gathers one row. A process that vanished mid-read is dropped;
// fields the caller lacks permission for are left zero.
func readProcess(ctx context.Context, tp *trackedProcess) (ProcessReading, bool) {
	p := tp.proc
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return ProcessReading{}, false
	}

	r := ProcessReading{PID: p.Pid, Name: name}
	r.User, _ = p.UsernameWithContext(ctx)
	r.CPUPercent, _ = p.PercentWithContext(ctx, 0)
	if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
		r.MemoryBytes = mi.RSS
	}
	if io, err := p.IOCountersWithContext(ctx); err == nil && io != nil {
		r.DiskRead, r.DiskWrite = io.ReadBytes, io.WriteBytes
	}
	r.Threads, _ = p.NumThreadsWithContext(ctx)
	if st, err := p.StatusWithContext(ctx); err == nil {
		r.Status = strings.Join(st, ",")
	}
	if tp.createdMS > 0 {
		r.StartTime = time.UnixMilli(tp.createdMS)
	}
	r.ExePath, _ = p.ExeWithContext(ctx)
	return r, true
}

// ReadBattery reports the primary battery, if any.
func (g *GopsutilProvider) ReadBattery(ctx context.Context) (BatteryInfo, error) {
	return g.battery(ctx)
}

// SendSignal delivers sig to pid.
func (g *GopsutilProvider) SendSignal(ctx context.Context, pid int32, sig Signal) error {
	proc, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return classifyProcessError(err, pid, "signal")
	}

	switch sig {
	case SignalKill:
		err = proc.KillWithContext(ctx)
	case SignalInterrupt:
		err = interrupt(ctx, proc)
	default:
		err = proc.TerminateWithContext(ctx)
	}
	if err != nil {
		return classifyProcessError(err, pid, "send "+sig.String()+" to")
	}
	return nil
}

// SetProcessState stops or continues pid.
func (g *GopsutilProvider) SetProcessState(ctx context.Context, pid int32, state ProcessState) error {
	proc, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return classifyProcessError(err, pid, state.String())
	}
	if err := setState(ctx, proc, state); err != nil {
		return classifyProcessError(err, pid, state.String())
	}
	return nil
}

// classifyProcessError maps OS failures onto not-found, permission, and
// unsupported codes so callers can tell them apart.
func classifyProcessError(err error, pid int32, verb string) error {
	var sErr *errors.Error
	if stderrors.As(err, &sErr) {
		return err
	}
	target := describePID(pid)
	switch {
	case stderrors.Is(err, process.ErrorProcessNotRunning),
		stderrors.Is(err, os.ErrProcessDone),
		isNoSuchProcess(err):
		return errors.WrapWithCode(err, errors.ErrNotFound,
			"Cannot "+verb+" "+target+": no such process",
			"It may have already exited")
	case stderrors.Is(err, os.ErrPermission):
		return errors.WrapWithCode(err, errors.ErrPermission,
			"Cannot "+verb+" "+target+": permission denied",
			"Processes owned by other users need elevated privileges")
	default:
		return errors.WrapWithCode(err, errors.ErrAction,
			"Cannot "+verb+" "+target, "")
	}
}
