// Package testing provides test doubles for the metrics package.
package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/rileyhilliard/systrix/internal/errors"
	"github.com/rileyhilliard/systrix/internal/metrics"
)

// Method names recorded in FakeProvider.Calls and accepted by SetFail.
const (
	MethodRefreshCPU       = "RefreshCPU"
	MethodRefreshMemory    = "RefreshMemory"
	MethodRefreshDisks     = "RefreshDisks"
	MethodRefreshNetwork   = "RefreshNetwork"
	MethodRefreshProcesses = "RefreshProcesses"
	MethodReadBattery      = "ReadBattery"
	MethodSendSignal       = "SendSignal"
	MethodSetProcessState  = "SetProcessState"
)

// SignalCall records a call to SendSignal.
type SignalCall struct {
	PID    int32
	Signal metrics.Signal
}

// StateCall records a call to SetProcessState.
type StateCall struct {
	PID   int32
	State metrics.ProcessState
}

// FakeProvider is a deterministic metrics.Provider. It succeeds by default,
// returning whatever readings were configured.
type FakeProvider struct {
	mu sync.Mutex

	// Scripted readings. CPU readings are consumed in order; the last one repeats.
	CPU       []metrics.CPUReading
	Memory    metrics.MemoryReading
	Disks     []metrics.DiskReading
	Network   []metrics.NetworkReading
	Processes []metrics.ProcessReading
	Battery   metrics.BatteryInfo

	// Failure injection
	Failures map[string]error
	// PIDErrors makes signal and state calls against a pid fail.
	PIDErrors map[int32]error
	// StateUnsupported makes SetProcessState fail as on platforms without SIGSTOP.
	StateUnsupported bool

	// Call tracking
	Calls       []string
	SignalCalls []SignalCall
	StateCalls  []StateCall
	cpuPosition int
	inFlight    int
	maxInFlight int
}

// NewFakeProvider creates a provider with a small plausible machine.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		CPU: []metrics.CPUReading{{
			Hostname:      "fakehost",
			OSName:        "linux",
			OSVersion:     "6.1",
			Model:         "Fake CPU @ 3.00GHz",
			PhysicalCores: 2,
			LogicalCores:  4,
			GlobalUsage:   25,
			PerCoreUsage:  []float64{10, 20, 30, 40},
			FrequencyMHz:  3000,
			Load1:         0.5,
			Load5:         0.4,
			Load15:        0.3,
			UptimeSeconds: 3600,
		}},
		Memory: metrics.MemoryReading{
			Total:     16 << 30,
			Available: 12 << 30,
			SwapTotal: 2 << 30,
			SwapUsed:  0,
		},
		Disks: []metrics.DiskReading{
			{Name: "/dev/sda1", MountPoint: "/", FSType: "ext4", Total: 500 << 30, Available: 200 << 30},
		},
		Network: []metrics.NetworkReading{
			{Name: "eth0", Received: 1 << 20, Transmitted: 512 << 10, RxDelta: 1024, TxDelta: 512},
		},
		Processes: []metrics.ProcessReading{
			{PID: 1, Name: "init", User: "root", Status: "sleep", Threads: 1},
		},
		Failures:  make(map[string]error),
		PIDErrors: make(map[int32]error),
	}
}

// SetFail makes method return err (or a generic error when err is nil).
func (f *FakeProvider) SetFail(method string, err error) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		err = fmt.Errorf("%s failed (configured in test)", method)
	}
	f.Failures[method] = err
	return f
}

// ClearFail removes injected failure for method.
func (f *FakeProvider) ClearFail(method string) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Failures, method)
	return f
}

// SetProcesses replaces the process table.
func (f *FakeProvider) SetProcesses(procs ...metrics.ProcessReading) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Processes = procs
	return f
}

func (f *FakeProvider) enter(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, method)
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	return f.Failures[method]
}

func (f *FakeProvider) leave() {
	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
}

func (f *FakeProvider) RefreshCPU(ctx context.Context) (metrics.CPUReading, error) {
	defer f.leave()
	if err := f.enter(MethodRefreshCPU); err != nil {
		return metrics.CPUReading{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.CPU) == 0 {
		return metrics.CPUReading{}, nil
	}
	idx := f.cpuPosition
	if idx >= len(f.CPU) {
		idx = len(f.CPU) - 1
	}
	f.cpuPosition++
	r := f.CPU[idx]
	r.PerCoreUsage = append([]float64(nil), r.PerCoreUsage...)
	return r, nil
}

func (f *FakeProvider) RefreshMemory(ctx context.Context) (metrics.MemoryReading, error) {
	defer f.leave()
	if err := f.enter(MethodRefreshMemory); err != nil {
		return metrics.MemoryReading{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Memory, nil
}

func (f *FakeProvider) RefreshDisks(ctx context.Context) ([]metrics.DiskReading, error) {
	defer f.leave()
	if err := f.enter(MethodRefreshDisks); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]metrics.DiskReading(nil), f.Disks...), nil
}

func (f *FakeProvider) RefreshNetwork(ctx context.Context) ([]metrics.NetworkReading, error) {
	defer f.leave()
	if err := f.enter(MethodRefreshNetwork); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]metrics.NetworkReading(nil), f.Network...), nil
}

func (f *FakeProvider) RefreshProcesses(ctx context.Context) ([]metrics.ProcessReading, error) {
	defer f.leave()
	if err := f.enter(MethodRefreshProcesses); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]metrics.ProcessReading(nil), f.Processes...), nil
}

func (f *FakeProvider) ReadBattery(ctx context.Context) (metrics.BatteryInfo, error) {
	defer f.leave()
	if err := f.enter(MethodReadBattery); err != nil {
		return metrics.BatteryInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Battery, nil
}

// SendSignal records the call. Unknown pids fail as not found; a
// successful kill removes the process from the table.
func (f *FakeProvider) SendSignal(ctx context.Context, pid int32, sig metrics.Signal) error {
	defer f.leave()
	if err := f.enter(MethodSendSignal); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SignalCalls = append(f.SignalCalls, SignalCall{PID: pid, Signal: sig})

	if err := f.PIDErrors[pid]; err != nil {
		return err
	}
	idx := f.indexOf(pid)
	if idx < 0 {
		return notFound(pid)
	}
	f.Processes = append(f.Processes[:idx:idx], f.Processes[idx+1:]...)
	return nil
}

// SetProcessState records the call and updates the process status.
func (f *FakeProvider) SetProcessState(ctx context.Context, pid int32, state metrics.ProcessState) error {
	defer f.leave()
	if err := f.enter(MethodSetProcessState); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.StateCalls = append(f.StateCalls, StateCall{PID: pid, State: state})

	if f.StateUnsupported {
		return errors.New(errors.ErrUnsupported,
			"Suspend/resume is not supported on this platform", "")
	}
	if err := f.PIDErrors[pid]; err != nil {
		return err
	}
	idx := f.indexOf(pid)
	if idx < 0 {
		return notFound(pid)
	}
	if state == metrics.StateStop {
		f.Processes[idx].Status = "stop"
	} else {
		f.Processes[idx].Status = "running"
	}
	return nil
}

func (f *FakeProvider) indexOf(pid int32) int {
	for i, p := range f.Processes {
		if p.PID == pid {
			return i
		}
	}
	return -1
}

func notFound(pid int32) error {
	return errors.New(errors.ErrNotFound,
		fmt.Sprintf("Cannot signal process %d: no such process", pid),
		"It may have already exited")
}

// Called reports how many times method was invoked.
func (f *FakeProvider) Called(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == method {
			n++
		}
	}
	return n
}

// CallCount returns the total number of provider calls.
func (f *FakeProvider) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

// MaxConcurrent is the highest number of calls observed in flight at once.
func (f *FakeProvider) MaxConcurrent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

// Reset clears call tracking and injected failures.
func (f *FakeProvider) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = nil
	f.SignalCalls = nil
	f.StateCalls = nil
	f.Failures = make(map[string]error)
	f.PIDErrors = make(map[int32]error)
	f.StateUnsupported = false
	f.cpuPosition = 0
}

var _ metrics.Provider = (*FakeProvider)(nil)
