package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Signal is a termination signal the provider can deliver.
type Signal int

const (
	SignalTerminate Signal = iota
	SignalKill
	SignalInterrupt
)

func (s Signal) String() string {
	switch s {
	case SignalKill:
		return "SIGKILL"
	case SignalInterrupt:
		return "SIGINT"
	default:
		return "SIGTERM"
	}
}

// ProcessState is the run state requested through SetProcessState.
type ProcessState int

const (
	StateStop ProcessState = iota
	StateContinue
)

func (s ProcessState) String() string {
	if s == StateContinue {
		return "continue"
	}
	return "stop"
}

// CPUReading is the raw CPU state after a refresh. Usage values cover the
// time since the previous RefreshCPU call.
type CPUReading struct {
	Hostname      string
	OSName        string
	OSVersion     string
	Model         string
	PhysicalCores int
	LogicalCores  int
	GlobalUsage   float64
	PerCoreUsage  []float64
	FrequencyMHz  uint64
	Load1         float64
	Load5         float64
	Load15        float64
	UptimeSeconds uint64
}

// MemoryReading is raw RAM and swap usage in bytes.
type MemoryReading struct {
	Total     uint64
	Available uint64
	SwapTotal uint64
	SwapUsed  uint64
}

// DiskReading is one partition as enumerated by the provider.
type DiskReading struct {
	Name       string
	MountPoint string
	FSType     string
	Total      uint64
	Available  uint64
	Removable  bool
}

// NetworkReading is one interface. RxDelta/TxDelta are bytes moved since
// the provider's previous network refresh.
type NetworkReading struct {
	Name               string
	Received           uint64
	Transmitted        uint64
	RxDelta            uint64
	TxDelta            uint64
	PacketsReceived    uint64
	PacketsTransmitted uint64
	ErrorsReceived     uint64
	ErrorsTransmitted  uint64
}

// ProcessReading is one process as seen by the provider.
type ProcessReading struct {
	PID         int32
	Name        string
	User        string
	CPUPercent  float64
	MemoryBytes uint64
	DiskRead    uint64
	DiskWrite   uint64
	Threads     int32
	Status      string
	StartTime   time.Time
	ExePath     string
}

// Provider is the OS capability systrix samples and controls processes through.
// Implementations are stateful and not safe for concurrent use; wrap them in a Handle.
type Provider interface {
	RefreshCPU(ctx context.Context) (CPUReading, error)
	RefreshMemory(ctx context.Context) (MemoryReading, error)
	RefreshDisks(ctx context.Context) ([]DiskReading, error)
	RefreshNetwork(ctx context.Context) ([]NetworkReading, error)
	RefreshProcesses(ctx context.Context) ([]ProcessReading, error)
	ReadBattery(ctx context.Context) (BatteryInfo, error)
	SendSignal(ctx context.Context, pid int32, sig Signal) error
	SetProcessState(ctx context.Context, pid int32, state ProcessState) error
}

// Handle serializes access to a Provider. At most one function passed to Do
// runs at a time.
type Handle struct {
	mu       sync.Mutex
	provider Provider
}

// NewHandle wraps p. The caller must not use p directly afterwards.
func NewHandle(p Provider) *Handle {
	return &Handle{provider: p}
}

// Do runs fn with exclusive access to the provider. It returns ctx.Err()
// without running fn when the context is already done.
func (h *Handle) Do(ctx context.Context, fn func(Provider) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(h.provider)
}

// describePID is used in provider error messages.
func describePID(pid int32) string {
	return fmt.Sprintf("process %d", pid)
}
