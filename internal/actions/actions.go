// Package actions sends kill, suspend, and resume requests to processes
// through the shared metrics handle.
package actions

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/rileyhilliard/systrix/internal/errors"
	"github.com/rileyhilliard/systrix/internal/logger"
	"github.com/rileyhilliard/systrix/internal/metrics"
)

// Kind is the action to perform.
type Kind int

const (
	Kill Kind = iota
	Suspend
	Resume
)

func (k Kind) String() string {
	switch k {
	case Suspend:
		return "suspend"
	case Resume:
		return "resume"
	default:
		return "kill"
	}
}

// Request describes one action. Name is only used in messages; Signal is
// only used by Kill.
type Request struct {
	Kind   Kind
	PID    int32
	Name   string
	Signal string
}

// Result is a successful action.
type Result struct {
	Kind    Kind
	PID     int32
	Signal  metrics.Signal
	Message string
}

// ParseSignal normalizes a signal name. The SIG prefix is optional and case
// is ignored; anything unrecognized becomes SIGTERM.
func ParseSignal(name string) metrics.Signal {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "SIGKILL", "KILL":
		return metrics.SignalKill
	case "SIGINT", "INT":
		return metrics.SignalInterrupt
	default:
		return metrics.SignalTerminate
	}
}

// KnownSignal reports whether name maps to a signal without falling back.
func KnownSignal(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "SIGTERM", "TERM", "SIGKILL", "KILL", "SIGINT", "INT":
		return true
	}
	return false
}

// Dispatcher runs actions one at a time against a Handle.
type Dispatcher struct {
	handle *metrics.Handle
	log    logger.Logger

	// AllowSystem permits actions against pid 0 and 1.
	AllowSystem bool
}

// NewDispatcher creates a dispatcher that refuses system pids.
func NewDispatcher(h *metrics.Handle, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Noop()
	}
	return &Dispatcher{handle: h, log: log}
}

// Dispatch performs req once. Requests against pid <= 1 are rejected
// before the provider is touched unless AllowSystem is set. Provider errors
// keep their not-found/permission/unsupported codes.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Result, error) {
	if req.PID <= 1 && !d.AllowSystem {
		d.log.Warn("refused %s of system process %d", req.Kind, req.PID)
		return Result{}, errors.New(errors.ErrSafety,
			fmt.Sprintf("Refusing to %s system process (PID %d)", req.Kind, req.PID),
			"Signalling init can take the whole machine down; pass --force to override")
	}

	res := Result{Kind: req.Kind, PID: req.PID}
	target := describeTarget(req)

	err := d.handle.Do(ctx, func(p metrics.Provider) error {
		switch req.Kind {
		case Suspend:
			return p.SetProcessState(ctx, req.PID, metrics.StateStop)
		case Resume:
			return p.SetProcessState(ctx, req.PID, metrics.StateContinue)
		default:
			res.Signal = ParseSignal(req.Signal)
			return p.SendSignal(ctx, req.PID, res.Signal)
		}
	})
	if err != nil {
		d.log.Warn("%s %s failed: %s", req.Kind, target, errors.Describe(err))
		var sErr *errors.Error
		if stderrors.As(err, &sErr) {
			return Result{}, err
		}
		return Result{}, errors.WrapWithCode(err, errors.ErrAction,
			fmt.Sprintf("Failed to %s %s", req.Kind, target), "")
	}

	switch req.Kind {
	case Suspend:
		res.Message = fmt.Sprintf("Suspended %s", target)
	case Resume:
		res.Message = fmt.Sprintf("Resumed %s", target)
	default:
		res.Message = fmt.Sprintf("Sent %s to %s", res.Signal, target)
	}
	d.log.Info("%s", res.Message)
	return res, nil
}

func describeTarget(req Request) string {
	if req.Name == "" {
		return fmt.Sprintf("PID %d", req.PID)
	}
	return fmt.Sprintf("%s (PID %d)", req.Name, req.PID)
}
