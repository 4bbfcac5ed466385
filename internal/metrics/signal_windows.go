//go:build windows

package metrics

import (
	"context"

	"github.com/rileyhilliard/systrix/internal/errors"
	"github.com/shirou/gopsutil/v3/process"
)

func interrupt(_ context.Context, proc *process.Process) error {
	return errors.New(errors.ErrUnsupported,
		"SIGINT is not supported on Windows",
		"Use SIGTERM or SIGKILL instead")
}

// Windows has no signal-based pause, so suspend/resume are reported as
// unsupported rather than attempted.
func setState(_ context.Context, proc *process.Process, state ProcessState) error {
	verb := "Suspend"
	if state == StateContinue {
		verb = "Resume"
	}
	return errors.New(errors.ErrUnsupported,
		verb+" is not supported on this platform",
		"Only kill is available on Windows")
}

func isNoSuchProcess(error) bool {
	return false
}
