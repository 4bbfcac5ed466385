//go:build !windows

package metrics

import (
	"context"
	stderrors "errors"
	"syscall"

	"github.com/shirou/gopsutil/v3/process"
)

func interrupt(ctx context.Context, proc *process.Process) error {
	return proc.SendSignalWithContext(ctx, syscall.SIGINT)
}

// setState sends SIGSTOP or SIGCONT.
func setState(ctx context.Context, proc *process.Process, state ProcessState) error {
	if state == StateContinue {
		return proc.ResumeWithContext(ctx)
	}
	return proc.SuspendWithContext(ctx)
}

func isNoSuchProcess(err error) bool {
	return stderrors.Is(err, syscall.ESRCH)
}
