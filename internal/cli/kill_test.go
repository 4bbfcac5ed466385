package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	syserrors "github.com/rileyhilliard/systrix/internal/errors"
	"github.com/rileyhilliard/systrix/internal/metrics"
	fake "github.com/rileyhilliard/systrix/internal/metrics/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKillCommand_Confirmed(t *testing.T) {
	fp := newFakeWithProcesses()
	s := newTestSession(t, fp)

	var out bytes.Buffer
	err := killCommand(context.Background(), strings.NewReader("y\n"), &out, s, killOptions{PID: 100, Signal: "SIGTERM"})
	require.NoError(t, err)

	text := ansi.Strip(out.String())
	assert.Contains(t, text, "Send SIGTERM to process 100? (y/N)")
	assert.Contains(t, text, "Sent SIGTERM to PID 100")
	require.Len(t, fp.SignalCalls, 1)
	assert.Equal(t, fake.SignalCall{PID: 100, Signal: metrics.SignalTerminate}, fp.SignalCalls[0])
}

func TestKillCommand_Declined(t *testing.T) {
	for _, answer := range []string{"n\n", "\n", "", "nope\n"} {
		fp := newFakeWithProcesses()
		s := newTestSession(t, fp)

		var out bytes.Buffer
		err := killCommand(context.Background(), strings.NewReader(answer), &out, s, killOptions{PID: 100, Signal: "SIGTERM"})
		require.NoError(t, err, "answer %q", answer)
		assert.Contains(t, out.String(), "Cancelled.")
		assert.Empty(t, fp.SignalCalls, "answer %q", answer)
	}
}

func TestKillCommand_ForceSkipsPrompt(t *testing.T) {
	fp := newFakeWithProcesses()
	s := newTestSession(t, fp)

	var out bytes.Buffer
	err := killCommand(context.Background(), strings.NewReader(""), &out, s, killOptions{PID: 200, Signal: "kill", Force: true})
	require.NoError(t, err)

	assert.NotContains(t, out.String(), "(y/N)")
	assert.Contains(t, out.String(), "Sent SIGKILL to PID 200")
	require.Len(t, fp.SignalCalls, 1)
	assert.Equal(t, metrics.SignalKill, fp.SignalCalls[0].Signal)
}

func TestKillCommand_SystemProcess(t *testing.T) {
	t.Run("refused without force", func(t *testing.T) {
		for _, pid := range []int32{0, 1} {
			fp := newFakeWithProcesses()
			s := newTestSession(t, fp)

			err := killCommand(context.Background(), strings.NewReader("y\n"), &bytes.Buffer{}, s, killOptions{PID: pid, Signal: "SIGTERM"})
			require.Error(t, err)
			assert.True(t, syserrors.IsCode(err, syserrors.ErrSafety))
			assert.Contains(t, err.Error(), "system process")
			assert.Equal(t, 0, fp.Called(fake.MethodSendSignal))
		}
	})

	t.Run("allowed with force", func(t *testing.T) {
		fp := newFakeWithProcesses()
		s := newTestSession(t, fp)

		err := killCommand(context.Background(), strings.NewReader(""), &bytes.Buffer{}, s, killOptions{PID: 1, Signal: "SIGTERM", Force: true})
		require.NoError(t, err)
		assert.Equal(t, 1, fp.Called(fake.MethodSendSignal))
	})
}

func TestKillCommand_UnknownSignal(t *testing.T) {
	fp := newFakeWithProcesses()
	s := newTestSession(t, fp)

	err := killCommand(context.Background(), strings.NewReader("y\n"), &bytes.Buffer{}, s, killOptions{PID: 100, Signal: "SIGHUP"})
	require.Error(t, err)
	assert.True(t, syserrors.IsCode(err, syserrors.ErrConfig))
	assert.Equal(t, 0, fp.CallCount())
}

func TestKillCommand_ProviderErrorsKeepTheirCode(t *testing.T) {
	fp := newFakeWithProcesses()
	s := newTestSession(t, fp)

	err := killCommand(context.Background(), strings.NewReader(""), &bytes.Buffer{}, s, killOptions{PID: 4242, Signal: "SIGTERM", Force: true})
	require.Error(t, err)
	assert.True(t, syserrors.IsCode(err, syserrors.ErrNotFound))

	fp.PIDErrors[100] = syserrors.New(syserrors.ErrPermission, "Permission denied", "Try sudo")
	err = killCommand(context.Background(), strings.NewReader(""), &bytes.Buffer{}, s, killOptions{PID: 100, Signal: "SIGTERM", Force: true})
	require.Error(t, err)
	assert.True(t, syserrors.IsCode(err, syserrors.ErrPermission))
}

func TestParsePID(t *testing.T) {
	pid, err := parsePID("4242")
	require.NoError(t, err)
	assert.Equal(t, int32(4242), pid)

	for _, bad := range []string{"", "abc", "-3", "99999999999"} {
		_, err := parsePID(bad)
		assert.True(t, syserrors.IsCode(err, syserrors.ErrConfig), "input %q", bad)
	}
}
