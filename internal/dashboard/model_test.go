package dashboard

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	syserrors "github.com/rileyhilliard/systrix/internal/errors"
	"github.com/rileyhilliard/systrix/internal/metrics"
	fake "github.com/rileyhilliard/systrix/internal/metrics/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSampler struct {
	mu    sync.Mutex
	snap  metrics.Snapshot
	err   error
	calls int
}

func (s *stubSampler) Sample(ctx context.Context) (metrics.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return metrics.Snapshot{}, s.err
	}
	snap := s.snap
	snap.Timestamp = time.Date(2024, 1, 1, 12, 0, s.calls, 0, time.UTC)
	return snap, nil
}

func (s *stubSampler) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func fakeSnapshot(t *testing.T) metrics.Snapshot {
	t.Helper()
	fp := fake.NewFakeProvider()
	fp.SetProcesses(fixture(len(testProcesses))...)
	snap, err := metrics.NewSampler(metrics.NewHandle(fp), metrics.WithCPUSettle(0)).Sample(context.Background())
	require.NoError(t, err)
	return snap
}

func newTestModel(t *testing.T, exporter Exporter) (Model, *stubSampler) {
	t.Helper()
	snap := fakeSnapshot(t)
	sampler := &stubSampler{snap: snap}
	ctrl := NewController(Options{RefreshInterval: time.Second, ShowGraphs: true, ShowPerCoreCPU: true})
	ctrl.ApplySnapshot(snap)
	m := NewModel(context.Background(), ModelOptions{
		Controller: ctrl,
		Sampler:    sampler,
		Exporter:   exporter,
		Thresholds: DefaultThresholds(),
	})
	return m, sampler
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func runeKey(r ...rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: r}
}

func TestModel_InitSchedulesTick(t *testing.T) {
	m, _ := newTestModel(t, nil)
	assert.NotNil(t, m.Init())
	assert.Equal(t, 1, m.history.Len(), "the startup snapshot seeds the graphs")
}

func TestModel_TickAcquires(t *testing.T) {
	m, sampler := newTestModel(t, nil)

	m, cmd := update(t, m, tickMsg(time.Now()))
	require.NotNil(t, cmd)
	assert.True(t, m.acquiring)

	// a second tick while the first acquisition is out does not start another
	m, _ = update(t, m, tickMsg(time.Now()))
	assert.Zero(t, sampler.Calls())

	msg := cmd()
	got, ok := msg.(snapshotMsg)
	require.True(t, ok)
	assert.Equal(t, 1, sampler.Calls())

	m, next := update(t, m, got)
	assert.NotNil(t, next)
	assert.False(t, m.acquiring)
	assert.Equal(t, got.snap.Timestamp, m.Controller().Snapshot().Timestamp)
	assert.Equal(t, 2, m.history.Len())
}

func TestModel_PausedTickSkipsAcquisition(t *testing.T) {
	m, sampler := newTestModel(t, nil)
	m, _ = update(t, m, runeKey('p'))
	require.True(t, m.Controller().Paused())

	m, cmd := update(t, m, tickMsg(time.Now()))
	assert.NotNil(t, cmd, "the tick keeps running while paused")
	assert.False(t, m.acquiring)
	assert.Zero(t, sampler.Calls())
}

func TestModel_AcquisitionErrorKeepsSnapshot(t *testing.T) {
	m, sampler := newTestModel(t, nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 200, Height: 40})
	before := m.Controller().Snapshot()
	sampler.err = syserrors.New(syserrors.ErrAcquire, "Failed to read memory metrics", "")

	m, cmd := update(t, m, tickMsg(time.Now()))
	msg := cmd()
	require.IsType(t, acquireErrMsg{}, msg)

	m, next := update(t, m, msg)
	assert.NotNil(t, next)
	assert.False(t, m.acquiring)
	assert.Equal(t, before, m.Controller().Snapshot())
	assert.Error(t, m.Controller().LastError())
	assert.Contains(t, ansi.Strip(m.View()), "Failed to read memory metrics")
}

func TestModel_QuitKey(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m, cmd := update(t, m, runeKey('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestModel_MultiRuneInputIntoSearch(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m, _ = update(t, m, runeKey('2'))
	m, _ = update(t, m, runeKey('/'))
	m, _ = update(t, m, runeKey('v', 'i', 'm'))

	assert.Equal(t, "vim", m.Controller().State().Query)
	assert.Equal(t, []int32{300}, pids(m.Controller().VisibleProcesses()))
}

func TestModel_PasteOutsideSearchIsDropped(t *testing.T) {
	h := newHarness(t)
	m := NewModel(context.Background(), ModelOptions{Controller: h.ctrl, Sampler: h.sampler})
	m, _ = update(t, m, runeKey('2'))

	paste := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ky"), Paste: true}
	m, _ = update(t, m, paste)

	assert.Equal(t, ModalNone, m.Controller().State().Modal.Kind)
	assert.Empty(t, h.fake.SignalCalls)

	// Typed keys still reach the kill prompt, and a pasted confirmation
	// does not answer it.
	m, _ = update(t, m, runeKey('k'))
	require.Equal(t, ModalKillConfirm, m.Controller().State().Modal.Kind)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y"), Paste: true})
	assert.Equal(t, ModalKillConfirm, m.Controller().State().Modal.Kind)
	assert.Empty(t, h.fake.SignalCalls)
}

func TestModel_PasteWhileSearching(t *testing.T) {
	h := newHarness(t)
	m := NewModel(context.Background(), ModelOptions{Controller: h.ctrl, Sampler: h.sampler})
	m, _ = update(t, m, runeKey('2'))
	m, _ = update(t, m, runeKey('/'))

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("kyq\t"), Paste: true})
	assert.Nil(t, cmd, "a pasted q is text, not the quit key")
	assert.Equal(t, "kyq", m.Controller().State().Query)
	assert.Equal(t, SearchActive, m.Controller().State().Search)
	assert.Equal(t, ModalNone, m.Controller().State().Modal.Kind)
	assert.Empty(t, h.fake.SignalCalls)
}

func TestModel_Export(t *testing.T) {
	var gotFormat string
	m, _ := newTestModel(t, func(snap metrics.Snapshot, format string) (string, error) {
		gotFormat = format
		return "/tmp/systrix_export_20240101_120000." + format, nil
	})

	msg := m.exportCmd(ExportRequest{Format: "csv", Snapshot: m.Controller().Snapshot()})()
	done, ok := msg.(exportDoneMsg)
	require.True(t, ok)
	assert.Equal(t, "csv", gotFormat)
	assert.NoError(t, done.err)

	m, _ = update(t, m, done)
	modal := m.Controller().State().Modal
	assert.Equal(t, ModalDetail, modal.Kind)
	assert.Contains(t, modal.Message, "/tmp/systrix_export_20240101_120000.csv")
	assert.Contains(t, ansi.Strip(m.View()), "Export Complete")
}

func TestModel_ExportWithoutExporter(t *testing.T) {
	m, _ := newTestModel(t, nil)
	msg := m.exportCmd(ExportRequest{Format: "json"})()
	done := msg.(exportDoneMsg)
	assert.True(t, syserrors.IsCode(done.err, syserrors.ErrExport))

	m, _ = update(t, m, done)
	assert.True(t, m.Controller().State().Modal.Failed)
}

func TestModel_ViewRendersEveryPanelAndTheme(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	for _, theme := range []Theme{ThemeDark, ThemeLight, ThemeDracula} {
		for _, key := range []rune{'1', '2', '3', '4'} {
			m, _ = update(t, m, runeKey(key))
			out := ansi.Strip(m.View())
			assert.Contains(t, out, "SYSTRIX", "theme %s panel %c", theme, key)
			assert.Contains(t, out, "Processes")
			assert.GreaterOrEqual(t, strings.Count(out, "\n"), 10)
		}
		m, _ = update(t, m, runeKey('5'))
		assert.Contains(t, ansi.Strip(m.View()), "Appearance")
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
		m, _ = update(t, m, runeKey('t'))
	}
}

func TestModel_NetworkRateUsesSnapshotGap(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	m, _ = update(t, m, runeKey('3'))

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	snapAt := func(d time.Duration, rx uint64) snapshotMsg {
		snap := fakeSnapshot(t)
		snap.Timestamp = base.Add(d)
		snap.Network.Interfaces = []metrics.NetworkInterface{{Name: "eth0", RxRate: rx}}
		return snapshotMsg{snap: snap}
	}

	m, _ = update(t, m, snapAt(0, 0))
	m, _ = update(t, m, snapAt(700*time.Millisecond, 1<<20))
	assert.Contains(t, ansi.Strip(m.View()), "1.4 MiB/s")
	rx, _ := m.history.Network(DefaultHistorySize)
	require.NotEmpty(t, rx)
	assert.InDelta(t, float64(1<<20)/0.7, rx[len(rx)-1], 1)

	m, _ = update(t, m, runeKey('p'))
	m, _ = update(t, m, runeKey('p'))
	m, _ = update(t, m, snapAt(10*time.Second, 8<<20))
	out := ansi.Strip(m.View())
	assert.NotContains(t, out, "MiB/s")
	assert.Regexp(t, `eth0\s+-\s+-\s`, out)
	after, _ := m.history.Network(DefaultHistorySize)
	assert.Len(t, after, len(rx), "resumed snapshot adds no network sample")
}

func TestModel_ViewProcessesShowsRows(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, runeKey('2'))

	out := ansi.Strip(m.View())
	for _, name := range []string{"chrome_helper", "bash", "vim", "init"} {
		assert.Contains(t, out, name)
	}
}

func TestModel_ViewTinyTerminal(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 10, Height: 3})
	assert.NotPanics(t, func() { _ = m.View() })
}

func TestModel_ModalAndHelpOverlays(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m, _ = update(t, m, runeKey('2'))
	m, _ = update(t, m, runeKey('k'))
	out := ansi.Strip(m.View())
	assert.Contains(t, out, "Kill Process")
	assert.Contains(t, out, "chrome_helper")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = update(t, m, runeKey('?'))
	assert.True(t, m.Controller().State().ShowHelp)
	assert.Contains(t, ansi.Strip(m.View()), "quit")
}
