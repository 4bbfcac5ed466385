package dashboard

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rileyhilliard/systrix/internal/actions"
	syserrors "github.com/rileyhilliard/systrix/internal/errors"
	"github.com/rileyhilliard/systrix/internal/logger"
	"github.com/rileyhilliard/systrix/internal/metrics"
	fake "github.com/rileyhilliard/systrix/internal/metrics/testing"
	"github.com/rileyhilliard/systrix/internal/procview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProcesses = []metrics.ProcessReading{
	{PID: 100, Name: "chrome_helper", User: "alice", CPUPercent: 50, MemoryBytes: 400 << 20},
	{PID: 200, Name: "bash", User: "chrome", CPUPercent: 30, MemoryBytes: 10 << 20},
	{PID: 300, Name: "vim", User: "bob", CPUPercent: 10, MemoryBytes: 30 << 20},
	{PID: 1, Name: "init", User: "root", CPUPercent: 0, MemoryBytes: 5 << 20},
}

type harness struct {
	t       *testing.T
	ctrl    *Controller
	fake    *fake.FakeProvider
	sampler *metrics.Sampler
}

func newHarness(t *testing.T, procs ...metrics.ProcessReading) *harness {
	t.Helper()
	if len(procs) == 0 {
		procs = testProcesses
	}
	fp := fake.NewFakeProvider()
	fp.SetProcesses(append([]metrics.ProcessReading(nil), procs...)...)
	h := metrics.NewHandle(fp)
	ctrl := NewController(Options{
		Dispatcher:      actions.NewDispatcher(h, logger.Noop()),
		RefreshInterval: 500 * time.Millisecond,
		ProcessLimit:    100,
		ShowGraphs:      true,
		ShowPerCoreCPU:  true,
	})
	hs := &harness{
		t:       t,
		ctrl:    ctrl,
		fake:    fp,
		sampler: metrics.NewSampler(h, metrics.WithCPUSettle(0)),
	}
	hs.refresh()
	fp.Reset()
	return hs
}

func (h *harness) refresh() {
	h.t.Helper()
	snap, err := h.sampler.Sample(context.Background())
	require.NoError(h.t, err)
	h.ctrl.ApplySnapshot(snap)
}

func (h *harness) press(events ...KeyEvent) Outcome {
	var out Outcome
	for _, ev := range events {
		out = h.ctrl.HandleKey(context.Background(), ev)
	}
	return out
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.press(Char(r))
	}
}

func fixture(n int) []metrics.ProcessReading {
	return append([]metrics.ProcessReading(nil), testProcesses[:n]...)
}

func pids(procs []metrics.ProcessInfo) []int32 {
	out := make([]int32, 0, len(procs))
	for _, p := range procs {
		out = append(out, p.PID)
	}
	return out
}

func TestNewController_Defaults(t *testing.T) {
	c := NewController(Options{RefreshInterval: 50 * time.Millisecond})
	st := c.State()

	assert.Equal(t, PanelOverview, st.Panel)
	assert.Equal(t, SearchInactive, st.Search)
	assert.False(t, st.Modal.Open())
	assert.Equal(t, procview.SortCPU, st.Sort)
	assert.Equal(t, 100*time.Millisecond, c.RefreshInterval(), "50ms is raised to the floor")
	assert.Equal(t, 100, st.Settings.ProcessLimit)
	_, ok := c.SelectedProcess()
	assert.False(t, ok)
}

func TestController_ApplySnapshotSortsAndLimits(t *testing.T) {
	procs := make([]metrics.ProcessReading, 0, 15)
	for i := 0; i < 15; i++ {
		procs = append(procs, metrics.ProcessReading{PID: int32(10 + i), Name: "p", User: "u", CPUPercent: float64(i)})
	}
	h := newHarness(t, procs...)
	require.Len(t, h.ctrl.Processes(), 15)

	h.press(Char('5'), Char('3'))
	for i := 0; i < 12; i++ {
		h.press(Char('-'))
	}
	assert.Equal(t, 10, h.ctrl.State().Settings.ProcessLimit)

	got := h.ctrl.Processes()
	require.Len(t, got, 10)
	assert.Equal(t, int32(24), got[0].PID)
	assert.Equal(t, int32(15), got[9].PID)
}

func TestController_QuitKeys(t *testing.T) {
	h := newHarness(t)
	assert.True(t, h.press(Char('q')).Quit)
	assert.True(t, h.press(Ctrl('c')).Quit)

	h = newHarness(t)
	h.press(Char('2'), Char('/'))
	h.typeText("vi")
	assert.True(t, h.press(Char('q')).Quit, "q quits while searching")
	assert.Equal(t, "vi", h.ctrl.State().Query)
	assert.True(t, h.press(Ctrl('c')).Quit, "ctrl+c quits while searching")

	h = newHarness(t)
	h.press(Char('2'), Char('k'))
	require.Equal(t, ModalKillConfirm, h.ctrl.State().Modal.Kind)
	assert.True(t, h.press(Char('q')).Quit, "q quits with a modal open")
	assert.Empty(t, h.fake.SignalCalls)
}

func TestController_ThemeCycle(t *testing.T) {
	h := newHarness(t)
	start := h.ctrl.State().Theme

	h.press(Char('t'))
	assert.Equal(t, ThemeLight, h.ctrl.State().Theme)
	h.press(Char('t'))
	assert.Equal(t, ThemeDracula, h.ctrl.State().Theme)
	h.press(Char('t'))
	assert.Equal(t, start, h.ctrl.State().Theme, "three presses return to the original theme")
}

func TestController_PauseToggle(t *testing.T) {
	h := newHarness(t)
	interval := h.ctrl.RefreshInterval()

	h.press(Char('p'))
	assert.True(t, h.ctrl.Paused())
	h.press(Char('p'))
	assert.False(t, h.ctrl.Paused())
	assert.Equal(t, interval, h.ctrl.RefreshInterval())
}

func TestController_RateWindow(t *testing.T) {
	c := NewController(Options{RefreshInterval: time.Second})
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) metrics.Snapshot {
		return metrics.Snapshot{Timestamp: base.Add(d)}
	}

	c.ApplySnapshot(at(0))
	assert.Zero(t, c.RateWindow(), "first snapshot has nothing to compare against")

	c.ApplySnapshot(at(700 * time.Millisecond))
	assert.Equal(t, 700*time.Millisecond, c.RateWindow(), "gap between timestamps, not the refresh interval")

	c.ApplySnapshot(at(2 * time.Second))
	assert.Equal(t, 1300*time.Millisecond, c.RateWindow())

	c.HandleKey(context.Background(), Char('p'))
	c.HandleKey(context.Background(), Char('p'))
	c.ApplySnapshot(at(30 * time.Second))
	assert.Zero(t, c.RateWindow(), "first snapshot after a pause is skipped")

	c.ApplySnapshot(at(31 * time.Second))
	assert.Equal(t, time.Second, c.RateWindow())

	c.ApplySnapshot(at(31 * time.Second))
	assert.Zero(t, c.RateWindow(), "repeated timestamp")
	c.ApplySnapshot(metrics.Snapshot{})
	assert.Zero(t, c.RateWindow(), "missing timestamp")
}

func TestController_PauseAndThemeIgnoredWhileSearching(t *testing.T) {
	h := newHarness(t)
	h.press(Char('2'), Char('/'), Char('p'), Char('t'))

	st := h.ctrl.State()
	assert.False(t, st.Paused)
	assert.Equal(t, ThemeDark, st.Theme)
	assert.Equal(t, "pt", st.Query)
}

func TestController_SearchKeyOutsideProcesses(t *testing.T) {
	for _, panel := range []Panel{PanelOverview, PanelNetwork, PanelDisk, PanelSettings} {
		t.Run(panel.String(), func(t *testing.T) {
			h := newHarness(t)
			h.press(Char(rune('1' + int(panel))))
			before := h.ctrl.State()

			h.press(Char('/'))

			assert.Equal(t, before, h.ctrl.State())
			assert.Equal(t, SearchInactive, h.ctrl.State().Search)
		})
	}
}

func TestController_SearchFiltersByNameOrUser(t *testing.T) {
	h := newHarness(t)
	h.press(Char('2'), Char('/'))
	h.typeText("chrome")

	st := h.ctrl.State()
	assert.Equal(t, SearchActive, st.Search)
	assert.Equal(t, "chrome", st.Query)
	assert.Equal(t, []int32{100, 200}, pids(h.ctrl.VisibleProcesses()))
	assert.Equal(t, 0, h.ctrl.Cursor())
}

func TestController_SearchEscapeClearsQuery(t *testing.T) {
	h := newHarness(t)
	h.press(Char('2'), Char('/'))
	h.typeText("vim")
	require.Len(t, h.ctrl.VisibleProcesses(), 1)

	h.press(Named(CodeEsc))

	st := h.ctrl.State()
	assert.Equal(t, SearchInactive, st.Search)
	assert.Empty(t, st.Query)
	assert.False(t, st.Modal.Open())
	assert.Equal(t, pids(h.ctrl.Processes()), pids(h.ctrl.VisibleProcesses()))
}

func TestController_SearchBackspace(t *testing.T) {
	h := newHarness(t)
	h.press(Char('2'), Char('/'))
	h.typeText("vimx")
	assert.Empty(t, h.ctrl.VisibleProcesses())

	h.press(Named(CodeBackspace))
	assert.Equal(t, "vim", h.ctrl.State().Query)
	assert.Equal(t, []int32{300}, pids(h.ctrl.VisibleProcesses()))

	h.press(Named(CodeBackspace), Named(CodeBackspace), Named(CodeBackspace), Named(CodeBackspace))
	assert.Empty(t, h.ctrl.State().Query)
	assert.Len(t, h.ctrl.VisibleProcesses(), 4)
}

func TestController_SearchEnterKeepsFilter(t *testing.T) {
	h := newHarness(t)
	h.press(Char('2'), Char('/'))
	h.typeText("bob")
	h.press(Named(CodeEnter))

	st := h.ctrl.State()
	assert.Equal(t, SearchInactive, st.Search)
	assert.Equal(t, "bob", st.Query)
	assert.Equal(t, []int32{300}, pids(h.ctrl.VisibleProcesses()))
	assert.False(t, st.Modal.Open(), "enter while searching does not open details")

	// filter survives a refresh
	h.refresh()
	assert.Equal(t, []int32{300}, pids(h.ctrl.VisibleProcesses()))

	// esc outside search clears the retained filter
	h.press(Named(CodeEsc))
	assert.Empty(t, h.ctrl.State().Query)
	assert.Len(t, h.ctrl.VisibleProcesses(), 4)
}

func TestController_AppendQuery(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.ctrl.AppendQuery("vim"), "ignored outside search")
	assert.Empty(t, h.ctrl.State().Query)

	h.press(Char('2'), Char('/'), Named(CodeDown))
	assert.True(t, h.ctrl.AppendQuery("ch\nrome"))
	assert.Equal(t, "chrome", h.ctrl.State().Query)
	assert.Equal(t, []int32{100, 200}, pids(h.ctrl.VisibleProcesses()))
	assert.Zero(t, h.ctrl.Cursor())
}

func TestShortenPath(t *testing.T) {
	assert.Equal(t, "/usr/bin/vim", shortenPath("/usr/bin/vim", 40))

	long := "/home/zoë/" + strings.Repeat("é", 50) + "/bin/app"
	got := shortenPath(long, 20)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 20, utf8.RuneCountInString(got))
	assert.True(t, strings.HasPrefix(got, "..."))
	assert.True(t, strings.HasSuffix(got, "/bin/app"))
}

func TestController_KillConfirmLongUnicodePath(t *testing.T) {
	proc := metrics.ProcessReading{
		PID: 100, Name: "app", User: "zoë", CPUPercent: 5,
		ExePath: "/opt/" + strings.Repeat("日本", 40) + "/app",
	}
	h := newHarness(t, proc)
	h.press(Char('2'), Char('k'))

	modal := h.ctrl.State().Modal
	require.Equal(t, ModalKillConfirm, modal.Kind)
	assert.True(t, utf8.ValidString(modal.Message))
	assert.Contains(t, modal.Message, "Path:    ...")
	assert.Contains(t, modal.Message, "日本/app")
}

func TestController_SearchStartClearsPreviousQuery(t *testing.T) {
	h := newHarness(t)
	h.press(Char('2'), Char('/'))
	h.typeText("bob")
	h.press(Named(CodeEnter), Char('/'))

	assert.Equal(t, SearchActive, h.ctrl.State().Search)
	assert.Empty(t, h.ctrl.State().Query)
	assert.Len(t, h.ctrl.VisibleProcesses(), 4)
}

func TestController_SearchBlocksActionKeys(t *testing.T) {
	h := newHarness(t)
	h.press(Char('2'), Char('/'), Char('k'), Char('s'), Char('r'))

	assert.False(t, h.ctrl.State().Modal.Open())
	assert.Equal(t, "ksr", h.ctrl.State().Query)
	assert.Empty(t, h.fake.SignalCalls)
	assert.Empty(t, h.fake.StateCalls)
}

func TestController_TabLeavesSearchMode(t *testing.T) {
	h := newHarness(t)
	h.press(Char('2'), Char('/'))
	h.typeText("ba")
	h.press(Named(CodeTab))

	st := h.ctrl.State()
	assert.Equal(t, PanelNetwork, st.Panel)
	assert.Equal(t, SearchInactive, st.Search)
	assert.Equal(t, "ba", st.Query)
}

func TestController_ProcessNavigation(t *testing.T) {
	h := newHarness(t)
	h.press(Char('2'))
	assert.Equal(t, 0, h.ctrl.Cursor())

	h.press(Named(CodeUp))
	assert.Equal(t, 0, h.ctrl.Cursor(), "clamped at the top")

	h.press(Named(CodeDown), Named(CodeDown))
	assert.Equal(t, 2, h.ctrl.Cursor())

	h.press(Named(CodePgDown))
	assert.Equal(t, 3, h.ctrl.Cursor(), "page down clamps to the last row")

	h.press(Named(CodePgUp))
	assert.Equal(t, 0, h.ctrl.Cursor())

	h.press(Named(CodeEnd))
	p, ok := h.ctrl.SelectedProcess()
	require.True(t, ok)
	assert.Equal(t, int32(1), p.PID)

	h.press(Named(CodeHome))
	p, _ = h.ctrl.SelectedProcess()
	assert.Equal(t, int32(100), p.PID)
}

func TestController_NavigationKeysOnOverviewDoNothing(t *testing.T) {
	h := newHarness(t)
	h.press(Named(CodeDown), Named(CodeDown))
	assert.Equal(t, 0, h.ctrl.Cursor())
}

func TestController_CursorClampedAfterSnapshot(t *testing.T) {
	h := newHarness(t)
	h.press(Char('2'), Named(CodeEnd))
	require.Equal(t, 3, h.ctrl.Cursor())

	h.fake.SetProcesses(fixture(2)...)
	h.refresh()
	assert.Equal(t, 1, h.ctrl.Cursor())

	h.fake.SetProcesses()
	h.refresh()
	assert.Equal(t, 0, h.ctrl.Cursor())
	_, ok := h.ctrl.SelectedProcess()
	assert.False(t, ok)

	h.press(Char('k'), Char('s'), Char('r'), Named(CodeEnter))
	assert.False(t, h.ctrl.State().Modal.Open(), "actions on an empty view are no-ops")
	assert.Zero(t, h.fake.Called(fake.MethodSendSignal))
	assert.Zero(t, h.fake.Called(fake.MethodSetProcessState))
}

func TestController_DetailModal(t *testing.T) {
	h := newHarness(t)
	h.press(Char('2'), Named(CodeDown), Named(CodeEnter))

	m := h.ctrl.State().Modal
	assert.Equal(t, ModalDetail, m.Kind)
	assert.Contains(t, m.Message, "bash")
	assert.Contains(t, m.Message, "200")
	assert.Contains(t, m.Message, "chrome")

	h.press(Named(CodeEnter))
	assert.False(t, h.ctrl.State().Modal.Open())
}

func TestController_ModalBlocksNavigation(t *testing.T) {
	h := newHarness(t)
	h.press(Char('2'), Named(CodeEnter))
	require.True(t, h.ctrl.State().Modal.Open())

	h.press(Char('1'), Named(CodeTab), Named(CodeDown), Char('t'), Char('p'), Char('/'))

	st := h.ctrl.State()
	assert.Equal(t, PanelProcesses, st.Panel)
	assert.Equal(t, 0, h.ctrl.Cursor())
	assert.Equal(t, ThemeDark, st.Theme)
	assert.False(t, st.Paused)
	assert.Equal(t, SearchInactive, st.Search)

	h.press(Named(CodeEsc))
	assert.False(t, h.ctrl.State().Modal.Open())
}

func TestController_KillConfirmAndExecute(t *testing.T) {
	h := newHarness(t)
	h.press(Char('2'), Named(CodeDown), Char('k'))

	m := h.ctrl.State().Modal
	require.Equal(t, ModalKillConfirm, m.Kind)
	assert.Equal(t, int32(200), m.TargetPID)
	assert.Contains(t, m.Message, "bash")
	assert.Contains(t, m.Message, "200")
	assert.Empty(t, h.fake.SignalCalls, "nothing is sent before confirmation")

	h.press(Char('y'))

	require.Len(t, h.fake.SignalCalls, 1)
	assert.Equal(t, fake.SignalCall{PID: 200, Signal: metrics.SignalTerminate}, h.fake.SignalCalls[0])

	m = h.ctrl.State().Modal
	assert.Equal(t, ModalDetail, m.Kind)
	assert.False(t, m.Failed)
	assert.Zero(t, m.TargetPID, "pending target is cleared")
	assert.Equal(t, "Sent SIGTERM to bash (PID 200)", m.Message)
}

func TestController_KillUsesConfiguredSignal(t *testing.T) {
	h := newHarness(t)
	h.ctrl.killSignal = "kill"
	h.press(Char('2'), Char('k'), Char('y'))

	require.Len(t, h.fake.SignalCalls, 1)
	assert.Equal(t, metrics.SignalKill, h.fake.SignalCalls[0].Signal)
	assert.Contains(t, h.ctrl.State().Modal.Message, "SIGKILL")
}

func TestController_KillCancel(t *testing.T) {
	for _, ev := range []KeyEvent{Named(CodeEsc), Char('n')} {
		h := newHarness(t)
		h.press(Char('2'), Char('k'))
		require.Equal(t, ModalKillConfirm, h.ctrl.State().Modal.Kind)

		h.press(ev)

		st := h.ctrl.State()
		assert.False(t, st.Modal.Open())
		assert.Zero(t, st.Modal.TargetPID)
		assert.Empty(t, h.fake.SignalCalls)
	}
}

func TestController_KillSystemProcessRefused(t *testing.T) {
	h := newHarness(t)
	h.press(Char('2'), Named(CodeEnd))
	p, _ := h.ctrl.SelectedProcess()
	require.Equal(t, int32(1), p.PID)

	h.press(Char('k'), Char('y'))

	assert.Zero(t, h.fake.Called(fake.MethodSendSignal), "provider is never invoked")
	m := h.ctrl.State().Modal
	assert.Equal(t, ModalDetail, m.Kind)
	assert.True(t, m.Failed)
	assert.Equal(t, "Refused", m.Title)
	assert.Contains(t, m.Message, "system process")
}

func TestController_SuspendResume(t *testing.T) {
	h := newHarness(t)
	h.press(Char('2'), Char('s'))

	require.Len(t, h.fake.StateCalls, 1)
	assert.Equal(t, fake.StateCall{PID: 100, State: metrics.StateStop}, h.fake.StateCalls[0])
	m := h.ctrl.State().Modal
	assert.Equal(t, ModalDetail, m.Kind)
	assert.Equal(t, "Suspended chrome_helper (PID 100)", m.Message)

	h.press(Named(CodeEsc), Char('r'))
	require.Len(t, h.fake.StateCalls, 2)
	assert.Equal(t, metrics.StateContinue, h.fake.StateCalls[1].State)
	assert.Equal(t, "Resumed chrome_helper (PID 100)", h.ctrl.State().Modal.Message)
}

func TestController_ActionErrorsAreDistinguished(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(h *harness)
		key    []KeyEvent
		title  string
		detail string
	}{
		{
			name:   "unsupported",
			setup:  func(h *harness) { h.fake.StateUnsupported = true },
			key:    []KeyEvent{Char('s')},
			title:  "Not Supported",
			detail: "not supported",
		},
		{
			name: "permission",
			setup: func(h *harness) {
				h.fake.PIDErrors[100] = syserrors.New(syserrors.ErrPermission, "Permission denied for process 100", "")
			},
			key:    []KeyEvent{Char('k'), Char('y')},
			title:  "Permission Denied",
			detail: "Permission denied",
		},
		{
			name:   "not found",
			setup:  func(h *harness) { h.fake.SetProcesses(fixture(len(testProcesses))[1:]...) },
			key:    []KeyEvent{Char('k'), Char('y')},
			title:  "Process Not Found",
			detail: "no such process",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.press(Char('2'))
			tt.setup(h)

			h.press(tt.key...)

			m := h.ctrl.State().Modal
			assert.Equal(t, ModalDetail, m.Kind)
			assert.True(t, m.Failed)
			assert.Equal(t, tt.title, m.Title)
			assert.Contains(t, m.Message, tt.detail)
		})
	}
}

func TestController_NoDispatcher(t *testing.T) {
	c := NewController(Options{})
	c.ApplySnapshot(metrics.Snapshot{Processes: []metrics.ProcessInfo{{PID: 50, Name: "x"}}})
	c.HandleKey(context.Background(), Char('2'))
	c.HandleKey(context.Background(), Char('s'))

	m := c.State().Modal
	assert.Equal(t, ModalDetail, m.Kind)
	assert.True(t, m.Failed)
}

func TestController_PanelSwitching(t *testing.T) {
	h := newHarness(t)

	for i, want := range []Panel{PanelProcesses, PanelNetwork, PanelDisk, PanelSettings, PanelOverview} {
		h.press(Named(CodeTab))
		assert.Equal(t, want, h.ctrl.State().Panel, "tab #%d", i+1)
	}

	h.press(Named(CodeBackTab))
	assert.Equal(t, PanelSettings, h.ctrl.State().Panel)

	h.press(Named(CodeTab), Char('4'))
	assert.Equal(t, PanelDisk, h.ctrl.State().Panel)
}

func TestController_SettingsDigitsSetCategory(t *testing.T) {
	h := newHarness(t)
	h.press(Char('5'))
	st := h.ctrl.State()
	require.Equal(t, PanelSettings, st.Panel)
	assert.Equal(t, CategoryAppearance, st.Settings.Category)

	h.press(Char('3'))
	st = h.ctrl.State()
	assert.Equal(t, PanelSettings, st.Panel, "digits pick a category on the settings panel")
	assert.Equal(t, CategoryDisplay, st.Settings.Category)

	h.press(Named(CodeUp))
	assert.Equal(t, CategoryPerformance, h.ctrl.State().Settings.Category)
	h.press(Named(CodeUp), Named(CodeUp))
	assert.Equal(t, CategoryAppearance, h.ctrl.State().Settings.Category)

	for i := 0; i < 10; i++ {
		h.press(Named(CodeDown))
	}
	assert.Equal(t, CategoryAbout, h.ctrl.State().Settings.Category)

	// leaving and re-entering resets the category
	h.press(Named(CodeTab), Char('5'))
	assert.Equal(t, CategoryAppearance, h.ctrl.State().Settings.Category)
}

func TestController_SettingsAdjust(t *testing.T) {
	h := newHarness(t)
	h.press(Char('5'), Char('2'))

	h.press(Char('+'))
	assert.Equal(t, 600*time.Millisecond, h.ctrl.RefreshInterval())
	for i := 0; i < 20; i++ {
		h.press(Char('-'))
	}
	assert.Equal(t, 100*time.Millisecond, h.ctrl.RefreshInterval(), "floor is 100ms")

	h.press(Char('3'))
	h.press(Char('+'))
	assert.Equal(t, 110, h.ctrl.State().Settings.ProcessLimit)
	for i := 0; i < 200; i++ {
		h.press(Char('+'))
	}
	assert.Equal(t, 1000, h.ctrl.State().Settings.ProcessLimit)

	h.press(Char('g'), Char('c'))
	st := h.ctrl.State()
	assert.False(t, st.Settings.ShowGraphs)
	assert.False(t, st.Settings.ShowPerCoreCPU)

	h.press(Char('1'), Named(CodeRight))
	assert.Equal(t, ThemeLight, h.ctrl.State().Theme)
	h.press(Named(CodeLeft), Named(CodeLeft))
	assert.Equal(t, ThemeDracula, h.ctrl.State().Theme)
}

func TestController_CycleSort(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, []int32{100, 200, 300, 1}, pids(h.ctrl.Processes()))

	h.press(Char('o'))
	assert.Equal(t, procview.SortMemory, h.ctrl.State().Sort)
	assert.Equal(t, []int32{100, 300, 200, 1}, pids(h.ctrl.Processes()))
}

func TestController_ListScroll(t *testing.T) {
	h := newHarness(t)
	h.fake.Network = []metrics.NetworkReading{{Name: "eth0"}, {Name: "eth1"}, {Name: "wlan0"}}
	h.refresh()

	h.press(Char('3'))
	h.press(Named(CodeDown), Named(CodeDown), Named(CodeDown), Named(CodeDown))
	assert.Equal(t, 2, h.ctrl.State().Scroll[PanelNetwork])

	h.press(Named(CodeHome))
	assert.Equal(t, 0, h.ctrl.State().Scroll[PanelNetwork])
	h.press(Named(CodeEnd))
	assert.Equal(t, 2, h.ctrl.State().Scroll[PanelNetwork])

	h.press(Named(CodeTab))
	assert.Equal(t, PanelDisk, h.ctrl.State().Panel)
	assert.Zero(t, h.ctrl.State().Scroll[PanelDisk], "switching panels resets scroll")
}

func TestController_ScrollIsPerPanel(t *testing.T) {
	h := newHarness(t)
	h.fake.Network = []metrics.NetworkReading{{Name: "eth0"}, {Name: "eth1"}, {Name: "wlan0"}}
	h.fake.Disks = []metrics.DiskReading{
		{Name: "sda1", MountPoint: "/"},
		{Name: "sdb1", MountPoint: "/data"},
	}
	h.refresh()

	h.press(Char('3'), Named(CodeEnd))
	require.Equal(t, 2, h.ctrl.State().Scroll[PanelNetwork])

	h.press(Char('4'), Named(CodeDown))
	st := h.ctrl.State()
	assert.Equal(t, 1, st.Scroll[PanelDisk])
	assert.Equal(t, 2, st.Scroll[PanelNetwork], "disk scrolling leaves the network offset alone")

	h.press(Named(CodeDown), Named(CodeDown))
	assert.Equal(t, 1, h.ctrl.State().Scroll[PanelDisk], "clamped to the disk row count")

	h.fake.Network = h.fake.Network[:1]
	h.refresh()
	st = h.ctrl.State()
	assert.Zero(t, st.Scroll[PanelNetwork], "shrinking list clamps its own offset")
	assert.Equal(t, 1, st.Scroll[PanelDisk])
}

func TestController_Export(t *testing.T) {
	tests := map[rune]string{'e': "json", 'x': "csv", 'h': "html"}
	for key, format := range tests {
		h := newHarness(t)
		out := h.press(Char(key))
		require.NotNil(t, out.Export, "key %q", key)
		assert.Equal(t, format, out.Export.Format)
		assert.Equal(t, h.ctrl.Snapshot().Timestamp, out.Export.Snapshot.Timestamp)
	}

	h := newHarness(t)
	h.ctrl.ShowExportResult("json", "/tmp/systrix_export_20240101_120000.json", nil)
	m := h.ctrl.State().Modal
	assert.Equal(t, ModalDetail, m.Kind)
	assert.False(t, m.Failed)
	assert.Contains(t, m.Message, "/tmp/systrix_export_20240101_120000.json")

	h.press(Named(CodeEsc))
	h.ctrl.ShowExportResult("csv", "", syserrors.New(syserrors.ErrExport, "Cannot write export", "Check the directory"))
	m = h.ctrl.State().Modal
	assert.True(t, m.Failed)
	assert.Contains(t, m.Message, "Cannot write export")
	assert.Contains(t, m.Message, "Check the directory")
}

func TestController_ExportKeysIgnoredWhileSearching(t *testing.T) {
	h := newHarness(t)
	h.press(Char('2'), Char('/'))
	out := h.press(Char('e'))
	assert.Nil(t, out.Export)
	assert.Equal(t, "e", h.ctrl.State().Query)
}

func TestController_AcquisitionFailedKeepsSnapshot(t *testing.T) {
	h := newHarness(t)
	before := h.ctrl.Snapshot()

	h.fake.SetFail(fake.MethodRefreshMemory, nil)
	_, err := h.sampler.Sample(context.Background())
	require.Error(t, err)
	h.ctrl.AcquisitionFailed(err)

	assert.Equal(t, before, h.ctrl.Snapshot())
	assert.True(t, syserrors.IsCode(h.ctrl.LastError(), syserrors.ErrAcquire))

	h.fake.ClearFail(fake.MethodRefreshMemory)
	h.refresh()
	assert.NoError(t, h.ctrl.LastError())
}

func TestController_HelpOverlay(t *testing.T) {
	h := newHarness(t)
	h.press(Char('?'))
	assert.True(t, h.ctrl.State().ShowHelp)

	h.press(Char('t'), Char('2'))
	st := h.ctrl.State()
	assert.Equal(t, ThemeDark, st.Theme, "keys are swallowed while help is open")
	assert.Equal(t, PanelOverview, st.Panel)

	h.press(Named(CodeEsc))
	assert.False(t, h.ctrl.State().ShowHelp)
}

func TestController_RandomKeysKeepInvariants(t *testing.T) {
	keys := []KeyEvent{
		Char('1'), Char('2'), Char('3'), Char('5'), Char('/'), Char('c'), Char('h'), Char('r'),
		Char('o'), Char('k'), Char('y'), Char('n'), Char('s'), Char('t'), Char('p'), Char('+'),
		Named(CodeUp), Named(CodeDown), Named(CodePgDown), Named(CodeEnd), Named(CodeHome),
		Named(CodeEnter), Named(CodeEsc), Named(CodeBackspace), Named(CodeTab),
	}
	rng := rand.New(rand.NewSource(7))
	h := newHarness(t)

	for i := 0; i < 2000; i++ {
		ev := keys[rng.Intn(len(keys))]
		out := h.press(ev)
		assert.False(t, out.Quit)

		if i%50 == 0 {
			n := rng.Intn(len(testProcesses) + 1)
			h.fake.SetProcesses(fixture(n)...)
			h.refresh()
		}

		st := h.ctrl.State()
		visible := len(h.ctrl.VisibleProcesses())
		limit := visible
		if limit < 1 {
			limit = 1
		}
		require.GreaterOrEqual(t, h.ctrl.Cursor(), 0)
		require.Less(t, h.ctrl.Cursor(), limit)
		if st.Modal.Open() {
			require.Equal(t, SearchInactive, st.Search, "a modal never coexists with search input")
		}
		require.GreaterOrEqual(t, h.ctrl.RefreshInterval(), 100*time.Millisecond)
		require.True(t, st.Settings.Category >= CategoryAppearance && st.Settings.Category <= CategoryAbout)
	}
}
