package dashboard

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/systrix/internal/logger"
	"github.com/rileyhilliard/systrix/internal/metrics"
)

// Sampler produces snapshots. *metrics.Sampler satisfies it.
type Sampler interface {
	Sample(ctx context.Context) (metrics.Snapshot, error)
}

// Exporter writes snap in format and returns the artifact path.
type Exporter func(snap metrics.Snapshot, format string) (string, error)

// Model is the Bubble Tea model for the dashboard. It owns the tick loop
// and hands every key to the Controller.
type Model struct {
	ctx        context.Context
	ctrl       *Controller
	sampler    Sampler
	exporter   Exporter
	history    *History
	thresholds Thresholds
	log        logger.Logger

	keys  keyMap
	help  help.Model
	theme Theme

	// Modal body viewport, so long details can scroll.
	modal    viewport.Model
	modalKey string

	width     int
	height    int
	acquiring bool
	quitting  bool
}

// tickMsg signals that the refresh interval elapsed.
type tickMsg time.Time

// snapshotMsg carries a finished acquisition.
type snapshotMsg struct {
	snap metrics.Snapshot
}

// acquireErrMsg carries a failed acquisition.
type acquireErrMsg struct {
	err error
}

// exportDoneMsg carries the result of an export.
type exportDoneMsg struct {
	format string
	path   string
	err    error
}

// ModelOptions wires a Model.
type ModelOptions struct {
	Controller *Controller
	Sampler    Sampler
	Exporter   Exporter
	Thresholds Thresholds
	Logger     logger.Logger
}

// NewModel creates a dashboard model. The controller should already hold the
// first snapshot.
func NewModel(ctx context.Context, opts ModelOptions) Model {
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}
	theme := opts.Controller.State().Theme
	m := Model{
		ctx:        ctx,
		ctrl:       opts.Controller,
		sampler:    opts.Sampler,
		exporter:   opts.Exporter,
		history:    NewHistory(DefaultHistorySize),
		thresholds: opts.Thresholds,
		log:        log,
		keys:       newKeyMap(),
		help:       newHelp(theme),
		theme:      theme,
		modal:      viewport.New(40, 8),
		width:      80,
		height:     24,
	}
	if snap := opts.Controller.Snapshot(); !snap.Timestamp.IsZero() {
		m.history.Push(snap, opts.Controller.RateWindow())
	}
	return m
}

// Controller exposes the underlying state machine.
func (m Model) Controller() *Controller {
	return m.ctrl
}

// Init schedules the first tick.
func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.modalKey = ""
		m.syncModal()
		return m, nil

	case tickMsg:
		if m.ctrl.Paused() || m.acquiring {
			return m, m.tickCmd()
		}
		m.acquiring = true
		return m, m.acquireCmd()

	case snapshotMsg:
		m.acquiring = false
		m.ctrl.ApplySnapshot(msg.snap)
		m.history.Push(msg.snap, m.ctrl.RateWindow())
		m.syncModal()
		return m, m.tickCmd()

	case acquireErrMsg:
		m.acquiring = false
		m.ctrl.AcquisitionFailed(msg.err)
		return m, m.tickCmd()

	case exportDoneMsg:
		m.ctrl.ShowExportResult(msg.format, msg.path, msg.err)
		m.syncModal()
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if st := m.ctrl.State(); st.Modal.Kind == ModalDetail {
		switch msg.Type {
		case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.modal, cmd = m.modal.Update(msg)
			return m, cmd
		}
	}

	// Pasted text only goes into the search query, never through key handling.
	if msg.Paste {
		if m.ctrl.AppendQuery(string(msg.Runes)) {
			m.syncModal()
		}
		return m, nil
	}

	var cmds []tea.Cmd
	for _, ev := range keyEvents(msg) {
		out := m.ctrl.HandleKey(m.ctx, ev)
		if out.Quit {
			m.quitting = true
			return m, tea.Quit
		}
		if out.Export != nil {
			cmds = append(cmds, m.exportCmd(*out.Export))
		}
	}

	if t := m.ctrl.State().Theme; t != m.theme {
		m.theme = t
		m.help = newHelp(t)
	}
	m.syncModal()
	return m, tea.Batch(cmds...)
}

// keyEvents splits pasted text into one event per rune.
func keyEvents(msg tea.KeyMsg) []KeyEvent {
	if msg.Type == tea.KeyRunes && len(msg.Runes) > 1 {
		events := make([]KeyEvent, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			events = append(events, Char(r))
		}
		return events
	}
	return []KeyEvent{KeyFromTea(msg)}
}

// syncModal loads the modal message into the viewport when it changes.
func (m *Model) syncModal() {
	st := m.ctrl.State()
	if !st.Modal.Open() {
		m.modalKey = ""
		return
	}
	key := st.Modal.Title + "\x00" + st.Modal.Message
	if key == m.modalKey {
		return
	}
	m.modalKey = key

	w, h := modalSize(m.width, m.height)
	body := lipgloss.NewStyle().Width(w - 4).Render(st.Modal.Message)
	lines := strings.Count(body, "\n") + 1
	maxLines := h - 6
	if maxLines < 3 {
		maxLines = 3
	}
	if lines > maxLines {
		lines = maxLines
	}
	m.modal.Width = w - 4
	m.modal.Height = lines
	m.modal.SetContent(body)
	m.modal.GotoTop()
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	body := ""
	if m.ctrl.State().Modal.Open() && m.modalKey != "" {
		body = m.modal.View()
	}
	return newRenderer(m.ctrl, m.history, m.thresholds, m.help, m.keys, body, m.width, m.height).render()
}

// tickCmd sends a tick after the refresh interval.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.ctrl.RefreshInterval(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// acquireCmd samples once. Only one runs at a time; the next tick is
// scheduled when it reports back.
func (m Model) acquireCmd() tea.Cmd {
	sampler := m.sampler
	ctx := m.ctx
	return func() tea.Msg {
		snap, err := sampler.Sample(ctx)
		if err != nil {
			return acquireErrMsg{err: err}
		}
		return snapshotMsg{snap: snap}
	}
}

func (m Model) exportCmd(req ExportRequest) tea.Cmd {
	exporter := m.exporter
	log := m.log
	return func() tea.Msg {
		if exporter == nil {
			return exportDoneMsg{format: req.Format, err: errExportUnavailable}
		}
		path, err := exporter(req.Snapshot, req.Format)
		if err != nil {
			log.Warn("export %s failed: %v", req.Format, err)
		} else {
			log.Info("exported %s to %s", req.Format, path)
		}
		return exportDoneMsg{format: req.Format, path: path, err: err}
	}
}
