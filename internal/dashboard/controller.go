package dashboard

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/rileyhilliard/systrix/internal/actions"
	"github.com/rileyhilliard/systrix/internal/config"
	"github.com/rileyhilliard/systrix/internal/errors"
	"github.com/rileyhilliard/systrix/internal/logger"
	"github.com/rileyhilliard/systrix/internal/metrics"
	"github.com/rileyhilliard/systrix/internal/procview"
)

const (
	pageSize            = 10
	refreshStep         = 100 * time.Millisecond
	processLimitStep    = 10
	maxExePathInConfirm = 40
)

// Options configures a Controller.
type Options struct {
	Dispatcher      *actions.Dispatcher
	Logger          logger.Logger
	KillSignal      string
	Theme           Theme
	Sort            procview.SortKey
	RefreshInterval time.Duration
	ProcessLimit    int
	ShowGraphs      bool
	ShowPerCoreCPU  bool
}

// OptionsFromConfig fills Options from a loaded config.
func OptionsFromConfig(cfg *config.Config, d *actions.Dispatcher, log logger.Logger) Options {
	sortKey, ok := procview.ParseSortKey(cfg.Sort)
	if !ok {
		sortKey = procview.SortCPU
	}
	return Options{
		Dispatcher:      d,
		Logger:          log,
		KillSignal:      cfg.KillSignal,
		Theme:           ParseTheme(cfg.Theme),
		Sort:            sortKey,
		RefreshInterval: cfg.RefreshInterval,
		ProcessLimit:    cfg.ProcessLimit,
		ShowGraphs:      cfg.ShowGraphs,
		ShowPerCoreCPU:  cfg.ShowPerCoreCPU,
	}
}

// ExportRequest asks the caller to write the current snapshot in Format.
type ExportRequest struct {
	Format   string
	Snapshot metrics.Snapshot
}

// Outcome is what the caller must do after a key.
type Outcome struct {
	Quit   bool
	Export *ExportRequest
}

// Controller is the dashboard state machine. It is the only writer of
// State and is not safe for concurrent use.
type Controller struct {
	state      State
	snapshot   metrics.Snapshot
	processes  []metrics.ProcessInfo
	view       procview.View
	dispatcher *actions.Dispatcher
	killSignal string
	log        logger.Logger
	lastError  error

	// rateWindow is the time covered by the current snapshot's network
	// deltas. Zero when unknown.
	rateWindow   time.Duration
	prevSampleAt time.Time
	skipRate     bool
}

// NewController creates a controller with no snapshot.
func NewController(opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}
	sortKey := opts.Sort
	if sortKey == "" {
		sortKey = procview.SortCPU
	}
	killSignal := opts.KillSignal
	if killSignal == "" {
		killSignal = "SIGTERM"
	}
	limit := opts.ProcessLimit
	if limit == 0 {
		limit = config.DefaultProcessLimit
	}
	return &Controller{
		state: State{
			Theme: opts.Theme,
			Sort:  sortKey,
			Settings: Settings{
				RefreshInterval: config.ClampRefreshInterval(opts.RefreshInterval),
				ProcessLimit:    config.ClampProcessLimit(limit),
				ShowGraphs:      opts.ShowGraphs,
				ShowPerCoreCPU:  opts.ShowPerCoreCPU,
			},
		},
		dispatcher: opts.Dispatcher,
		killSignal: killSignal,
		log:        log,
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state
}

// Snapshot is the latest applied snapshot.
func (c *Controller) Snapshot() metrics.Snapshot {
	return c.snapshot
}

// Paused reports whether acquisition is suspended.
func (c *Controller) Paused() bool {
	return c.state.Paused
}

// RefreshInterval is the tick length, never below the 100ms floor.
func (c *Controller) RefreshInterval() time.Duration {
	return config.ClampRefreshInterval(c.state.Settings.RefreshInterval)
}

// RateWindow is the gap between the current snapshot and the one before
// it. It is zero for the first snapshot and for the first one after a
// pause, when the network deltas can't be turned into a rate.
func (c *Controller) RateWindow() time.Duration {
	return c.rateWindow
}

// LastError is the most recent acquisition failure, cleared by the next
// successful snapshot.
func (c *Controller) LastError() error {
	return c.lastError
}

// Processes is the sorted and limited process list the view indexes into.
func (c *Controller) Processes() []metrics.ProcessInfo {
	return c.processes
}

// VisibleProcesses returns the filtered rows in display order.
func (c *Controller) VisibleProcesses() []metrics.ProcessInfo {
	indices := c.view.Indices()
	out := make([]metrics.ProcessInfo, 0, len(indices))
	for _, i := range indices {
		out = append(out, c.processes[i])
	}
	return out
}

// Cursor is the selected row within VisibleProcesses.
func (c *Controller) Cursor() int {
	return c.view.Cursor()
}

// SelectedProcess returns the process under the cursor.
func (c *Controller) SelectedProcess() (metrics.ProcessInfo, bool) {
	i, ok := c.view.Selected()
	if !ok {
		return metrics.ProcessInfo{}, false
	}
	return c.processes[i], true
}

// ApplySnapshot replaces the snapshot wholesale and rebuilds the process view.
func (c *Controller) ApplySnapshot(s metrics.Snapshot) {
	c.rateWindow = 0
	if !c.skipRate && !c.prevSampleAt.IsZero() && !s.Timestamp.IsZero() {
		if gap := s.Timestamp.Sub(c.prevSampleAt); gap > 0 {
			c.rateWindow = gap
		}
	}
	c.prevSampleAt = s.Timestamp
	c.skipRate = false

	c.snapshot = s
	c.lastError = nil
	c.rebuildProcesses()
}

// AcquisitionFailed records a failed tick. The previous snapshot stays.
func (c *Controller) AcquisitionFailed(err error) {
	if err == nil {
		return
	}
	c.lastError = err
	c.log.Warn("keeping previous snapshot: %s", errors.Describe(err))
}

// ShowExportResult opens a detail modal with the written path or the error.
func (c *Controller) ShowExportResult(format, path string, err error) {
	if err != nil {
		c.state.Modal = Modal{
			Kind:    ModalDetail,
			Title:   "Export Failed",
			Message: describeFailure(err),
			Failed:  true,
		}
		return
	}
	c.state.Modal = Modal{
		Kind:    ModalDetail,
		Title:   "Export Complete",
		Message: fmt.Sprintf("Exported %s report to:\n\n%s", strings.ToUpper(format), path),
	}
}

func (c *Controller) rebuildProcesses() {
	procs := make([]metrics.ProcessInfo, len(c.snapshot.Processes))
	copy(procs, c.snapshot.Processes)
	procview.SortProcesses(procs, c.state.Sort)
	c.processes = procview.Limit(procs, c.state.Settings.ProcessLimit)
	c.view.Recompute(c.processes, c.state.Query)
	c.clampScroll()
}

// HandleKey applies one key press.
func (c *Controller) HandleKey(ctx context.Context, ev KeyEvent) Outcome {
	if ev.IsInterrupt() {
		return Outcome{Quit: true}
	}
	if c.state.Search == SearchActive {
		return c.handleSearchKey(ev)
	}
	if c.state.Modal.Open() {
		return c.handleModalKey(ctx, ev)
	}
	if c.state.ShowHelp {
		switch {
		case ev.IsRune(KeyQuit):
			return Outcome{Quit: true}
		case ev.IsRune(KeyToggleHelp), ev.Code == CodeEsc:
			c.state.ShowHelp = false
		}
		return Outcome{}
	}
	return c.handleNormalKey(ctx, ev)
}

func (c *Controller) handleSearchKey(ev KeyEvent) Outcome {
	if ev.IsRune(KeyQuit) {
		return Outcome{Quit: true}
	}
	switch ev.Code {
	case CodeEsc:
		c.state.Search = SearchInactive
		c.state.Query = ""
		c.view.Recompute(c.processes, "")
		return Outcome{}
	case CodeEnter:
		c.state.Search = SearchInactive
		return Outcome{}
	case CodeBackspace:
		if q := []rune(c.state.Query); len(q) > 0 {
			c.state.Query = string(q[:len(q)-1])
		}
		c.view.Recompute(c.processes, c.state.Query)
		return Outcome{}
	case CodeTab:
		c.setPanel(c.state.Panel.Next())
		return Outcome{}
	case CodeBackTab:
		c.setPanel(c.state.Panel.Prev())
		return Outcome{}
	}
	if ev.Printable() {
		c.state.Query += string(ev.Rune)
		c.view.Recompute(c.processes, c.state.Query)
		c.view.ResetCursor()
		return Outcome{}
	}
	c.navigateProcesses(ev)
	return Outcome{}
}

// AppendQuery adds pasted text to the search query. It does nothing and
// returns false unless search is active. Control characters are dropped.
func (c *Controller) AppendQuery(text string) bool {
	if c.state.Search != SearchActive {
		return false
	}
	var sb strings.Builder
	for _, r := range text {
		if unicode.IsPrint(r) {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return true
	}
	c.state.Query += sb.String()
	c.view.Recompute(c.processes, c.state.Query)
	c.view.ResetCursor()
	return true
}

func (c *Controller) handleModalKey(ctx context.Context, ev KeyEvent) Outcome {
	switch {
	case ev.IsRune(KeyQuit):
		return Outcome{Quit: true}
	case ev.Code == CodeEsc:
		c.state.Modal = Modal{}
	case c.state.Modal.Kind == ModalKillConfirm && ev.IsRune(KeyCancel):
		c.state.Modal = Modal{}
	case c.state.Modal.Kind == ModalKillConfirm && (ev.IsRune(KeyConfirm) || ev.IsRune('Y')):
		c.confirmKill(ctx)
	case c.state.Modal.Kind == ModalDetail && ev.Code == CodeEnter:
		c.state.Modal = Modal{}
	}
	return Outcome{}
}

func (c *Controller) handleNormalKey(ctx context.Context, ev KeyEvent) Outcome {
	if ev.Code == CodeRune && ev.Mods == 0 && ev.Rune >= '1' && ev.Rune <= '5' {
		n := int(ev.Rune - '1')
		if c.state.Panel == PanelSettings {
			c.state.Settings.Category = clampCategory(n)
		} else {
			c.setPanel(Panel(n))
		}
		return Outcome{}
	}

	switch ev.Code {
	case CodeTab:
		c.setPanel(c.state.Panel.Next())
		return Outcome{}
	case CodeBackTab:
		c.setPanel(c.state.Panel.Prev())
		return Outcome{}
	case CodeEsc:
		if c.state.Query != "" {
			c.state.Query = ""
			c.view.Recompute(c.processes, "")
		}
		return Outcome{}
	}

	if ev.Code == CodeRune && ev.Mods == 0 {
		switch ev.Rune {
		case KeyQuit:
			return Outcome{Quit: true}
		case KeyToggleHelp:
			c.state.ShowHelp = true
			return Outcome{}
		case KeyPause:
			c.state.Paused = !c.state.Paused
			// The next deltas span the pause.
			c.skipRate = true
			return Outcome{}
		case KeyTheme:
			c.state.Theme = c.state.Theme.Next()
			return Outcome{}
		case KeyCycleSort:
			c.state.Sort = c.state.Sort.Next()
			c.rebuildProcesses()
			return Outcome{}
		case KeyExportJSON:
			return c.export("json")
		case KeyExportCSV:
			return c.export("csv")
		case KeyExportHTML:
			return c.export("html")
		}
	}

	switch c.state.Panel {
	case PanelProcesses:
		c.handleProcessesKey(ctx, ev)
	case PanelNetwork, PanelDisk:
		c.scrollList(ev)
	case PanelSettings:
		c.handleSettingsKey(ev)
	}
	return Outcome{}
}

func (c *Controller) handleProcessesKey(ctx context.Context, ev KeyEvent) {
	if c.navigateProcesses(ev) {
		return
	}
	if ev.Code == CodeEnter {
		c.openDetail()
		return
	}
	if ev.Code != CodeRune || ev.Mods != 0 {
		return
	}
	switch ev.Rune {
	case KeySearch:
		c.state.Search = SearchActive
		c.state.Query = ""
		c.view.Recompute(c.processes, "")
	case KeyKill:
		c.openKillConfirm()
	case KeySuspend:
		c.runStateAction(ctx, actions.Suspend)
	case KeyResume:
		c.runStateAction(ctx, actions.Resume)
	}
}

// navigateProcesses moves the cursor and reports whether ev was a movement key.
func (c *Controller) navigateProcesses(ev KeyEvent) bool {
	switch ev.Code {
	case CodeUp:
		c.view.Move(-1)
	case CodeDown:
		c.view.Move(1)
	case CodePgUp:
		c.view.Move(-pageSize)
	case CodePgDown:
		c.view.Move(pageSize)
	case CodeHome:
		c.view.Home()
	case CodeEnd:
		c.view.End()
	default:
		return false
	}
	return true
}

func (c *Controller) scrollList(ev KeyEvent) {
	scroll := &c.state.Scroll[c.state.Panel]
	switch ev.Code {
	case CodeUp:
		*scroll--
	case CodeDown:
		*scroll++
	case CodePgUp:
		*scroll -= pageSize
	case CodePgDown:
		*scroll += pageSize
	case CodeHome:
		*scroll = 0
	case CodeEnd:
		*scroll = c.scrollableRows(c.state.Panel) - 1
	}
	c.clampScroll()
}

func (c *Controller) scrollableRows(p Panel) int {
	switch p {
	case PanelNetwork:
		return len(c.snapshot.Network.Interfaces)
	case PanelDisk:
		return len(c.snapshot.Disks)
	default:
		return 0
	}
}

// clampScroll keeps every panel's offset inside its current row count.
func (c *Controller) clampScroll() {
	for p := range c.state.Scroll {
		maxScroll := c.scrollableRows(Panel(p)) - 1
		if maxScroll < 0 {
			maxScroll = 0
		}
		c.state.Scroll[p] = min(max(c.state.Scroll[p], 0), maxScroll)
	}
}

func (c *Controller) handleSettingsKey(ev KeyEvent) {
	s := &c.state.Settings
	switch {
	case ev.Code == CodeUp:
		s.Category = clampCategory(int(s.Category) - 1)
	case ev.Code == CodeDown:
		s.Category = clampCategory(int(s.Category) + 1)
	case ev.IsRune(KeyIncrease), ev.IsRune('='), ev.Code == CodeRight:
		c.adjustSetting(1)
	case ev.IsRune(KeyDecrease), ev.IsRune('_'), ev.Code == CodeLeft:
		c.adjustSetting(-1)
	case ev.IsRune(KeyGraphs):
		s.ShowGraphs = !s.ShowGraphs
	case ev.IsRune(KeyPerCore):
		s.ShowPerCoreCPU = !s.ShowPerCoreCPU
	}
}

func (c *Controller) adjustSetting(dir int) {
	s := &c.state.Settings
	switch s.Category {
	case CategoryAppearance:
		if dir > 0 {
			c.state.Theme = c.state.Theme.Next()
		} else {
			c.state.Theme = c.state.Theme.Prev()
		}
	case CategoryPerformance:
		s.RefreshInterval = config.ClampRefreshInterval(s.RefreshInterval + time.Duration(dir)*refreshStep)
	case CategoryDisplay:
		s.ProcessLimit = config.ClampProcessLimit(s.ProcessLimit + dir*processLimitStep)
		c.rebuildProcesses()
	}
}

func (c *Controller) setPanel(p Panel) {
	if p == c.state.Panel {
		return
	}
	if c.state.Panel == PanelProcesses && c.state.Search == SearchActive {
		c.state.Search = SearchInactive
	}
	c.state.Panel = p
	c.state.Scroll[p] = 0
	if p == PanelSettings {
		c.state.Settings.Category = CategoryAppearance
	}
}

func (c *Controller) export(format string) Outcome {
	return Outcome{Export: &ExportRequest{Format: format, Snapshot: c.snapshot}}
}

func (c *Controller) openDetail() {
	p, ok := c.SelectedProcess()
	if !ok {
		return
	}
	c.state.Modal = Modal{
		Kind:    ModalDetail,
		Title:   "Process Details",
		Message: FormatProcessDetail(p),
	}
}

func (c *Controller) openKillConfirm() {
	p, ok := c.SelectedProcess()
	if !ok {
		return
	}
	exe := shortenPath(p.ExePath, maxExePathInConfirm)
	msg := fmt.Sprintf("You are about to send %s to:\n\n"+
		"Name:    %s\n"+
		"PID:     %d\n"+
		"User:    %s\n"+
		"CPU:     %.1f%%\n"+
		"Memory:  %.1f%%\n"+
		"Path:    %s\n\n"+
		"Press [y] to kill, [n] or [esc] to cancel",
		actions.ParseSignal(c.killSignal), p.Name, p.PID, p.User, p.CPUPercent, p.MemoryPercent, exe)
	c.state.Modal = Modal{
		Kind:      ModalKillConfirm,
		Title:     "Kill Process",
		Message:   msg,
		TargetPID: p.PID,
	}
}

// shortenPath keeps the last limit-3 runes of path behind "...".
func shortenPath(path string, limit int) string {
	r := []rune(path)
	if len(r) <= limit {
		return path
	}
	return "..." + string(r[len(r)-(limit-3):])
}

func (c *Controller) confirmKill(ctx context.Context) {
	pid := c.state.Modal.TargetPID
	c.state.Modal = Modal{}
	c.dispatch(ctx, actions.Request{
		Kind:   actions.Kill,
		PID:    pid,
		Name:   c.nameOf(pid),
		Signal: c.killSignal,
	})
}

func (c *Controller) runStateAction(ctx context.Context, kind actions.Kind) {
	p, ok := c.SelectedProcess()
	if !ok {
		return
	}
	c.dispatch(ctx, actions.Request{Kind: kind, PID: p.PID, Name: p.Name})
}

func (c *Controller) dispatch(ctx context.Context, req actions.Request) {
	if c.dispatcher == nil {
		c.state.Modal = Modal{
			Kind:    ModalDetail,
			Title:   "Action Failed",
			Message: "Process control is not available in this session",
			Failed:  true,
		}
		return
	}
	res, err := c.dispatcher.Dispatch(ctx, req)
	if err != nil {
		c.state.Modal = Modal{
			Kind:    ModalDetail,
			Title:   failureTitle(err),
			Message: describeFailure(err),
			Failed:  true,
		}
		return
	}
	c.state.Modal = Modal{
		Kind:    ModalDetail,
		Title:   "Success",
		Message: res.Message,
	}
}

func (c *Controller) nameOf(pid int32) string {
	for _, p := range c.processes {
		if p.PID == pid {
			return p.Name
		}
	}
	return ""
}

func failureTitle(err error) string {
	switch errors.CodeOf(err) {
	case errors.ErrSafety:
		return "Refused"
	case errors.ErrNotFound:
		return "Process Not Found"
	case errors.ErrPermission:
		return "Permission Denied"
	case errors.ErrUnsupported:
		return "Not Supported"
	default:
		return "Action Failed"
	}
}

func describeFailure(err error) string {
	msg := errors.Describe(err)
	var sErr *errors.Error
	if stderrors.As(err, &sErr) && sErr.Suggestion != "" {
		msg += "\n\n" + sErr.Suggestion
	}
	return msg
}

// FormatProcessDetail is the body of the process detail modal.
func FormatProcessDetail(p metrics.ProcessInfo) string {
	started := "unknown"
	if !p.StartTime.IsZero() {
		started = p.StartTime.Format(time.DateTime)
	}
	return fmt.Sprintf("PID:         %d\n"+
		"Name:        %s\n"+
		"User:        %s\n"+
		"CPU:         %.1f%%\n"+
		"Memory:      %.1f%% (%s)\n"+
		"Disk Read:   %s\n"+
		"Disk Write:  %s\n"+
		"Threads:     %d\n"+
		"Status:      %s\n"+
		"Started:     %s\n"+
		"Executable:  %s",
		p.PID, p.Name, p.User, p.CPUPercent, p.MemoryPercent, formatBytes(p.MemoryBytes),
		formatBytes(p.DiskRead), formatBytes(p.DiskWrite), p.Threads, p.Status, started, p.ExePath)
}
