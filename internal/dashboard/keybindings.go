package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyCode is either a printable character (CodeRune) or a named key.
type KeyCode int

const (
	CodeUnknown KeyCode = iota
	CodeRune
	CodeEnter
	CodeEsc
	CodeBackspace
	CodeTab
	CodeBackTab
	CodeUp
	CodeDown
	CodeLeft
	CodeRight
	CodePgUp
	CodePgDown
	CodeHome
	CodeEnd
)

// Modifier is a bit set of held modifier keys.
type Modifier int

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
)

// KeyEvent is one key press as seen by the controller.
type KeyEvent struct {
	Code KeyCode
	Rune rune
	Mods Modifier
}

// Char builds a plain character event.
func Char(r rune) KeyEvent {
	return KeyEvent{Code: CodeRune, Rune: r}
}

// Named builds an event for a non-character key.
func Named(code KeyCode) KeyEvent {
	return KeyEvent{Code: code}
}

// Ctrl builds a ctrl+<r> event.
func Ctrl(r rune) KeyEvent {
	return KeyEvent{Code: CodeRune, Rune: r, Mods: ModCtrl}
}

// Has reports whether m is held.
func (k KeyEvent) Has(m Modifier) bool {
	return k.Mods&m != 0
}

// IsRune reports whether the event is the unmodified character r.
func (k KeyEvent) IsRune(r rune) bool {
	return k.Code == CodeRune && k.Mods == 0 && k.Rune == r
}

// Printable reports whether the event can be typed into the search query.
func (k KeyEvent) Printable() bool {
	return k.Code == CodeRune && !k.Has(ModCtrl) && !k.Has(ModAlt) && k.Rune >= ' '
}

// IsInterrupt is ctrl+c, which quits from any state.
func (k KeyEvent) IsInterrupt() bool {
	return k.Code == CodeRune && k.Has(ModCtrl) && (k.Rune == 'c' || k.Rune == 'C')
}

// Character keys. Digits 1-5 select panels (or settings categories).
const (
	KeyQuit       = 'q'
	KeySearch     = '/'
	KeyKill       = 'k'
	KeySuspend    = 's'
	KeyResume     = 'r'
	KeyPause      = 'p'
	KeyTheme      = 't'
	KeyCycleSort  = 'o'
	KeyToggleHelp = '?'
	KeyConfirm    = 'y'
	KeyCancel     = 'n'
	KeyExportJSON = 'e'
	KeyExportCSV  = 'x'
	KeyExportHTML = 'h'
	KeyGraphs     = 'g'
	KeyPerCore    = 'c'
	KeyIncrease   = '+'
	KeyDecrease   = '-'
)

// KeyFromTea converts a bubbletea key message. Multi-rune messages (pastes)
// keep only the first rune; the model splits them before calling this.
func KeyFromTea(msg tea.KeyMsg) KeyEvent {
	var mods Modifier
	if msg.Alt {
		mods |= ModAlt
	}

	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return KeyEvent{Code: CodeUnknown, Mods: mods}
		}
		return KeyEvent{Code: CodeRune, Rune: msg.Runes[0], Mods: mods}
	case tea.KeySpace:
		return KeyEvent{Code: CodeRune, Rune: ' ', Mods: mods}
	case tea.KeyEnter:
		return KeyEvent{Code: CodeEnter, Mods: mods}
	case tea.KeyEsc:
		return KeyEvent{Code: CodeEsc, Mods: mods}
	case tea.KeyBackspace:
		return KeyEvent{Code: CodeBackspace, Mods: mods}
	case tea.KeyTab:
		return KeyEvent{Code: CodeTab, Mods: mods}
	case tea.KeyShiftTab:
		return KeyEvent{Code: CodeBackTab, Mods: mods}
	case tea.KeyUp:
		return KeyEvent{Code: CodeUp, Mods: mods}
	case tea.KeyDown:
		return KeyEvent{Code: CodeDown, Mods: mods}
	case tea.KeyLeft:
		return KeyEvent{Code: CodeLeft, Mods: mods}
	case tea.KeyRight:
		return KeyEvent{Code: CodeRight, Mods: mods}
	case tea.KeyPgUp:
		return KeyEvent{Code: CodePgUp, Mods: mods}
	case tea.KeyPgDown:
		return KeyEvent{Code: CodePgDown, Mods: mods}
	case tea.KeyHome:
		return KeyEvent{Code: CodeHome, Mods: mods}
	case tea.KeyEnd:
		return KeyEvent{Code: CodeEnd, Mods: mods}
	}

	if msg.Type >= tea.KeyCtrlA && msg.Type <= tea.KeyCtrlZ {
		return KeyEvent{Code: CodeRune, Rune: 'a' + rune(msg.Type-tea.KeyCtrlA), Mods: mods | ModCtrl}
	}
	return KeyEvent{Code: CodeUnknown, Mods: mods}
}

// keyMap describes the bindings for the footer and the help overlay. The
// controller does its own matching; these exist for display.
type keyMap struct {
	Quit     key.Binding
	Panels   key.Binding
	NextTab  key.Binding
	Navigate key.Binding
	Page     key.Binding
	Details  key.Binding
	Search   key.Binding
	Kill     key.Binding
	Suspend  key.Binding
	Resume   key.Binding
	Sort     key.Binding
	Pause    key.Binding
	Theme    key.Binding
	Export   key.Binding
	Adjust   key.Binding
	Toggles  key.Binding
	Help     key.Binding
	Close    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Panels:   key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "panels")),
		NextTab:  key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next panel")),
		Navigate: key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "navigate")),
		Page:     key.NewBinding(key.WithKeys("pgup", "pgdown", "home", "end"), key.WithHelp("pgup/pgdn/home/end", "jump")),
		Details:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Kill:     key.NewBinding(key.WithKeys("k"), key.WithHelp("k", "kill")),
		Suspend:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "suspend")),
		Resume:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resume")),
		Sort:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort")),
		Pause:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Theme:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Export:   key.NewBinding(key.WithKeys("e", "x", "h"), key.WithHelp("e/x/h", "export json/csv/html")),
		Adjust:   key.NewBinding(key.WithKeys("+", "-", "left", "right"), key.WithHelp("+/-", "adjust setting")),
		Toggles:  key.NewBinding(key.WithKeys("g", "c"), key.WithHelp("g/c", "graphs/per-core")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close/clear")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Panels, k.Navigate, k.Search, k.Kill, k.Export, k.Pause, k.Theme, k.Help}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Panels, k.NextTab, k.Navigate, k.Page, k.Help, k.Quit},
		{k.Details, k.Search, k.Kill, k.Suspend, k.Resume, k.Sort},
		{k.Pause, k.Theme, k.Export, k.Adjust, k.Toggles, k.Close},
	}
}
