package dashboard

import (
	"strings"
	"time"

	"github.com/muesli/termenv"
	"github.com/rileyhilliard/systrix/internal/procview"
)

// Panel is the active dashboard tab.
type Panel int

const (
	PanelOverview Panel = iota
	PanelProcesses
	PanelNetwork
	PanelDisk
	PanelSettings
)

// PanelCount is the number of tabs.
const PanelCount = 5

var panelNames = [PanelCount]string{"Overview", "Processes", "Network", "Disk", "Settings"}

// String returns the tab title.
func (p Panel) String() string {
	if p < 0 || int(p) >= PanelCount {
		return "Overview"
	}
	return panelNames[p]
}

// Next returns the following panel, wrapping after Settings.
func (p Panel) Next() Panel {
	return Panel((int(p) + 1) % PanelCount)
}

// Prev returns the preceding panel, wrapping before Overview.
func (p Panel) Prev() Panel {
	return Panel((int(p) + PanelCount - 1) % PanelCount)
}

// SearchMode tells whether keystrokes are going into the process filter.
type SearchMode int

const (
	SearchInactive SearchMode = iota
	SearchActive
)

// ModalKind identifies the overlay currently blocking the dashboard.
type ModalKind int

const (
	ModalNone ModalKind = iota
	ModalKillConfirm
	ModalDetail
)

// Modal is the overlay state. TargetPID is only meaningful for ModalKillConfirm.
type Modal struct {
	Kind      ModalKind
	Title     string
	Message   string
	TargetPID int32
	// Failed marks a detail modal that reports an error.
	Failed bool
}

// Open reports whether any modal is showing.
func (m Modal) Open() bool {
	return m.Kind != ModalNone
}

// Theme is the color scheme.
type Theme int

const (
	ThemeDark Theme = iota
	ThemeLight
	ThemeDracula
)

const themeCount = 3

func (t Theme) String() string {
	switch t {
	case ThemeLight:
		return "light"
	case ThemeDracula:
		return "dracula"
	default:
		return "dark"
	}
}

// Next cycles Dark -> Light -> Dracula -> Dark.
func (t Theme) Next() Theme {
	return Theme((int(t) + 1) % themeCount)
}

// Prev cycles in the other direction.
func (t Theme) Prev() Theme {
	return Theme((int(t) + themeCount - 1) % themeCount)
}

// ParseTheme maps a config value to a Theme. "auto" picks dark or light from
// the terminal background; anything unknown is dark.
func ParseTheme(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "light":
		return ThemeLight
	case "dracula":
		return ThemeDracula
	case "auto":
		if termenv.HasDarkBackground() {
			return ThemeDark
		}
		return ThemeLight
	default:
		return ThemeDark
	}
}

// SettingsCategory is a row of the settings menu.
type SettingsCategory int

const (
	CategoryAppearance SettingsCategory = iota
	CategoryPerformance
	CategoryDisplay
	CategoryKeyboard
	CategoryAbout
)

const categoryCount = 5

func (c SettingsCategory) String() string {
	switch c {
	case CategoryPerformance:
		return "Performance"
	case CategoryDisplay:
		return "Display"
	case CategoryKeyboard:
		return "Keyboard"
	case CategoryAbout:
		return "About"
	default:
		return "Appearance"
	}
}

func clampCategory(n int) SettingsCategory {
	if n < 0 {
		return CategoryAppearance
	}
	if n >= categoryCount {
		return CategoryAbout
	}
	return SettingsCategory(n)
}

// Settings are the values editable from the Settings panel.
type Settings struct {
	Category        SettingsCategory
	RefreshInterval time.Duration
	ProcessLimit    int
	ShowGraphs      bool
	ShowPerCoreCPU  bool
}

// State is everything the controller mutates in response to input. The
// renderer only reads it.
type State struct {
	Panel    Panel
	Search   SearchMode
	Query    string
	Modal    Modal
	Theme    Theme
	Sort     procview.SortKey
	Paused   bool
	ShowHelp bool
	Settings Settings
	// Scroll is the first visible row of each panel. Only Network and Disk
	// scroll; the process list follows the cursor instead.
	Scroll [PanelCount]int
}
