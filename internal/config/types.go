package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

const (
	// MinRefreshInterval is the floor for the dashboard tick.
	MinRefreshInterval = 100 * time.Millisecond
	// DefaultRefreshInterval is used when nothing else is configured.
	DefaultRefreshInterval = 500 * time.Millisecond
	// DefaultCPUSettle is the pause between the two CPU refreshes of one sample.
	DefaultCPUSettle = 200 * time.Millisecond

	MinProcessLimit     = 10
	MaxProcessLimit     = 1000
	DefaultProcessLimit = 100
)

// Config represents the complete .systrix.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version" validate:"gte=0"`

	// RefreshInterval is the dashboard tick. Values below MinRefreshInterval are raised to it.
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval" validate:"gte=0"`

	// ProcessLimit caps how many processes the dashboard keeps after sorting.
	ProcessLimit int `yaml:"process_limit" mapstructure:"process_limit" validate:"gte=10,lte=1000"`

	ShowGraphs     bool `yaml:"show_graphs" mapstructure:"show_graphs"`
	ShowPerCoreCPU bool `yaml:"show_per_core_cpu" mapstructure:"show_per_core_cpu"`

	// Theme is "dark", "light", "dracula", or "auto" (detect from the terminal background).
	Theme string `yaml:"theme" mapstructure:"theme" validate:"oneof=dark light dracula auto"`

	// Sort is the initial process sort key.
	Sort string `yaml:"sort" mapstructure:"sort" validate:"oneof=cpu memory mem io pid name"`

	// KillSignal is the signal the dashboard sends on confirmed kill.
	KillSignal string `yaml:"kill_signal" mapstructure:"kill_signal" validate:"required"`

	// AllowSystemKill lets the dashboard signal pid 0 and 1. Off unless explicitly enabled.
	AllowSystemKill bool `yaml:"allow_system_kill" mapstructure:"allow_system_kill"`

	CPUSettle time.Duration `yaml:"cpu_settle" mapstructure:"cpu_settle" validate:"gte=0"`

	Thresholds ThresholdsConfig `yaml:"thresholds" mapstructure:"thresholds"`
	Export     ExportConfig     `yaml:"export" mapstructure:"export"`
	Agent      AgentConfig      `yaml:"agent" mapstructure:"agent"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// ThresholdsConfig defines warning/critical levels for usage coloring.
type ThresholdsConfig struct {
	CPU    ThresholdValues `yaml:"cpu" mapstructure:"cpu"`
	Memory ThresholdValues `yaml:"memory" mapstructure:"memory"`
	Disk   ThresholdValues `yaml:"disk" mapstructure:"disk"`
}

// ThresholdValues holds percentages (0-100) at which a metric turns yellow or red.
type ThresholdValues struct {
	Warning  int `yaml:"warning" mapstructure:"warning" validate:"gte=0,lte=100"`
	Critical int `yaml:"critical" mapstructure:"critical" validate:"gte=0,lte=100"`
}

// ExportConfig controls where dashboard exports and reports are written.
type ExportConfig struct {
	// Dir is the output directory. Supports ~ and environment variables.
	Dir string `yaml:"dir" mapstructure:"dir"`

	// Format used by `systrix report` when --format is not given.
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json yaml csv md html"`
}

// AgentConfig configures the read-only HTTP agent.
type AgentConfig struct {
	Bind     string        `yaml:"bind" mapstructure:"bind" validate:"required"`
	Port     int           `yaml:"port" mapstructure:"port" validate:"gte=1,lte=65535"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
}

// LogConfig controls the diagnostic log. The dashboard owns the terminal, so
// logs only go somewhere when File is set.
type LogConfig struct {
	File  string `yaml:"file" mapstructure:"file"`
	Level string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:         CurrentConfigVersion,
		RefreshInterval: DefaultRefreshInterval,
		ProcessLimit:    DefaultProcessLimit,
		ShowGraphs:      true,
		ShowPerCoreCPU:  true,
		Theme:           "dark",
		Sort:            "cpu",
		KillSignal:      "SIGTERM",
		AllowSystemKill: false,
		CPUSettle:       DefaultCPUSettle,
		Thresholds: ThresholdsConfig{
			CPU:    ThresholdValues{Warning: 70, Critical: 90},
			Memory: ThresholdValues{Warning: 70, Critical: 90},
			Disk:   ThresholdValues{Warning: 80, Critical: 95},
		},
		Export: ExportConfig{
			Dir:    ".",
			Format: "json",
		},
		Agent: AgentConfig{
			Bind:     "127.0.0.1",
			Port:     9200,
			Interval: 2 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ClampRefreshInterval raises d to MinRefreshInterval when it is smaller.
func ClampRefreshInterval(d time.Duration) time.Duration {
	if d < MinRefreshInterval {
		return MinRefreshInterval
	}
	return d
}

// ClampProcessLimit keeps n within [MinProcessLimit, MaxProcessLimit].
func ClampProcessLimit(n int) int {
	if n < MinProcessLimit {
		return MinProcessLimit
	}
	if n > MaxProcessLimit {
		return MaxProcessLimit
	}
	return n
}
