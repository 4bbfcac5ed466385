package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rileyhilliard/systrix/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".systrix.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/systrix"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. SYSTRIX_REFRESH_INTERVAL.
	EnvPrefix = "SYSTRIX"
)

// durationKeys accept a bare integer meaning milliseconds.
var durationKeys = []string{"refresh_interval", "cpu_settle", "agent.interval"}

// Load reads config from the specified path. An empty path yields defaults
// with environment overrides applied.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Config file not found",
					"Check the path passed to --config")
			}
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the file exists and is valid YAML")
		}
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .systrix.yaml in current directory
// 3. .systrix.yaml in parent directories (stops at git root or home)
// 4. ~/.config/systrix/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	home, _ := os.UserHomeDir()
	dir := cwd
	for !isGitRoot(dir) {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		if home != "" && parent == home {
			// Don't go above home directory
			break
		}
		dir = parent

		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	if home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault finds and loads the config, falling back to defaults when
// no file exists. A .env file in the working directory is read first so its
// SYSTRIX_* values act as overrides.
func LoadOrDefault(explicit string) (*Config, string, error) {
	if cwd, err := os.Getwd(); err == nil {
		if err := LoadDotEnv(cwd); err != nil {
			return nil, "", err
		}
	}

	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	if err := Validate(cfg); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// LoadDotEnv loads dir/.env into the process environment. Variables already
// set are left alone, and a missing file is not an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to parse "+path,
			"Each line should look like KEY=value")
	}
	return nil
}

// ParseInterval parses a duration flag or setting. Plain integers are
// milliseconds ("250" == 250ms); anything else goes through time.ParseDuration.
func ParseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, errors.New(errors.ErrConfig,
				"Interval can't be negative: "+s,
				"Use something like 500ms or 1s")
		}
		return time.Duration(n) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid interval: "+s,
			"Use something like 500ms, 2s, or a number of milliseconds")
	}
	if d < 0 {
		return 0, errors.New(errors.ErrConfig,
			"Interval can't be negative: "+s,
			"Use something like 500ms or 1s")
	}
	return d, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults registers every key so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("refresh_interval", d.RefreshInterval.String())
	v.SetDefault("process_limit", d.ProcessLimit)
	v.SetDefault("show_graphs", d.ShowGraphs)
	v.SetDefault("show_per_core_cpu", d.ShowPerCoreCPU)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("sort", d.Sort)
	v.SetDefault("kill_signal", d.KillSignal)
	v.SetDefault("allow_system_kill", d.AllowSystemKill)
	v.SetDefault("cpu_settle", d.CPUSettle.String())
	v.SetDefault("thresholds.cpu.warning", d.Thresholds.CPU.Warning)
	v.SetDefault("thresholds.cpu.critical", d.Thresholds.CPU.Critical)
	v.SetDefault("thresholds.memory.warning", d.Thresholds.Memory.Warning)
	v.SetDefault("thresholds.memory.critical", d.Thresholds.Memory.Critical)
	v.SetDefault("thresholds.disk.warning", d.Thresholds.Disk.Warning)
	v.SetDefault("thresholds.disk.critical", d.Thresholds.Disk.Critical)
	v.SetDefault("export.dir", d.Export.Dir)
	v.SetDefault("export.format", d.Export.Format)
	v.SetDefault("agent.bind", d.Agent.Bind)
	v.SetDefault("agent.port", d.Agent.Port)
	v.SetDefault("agent.interval", d.Agent.Interval.String())
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.level", d.Log.Level)
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	source := path
	if source == "" {
		source = "the environment"
	}

	for _, key := range durationKeys {
		d, err := ParseInterval(v.GetString(key))
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Invalid "+key+" in "+source,
				"Use something like 500ms, 2s, or a number of milliseconds")
		}
		v.Set(key, d)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+source)
	}

	cfg.RefreshInterval = ClampRefreshInterval(cfg.RefreshInterval)
	cfg.Export.Dir = ExpandPath(cfg.Export.Dir)
	cfg.Log.File = ExpandPath(cfg.Log.File)
	cfg.Theme = strings.ToLower(cfg.Theme)
	cfg.Sort = strings.ToLower(cfg.Sort)

	return cfg, nil
}

// isGitRoot checks if a directory is a git repository root.
func isGitRoot(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	if err != nil {
		return false
	}
	return info.IsDir()
}
