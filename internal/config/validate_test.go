package config

import (
	"testing"

	"github.com/rileyhilliard/systrix/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errContains string
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:        "future version",
			mutate:      func(c *Config) { c.Version = CurrentConfigVersion + 1 },
			wantErr:     true,
			errContains: "from the future",
		},
		{
			name:        "unknown theme",
			mutate:      func(c *Config) { c.Theme = "solarized" },
			wantErr:     true,
			errContains: "theme must be one of",
		},
		{
			name:    "auto theme allowed",
			mutate:  func(c *Config) { c.Theme = "auto" },
			wantErr: false,
		},
		{
			name:        "unknown sort key",
			mutate:      func(c *Config) { c.Sort = "threads" },
			wantErr:     true,
			errContains: "sort must be one of",
		},
		{
			name:        "process limit too small",
			mutate:      func(c *Config) { c.ProcessLimit = 5 },
			wantErr:     true,
			errContains: "process_limit must be at least 10",
		},
		{
			name:        "process limit too large",
			mutate:      func(c *Config) { c.ProcessLimit = 5000 },
			wantErr:     true,
			errContains: "process_limit must be at most 1000",
		},
		{
			name:        "agent port out of range",
			mutate:      func(c *Config) { c.Agent.Port = 70000 },
			wantErr:     true,
			errContains: "agent.port",
		},
		{
			name:        "bad export format",
			mutate:      func(c *Config) { c.Export.Format = "pdf" },
			wantErr:     true,
			errContains: "export.format",
		},
		{
			name:        "empty kill signal",
			mutate:      func(c *Config) { c.KillSignal = "" },
			wantErr:     true,
			errContains: "kill_signal is required",
		},
		{
			name:        "threshold above 100",
			mutate:      func(c *Config) { c.Thresholds.CPU.Critical = 120 },
			wantErr:     true,
			errContains: "thresholds.cpu.critical",
		},
		{
			name: "warning above critical",
			mutate: func(c *Config) {
				c.Thresholds.Memory.Warning = 95
				c.Thresholds.Memory.Critical = 80
			},
			wantErr:     true,
			errContains: "should be the other way around",
		},
		{
			name:        "bad log level",
			mutate:      func(c *Config) { c.Log.Level = "trace" },
			wantErr:     true,
			errContains: "log.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}
