package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rileyhilliard/systrix/internal/agent"
	"github.com/rileyhilliard/systrix/internal/config"
	"github.com/rileyhilliard/systrix/internal/errors"
	"github.com/rileyhilliard/systrix/internal/logger"
)

type agentOptions struct {
	Bind     string
	Port     int
	Interval string
}

// agentSettings applies flag overrides on top of the configured agent block.
func agentSettings(base config.AgentConfig, opts agentOptions) (config.AgentConfig, error) {
	ac := base
	if opts.Bind != "" {
		ac.Bind = opts.Bind
	}
	if opts.Port != 0 {
		if opts.Port < 1 || opts.Port > 65535 {
			return ac, errors.New(errors.ErrConfig,
				fmt.Sprintf("Port %d is out of range", opts.Port),
				"Use a port between 1 and 65535")
		}
		ac.Port = opts.Port
	}
	if opts.Interval != "" {
		d, err := config.ParseInterval(opts.Interval)
		if err != nil {
			return ac, err
		}
		ac.Interval = d
	}
	return ac, nil
}

func agentCommand(ctx context.Context, s *session, opts agentOptions) error {
	ac, err := agentSettings(s.cfg.Agent, opts)
	if err != nil {
		return err
	}

	// A long-running server wants its info lines even without a log file.
	log := s.log
	if !s.logToFile {
		log = logger.NewSlogLogger(os.Stderr, s.level, stderrIsTerminal())
	}

	srv := agent.New(s.sampler, agent.Options{
		Bind:     ac.Bind,
		Port:     ac.Port,
		Interval: ac.Interval,
		Version:  version,
		Logger:   log,
	})
	if ac.Bind != "127.0.0.1" && ac.Bind != "localhost" && ac.Bind != "::1" {
		log.Warn("agent is bound to %s without authentication", ac.Bind)
	}
	return srv.Run(ctx)
}
