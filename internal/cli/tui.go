package cli

import (
	"context"
	"time"

	"github.com/rileyhilliard/systrix/internal/actions"
	"github.com/rileyhilliard/systrix/internal/config"
	"github.com/rileyhilliard/systrix/internal/dashboard"
	"github.com/rileyhilliard/systrix/internal/export"
	"github.com/rileyhilliard/systrix/internal/logger"
	"github.com/rileyhilliard/systrix/internal/metrics"
)

// tuiCommand runs the dashboard. refresh overrides the configured interval
// when non-empty.
func tuiCommand(ctx context.Context, s *session, refresh string) error {
	cfg := *s.cfg
	if refresh != "" {
		d, err := config.ParseInterval(refresh)
		if err != nil {
			return err
		}
		cfg.RefreshInterval = d
	}
	cfg.RefreshInterval = config.ClampRefreshInterval(cfg.RefreshInterval)

	// The dashboard owns the terminal, so logs only go to a file.
	log := s.log
	if !s.logToFile {
		log = logger.Noop()
	}

	dispatcher := actions.NewDispatcher(s.sampler.Handle(), log)
	dispatcher.AllowSystem = cfg.AllowSystemKill

	return dashboard.Run(ctx, dashboard.RunOptions{
		Config:     &cfg,
		Sampler:    s.sampler,
		Dispatcher: dispatcher,
		Exporter:   newExporter(cfg.Export.Dir, time.Now),
		Logger:     log,
	})
}

// newExporter writes dashboard exports into dir.
func newExporter(dir string, now func() time.Time) dashboard.Exporter {
	dir = config.ExpandPath(dir)
	return func(snap metrics.Snapshot, format string) (string, error) {
		f, err := export.ParseFormat(format)
		if err != nil {
			return "", err
		}
		t := now()
		return export.Export(export.NewBundle(snap, t), f, dir, t)
	}
}
