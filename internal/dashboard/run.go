package dashboard

import (
	"context"
	stderrors "errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/systrix/internal/actions"
	"github.com/rileyhilliard/systrix/internal/config"
	"github.com/rileyhilliard/systrix/internal/errors"
	"github.com/rileyhilliard/systrix/internal/logger"
	"golang.org/x/term"
)

var errExportUnavailable = errors.New(errors.ErrExport,
	"Export is not available in this session", "")

// RunOptions wires the dashboard to its collaborators.
type RunOptions struct {
	Config     *config.Config
	Sampler    Sampler
	Dispatcher *actions.Dispatcher
	Exporter   Exporter
	Logger     logger.Logger
}

// Run takes over the terminal until the user quits or ctx is cancelled.
// The first acquisition happens before that: if it fails, Run returns the
// error and the terminal is never touched.
func Run(ctx context.Context, opts RunOptions) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New(errors.ErrTerminal,
			"The dashboard needs an interactive terminal",
			"Use 'systrix info', 'systrix ps' or 'systrix report' for non-interactive output")
	}

	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	snap, err := opts.Sampler.Sample(ctx)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrAcquire,
			"Could not read system metrics at startup",
			"Check that /proc and /sys are readable, or run with --debug for details")
	}

	ctrl := NewController(OptionsFromConfig(cfg, opts.Dispatcher, log))
	ctrl.ApplySnapshot(snap)

	model := NewModel(ctx, ModelOptions{
		Controller: ctrl,
		Sampler:    opts.Sampler,
		Exporter:   opts.Exporter,
		Thresholds: ThresholdsFromConfig(cfg),
		Logger:     log,
	})

	log.Info("dashboard started: refresh %s, %d processes", ctrl.RefreshInterval(), len(snap.Processes))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	if err != nil && stderrors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTerminal, "Dashboard stopped unexpectedly", "")
	}
	return nil
}
