package cli

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/systrix/internal/actions"
	"github.com/rileyhilliard/systrix/internal/errors"
	"github.com/rileyhilliard/systrix/internal/metrics"
	"github.com/rileyhilliard/systrix/internal/procview"
	"github.com/rileyhilliard/systrix/internal/ui"
	"github.com/rileyhilliard/systrix/internal/util"
)

type psOptions struct {
	Sort   string
	Filter string
	Limit  int
}

func psCommand(ctx context.Context, w io.Writer, s *session, opts psOptions) error {
	key, ok := procview.ParseSortKey(opts.Sort)
	if !ok {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown sort key '%s'", opts.Sort),
			util.DidYouMean(opts.Sort, []string{"cpu", "mem", "io", "pid", "name"}))
	}
	if opts.Limit < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("--limit must be at least 1, got %d", opts.Limit),
			"")
	}

	snap, err := s.sampler.Sample(ctx)
	if err != nil {
		return err
	}
	procs, matched := selectProcesses(snap.Processes, key, opts.Filter, opts.Limit)
	fmt.Fprint(w, renderProcesses(procs))
	fmt.Fprintln(w)

	noun := util.Pluralize(matched, "process", "processes")
	if opts.Filter != "" {
		noun += fmt.Sprintf(" matching '%s'", opts.Filter)
	}
	_, _, _, muted := ui.Styles()
	fmt.Fprintln(w, muted.Render(fmt.Sprintf("Showing %d of %d %s", len(procs), matched, noun)))
	return nil
}

// selectProcesses sorts by key, filters by query, and keeps the first limit
// rows. It also returns how many processes matched before the limit.
func selectProcesses(all []metrics.ProcessInfo, key procview.SortKey, query string, limit int) ([]metrics.ProcessInfo, int) {
	sorted := append([]metrics.ProcessInfo(nil), all...)
	procview.SortProcesses(sorted, key)

	idx := procview.Filter(sorted, query)
	out := make([]metrics.ProcessInfo, 0, min(limit, len(idx)))
	for _, i := range idx {
		if len(out) == limit {
			break
		}
		out = append(out, sorted[i])
	}
	return out, len(idx)
}

func renderProcesses(procs []metrics.ProcessInfo) string {
	if len(procs) == 0 {
		return "No matching processes\n"
	}
	rows := make([][]string, 0, len(procs))
	for _, p := range procs {
		rows = append(rows, []string{
			fmt.Sprintf("%d", p.PID),
			p.User,
			p.Name,
			fmt.Sprintf("%.1f", p.CPUPercent),
			fmt.Sprintf("%.1f", p.MemoryPercent),
			humanize.IBytes(p.MemoryBytes),
			humanize.IBytes(p.DiskRead),
			humanize.IBytes(p.DiskWrite),
			fmt.Sprintf("%d", p.Threads),
			p.Status,
		})
	}
	cols := []ui.TableColumn{
		{Title: "PID", Width: 7},
		{Title: "USER", Width: 10},
		{Title: "NAME", Width: 20},
		{Title: "CPU%", Width: 6},
		{Title: "MEM%", Width: 6},
		{Title: "MEMORY", Width: 10},
		{Title: "READ", Width: 10},
		{Title: "WRITE", Width: 10},
		{Title: "THR", Width: 4},
		{Title: "STATUS", Width: 8},
	}
	return ui.RenderTable(cols, rows)
}

type killOptions struct {
	PID    int32
	Signal string
	Force  bool
}

func killCommand(ctx context.Context, in io.Reader, out io.Writer, s *session, opts killOptions) error {
	if !actions.KnownSignal(opts.Signal) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown signal '%s'", opts.Signal),
			util.DidYouMean(opts.Signal, []string{"SIGTERM", "SIGKILL", "SIGINT"}))
	}
	sig := actions.ParseSignal(opts.Signal)

	if opts.PID <= 1 && !opts.Force {
		return errors.New(errors.ErrSafety,
			fmt.Sprintf("Refusing to kill system process (PID %d)", opts.PID),
			"Pass --force to override (not recommended)")
	}

	if !opts.Force {
		ok, err := confirm(in, out, fmt.Sprintf("Send %s to process %d?", sig, opts.PID))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	d := actions.NewDispatcher(s.sampler.Handle(), s.log)
	d.AllowSystem = opts.Force
	res, err := d.Dispatch(ctx, actions.Request{
		Kind:   actions.Kill,
		PID:    opts.PID,
		Signal: opts.Signal,
	})
	if err != nil {
		return err
	}

	ok, _, _, _ := ui.Styles()
	fmt.Fprintln(out, ok.Render(ui.SymbolSuccess)+" "+res.Message)
	return nil
}

// confirm asks a yes/no question. On a terminal it uses a huh form;
// otherwise it reads one line from in and accepts y or yes.
func confirm(in io.Reader, out io.Writer, title string) (bool, error) {
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		var yes bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(title).
					Affirmative("Yes").
					Negative("No").
					Value(&yes),
			),
		)
		if err := form.Run(); err != nil {
			if stderrors.Is(err, huh.ErrUserAborted) {
				return false, nil
			}
			return false, errors.WrapWithCode(err, errors.ErrTerminal,
				"Confirmation prompt failed",
				"Pass --force to skip the prompt")
		}
		return yes, nil
	}

	prompt := lipgloss.NewStyle().Bold(true).Render(title)
	fmt.Fprintf(out, "%s (y/N): ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !stderrors.Is(err, io.EOF) {
		return false, errors.WrapWithCode(err, errors.ErrTerminal, "Couldn't read confirmation", "Pass --force to skip the prompt")
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
