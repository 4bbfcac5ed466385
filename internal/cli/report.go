package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rileyhilliard/systrix/internal/config"
	"github.com/rileyhilliard/systrix/internal/export"
	"github.com/rileyhilliard/systrix/internal/ui"
)

type reportOptions struct {
	Output string
	Format string
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func reportCommand(ctx context.Context, w io.Writer, s *session, opts reportOptions) error {
	f, err := reportFormatFor(opts.Format, opts.Output, s.cfg.Export.Format)
	if err != nil {
		return err
	}

	snap, err := s.sampler.Sample(ctx)
	if err != nil {
		return err
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	t := now()
	b := export.NewBundle(snap, t)

	var path string
	switch opts.Output {
	case "-":
		return export.Render(w, b, f)
	case "":
		path, err = export.Export(b, f, config.ExpandPath(s.cfg.Export.Dir), t)
	default:
		path, err = export.WriteFile(b, f, config.ExpandPath(opts.Output))
	}
	if err != nil {
		return err
	}

	s.log.Info("report written to %s", path)
	ok, _, _, _ := ui.Styles()
	fmt.Fprintf(w, "%s Report exported to: %s\n", ok.Render(ui.SymbolSuccess), path)
	return nil
}

// reportFormatFor picks the format: --format first, then the --output
// extension when it names a known format, then the configured default.
func reportFormatFor(format, output, fallback string) (export.Format, error) {
	if format != "" {
		return export.ParseFormat(format)
	}
	if output != "" && output != "-" {
		if ext := strings.TrimPrefix(filepath.Ext(output), "."); ext != "" {
			if f, err := export.ParseFormat(ext); err == nil {
				return f, nil
			}
		}
	}
	if fallback == "" {
		return export.FormatJSON, nil
	}
	return export.ParseFormat(fallback)
}
