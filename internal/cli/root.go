package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rileyhilliard/systrix/internal/config"
	"github.com/rileyhilliard/systrix/internal/errors"
	"github.com/rileyhilliard/systrix/internal/logger"
	"github.com/rileyhilliard/systrix/internal/metrics"
	"github.com/rileyhilliard/systrix/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Global flags
var (
	cfgFile     string
	logFileFlag string
	debugFlag   bool
	noColorFlag bool
)

// skipSetup marks commands that must work without a config or provider.
const skipSetup = "systrix/skip-setup"

// newProvider builds the OS provider for a session. Tests swap it for a fake.
var newProvider = func() metrics.Provider {
	return metrics.NewGopsutilProvider()
}

// sess is the session prepared by PersistentPreRunE for the running command.
var sess *session

var rootCmd = &cobra.Command{
	Use:   "systrix",
	Short: "Local system telemetry dashboard and toolkit",
	Long: `systrix shows CPU, memory, disk, network, battery, and process telemetry
for this machine.

Run without a subcommand to open the interactive dashboard. The other
commands print a one-shot view and exit, write a report, or serve
telemetry over HTTP.

Examples:
  systrix
  systrix ps --sort mem --limit 10
  systrix report --format html
  systrix agent --port 9200`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColorFlag || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
		if cmd.Annotations[skipSetup] != "" {
			return nil
		}
		s, err := openSession(cfgFile, logFileFlag, debugFlag)
		if err != nil {
			return err
		}
		sess = s
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if sess == nil {
			return nil
		}
		err := sess.Close()
		sess = nil
		return err
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return tuiCommand(cmd.Context(), sess, "")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .systrix.yaml or ~/.config/systrix/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "write diagnostic logs to this file")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable colored output")
}

// session holds what every telemetry command needs: the loaded config, a
// logger, and one sampler over one provider handle.
type session struct {
	cfg     *config.Config
	cfgPath string
	log     logger.Logger
	// level is the effective log level after --debug.
	level string
	// logToFile is true when log output goes to a file rather than stderr.
	logToFile bool
	sampler   *metrics.Sampler
	closeLog  func() error
}

// openSession loads config and wires the logger and sampler.
func openSession(explicitConfig, logFile string, debug bool) (*session, error) {
	cfg, path, err := config.LoadOrDefault(explicitConfig)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if debug {
		level = "debug"
	}
	if logFile == "" {
		logFile = cfg.Log.File
	}

	s := &session{cfg: cfg, cfgPath: path, level: level}
	switch {
	case logFile != "":
		log, closeFn, err := logger.NewFileLogger(config.ExpandPath(logFile), level)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Can't open log file "+logFile,
				"Check the directory exists and is writable")
		}
		s.log, s.closeLog, s.logToFile = log, closeFn, true
	case debug:
		s.log = logger.NewSlogLogger(os.Stderr, level, stderrIsTerminal())
	case os.Getenv(logger.DebugEnv) != "":
		s.log = logger.NewEnvLogger("[systrix]")
	default:
		// One-shot commands print their own results; only problems go to stderr.
		s.log = logger.NewSlogLogger(os.Stderr, quietLevel(level), stderrIsTerminal())
	}
	logger.SetDefault(s.log)

	if path != "" {
		s.log.Debug("loaded config from %s", path)
	}

	s.sampler = newSessionSampler(newProvider(), cfg, s.log)
	return s, nil
}

// quietLevel raises debug and info to warn.
func quietLevel(level string) string {
	if logger.ParseLevel(level) < slog.LevelWarn {
		return "warn"
	}
	return level
}

func stderrIsTerminal() bool {
	return isTerminal(os.Stderr)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func newSessionSampler(p metrics.Provider, cfg *config.Config, log logger.Logger) *metrics.Sampler {
	return metrics.NewSampler(metrics.NewHandle(p),
		metrics.WithCPUSettle(cfg.CPUSettle),
		metrics.WithLogger(log))
}

// Close releases the log file, if any.
func (s *session) Close() error {
	if s.closeLog == nil {
		return nil
	}
	return s.closeLog()
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if sess != nil {
		_ = sess.Close()
		sess = nil
	}
	if err == nil {
		return 0
	}
	printError(os.Stderr, err)
	return 1
}

// printError writes err for a human. Cobra's own argument errors get a
// pointer to --help.
func printError(w io.Writer, err error) {
	if isUsageError(err) {
		fmt.Fprintf(w, "%s %s\n", ui.SymbolFail, err)
		fmt.Fprintln(w, "  Run 'systrix --help' to see available commands and flags.")
		return
	}
	fmt.Fprintln(w, err)
}

// usageErrorPrefixes are the messages cobra and pflag produce for bad
// invocations.
var usageErrorPrefixes = []string{
	"unknown command",
	"unknown flag",
	"unknown shorthand flag",
	"invalid argument",
	"accepts ",
	"requires at least",
	"flag needs an argument",
}

func isUsageError(err error) bool {
	var sErr *errors.Error
	if stderrors.As(err, &sErr) {
		return false
	}
	msg := err.Error()
	for _, p := range usageErrorPrefixes {
		if strings.HasPrefix(msg, p) {
			return true
		}
	}
	return false
}
