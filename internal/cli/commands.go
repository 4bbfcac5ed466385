package cli

import (
	"strconv"

	"github.com/rileyhilliard/systrix/internal/errors"
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	tuiRefreshFlag string
	psSortFlag     string
	psFilterFlag   string
	psLimitFlag    int
	killSignalFlag string
	killForceFlag  bool
	reportOutput   string
	reportFormat   string
	agentBindFlag  string
	agentPortFlag  int
	agentInterval  string
)

// tuiCmd launches the interactive dashboard
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive dashboard",
	Long: `Open the full-screen dashboard with overview, process, network, disk,
and settings panels. This is also what plain 'systrix' does.

Keyboard shortcuts:
  q / Ctrl+C    Quit
  Tab           Next panel (1-5 jump directly)
  /             Search processes by name or user
  k             Kill selected process (asks first)
  s / r         Suspend / resume selected process
  Enter         Process details
  o             Cycle sort order
  e / x / h     Export JSON / CSV / HTML
  ?             Help

Examples:
  systrix tui
  systrix tui --refresh-interval 1s
  systrix tui --refresh-interval 250`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tuiCommand(cmd.Context(), sess, tuiRefreshFlag)
	},
}

// infoCmd prints a system summary
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show a system information summary",
	Long: `Print host, CPU, memory, disk, and battery information once and exit.

Examples:
  systrix info
  systrix info --no-color`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return infoCommand(cmd.Context(), cmd.OutOrStdout(), sess)
	},
}

// psCmd lists processes
var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "List processes",
	Long: `List running processes sorted by resource usage.

Sort keys: cpu, mem (memory), io (disk), pid, name.
The filter matches process name or user, ignoring case.

Examples:
  systrix ps
  systrix ps --sort mem --limit 10
  systrix ps --filter postgres`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return psCommand(cmd.Context(), cmd.OutOrStdout(), sess, psOptions{
			Sort:   psSortFlag,
			Filter: psFilterFlag,
			Limit:  psLimitFlag,
		})
	},
}

// killCmd signals a process
var killCmd = &cobra.Command{
	Use:   "kill <pid>",
	Short: "Send a signal to a process",
	Long: `Send SIGTERM (or another signal) to a process.

Asks for confirmation unless --force is given. PID 0 and 1 are refused
without --force.

Examples:
  systrix kill 4242
  systrix kill 4242 --signal SIGKILL
  systrix kill 4242 --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parsePID(args[0])
		if err != nil {
			return err
		}
		return killCommand(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), sess, killOptions{
			PID:    pid,
			Signal: killSignalFlag,
			Force:  killForceFlag,
		})
	},
}

// netCmd prints network interfaces
var netCmd = &cobra.Command{
	Use:   "net",
	Short: "Show network interfaces and rates",
	Long: `List network interfaces with cumulative traffic and current rates.

Rates are measured over roughly one second.

Examples:
  systrix net`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return netCommand(cmd.Context(), cmd.OutOrStdout(), sess, netRateWindow)
	},
}

// diskCmd prints partitions
var diskCmd = &cobra.Command{
	Use:   "disk",
	Short: "Show disk partitions and usage",
	Long: `List mounted partitions with capacity and usage.

Examples:
  systrix disk`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return diskCommand(cmd.Context(), cmd.OutOrStdout(), sess)
	},
}

// reportCmd writes a full snapshot report
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export a system report",
	Long: `Take one snapshot and write it as JSON, YAML, CSV, Markdown, or HTML.

Without --output the report goes to the export directory from the config
(default: current directory) as systrix_export_<timestamp>.<ext>. With
--output the format is taken from the file extension unless --format is
given. Use --output - to write to stdout.

Examples:
  systrix report
  systrix report --format html
  systrix report --output /tmp/host.yaml
  systrix report --format md --output -`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportCommand(cmd.Context(), cmd.OutOrStdout(), sess, reportOptions{
			Output: reportOutput,
			Format: reportFormat,
		})
	},
}

// agentCmd serves telemetry over HTTP
var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Serve read-only telemetry over HTTP and WebSocket",
	Long: `Run a small HTTP server that samples this machine on an interval and
serves the latest snapshot. There is no authentication and no way to act
on processes; bind to 127.0.0.1 unless the network is trusted.

Endpoints:
  GET /health      status and version
  GET /metrics     CPU and memory
  GET /processes   top processes (?sort=, ?filter=, ?limit=)
  GET /snapshot    full report bundle
  GET /ws          snapshot stream

Examples:
  systrix agent
  systrix agent --bind 0.0.0.0 --port 9300
  systrix agent --interval 5s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return agentCommand(cmd.Context(), sess, agentOptions{
			Bind:     agentBindFlag,
			Port:     agentPortFlag,
			Interval: agentInterval,
		})
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for systrix.

Examples:
  # Bash
  systrix completion bash > /etc/bash_completion.d/systrix

  # Zsh
  systrix completion zsh > "${fpath[1]}/_systrix"

  # Fish
  systrix completion fish > ~/.config/fish/completions/systrix.fish`,
	ValidArgs:   []string{"bash", "zsh", "fish", "powershell"},
	Args:        cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Annotations: map[string]string{skipSetup: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(out)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	tuiCmd.Flags().StringVar(&tuiRefreshFlag, "refresh-interval", "", "refresh interval (e.g. 500ms, 1s, or milliseconds); minimum 100ms")

	psCmd.Flags().StringVar(&psSortFlag, "sort", "cpu", "sort by: cpu, mem, io, pid, name")
	psCmd.Flags().StringVar(&psFilterFlag, "filter", "", "only show processes whose name or user contains this")
	psCmd.Flags().IntVar(&psLimitFlag, "limit", 20, "maximum number of processes to show")

	killCmd.Flags().StringVar(&killSignalFlag, "signal", "SIGTERM", "signal to send: SIGTERM, SIGKILL, SIGINT")
	killCmd.Flags().BoolVarP(&killForceFlag, "force", "f", false, "skip confirmation and allow PID 0/1")

	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "output file, or - for stdout")
	reportCmd.Flags().StringVar(&reportFormat, "format", "", "json, yaml, csv, md, or html (default from config)")

	agentCmd.Flags().StringVar(&agentBindFlag, "bind", "", "address to listen on (default from config, 127.0.0.1)")
	agentCmd.Flags().IntVar(&agentPortFlag, "port", 0, "port to listen on (default from config, 9200)")
	agentCmd.Flags().StringVar(&agentInterval, "interval", "", "sampling interval (default from config, 2s)")

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(psCmd)
	rootCmd.AddCommand(killCmd)
	rootCmd.AddCommand(netCmd)
	rootCmd.AddCommand(diskCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(completionCmd)
}

// parsePID parses a pid argument.
func parsePID(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil || n < 0 {
		return 0, errors.New(errors.ErrConfig,
			"'"+s+"' is not a valid PID",
			"Find PIDs with 'systrix ps'")
	}
	return int32(n), nil
}
