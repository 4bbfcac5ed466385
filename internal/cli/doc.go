// Package cli implements the systrix command-line interface.
//
// Each Cobra command is a thin wrapper that reads its flags and calls a
// plain function (tuiCommand, psCommand, killCommand, ...) taking a
// context, an output writer, and the session. Tests call those functions
// directly with a session built over a fake provider.
//
// # Command Structure
//
//	systrix              - Interactive dashboard (same as tui)
//	systrix tui          - Interactive dashboard
//	systrix info         - System summary
//	systrix ps           - Process list (--sort, --filter, --limit)
//	systrix kill <pid>   - Signal a process (--signal, --force)
//	systrix net          - Network interfaces and rates
//	systrix disk         - Partitions and usage
//	systrix report       - Export a snapshot (json, yaml, csv, md, html)
//	systrix agent        - Read-only HTTP/WebSocket telemetry server
//	systrix version      - Build information
//
// # Sessions
//
// PersistentPreRunE loads the config (flag, project file, global file, or
// defaults, with .env and SYSTRIX_* overrides), picks a logger, and builds
// one metrics.Sampler over one provider handle. Commands annotated with
// skipSetup (version, completion) run without it.
//
// Logging depends on where output can safely go. With --log-file (or
// log.file) everything is written there. Otherwise one-shot commands only
// print warnings to stderr, the agent logs at the configured level, and the
// dashboard logs nothing because it owns the terminal.
package cli
