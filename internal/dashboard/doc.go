// Package dashboard implements the interactive terminal dashboard.
//
// The dashboard shows CPU, memory, disk, network, battery, and process
// telemetry for the local machine across five panels, and lets the operator
// filter, inspect, kill, suspend, and resume processes.
//
// # Architecture
//
// The package is split between a pure state machine and a Bubble Tea shell:
//
//   - Controller: owns State and the latest snapshot. Every key press goes
//     through Controller.HandleKey, which returns an Outcome telling the
//     caller whether to quit or export. It never touches the terminal.
//   - Model: the Bubble Tea model. It drives the tick loop, runs
//     acquisitions and exports as commands, and converts key messages with
//     KeyFromTea.
//   - renderer: turns the controller's state into a frame. It only reads.
//
// # Tick Loop
//
//  1. tickMsg fires after the refresh interval (100ms minimum)
//  2. If not paused, acquireCmd samples through the shared metrics handle
//  3. snapshotMsg or acquireErrMsg arrives; the next tick is scheduled only
//     then, so at most one acquisition is in flight
//  4. View() renders the new state
//
// A failed acquisition keeps the previous snapshot and shows the error in
// the status line. The very first acquisition happens in Run before the
// terminal is taken over, and its failure is fatal.
//
// # State Axes
//
// Panel, search mode, and modal are independent enums in State. A modal can
// only be opened while search is inactive, and while a modal is open only
// quit, escape, and the modal's own keys are accepted.
//
//	Panel      Overview | Processes | Network | Disk | Settings
//	Search     Inactive | Active (query in State.Query)
//	Modal      None | KillConfirm (TargetPID) | Detail
//
// # Process Actions
//
// Kill asks for confirmation first and sends the configured kill_signal.
// Suspend and resume run immediately. All three go through an
// actions.Dispatcher, which refuses pid 0 and 1; the result or error is
// shown in a Detail modal.
package dashboard
