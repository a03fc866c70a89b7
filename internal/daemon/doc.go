// Package daemon coordinates the long-running Scribe process.
//
// It wires configuration, queue storage, the workflow manager, and the input
// watcher into a single lifecycle with flock-based locking to prevent
// multiple instances. The daemon exposes queue maintenance helpers, manages
// manual file ingestion, and surfaces workflow health summaries.
//
// Keep orchestration logic here: individual workflow steps should live in
// their respective packages while the daemon focuses on startup, shutdown,
// and high level coordination.
package daemon
