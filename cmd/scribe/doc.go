// Package main hosts the Scribe CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the foreground daemon, one-shot batch
// processing, queue maintenance, configuration scaffolding, and notification
// checks. Commands operate on the queue database directly; SQLite busy
// retries keep that safe while a daemon runs alongside.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
