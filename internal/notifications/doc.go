// Package notifications publishes workflow events to an ntfy topic.
//
// The service degrades to a noop when no topic is configured, so callers can
// publish unconditionally. Per-category switches in configuration silence
// completion, error, or queue events independently.
package notifications
