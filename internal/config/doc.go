// Package config loads, normalizes, and validates scribe configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// HF_TOKEN and SCRIBE_NTFY_TOPIC (optionally seeded from a local .env file).
// The Config type centralizes every knob the daemon and CLI need, so input,
// output, and work directories plus transcriber settings are discovered in
// one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
