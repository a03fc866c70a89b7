// Package logging builds slog loggers with console and JSON handlers plus
// helpers for standardized structured fields. Console output folds component
// and item identifiers into the line header; JSON output uses lowercase level
// names and RFC3339 timestamps. WithContext derives item/stage/correlation
// attributes from a context annotated via the services package.
package logging
