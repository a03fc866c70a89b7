// Package services holds cross-cutting helpers shared by workflow stages:
// sentinel error markers with stage-aware wrapping, failure status mapping,
// and context annotation for item, stage, and correlation identifiers.
package services
