// Package ingest implements the per-item pipeline that carries a media file
// from discovery to its consolidated destination directory.
//
// For each item the orchestrator checks whether a transcript already exists,
// invokes the external transcriber only when it does not, and then relocates
// the source file next to its artifacts. Relocation is copy, verify, then
// delete rather than rename so it behaves the same when input and output live
// on different devices; the source file is removed only after the copy is
// confirmed byte-identical. Destination name collisions resolve with numeric
// suffixes, claimed with exclusive creates so concurrent items cannot pick
// the same name.
//
// Failures are item-scoped: a failed item reports a terminal error line and
// leaves its source file in place, and the batch continues.
package ingest
