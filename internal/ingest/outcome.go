package ingest

import (
	"fmt"
	"io"
)

// FailureKind classifies terminal item failures.
type FailureKind string

const (
	// FailureTranscription covers external transcriber errors and timeouts.
	FailureTranscription FailureKind = "transcription"
	// FailureFilesystem covers copy, create, and delete errors during
	// relocation. The source file survives these.
	FailureFilesystem FailureKind = "filesystem"
	// FailureCollision is reported when the numeric-suffix search for a free
	// destination name exhausts its attempt cap.
	FailureCollision FailureKind = "collision"
)

// OutcomeKind identifies the terminal state of one processed item.
type OutcomeKind string

const (
	OutcomeSkipped OutcomeKind = "skipped"
	OutcomeDone    OutcomeKind = "done"
	OutcomeFailed  OutcomeKind = "failed"
)

// Outcome is the terminal result of processing one MediaItem.
type Outcome struct {
	Kind OutcomeKind

	// DestPath is set for Skipped and Done outcomes: the final location of
	// the relocated media file.
	DestPath string

	// Failure and Message are set for Failed outcomes.
	Failure FailureKind
	Message string
}

// Skipped reports a relocation that reused an existing transcript.
func Skipped(destPath string) Outcome {
	return Outcome{Kind: OutcomeSkipped, DestPath: destPath}
}

// Done reports a successful transcription followed by relocation.
func Done(destPath string) Outcome {
	return Outcome{Kind: OutcomeDone, DestPath: destPath}
}

// Failed reports a terminal item failure. The source file is untouched for
// transcription failures and never lost for relocation failures.
func Failed(kind FailureKind, message string) Outcome {
	return Outcome{Kind: OutcomeFailed, Failure: kind, Message: message}
}

// Reporter emits exactly one status line per processed item. No transcript
// content ever appears on this stream.
type Reporter struct {
	out io.Writer
}

// NewReporter wraps the given writer, typically stdout.
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Report writes the terminal status line for an item.
func (r *Reporter) Report(item MediaItem, outcome Outcome) {
	if r == nil || r.out == nil {
		return
	}
	fmt.Fprintln(r.out, FormatOutcome(item, outcome))
}

// FormatOutcome renders the single-line status record for an outcome.
func FormatOutcome(item MediaItem, outcome Outcome) string {
	switch outcome.Kind {
	case OutcomeSkipped:
		return fmt.Sprintf("SKIPPED: %s -> COPIED TO: %s", item.Basename, outcome.DestPath)
	case OutcomeDone:
		return fmt.Sprintf("DONE: %s -> COPIED TO: %s", item.Basename, outcome.DestPath)
	case OutcomeFailed:
		reason := "Transcription failed"
		if outcome.Failure == FailureFilesystem || outcome.Failure == FailureCollision {
			reason = "Relocation failed"
		}
		return fmt.Sprintf("ERROR: %s -> %s: %s", item.Basename, reason, outcome.Message)
	default:
		return fmt.Sprintf("ERROR: %s -> unknown outcome", item.Basename)
	}
}
