package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"scribe/internal/queue"
	"scribe/internal/services"
)

func TestWrapTagsMarkerAndBuildsDetail(t *testing.T) {
	cause := errors.New("exit status 1")
	err := services.Wrap(services.ErrExternalTool, "transcribing", "run whisperx", "WhisperX invocation failed", cause)

	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	msg := err.Error()
	for _, part := range []string{"transcribing", "run whisperx", "WhisperX invocation failed", "exit status 1"} {
		if !strings.Contains(msg, part) {
			t.Fatalf("message missing %q: %q", part, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "organizing", "", "relocation failed", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestFailureStatusAlwaysFails(t *testing.T) {
	cases := []error{
		services.Wrap(services.ErrValidation, "s", "o", "m", nil),
		services.Wrap(services.ErrExternalTool, "s", "o", "m", nil),
		errors.New("plain"),
	}
	for _, err := range cases {
		if got := services.FailureStatus(err); got != queue.StatusFailed {
			t.Fatalf("expected failed status for %v, got %s", err, got)
		}
	}
}

func TestIsTimeout(t *testing.T) {
	if !services.IsTimeout(context.DeadlineExceeded) {
		t.Fatal("expected deadline exceeded to count as timeout")
	}
	if !services.IsTimeout(services.Wrap(services.ErrTimeout, "transcribing", "run", "timed out", nil)) {
		t.Fatal("expected wrapped timeout marker to count as timeout")
	}
	if services.IsTimeout(errors.New("other")) {
		t.Fatal("unexpected timeout classification")
	}
}
