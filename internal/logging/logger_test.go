package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scribe/internal/logging"
	"scribe/internal/services"
)

func TestNewWritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "scribe.log")
	logger, err := logging.New(logging.Options{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("item relocated", logging.String("dest", "/tmp/out"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "item relocated") {
		t.Fatalf("log missing message: %q", content)
	}
	if !strings.Contains(content, "dest: /tmp/out") {
		t.Fatalf("log missing field: %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestJSONFormatProducesStructuredOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "scribe.log")
	logger, err := logging.New(logging.Options{
		Level:       "debug",
		Format:      "json",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Debug("transcription started", logging.Int64("item_id", 7))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, `"level":"debug"`) {
		t.Fatalf("expected lowercase level in json output: %q", content)
	}
	if !strings.Contains(content, `"item_id":7`) {
		t.Fatalf("expected item_id field: %q", content)
	}
}

func TestWithContextAddsItemFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "scribe.log")
	logger, err := logging.New(logging.Options{
		Format:      "json",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := services.WithItemID(context.Background(), 42)
	ctx = services.WithStage(ctx, "transcribing")

	logging.WithContext(ctx, logger).Info("stage started")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, `"item_id":42`) {
		t.Fatalf("expected item_id from context: %q", content)
	}
	if !strings.Contains(content, `"stage":"transcribing"`) {
		t.Fatalf("expected stage from context: %q", content)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("should not panic", logging.Error(nil))
}
