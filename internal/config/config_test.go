package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scribe/internal/config"
)

func TestLoadDefaultConfigExpandsPathsAndHonorsEnv(t *testing.T) {
	t.Setenv("HF_TOKEN", "hf-test-token")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantInput := filepath.Join(tempHome, "scribe", "input")
	if cfg.Paths.InputDir != wantInput {
		t.Fatalf("unexpected input dir: got %q want %q", cfg.Paths.InputDir, wantInput)
	}
	wantWork := filepath.Join(tempHome, ".local", "share", "scribe", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: %q", cfg.Paths.WorkDir)
	}
	if cfg.Transcriber.HFToken != "hf-test-token" {
		t.Fatalf("expected HF token from env, got %q", cfg.Transcriber.HFToken)
	}
	if cfg.Transcriber.VADMethod != "silero" {
		t.Fatalf("expected silero VAD default, got %q", cfg.Transcriber.VADMethod)
	}
	if !cfg.Transcriber.ExtractAudio {
		t.Fatal("expected audio extraction enabled by default")
	}
	if cfg.Ingest.MaxCollisionAttempts != 1000 {
		t.Fatalf("unexpected collision cap: %d", cfg.Ingest.MaxCollisionAttempts)
	}
	if cfg.Workflow.QueuePollInterval != 5 {
		t.Fatalf("unexpected poll interval: %d", cfg.Workflow.QueuePollInterval)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %q %q", cfg.Logging.Format, cfg.Logging.Level)
	}
}

func TestLoadParsesFileAndNormalizes(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := strings.Join([]string{
		`[paths]`,
		`input_dir = "~/media/in"`,
		`output_dir = "~/media/out"`,
		``,
		`[transcriber]`,
		`model = "large-v3-turbo"`,
		`timeout_seconds = -5`,
		``,
		`[logging]`,
		`format = "JSON"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.InputDir != filepath.Join(tempHome, "media", "in") {
		t.Fatalf("input dir not expanded: %q", cfg.Paths.InputDir)
	}
	if cfg.Transcriber.Model != "large-v3-turbo" {
		t.Fatalf("unexpected model: %q", cfg.Transcriber.Model)
	}
	if cfg.Transcriber.TimeoutSeconds != 3600 {
		t.Fatalf("expected timeout to fall back to default, got %d", cfg.Transcriber.TimeoutSeconds)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected lowercased format, got %q", cfg.Logging.Format)
	}
}

func TestMediaExtensionSetNormalizesEntries(t *testing.T) {
	cfg := config.Default()
	cfg.Ingest.MediaExtensions = []string{"MP4", ".Mkv", " ", ".mp3"}

	set := cfg.MediaExtensionSet()
	for _, want := range []string{".mp4", ".mkv", ".mp3"} {
		if _, ok := set[want]; !ok {
			t.Fatalf("expected %s in extension set, got %v", want, set)
		}
	}
	if len(set) != 3 {
		t.Fatalf("unexpected set size: %d", len(set))
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[transcriber]") {
		t.Fatal("sample config missing transcriber section")
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error when overwriting existing config")
	}
}

func TestValidateRejectsMissingDirs(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.InputDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for empty input dir")
	}
}
