// Package transcriber wraps the WhisperX command line tool, invoked through
// uvx so the Python toolchain stays out of the daemon's runtime dependencies.
package transcriber

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"scribe/internal/config"
)

var commandContext = exec.CommandContext

// Result describes the transcript artifacts WhisperX produced.
type Result struct {
	SRTPath  string
	TXTPath  string
	JSONPath string
}

// Client defines transcription behaviour.
type Client interface {
	Transcribe(ctx context.Context, mediaPath, outputDir string) (Result, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithUVXBinary overrides the default uvx binary name.
func WithUVXBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.uvxBinary = binary
		}
	}
}

// WithFFmpegBinary overrides the default ffmpeg binary name.
func WithFFmpegBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.ffmpegBinary = binary
		}
	}
}

// CLI invokes WhisperX for transcription, optionally extracting a mono
// 16 kHz audio track first so large video containers never reach the model.
type CLI struct {
	uvxBinary    string
	ffmpegBinary string
	model        string
	language     string
	vadMethod    string
	hfToken      string
	cudaEnabled  bool
	extractAudio bool
	workDir      string
	timeout      time.Duration
}

// NewCLI constructs a client from transcriber configuration.
func NewCLI(cfg *config.Config, opts ...Option) *CLI {
	tc := cfg.Transcriber
	cli := &CLI{
		uvxBinary:    tc.UVXBinary,
		ffmpegBinary: tc.FFmpegBinary,
		model:        tc.Model,
		language:     tc.Language,
		vadMethod:    tc.VADMethod,
		hfToken:      tc.HFToken,
		cudaEnabled:  tc.CUDAEnabled,
		extractAudio: tc.ExtractAudio,
		workDir:      cfg.Paths.WorkDir,
		timeout:      time.Duration(tc.TimeoutSeconds) * time.Second,
	}
	if cli.uvxBinary == "" {
		cli.uvxBinary = "uvx"
	}
	if cli.ffmpegBinary == "" {
		cli.ffmpegBinary = "ffmpeg"
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Transcribe runs WhisperX against the media file and writes subtitle, text,
// and JSON artifacts into outputDir. A configured timeout bounds the whole
// invocation; expiry surfaces as an ordinary transcription error.
func (c *CLI) Transcribe(ctx context.Context, mediaPath, outputDir string) (Result, error) {
	if mediaPath == "" {
		return Result{}, errors.New("media path required")
	}
	if outputDir == "" {
		return Result{}, errors.New("output directory required")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create output dir: %w", err)
	}

	input := mediaPath
	if c.extractAudio {
		wavPath, cleanup, err := c.extractAudioTrack(ctx, mediaPath)
		if err != nil {
			return Result{}, err
		}
		defer cleanup()
		input = wavPath
	}

	args := c.whisperxArgs(input, outputDir)
	cmd := commandContext(ctx, c.uvxBinary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, fmt.Errorf("whisperx timed out: %w", ctx.Err())
		}
		return Result{}, fmt.Errorf("whisperx failed: %w: %s", err, lastOutputLine(output))
	}

	stem := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	result := Result{
		SRTPath:  filepath.Join(outputDir, stem+".srt"),
		TXTPath:  filepath.Join(outputDir, stem+".txt"),
		JSONPath: filepath.Join(outputDir, stem+".json"),
	}
	if _, err := os.Stat(result.SRTPath); err != nil {
		return Result{}, fmt.Errorf("whisperx produced no subtitle file at %s", result.SRTPath)
	}
	return result, nil
}

// HealthCheck verifies the external binaries are resolvable.
func (c *CLI) HealthCheck() error {
	if _, err := exec.LookPath(c.uvxBinary); err != nil {
		return fmt.Errorf("uvx not found: %w", err)
	}
	if c.extractAudio {
		if _, err := exec.LookPath(c.ffmpegBinary); err != nil {
			return fmt.Errorf("ffmpeg not found: %w", err)
		}
	}
	return nil
}

func (c *CLI) whisperxArgs(input, outputDir string) []string {
	args := []string{
		"whisperx",
		input,
		"--model", c.model,
		"--output_dir", outputDir,
		"--output_format", "all",
	}
	if c.language != "" {
		args = append(args, "--language", c.language)
	}
	if c.vadMethod != "" {
		args = append(args, "--vad_method", c.vadMethod)
	}
	if c.hfToken != "" {
		args = append(args, "--hf_token", c.hfToken)
	}
	if c.cudaEnabled {
		args = append(args, "--device", "cuda")
	} else {
		args = append(args, "--device", "cpu", "--compute_type", "int8")
	}
	return args
}

func lastOutputLine(output []byte) string {
	trimmed := strings.TrimSpace(string(output))
	if trimmed == "" {
		return "no output"
	}
	lines := strings.Split(trimmed, "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

var _ Client = (*CLI)(nil)
