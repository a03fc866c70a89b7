package transcriber

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scribe/internal/textutil"
)

// extractAudioTrack converts the media file to a mono 16 kHz WAV in the work
// directory. The returned cleanup removes the intermediate file.
func (c *CLI) extractAudioTrack(ctx context.Context, mediaPath string) (string, func(), error) {
	workDir := c.workDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create work dir: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	wavPath := filepath.Join(workDir, textutil.SanitizeFileName(stem)+".wav")

	args := []string{
		"-i", mediaPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-y",
		wavPath,
	}
	cmd := commandContext(ctx, c.ffmpegBinary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(wavPath)
		if ctx.Err() != nil {
			return "", nil, fmt.Errorf("audio extraction timed out: %w", ctx.Err())
		}
		return "", nil, fmt.Errorf("ffmpeg audio extraction failed: %w: %s", err, lastOutputLine(output))
	}

	cleanup := func() { os.Remove(wavPath) }
	return wavPath, cleanup, nil
}
