package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"scribe/internal/fileutil"
)

// ErrCollisionExhausted is returned when every suffixed candidate name up to
// the attempt cap is already taken at the destination.
var ErrCollisionExhausted = errors.New("collision suffix attempts exhausted")

const defaultMaxCollisionAttempts = 1000

// EnsureDestDir creates the destination directory and its parents. Safe to
// call repeatedly and concurrently.
func EnsureDestDir(item MediaItem) error {
	if err := os.MkdirAll(item.DestDir, 0o755); err != nil {
		return fmt.Errorf("create destination %s: %w", item.DestDir, err)
	}
	return nil
}

// Relocate moves the item's source file into its destination directory using
// copy, verify, then delete. The source survives any copy failure; both
// copies exist briefly on success. Name collisions at the destination get a
// numeric suffix rather than an overwrite.
func Relocate(item MediaItem, maxAttempts int) (string, error) {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxCollisionAttempts
	}

	if err := EnsureDestDir(item); err != nil {
		return "", err
	}

	destPath, err := claimDestPath(item.DestPath(), maxAttempts)
	if err != nil {
		return "", err
	}

	if err := fileutil.CopyFileVerified(item.SourcePath, destPath); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("copy %s: %w", filepath.Base(item.SourcePath), err)
	}
	if err := os.Remove(item.SourcePath); err != nil {
		return "", fmt.Errorf("remove source after copy: %w", err)
	}
	return destPath, nil
}

// claimDestPath reserves a free destination name by creating it exclusively.
// Concurrent claimants racing for the same name see the create fail and move
// to the next suffix, so two items never pick the same path.
func claimDestPath(want string, maxAttempts int) (string, error) {
	ext := filepath.Ext(want)
	stem := strings.TrimSuffix(want, ext)

	for attempt := 0; attempt <= maxAttempts; attempt++ {
		candidate := want
		if attempt > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, attempt, ext)
		}
		f, err := os.OpenFile(candidate, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				continue
			}
			return "", fmt.Errorf("claim destination %s: %w", candidate, err)
		}
		f.Close()
		return candidate, nil
	}
	return "", fmt.Errorf("%w after %d attempts for %s", ErrCollisionExhausted, maxAttempts, filepath.Base(want))
}
