package ingest

import (
	"path/filepath"
	"strings"
)

// MediaItem is one unit of relocation work: a source media file plus the
// destination directory its artifacts consolidate into.
type MediaItem struct {
	// SourcePath is the absolute path to the original media file. It is
	// never deleted before a verified copy exists at the destination.
	SourcePath string

	// Basename is the filename stem used for the destination directory and
	// derived artifact names.
	Basename string

	// TranscriptPath is where a pre-existing transcript for this item would
	// live. Its presence short-circuits transcription.
	TranscriptPath string

	// DestDir is the per-item directory under the output root that receives
	// the relocated media and transcript artifacts.
	DestDir string
}

// NewMediaItem builds an item for a source file under the given output root.
// The destination layout is <outputRoot>/<basename>/ with the transcript
// expected at <basename>.srt inside it.
func NewMediaItem(sourcePath, outputRoot string) MediaItem {
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	destDir := filepath.Join(outputRoot, stem)
	return MediaItem{
		SourcePath:     sourcePath,
		Basename:       stem,
		TranscriptPath: filepath.Join(destDir, stem+".srt"),
		DestDir:        destDir,
	}
}

// DestPath returns the destination path the source file relocates to before
// any collision suffixing.
func (m MediaItem) DestPath() string {
	return filepath.Join(m.DestDir, filepath.Base(m.SourcePath))
}
