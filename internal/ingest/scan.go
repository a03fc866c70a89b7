package ingest

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// DiscoverMedia walks the input root and returns media file paths whose
// extensions appear in the provided set. Results sort lexically so batch
// order is stable across runs.
func DiscoverMedia(root string, extensions map[string]struct{}) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if strings.HasPrefix(entry.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if IsMediaFile(path, extensions) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	sort.Strings(found)
	return found, nil
}

// IsMediaFile reports whether a path carries one of the configured media
// extensions. Matching ignores case.
func IsMediaFile(path string, extensions map[string]struct{}) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	_, ok := extensions[ext]
	return ok
}
