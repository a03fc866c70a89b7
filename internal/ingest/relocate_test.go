package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestRelocateMovesFile(t *testing.T) {
	inputDir := t.TempDir()
	outputRoot := t.TempDir()
	source := writeSource(t, inputDir, "clip.mp4")
	item := NewMediaItem(source, outputRoot)

	dest, err := Relocate(item, 0)
	if err != nil {
		t.Fatalf("Relocate failed: %v", err)
	}
	if dest != filepath.Join(outputRoot, "clip", "clip.mp4") {
		t.Fatalf("unexpected destination %s", dest)
	}
	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Fatalf("source should be gone, stat err=%v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(data) != "media payload" {
		t.Fatalf("content mismatch: %q", data)
	}
}

func TestRelocateAppendsCollisionSuffix(t *testing.T) {
	inputDir := t.TempDir()
	outputRoot := t.TempDir()
	source := writeSource(t, inputDir, "a.mp4")
	item := NewMediaItem(source, outputRoot)

	if err := os.MkdirAll(item.DestDir, 0o755); err != nil {
		t.Fatalf("mkdir dest: %v", err)
	}
	existing := filepath.Join(item.DestDir, "a.mp4")
	if err := os.WriteFile(existing, []byte("original"), 0o644); err != nil {
		t.Fatalf("write existing: %v", err)
	}

	dest, err := Relocate(item, 0)
	if err != nil {
		t.Fatalf("Relocate failed: %v", err)
	}
	if dest != filepath.Join(item.DestDir, "a (1).mp4") {
		t.Fatalf("expected suffixed name, got %s", dest)
	}

	untouched, err := os.ReadFile(existing)
	if err != nil {
		t.Fatalf("read existing: %v", err)
	}
	if string(untouched) != "original" {
		t.Fatal("existing destination file must not be overwritten")
	}
}

func TestRelocateCollisionExhaustion(t *testing.T) {
	inputDir := t.TempDir()
	outputRoot := t.TempDir()
	source := writeSource(t, inputDir, "a.mp4")
	item := NewMediaItem(source, outputRoot)

	if err := os.MkdirAll(item.DestDir, 0o755); err != nil {
		t.Fatalf("mkdir dest: %v", err)
	}
	for _, name := range []string{"a.mp4", "a (1).mp4", "a (2).mp4"} {
		if err := os.WriteFile(filepath.Join(item.DestDir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write collision file: %v", err)
		}
	}

	_, err := Relocate(item, 2)
	if !errors.Is(err, ErrCollisionExhausted) {
		t.Fatalf("expected ErrCollisionExhausted, got %v", err)
	}
	if _, statErr := os.Stat(source); statErr != nil {
		t.Fatalf("source must survive exhaustion: %v", statErr)
	}
}

func TestEnsureDestDirIdempotentUnderConcurrency(t *testing.T) {
	outputRoot := t.TempDir()
	item := NewMediaItem(filepath.Join(outputRoot, "x.mp4"), outputRoot)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- EnsureDestDir(item)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("EnsureDestDir failed: %v", err)
		}
	}

	info, err := os.Stat(item.DestDir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected destination directory, err=%v", err)
	}
}

func TestClaimDestPathRacersPickDistinctNames(t *testing.T) {
	dir := t.TempDir()
	want := filepath.Join(dir, "b.mp4")

	const racers = 4
	results := make(chan string, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			path, err := claimDestPath(want, 100)
			if err != nil {
				t.Errorf("claimDestPath failed: %v", err)
				return
			}
			results <- path
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for path := range results {
		if seen[path] {
			t.Fatalf("two claimants received the same path %s", path)
		}
		seen[path] = true
	}
	if len(seen) != racers {
		t.Fatalf("expected %d distinct claims, got %d", racers, len(seen))
	}
}
