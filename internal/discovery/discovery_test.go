package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	verrors "github.com/five82/vidmark/internal/errors"
)

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Info(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Debug(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("data"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestFindVideoFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.MP4", "a.mkv", "notes.txt", ".hidden.mp4", "c.WebM", "d.ts")
	if err := os.Mkdir(filepath.Join(dir, "nested.mp4"), 0755); err != nil {
		t.Fatal(err)
	}
	writeFiles(t, filepath.Join(dir, "nested.mp4"), "inner.mp4")

	files, err := FindVideoFiles(dir)
	if err != nil {
		t.Fatalf("FindVideoFiles: %v", err)
	}

	want := []string{"a.mkv", "b.MP4", "c.WebM"}
	if len(files) != len(want) {
		t.Fatalf("got %v, want %v", files, want)
	}
	for i, name := range want {
		if files[i] != filepath.Join(dir, name) {
			t.Errorf("files[%d] = %s, want %s", i, files[i], name)
		}
	}
}

func TestFindVideoFilesNoMatches(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "readme.md", ".x.mp4")

	_, err := FindVideoFiles(dir)
	if !verrors.IsNoFilesFound(err) {
		t.Fatalf("expected no-files-found error, got %v", err)
	}
}

func TestFindVideoFilesNotADirectory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.mp4")

	_, err := FindVideoFiles(filepath.Join(dir, "a.mp4"))
	if !verrors.IsKind(err, verrors.KindPath) {
		t.Fatalf("expected path error, got %v", err)
	}
}

func TestFindVideoFilesWithLogging(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 7; i++ {
		writeFiles(t, dir, fmt.Sprintf("clip%d.mov", i))
	}
	writeFiles(t, dir, "cover.jpg")

	logger := &recordingLogger{}
	result, err := FindVideoFilesWithLogging(dir, logger)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Files) != 7 || result.SkippedCount != 1 {
		t.Fatalf("files=%d skipped=%d", len(result.Files), result.SkippedCount)
	}
	if logger.lines[0] != "Found 7 video file(s)" {
		t.Errorf("first log line = %q", logger.lines[0])
	}
	if last := logger.lines[len(logger.lines)-1]; last != "  ... and 2 more" {
		t.Errorf("last log line = %q", last)
	}
}

func TestResolveInputs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "one.avi", "two.flv")

	single, err := ResolveInputs(filepath.Join(dir, "one.avi"))
	if err != nil || len(single) != 1 {
		t.Fatalf("single file: %v %v", single, err)
	}

	all, err := ResolveInputs(dir)
	if err != nil || len(all) != 2 {
		t.Fatalf("directory: %v %v", all, err)
	}

	if _, err := ResolveInputs(filepath.Join(dir, "missing.mp4")); err == nil {
		t.Error("expected error for missing input")
	}
}

func TestFindVideoFilesSkipsPreviousOutputs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "clip.mp4", "clip_watermarked.mp4", "clip_watermarked_copy.mp4", "clip_watermarked_copy2.mp4", "talk.mov")

	logger := &recordingLogger{}
	result, err := FindVideoFilesWithLogging(dir, logger)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "clip.mp4"), filepath.Join(dir, "talk.mov")}
	if len(result.Files) != len(want) || result.Files[0] != want[0] || result.Files[1] != want[1] {
		t.Errorf("Files = %v, want %v", result.Files, want)
	}
	if result.PreviousOutputs != 3 {
		t.Errorf("PreviousOutputs = %d, want 3", result.PreviousOutputs)
	}

	only := t.TempDir()
	writeFiles(t, only, "a_watermarked.mp4")
	if _, err := FindVideoFiles(only); !verrors.IsNoFilesFound(err) {
		t.Errorf("a directory of outputs only should find nothing, got %v", err)
	}
}
