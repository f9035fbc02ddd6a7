package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	verrors "github.com/five82/vidmark/internal/errors"
)

func toolOnPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func requireFFmpeg(t *testing.T) {
	t.Helper()
	if !toolOnPath("ffmpeg") || !toolOnPath("ffprobe") {
		t.Skip("ffmpeg/ffprobe not installed")
	}
}

// makeClip renders a short synthetic clip with a test pattern and a tone.
func makeClip(t *testing.T, path string, frames int, withAudio bool) {
	t.Helper()
	args := []string{"-hide_banner", "-loglevel", "error", "-y",
		"-f", "lavfi", "-i", "testsrc=size=64x48:rate=10"}
	if withAudio {
		args = append(args, "-f", "lavfi", "-i", "sine=frequency=440:sample_rate=8000")
	}
	args = append(args, "-frames:v", strconv.Itoa(frames), "-c:v", "mpeg4", "-pix_fmt", "yuv420p")
	if withAudio {
		args = append(args, "-c:a", "aac", "-shortest")
	}
	args = append(args, path)
	if out, err := exec.Command("ffmpeg", args...).CombinedOutput(); err != nil {
		t.Skipf("cannot synthesise test clip: %v: %s", err, out)
	}
}

func TestSourceWriterRoundTrip(t *testing.T) {
	requireFFmpeg(t)
	ctx := context.Background()
	dir := t.TempDir()
	src := filepath.Join(dir, "clip.mp4")
	makeClip(t, src, 12, false)

	source, err := OpenSource(ctx, "ffmpeg", src)
	if err != nil {
		t.Fatalf("OpenSource: %v", err)
	}
	defer source.Close()

	if source.Geometry.Width != 64 || source.Geometry.Height != 48 {
		t.Fatalf("geometry %dx%d", source.Geometry.Width, source.Geometry.Height)
	}

	out := filepath.Join(dir, ".clip.video-only.mp4")
	w, err := OpenWriter(ctx, "ffmpeg", out, 64, 48, source.Geometry.FPS)
	if err != nil {
		t.Fatalf("OpenWriter: %v", err)
	}

	buf := make([]byte, source.FrameSize())
	for {
		err := source.ReadFrame(buf)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("ReadFrame: %v", err)
		}
		if err := w.WriteFrame(buf); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if source.FramesRead() != 12 || w.FramesWritten() != 12 {
		t.Errorf("read %d, wrote %d, want 12", source.FramesRead(), w.FramesWritten())
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		t.Fatalf("video-only output missing: %v", err)
	}

	// Reading past the end keeps returning EOF.
	if err := source.ReadFrame(buf); !errors.Is(err, io.EOF) {
		t.Errorf("ReadFrame after end = %v", err)
	}
}

func TestOpenSourceUnreadable(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "notes.mp4")
	if err := os.WriteFile(bogus, []byte("plain text"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := OpenSource(context.Background(), "ffmpeg", bogus)
	if !verrors.IsKind(err, verrors.KindSourceUnreadable) {
		t.Fatalf("expected source-unreadable, got %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("opening a bad source created files: %v", entries)
	}
}

func TestOpenWriterUnwritable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing-dir", "out.mp4")

	_, err := OpenWriter(context.Background(), "ffmpeg", path, 64, 48, 30)
	if !verrors.IsKind(err, verrors.KindDestinationUnwritable) {
		t.Fatalf("expected destination-unwritable, got %v", err)
	}
}

func TestOpenWriterMissingBinaryRemovesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.mp4")

	_, err := OpenWriter(context.Background(), "vidmark-no-encoder-0xdeadbeef", path, 64, 48, 30)
	if !verrors.IsKind(err, verrors.KindDestinationUnwritable) {
		t.Fatalf("expected destination-unwritable, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("failed writer left its file behind")
	}
}

func TestWriterAbortRemovesFile(t *testing.T) {
	requireFFmpeg(t)
	path := filepath.Join(t.TempDir(), "partial.mp4")
	w, err := OpenWriter(context.Background(), "ffmpeg", path, 16, 16, 25)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFrame(bytes.Repeat([]byte{7}, 16*16*3)); err != nil {
		t.Fatal(err)
	}
	w.Abort()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Abort should delete the partial file")
	}
	if err := w.WriteFrame(make([]byte, 16*16*3)); err == nil {
		t.Error("writes after Abort should fail")
	}
}

func TestMuxRoundTrip(t *testing.T) {
	requireFFmpeg(t)
	ctx := context.Background()
	dir := t.TempDir()
	src := filepath.Join(dir, "talk.mp4")
	makeClip(t, src, 10, true)

	// The source itself serves as a valid video-only input.
	out := filepath.Join(dir, "talk_watermarked.mp4")
	res := Mux(ctx, "ffmpeg", src, src, out)
	if !res.OK() {
		t.Fatalf("mux failed: %s (%v)", res.Diagnostic, res.Err)
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		t.Fatalf("muxed output missing: %v", err)
	}
}
