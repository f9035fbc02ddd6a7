package logging

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupDisabled(t *testing.T) {
	l, err := Setup(t.TempDir(), true, true)
	if err != nil || l != nil {
		t.Fatalf("Setup with noLog = %v, %v", l, err)
	}

	// nil logger must be usable
	l.Info("ignored %d", 1)
	l.Warn("ignored")
	if l.Writer() != io.Discard {
		t.Error("nil logger should discard writes")
	}
	if err := l.Close(); err != nil {
		t.Error(err)
	}
}

func TestSetupWritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, err := Setup(dir, false, false)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	l.Info("processing %s", "a.mp4")
	l.Debug("hidden unless verbose")
	l.Warn("audio not preserved")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(filepath.Base(l.FilePath()), "vidmark_run_") {
		t.Errorf("unexpected log name %s", l.FilePath())
	}

	data, err := os.ReadFile(l.FilePath())
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{"[INFO] vidmark starting", "[INFO] processing a.mp4", "[WARN] audio not preserved"} {
		if !strings.Contains(text, want) {
			t.Errorf("log missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "hidden unless verbose") {
		t.Error("debug line written without verbose")
	}
}

func TestGlobalInit(t *testing.T) {
	prev := Global()
	t.Cleanup(func() { SetGlobal(prev) })

	var buf bytes.Buffer
	Init(LevelDebug, &buf)

	Debug("font resolved", "name", "DejaVuSans-Bold")
	Global().WithComponent("overlay").Info("composed", "size", 216)

	out := buf.String()
	if !strings.Contains(out, "font resolved") || !strings.Contains(out, "name=DejaVuSans-Bold") {
		t.Errorf("missing debug record: %s", out)
	}
	if !strings.Contains(out, "component=overlay") {
		t.Errorf("missing component attr: %s", out)
	}
}

func TestNewDisabled(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf, Enabled: false})
	l.Error("dropped")
	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %q", buf.String())
	}
}
