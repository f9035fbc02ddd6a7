package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/input", "/output", "/log")

	if cfg.Input != "/input" {
		t.Errorf("expected Input=/input, got %s", cfg.Input)
	}
	if cfg.OutputDir != "/output" {
		t.Errorf("expected OutputDir=/output, got %s", cfg.OutputDir)
	}
	if cfg.LogDir != "/log" {
		t.Errorf("expected LogDir=/log, got %s", cfg.LogDir)
	}

	// Check defaults
	if cfg.CoveragePct != DefaultCoveragePct {
		t.Errorf("expected CoveragePct=%g, got %g", DefaultCoveragePct, cfg.CoveragePct)
	}
	if cfg.OpacityPct != DefaultOpacityPct {
		t.Errorf("expected OpacityPct=%g, got %g", DefaultOpacityPct, cfg.OpacityPct)
	}
	if cfg.MuxBinary != "ffmpeg" || cfg.FFmpegBinary != "ffmpeg" {
		t.Errorf("unexpected tool defaults %q %q", cfg.FFmpegBinary, cfg.MuxBinary)
	}
	if !cfg.EmbeddedFont || !cfg.ValidateOutput {
		t.Error("embedded font and validation should default on")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name         string
		modify       func(*Config)
		wantSentinel error
	}{
		{
			name:   "line1 only is valid",
			modify: func(c *Config) {},
		},
		{
			name:   "line2 only is valid",
			modify: func(c *Config) { c.Line1 = ""; c.Line2 = "CONFIDENTIAL" },
		},
		{
			name:         "whitespace lines are rejected",
			modify:       func(c *Config) { c.Line1 = "  "; c.Line2 = "\t" },
			wantSentinel: ErrNoWatermarkText,
		},
		{
			name:         "coverage 0 is invalid",
			modify:       func(c *Config) { c.CoveragePct = 0 },
			wantSentinel: ErrInvalidCoverage,
		},
		{
			name:   "coverage 100 is valid",
			modify: func(c *Config) { c.CoveragePct = 100 },
		},
		{
			name:         "coverage 101 is invalid",
			modify:       func(c *Config) { c.CoveragePct = 101 },
			wantSentinel: ErrInvalidCoverage,
		},
		{
			name:         "coverage NaN is invalid",
			modify:       func(c *Config) { c.CoveragePct = math.NaN() },
			wantSentinel: ErrInvalidCoverage,
		},
		{
			name:   "opacity 0 is valid",
			modify: func(c *Config) { c.OpacityPct = 0 },
		},
		{
			name:         "opacity negative is invalid",
			modify:       func(c *Config) { c.OpacityPct = -1 },
			wantSentinel: ErrInvalidOpacity,
		},
		{
			name:         "strength negative is invalid",
			modify:       func(c *Config) { c.Strength = -0.5 },
			wantSentinel: ErrInvalidStrength,
		},
		{
			name:   "strength above one is valid",
			modify: func(c *Config) { c.Strength = 3 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("/in", "", "/log")
			cfg.Line1 = "SAMPLE"
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantSentinel == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantSentinel) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantSentinel)
			}
		})
	}
}

func TestGetProgressInterval(t *testing.T) {
	cfg := NewConfig("", "", "")
	if got := cfg.GetProgressInterval(); got != DefaultProgressInterval {
		t.Errorf("got %d", got)
	}
	cfg.ProgressInterval = 0
	if got := cfg.GetProgressInterval(); got != DefaultProgressInterval {
		t.Errorf("zero interval should fall back, got %d", got)
	}
	cfg.ProgressInterval = 5
	if got := cfg.GetProgressInterval(); got != 5 {
		t.Errorf("got %d", got)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvLine1:    "DRAFT",
		EnvCoverage: "75",
		EnvOpacity:  "12.5",
		EnvMux:      "/opt/ffmpeg/bin/ffmpeg",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := NewConfig("", "", "")
	cfg.Line2 = "keep"
	if err := cfg.applyEnv(lookup); err != nil {
		t.Fatal(err)
	}

	if cfg.Line1 != "DRAFT" || cfg.Line2 != "keep" {
		t.Errorf("lines = %q %q", cfg.Line1, cfg.Line2)
	}
	if cfg.CoveragePct != 75 || cfg.OpacityPct != 12.5 {
		t.Errorf("coverage=%g opacity=%g", cfg.CoveragePct, cfg.OpacityPct)
	}
	if cfg.MuxBinary != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("MuxBinary = %q", cfg.MuxBinary)
	}
	if cfg.Strength != DefaultStrength {
		t.Errorf("unset strength changed to %g", cfg.Strength)
	}
}

func TestApplyEnvInvalidNumber(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == EnvOpacity {
			return "ten", true
		}
		return "", false
	}
	cfg := NewConfig("", "", "")
	if err := cfg.applyEnv(lookup); !errors.Is(err, ErrInvalidEnv) {
		t.Errorf("expected ErrInvalidEnv, got %v", err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vidmark.env")
	if err := os.WriteFile(path, []byte("VIDMARK_TEST_ONLY_LINE=from file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("VIDMARK_TEST_ONLY_LINE") })

	if err := LoadEnvFile(path, true); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv("VIDMARK_TEST_ONLY_LINE"); got != "from file" {
		t.Errorf("got %q", got)
	}

	missing := filepath.Join(dir, "absent.env")
	if err := LoadEnvFile(missing, false); err != nil {
		t.Errorf("optional missing file should be ignored: %v", err)
	}
	if err := LoadEnvFile(missing, true); err == nil {
		t.Error("required missing file should fail")
	}
}
