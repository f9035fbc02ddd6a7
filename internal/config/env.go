package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables recognised by ApplyEnv.
const (
	EnvLine1     = "VIDMARK_LINE1"
	EnvLine2     = "VIDMARK_LINE2"
	EnvCoverage  = "VIDMARK_COVERAGE"
	EnvOpacity   = "VIDMARK_OPACITY"
	EnvStrength  = "VIDMARK_STRENGTH"
	EnvFont      = "VIDMARK_FONT"
	EnvFFmpeg    = "VIDMARK_FFMPEG"
	EnvMux       = "VIDMARK_MUX_BINARY"
	EnvOutputDir = "VIDMARK_OUTPUT_DIR"
)

// LoadEnvFile reads KEY=VALUE pairs from path into the process environment.
// Variables already set win. A missing file is not an error unless required.
func LoadEnvFile(path string, required bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays VIDMARK_* environment variables onto c. Only variables
// that are set are applied; callers apply command-line flags afterwards.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := []struct {
		key string
		dst *string
	}{
		{EnvLine1, &c.Line1},
		{EnvLine2, &c.Line2},
		{EnvFont, &c.FontPath},
		{EnvFFmpeg, &c.FFmpegBinary},
		{EnvMux, &c.MuxBinary},
		{EnvOutputDir, &c.OutputDir},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok {
			*s.dst = v
		}
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{EnvCoverage, &c.CoveragePct},
		{EnvOpacity, &c.OpacityPct},
		{EnvStrength, &c.Strength},
	}
	for _, f := range floats {
		v, ok := lookup(f.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnv, f.key, v)
		}
		*f.dst = parsed
	}

	return nil
}
