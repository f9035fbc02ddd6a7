// Package config provides configuration types and defaults for vidmark.
package config

import (
	"fmt"
	"math"
	"strings"
)

// Default constants
const (
	// DefaultCoveragePct is the share of the frame width the widest line spans.
	DefaultCoveragePct float64 = 50

	// DefaultOpacityPct is the peak alpha of the rendered text.
	DefaultOpacityPct float64 = 10

	// DefaultStrength multiplies the overlay alpha when building the blend mask.
	DefaultStrength float64 = 1.0

	// MinCoveragePct is the smallest accepted coverage.
	MinCoveragePct float64 = 1

	// MaxCoveragePct is the largest accepted coverage.
	MaxCoveragePct float64 = 100

	// MaxOpacityPct is the largest accepted opacity.
	MaxOpacityPct float64 = 100

	// DefaultFFmpegBinary decodes and encodes frames.
	DefaultFFmpegBinary = "ffmpeg"

	// DefaultMuxBinary copies the source audio into the watermarked video.
	DefaultMuxBinary = "ffmpeg"

	// DefaultProgressInterval is how many frames pass between progress reports.
	DefaultProgressInterval = 30
)

// Config holds all configuration for a watermarking run.
type Config struct {
	// Input/output paths
	Input     string // File or directory
	OutputDir string // Optional, defaults to each source's directory
	LogDir    string

	// Watermark text
	Line1 string
	Line2 string

	// Overlay appearance
	CoveragePct float64
	OpacityPct  float64
	Strength    float64

	// FontPath is tried before the built-in font candidates.
	FontPath string
	// EmbeddedFont keeps the bundled Go Bold face in the font candidates.
	EmbeddedFont bool

	// External tools
	FFmpegBinary string
	MuxBinary    string

	// Processing options
	ProgressInterval int
	ValidateOutput   bool
}

// NewConfig creates a new Config with default values.
func NewConfig(input, outputDir, logDir string) *Config {
	return &Config{
		Input:            input,
		OutputDir:        outputDir,
		LogDir:           logDir,
		CoveragePct:      DefaultCoveragePct,
		OpacityPct:       DefaultOpacityPct,
		Strength:         DefaultStrength,
		EmbeddedFont:     true,
		FFmpegBinary:     DefaultFFmpegBinary,
		MuxBinary:        DefaultMuxBinary,
		ProgressInterval: DefaultProgressInterval,
		ValidateOutput:   true,
	}
}

// HasText reports whether at least one watermark line has visible content.
func (c *Config) HasText() bool {
	return strings.TrimSpace(c.Line1) != "" || strings.TrimSpace(c.Line2) != ""
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !c.HasText() {
		return ErrNoWatermarkText
	}

	if math.IsNaN(c.CoveragePct) || c.CoveragePct < MinCoveragePct || c.CoveragePct > MaxCoveragePct {
		return fmt.Errorf("%w: must be %g-%g, got %g", ErrInvalidCoverage, MinCoveragePct, MaxCoveragePct, c.CoveragePct)
	}

	if math.IsNaN(c.OpacityPct) || c.OpacityPct < 0 || c.OpacityPct > MaxOpacityPct {
		return fmt.Errorf("%w: must be 0-%g, got %g", ErrInvalidOpacity, MaxOpacityPct, c.OpacityPct)
	}

	if math.IsNaN(c.Strength) || math.IsInf(c.Strength, 0) || c.Strength < 0 {
		return fmt.Errorf("%w: must be a non-negative number, got %g", ErrInvalidStrength, c.Strength)
	}

	return nil
}

// GetProgressInterval returns the progress interval, never less than one frame.
func (c *Config) GetProgressInterval() int {
	if c.ProgressInterval < 1 {
		return DefaultProgressInterval
	}
	return c.ProgressInterval
}
