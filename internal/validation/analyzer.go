// Package validation provides post-write checks on watermarked outputs.
package validation

import "context"

// MediaAnalyzer provides media analysis capabilities for validation.
// This interface allows validation logic to be tested without external tools.
type MediaAnalyzer interface {
	// GetVideoProperties returns video stream properties for the given file.
	GetVideoProperties(ctx context.Context, path string) (*AnalyzerVideoProperties, error)

	// GetAudioStreams returns audio stream information for the given file.
	GetAudioStreams(ctx context.Context, path string) ([]AnalyzerAudioStream, error)
}

// AnalyzerVideoProperties contains video stream information needed for validation.
type AnalyzerVideoProperties struct {
	Width        int
	Height       int
	DurationSecs float64
	Codec        string
}

// AnalyzerAudioStream contains audio stream information.
type AnalyzerAudioStream struct {
	Codec string
}
