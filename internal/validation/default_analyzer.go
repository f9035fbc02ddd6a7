package validation

import (
	"context"

	"github.com/five82/vidmark/internal/ffprobe"
)

// DefaultAnalyzer implements MediaAnalyzer using ffprobe.
type DefaultAnalyzer struct{}

// NewDefaultAnalyzer creates a new DefaultAnalyzer instance.
func NewDefaultAnalyzer() *DefaultAnalyzer {
	return &DefaultAnalyzer{}
}

// GetVideoProperties returns video stream properties using ffprobe.
func (a *DefaultAnalyzer) GetVideoProperties(ctx context.Context, path string) (*AnalyzerVideoProperties, error) {
	geo, err := ffprobe.GetGeometry(ctx, path)
	if err != nil {
		return nil, err
	}
	return &AnalyzerVideoProperties{
		Width:        geo.Width,
		Height:       geo.Height,
		DurationSecs: geo.DurationSecs,
		Codec:        geo.VideoCodec,
	}, nil
}

// GetAudioStreams returns the first audio stream, if any, using ffprobe.
func (a *DefaultAnalyzer) GetAudioStreams(ctx context.Context, path string) ([]AnalyzerAudioStream, error) {
	geo, err := ffprobe.GetGeometry(ctx, path)
	if err != nil {
		return nil, err
	}
	if !geo.HasAudio {
		return nil, nil
	}
	return []AnalyzerAudioStream{{Codec: geo.AudioCodec}}, nil
}
