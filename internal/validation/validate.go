package validation

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// durationToleranceSecs is the maximum allowed difference in duration between
// source and output.
const durationToleranceSecs = 1.0

// Options describes what the output is expected to look like. Nil fields
// skip the corresponding check.
type Options struct {
	ExpectedCodec      string
	ExpectedDimensions *[2]int
	ExpectedDuration   *float64
	// ExpectAudio is true when the source had audio and the mux succeeded.
	ExpectAudio *bool
}

// ValidateOutputVideo checks a finished output using the DefaultAnalyzer.
func ValidateOutputVideo(ctx context.Context, outputPath string, opts Options) (*Result, error) {
	return ValidateWithAnalyzer(ctx, NewDefaultAnalyzer(), outputPath, opts)
}

// validateDimensions checks that dimensions match expected values.
func validateDimensions(actualW, actualH, expectedW, expectedH int) (bool, string) {
	if actualW == expectedW && actualH == expectedH {
		return true, fmt.Sprintf("Dimensions match: %dx%d", actualW, actualH)
	}
	return false, fmt.Sprintf("Dimension mismatch: got %dx%d, expected %dx%d",
		actualW, actualH, expectedW, expectedH)
}

// validateDuration checks that duration is within acceptable tolerance.
func validateDuration(actual, expected float64) (bool, string) {
	diff := math.Abs(actual - expected)

	if diff <= durationToleranceSecs {
		return true, fmt.Sprintf("Duration matches source (%.1fs)", actual)
	}
	return false, fmt.Sprintf("Duration mismatch: got %.1fs, expected %.1fs (diff: %.1fs)",
		actual, expected, diff)
}

// validateCodec checks the output video codec name.
func validateCodec(actual, expected string) (bool, string) {
	if expected == "" {
		if actual == "" {
			return true, "Codec not checked"
		}
		return true, actual
	}
	if strings.EqualFold(actual, expected) {
		return true, actual
	}
	if actual == "" {
		return false, "Unknown codec, expected " + expected
	}
	return false, fmt.Sprintf("Expected %s, got %s", expected, actual)
}

// validateAudio checks audio presence against the expectation.
func validateAudio(streams []AnalyzerAudioStream, expect *bool) (bool, []string, string) {
	codecs := make([]string, 0, len(streams))
	for _, s := range streams {
		codecs = append(codecs, strings.ToLower(s.Codec))
	}

	var message string
	switch len(streams) {
	case 0:
		message = "No audio track"
	case 1:
		message = "Audio track is " + codecs[0]
	default:
		message = fmt.Sprintf("%d audio tracks: %s", len(streams), strings.Join(codecs, ", "))
	}

	if expect == nil {
		return true, codecs, message
	}
	if *expect && len(streams) == 0 {
		return false, codecs, "Expected source audio, found none"
	}
	if !*expect && len(streams) > 0 {
		return false, codecs, "Expected no audio, found " + strings.Join(codecs, ", ")
	}
	return true, codecs, message
}

// ValidateWithAnalyzer performs validation using a MediaAnalyzer interface.
// This allows for testing without external tool dependencies.
func ValidateWithAnalyzer(ctx context.Context, analyzer MediaAnalyzer, outputPath string, opts Options) (*Result, error) {
	result := &Result{
		IsDimensionsCorrect: true,
		IsDurationCorrect:   true,
		IsAudioCorrect:      true,
	}

	outputProps, err := analyzer.GetVideoProperties(ctx, outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get output video properties: %w", err)
	}

	result.CodecName = outputProps.Codec
	result.IsCodecCorrect, result.CodecMessage = validateCodec(outputProps.Codec, opts.ExpectedCodec)

	if opts.ExpectedDimensions != nil {
		result.ActualDimensions = &[2]int{outputProps.Width, outputProps.Height}
		result.ExpectedDimensions = opts.ExpectedDimensions
		result.IsDimensionsCorrect, result.DimensionsMessage = validateDimensions(
			outputProps.Width, outputProps.Height,
			opts.ExpectedDimensions[0], opts.ExpectedDimensions[1],
		)
	} else {
		result.DimensionsMessage = fmt.Sprintf("%dx%d", outputProps.Width, outputProps.Height)
	}

	// Durations a container does not report are skipped rather than failed.
	if opts.ExpectedDuration != nil && *opts.ExpectedDuration > 0 && outputProps.DurationSecs > 0 {
		actualDur := outputProps.DurationSecs
		result.ActualDuration = &actualDur
		result.ExpectedDuration = opts.ExpectedDuration
		result.IsDurationCorrect, result.DurationMessage = validateDuration(actualDur, *opts.ExpectedDuration)
	} else {
		result.DurationMessage = "Duration validation skipped"
	}

	audioStreams, err := analyzer.GetAudioStreams(ctx, outputPath)
	if err != nil {
		result.IsAudioCorrect = false
		result.AudioMessage = "Failed to get audio info"
	} else {
		result.IsAudioCorrect, result.AudioCodecs, result.AudioMessage = validateAudio(audioStreams, opts.ExpectAudio)
	}

	return result, nil
}
