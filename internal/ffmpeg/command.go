// Package ffmpeg drives the external ffmpeg binary: decoding a source into
// raw rgb24 frames, encoding frames back into a video-only file, and muxing
// the source audio into the result.
package ffmpeg

import (
	"fmt"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const (
	// PipeTarget is ffmpeg's name for stdin/stdout.
	PipeTarget = "pipe:"

	// RawPixelFormat is the frame layout exchanged over the pipes.
	RawPixelFormat = "rgb24"

	// VideoCodec is the fixed intermediate codec (MPEG-4 Part 2, "mp4v").
	VideoCodec = "mpeg4"

	// VideoQuality is the fixed qscale for VideoCodec; lower is better.
	VideoQuality = "3"

	// OutputPixelFormat is the chroma layout written to the video-only file.
	OutputPixelFormat = "yuv420p"
)

// quietArgs keep ffmpeg's stderr to real problems so it can be surfaced as a
// diagnostic.
var quietArgs = []string{"-hide_banner", "-loglevel", "error"}

// DecodeArgs builds the arguments that stream the first video stream of
// input to stdout as packed rgb24 frames at a constant fps, the same rate
// EncodeArgs is given. Rotated sources are decoded upright.
func DecodeArgs(input string, fps float64) []string {
	return ffmpeg.Input(input).
		Get("v:0").
		Output(PipeTarget, ffmpeg.KwArgs{
			"format":  "rawvideo",
			"pix_fmt": RawPixelFormat,
			"r":       FormatRate(fps),
		}).
		GlobalArgs(append([]string{"-nostdin"}, quietArgs...)...).
		GetArgs()
}

// EncodeArgs builds the arguments that read rgb24 frames of the given
// geometry from stdin and write a silent MP4 to output.
func EncodeArgs(output string, width, height int, fps float64) []string {
	return ffmpeg.Input(PipeTarget, ffmpeg.KwArgs{
		"format":  "rawvideo",
		"pix_fmt": RawPixelFormat,
		"s":       fmt.Sprintf("%dx%d", width, height),
		"r":       FormatRate(fps),
	}).
		Output(output, ffmpeg.KwArgs{
			"c:v":     VideoCodec,
			"q:v":     VideoQuality,
			"pix_fmt": OutputPixelFormat,
			"an":      "",
		}).
		GlobalArgs(quietArgs...).
		OverWriteOutput().
		GetArgs()
}

// MuxArgs builds the arguments that copy the video of videoOnly and the
// first audio stream of source, if there is one, into output without
// re-encoding, with the index moved to the front of the file.
func MuxArgs(videoOnly, source, output string) []string {
	video := ffmpeg.Input(videoOnly).Get("v:0")
	audio := ffmpeg.Input(source).Get("a:0?")
	return ffmpeg.Output([]*ffmpeg.Stream{video, audio}, output, ffmpeg.KwArgs{
		"c":        "copy",
		"movflags": "+faststart",
	}).
		GlobalArgs(append([]string{"-nostdin"}, quietArgs...)...).
		OverWriteOutput().
		GetArgs()
}

// FormatRate renders a frame rate for the -r option without losing
// precision.
func FormatRate(fps float64) string {
	return strconv.FormatFloat(fps, 'f', -1, 64)
}
