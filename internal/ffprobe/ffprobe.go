// Package ffprobe extracts frame geometry and stream layout from media files.
package ffprobe

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// DefaultFPS replaces frame rates that are missing, zero, negative or NaN.
const DefaultFPS = 30.0

// Geometry describes the decoded video a watermark is rendered for.
type Geometry struct {
	// Width and Height are the displayed size, after applying Rotation.
	// The decoder auto-rotates, so this is the size of every decoded frame.
	Width  int
	Height int
	// Rotation is the clockwise display rotation in degrees: 0, 90, 180 or 270.
	Rotation int
	// FPS is always positive and finite.
	FPS float64
	// FrameCount is 0 when neither the container nor the duration reveals it.
	FrameCount int64
	// FrameCountEstimated is set when FrameCount came from duration x fps.
	FrameCountEstimated bool
	DurationSecs        float64
	VideoCodec          string
	PixFmt              string

	HasAudio   bool
	AudioCodec string
}

// ffprobeOutput represents the JSON output from ffprobe.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

type ffprobeStream struct {
	Index        int    `json:"index"`
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	PixFmt       string `json:"pix_fmt"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	NbFrames     string `json:"nb_frames"`
	Duration     string `json:"duration"`
	Channels     int    `json:"channels"`

	Tags         map[string]string `json:"tags"`
	SideDataList []ffprobeSideData `json:"side_data_list"`
}

type ffprobeSideData struct {
	SideDataType string  `json:"side_data_type"`
	Rotation     float64 `json:"rotation"`
}

// runFFprobe executes ffprobe through ffmpeg-go and returns the parsed output.
func runFFprobe(ctx context.Context, inputPath string) (*ffprobeOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := ffmpeg.Probe(inputPath)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseFFprobeOutput([]byte(out))
}

func parseFFprobeOutput(data []byte) (*ffprobeOutput, error) {
	var result ffprobeOutput
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return &result, nil
}

// GetGeometry probes inputPath for the first video stream's size, rate and
// frame count, and whether any audio stream exists.
func GetGeometry(ctx context.Context, inputPath string) (*Geometry, error) {
	probe, err := runFFprobe(ctx, inputPath)
	if err != nil {
		return nil, err
	}
	return extractGeometry(probe, inputPath)
}

func extractGeometry(probe *ffprobeOutput, inputPath string) (*Geometry, error) {
	var video *ffprobeStream
	g := &Geometry{}
	for i := range probe.Streams {
		s := &probe.Streams[i]
		switch s.CodecType {
		case "video":
			if video == nil {
				video = s
			}
		case "audio":
			if !g.HasAudio {
				g.HasAudio = true
				g.AudioCodec = s.CodecName
			}
		}
	}

	if video == nil {
		return nil, fmt.Errorf("no video stream found in %s", inputPath)
	}
	if video.Width <= 0 || video.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions in %s: %dx%d", inputPath, video.Width, video.Height)
	}

	g.Width = video.Width
	g.Height = video.Height
	g.Rotation = streamRotation(video)
	if g.Rotation == 90 || g.Rotation == 270 {
		g.Width, g.Height = g.Height, g.Width
	}
	g.VideoCodec = video.CodecName
	g.PixFmt = video.PixFmt

	g.FPS = NormalizeFPS(pickRate(ParseRate(video.RFrameRate), ParseRate(video.AvgFrameRate)))

	g.DurationSecs = parseDuration(video.Duration)
	if g.DurationSecs <= 0 {
		g.DurationSecs = parseDuration(probe.Format.Duration)
	}

	if n, err := strconv.ParseInt(strings.TrimSpace(video.NbFrames), 10, 64); err == nil && n > 0 {
		g.FrameCount = n
	} else if g.DurationSecs > 0 {
		g.FrameCount = int64(math.Round(g.DurationSecs * g.FPS))
		g.FrameCountEstimated = g.FrameCount > 0
	}

	return g, nil
}

// vfrRatio is how far r_frame_rate may exceed avg_frame_rate before the
// stream is treated as variable rate.
const vfrRatio = 1.5

// pickRate chooses the rate frames are decoded and encoded at. Variable
// rate phone clips often report a large r_frame_rate (120/1) next to a
// real average near 30; the average wins there.
func pickRate(r, avg float64) float64 {
	switch {
	case r <= 0:
		return avg
	case avg > 0 && r > avg*vfrRatio:
		return avg
	default:
		return r
	}
}

// streamRotation reads the display rotation from the display matrix side
// data, falling back to the legacy rotate tag. The display matrix counts
// counter-clockwise, the tag clockwise; the result is clockwise in [0, 360).
func streamRotation(s *ffprobeStream) int {
	deg := 0.0
	found := false
	for _, sd := range s.SideDataList {
		if sd.SideDataType == "Display Matrix" {
			deg, found = -sd.Rotation, true
			break
		}
	}
	if !found {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s.Tags["rotate"]), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			deg = v
		}
	}
	r := int(math.Round(deg/90)) * 90 % 360
	if r < 0 {
		r += 360
	}
	return r
}

// ParseRate parses an ffprobe rational such as "30000/1001" or a plain
// number. Unparseable input, zero denominators and non-finite results give 0.
func ParseRate(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	num, den, ok := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	d := 1.0
	if ok {
		if d, err = strconv.ParseFloat(den, 64); err != nil || d == 0 {
			return 0
		}
	}
	r := n / d
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// NormalizeFPS substitutes DefaultFPS for unusable frame rates.
func NormalizeFPS(fps float64) float64 {
	if math.IsNaN(fps) || math.IsInf(fps, 0) || fps <= 0 {
		return DefaultFPS
	}
	return fps
}

func parseDuration(s string) float64 {
	d, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0
	}
	return d
}
