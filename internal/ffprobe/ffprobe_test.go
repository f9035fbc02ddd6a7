package ffprobe

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// loadTestData loads a JSON fixture from the testdata directory.
func loadTestData(t *testing.T, filename string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", filename))
	if err != nil {
		t.Fatalf("failed to load test data %s: %v", filename, err)
	}
	return data
}

func geometryFromFixture(t *testing.T, filename string) (*Geometry, error) {
	t.Helper()
	probe, err := parseFFprobeOutput(loadTestData(t, filename))
	if err != nil {
		t.Fatalf("parseFFprobeOutput(%s): %v", filename, err)
	}
	return extractGeometry(probe, filename)
}

func TestExtractGeometry_1080pWithAudio(t *testing.T) {
	g, err := geometryFromFixture(t, "video_1080p_aac.json")
	if err != nil {
		t.Fatal(err)
	}

	if g.Width != 1920 || g.Height != 1080 {
		t.Errorf("size = %dx%d", g.Width, g.Height)
	}
	if math.Abs(g.FPS-29.97) > 0.001 {
		t.Errorf("FPS = %v, want 29.97", g.FPS)
	}
	if g.FrameCount != 360 || g.FrameCountEstimated {
		t.Errorf("FrameCount = %d (estimated=%v), want 360 from container", g.FrameCount, g.FrameCountEstimated)
	}
	if !g.HasAudio || g.AudioCodec != "aac" {
		t.Errorf("audio = %v %q", g.HasAudio, g.AudioCodec)
	}
	if g.VideoCodec != "h264" || g.PixFmt != "yuv420p" {
		t.Errorf("codec = %q pix_fmt = %q", g.VideoCodec, g.PixFmt)
	}
}

func TestExtractGeometry_EstimatesFrameCount(t *testing.T) {
	g, err := geometryFromFixture(t, "video_webm_no_audio.json")
	if err != nil {
		t.Fatal(err)
	}

	if g.HasAudio {
		t.Error("fixture has no audio stream")
	}
	if g.FPS != 25 {
		t.Errorf("FPS = %v", g.FPS)
	}
	// 8.04s from the container at 25fps
	if g.FrameCount != 201 || !g.FrameCountEstimated {
		t.Errorf("FrameCount = %d (estimated=%v), want 201 estimated", g.FrameCount, g.FrameCountEstimated)
	}
}

func TestExtractGeometry_BadFPSDefaults(t *testing.T) {
	g, err := geometryFromFixture(t, "video_bad_fps.json")
	if err != nil {
		t.Fatal(err)
	}
	if g.FPS != DefaultFPS {
		t.Errorf("FPS = %v, want %v", g.FPS, DefaultFPS)
	}
	if g.FrameCount != 0 {
		t.Errorf("FrameCount = %d, want 0 when unknown", g.FrameCount)
	}
	if !g.HasAudio {
		t.Error("expected audio stream")
	}
}

func TestExtractGeometry_DisplayMatrixRotation(t *testing.T) {
	g, err := geometryFromFixture(t, "video_portrait_rotated.json")
	if err != nil {
		t.Fatal(err)
	}
	// Stored landscape, decoded upright.
	if g.Width != 1080 || g.Height != 1920 {
		t.Errorf("size = %dx%d, want 1080x1920", g.Width, g.Height)
	}
	if g.Rotation != 90 {
		t.Errorf("Rotation = %d, want 90", g.Rotation)
	}
	if math.Abs(g.FPS-30) > 0.01 {
		t.Errorf("FPS = %v, want the ~30fps average rather than 120", g.FPS)
	}
}

func TestExtractGeometry_RotateTag(t *testing.T) {
	g, err := geometryFromFixture(t, "video_rotate_tag.json")
	if err != nil {
		t.Fatal(err)
	}
	if g.Width != 720 || g.Height != 1280 || g.Rotation != 270 {
		t.Errorf("got %dx%d rotation %d, want 720x1280 rotation 270", g.Width, g.Height, g.Rotation)
	}
}

func TestStreamRotation(t *testing.T) {
	displayMatrix := func(deg float64) []ffprobeSideData {
		return []ffprobeSideData{{SideDataType: "Display Matrix", Rotation: deg}}
	}
	tests := []struct {
		name   string
		stream ffprobeStream
		want   int
	}{
		{"none", ffprobeStream{}, 0},
		{"matrix -90", ffprobeStream{SideDataList: displayMatrix(-90)}, 90},
		{"matrix 90", ffprobeStream{SideDataList: displayMatrix(90)}, 270},
		{"matrix 180", ffprobeStream{SideDataList: displayMatrix(180)}, 180},
		{"matrix -180", ffprobeStream{SideDataList: displayMatrix(-180)}, 180},
		{"tag 90", ffprobeStream{Tags: map[string]string{"rotate": "90"}}, 90},
		{"tag -90", ffprobeStream{Tags: map[string]string{"rotate": "-90"}}, 270},
		{"tag garbage", ffprobeStream{Tags: map[string]string{"rotate": "sideways"}}, 0},
		{"matrix wins over tag", ffprobeStream{
			Tags:         map[string]string{"rotate": "180"},
			SideDataList: displayMatrix(-90),
		}, 90},
	}
	for _, tt := range tests {
		if got := streamRotation(&tt.stream); got != tt.want {
			t.Errorf("%s: streamRotation = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestPickRate(t *testing.T) {
	tests := []struct {
		r, avg, want float64
	}{
		{30000.0 / 1001, 30000.0 / 1001, 30000.0 / 1001},
		{120, 29.97, 29.97},
		{25, 24.5, 25},
		{0, 24, 24},
		{30, 0, 30},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := pickRate(tt.r, tt.avg); got != tt.want {
			t.Errorf("pickRate(%v, %v) = %v, want %v", tt.r, tt.avg, got, tt.want)
		}
	}
}

func TestExtractGeometry_NoVideoStream(t *testing.T) {
	if _, err := geometryFromFixture(t, "video_no_video_stream.json"); err == nil {
		t.Error("expected error for audio-only file")
	}
}

func TestExtractGeometry_ZeroDimensions(t *testing.T) {
	if _, err := geometryFromFixture(t, "video_zero_dimensions.json"); err == nil {
		t.Error("expected error for 0x0 video")
	}
}

func TestParseFFprobeOutput_MalformedJSON(t *testing.T) {
	if _, err := parseFFprobeOutput([]byte(`{"streams": [`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 30000.0 / 1001},
		{"25", 25},
		{"0/0", 0},
		{"24/0", 0},
		{"", 0},
		{"abc", 0},
		{"NaN", 0},
		{"1/x", 0},
	}
	for _, tt := range tests {
		if got := ParseRate(tt.in); got != tt.want {
			t.Errorf("ParseRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeFPS(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{23.976, 23.976},
		{0, DefaultFPS},
		{-5, DefaultFPS},
		{math.NaN(), DefaultFPS},
		{math.Inf(1), DefaultFPS},
	}
	for _, tt := range tests {
		if got := NormalizeFPS(tt.in); got != tt.want {
			t.Errorf("NormalizeFPS(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGetGeometryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := GetGeometry(ctx, "whatever.mp4"); err == nil {
		t.Error("expected error for cancelled context")
	}
}
