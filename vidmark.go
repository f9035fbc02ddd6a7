// Package vidmark burns a semi-transparent, centered text watermark of up to
// two lines into every frame of a video and copies the original audio back
// into the result.
//
// Basic usage:
//
//	wm, err := vidmark.New(
//	    vidmark.WithText("CONFIDENTIAL", "review copy"),
//	    vidmark.WithOpacity(15),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := wm.Watermark(ctx, "talk.mp4", "", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Wrote", result.OutputFile)
package vidmark

import (
	"context"
	"fmt"

	"github.com/five82/vidmark/internal/config"
	"github.com/five82/vidmark/internal/discovery"
	verrors "github.com/five82/vidmark/internal/errors"
	"github.com/five82/vidmark/internal/processing"
	"github.com/five82/vidmark/internal/reporter"
)

// Watermarker is the main entry point for watermarking videos.
type Watermarker struct {
	config *config.Config
}

// Result contains the result of a single file.
type Result struct {
	InputFile        string
	OutputFile       string
	FramesWritten    uint64
	AudioMuxed       bool
	MuxStatus        string
	ValidationPassed bool
}

// BatchResult contains the result of a batch run.
type BatchResult struct {
	Results               []Result
	Failures              map[string]error
	SuccessfulCount       int
	FailedCount           int
	TotalFiles            int
	ValidationPassedCount int
}

// Option configures the watermarker.
type Option func(*config.Config)

// New creates a Watermarker with the given options. At least one text line
// must be set.
func New(opts ...Option) (*Watermarker, error) {
	cfg := config.NewConfig("", "", "")

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, verrors.NewConfigError("invalid watermark options", err)
	}

	return &Watermarker{config: cfg}, nil
}

// WithText sets the two watermark lines. Either may be empty.
func WithText(line1, line2 string) Option {
	return func(c *config.Config) {
		c.Line1 = line1
		c.Line2 = line2
	}
}

// WithCoverage sets the target width of the widest line as a percentage of
// the frame width (1-100).
func WithCoverage(pct float64) Option {
	return func(c *config.Config) {
		c.CoveragePct = pct
	}
}

// WithOpacity sets the text opacity percentage (0-100).
func WithOpacity(pct float64) Option {
	return func(c *config.Config) {
		c.OpacityPct = pct
	}
}

// WithStrength multiplies the overlay alpha when blending. 1 leaves it as is.
func WithStrength(s float64) Option {
	return func(c *config.Config) {
		c.Strength = s
	}
}

// WithFont tries the font file at path before the built-in candidates.
func WithFont(path string) Option {
	return func(c *config.Config) {
		c.FontPath = path
	}
}

// WithoutEmbeddedFont drops the bundled font from the candidates, so hosts
// without system fonts fall back to the fixed-size bitmap face.
func WithoutEmbeddedFont() Option {
	return func(c *config.Config) {
		c.EmbeddedFont = false
	}
}

// WithFFmpeg sets the binary used to decode and encode frames.
func WithFFmpeg(binary string) Option {
	return func(c *config.Config) {
		c.FFmpegBinary = binary
	}
}

// WithMuxBinary sets the tool that copies the source audio into the output.
// When it is not on PATH the output is written without audio.
func WithMuxBinary(binary string) Option {
	return func(c *config.Config) {
		c.MuxBinary = binary
	}
}

// WithoutValidation skips probing the finished file.
func WithoutValidation() Option {
	return func(c *config.Config) {
		c.ValidateOutput = false
	}
}

// WithProgressInterval sets how many frames pass between progress events.
func WithProgressInterval(frames int) Option {
	return func(c *config.Config) {
		c.ProgressInterval = frames
	}
}

func (w *Watermarker) run(ctx context.Context, inputs []string, outputDir string, rep reporter.Reporter) (*processing.BatchResult, error) {
	cfg := *w.config
	cfg.OutputDir = outputDir
	if len(inputs) == 1 {
		cfg.Input = inputs[0]
	}

	if rep == nil {
		rep = reporter.NullReporter{}
	}
	return processing.ProcessVideos(ctx, &cfg, inputs, rep)
}

func singleResult(batch *processing.BatchResult, err error) (*Result, error) {
	if err != nil {
		return nil, err
	}
	if len(batch.Files) == 0 {
		return nil, fmt.Errorf("no files were watermarked")
	}
	r := batch.Files[0]
	if r.Err != nil {
		return nil, r.Err
	}
	res := toResult(r)
	return &res, nil
}

func toResult(r processing.FileResult) Result {
	return Result{
		InputFile:        r.InputPath,
		OutputFile:       r.OutputPath,
		FramesWritten:    r.FramesWritten,
		AudioMuxed:       r.AudioMuxed,
		MuxStatus:        r.MuxStatus.String(),
		ValidationPassed: r.ValidationPassed,
	}
}

// WatermarkWithReporter watermarks a single video using a custom Reporter.
// This provides direct access to all pipeline events, unlike Watermark which
// uses the EventHandler abstraction. An empty outputDir writes next to the
// source.
func (w *Watermarker) WatermarkWithReporter(ctx context.Context, input, outputDir string, rep Reporter) (*Result, error) {
	return singleResult(w.run(ctx, []string{input}, outputDir, rep))
}

// Watermark watermarks a single video. An empty outputDir writes next to the
// source.
func (w *Watermarker) Watermark(ctx context.Context, input, outputDir string, handler EventHandler) (*Result, error) {
	var rep reporter.Reporter
	if handler != nil {
		rep = newEventReporter(handler)
	}
	return singleResult(w.run(ctx, []string{input}, outputDir, rep))
}

// WatermarkBatch watermarks videos one after another. A failing file is
// recorded in Failures and does not stop the batch.
func (w *Watermarker) WatermarkBatch(ctx context.Context, inputs []string, outputDir string, handler EventHandler) (*BatchResult, error) {
	var rep reporter.Reporter
	if handler != nil {
		rep = newEventReporter(handler)
	}

	batch, err := w.run(ctx, inputs, outputDir, rep)
	if batch == nil {
		return nil, err
	}

	out := &BatchResult{
		Failures:   make(map[string]error),
		TotalFiles: len(inputs),
	}
	for _, r := range batch.Files {
		if r.Err != nil {
			out.Failures[r.InputPath] = r.Err
			out.FailedCount++
			continue
		}
		out.Results = append(out.Results, toResult(r))
		out.SuccessfulCount++
		if r.ValidationPassed {
			out.ValidationPassedCount++
		}
	}
	return out, err
}

// FindVideos lists the video files directly inside dir, sorted by name.
func FindVideos(dir string) ([]string, error) {
	return discovery.FindVideoFiles(dir)
}
