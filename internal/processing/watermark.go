package processing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/five82/vidmark/internal/blend"
	"github.com/five82/vidmark/internal/config"
	verrors "github.com/five82/vidmark/internal/errors"
	"github.com/five82/vidmark/internal/ffmpeg"
	"github.com/five82/vidmark/internal/overlay"
	"github.com/five82/vidmark/internal/reporter"
	"github.com/five82/vidmark/internal/typeface"
	"github.com/five82/vidmark/internal/util"
	"github.com/five82/vidmark/internal/validation"
)

// FileResult contains the outcome of watermarking a single file.
type FileResult struct {
	InputPath     string
	OutputPath    string
	Filename      string
	Duration      time.Duration
	FramesWritten uint64
	InputSize     uint64
	OutputSize    uint64
	MuxStatus     ffmpeg.MuxStatus
	AudioMuxed    bool

	// Validated is false when validation was disabled or could not run.
	Validated        bool
	ValidationPassed bool
	ValidationSteps  []validation.ValidationStep

	// Err is set when the file failed; no output exists in that case.
	Err error
}

// Succeeded reports whether a final output file was produced.
func (r FileResult) Succeeded() bool {
	return r.Err == nil
}

// progressTracker turns frame counts into progress snapshots.
type progressTracker struct {
	start     time.Time
	total     uint64
	estimated bool
	interval  uint64
}

func (p *progressTracker) due(frame uint64) bool {
	return frame%p.interval == 0
}

func (p *progressTracker) snapshot(frame uint64) reporter.ProgressSnapshot {
	snap := reporter.ProgressSnapshot{
		CurrentFrame: frame,
		TotalFrames:  p.total,
		Estimated:    p.estimated,
	}
	elapsed := time.Since(p.start).Seconds()
	if elapsed > 0 {
		snap.FPS = float32(float64(frame) / elapsed)
	}
	if p.total > 0 {
		// Estimated totals can be exceeded.
		snap.Percent = util.Clamp(float32(float64(frame)/float64(p.total)*100), 0, 100)
		if snap.FPS > 0 && frame < p.total {
			snap.ETA = time.Duration(float64(p.total-frame) / float64(snap.FPS) * float64(time.Second))
		}
	}
	return snap
}

// processFile runs the full pipeline for one source: open, compose the
// overlay once, blend every frame into a video-only file, mux the audio back
// and validate the result. On error no output file is left behind.
func processFile(ctx context.Context, cfg *config.Config, resolver *typeface.Resolver, inputPath string, rep reporter.Reporter) FileResult {
	start := time.Now()
	result := FileResult{
		InputPath: inputPath,
		Filename:  util.GetFilename(inputPath),
	}

	target := util.ResolveOutputTarget(inputPath, cfg.OutputDir)

	source, err := ffmpeg.OpenSource(ctx, cfg.FFmpegBinary, inputPath)
	if err != nil {
		result.Err = err
		return result
	}
	defer source.Close()
	geo := source.Geometry

	frameCount := "unknown"
	if geo.FrameCount > 0 {
		frameCount = fmt.Sprintf("%d", geo.FrameCount)
		if geo.FrameCountEstimated {
			frameCount = "~" + frameCount
		}
	}
	rep.Initialization(reporter.InitializationSummary{
		InputFile:        result.Filename,
		OutputFile:       util.GetFilename(target.FinalPath),
		Duration:         util.FormatDuration(geo.DurationSecs),
		Resolution:       fmt.Sprintf("%dx%d", geo.Width, geo.Height),
		FrameRate:        util.FormatFPS(geo.FPS) + " fps",
		FrameCount:       frameCount,
		AudioDescription: FormatAudioDescription(geo),
	})

	result.InputSize, _ = util.GetFileSize(inputPath)
	if err := util.CheckDiskSpace(filepath.Dir(target.FinalPath), result.InputSize); err != nil {
		rep.Warning(fmt.Sprintf("Low disk space: %v", err))
	}

	ov, err := overlay.Compose(geo.Width, geo.Height, overlay.Text{
		Line1:       cfg.Line1,
		Line2:       cfg.Line2,
		CoveragePct: cfg.CoveragePct,
		OpacityPct:  cfg.OpacityPct,
	}, resolver)
	if err != nil {
		result.Err = fmt.Errorf("failed to render watermark: %w", err)
		return result
	}
	if ov.Empty() {
		rep.Warning(fmt.Sprintf("%v; frames will pass through unchanged", verrors.NewNoRenderableTextError()))
	}

	mask, err := blend.BuildMask(ov.Image, cfg.Strength)
	if err != nil {
		result.Err = fmt.Errorf("failed to build blend mask: %w", err)
		return result
	}

	rep.WatermarkConfig(reporter.WatermarkConfigSummary{
		Line1:        cfg.Line1,
		Line2:        cfg.Line2,
		FontName:     ov.FontName,
		FontSize:     ov.FontSize,
		Scalable:     ov.Scalable,
		TargetPct:    ov.TargetRatio * 100,
		AchievedPct:  ov.AchievedRatio * 100,
		Iterations:   ov.Iterations,
		OpacityPct:   cfg.OpacityPct,
		PeakAlpha:    ov.Alpha,
		Strength:     cfg.Strength,
		MaskCoverage: mask.Coverage(),
		VideoCodec:   ffmpeg.VideoCodec,
	})
	if !ov.Scalable && !ov.Empty() {
		rep.Verbose(fmt.Sprintf("No scalable font found; using %s at its fixed size", ov.FontName))
	}

	writer, err := ffmpeg.OpenWriter(ctx, cfg.FFmpegBinary, target.VideoOnlyPath, geo.Width, geo.Height, geo.FPS)
	if err != nil {
		result.Err = err
		return result
	}

	frames, err := blendFrames(ctx, cfg, source, writer, mask, rep)
	if err != nil {
		writer.Abort()
		result.Err = err
		return result
	}
	if err := writer.Close(); err != nil {
		writer.Abort()
		result.Err = verrors.NewDestinationUnwritableError(target.VideoOnlyPath, err)
		return result
	}
	_ = source.Close()
	result.FramesWritten = frames

	mux, err := muxAudio(ctx, cfg.MuxBinary, inputPath, target, geo.HasAudio, rep)
	result.MuxStatus = mux.Status
	if err != nil {
		result.Err = err
		return result
	}
	result.OutputPath = target.FinalPath
	result.AudioMuxed = mux.OK() && geo.HasAudio
	result.OutputSize, _ = util.GetFileSize(target.FinalPath)

	if cfg.ValidateOutput {
		validateOutput(ctx, &result, geo.Width, geo.Height, geo.DurationSecs, rep)
	}

	result.Duration = time.Since(start)
	avgFPS := float32(0)
	if secs := result.Duration.Seconds(); secs > 0 {
		avgFPS = float32(float64(frames) / secs)
	}
	rep.EncodingComplete(reporter.EncodingOutcome{
		InputFile:     result.Filename,
		OutputFile:    util.GetFilename(target.FinalPath),
		OutputPath:    target.FinalPath,
		FramesWritten: frames,
		OriginalSize:  result.InputSize,
		OutputSize:    result.OutputSize,
		AudioMuxed:    result.AudioMuxed,
		TotalTime:     result.Duration,
		AverageFPS:    avgFPS,
	})

	return result
}

// blendFrames pumps every decoded frame through the mask into the writer.
// A decode failure after at least one frame ends the loop with a warning;
// the frames written so far form the output.
func blendFrames(ctx context.Context, cfg *config.Config, source *ffmpeg.Source, writer *ffmpeg.Writer, mask *blend.Mask, rep reporter.Reporter) (uint64, error) {
	geo := source.Geometry
	progress := &progressTracker{
		start:     time.Now(),
		total:     uint64(max(geo.FrameCount, 0)),
		estimated: geo.FrameCountEstimated,
		interval:  uint64(cfg.GetProgressInterval()),
	}
	rep.EncodingStarted(progress.total)

	frame := make([]byte, source.FrameSize())
	var n uint64
	for {
		if ctx.Err() != nil {
			return n, verrors.NewCancelledError()
		}

		err := source.ReadFrame(frame)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return n, verrors.NewCancelledError()
			}
			if n == 0 {
				return 0, verrors.NewSourceUnreadableError(source.Path, err)
			}
			rep.Warning(fmt.Sprintf("Decoding stopped after %d frames: %v", source.FramesRead(), err))
			break
		}

		if err := mask.ApplyInPlace(frame); err != nil {
			return n, fmt.Errorf("failed to blend frame %d: %w", n, err)
		}
		if err := writer.WriteFrame(frame); err != nil {
			return n, verrors.NewDestinationUnwritableError(writer.Path, err)
		}
		n++

		if progress.due(n) {
			rep.EncodingProgress(progress.snapshot(n))
		}
	}

	if n == 0 {
		return 0, verrors.NewSourceUnreadableError(source.Path, errors.New("no frames decoded"))
	}
	written := uint64(writer.FramesWritten())
	rep.EncodingProgress(progress.snapshot(written))
	return written, nil
}

// validateOutput probes the finished file and reports the checks. Failures
// are warnings; the file still counts as produced.
func validateOutput(ctx context.Context, result *FileResult, width, height int, durationSecs float64, rep reporter.Reporter) {
	dims := [2]int{width, height}
	expectAudio := result.AudioMuxed
	opts := validation.Options{
		ExpectedCodec:      ffmpeg.VideoCodec,
		ExpectedDimensions: &dims,
		ExpectAudio:        &expectAudio,
	}
	if durationSecs > 0 {
		opts.ExpectedDuration = &durationSecs
	}

	res, err := validation.ValidateOutputVideo(ctx, result.OutputPath, opts)
	if err != nil {
		result.ValidationSteps = []validation.ValidationStep{
			{Name: "Validation", Passed: false, Details: err.Error()},
		}
		rep.Warning(fmt.Sprintf("Could not validate %s: %v", result.OutputPath, err))
	} else {
		result.Validated = true
		result.ValidationPassed = res.IsValid()
		result.ValidationSteps = res.GetValidationSteps()
		if !result.ValidationPassed {
			for _, failure := range res.GetFailures() {
				rep.Warning("Validation: " + failure)
			}
		}
	}

	steps := make([]reporter.ValidationStep, len(result.ValidationSteps))
	for i, s := range result.ValidationSteps {
		steps[i] = reporter.ValidationStep{Name: s.Name, Passed: s.Passed, Details: s.Details}
	}
	rep.ValidationComplete(reporter.ValidationSummary{
		Passed: result.ValidationPassed,
		Steps:  steps,
	})
}
