// Package processing runs the watermark pipeline over one or more videos.
package processing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/five82/vidmark/internal/config"
	verrors "github.com/five82/vidmark/internal/errors"
	"github.com/five82/vidmark/internal/logging"
	"github.com/five82/vidmark/internal/reporter"
	"github.com/five82/vidmark/internal/typeface"
	"github.com/five82/vidmark/internal/util"
)

// BatchResult tallies a run.
type BatchResult struct {
	Files     []FileResult
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// OK reports whether at least one output was produced.
func (b *BatchResult) OK() bool {
	return b.Succeeded > 0
}

// ProcessVideos watermarks each file in order. Per-file failures are
// reported and counted but never stop the batch; only cancellation does.
// The returned error is non-nil for an empty file list or cancellation.
func ProcessVideos(
	ctx context.Context,
	cfg *config.Config,
	filesToProcess []string,
	rep reporter.Reporter,
) (*BatchResult, error) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}

	batch := &BatchResult{}
	if len(filesToProcess) == 0 {
		err := verrors.NewNoFilesFoundError(cfg.Input)
		rep.Error(reporterError(err, cfg.Input))
		return batch, err
	}

	batchStart := time.Now()
	log := logging.Global().WithComponent("processing")

	sysInfo := util.GetSystemInfo()
	rep.Hardware(reporter.HardwareSummary{
		Hostname: sysInfo.Hostname,
		OS:       sysInfo.OS,
		Arch:     sysInfo.Arch,
		NumCPU:   sysInfo.NumCPU,
	})

	if cfg.OutputDir != "" {
		if err := util.EnsureDirectory(cfg.OutputDir); err != nil {
			coreErr := verrors.NewDestinationUnwritableError(cfg.OutputDir, err)
			rep.Error(reporterError(coreErr, cfg.OutputDir))
			return batch, coreErr
		}
	}

	if len(filesToProcess) > 1 {
		fileNames := make([]string, 0, len(filesToProcess))
		for _, f := range filesToProcess {
			fileNames = append(fileNames, util.GetFilename(f))
		}
		outputDir := cfg.OutputDir
		if outputDir == "" {
			outputDir = "(next to each source)"
		}
		rep.BatchStarted(reporter.BatchStartInfo{
			TotalFiles: len(filesToProcess),
			FileList:   fileNames,
			OutputDir:  outputDir,
		})
	}

	if !util.ToolAvailable(cfg.MuxBinary) {
		rep.Warning(fmt.Sprintf("Mux tool %s not found in PATH; outputs will have no audio", cfg.MuxBinary))
	}

	// The font search is independent of the video, so one resolver serves
	// the whole batch.
	resolver := typeface.NewDefaultResolver(cfg.FontPath, cfg.EmbeddedFont)

	var runErr error
	for fileIdx, inputPath := range filesToProcess {
		if ctx.Err() != nil {
			rep.Warning(fmt.Sprintf("Watermarking cancelled: %v", ctx.Err()))
			runErr = verrors.NewCancelledError()
			break
		}

		if len(filesToProcess) > 1 {
			rep.FileProgress(reporter.FileProgressContext{
				CurrentFile: fileIdx + 1,
				TotalFiles:  len(filesToProcess),
				FileName:    util.GetFilename(inputPath),
			})
		}

		result := processFile(ctx, cfg, resolver, inputPath, rep)
		batch.Files = append(batch.Files, result)

		if result.Err != nil {
			batch.Failed++
			log.Info("file failed", "file", inputPath, "error", result.Err)
			if verrors.IsCancelled(result.Err) || errors.Is(result.Err, context.Canceled) {
				rep.Warning("Watermarking cancelled")
				runErr = verrors.NewCancelledError()
				break
			}
			rep.Error(reporterError(result.Err, inputPath))
			continue
		}

		batch.Succeeded++
		log.Info("file watermarked", "file", inputPath, "output", result.OutputPath,
			"frames", result.FramesWritten, "mux", result.MuxStatus.String())
	}
	batch.Duration = time.Since(batchStart)

	summarize(batch, len(filesToProcess), rep)
	return batch, runErr
}

func summarize(batch *BatchResult, total int, rep reporter.Reporter) {
	if total > 1 {
		fileResults := make([]reporter.FileResult, 0, len(batch.Files))
		passed, failed := 0, 0
		for _, r := range batch.Files {
			fr := reporter.FileResult{
				Filename:   r.Filename,
				OutputPath: r.OutputPath,
				Succeeded:  r.Succeeded(),
			}
			if r.Err != nil {
				fr.Error = r.Err.Error()
			}
			fileResults = append(fileResults, fr)
			if r.Validated {
				if r.ValidationPassed {
					passed++
				} else {
					failed++
				}
			}
		}

		rep.BatchComplete(reporter.BatchSummary{
			SuccessfulCount:       batch.Succeeded,
			FailedCount:           batch.Failed,
			TotalFiles:            total,
			TotalDuration:         batch.Duration,
			FileResults:           fileResults,
			ValidationPassedCount: passed,
			ValidationFailedCount: failed,
		})
	}

	switch {
	case batch.Succeeded == 0:
		rep.Warning("No files were successfully watermarked")
	case total == 1:
		rep.OperationComplete(fmt.Sprintf("Successfully watermarked %s", batch.Files[0].Filename))
	default:
		rep.OperationComplete(fmt.Sprintf("Watermarked %d of %d files", batch.Succeeded, total))
	}
}

// reporterError maps an error onto a user-facing report.
func reporterError(err error, path string) reporter.ReporterError {
	rerr := reporter.ReporterError{
		Title:   "Watermarking Error",
		Message: err.Error(),
		Context: fmt.Sprintf("File: %s", path),
	}

	var coreErr *verrors.CoreError
	if !errors.As(err, &coreErr) {
		return rerr
	}
	rerr.Title = coreErr.Kind.String()
	switch coreErr.Kind {
	case verrors.KindSourceUnreadable:
		rerr.Suggestion = "Check that the file is a playable video and ffmpeg/ffprobe are installed"
	case verrors.KindDestinationUnwritable:
		rerr.Suggestion = "Check that the output directory exists and is writable"
	case verrors.KindNoFilesFound:
		rerr.Suggestion = "Supported extensions: mp4, avi, mov, mkv, wmv, flv, webm, m4v"
	case verrors.KindIO:
		rerr.Suggestion = "Check free disk space and permissions"
	}
	return rerr
}
