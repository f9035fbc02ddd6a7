package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// JSONReporter outputs one JSON object per line for machine consumers.
type JSONReporter struct {
	writer             io.Writer
	runID              string
	mu                 sync.Mutex
	lastProgressBucket int
	lastProgressTime   time.Time
}

// NewJSONReporter creates a new JSON reporter that writes to stdout. A
// non-empty runID is stamped on every event.
func NewJSONReporter(runID string) *JSONReporter {
	return NewJSONReporterWithWriter(os.Stdout, runID)
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer, runID string) *JSONReporter {
	return &JSONReporter{
		writer:             w,
		runID:              runID,
		lastProgressBucket: -1,
	}
}

func (r *JSONReporter) timestamp() int64 {
	return time.Now().Unix()
}

func (r *JSONReporter) write(event map[string]interface{}) {
	if r.runID != "" {
		event["run_id"] = r.runID
	}
	event["timestamp"] = r.timestamp()

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) Hardware(summary HardwareSummary) {
	r.write(map[string]interface{}{
		"type":     "hardware",
		"hostname": summary.Hostname,
		"os":       summary.OS,
		"arch":     summary.Arch,
		"num_cpu":  summary.NumCPU,
	})
}

func (r *JSONReporter) Initialization(summary InitializationSummary) {
	r.write(map[string]interface{}{
		"type":              "initialization",
		"input_file":        summary.InputFile,
		"output_file":       summary.OutputFile,
		"duration":          summary.Duration,
		"resolution":        summary.Resolution,
		"frame_rate":        summary.FrameRate,
		"frame_count":       summary.FrameCount,
		"audio_description": summary.AudioDescription,
	})
}

func (r *JSONReporter) StageProgress(update StageProgress) {
	event := map[string]interface{}{
		"type":    "stage_progress",
		"stage":   update.Stage,
		"percent": update.Percent,
		"message": update.Message,
	}
	if update.ETA != nil {
		event["eta_seconds"] = int64(update.ETA.Seconds())
	}
	r.write(event)
}

func (r *JSONReporter) WatermarkConfig(summary WatermarkConfigSummary) {
	r.write(map[string]interface{}{
		"type":          "watermark_config",
		"line1":         summary.Line1,
		"line2":         summary.Line2,
		"font":          summary.FontName,
		"font_size":     summary.FontSize,
		"scalable":      summary.Scalable,
		"target_pct":    summary.TargetPct,
		"achieved_pct":  summary.AchievedPct,
		"iterations":    summary.Iterations,
		"opacity_pct":   summary.OpacityPct,
		"peak_alpha":    summary.PeakAlpha,
		"strength":      summary.Strength,
		"mask_coverage": summary.MaskCoverage,
		"video_codec":   summary.VideoCodec,
	})
}

func (r *JSONReporter) EncodingStarted(totalFrames uint64) {
	r.mu.Lock()
	r.lastProgressBucket = -1
	r.lastProgressTime = time.Time{}
	r.mu.Unlock()

	r.write(map[string]interface{}{
		"type":         "encoding_started",
		"total_frames": totalFrames,
	})
}

func (r *JSONReporter) EncodingProgress(progress ProgressSnapshot) {
	const progressBucketSize = 1
	const minInterval = 5 * time.Second

	bucket := int(progress.Percent) / progressBucketSize
	now := time.Now()

	r.mu.Lock()
	intervalElapsed := r.lastProgressTime.IsZero() || now.Sub(r.lastProgressTime) >= minInterval
	shouldEmit := bucket > r.lastProgressBucket || intervalElapsed || progress.Percent >= 99.0

	if !shouldEmit {
		r.mu.Unlock()
		return
	}

	if bucket > r.lastProgressBucket {
		r.lastProgressBucket = bucket
	}
	r.lastProgressTime = now
	r.mu.Unlock()

	r.write(map[string]interface{}{
		"type":            "encoding_progress",
		"stage":           "watermarking",
		"current_frame":   progress.CurrentFrame,
		"total_frames":    progress.TotalFrames,
		"total_estimated": progress.Estimated,
		"percent":         progress.Percent,
		"fps":             progress.FPS,
		"eta_seconds":     int64(progress.ETA.Seconds()),
	})
}

func (r *JSONReporter) MuxResult(summary MuxSummary) {
	r.write(map[string]interface{}{
		"type":             "mux_result",
		"status":           summary.Status,
		"tool":             summary.Tool,
		"diagnostic":       summary.Diagnostic,
		"source_has_audio": summary.SourceHasAudio,
	})
}

func (r *JSONReporter) ValidationComplete(summary ValidationSummary) {
	steps := make([]map[string]interface{}, len(summary.Steps))
	for i, step := range summary.Steps {
		steps[i] = map[string]interface{}{
			"step":    step.Name,
			"passed":  step.Passed,
			"details": step.Details,
		}
	}

	r.write(map[string]interface{}{
		"type":              "validation_complete",
		"validation_passed": summary.Passed,
		"validation_steps":  steps,
	})
}

func (r *JSONReporter) EncodingComplete(summary EncodingOutcome) {
	r.write(map[string]interface{}{
		"type":             "encoding_complete",
		"input_file":       summary.InputFile,
		"output_file":      summary.OutputFile,
		"output_path":      summary.OutputPath,
		"frames_written":   summary.FramesWritten,
		"original_size":    summary.OriginalSize,
		"output_size":      summary.OutputSize,
		"audio_muxed":      summary.AudioMuxed,
		"average_fps":      summary.AverageFPS,
		"duration_seconds": int64(summary.TotalTime.Seconds()),
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]interface{}{
		"type":    "warning",
		"message": message,
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write(map[string]interface{}{
		"type":       "error",
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
	})
}

func (r *JSONReporter) OperationComplete(message string) {
	r.write(map[string]interface{}{
		"type":    "operation_complete",
		"message": message,
	})
}

func (r *JSONReporter) BatchStarted(info BatchStartInfo) {
	r.write(map[string]interface{}{
		"type":        "batch_started",
		"total_files": info.TotalFiles,
		"file_list":   info.FileList,
		"output_dir":  info.OutputDir,
	})
}

func (r *JSONReporter) FileProgress(context FileProgressContext) {
	r.write(map[string]interface{}{
		"type":         "file_progress",
		"current_file": context.CurrentFile,
		"total_files":  context.TotalFiles,
		"file_name":    context.FileName,
	})
}

func (r *JSONReporter) BatchComplete(summary BatchSummary) {
	results := make([]map[string]interface{}, len(summary.FileResults))
	for i, res := range summary.FileResults {
		results[i] = map[string]interface{}{
			"file":        res.Filename,
			"output_path": res.OutputPath,
			"succeeded":   res.Succeeded,
			"error":       res.Error,
		}
	}

	r.write(map[string]interface{}{
		"type":                    "batch_complete",
		"successful_count":        summary.SuccessfulCount,
		"failed_count":            summary.FailedCount,
		"total_files":             summary.TotalFiles,
		"validation_passed_count": summary.ValidationPassedCount,
		"validation_failed_count": summary.ValidationFailedCount,
		"total_duration_seconds":  int64(summary.TotalDuration.Seconds()),
		"file_results":            results,
	})
}

// Verbose messages are not part of the event stream.
func (r *JSONReporter) Verbose(string) {}
