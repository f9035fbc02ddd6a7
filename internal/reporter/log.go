package reporter

import (
	"github.com/five82/vidmark/internal/logging"
)

// LogReporter records the milestones of a run in the structured log so the
// run log keeps them whatever the console shows. Progress ticks are skipped.
type LogReporter struct {
	NullReporter
	log *logging.Logger
}

// NewLogReporter creates a LogReporter writing to l, or to the global
// logger when l is nil.
func NewLogReporter(l *logging.Logger) *LogReporter {
	if l == nil {
		l = logging.Global()
	}
	return &LogReporter{log: l}
}

func (r *LogReporter) Hardware(s HardwareSummary) {
	r.log.Info("host", "hostname", s.Hostname, "os", s.OS, "arch", s.Arch, "cpus", s.NumCPU)
}

func (r *LogReporter) Initialization(s InitializationSummary) {
	r.log.Info("file opened", "input", s.InputFile, "output", s.OutputFile,
		"resolution", s.Resolution, "fps", s.FrameRate, "frames", s.FrameCount, "audio", s.AudioDescription)
}

func (r *LogReporter) WatermarkConfig(s WatermarkConfigSummary) {
	r.log.Info("watermark rendered", "font", s.FontName, "size", s.FontSize, "scalable", s.Scalable,
		"target_pct", s.TargetPct, "achieved_pct", s.AchievedPct, "iterations", s.Iterations,
		"peak_alpha", s.PeakAlpha, "mask_coverage", s.MaskCoverage)
}

func (r *LogReporter) MuxResult(s MuxSummary) {
	r.log.Info("audio mux", "status", s.Status, "tool", s.Tool, "diagnostic", s.Diagnostic)
}

func (r *LogReporter) ValidationComplete(s ValidationSummary) {
	r.log.Info("validation", "passed", s.Passed, "steps", len(s.Steps))
}

func (r *LogReporter) EncodingComplete(s EncodingOutcome) {
	r.log.Info("file complete", "output", s.OutputPath, "frames", s.FramesWritten,
		"audio", s.AudioMuxed, "elapsed", s.TotalTime, "fps", s.AverageFPS)
}

func (r *LogReporter) Warning(message string) {
	r.log.Warn(message)
}

func (r *LogReporter) Error(err ReporterError) {
	r.log.Error(err.Title, "message", err.Message, "context", err.Context)
}

func (r *LogReporter) BatchComplete(s BatchSummary) {
	r.log.Info("batch complete", "succeeded", s.SuccessfulCount, "failed", s.FailedCount,
		"total", s.TotalFiles, "elapsed", s.TotalDuration)
}

func (r *LogReporter) Verbose(message string) {
	r.log.Debug(message)
}
