// Package reporter provides progress reporting interfaces and implementations.
package reporter

import "time"

// HardwareSummary contains host information.
type HardwareSummary struct {
	Hostname string
	OS       string
	Arch     string
	NumCPU   int
}

// InitializationSummary describes the current file before processing.
type InitializationSummary struct {
	InputFile        string
	OutputFile       string
	Duration         string
	Resolution       string
	FrameRate        string
	FrameCount       string
	AudioDescription string
}

// WatermarkConfigSummary describes the rendered overlay and blend settings.
type WatermarkConfigSummary struct {
	Line1        string
	Line2        string
	FontName     string
	FontSize     float64
	Scalable     bool
	TargetPct    float64
	AchievedPct  float64
	Iterations   int
	OpacityPct   float64
	PeakAlpha    uint8
	Strength     float64
	MaskCoverage float64
	VideoCodec   string
}

// ProgressSnapshot contains frame loop progress.
type ProgressSnapshot struct {
	CurrentFrame uint64
	// TotalFrames is 0 when unknown; Percent is then 0.
	TotalFrames uint64
	Percent     float32
	FPS         float32
	ETA         time.Duration
	Estimated   bool
}

// MuxSummary reports how audio re-attachment went.
type MuxSummary struct {
	Status         string
	Tool           string
	Diagnostic     string
	SourceHasAudio bool
}

// ValidationSummary contains validation results.
type ValidationSummary struct {
	Passed bool
	Steps  []ValidationStep
}

// ValidationStep represents a single validation check.
type ValidationStep struct {
	Name    string
	Passed  bool
	Details string
}

// EncodingOutcome contains the final per-file result.
type EncodingOutcome struct {
	InputFile     string
	OutputFile    string
	OutputPath    string
	FramesWritten uint64
	OriginalSize  uint64
	OutputSize    uint64
	AudioMuxed    bool
	TotalTime     time.Duration
	AverageFPS    float32
}

// ReporterError contains error information.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}

// BatchStartInfo contains batch start metadata.
type BatchStartInfo struct {
	TotalFiles int
	FileList   []string
	OutputDir  string
}

// FileProgressContext contains current file index within a batch.
type FileProgressContext struct {
	CurrentFile int
	TotalFiles  int
	FileName    string
}

// BatchSummary contains batch completion information.
type BatchSummary struct {
	SuccessfulCount       int
	FailedCount           int
	TotalFiles            int
	TotalDuration         time.Duration
	FileResults           []FileResult
	ValidationPassedCount int
	ValidationFailedCount int
}

// FileResult contains the per-file outcome.
type FileResult struct {
	Filename   string
	OutputPath string
	Succeeded  bool
	Error      string
}

// StageProgress represents a generic stage update.
type StageProgress struct {
	Stage   string
	Percent float32
	Message string
	ETA     *time.Duration
}
