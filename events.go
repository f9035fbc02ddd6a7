package vidmark

import (
	"time"

	"github.com/five82/vidmark/internal/reporter"
)

// Reporter receives every pipeline event. Use it with
// WatermarkWithReporter for full access; EventHandler is the simpler API.
type Reporter = reporter.Reporter

// Reporter payload types, re-exported for Reporter implementations.
type (
	HardwareSummary        = reporter.HardwareSummary
	InitializationSummary  = reporter.InitializationSummary
	StageProgress          = reporter.StageProgress
	WatermarkConfigSummary = reporter.WatermarkConfigSummary
	ProgressSnapshot       = reporter.ProgressSnapshot
	MuxSummary             = reporter.MuxSummary
	ValidationSummary      = reporter.ValidationSummary
	EncodingOutcome        = reporter.EncodingOutcome
	ReporterError          = reporter.ReporterError
	BatchStartInfo         = reporter.BatchStartInfo
	FileProgressContext    = reporter.FileProgressContext
	BatchSummary           = reporter.BatchSummary
)

// NullReporter discards every event.
type NullReporter = reporter.NullReporter

// EventType identifies an Event.
type EventType string

const (
	EventTypeWatermarkConfig    EventType = "watermark_config"
	EventTypeEncodingProgress   EventType = "encoding_progress"
	EventTypeMuxResult          EventType = "mux_result"
	EventTypeValidationComplete EventType = "validation_complete"
	EventTypeEncodingComplete   EventType = "encoding_complete"
	EventTypeWarning            EventType = "warning"
	EventTypeError              EventType = "error"
	EventTypeBatchComplete      EventType = "batch_complete"
)

// Event is implemented by every event passed to an EventHandler.
type Event interface {
	Type() EventType
	Timestamp() int64
}

// EventHandler receives events. Its error is ignored; processing continues.
type EventHandler func(Event) error

// BaseEvent carries the fields shared by all events.
type BaseEvent struct {
	EventType EventType `json:"type"`
	Time      int64     `json:"timestamp"`
}

// Type returns the event type.
func (e BaseEvent) Type() EventType { return e.EventType }

// Timestamp returns the Unix time the event was created.
func (e BaseEvent) Timestamp() int64 { return e.Time }

// NewTimestamp returns the current Unix time.
func NewTimestamp() int64 { return time.Now().Unix() }

func newBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, Time: NewTimestamp()}
}

// WatermarkConfigEvent describes the overlay rendered for a file.
type WatermarkConfigEvent struct {
	BaseEvent
	FontName    string  `json:"font"`
	FontSize    float64 `json:"font_size"`
	AchievedPct float64 `json:"achieved_pct"`
	PeakAlpha   uint8   `json:"peak_alpha"`
}

// EncodingProgressEvent reports frame loop progress.
type EncodingProgressEvent struct {
	BaseEvent
	CurrentFrame uint64  `json:"current_frame"`
	TotalFrames  uint64  `json:"total_frames"`
	Percent      float32 `json:"percent"`
	FPS          float32 `json:"fps"`
	ETASeconds   int64   `json:"eta_seconds"`
}

// MuxResultEvent reports whether audio was re-attached.
type MuxResultEvent struct {
	BaseEvent
	Status     string `json:"status"`
	Tool       string `json:"tool"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

// ValidationStep is one post-write check.
type ValidationStep struct {
	Step    string `json:"step"`
	Passed  bool   `json:"passed"`
	Details string `json:"details"`
}

// ValidationCompleteEvent reports post-write validation.
type ValidationCompleteEvent struct {
	BaseEvent
	ValidationPassed bool             `json:"validation_passed"`
	ValidationSteps  []ValidationStep `json:"validation_steps"`
}

// EncodingCompleteEvent reports a finished file.
type EncodingCompleteEvent struct {
	BaseEvent
	OutputFile    string `json:"output_file"`
	OutputPath    string `json:"output_path"`
	FramesWritten uint64 `json:"frames_written"`
	AudioMuxed    bool   `json:"audio_muxed"`
}

// WarningEvent carries a non-fatal problem.
type WarningEvent struct {
	BaseEvent
	Message string `json:"message"`
}

// ErrorEvent carries a per-file failure.
type ErrorEvent struct {
	BaseEvent
	Title      string `json:"title"`
	Message    string `json:"message"`
	Context    string `json:"context"`
	Suggestion string `json:"suggestion"`
}

// BatchCompleteEvent summarizes a multi-file run.
type BatchCompleteEvent struct {
	BaseEvent
	SuccessfulCount int `json:"successful_count"`
	FailedCount     int `json:"failed_count"`
	TotalFiles      int `json:"total_files"`
}

// eventReporter adapts EventHandler to the Reporter interface.
type eventReporter struct {
	reporter.NullReporter
	handler EventHandler
}

func newEventReporter(handler EventHandler) *eventReporter {
	return &eventReporter{handler: handler}
}

func (r *eventReporter) WatermarkConfig(s reporter.WatermarkConfigSummary) {
	_ = r.handler(WatermarkConfigEvent{
		BaseEvent:   newBase(EventTypeWatermarkConfig),
		FontName:    s.FontName,
		FontSize:    s.FontSize,
		AchievedPct: s.AchievedPct,
		PeakAlpha:   s.PeakAlpha,
	})
}

func (r *eventReporter) EncodingProgress(p reporter.ProgressSnapshot) {
	_ = r.handler(EncodingProgressEvent{
		BaseEvent:    newBase(EventTypeEncodingProgress),
		CurrentFrame: p.CurrentFrame,
		TotalFrames:  p.TotalFrames,
		Percent:      p.Percent,
		FPS:          p.FPS,
		ETASeconds:   int64(p.ETA.Seconds()),
	})
}

func (r *eventReporter) MuxResult(s reporter.MuxSummary) {
	_ = r.handler(MuxResultEvent{
		BaseEvent:  newBase(EventTypeMuxResult),
		Status:     s.Status,
		Tool:       s.Tool,
		Diagnostic: s.Diagnostic,
	})
}

func (r *eventReporter) ValidationComplete(s reporter.ValidationSummary) {
	steps := make([]ValidationStep, len(s.Steps))
	for i, step := range s.Steps {
		steps[i] = ValidationStep{
			Step:    step.Name,
			Passed:  step.Passed,
			Details: step.Details,
		}
	}
	_ = r.handler(ValidationCompleteEvent{
		BaseEvent:        newBase(EventTypeValidationComplete),
		ValidationPassed: s.Passed,
		ValidationSteps:  steps,
	})
}

func (r *eventReporter) EncodingComplete(s reporter.EncodingOutcome) {
	_ = r.handler(EncodingCompleteEvent{
		BaseEvent:     newBase(EventTypeEncodingComplete),
		OutputFile:    s.OutputFile,
		OutputPath:    s.OutputPath,
		FramesWritten: s.FramesWritten,
		AudioMuxed:    s.AudioMuxed,
	})
}

func (r *eventReporter) Warning(message string) {
	_ = r.handler(WarningEvent{
		BaseEvent: newBase(EventTypeWarning),
		Message:   message,
	})
}

func (r *eventReporter) Error(e reporter.ReporterError) {
	_ = r.handler(ErrorEvent{
		BaseEvent:  newBase(EventTypeError),
		Title:      e.Title,
		Message:    e.Message,
		Context:    e.Context,
		Suggestion: e.Suggestion,
	})
}

func (r *eventReporter) BatchComplete(s reporter.BatchSummary) {
	_ = r.handler(BatchCompleteEvent{
		BaseEvent:       newBase(EventTypeBatchComplete),
		SuccessfulCount: s.SuccessfulCount,
		FailedCount:     s.FailedCount,
		TotalFiles:      s.TotalFiles,
	})
}
