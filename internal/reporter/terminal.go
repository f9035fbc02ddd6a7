package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/five82/vidmark/internal/util"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu         sync.Mutex
	out        io.Writer
	errOut     io.Writer
	verbose    bool
	progress   *progressbar.ProgressBar
	maxPercent float32
	lastStage  string
	cyan       *color.Color
	green      *color.Color
	greenBold  *color.Color
	yellow     *color.Color
	red        *color.Color
	magenta    *color.Color
	bold       *color.Color
	faint      *color.Color
}

// NewTerminalReporter creates a terminal reporter writing to stdout and
// stderr. Verbose messages are printed only when verbose is set.
func NewTerminalReporter(verbose bool) *TerminalReporter {
	return NewTerminalReporterWithWriters(os.Stdout, os.Stderr, verbose)
}

// NewTerminalReporterWithWriters creates a terminal reporter with custom
// writers.
func NewTerminalReporterWithWriters(out, errOut io.Writer, verbose bool) *TerminalReporter {
	return &TerminalReporter{
		out:       out,
		errOut:    errOut,
		verbose:   verbose,
		cyan:      color.New(color.FgCyan, color.Bold),
		green:     color.New(color.FgGreen),
		greenBold: color.New(color.FgGreen, color.Bold),
		yellow:    color.New(color.FgYellow, color.Bold),
		red:       color.New(color.FgRed, color.Bold),
		magenta:   color.New(color.FgMagenta),
		bold:      color.New(color.Bold),
		faint:     color.New(color.Faint),
	}
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
}

func (r *TerminalReporter) section(title string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = r.cyan.Fprintln(r.out, title)
}

// printLabel prints a bold label with fixed width padding followed by a value.
// Width is applied to the plain text before styling to ensure proper alignment.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) Hardware(summary HardwareSummary) {
	r.section("HARDWARE")
	r.printLabel(10, "Hostname:", summary.Hostname)
	r.printLabel(10, "Platform:", fmt.Sprintf("%s/%s, %d CPUs", summary.OS, summary.Arch, summary.NumCPU))
}

func (r *TerminalReporter) Initialization(summary InitializationSummary) {
	r.section("VIDEO")
	r.printLabel(11, "File:", summary.InputFile)
	r.printLabel(11, "Output:", summary.OutputFile)
	r.printLabel(11, "Duration:", summary.Duration)
	r.printLabel(11, "Resolution:", summary.Resolution)
	r.printLabel(11, "Frame rate:", summary.FrameRate)
	r.printLabel(11, "Frames:", summary.FrameCount)
	r.printLabel(11, "Audio:", summary.AudioDescription)
}

func (r *TerminalReporter) StageProgress(update StageProgress) {
	r.mu.Lock()
	newStage := r.lastStage != update.Stage
	r.lastStage = update.Stage
	r.mu.Unlock()

	if newStage {
		r.section(strings.ToUpper(update.Stage))
	}
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.magenta.Sprint("›"), update.Message)
}

func (r *TerminalReporter) WatermarkConfig(summary WatermarkConfigSummary) {
	r.section("WATERMARK")
	const w = 10
	r.printLabel(w, "Line 1:", quoteOrDash(summary.Line1))
	r.printLabel(w, "Line 2:", quoteOrDash(summary.Line2))
	font := fmt.Sprintf("%s, %.0fpx", summary.FontName, summary.FontSize)
	if !summary.Scalable {
		font = summary.FontName + " " + r.faint.Sprint("(fixed size)")
	}
	r.printLabel(w, "Font:", font)
	r.printLabel(w, "Width:", fmt.Sprintf("%s of frame (target %s, %d iterations)",
		util.FormatPercent(summary.AchievedPct), util.FormatPercent(summary.TargetPct), summary.Iterations))
	r.printLabel(w, "Opacity:", fmt.Sprintf("%s (alpha %d, strength %.2f)",
		util.FormatPercent(summary.OpacityPct), summary.PeakAlpha, summary.Strength))
	r.printLabel(w, "Mask:", util.FormatPercent(summary.MaskCoverage*100)+" of pixels")
	r.printLabel(w, "Codec:", summary.VideoCodec)
}

func quoteOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return fmt.Sprintf("%q", s)
}

func (r *TerminalReporter) EncodingStarted(totalFrames uint64) {
	r.finishProgress()

	r.mu.Lock()
	defer r.mu.Unlock()

	// -1 switches the bar to spinner mode for unknown lengths.
	limit := int64(100)
	if totalFrames == 0 {
		limit = -1
	}
	r.progress = progressbar.NewOptions64(
		limit,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(r.errOut),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "Watermarking [",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) EncodingProgress(progress ProgressSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		return
	}

	if progress.TotalFrames == 0 {
		_ = r.progress.Add64(0)
		r.progress.Describe(fmt.Sprintf("frame %d, fps %.1f", progress.CurrentFrame, progress.FPS))
		return
	}

	clamped := util.Clamp(progress.Percent, 0, 100)
	if clamped >= r.maxPercent {
		r.maxPercent = clamped
		_ = r.progress.Set64(int64(clamped))
	}

	total := fmt.Sprintf("%d", progress.TotalFrames)
	if progress.Estimated {
		total = "~" + total
	}
	r.progress.Describe(fmt.Sprintf("frame %d/%s, fps %.1f, eta %s",
		progress.CurrentFrame, total, progress.FPS, util.FormatDuration(progress.ETA.Seconds())))
}

func (r *TerminalReporter) MuxResult(summary MuxSummary) {
	r.finishProgress()

	switch summary.Status {
	case "succeeded":
		msg := "audio copied from source"
		if !summary.SourceHasAudio {
			msg = "source has no audio, video remuxed"
		}
		_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.green.Sprint("✓"), msg)
	case "tool_missing":
		_, _ = r.yellow.Fprintf(r.out, "  %s not found; output has no audio\n", summary.Tool)
	default:
		_, _ = r.yellow.Fprintf(r.out, "  audio mux failed (%s); output has no audio\n", summary.Diagnostic)
	}
}

func (r *TerminalReporter) ValidationComplete(summary ValidationSummary) {
	r.finishProgress()

	r.section("VALIDATION")

	if summary.Passed {
		_, _ = fmt.Fprintf(r.out, "  %s\n", r.greenBold.Sprint("All checks passed"))
	} else {
		_, _ = fmt.Fprintf(r.out, "  %s\n", r.red.Sprint("Validation failed"))
	}

	maxLen := 0
	for _, step := range summary.Steps {
		maxLen = max(maxLen, len(step.Name))
	}

	for _, step := range summary.Steps {
		status := r.green.Sprint("✓")
		if !step.Passed {
			status = r.red.Sprint("✗")
		}
		paddedName := fmt.Sprintf("%-*s", maxLen, step.Name)
		_, _ = fmt.Fprintf(r.out, "  - %s: %s (%s)\n", paddedName, status, step.Details)
	}
}

func (r *TerminalReporter) EncodingComplete(summary EncodingOutcome) {
	r.finishProgress()

	audio := "copied"
	if !summary.AudioMuxed {
		audio = "none"
	}

	r.section("RESULTS")
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint("Output:"), r.bold.Sprint(summary.OutputFile))
	r.printLabel(7, "Frames:", fmt.Sprintf("%d", summary.FramesWritten))
	r.printLabel(7, "Size:", fmt.Sprintf("%s -> %s",
		util.FormatBytes(summary.OriginalSize), util.FormatBytes(summary.OutputSize)))
	r.printLabel(7, "Audio:", audio)
	_, _ = fmt.Fprintf(r.out, "  %s %s (avg %.1f fps)\n",
		r.bold.Sprint("Time:"),
		util.FormatDuration(summary.TotalTime.Seconds()),
		summary.AverageFPS)
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint("Saved to"), r.green.Sprint(summary.OutputPath))
}

func (r *TerminalReporter) Warning(message string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = r.yellow.Fprintf(r.out, "WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	r.finishProgress()

	_, _ = fmt.Fprintln(r.errOut)
	_, _ = r.red.Fprintf(r.errOut, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(r.errOut, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) OperationComplete(message string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = fmt.Fprintf(r.out, "%s %s\n", r.greenBold.Sprint("✓"), r.bold.Sprint(message))
}

func (r *TerminalReporter) BatchStarted(info BatchStartInfo) {
	r.section("BATCH")
	_, _ = fmt.Fprintf(r.out, "  Processing %d files -> %s\n", info.TotalFiles, r.bold.Sprint(info.OutputDir))
	for i, name := range info.FileList {
		_, _ = fmt.Fprintf(r.out, "  %d. %s\n", i+1, name)
	}
}

func (r *TerminalReporter) FileProgress(context FileProgressContext) {
	_, _ = fmt.Fprintf(r.out, "\nFile %s of %d: %s\n",
		r.bold.Sprint(context.CurrentFile),
		context.TotalFiles,
		context.FileName)
}

func (r *TerminalReporter) BatchComplete(summary BatchSummary) {
	r.section("BATCH SUMMARY")
	_, _ = fmt.Fprintf(r.out, "  %s\n", r.bold.Sprintf("%d of %d succeeded", summary.SuccessfulCount, summary.TotalFiles))
	if summary.FailedCount > 0 {
		_, _ = fmt.Fprintf(r.out, "  %s\n", r.red.Sprintf("%d failed", summary.FailedCount))
	}
	_, _ = fmt.Fprintf(r.out, "  Validation: %s passed, %s failed\n",
		r.green.Sprint(summary.ValidationPassedCount),
		r.red.Sprint(summary.ValidationFailedCount))
	_, _ = fmt.Fprintf(r.out, "  Time: %s\n", util.FormatDuration(summary.TotalDuration.Round(time.Second).Seconds()))

	for _, result := range summary.FileResults {
		if result.Succeeded {
			_, _ = fmt.Fprintf(r.out, "  %s %s -> %s\n", r.green.Sprint("✓"), result.Filename, result.OutputPath)
		} else {
			_, _ = fmt.Fprintf(r.out, "  %s %s: %s\n", r.red.Sprint("✗"), result.Filename, result.Error)
		}
	}
}

func (r *TerminalReporter) Verbose(message string) {
	if !r.verbose {
		return
	}
	_, _ = r.faint.Fprintf(r.out, "  %s\n", message)
}
