// Package main provides the CLI entry point for vidmark.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/five82/vidmark/internal/config"
	"github.com/five82/vidmark/internal/discovery"
	verrors "github.com/five82/vidmark/internal/errors"
	"github.com/five82/vidmark/internal/logging"
	"github.com/five82/vidmark/internal/processing"
	"github.com/five82/vidmark/internal/reporter"
	"github.com/five82/vidmark/internal/util"
)

const (
	appName    = "vidmark"
	appVersion = "0.1.0"

	// exitCancelled follows the shell convention for SIGINT.
	exitCancelled = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd(os.Stdin, os.Stdout, os.Stderr, stdinIsTerminal()).ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err, os.Stderr))
}

func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errPromptCancelled), verrors.IsCancelled(err):
		fmt.Fprintln(stderr, "Operation cancelled by user.")
		return exitCancelled
	case errors.Is(err, errReported):
		return 1
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

// errReported marks failures the reporter has already shown.
var errReported = errors.New("watermarking failed")

// watermarkArgs holds the parsed flags of the watermark command.
type watermarkArgs struct {
	input     string
	outputDir string
	logDir    string
	envFile   string
	line1     string
	line2     string
	coverage  float64
	opacity   float64
	strength  float64
	font      string
	ffmpeg    string
	mux       string
	noFont    bool
	noVal     bool
	jsonOut   bool
	verbose   bool
	noLog     bool
	interval  int
}

// cli carries the streams a command talks to, so tests can drive it.
type cli struct {
	in          io.Reader
	out         io.Writer
	errOut      io.Writer
	interactive bool
}

func newRootCmd(in io.Reader, out, errOut io.Writer, interactive bool) *cobra.Command {
	c := &cli{in: in, out: out, errOut: errOut, interactive: interactive}

	root := &cobra.Command{
		Use:           appName,
		Short:         "Burn a semi-transparent text watermark into videos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.AddCommand(c.newWatermarkCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, appVersion)
		},
	}
}

func (c *cli) newWatermarkCmd() *cobra.Command {
	var wa watermarkArgs

	cmd := &cobra.Command{
		Use:   "watermark",
		Short: "Watermark a video file or every video in a directory",
		Long: `Draw one or two centered lines of text on every frame of each video and
copy the original audio into the result. Outputs are written next to each
source (or into --output-dir) as <name>_watermarked.mp4.

Missing input or text is asked for interactively when stdin is a terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runWatermark(cmd, wa)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&wa.input, "input", "i", "", "Input video file or directory")
	fs.StringVarP(&wa.outputDir, "output-dir", "o", "", "Output directory (defaults to each source's directory)")
	fs.StringVar(&wa.line1, "line1", "", "First line of watermark text")
	fs.StringVar(&wa.line2, "line2", "", "Second line of watermark text")
	fs.Float64VarP(&wa.coverage, "coverage", "c", config.DefaultCoveragePct, "Percent of the frame width the widest line spans")
	fs.Float64Var(&wa.opacity, "opacity", config.DefaultOpacityPct, "Peak text opacity in percent")
	fs.Float64Var(&wa.strength, "strength", config.DefaultStrength, "Multiplier applied to the text alpha")
	fs.StringVar(&wa.font, "font", "", "TrueType font tried before the built-in candidates")
	fs.BoolVar(&wa.noFont, "no-embedded-font", false, "Do not fall back to the bundled font")
	fs.StringVar(&wa.ffmpeg, "ffmpeg", config.DefaultFFmpegBinary, "ffmpeg binary used to decode and encode")
	fs.StringVar(&wa.mux, "mux-binary", config.DefaultMuxBinary, "Binary used to copy the source audio")
	fs.IntVar(&wa.interval, "progress-interval", config.DefaultProgressInterval, "Frames between progress reports")
	fs.BoolVar(&wa.noVal, "no-validate", false, "Skip probing the finished output")
	fs.BoolVar(&wa.jsonOut, "json", false, "Emit newline-delimited JSON events on stdout")
	fs.BoolVarP(&wa.verbose, "verbose", "v", false, "Enable verbose output for troubleshooting")
	fs.StringVarP(&wa.logDir, "log-dir", "l", "", "Log directory (defaults to <output>/logs)")
	fs.BoolVar(&wa.noLog, "no-log", false, "Disable log file creation")
	fs.StringVar(&wa.envFile, "env-file", ".env", "File of VIDMARK_* settings to load")

	return cmd
}

// buildConfig layers defaults, the env file, the environment and finally
// the flags the user actually set.
func buildConfig(cmd *cobra.Command, wa watermarkArgs) (*config.Config, error) {
	cfg := config.NewConfig(wa.input, wa.outputDir, wa.logDir)

	if err := config.LoadEnvFile(wa.envFile, cmd.Flags().Changed("env-file")); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("input") {
		cfg.Input = wa.input
	}
	if changed("output-dir") {
		cfg.OutputDir = wa.outputDir
	}
	if changed("line1") {
		cfg.Line1 = wa.line1
	}
	if changed("line2") {
		cfg.Line2 = wa.line2
	}
	if changed("coverage") {
		cfg.CoveragePct = wa.coverage
	}
	if changed("opacity") {
		cfg.OpacityPct = wa.opacity
	}
	if changed("strength") {
		cfg.Strength = wa.strength
	}
	if changed("font") {
		cfg.FontPath = wa.font
	}
	if changed("ffmpeg") {
		cfg.FFmpegBinary = wa.ffmpeg
	}
	if changed("mux-binary") {
		cfg.MuxBinary = wa.mux
	}
	if changed("progress-interval") {
		cfg.ProgressInterval = wa.interval
	}
	cfg.EmbeddedFont = !wa.noFont
	cfg.ValidateOutput = !wa.noVal
	return cfg, nil
}

// fillInteractively asks for whatever the flags and environment left out.
func (c *cli) fillInteractively(cfg *config.Config) error {
	if cfg.Input != "" && cfg.HasText() {
		return nil
	}
	if !c.interactive {
		if cfg.Input == "" {
			return fmt.Errorf("input path is required (-i/--input)")
		}
		return fmt.Errorf("watermark text is required (--line1 and/or --line2)")
	}

	p := newPrompter(c.in, c.errOut)
	_, _ = fmt.Fprintln(c.errOut, "=== Video Watermarker ===")
	_, _ = fmt.Fprintln(c.errOut)

	if cfg.Input == "" {
		mode, err := p.askMode()
		if err != nil {
			return err
		}
		if cfg.Input, err = p.askPath(mode); err != nil {
			return err
		}
	}
	if !cfg.HasText() {
		line1, line2, err := p.askText()
		if err != nil {
			return err
		}
		cfg.Line1, cfg.Line2 = line1, line2
	}
	_, _ = fmt.Fprintln(c.errOut)
	return nil
}

// defaultLogDir puts logs under the output directory, or beside the
// sources when outputs go there.
func defaultLogDir(cfg *config.Config) string {
	if cfg.OutputDir != "" {
		return filepath.Join(cfg.OutputDir, "logs")
	}
	if util.DirectoryExists(cfg.Input) {
		return filepath.Join(cfg.Input, "logs")
	}
	return filepath.Join(filepath.Dir(cfg.Input), "logs")
}

func (c *cli) runWatermark(cmd *cobra.Command, wa watermarkArgs) error {
	cfg, err := buildConfig(cmd, wa)
	if err != nil {
		return err
	}
	if err := c.fillInteractively(cfg); err != nil {
		return err
	}

	if cfg.Input, err = filepath.Abs(util.NormalizePastedPath(cfg.Input)); err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}
	if cfg.OutputDir != "" {
		if cfg.OutputDir, err = filepath.Abs(cfg.OutputDir); err != nil {
			return fmt.Errorf("invalid output path: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return verrors.NewConfigError("invalid configuration", err)
	}

	runID := uuid.NewString()
	var rep reporter.Reporter
	if wa.jsonOut {
		rep = reporter.NewJSONReporterWithWriter(c.out, runID)
	} else {
		rep = reporter.NewTerminalReporterWithWriters(c.out, c.errOut, wa.verbose)
	}

	// Nothing is written to disk until there is something to watermark.
	discoveryLog := &bufferedLog{}
	files, err := discoverInputs(cfg.Input, discoveryLog)
	if err != nil && !verrors.IsNoFilesFound(err) {
		return err
	}
	if len(files) == 0 {
		_, _ = processing.ProcessVideos(cmd.Context(), cfg, nil, rep)
		return errReported
	}

	if cfg.LogDir == "" {
		cfg.LogDir = defaultLogDir(cfg)
	}
	fileLog, err := logging.Setup(cfg.LogDir, wa.verbose, wa.noLog)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer func() { _ = fileLog.Close() }()

	level := logging.LevelInfo
	if wa.verbose {
		level = logging.LevelDebug
	}
	logging.Init(level, fileLog.Writer())

	fileLog.Info("Run ID: %s", runID)
	fileLog.Info("Input: %s", cfg.Input)
	if cfg.OutputDir != "" {
		fileLog.Info("Output directory: %s", cfg.OutputDir)
	}
	fileLog.Info("Watermark text: %q / %q", cfg.Line1, cfg.Line2)
	fileLog.Info("Coverage %.0f%%, opacity %.0f%%, strength %.2f", cfg.CoveragePct, cfg.OpacityPct, cfg.Strength)
	discoveryLog.replay(fileLog)

	if !wa.noLog {
		rep = reporter.NewCompositeReporter(rep, reporter.NewLogReporter(logging.Global().WithComponent("run")))
	}

	batch, err := processing.ProcessVideos(cmd.Context(), cfg, files, rep)
	if err != nil {
		if verrors.IsCancelled(err) {
			return err
		}
		return errReported
	}
	if !batch.OK() {
		return errReported
	}
	fileLog.Info("Done: %d succeeded, %d failed in %s", batch.Succeeded, batch.Failed, batch.Duration)
	return nil
}

// bufferedLog holds discovery messages until the run log exists.
type bufferedLog struct {
	lines []bufferedLine
}

type bufferedLine struct {
	debug bool
	msg   string
}

func (b *bufferedLog) Info(format string, args ...any) {
	b.lines = append(b.lines, bufferedLine{msg: fmt.Sprintf(format, args...)})
}

func (b *bufferedLog) Debug(format string, args ...any) {
	b.lines = append(b.lines, bufferedLine{debug: true, msg: fmt.Sprintf(format, args...)})
}

func (b *bufferedLog) replay(l *logging.FileLogger) {
	for _, line := range b.lines {
		if line.debug {
			l.Debug("%s", line.msg)
		} else {
			l.Info("%s", line.msg)
		}
	}
}

// discoverInputs resolves a file or a directory of videos. An empty
// directory yields no files so the run reports it like any other failure.
func discoverInputs(input string, log discovery.DiscoveryLogger) ([]string, error) {
	if !util.DirectoryExists(input) {
		files, err := discovery.ResolveInputs(input)
		if err == nil {
			log.Info("Processing single file: %s", input)
		}
		return files, err
	}
	result, err := discovery.FindVideoFilesWithLogging(input, log)
	if err != nil {
		return nil, err
	}
	return result.Files, nil
}
