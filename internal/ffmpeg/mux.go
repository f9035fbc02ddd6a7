package ffmpeg

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	verrors "github.com/five82/vidmark/internal/errors"
	"github.com/five82/vidmark/internal/logging"
)

// MuxStatus is the outcome of re-attaching audio.
type MuxStatus int

const (
	// MuxSucceeded means the final file holds the new video and source audio.
	MuxSucceeded MuxStatus = iota
	// MuxToolMissing means the mux binary is not on the search path.
	MuxToolMissing
	// MuxFailed means the mux binary ran and did not produce the file.
	MuxFailed
)

// String returns a short label for logs and JSON events.
func (s MuxStatus) String() string {
	switch s {
	case MuxSucceeded:
		return "succeeded"
	case MuxToolMissing:
		return "tool_missing"
	case MuxFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MuxResult reports how muxing went. Diagnostic is a one-line summary of
// the failure; Err carries the details.
type MuxResult struct {
	Status     MuxStatus
	Tool       string
	Diagnostic string
	Err        error
}

// OK reports whether audio was re-attached.
func (r MuxResult) OK() bool {
	return r.Status == MuxSucceeded
}

// Mux copies the video of videoOnly and the audio of source into output
// using tool. Sources without audio still succeed. Neither a missing tool
// nor a failed run is returned as an error: the caller decides how to
// degrade.
func Mux(ctx context.Context, tool, videoOnly, source, output string) MuxResult {
	path, err := exec.LookPath(tool)
	if err != nil {
		return MuxResult{
			Status:     MuxToolMissing,
			Tool:       tool,
			Diagnostic: tool + " not found in PATH",
			Err:        verrors.NewMuxUnavailableError(tool),
		}
	}

	args := MuxArgs(videoOnly, source, output)
	cmd := exec.CommandContext(ctx, path, args...)
	stderr := &stderrBuffer{}
	cmd.Stderr = stderr

	logging.Debug("muxing audio", "cmd", path, "args", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		_ = os.Remove(output)
		diag := lastLine(stderr.String())
		if diag == "" {
			diag = err.Error()
		}
		if ctx.Err() != nil {
			diag = "cancelled"
		}
		return MuxResult{
			Status:     MuxFailed,
			Tool:       tool,
			Diagnostic: diag,
			Err:        verrors.NewMuxFailedError(diag, verrors.WrapExecError(tool, err, stderr.String())),
		}
	}

	if info, err := os.Stat(output); err != nil || info.Size() == 0 {
		_ = os.Remove(output)
		return MuxResult{
			Status:     MuxFailed,
			Tool:       tool,
			Diagnostic: "mux produced no output",
			Err:        verrors.NewMuxFailedError("mux produced no output", errors.WithStack(os.ErrNotExist)),
		}
	}

	return MuxResult{Status: MuxSucceeded, Tool: tool}
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
