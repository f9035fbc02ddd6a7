package processing

import (
	"context"
	"fmt"
	"os"

	verrors "github.com/five82/vidmark/internal/errors"
	"github.com/five82/vidmark/internal/ffmpeg"
	"github.com/five82/vidmark/internal/ffprobe"
	"github.com/five82/vidmark/internal/reporter"
	"github.com/five82/vidmark/internal/util"
)

// FormatAudioDescription describes the source audio for the initialization event.
func FormatAudioDescription(geo *ffprobe.Geometry) string {
	if geo == nil || !geo.HasAudio {
		return "No audio"
	}
	if geo.AudioCodec == "" {
		return "Present (will be copied)"
	}
	return fmt.Sprintf("%s (will be copied)", geo.AudioCodec)
}

// muxAudio re-attaches the source audio and settles the output lifecycle:
// on success the video-only file is deleted, otherwise it is promoted to the
// final path. It returns the mux result and an error only when the final file
// could not be produced at all.
func muxAudio(ctx context.Context, tool, source string, target util.OutputTarget, hasAudio bool, rep reporter.Reporter) (ffmpeg.MuxResult, error) {
	res := ffmpeg.Mux(ctx, tool, target.VideoOnlyPath, source, target.FinalPath)

	rep.MuxResult(reporter.MuxSummary{
		Status:         res.Status.String(),
		Tool:           res.Tool,
		Diagnostic:     res.Diagnostic,
		SourceHasAudio: hasAudio,
	})

	if res.OK() {
		if err := os.Remove(target.VideoOnlyPath); err != nil && !os.IsNotExist(err) {
			rep.Warning(fmt.Sprintf("Could not remove temporary file %s: %v", target.VideoOnlyPath, err))
		}
		return res, nil
	}

	if ctx.Err() != nil {
		_ = os.Remove(target.VideoOnlyPath)
		return res, verrors.NewCancelledError()
	}

	switch res.Status {
	case ffmpeg.MuxToolMissing:
		rep.Warning(fmt.Sprintf("Mux tool %s not found in PATH; writing video without audio", res.Tool))
	default:
		rep.Warning(fmt.Sprintf("Audio mux failed (%s); writing video without audio", res.Diagnostic))
	}

	if err := os.Rename(target.VideoOnlyPath, target.FinalPath); err != nil {
		_ = os.Remove(target.VideoOnlyPath)
		return res, verrors.NewIOError(fmt.Sprintf("failed to move %s to %s", target.VideoOnlyPath, target.FinalPath), err)
	}
	return res, nil
}
