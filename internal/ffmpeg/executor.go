package ffmpeg

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/pkg/errors"

	verrors "github.com/five82/vidmark/internal/errors"
	"github.com/five82/vidmark/internal/ffprobe"
	"github.com/five82/vidmark/internal/logging"
)

// maxStderr caps how much diagnostic output is kept per process.
const maxStderr = 64 * 1024

// stderrBuffer keeps the tail of a process's stderr.
type stderrBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *stderrBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.buf.Len()+len(p) > maxStderr {
		tail := b.buf.String()
		if len(tail) > maxStderr/2 {
			tail = tail[len(tail)-maxStderr/2:]
		}
		b.buf.Reset()
		b.buf.WriteString(tail)
		if len(p) > maxStderr/2 {
			p = p[len(p)-maxStderr/2:]
		}
	}
	b.buf.Write(p)
	return len(p), nil
}

func (b *stderrBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(b.buf.String())
}

// Source decodes a video into rgb24 frames.
type Source struct {
	Path     string
	Geometry *ffprobe.Geometry

	cmd       *exec.Cmd
	stdout    io.ReadCloser
	reader    *bufio.Reader
	stderr    *stderrBuffer
	frameSize int
	frames    int64
	finished  bool
	waitErr   error
}

// OpenSource probes path and starts a decoder streaming its frames.
// Failures are reported as source-unreadable errors and leave nothing
// running.
func OpenSource(ctx context.Context, binary, path string) (*Source, error) {
	geo, err := ffprobe.GetGeometry(ctx, path)
	if err != nil {
		return nil, verrors.NewSourceUnreadableError(path, err)
	}

	args := DecodeArgs(path, geo.FPS)
	cmd := exec.CommandContext(ctx, binary, args...)
	stderr := &stderrBuffer{}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, verrors.NewSourceUnreadableError(path, errors.Wrap(err, "failed to create stdout pipe"))
	}

	logging.Debug("starting decoder", "cmd", binary, "args", strings.Join(args, " "))
	if err := cmd.Start(); err != nil {
		return nil, verrors.NewSourceUnreadableError(path, verrors.WrapExecError(binary, err, ""))
	}

	frameSize := geo.Width * geo.Height * 3
	return &Source{
		Path:      path,
		Geometry:  geo,
		cmd:       cmd,
		stdout:    stdout,
		reader:    bufio.NewReaderSize(stdout, min(frameSize, 4<<20)),
		stderr:    stderr,
		frameSize: frameSize,
	}, nil
}

// FrameSize is the byte length of one decoded frame.
func (s *Source) FrameSize() int {
	return s.frameSize
}

// FramesRead counts complete frames returned so far.
func (s *Source) FramesRead() int64 {
	return s.frames
}

// ReadFrame fills buf with the next frame. It returns io.EOF once the
// decoder has delivered every frame and exited cleanly. Any other error
// means decoding stopped early; frames already read remain valid.
func (s *Source) ReadFrame(buf []byte) error {
	if len(buf) != s.frameSize {
		return errors.Errorf("frame buffer is %d bytes, expected %d", len(buf), s.frameSize)
	}
	if s.finished {
		return io.EOF
	}

	_, err := io.ReadFull(s.reader, buf)
	switch {
	case err == nil:
		s.frames++
		return nil
	case errors.Is(err, io.EOF):
		if werr := s.wait(); werr != nil {
			return werr
		}
		return io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		werr := s.wait()
		if werr == nil {
			werr = errors.New("decoder output ended inside a frame")
		}
		return errors.Wrapf(werr, "truncated frame after %d frames", s.frames)
	default:
		_ = s.wait()
		return errors.Wrap(err, "failed to read decoded frame")
	}
}

func (s *Source) wait() error {
	if s.finished {
		return s.waitErr
	}
	s.finished = true
	if err := s.cmd.Wait(); err != nil {
		s.waitErr = verrors.WrapExecError(s.cmd.Path, err, s.stderr.String())
	}
	return s.waitErr
}

// Close stops the decoder if it is still running and releases it.
func (s *Source) Close() error {
	if s == nil || s.finished {
		return nil
	}
	_ = s.stdout.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	s.finished = true
	_ = s.cmd.Wait()
	return nil
}

// Writer encodes rgb24 frames into a silent MP4.
type Writer struct {
	Path string

	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stderr    *stderrBuffer
	frameSize int
	frames    int64
	closed    bool
}

// OpenWriter creates path and starts an encoder for frames of the given
// geometry. When the file cannot be created, or the encoder fails to start,
// a destination-unwritable error is returned and no file is left behind.
func OpenWriter(ctx context.Context, binary, path string, width, height int, fps float64) (*Writer, error) {
	if width <= 0 || height <= 0 {
		return nil, verrors.NewDestinationUnwritableError(path, errors.Errorf("invalid frame size %dx%d", width, height))
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, verrors.NewDestinationUnwritableError(path, err)
	}
	_ = f.Close()

	args := EncodeArgs(path, width, height, fps)
	cmd := exec.CommandContext(ctx, binary, args...)
	stderr := &stderrBuffer{}
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		_ = os.Remove(path)
		return nil, verrors.NewDestinationUnwritableError(path, errors.Wrap(err, "failed to create stdin pipe"))
	}

	logging.Debug("starting encoder", "cmd", binary, "args", strings.Join(args, " "))
	if err := cmd.Start(); err != nil {
		_ = os.Remove(path)
		return nil, verrors.NewDestinationUnwritableError(path, verrors.WrapExecError(binary, err, ""))
	}

	return &Writer{
		Path:      path,
		cmd:       cmd,
		stdin:     stdin,
		stderr:    stderr,
		frameSize: width * height * 3,
	}, nil
}

// FramesWritten counts frames accepted by the encoder.
func (w *Writer) FramesWritten() int64 {
	return w.frames
}

// WriteFrame hands one rgb24 frame to the encoder.
func (w *Writer) WriteFrame(frame []byte) error {
	if w.closed {
		return errors.New("writer is closed")
	}
	if len(frame) != w.frameSize {
		return errors.Errorf("frame is %d bytes, expected %d", len(frame), w.frameSize)
	}
	if _, err := w.stdin.Write(frame); err != nil {
		if diag := w.stderr.String(); diag != "" {
			return errors.Wrapf(err, "encoder rejected frame %d: %s", w.frames, diag)
		}
		return errors.Wrapf(err, "encoder rejected frame %d", w.frames)
	}
	w.frames++
	return nil
}

// Close flushes the encoder and waits for it to finish the file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	_ = w.stdin.Close()
	if err := w.cmd.Wait(); err != nil {
		return verrors.WrapExecError(w.cmd.Path, err, w.stderr.String())
	}
	return nil
}

// Abort stops the encoder and deletes the partial file.
func (w *Writer) Abort() {
	if w == nil {
		return
	}
	if !w.closed {
		w.closed = true
		_ = w.stdin.Close()
		if w.cmd.Process != nil {
			_ = w.cmd.Process.Kill()
		}
		_ = w.cmd.Wait()
	}
	_ = os.Remove(w.Path)
}
