// Package errors provides structured error types for vidmark operations.
package errors

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// KindIO represents I/O errors.
	KindIO ErrorKind = iota
	// KindPath represents path-related errors.
	KindPath
	// KindCommand represents external command execution errors.
	KindCommand
	// KindConfig represents configuration validation errors.
	KindConfig
	// KindNoFilesFound represents no suitable video files found.
	KindNoFilesFound
	// KindSourceUnreadable means the source video could not be opened or probed.
	KindSourceUnreadable
	// KindDestinationUnwritable means the output video could not be created.
	KindDestinationUnwritable
	// KindMuxUnavailable means the audio muxing tool is not installed.
	KindMuxUnavailable
	// KindMuxFailed means the audio muxing tool ran and failed.
	KindMuxFailed
	// KindNoRenderableText means neither watermark line has content.
	KindNoRenderableText
	// KindCancelled represents user-cancelled operations.
	KindCancelled
)

// String returns a string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "I/O error"
	case KindPath:
		return "Path error"
	case KindCommand:
		return "Command error"
	case KindConfig:
		return "Configuration error"
	case KindNoFilesFound:
		return "No files found"
	case KindSourceUnreadable:
		return "Source unreadable"
	case KindDestinationUnwritable:
		return "Destination unwritable"
	case KindMuxUnavailable:
		return "Mux tool unavailable"
	case KindMuxFailed:
		return "Mux failed"
	case KindNoRenderableText:
		return "No renderable text"
	case KindCancelled:
		return "Operation cancelled"
	default:
		return "Unknown error"
	}
}

// CommandError describes an external tool that could not run or exited
// with a failure. ExitCode is -1 when the process never started.
type CommandError struct {
	Command    string
	ExitCode   int
	Stderr     string
	Underlying error
}

// Started reports whether the process ran at all.
func (e *CommandError) Started() bool {
	return e.ExitCode >= 0
}

func (e *CommandError) Error() string {
	switch {
	case !e.Started():
		return fmt.Sprintf("%s could not be started: %v", e.Command, e.Underlying)
	case e.Stderr != "":
		return fmt.Sprintf("%s exited with status %d: %s", e.Command, e.ExitCode, e.Stderr)
	default:
		return fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
	}
}

func (e *CommandError) Unwrap() error {
	return e.Underlying
}

// CoreError is the main error type for vidmark operations.
type CoreError struct {
	Kind       ErrorKind
	Message    string
	Underlying error
}

func (e *CoreError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CoreError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target matches this error's kind.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewIOError creates a new I/O error.
func NewIOError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindIO, Message: message, Underlying: underlying}
}

// NewPathError creates a new path-related error.
func NewPathError(message string) *CoreError {
	return &CoreError{Kind: KindPath, Message: message}
}

func newCommandError(cmdErr *CommandError) *CoreError {
	return &CoreError{Kind: KindCommand, Message: cmdErr.Error(), Underlying: cmdErr}
}

// NewCommandStartError reports a tool that could not be launched.
func NewCommandStartError(cmd string, err error) *CoreError {
	return newCommandError(&CommandError{Command: cmd, ExitCode: -1, Underlying: err})
}

// NewCommandFailedError reports a tool that exited with a non-zero status.
func NewCommandFailedError(cmd string, exitCode int, stderr string) *CoreError {
	return newCommandError(&CommandError{Command: cmd, ExitCode: exitCode, Stderr: stderr})
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindConfig, Message: message, Underlying: underlying}
}

// NewNoFilesFoundError creates an error for when no video files are found.
func NewNoFilesFoundError(dir string) *CoreError {
	return &CoreError{Kind: KindNoFilesFound, Message: fmt.Sprintf("no suitable video files found in %s", dir)}
}

// NewSourceUnreadableError reports a source that cannot be probed or decoded.
func NewSourceUnreadableError(path string, underlying error) *CoreError {
	return &CoreError{Kind: KindSourceUnreadable, Message: fmt.Sprintf("cannot open video %s", path), Underlying: underlying}
}

// NewDestinationUnwritableError reports an output path that cannot be created.
func NewDestinationUnwritableError(path string, underlying error) *CoreError {
	return &CoreError{Kind: KindDestinationUnwritable, Message: fmt.Sprintf("cannot create output video %s", path), Underlying: underlying}
}

// NewMuxUnavailableError reports a mux binary that is not on PATH.
func NewMuxUnavailableError(tool string) *CoreError {
	return &CoreError{Kind: KindMuxUnavailable, Message: fmt.Sprintf("%s not found in PATH; audio cannot be preserved", tool)}
}

// NewMuxFailedError reports a mux run that exited with an error.
func NewMuxFailedError(diagnostic string, underlying error) *CoreError {
	return &CoreError{Kind: KindMuxFailed, Message: diagnostic, Underlying: underlying}
}

// NewNoRenderableTextError reports a watermark whose lines are all empty.
func NewNoRenderableTextError() *CoreError {
	return &CoreError{Kind: KindNoRenderableText, Message: "watermark has no non-empty line"}
}

// NewCancelledError creates an error for user-cancelled operations.
func NewCancelledError() *CoreError {
	return &CoreError{Kind: KindCancelled, Message: "operation was cancelled by the user"}
}

// IsKind checks if the error has the specified kind.
func IsKind(err error, kind ErrorKind) bool {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Kind == kind
	}
	return false
}

// IsCancelled checks if the error is a cancellation error.
func IsCancelled(err error) bool {
	return IsKind(err, KindCancelled)
}

// IsNoFilesFound checks if the error is a no-files-found error.
func IsNoFilesFound(err error) bool {
	return IsKind(err, KindNoFilesFound)
}

// WrapExecError classifies an error from exec.Cmd Start, Run or Wait.
// Exit failures keep the tool's stderr for diagnostics.
func WrapExecError(cmd string, err error, stderr string) *CoreError {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return NewCommandFailedError(cmd, exitErr.ExitCode(), stderr)
	}
	return NewCommandStartError(cmd, err)
}
