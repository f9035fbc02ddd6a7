package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/five82/vidmark/internal/util"
)

// errPromptCancelled is returned when input ends before a prompt is answered.
var errPromptCancelled = errors.New("operation cancelled by user")

type inputMode int

const (
	modeFile inputMode = iota
	modeDirectory
)

// prompter asks for the missing parts of a run on an interactive terminal.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	q   *color.Color
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{
		in:  bufio.NewReader(in),
		out: out,
		q:   color.New(color.FgCyan, color.Bold),
	}
}

// stdinIsTerminal reports whether prompting makes sense.
func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (p *prompter) ask(question string) (string, error) {
	_, _ = p.q.Fprint(p.out, "[?] ")
	_, _ = fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		if errors.Is(err, io.EOF) {
			return "", errPromptCancelled
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// askMode asks whether to watermark one file or a whole directory.
func (p *prompter) askMode() (inputMode, error) {
	for {
		_, _ = fmt.Fprintln(p.out, "What would you like to watermark?")
		_, _ = fmt.Fprintln(p.out, "  1) Single video file")
		_, _ = fmt.Fprintln(p.out, "  2) All videos in a directory")
		answer, err := p.ask("Choice [1]: ")
		if err != nil {
			return modeFile, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "", "1", "f", "file", "single":
			return modeFile, nil
		case "2", "d", "dir", "directory":
			return modeDirectory, nil
		}
		_, _ = fmt.Fprintln(p.out, "Please enter 1 or 2.")
	}
}

// askPath asks until the answer names an existing file or directory,
// whichever mode requires.
func (p *prompter) askPath(mode inputMode) (string, error) {
	question := "Enter the path to your video file: "
	if mode == modeDirectory {
		question = "Enter the path to the directory containing videos: "
	}

	for {
		raw, err := p.ask(question)
		if err != nil {
			return "", err
		}
		path := util.NormalizePastedPath(raw)
		switch {
		case path == "":
			_, _ = fmt.Fprintln(p.out, "Please enter a non-empty path.")
		case mode == modeFile && !util.FileExists(path):
			_, _ = fmt.Fprintln(p.out, "File not found. Please enter a valid path to a video file.")
		case mode == modeDirectory && !util.DirectoryExists(path):
			_, _ = fmt.Fprintln(p.out, "Directory not found. Please enter a valid directory path.")
		default:
			return path, nil
		}
	}
}

// askText asks for both lines until at least one is non-empty.
func (p *prompter) askText() (string, string, error) {
	for {
		line1, err := p.ask("Enter watermark text - Line 1 (optional): ")
		if err != nil {
			return "", "", err
		}
		line2, err := p.ask("Enter watermark text - Line 2 (optional): ")
		if err != nil {
			return "", "", err
		}
		line1, line2 = strings.TrimSpace(line1), strings.TrimSpace(line2)
		if line1 != "" || line2 != "" {
			return line1, line2, nil
		}
		_, _ = fmt.Fprintln(p.out, "At least one line of text is required. Please try again.")
		_, _ = fmt.Fprintln(p.out)
	}
}
