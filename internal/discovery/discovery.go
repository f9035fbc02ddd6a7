// Package discovery finds the video files a run should watermark.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	verrors "github.com/five82/vidmark/internal/errors"
	"github.com/five82/vidmark/internal/util"
)

// DiscoveryLogger defines the interface for discovery logging.
type DiscoveryLogger interface {
	Info(format string, args ...any)
	Debug(format string, args ...any)
}

// DiscoveryResult contains the results of file discovery with metadata.
type DiscoveryResult struct {
	Files        []string
	SkippedCount int
	// PreviousOutputs counts files left by an earlier run next to their
	// sources. They are never watermarked again.
	PreviousOutputs int
}

// FindVideoFiles lists the video files directly inside inputDir.
// Subdirectories are not descended into and hidden entries are ignored.
// Extensions match case-insensitively. Results are sorted by filename.
func FindVideoFiles(inputDir string) ([]string, error) {
	result, err := FindVideoFilesWithLogging(inputDir, nil)
	if err != nil {
		return nil, err
	}
	return result.Files, nil
}

// FindVideoFilesWithLogging finds video files and logs discovery progress.
// Logs the first 5 files found plus a count summary.
func FindVideoFilesWithLogging(inputDir string, logger DiscoveryLogger) (*DiscoveryResult, error) {
	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, verrors.NewPathError(fmt.Sprintf("directory does not exist: %s", inputDir))
	}
	if !info.IsDir() {
		return nil, verrors.NewPathError(fmt.Sprintf("%s is not a directory", inputDir))
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, verrors.NewIOError(fmt.Sprintf("cannot read directory %s", inputDir), err)
	}

	result := &DiscoveryResult{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		if util.IsWatermarkOutput(name) {
			result.PreviousOutputs++
			continue
		}

		if util.HasVideoExtension(name) && entry.Type().IsRegular() {
			result.Files = append(result.Files, filepath.Join(inputDir, name))
		} else {
			result.SkippedCount++
		}
	}

	if len(result.Files) == 0 {
		return nil, verrors.NewNoFilesFoundError(inputDir)
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return strings.ToLower(filepath.Base(result.Files[i])) < strings.ToLower(filepath.Base(result.Files[j]))
	})

	if logger != nil {
		logDiscoveredFiles(result, logger)
	}

	return result, nil
}

// ResolveInputs expands input into the list of files to process: a single
// file is returned as-is, a directory is scanned with FindVideoFiles.
func ResolveInputs(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, verrors.NewPathError(fmt.Sprintf("input does not exist: %s", input))
	}
	if info.IsDir() {
		return FindVideoFiles(input)
	}
	return []string{input}, nil
}

// logDiscoveredFiles logs the first 5 discovered files plus a count.
func logDiscoveredFiles(result *DiscoveryResult, logger DiscoveryLogger) {
	files := result.Files
	logger.Info("Found %d video file(s)", len(files))
	if result.SkippedCount > 0 {
		logger.Debug("Skipped %d non-video file(s)", result.SkippedCount)
	}
	if result.PreviousOutputs > 0 {
		logger.Info("Skipped %d previously watermarked file(s)", result.PreviousOutputs)
	}

	for i := 0; i < min(5, len(files)); i++ {
		logger.Debug("  %s", filepath.Base(files[i]))
	}

	if len(files) > 5 {
		logger.Debug("  ... and %d more", len(files)-5)
	}
}
