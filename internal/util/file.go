package util

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// VideoExtensions is the list of supported video file extensions.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
}

// WatermarkSuffix is appended to the source stem to name the output file.
const WatermarkSuffix = "_watermarked"

// OutputExtension is the container extension of every output file.
const OutputExtension = ".mp4"

// HasVideoExtension reports whether name carries a supported extension.
func HasVideoExtension(name string) bool {
	return VideoExtensions[strings.ToLower(filepath.Ext(name))]
}

var outputNamePattern = regexp.MustCompile(`(?i)` + WatermarkSuffix + `(_copy\d*)?\` + OutputExtension + `$`)

// IsWatermarkOutput reports whether name follows the UniqueOutputPath
// naming, i.e. it is a previous run's output rather than a source.
func IsWatermarkOutput(name string) bool {
	return outputNamePattern.MatchString(filepath.Base(name))
}

// GetFilename returns the filename from a path.
func GetFilename(path string) string {
	return filepath.Base(path)
}

// GetFileStem returns the filename without extension.
func GetFileStem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()), nil
}

// EnsureDirectory creates a directory if it doesn't exist.
func EnsureDirectory(path string) error {
	return os.MkdirAll(path, 0755)
}

// DirectoryExists checks if a directory exists.
func DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// pathExists is true for anything occupying the name, directories included.
func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// UniqueOutputPath derives the watermarked output name for source.
// outputDir overrides the source's directory when non-empty. The first free
// name in the sequence <stem>_watermarked.mp4, <stem>_watermarked_copy.mp4,
// <stem>_watermarked_copy2.mp4, ... is returned. Nothing is created.
func UniqueOutputPath(source, outputDir string) string {
	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(source)
	}
	base := GetFileStem(source) + WatermarkSuffix

	candidate := filepath.Join(dir, base+OutputExtension)
	if !pathExists(candidate) {
		return candidate
	}

	for n := 1; ; n++ {
		suffix := "_copy"
		if n > 1 {
			suffix = fmt.Sprintf("_copy%d", n)
		}
		candidate = filepath.Join(dir, base+suffix+OutputExtension)
		if !pathExists(candidate) {
			return candidate
		}
	}
}

// OutputTarget pairs the intermediate video-only file with the final output.
type OutputTarget struct {
	// VideoOnlyPath holds the encoded frames before audio is muxed in.
	VideoOnlyPath string
	// FinalPath is where the finished video ends up.
	FinalPath string
}

// ResolveOutputTarget picks a unique final path for source and derives the
// hidden, deterministic video-only path next to it.
func ResolveOutputTarget(source, outputDir string) OutputTarget {
	final := UniqueOutputPath(source, outputDir)
	return OutputTarget{
		VideoOnlyPath: VideoOnlyPath(final),
		FinalPath:     final,
	}
}

// VideoOnlyPath returns the temporary path used while writing final.
// A leftover file from an interrupted run is simply overwritten.
func VideoOnlyPath(final string) string {
	return filepath.Join(filepath.Dir(final), "."+GetFileStem(final)+".video-only"+OutputExtension)
}

// NormalizePastedPath cleans up a path typed or pasted into a terminal:
// surrounding whitespace and quotes are dropped, Finder-style "\ " escapes
// become spaces, and ~ and environment variables are expanded.
func NormalizePastedPath(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 && s[0] == s[len(s)-1] && (s[0] == '"' || s[0] == '\'') {
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer(`"`, "", `'`, "").Replace(s)
	s = strings.ReplaceAll(s, `\ `, " ")
	s = os.ExpandEnv(s)
	if s == "~" || strings.HasPrefix(s, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			s = filepath.Join(home, strings.TrimPrefix(s, "~"))
		}
	}
	return s
}
