package util

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// SystemInfo contains information about the host system.
type SystemInfo struct {
	Hostname string
	NumCPU   int
	OS       string
	Arch     string
}

// GetSystemInfo collects system information.
func GetSystemInfo() SystemInfo {
	hostname, _ := os.Hostname()
	return SystemInfo{
		Hostname: hostname,
		NumCPU:   runtime.NumCPU(),
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
	}
}

// ToolAvailable reports whether name resolves on the executable search path.
func ToolAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// CheckDiskSpace returns an error when dir has less free space than need.
// Platforms without a free-space query always pass.
func CheckDiskSpace(dir string, need uint64) error {
	avail, err := GetAvailableSpace(dir)
	if err != nil {
		return fmt.Errorf("failed to query free space for %s: %w", dir, err)
	}
	if avail == 0 {
		return nil
	}
	if avail < need {
		return fmt.Errorf("only %s free in %s, source is %s", FormatBytes(avail), dir, FormatBytes(need))
	}
	return nil
}
