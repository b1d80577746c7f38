package util

import (
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sys/unix"
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

// LogicalCores returns the number of logical CPU cores.
func LogicalCores() int {
	return runtime.NumCPU()
}

// ClampJobs bounds a requested worker count to [1, LogicalCores()].
func ClampJobs(jobs int) int {
	if jobs < 1 {
		return 1
	}
	return min(jobs, LogicalCores())
}

// GetAvailableSpace returns the free bytes available to unprivileged users on
// the filesystem holding path, or 0 when it cannot be determined.
func GetAvailableSpace(path string) uint64 {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0
	}
	return stat.Bavail * uint64(stat.Bsize)
}

// CheckDiskSpace fails when the filesystem holding path has less than
// required bytes free. Unknown free space is not an error.
func CheckDiskSpace(path string, required uint64) error {
	available := GetAvailableSpace(path)
	if available == 0 || available >= required {
		return nil
	}
	return fmt.Errorf("insufficient disk space at %s: %s free, %s required",
		path, FormatBytes(available), FormatBytes(required))
}
