package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TempDir is a scratch directory removed by Cleanup.
type TempDir struct {
	path string
}

// Path returns the directory path.
func (d *TempDir) Path() string { return d.path }

// Join returns a path inside the directory.
func (d *TempDir) Join(name string) string { return filepath.Join(d.path, name) }

// Cleanup removes the directory and everything in it.
func (d *TempDir) Cleanup() error {
	if d == nil || d.path == "" {
		return nil
	}
	return os.RemoveAll(d.path)
}

// EnsureDirectoryWritable verifies that path is an existing writable directory.
func EnsureDirectoryWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	probe, err := os.CreateTemp(path, ".tubeprep_write_test_*")
	if err != nil {
		return fmt.Errorf("directory %s is not writable: %w", path, err)
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}

// CreateTempDir creates "<baseDir>/<prefix>_<random>". An empty baseDir uses
// the system temp directory.
func CreateTempDir(baseDir, prefix string) (*TempDir, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	path := filepath.Join(baseDir, prefix+"_"+generateRandomString(8))
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return &TempDir{path: path}, nil
}

// CleanupStaleTempFiles removes entries in dir starting with "<prefix>_"
// older than maxAge. A missing dir is not an error.
func CleanupStaleTempFiles(dir, prefix string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), prefix+"_") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

func generateRandomString(n int) string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}
