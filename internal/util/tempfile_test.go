package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureDirectoryWritable(t *testing.T) {
	// Test with valid writable directory
	tmpDir := t.TempDir()
	if err := EnsureDirectoryWritable(tmpDir); err != nil {
		t.Errorf("Expected no error for writable dir, got %v", err)
	}

	// Test with non-existent directory
	err := EnsureDirectoryWritable("/nonexistent/directory/path")
	if err == nil {
		t.Error("Expected error for non-existent directory")
	}

	// Test with file instead of directory
	tmpFile := filepath.Join(tmpDir, "testfile")
	if err := os.WriteFile(tmpFile, []byte("test"), 0644); err != nil {
		t.Fatal(err)
	}
	err = EnsureDirectoryWritable(tmpFile)
	if err == nil {
		t.Error("Expected error for file instead of directory")
	}
}

func TestCreateTempDir(t *testing.T) {
	baseDir := t.TempDir()

	tempDir, err := CreateTempDir(baseDir, "test")
	if err != nil {
		t.Fatalf("CreateTempDir failed: %v", err)
	}
	t.Cleanup(func() { _ = tempDir.Cleanup() })

	// Check that directory was created
	info, err := os.Stat(tempDir.Path())
	if err != nil {
		t.Fatalf("Temp directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("Expected a directory")
	}

	// Check that prefix is in the path
	if filepath.Base(tempDir.Path())[:5] != "test_" {
		t.Errorf("Directory name should start with 'test_', got %s", filepath.Base(tempDir.Path()))
	}

	// Test cleanup
	path := tempDir.Path()
	if err := tempDir.Cleanup(); err != nil {
		t.Errorf("Cleanup failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Directory should be removed after cleanup")
	}
}

func TestCleanupStaleTempFiles(t *testing.T) {
	baseDir := t.TempDir()

	// Create some test files with the prefix
	for i := range 3 {
		path := filepath.Join(baseDir, "test_old"+string(rune('0'+i))+".tmp")
		if err := os.WriteFile(path, []byte("test"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	// Create a file without the prefix
	otherPath := filepath.Join(baseDir, "other.tmp")
	if err := os.WriteFile(otherPath, []byte("test"), 0644); err != nil {
		t.Fatal(err)
	}

	// Cleanup with 0 max age should remove all matching files
	count, err := CleanupStaleTempFiles(baseDir, "test", 0)
	if err != nil {
		t.Fatalf("CleanupStaleTempFiles failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 files cleaned, got %d", count)
	}

	// The other file should still exist
	if _, err := os.Stat(otherPath); os.IsNotExist(err) {
		t.Error("File without prefix should not be removed")
	}
}

func TestCleanupStaleTempFiles_NonExistentDir(t *testing.T) {
	// Should not error on non-existent directory
	count, err := CleanupStaleTempFiles("/nonexistent/path", "test", 0)
	if err != nil {
		t.Errorf("Should not error on non-existent dir: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 files cleaned, got %d", count)
	}
}

func TestGetAvailableSpace(t *testing.T) {
	if space := GetAvailableSpace("/nonexistent/path"); space != 0 {
		t.Errorf("Expected 0 for invalid path, got %d", space)
	}
	if space := GetAvailableSpace(t.TempDir()); space == 0 {
		t.Log("GetAvailableSpace returned 0, this might be expected on some systems")
	}
}

func TestCheckDiskSpace(t *testing.T) {
	dir := t.TempDir()
	if err := CheckDiskSpace(dir, 1); err != nil {
		t.Errorf("1 byte should fit: %v", err)
	}
	if GetAvailableSpace(dir) > 0 {
		if err := CheckDiskSpace(dir, ^uint64(0)); err == nil {
			t.Error("expected insufficient space error")
		}
	}
}

func TestGenerateRandomString(t *testing.T) {
	s1 := generateRandomString(8)
	if len(s1) != 8 {
		t.Errorf("Expected length 8, got %d", len(s1))
	}
	if s2 := generateRandomString(8); s1 == s2 {
		t.Error("Two random strings should be different")
	}
}
