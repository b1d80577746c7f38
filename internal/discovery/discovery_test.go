package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/five82/tubeprep/internal/errors"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestFindMediaFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.MP4", "a.m4a", "C.wav", ".hidden.mp3", "notes.txt", "talk.mov", "talk.mp3")
	if err := os.Mkdir(filepath.Join(dir, "sub.mp3"), 0o755); err != nil {
		t.Fatal(err)
	}

	res, err := FindMediaFiles(dir)
	if err != nil {
		t.Fatalf("FindMediaFiles: %v", err)
	}
	var names []string
	for _, f := range res.Files {
		names = append(names, filepath.Base(f))
	}
	want := []string{"a.m4a", "b.MP4", "C.wav", "talk.mp3"}
	if len(names) != len(want) {
		t.Fatalf("files = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("files = %v, want %v", names, want)
		}
	}
	if res.SkippedCount != 1 {
		t.Errorf("skipped = %d, want 1", res.SkippedCount)
	}
	if len(res.Superseded) != 1 || filepath.Base(res.Superseded[0]) != "talk.mov" {
		t.Errorf("superseded = %v", res.Superseded)
	}
}

func TestFindMediaFilesErrors(t *testing.T) {
	empty := t.TempDir()
	touch(t, empty, "readme.md")
	file := filepath.Join(t.TempDir(), "a.mp3")
	touch(t, filepath.Dir(file), "a.mp3")

	tests := []struct {
		name string
		dir  string
		kind errors.ErrorKind
	}{
		{"missing", filepath.Join(empty, "nope"), errors.KindPath},
		{"file", file, errors.KindPath},
		{"no media", empty, errors.KindNoFilesFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FindMediaFiles(tt.dir); !errors.IsKind(err, tt.kind) {
				t.Fatalf("expected %v, got %v", tt.kind, err)
			}
		})
	}
}
