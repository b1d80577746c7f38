package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMediaPathClassification(t *testing.T) {
	tests := []struct {
		path         string
		audio, video bool
	}{
		{"talk.mp3", true, false},
		{"TALK.WAV", true, false},
		{"mic.m4a", true, false},
		{"a.ogg", true, false},
		{"a.flac", true, false},
		{"screen.mp4", false, true},
		{"screen.MOV", false, true},
		{"clip.webm", false, true},
		{"notes.txt", false, false},
		{"noext", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsAudioPath(tt.path); got != tt.audio {
				t.Errorf("IsAudioPath(%q) = %v", tt.path, got)
			}
			if got := IsVideoPath(tt.path); got != tt.video {
				t.Errorf("IsVideoPath(%q) = %v", tt.path, got)
			}
			if got := IsMediaPath(tt.path); got != (tt.audio || tt.video) {
				t.Errorf("IsMediaPath(%q) = %v", tt.path, got)
			}
		})
	}
}

func TestOutputNaming(t *testing.T) {
	if got := TranscriptionPath("/rec/channel-2-microphone-0.mp3"); got != "/rec/channel-2-microphone-0.transcription.txt" {
		t.Errorf("TranscriptionPath = %q", got)
	}
	if got := SEOPath("/rec/talk.transcription.txt"); got != "/rec/talk.transcription.seo.json" {
		t.Errorf("SEOPath = %q", got)
	}

	paths := ResolvePipelinePaths("/rec/channel-2-microphone-0.m4a")
	want := PipelinePaths{
		MP3:        "/rec/channel-2-microphone-0.mp3",
		Transcript: "/rec/channel-2-microphone-0.txt",
		SEO:        "/rec/channel-2-microphone-0-seo.json",
	}
	if paths != want {
		t.Errorf("ResolvePipelinePaths = %+v, want %+v", paths, want)
	}
}

func TestFileHelpers(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "clip.final.mp4")
	if err := os.WriteFile(file, []byte("12345"), 0o644); err != nil {
		t.Fatal(err)
	}

	if GetFileStem(file) != "clip.final" {
		t.Errorf("GetFileStem = %q", GetFileStem(file))
	}
	if size, err := GetFileSize(file); err != nil || size != 5 {
		t.Errorf("GetFileSize = %d, %v", size, err)
	}
	if !FileExists(file) || FileExists(dir) {
		t.Error("FileExists should only match regular files")
	}
	if !DirectoryExists(dir) || DirectoryExists(file) {
		t.Error("DirectoryExists should only match directories")
	}
}
