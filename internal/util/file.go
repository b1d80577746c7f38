package util

import (
	"os"
	"path/filepath"
	"strings"
)

// AudioExtensions lists audio formats accepted for silence removal and transcription.
var AudioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".ogg":  true,
	".flac": true,
}

// VideoExtensions lists containers whose audio track can be extracted.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
}

// Ext returns the lower-cased extension of path.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// IsAudioPath reports whether path has a supported audio extension.
func IsAudioPath(path string) bool {
	return AudioExtensions[Ext(path)]
}

// IsVideoPath reports whether path has a supported video extension.
func IsVideoPath(path string) bool {
	return VideoExtensions[Ext(path)]
}

// IsMediaPath reports whether path is a supported audio or video file name.
func IsMediaPath(path string) bool {
	return IsAudioPath(path) || IsVideoPath(path)
}

// GetFileStem returns the filename without extension.
func GetFileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// TrimExt returns path with its final extension removed.
func TrimExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()), nil
}

// DirectoryExists checks if a directory exists.
func DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FileExists checks if a regular file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// TranscriptionPath is where the transcribe command writes its text:
// "<dir>/<stem>.transcription.txt".
func TranscriptionPath(audioPath string) string {
	return TrimExt(audioPath) + ".transcription.txt"
}

// SEOPath is where the seo command writes metadata: "<dir>/<stem>.seo.json".
func SEOPath(transcriptPath string) string {
	return TrimExt(transcriptPath) + ".seo.json"
}

// PipelinePaths are the artifacts produced by convert-transcribe-seo.
type PipelinePaths struct {
	MP3        string
	Transcript string
	SEO        string
}

// ResolvePipelinePaths derives the pipeline artifact names from the input:
// "<stem>.mp3", "<stem>.txt" and "<stem>-seo.json" beside it.
func ResolvePipelinePaths(input string) PipelinePaths {
	base := TrimExt(input)
	return PipelinePaths{
		MP3:        base + ".mp3",
		Transcript: base + ".txt",
		SEO:        base + "-seo.json",
	}
}
