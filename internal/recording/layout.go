// Package recording reads ScreenStudio project directories.
package recording

import (
	"path/filepath"

	"github.com/five82/tubeprep/internal/errors"
	"github.com/five82/tubeprep/internal/util"
)

// Well-known names inside a ScreenStudio project.
const (
	ProjectFile      = "project.json"
	RecordingDirName = "recording"
	PolyrecorderLog  = "polyrecorder.log"
	DisplayFile      = "channel-1-display-0.mp4"
	MicrophoneFile   = "channel-2-microphone-0.m4a"
	WebcamFile       = "channel-3-webcam-0.mp4"
	SEOFile          = "channel-2-microphone-0-seo.json"
)

// Media kinds in display order.
const (
	KindDisplay    = "display"
	KindMicrophone = "microphone"
	KindWebcam     = "webcam"
)

// MediaKinds lists the kinds in the order they are reported.
var MediaKinds = []string{KindDisplay, KindMicrophone, KindWebcam}

var mediaFiles = map[string]string{
	KindDisplay:    DisplayFile,
	KindMicrophone: MicrophoneFile,
	KindWebcam:     WebcamFile,
}

// Layout holds the resolved paths of a project. Missing media are empty.
type Layout struct {
	Root         string
	RecordingDir string
	Display      string
	Microphone   string
	Webcam       string
}

// Media returns the path for a media kind.
func (l *Layout) Media(kind string) string {
	switch kind {
	case KindDisplay:
		return l.Display
	case KindMicrophone:
		return l.Microphone
	case KindWebcam:
		return l.Webcam
	}
	return ""
}

// Locate resolves the layout of the project at dir. dir may also be the
// recording directory itself.
func Locate(dir string) (*Layout, error) {
	if !util.DirectoryExists(dir) {
		return nil, errors.NewPathError("recording directory not found: " + dir)
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.NewPathError("cannot resolve " + dir + ": " + err.Error())
	}
	recDir := filepath.Join(root, RecordingDirName)
	if filepath.Base(root) == RecordingDirName && !util.DirectoryExists(recDir) {
		recDir = root
		root = filepath.Dir(root)
	}
	if !util.DirectoryExists(recDir) {
		recDir = ""
	}

	l := &Layout{Root: root, RecordingDir: recDir}
	l.Display = findMedia(root, recDir, DisplayFile)
	l.Microphone = findMedia(root, recDir, MicrophoneFile)
	l.Webcam = findMedia(root, recDir, WebcamFile)
	return l, nil
}

// FindRecordingDir returns the recording/ directory of a project, accepting
// the recording directory itself.
func FindRecordingDir(dir string) (string, error) {
	l, err := Locate(dir)
	if err != nil {
		return "", err
	}
	if l.RecordingDir == "" {
		return "", errors.NewRecordingError("no recording directory found in " + dir)
	}
	return l.RecordingDir, nil
}

// findMedia looks for name in the project root, then in recording/.
func findMedia(root, recDir, name string) string {
	for _, dir := range []string{root, recDir} {
		if dir == "" {
			continue
		}
		if p := filepath.Join(dir, name); util.FileExists(p) {
			return p
		}
	}
	return ""
}
