package recording

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/five82/tubeprep/internal/errors"
	"github.com/five82/tubeprep/internal/ffprobe"
	"github.com/five82/tubeprep/internal/fileutil"
	"github.com/five82/tubeprep/internal/logging"
	"github.com/five82/tubeprep/internal/util"
)

var (
	timestampRegex = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d+`)
	modelRegex     = regexp.MustCompile(`modelIdentifier=(\S+)`)
	osRegex        = regexp.MustCompile(`operatingSystem=([^\n]+)`)
	durationRegex  = regexp.MustCompile(`Duração:(\d+\.\d+)`)
)

// Prober inspects media files. *ffprobe.Prober satisfies it.
type Prober interface {
	Inspect(ctx context.Context, path string) (*ffprobe.MediaInfo, error)
}

// Device is the recording machine.
type Device struct {
	Model string `json:"model,omitempty"`
	OS    string `json:"os,omitempty"`
}

// Info is what the polyrecorder log reveals about a recording.
type Info struct {
	Timestamp string   `json:"timestamp,omitempty"`
	Device    Device   `json:"device"`
	Duration  *float64 `json:"duration,omitempty"`
}

// Metadata is the combined view of a project.
type Metadata struct {
	Project       map[string]any                `json:"project,omitempty"`
	RecordingInfo *Info                         `json:"recording_info,omitempty"`
	Media         map[string]*ffprobe.MediaInfo `json:"media"`
	Warnings      []string                      `json:"warnings,omitempty"`
	GeneratedAt   string                        `json:"generated_at,omitempty"`
}

// Reader extracts project metadata.
type Reader struct {
	Prober Prober
}

// NewReader uses ffprobe from PATH.
func NewReader() *Reader {
	return &Reader{Prober: ffprobe.Default}
}

// Extract reads project.json, the polyrecorder log and probes every media file.
// Problems with individual files become warnings.
func (r *Reader) Extract(ctx context.Context, dir string) (*Metadata, error) {
	layout, err := Locate(dir)
	if err != nil {
		return nil, err
	}
	meta := &Metadata{Media: make(map[string]*ffprobe.MediaInfo)}

	projectPath := filepath.Join(layout.Root, ProjectFile)
	if data, err := os.ReadFile(projectPath); err == nil {
		var project map[string]any
		if err := json.Unmarshal(data, &project); err != nil {
			meta.warn("could not decode %s: %v", ProjectFile, err)
		} else {
			meta.Project = project
		}
	}

	if layout.RecordingDir != "" {
		logPath := filepath.Join(layout.RecordingDir, PolyrecorderLog)
		if data, err := os.ReadFile(logPath); err == nil {
			meta.RecordingInfo = ParseLog(string(data))
		} else if !os.IsNotExist(err) {
			meta.warn("could not read %s: %v", PolyrecorderLog, err)
		}
	}

	prober := r.Prober
	if prober == nil {
		prober = ffprobe.Default
	}
	for _, kind := range MediaKinds {
		path := layout.Media(kind)
		if path == "" {
			continue
		}
		info, err := prober.Inspect(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.NewCancelledError()
			}
			meta.warn("could not probe %s: %v", filepath.Base(path), err)
			continue
		}
		meta.Media[kind] = info
	}
	return meta, nil
}

func (m *Metadata) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logging.Warn("recording metadata", "warning", msg)
	m.Warnings = append(m.Warnings, msg)
}

// ParseLog extracts timestamp, device and duration from a polyrecorder log.
func ParseLog(content string) *Info {
	info := &Info{Timestamp: timestampRegex.FindString(content)}
	if m := modelRegex.FindStringSubmatch(content); m != nil {
		info.Device.Model = m[1]
	}
	if m := osRegex.FindStringSubmatch(content); m != nil {
		info.Device.OS = strings.TrimSpace(m[1])
	}
	if m := durationRegex.FindStringSubmatch(content); m != nil {
		if d, err := strconv.ParseFloat(m[1], 64); err == nil {
			info.Duration = &d
		}
	}
	return info
}

// Save writes the metadata as indented JSON, stamping generated_at.
func (m *Metadata) Save(path string) error {
	m.GeneratedAt = time.Now().Format(time.RFC3339)
	if err := fileutil.WriteJSON(path, m); err != nil {
		return errors.NewIOError("save metadata", err)
	}
	return nil
}

// projectDetails returns the ScreenStudio project object, which is nested
// under "json" in project.json.
func (m *Metadata) projectDetails() map[string]any {
	if m.Project == nil {
		return nil
	}
	if nested, ok := m.Project["json"].(map[string]any); ok {
		return nested
	}
	return nil
}

// Summary renders labelled lines for the terminal.
func (m *Metadata) Summary() string {
	var lines []string
	unknown := func(v any) string {
		switch s := v.(type) {
		case nil:
			return "Unknown"
		case string:
			if s == "" {
				return "Unknown"
			}
			return s
		default:
			return fmt.Sprint(s)
		}
	}

	if project := m.projectDetails(); project != nil {
		lines = append(lines,
			"Name: "+unknown(project["name"]),
			"ID: "+unknown(project["id"]),
			"Created: "+unknown(project["createdAt"]),
			"Updated: "+unknown(project["updatedAt"]),
		)
	}

	if info := m.RecordingInfo; info != nil {
		lines = append(lines, "", "Recording:")
		if info.Timestamp != "" {
			lines = append(lines, "Timestamp: "+info.Timestamp)
		}
		if info.Device.Model != "" {
			lines = append(lines, "Model: "+info.Device.Model)
		}
		if info.Device.OS != "" {
			lines = append(lines, "Operating system: "+info.Device.OS)
		}
		if info.Duration != nil && *info.Duration > 0 {
			lines = append(lines, fmt.Sprintf("Duration: %.2f seconds", *info.Duration))
		}
	}

	if len(m.Media) > 0 {
		title := cases.Title(language.English)
		lines = append(lines, "", "Media files:")
		for _, kind := range MediaKinds {
			media, ok := m.Media[kind]
			if !ok {
				continue
			}
			lines = append(lines,
				"",
				"- "+title.String(kind)+":",
				"  File: "+filepath.Base(media.Path),
				fmt.Sprintf("  Duration: %.2f seconds", media.Duration),
				fmt.Sprintf("  Size: %.2f MB", util.BytesToMB(uint64(max(media.Size, 0)))),
			)
			if v := media.Video; v != nil {
				lines = append(lines,
					fmt.Sprintf("  Resolution: %dx%d", v.Width, v.Height),
					"  Codec: "+unknown(v.Codec),
					fmt.Sprintf("  Framerate: %g FPS", v.Framerate),
				)
			}
			if a := media.Audio; a != nil {
				lines = append(lines,
					"  Audio codec: "+unknown(a.Codec),
					fmt.Sprintf("  Channels: %d", a.Channels),
					"  Sample rate: "+unknown(a.SampleRate)+" Hz",
				)
			}
		}
	}

	if len(lines) == 0 {
		return "No metadata available"
	}
	return strings.Join(lines, "\n")
}
