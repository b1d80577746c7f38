// Package ffprobe extracts media information by running ffprobe.
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/five82/tubeprep/internal/errors"
)

// MediaInfo is the summary of a media file used by analyze, silence removal
// and composition.
type MediaInfo struct {
	Path     string     `json:"path"`
	Duration float64    `json:"duration"`
	Size     int64      `json:"size"`
	BitRate  int64      `json:"bit_rate,omitempty"`
	Format   string     `json:"format"`
	Video    *VideoInfo `json:"video,omitempty"`
	Audio    *AudioInfo `json:"audio,omitempty"`
}

// VideoInfo describes the first video stream.
type VideoInfo struct {
	Codec     string  `json:"codec"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Framerate float64 `json:"framerate"`
}

// AudioInfo describes the first audio stream.
type AudioInfo struct {
	Codec         string `json:"codec"`
	SampleRate    string `json:"sample_rate"`
	Channels      int    `json:"channels"`
	ChannelLayout string `json:"channel_layout,omitempty"`
}

// HasAudio reports whether an audio stream was found.
func (m *MediaInfo) HasAudio() bool { return m != nil && m.Audio != nil }

// HasVideo reports whether a video stream was found.
func (m *MediaInfo) HasVideo() bool { return m != nil && m.Video != nil }

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

type ffprobeStream struct {
	CodecType     string `json:"codec_type"`
	CodecName     string `json:"codec_name"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	AvgFrameRate  string `json:"avg_frame_rate"`
	SampleRate    string `json:"sample_rate"`
	Channels      int    `json:"channels"`
	ChannelLayout string `json:"channel_layout"`
}

// Prober runs an ffprobe binary.
type Prober struct {
	Binary string
}

// Default uses ffprobe from PATH.
var Default = &Prober{Binary: "ffprobe"}

// Inspect is Default.Inspect.
func Inspect(ctx context.Context, path string) (*MediaInfo, error) {
	return Default.Inspect(ctx, path)
}

// Inspect probes path and returns its media summary.
func (p *Prober) Inspect(ctx context.Context, path string) (*MediaInfo, error) {
	binary := p.Binary
	if binary == "" {
		binary = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.WrapExecError(binary, err, strings.TrimSpace(stderr.String()))
	}

	probe, err := parseFFprobeOutput(output)
	if err != nil {
		return nil, err
	}
	return toMediaInfo(path, probe), nil
}

func parseFFprobeOutput(data []byte) (*ffprobeOutput, error) {
	var result ffprobeOutput
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.NewFFprobeParseError("failed to parse ffprobe output", err)
	}
	return &result, nil
}

func toMediaInfo(path string, probe *ffprobeOutput) *MediaInfo {
	info := &MediaInfo{
		Path:     path,
		Duration: parseFloat(probe.Format.Duration),
		Size:     parseInt(probe.Format.Size),
		BitRate:  parseInt(probe.Format.BitRate),
		Format:   probe.Format.FormatName,
	}

	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "video":
			if info.Video == nil {
				info.Video = &VideoInfo{
					Codec:     stream.CodecName,
					Width:     stream.Width,
					Height:    stream.Height,
					Framerate: ParseFrameRate(stream.AvgFrameRate),
				}
			}
		case "audio":
			if info.Audio == nil {
				info.Audio = &AudioInfo{
					Codec:         stream.CodecName,
					SampleRate:    stream.SampleRate,
					Channels:      stream.Channels,
					ChannelLayout: stream.ChannelLayout,
				}
			}
		}
	}
	return info
}

// ParseFrameRate converts an ffprobe "num/den" rate to frames per second
// rounded to two decimals. Malformed input or a zero denominator yields 0.
func ParseFrameRate(fraction string) float64 {
	num, den, ok := strings.Cut(fraction, "/")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return 0
	}
	d, err := strconv.Atoi(strings.TrimSpace(den))
	if err != nil || d == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(d)*100) / 100
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
