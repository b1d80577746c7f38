package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/five82/tubeprep/internal/errors"
)

// FilterGraph builds a filter_complex string from labelled chains.
type FilterGraph struct {
	chains []string
}

// NewFilterGraph creates an empty graph.
func NewFilterGraph() *FilterGraph {
	return &FilterGraph{}
}

// AddChain appends a chain such as "[1:v]scale=480:-2[pip]".
func (g *FilterGraph) AddChain(chain string) *FilterGraph {
	if chain != "" {
		g.chains = append(g.chains, chain)
	}
	return g
}

// Build joins the chains with ';'. Returns "" for an empty graph.
func (g *FilterGraph) Build() string {
	return strings.Join(g.chains, ";")
}

// IsEmpty returns true if no chains are present.
func (g *FilterGraph) IsEmpty() bool {
	return len(g.chains) == 0
}

// OverlayPosition returns the overlay x:y expression for a named corner.
func OverlayPosition(position string, margin int) (string, error) {
	m := strconv.Itoa(margin)
	switch position {
	case "top-left":
		return m + ":" + m, nil
	case "top-right":
		return "W-w-" + m + ":" + m, nil
	case "bottom-left":
		return m + ":H-h-" + m, nil
	case "bottom-right":
		return "W-w-" + m + ":H-h-" + m, nil
	case "center":
		return "(W-w)/2:(H-h)/2", nil
	default:
		return "", errors.NewConfigError(fmt.Sprintf("unknown pip position %q", position))
	}
}

// PipWidth returns the even webcam width for a display width and scale.
func PipWidth(displayWidth int, scale float64) int {
	w := int(float64(displayWidth) * scale)
	w -= w % 2
	return max(w, 2)
}

// ComposeOptions describes a screen recording to flatten into one MP4.
type ComposeOptions struct {
	Display      string
	Webcam       string // empty disables picture-in-picture
	Microphone   string // empty falls back to the display audio
	Output       string
	DisplayWidth int
	Position     string
	Scale        float64
	Margin       int
	CRF          int
}

// Compose builds the ffmpeg arguments for a display capture with an optional
// webcam overlay and a separate microphone track, encoded as H.264/AAC.
func Compose(opts ComposeOptions) ([]string, error) {
	args := append(baseArgs(), "-i", opts.Display)
	nextInput := 1

	graph := NewFilterGraph()
	if opts.Webcam != "" {
		pos, err := OverlayPosition(opts.Position, opts.Margin)
		if err != nil {
			return nil, err
		}
		if opts.DisplayWidth <= 0 {
			return nil, errors.NewFFmpegError("display width unknown, cannot size the webcam overlay", nil)
		}
		args = append(args, "-i", opts.Webcam)
		graph.AddChain(fmt.Sprintf("[%d:v]scale=%d:-2[pip]", nextInput, PipWidth(opts.DisplayWidth, opts.Scale)))
		graph.AddChain("[0:v][pip]overlay=" + pos + "[v]")
		nextInput++
	}

	micInput := -1
	if opts.Microphone != "" {
		args = append(args, "-i", opts.Microphone)
		micInput = nextInput
	}

	if graph.IsEmpty() {
		args = append(args, "-map", "0:v")
	} else {
		args = append(args, "-filter_complex", graph.Build(), "-map", "[v]")
	}
	if micInput >= 0 {
		args = append(args, "-map", fmt.Sprintf("%d:a", micInput))
	} else {
		args = append(args, "-map", "0:a?")
	}

	args = append(args,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", strconv.Itoa(opts.CRF),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-movflags", "+faststart",
		opts.Output,
	)
	return args, nil
}
