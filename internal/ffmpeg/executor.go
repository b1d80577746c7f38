// Package ffmpeg builds ffmpeg argument lists and runs them with progress reporting.
package ffmpeg

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/five82/tubeprep/internal/errors"
	"github.com/five82/tubeprep/internal/logging"
	"github.com/five82/tubeprep/internal/util"
)

// Progress represents the state of a running ffmpeg job.
type Progress struct {
	Percent     float32
	Speed       float32
	ETA         time.Duration
	Bitrate     string
	ElapsedSecs float64
}

// ProgressCallback is called with progress updates while ffmpeg runs.
type ProgressCallback func(Progress)

// stderrTailLimit bounds how much stderr is kept for error messages.
const stderrTailLimit = 4096

var timeRegex = regexp.MustCompile(`time=\s*(\d{2}:\d{2}:\d{2}\.?\d*)`)

// Runner executes an ffmpeg binary.
type Runner struct {
	Binary string
}

// DefaultRunner uses ffmpeg from PATH.
var DefaultRunner = &Runner{Binary: "ffmpeg"}

// Run is DefaultRunner.Run.
func Run(ctx context.Context, args []string, duration float64, callback ProgressCallback) error {
	return DefaultRunner.Run(ctx, args, duration, callback)
}

// Run executes ffmpeg with args. duration is the expected output length in
// seconds used to compute percent and ETA; pass 0 when unknown.
func (r *Runner) Run(ctx context.Context, args []string, duration float64, callback ProgressCallback) error {
	binary := r.Binary
	if binary == "" {
		binary = "ffmpeg"
	}
	logging.Debug("running ffmpeg", "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, binary, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return errors.NewFFmpegError("failed to get stderr pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return errors.NewCommandStartError(binary, err)
	}

	var stderrBuilder strings.Builder
	parseProgress(stderr, &stderrBuilder, duration, callback)

	err = cmd.Wait()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return errors.NewCancelledError()
	}

	tail := stderrTail(stderrBuilder.String())
	logging.Warn("ffmpeg failed", "error", err, "stderr", tail)
	return errors.NewFFmpegError(describeFailure(tail), errors.WrapExecError(binary, err, tail))
}

// describeFailure picks a readable message from known ffmpeg stderr patterns.
func describeFailure(stderr string) string {
	switch {
	case strings.Contains(stderr, "No such file or directory"):
		return "input file not found"
	case strings.Contains(stderr, "matches no streams"), strings.Contains(stderr, "does not contain any stream"):
		return "input has no matching audio or video stream"
	case strings.Contains(stderr, "Invalid data found when processing input"):
		return "input is not a readable media file"
	case strings.Contains(stderr, "Unknown encoder"):
		return "ffmpeg build lacks a required encoder"
	default:
		return "ffmpeg failed"
	}
}

func stderrTail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= stderrTailLimit {
		return s
	}
	return s[len(s)-stderrTailLimit:]
}

// parseProgress reads ffmpeg stderr byte by byte since progress lines end
// with \r rather than \n.
func parseProgress(stderr io.Reader, stderrBuilder *strings.Builder, duration float64, callback ProgressCallback) {
	reader := bufio.NewReader(stderr)
	var lineBuf strings.Builder

	for {
		b, err := reader.ReadByte()
		if err != nil {
			if err != io.EOF {
				logging.Debug("error reading ffmpeg stderr", "error", err)
			}
			return
		}

		stderrBuilder.WriteByte(b)

		if b != '\r' && b != '\n' {
			lineBuf.WriteByte(b)
			continue
		}
		line := lineBuf.String()
		lineBuf.Reset()

		if callback != nil && strings.Contains(line, "time=") {
			if progress, ok := parseProgressLine(line, duration); ok {
				callback(progress)
			}
		}
	}
}

// parseProgressLine extracts progress from a stats line such as
// "size=  1024kB time=00:01:02.50 bitrate= 134.2kbits/s speed=31.2x".
func parseProgressLine(line string, duration float64) (Progress, bool) {
	matches := timeRegex.FindStringSubmatch(line)
	if len(matches) < 2 {
		return Progress{}, false
	}
	elapsed, ok := util.ParseFFmpegTime(matches[1])
	if !ok {
		return Progress{}, false
	}

	p := Progress{ElapsedSecs: elapsed}
	if v := fieldValue(line, "bitrate="); v != "" {
		p.Bitrate = v
	}
	if v := strings.TrimSuffix(fieldValue(line, "speed="), "x"); v != "" {
		if s, err := strconv.ParseFloat(v, 32); err == nil {
			p.Speed = float32(s)
		}
	}

	if duration > 0 {
		p.Percent = float32(min(elapsed/duration*100, 100))
		if p.Speed > 0 {
			remaining := max(duration-elapsed, 0)
			p.ETA = time.Duration(remaining/float64(p.Speed)) * time.Second
		}
	}
	return p, true
}

// fieldValue returns the token following key, skipping ffmpeg's padding spaces.
func fieldValue(line, key string) string {
	idx := strings.Index(line, key)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimLeft(line[idx+len(key):], " ")
	if end := strings.IndexAny(rest, " \t"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}
