package ffprobe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/five82/tubeprep/internal/errors"
)

func loadTestData(t *testing.T, filename string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", filename))
	if err != nil {
		t.Fatalf("failed to load test data %s: %v", filename, err)
	}
	return data
}

func TestToMediaInfo_ScreenRecording(t *testing.T) {
	probe, err := parseFFprobeOutput(loadTestData(t, "screen_recording.json"))
	if err != nil {
		t.Fatalf("parseFFprobeOutput() error = %v", err)
	}
	info := toMediaInfo("/rec/channel-1-display-0.mp4", probe)

	if info.Duration != 312.458 {
		t.Errorf("Duration = %v, want 312.458", info.Duration)
	}
	if info.Size != 52428800 {
		t.Errorf("Size = %d", info.Size)
	}
	if info.Format != "mov,mp4,m4a,3gp,3g2,mj2" {
		t.Errorf("Format = %q", info.Format)
	}
	if !info.HasVideo() || info.Video.Width != 3024 || info.Video.Height != 1964 {
		t.Fatalf("unexpected video %+v", info.Video)
	}
	if info.Video.Framerate != 59.94 {
		t.Errorf("Framerate = %v, want 59.94", info.Video.Framerate)
	}
	if !info.HasAudio() || info.Audio.Channels != 2 || info.Audio.SampleRate != "48000" {
		t.Errorf("unexpected audio %+v", info.Audio)
	}
}

func TestToMediaInfo_AudioOnly(t *testing.T) {
	probe, err := parseFFprobeOutput(loadTestData(t, "microphone.json"))
	if err != nil {
		t.Fatalf("parseFFprobeOutput() error = %v", err)
	}
	info := toMediaInfo("mic.m4a", probe)

	if info.HasVideo() {
		t.Error("audio-only file should have no video")
	}
	if info.Audio.ChannelLayout != "mono" {
		t.Errorf("ChannelLayout = %q", info.Audio.ChannelLayout)
	}
	if info.BitRate != 0 {
		t.Errorf("missing bit_rate should be 0, got %d", info.BitRate)
	}
}

func TestParseFFprobeOutput_Invalid(t *testing.T) {
	_, err := parseFFprobeOutput([]byte("{not json"))
	if !errors.IsKind(err, errors.KindFFprobeParse) {
		t.Fatalf("expected FFprobeParse error, got %v", err)
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"60000/1001", 59.94},
		{"24000/1001", 23.98},
		{"0/0", 0},
		{"25", 0},
		{"", 0},
		{"abc/1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseFrameRate(tt.in); got != tt.want {
				t.Errorf("ParseFrameRate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
