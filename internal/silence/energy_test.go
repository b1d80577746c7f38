package silence

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// squareWave returns n mono samples alternating between +amp and -amp.
func squareWave(n, amp int) []int {
	out := make([]int, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = amp
		} else {
			out[i] = -amp
		}
	}
	return out
}

// indexFromSamples builds an index from interleaved integer samples.
func indexFromSamples(samples []int, sampleRate, channels, bitDepth int) *Index {
	b := newIndexBuilder(sampleRate, max(channels, 1), bitDepth)
	b.add(samples)
	return b.finish()
}

func concat(parts ...[]int) []int {
	var out []int
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestIndexWindowRMS(t *testing.T) {
	// 1000 Hz mono: one frame per millisecond.
	samples := concat(squareWave(1000, 1000), make([]int, 1000), squareWave(1000, 1000))
	idx := indexFromSamples(samples, 1000, 1, 16)

	if idx.LengthMs() != 3000 {
		t.Fatalf("LengthMs = %d, want 3000", idx.LengthMs())
	}
	if got := idx.WindowRMS(0, 500); got != 1000 {
		t.Errorf("loud window RMS = %v, want 1000", got)
	}
	if got := idx.WindowRMS(1200, 500); got != 0 {
		t.Errorf("silent window RMS = %v, want 0", got)
	}
	// 250 loud frames out of 500: sqrt(250e6/500) = 707.1, truncated.
	if got := idx.WindowRMS(750, 500); got != 707 {
		t.Errorf("straddling window RMS = %v, want 707", got)
	}
	// -40 dBFS is 327.68 for 16-bit samples. A window holding 53 loud frames
	// has RMS sqrt(53e6/500) = 325, so windows starting in [947, 1553] are
	// silent and the merged range reaches 53 ms into each loud part.
	if got := Detect(idx, DefaultOptions()); len(got) != 1 || got[0] != (Range{947, 2053}) {
		t.Errorf("Detect() = %v", got)
	}
}

func TestIndexPadsPastEnd(t *testing.T) {
	// Two frames at 3 kHz round up to 1 ms, whose window spans three frames.
	idx := indexFromSamples([]int{100, 100}, 3000, 1, 16)
	if idx.LengthMs() != 1 {
		t.Fatalf("LengthMs = %d, want 1", idx.LengthMs())
	}
	if got := idx.WindowRMS(0, 1); got != 81 {
		t.Errorf("WindowRMS = %v, want 81", got)
	}
}

func TestIndexStereo(t *testing.T) {
	// 2 kHz stereo, 1 s: left loud, right silent.
	samples := make([]int, 0, 4000)
	for i := 0; i < 2000; i++ {
		samples = append(samples, 2000, 0)
	}
	idx := indexFromSamples(samples, 2000, 2, 16)
	if idx.Frames() != 2000 || idx.LengthMs() != 1000 {
		t.Fatalf("frames=%d length=%d", idx.Frames(), idx.LengthMs())
	}
	// sqrt((2000^2 * 1000) / 2000) = 1414.2
	if got := idx.WindowRMS(0, 500); got != 1414 {
		t.Errorf("stereo RMS = %v, want 1414", got)
	}
	if idx.MaxAmplitude() != 32768 {
		t.Errorf("MaxAmplitude = %v", idx.MaxAmplitude())
	}
}

func TestFrameAtAndLength(t *testing.T) {
	if got := frameAt(1, 44100); got != 44 {
		t.Errorf("frameAt(1, 44100) = %d, want 44", got)
	}
	if got := frameAt(1000, 44100); got != 44100 {
		t.Errorf("frameAt(1000, 44100) = %d", got)
	}
	if got := lengthMs(44100*3, 44100); got != 3000 {
		t.Errorf("lengthMs = %d", got)
	}
	if got := lengthMs(0, 0); got != 0 {
		t.Errorf("lengthMs with zero rate = %d", got)
	}
}

func writeTestWAV(t *testing.T, path string, samples []int, rate, channels int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestBuildIndexFromWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	samples := concat(squareWave(8000, 10000), make([]int, 8000))
	writeTestWAV(t, path, samples, 8000, 1)

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	idx, err := BuildIndex(f)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if idx.SampleRate() != 8000 || idx.Channels() != 1 || idx.BitDepth() != 16 {
		t.Fatalf("unexpected format %d Hz %d ch %d bit", idx.SampleRate(), idx.Channels(), idx.BitDepth())
	}
	if idx.Frames() != 16000 || idx.LengthMs() != 2000 {
		t.Fatalf("frames=%d length=%d", idx.Frames(), idx.LengthMs())
	}
	if got := idx.WindowRMS(0, 500); got != 10000 {
		t.Errorf("loud RMS = %v", got)
	}
}

func TestBuildIndexRejectsGarbage(t *testing.T) {
	if _, err := BuildIndex(bytes.NewReader([]byte("definitely not a wav file"))); err == nil {
		t.Fatal("expected error for non-WAV input")
	}
}
