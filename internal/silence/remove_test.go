package silence

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/five82/tubeprep/internal/errors"
	"github.com/five82/tubeprep/internal/ffmpeg"
)

// copyRunner stands in for ffmpeg: it copies the -i input to the last
// argument, which is enough when every file involved is already a WAV.
type copyRunner struct {
	calls     [][]string
	durations []float64
}

func (r *copyRunner) Run(_ context.Context, args []string, duration float64, cb ffmpeg.ProgressCallback) error {
	r.calls = append(r.calls, args)
	r.durations = append(r.durations, duration)
	var input string
	for i, a := range args {
		if a == "-i" && i+1 < len(args) {
			input = args[i+1]
		}
	}
	in, err := os.Open(input)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(args[len(args)-1])
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	if cb != nil {
		cb(ffmpeg.Progress{Percent: 100})
	}
	return nil
}

func speechFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "speech.wav")
	samples := concat(squareWave(8000, 10000), make([]int, 8000), squareWave(8000, 10000))
	writeTestWAV(t, path, samples, 8000, 1)
	return path
}

func TestRemove(t *testing.T) {
	input := speechFixture(t)
	output := filepath.Join(t.TempDir(), "clean.wav")

	runner := &copyRunner{}
	stages := map[string]bool{}
	p := &Processor{
		FFmpeg:     runner,
		TempDir:    t.TempDir(),
		OnProgress: func(stage string, _ float64) { stages[stage] = true },
		Duration:   func(context.Context, string) float64 { return 3 },
	}

	res, err := p.Remove(context.Background(), input, output, DefaultOptions())
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if res.OriginalMs != 3000 {
		t.Errorf("OriginalMs = %d, want 3000", res.OriginalMs)
	}
	// Chunks [0,1100) and [1900,3000).
	if res.NewMs != 2200 {
		t.Errorf("NewMs = %d, want 2200", res.NewMs)
	}
	if res.Chunks != 2 {
		t.Errorf("Chunks = %d, want 2", res.Chunks)
	}
	if pct := res.ReductionPercent(); pct < 26.6 || pct > 26.7 {
		t.Errorf("ReductionPercent = %v", pct)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("expected decode and encode calls, got %d", len(runner.calls))
	}
	if runner.durations[0] != 3 || runner.durations[1] != 2.2 {
		t.Errorf("ffmpeg durations = %v, want [3 2.2]", runner.durations)
	}
	for _, stage := range []string{StageDecode, StageAnalyze, StageWrite, StageEncode} {
		if !stages[stage] {
			t.Errorf("stage %q not reported", stage)
		}
	}

	f, err := os.Open(output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	idx, err := BuildIndex(f)
	if err != nil {
		t.Fatalf("output is not a readable WAV: %v", err)
	}
	if idx.Frames() != 17600 {
		t.Errorf("output frames = %d, want 17600", idx.Frames())
	}
}

func TestRemoveRejectsBadOutputExtension(t *testing.T) {
	input := speechFixture(t)
	p := &Processor{FFmpeg: &copyRunner{}, TempDir: t.TempDir()}

	_, err := p.Remove(context.Background(), input, filepath.Join(t.TempDir(), "out.txt"), DefaultOptions())
	if !errors.IsKind(err, errors.KindUnsupportedFormat) {
		t.Fatalf("expected unsupported format, got %v", err)
	}
}

func TestRemoveMissingInput(t *testing.T) {
	p := &Processor{FFmpeg: &copyRunner{}, TempDir: t.TempDir()}
	_, err := p.Remove(context.Background(), "/nonexistent/in.wav", filepath.Join(t.TempDir(), "out.wav"), DefaultOptions())
	if !errors.IsKind(err, errors.KindPath) {
		t.Fatalf("expected path error, got %v", err)
	}
}

func TestRemoveAllSilent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiet.wav")
	writeTestWAV(t, path, make([]int, 8000), 8000, 1)
	p := &Processor{FFmpeg: &copyRunner{}, TempDir: t.TempDir()}

	_, err := p.Remove(context.Background(), path, filepath.Join(t.TempDir(), "out.wav"), DefaultOptions())
	if !errors.IsKind(err, errors.KindAudio) {
		t.Fatalf("expected audio error for silent input, got %v", err)
	}
}

func TestDetectFile(t *testing.T) {
	input := speechFixture(t)
	p := &Processor{FFmpeg: &copyRunner{}, TempDir: t.TempDir()}

	det, err := p.DetectFile(context.Background(), input, DefaultOptions())
	if err != nil {
		t.Fatalf("DetectFile: %v", err)
	}
	if det.LengthMs != 3000 {
		t.Errorf("LengthMs = %d", det.LengthMs)
	}
	iv := det.Intervals()
	if len(iv) != 1 || iv[0].Start != 1 || iv[0].End != 2 || iv[0].Duration != 1 {
		t.Errorf("Intervals = %+v", iv)
	}
}
