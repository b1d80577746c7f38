package silence

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/five82/tubeprep/internal/errors"
	"github.com/five82/tubeprep/internal/ffmpeg"
	"github.com/five82/tubeprep/internal/logging"
	"github.com/five82/tubeprep/internal/util"
)

// Stage names reported through Processor.OnProgress.
const (
	StageDecode  = "decode"
	StageAnalyze = "analyze"
	StageWrite   = "write"
	StageEncode  = "encode"
)

// Runner runs ffmpeg. *ffmpeg.Runner satisfies it.
type Runner interface {
	Run(ctx context.Context, args []string, duration float64, callback ffmpeg.ProgressCallback) error
}

// Processor decodes media with ffmpeg and runs detection or removal on it.
type Processor struct {
	FFmpeg Runner
	// TempDir holds scratch WAV files; empty uses the system temp dir.
	TempDir string
	// OnProgress receives a stage name and a 0-100 percentage.
	OnProgress func(stage string, percent float64)
	// Duration returns the input length in seconds for decode progress.
	// Nil or 0 leaves the decode bar without a total.
	Duration func(ctx context.Context, path string) float64
}

// Detection is the result of DetectFile.
type Detection struct {
	Input    string
	LengthMs int
	Silent   []Range
}

// Intervals returns the silent ranges in seconds.
func (d *Detection) Intervals() []Interval { return ToIntervals(d.Silent) }

// Result summarises a silence removal.
type Result struct {
	Input      string
	Output     string
	OriginalMs int
	NewMs      int
	Chunks     int
}

// OriginalSeconds returns the input length in seconds.
func (r *Result) OriginalSeconds() float64 { return float64(r.OriginalMs) / 1000 }

// NewSeconds returns the output length in seconds.
func (r *Result) NewSeconds() float64 { return float64(r.NewMs) / 1000 }

// ReductionPercent returns how much shorter the output is.
func (r *Result) ReductionPercent() float64 {
	return util.CalculateReduction(float64(r.OriginalMs), float64(r.NewMs))
}

func (p *Processor) report(stage string, percent float64) {
	if p.OnProgress != nil {
		p.OnProgress(stage, percent)
	}
}

func validateInput(input string) error {
	if !util.FileExists(input) {
		return errors.NewPathError("input file not found: " + input)
	}
	if !util.IsMediaPath(input) {
		return errors.NewUnsupportedFormatError(util.Ext(input))
	}
	return nil
}

// decode converts input to a 16-bit PCM WAV inside dir and indexes it.
func (p *Processor) decode(ctx context.Context, input string, dir *util.TempDir) (string, *Index, error) {
	decoded := dir.Join("decoded.wav")
	var duration float64
	if p.Duration != nil {
		duration = p.Duration(ctx, input)
	}
	p.report(StageDecode, 0)
	err := p.FFmpeg.Run(ctx, ffmpeg.DecodePCM16(input, decoded), duration, func(pr ffmpeg.Progress) {
		p.report(StageDecode, float64(pr.Percent))
	})
	if err != nil {
		return "", nil, err
	}
	p.report(StageDecode, 100)

	f, err := os.Open(decoded)
	if err != nil {
		return "", nil, errors.NewIOError("open decoded audio", err)
	}
	defer f.Close()

	p.report(StageAnalyze, 0)
	idx, err := BuildIndex(f)
	if err != nil {
		return "", nil, err
	}
	logging.Debug("indexed audio",
		"input", input,
		"sample_rate", idx.SampleRate(),
		"channels", idx.Channels(),
		"length_ms", idx.LengthMs())
	return decoded, idx, nil
}

// DetectFile returns the silent ranges of input.
func (p *Processor) DetectFile(ctx context.Context, input string, opts Options) (*Detection, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.NewConfigError(err.Error())
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	dir, err := util.CreateTempDir(p.TempDir, "tubeprep_silence")
	if err != nil {
		return nil, errors.NewIOError("create temp dir", err)
	}
	defer func() { _ = dir.Cleanup() }()

	_, idx, err := p.decode(ctx, input, dir)
	if err != nil {
		return nil, err
	}
	silent := Detect(idx, opts)
	p.report(StageAnalyze, 100)
	return &Detection{Input: input, LengthMs: idx.LengthMs(), Silent: silent}, nil
}

// Remove writes input to output with silence cut out. The output format
// follows output's extension.
func (p *Processor) Remove(ctx context.Context, input, output string, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.NewConfigError(err.Error())
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if !util.IsAudioPath(output) {
		return nil, errors.NewUnsupportedFormatError(util.Ext(output))
	}
	if dir := filepath.Dir(output); !util.DirectoryExists(dir) {
		return nil, errors.NewPathError("output directory does not exist: " + dir)
	}

	dir, err := util.CreateTempDir(p.TempDir, "tubeprep_silence")
	if err != nil {
		return nil, errors.NewIOError("create temp dir", err)
	}
	defer func() { _ = dir.Cleanup() }()

	decoded, idx, err := p.decode(ctx, input, dir)
	if err != nil {
		return nil, err
	}
	chunks := Split(idx, opts)
	p.report(StageAnalyze, 100)
	if len(chunks) == 0 {
		return nil, errors.NewAudioError("audio is silent throughout at the configured threshold", nil)
	}
	logging.Info("silence split", "input", input, "chunks", len(chunks), "kept_ms", TotalLength(chunks))

	trimmed := dir.Join("trimmed.wav")
	frames, err := p.writeChunks(ctx, decoded, trimmed, idx, chunks)
	if err != nil {
		return nil, err
	}

	args, err := ffmpeg.EncodeFromWAV(trimmed, output)
	if err != nil {
		return nil, err
	}
	newMs := lengthMs(frames, idx.SampleRate())
	p.report(StageEncode, 0)
	err = p.FFmpeg.Run(ctx, args, float64(newMs)/1000, func(pr ffmpeg.Progress) {
		p.report(StageEncode, float64(pr.Percent))
	})
	if err != nil {
		return nil, err
	}
	p.report(StageEncode, 100)

	return &Result{
		Input:      input,
		Output:     output,
		OriginalMs: idx.LengthMs(),
		NewMs:      newMs,
		Chunks:     len(chunks),
	}, nil
}

// writeChunks streams the frames inside chunks from src into a new WAV at dst
// and returns the number of frames written.
func (p *Processor) writeChunks(ctx context.Context, src, dst string, idx *Index, chunks []Range) (int, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, errors.NewIOError("open decoded audio", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, errors.NewIOError("create trimmed audio", err)
	}
	defer out.Close()

	d := wav.NewDecoder(in)
	if !d.IsValidFile() {
		return 0, errors.NewAudioError("decoded audio is not a valid WAV", nil)
	}
	format := d.Format()
	channels := format.NumChannels
	enc := wav.NewEncoder(out, idx.SampleRate(), idx.BitDepth(), channels, 1)

	frameRanges := make([][2]int, len(chunks))
	for i, c := range chunks {
		frameRanges[i] = [2]int{idx.FrameAt(c.Start), idx.FrameAt(c.End)}
	}

	outBuf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: idx.SampleRate()},
		Data:           make([]int, 0, readChunkFrames*channels),
		SourceBitDepth: idx.BitDepth(),
	}
	frame, written, ri := 0, 0, 0
	lastReport := -1

	err = forEachBuffer(d, format, func(data []int) error {
		if err := ctx.Err(); err != nil {
			return errors.NewCancelledError()
		}
		outBuf.Data = outBuf.Data[:0]
		for off := 0; off+channels <= len(data); off += channels {
			for ri < len(frameRanges) && frame >= frameRanges[ri][1] {
				ri++
			}
			if ri < len(frameRanges) && frame >= frameRanges[ri][0] {
				outBuf.Data = append(outBuf.Data, data[off:off+channels]...)
				written++
			}
			frame++
		}
		if len(outBuf.Data) > 0 {
			if err := enc.Write(outBuf); err != nil {
				return errors.NewAudioError("write trimmed audio", err)
			}
		}
		if total := idx.Frames(); total > 0 {
			if pct := frame * 100 / total; pct != lastReport {
				lastReport = pct
				p.report(StageWrite, float64(pct))
			}
		}
		return nil
	})
	if err != nil {
		_ = enc.Close()
		return 0, err
	}
	if err := enc.Close(); err != nil {
		return 0, errors.NewAudioError("finalize trimmed audio", err)
	}
	return written, nil
}
