package silence

import (
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/five82/tubeprep/internal/errors"
)

// readChunkFrames is how many frames are pulled from the decoder per read.
const readChunkFrames = 4096

// Index holds per-millisecond prefix sums of squared samples so any window's
// RMS is answered in constant time without keeping the PCM in memory.
type Index struct {
	sampleRate int
	channels   int
	bitDepth   int
	frames     int
	// prefix[k] is the sum of squared samples of all frames before frameAt(k).
	prefix []uint64
	total  uint64
}

var _ Source = (*Index)(nil)

// frameAt maps a millisecond offset to a frame index, truncating.
func frameAt(ms, sampleRate int) int {
	return int(int64(ms) * int64(sampleRate) / 1000)
}

// lengthMs is the audio length in milliseconds, rounded half to even.
func lengthMs(frames, sampleRate int) int {
	if sampleRate <= 0 {
		return 0
	}
	return int(math.RoundToEven(float64(frames) * 1000 / float64(sampleRate)))
}

// SampleRate returns frames per second.
func (x *Index) SampleRate() int { return x.sampleRate }

// Channels returns the interleaved channel count.
func (x *Index) Channels() int { return x.channels }

// BitDepth returns bits per sample.
func (x *Index) BitDepth() int { return x.bitDepth }

// Frames returns the total frame count.
func (x *Index) Frames() int { return x.frames }

// LengthMs returns the audio length in milliseconds.
func (x *Index) LengthMs() int { return lengthMs(x.frames, x.sampleRate) }

// MaxAmplitude returns the largest representable sample magnitude.
func (x *Index) MaxAmplitude() float64 {
	return math.Exp2(float64(x.bitDepth - 1))
}

// FrameAt maps a millisecond offset to a frame index.
func (x *Index) FrameAt(ms int) int { return frameAt(ms, x.sampleRate) }

// WindowRMS returns the integer-truncated RMS of the window [startMs,
// startMs+lenMs). Frames past the end of the audio count as zeros.
func (x *Index) WindowRMS(startMs, lenMs int) float64 {
	first := x.FrameAt(startMs)
	last := x.FrameAt(startMs + lenMs)
	samples := (last - first) * x.channels
	if samples <= 0 {
		return 0
	}
	sum := x.prefixAt(startMs+lenMs) - x.prefixAt(startMs)
	return math.Floor(math.Sqrt(float64(sum) / float64(samples)))
}

func (x *Index) prefixAt(ms int) uint64 {
	if ms < 0 {
		return 0
	}
	if ms >= len(x.prefix) {
		return x.total
	}
	return x.prefix[ms]
}

// indexBuilder accumulates interleaved samples into an Index.
type indexBuilder struct {
	idx     *Index
	frame   int    // frames consumed so far
	channel int    // position within the current frame
	acc     uint64 // squared sum of all samples consumed
	nextMs  int    // next millisecond boundary to record
	nextAt  int    // frame index of nextMs
}

func newIndexBuilder(sampleRate, channels, bitDepth int) *indexBuilder {
	b := &indexBuilder{idx: &Index{
		sampleRate: sampleRate,
		channels:   channels,
		bitDepth:   bitDepth,
		prefix:     []uint64{0},
	}}
	b.nextMs = 1
	b.nextAt = frameAt(1, sampleRate)
	return b
}

func (b *indexBuilder) add(samples []int) {
	for _, s := range samples {
		if b.channel == 0 {
			for b.frame >= b.nextAt {
				b.idx.prefix = append(b.idx.prefix, b.acc)
				b.nextMs++
				b.nextAt = frameAt(b.nextMs, b.idx.sampleRate)
			}
		}
		v := int64(s)
		b.acc += uint64(v * v)
		b.channel++
		if b.channel == b.idx.channels {
			b.channel = 0
			b.frame++
		}
	}
}

func (b *indexBuilder) finish() *Index {
	// Record every boundary up to and including the last full frame so that
	// prefix covers [0, LengthMs].
	for b.frame >= b.nextAt {
		b.idx.prefix = append(b.idx.prefix, b.acc)
		b.nextMs++
		b.nextAt = frameAt(b.nextMs, b.idx.sampleRate)
	}
	b.idx.frames = b.frame
	b.idx.total = b.acc
	return b.idx
}

// BuildIndex streams a PCM WAV and builds its energy index.
func BuildIndex(r io.ReadSeeker) (*Index, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, errors.NewAudioError("not a valid PCM WAV stream", nil)
	}
	format := d.Format()
	if format == nil || format.NumChannels <= 0 || format.SampleRate <= 0 {
		return nil, errors.NewAudioError("WAV header has no usable format", nil)
	}

	b := newIndexBuilder(format.SampleRate, format.NumChannels, int(d.BitDepth))
	err := forEachBuffer(d, format, func(data []int) error {
		b.add(data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b.finish(), nil
}

// forEachBuffer reads the decoder's PCM in fixed-size chunks.
func forEachBuffer(d *wav.Decoder, format *audio.Format, fn func([]int) error) error {
	buf := &audio.IntBuffer{
		Format:         format,
		Data:           make([]int, readChunkFrames*format.NumChannels),
		SourceBitDepth: int(d.BitDepth),
	}
	for {
		n, err := d.PCMBuffer(buf)
		if n > 0 {
			if ferr := fn(buf.Data[:n]); ferr != nil {
				return ferr
			}
		}
		if err == io.EOF || (err == nil && n == 0) {
			return nil
		}
		if err != nil {
			return errors.NewAudioError("decode PCM", err)
		}
	}
}
