// Package silence finds and removes silent stretches of audio.
//
// Detection slides a fixed window across the audio at a fixed stride and
// marks a window silent when its RMS amplitude is at or below a threshold
// relative to full scale. All positions are in milliseconds.
package silence

import (
	"fmt"
	"math"

	"github.com/five82/tubeprep/internal/config"
)

// Options control detection and removal.
type Options struct {
	MinSilenceMs  int
	ThresholdDB   float64
	KeepSilenceMs int
	SeekStepMs    int
}

// DefaultOptions returns the stock parameters: 500 ms windows, -40 dBFS,
// 100 ms of kept padding, 1 ms stride.
func DefaultOptions() Options {
	return Options{
		MinSilenceMs:  config.DefaultMinSilenceMs,
		ThresholdDB:   config.DefaultThresholdDB,
		KeepSilenceMs: config.DefaultKeepSilenceMs,
		SeekStepMs:    config.DefaultSeekStepMs,
	}
}

// OptionsFromConfig converts the [silence] config section. Unset fields keep
// their DefaultOptions value; a zero keep_silence_ms is a real setting.
func OptionsFromConfig(c config.Silence) Options {
	o := DefaultOptions()
	if c.MinSilenceMs != 0 {
		o.MinSilenceMs = c.MinSilenceMs
	}
	if c.ThresholdDB != 0 {
		o.ThresholdDB = c.ThresholdDB
	}
	if c.SeekStepMs != 0 {
		o.SeekStepMs = c.SeekStepMs
	}
	o.KeepSilenceMs = c.KeepSilenceMs
	return o
}

// Validate rejects parameters the algorithm cannot run with.
func (o Options) Validate() error {
	return config.Silence{
		MinSilenceMs:  o.MinSilenceMs,
		ThresholdDB:   o.ThresholdDB,
		KeepSilenceMs: o.KeepSilenceMs,
		SeekStepMs:    o.SeekStepMs,
	}.Validate()
}

// Range is a half-open span [Start, End) in milliseconds.
type Range struct {
	Start int
	End   int
}

// Len returns the span length in milliseconds.
func (r Range) Len() int { return r.End - r.Start }

func (r Range) String() string { return fmt.Sprintf("[%d, %d)", r.Start, r.End) }

// Interval is a Range expressed in seconds, as written to reports.
type Interval struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
}

// ToIntervals converts millisecond ranges to seconds.
func ToIntervals(ranges []Range) []Interval {
	out := make([]Interval, len(ranges))
	for i, r := range ranges {
		out[i] = Interval{
			Start:    float64(r.Start) / 1000,
			End:      float64(r.End) / 1000,
			Duration: float64(r.Len()) / 1000,
		}
	}
	return out
}

// Source is the audio the detector reads: a length and the RMS of any
// millisecond window.
type Source interface {
	LengthMs() int
	WindowRMS(startMs, lenMs int) float64
	MaxAmplitude() float64
}

// Threshold converts a dBFS value to an absolute amplitude for src.
func Threshold(src Source, db float64) float64 {
	return math.Pow(10, db/20) * src.MaxAmplitude()
}

// Detect returns the silent ranges of src.
func Detect(src Source, opts Options) []Range {
	length := src.LengthMs()
	window := opts.MinSilenceMs
	step := max(opts.SeekStepMs, 1)
	if length < window || window <= 0 {
		return nil
	}
	thresh := Threshold(src, opts.ThresholdDB)

	lastStart := length - window
	var starts []int
	check := func(i int) {
		if src.WindowRMS(i, window) <= thresh {
			starts = append(starts, i)
		}
	}
	for i := 0; i <= lastStart; i += step {
		check(i)
	}
	// The final window is always evaluated even when off the stride grid.
	if lastStart%step != 0 {
		check(lastStart)
	}
	if len(starts) == 0 {
		return nil
	}

	var ranges []Range
	prev := starts[0]
	rangeStart := prev
	for _, s := range starts[1:] {
		continuous := s == prev+step
		hasGap := s > prev+window
		if !continuous && hasGap {
			ranges = append(ranges, Range{Start: rangeStart, End: prev + window})
			rangeStart = s
		}
		prev = s
	}
	return append(ranges, Range{Start: rangeStart, End: prev + window})
}

// Nonsilent returns the complement of the silent ranges over [0, length).
func Nonsilent(src Source, opts Options) []Range {
	return complement(Detect(src, opts), src.LengthMs())
}

func complement(silent []Range, length int) []Range {
	if len(silent) == 0 {
		return []Range{{Start: 0, End: length}}
	}
	if silent[0].Start == 0 && silent[0].End == length {
		return nil
	}

	var out []Range
	prevEnd := 0
	for _, r := range silent {
		out = append(out, Range{Start: prevEnd, End: r.Start})
		prevEnd = r.End
	}
	if last := silent[len(silent)-1]; last.End != length {
		out = append(out, Range{Start: prevEnd, End: length})
	}
	if out[0] == (Range{}) {
		out = out[1:]
	}
	return out
}

// Split returns the chunks kept after silence removal: non-silent ranges
// padded by KeepSilenceMs, with overlapping neighbours meeting at their
// midpoint, clamped to the audio bounds.
func Split(src Source, opts Options) []Range {
	return pad(Nonsilent(src, opts), opts.KeepSilenceMs, src.LengthMs())
}

func pad(nonsilent []Range, keep, length int) []Range {
	out := make([]Range, len(nonsilent))
	for i, r := range nonsilent {
		out[i] = Range{Start: r.Start - keep, End: r.End + keep}
	}
	for i := 0; i+1 < len(out); i++ {
		lastEnd, nextStart := out[i].End, out[i+1].Start
		if nextStart < lastEnd {
			mid := floorDiv(lastEnd+nextStart, 2)
			out[i].End = mid
			out[i+1].Start = mid
		}
	}
	for i := range out {
		out[i].Start = max(out[i].Start, 0)
		out[i].End = min(out[i].End, length)
	}
	return out
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// TotalLength sums range lengths.
func TotalLength(ranges []Range) int {
	total := 0
	for _, r := range ranges {
		total += r.Len()
	}
	return total
}
