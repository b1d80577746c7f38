package silence

import (
	"reflect"
	"testing"

	"github.com/five82/tubeprep/internal/config"
)

// startsSource reports silence exactly for windows starting at the listed
// offsets, which lets tests drive the merge rules directly.
type startsSource struct {
	length int
	silent map[int]bool
}

func (s startsSource) LengthMs() int         { return s.length }
func (s startsSource) MaxAmplitude() float64 { return 32768 }
func (s startsSource) WindowRMS(start, _ int) float64 {
	if s.silent[start] {
		return 0
	}
	return 10000
}

// regionSource is silent wherever a window lies entirely inside one region.
type regionSource struct {
	length  int
	regions []Range
}

func (s regionSource) LengthMs() int         { return s.length }
func (s regionSource) MaxAmplitude() float64 { return 32768 }
func (s regionSource) WindowRMS(start, n int) float64 {
	for _, r := range s.regions {
		if start >= r.Start && start+n <= r.End {
			return 0
		}
	}
	return 10000
}

func opts(window, step, keep int) Options {
	return Options{MinSilenceMs: window, ThresholdDB: -40, KeepSilenceMs: keep, SeekStepMs: step}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		opts Options
		want []Range
	}{
		{
			name: "shorter than window",
			src:  regionSource{length: 400, regions: []Range{{0, 400}}},
			opts: opts(500, 1, 0),
			want: nil,
		},
		{
			name: "no silence",
			src:  regionSource{length: 3000},
			opts: opts(500, 1, 0),
			want: nil,
		},
		{
			name: "middle gap",
			src:  regionSource{length: 3000, regions: []Range{{1000, 2000}}},
			opts: opts(500, 1, 0),
			want: []Range{{1000, 2000}},
		},
		{
			name: "entirely silent",
			src:  regionSource{length: 3000, regions: []Range{{0, 3000}}},
			opts: opts(500, 1, 0),
			want: []Range{{0, 3000}},
		},
		{
			name: "last window off the step grid",
			src:  regionSource{length: 1003, regions: []Range{{503, 1003}}},
			opts: opts(500, 10, 0),
			want: []Range{{503, 1003}},
		},
		{
			name: "near starts merge, far starts split",
			src:  startsSource{length: 2000, silent: map[int]bool{0: true, 100: true, 400: true, 1200: true}},
			opts: opts(500, 100, 0),
			want: []Range{{0, 900}, {1200, 1700}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.src, tt.opts)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNonsilent(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		want []Range
	}{
		{"no silence covers everything", regionSource{length: 3000}, []Range{{0, 3000}}},
		{"all silence yields nothing", regionSource{length: 3000, regions: []Range{{0, 3000}}}, nil},
		{"middle gap", regionSource{length: 3000, regions: []Range{{1000, 2000}}}, []Range{{0, 1000}, {2000, 3000}}},
		{"leading silence drops empty range", regionSource{length: 3000, regions: []Range{{0, 800}}}, []Range{{800, 3000}}},
		{"trailing silence", regionSource{length: 3000, regions: []Range{{2500, 3000}}}, []Range{{0, 2500}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Nonsilent(tt.src, opts(500, 1, 0))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Nonsilent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		keep int
		want []Range
	}{
		{
			name: "padding clamped to bounds",
			src:  regionSource{length: 3000, regions: []Range{{1000, 2000}}},
			keep: 100,
			want: []Range{{0, 1100}, {1900, 3000}},
		},
		{
			name: "overlapping padding meets at midpoint",
			src:  regionSource{length: 3000, regions: []Range{{1000, 1500}}},
			keep: 300,
			want: []Range{{0, 1250}, {1250, 3000}},
		},
		{
			name: "silent audio has no chunks",
			src:  regionSource{length: 3000, regions: []Range{{0, 3000}}},
			keep: 100,
			want: []Range{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.src, opts(500, 1, tt.keep))
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{7, 2, 3},
		{-7, 2, -4},
		{-6, 2, -3},
		{0, 2, 0},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestToIntervals(t *testing.T) {
	got := ToIntervals([]Range{{1500, 2750}})
	want := []Interval{{Start: 1.5, End: 2.75, Duration: 1.25}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToIntervals() = %v, want %v", got, want)
	}
}

func TestOptionsValidate(t *testing.T) {
	if err := DefaultOptions().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if err := opts(0, 1, 0).Validate(); err == nil {
		t.Error("zero window should be rejected")
	}
	bad := DefaultOptions()
	bad.ThresholdDB = 6
	if err := bad.Validate(); err == nil {
		t.Error("positive threshold should be rejected")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	got := OptionsFromConfig(config.Silence{MinSilenceMs: 800, KeepSilenceMs: 0})
	want := DefaultOptions()
	want.MinSilenceMs = 800
	want.KeepSilenceMs = 0
	if got != want {
		t.Fatalf("OptionsFromConfig = %+v, want %+v", got, want)
	}
}
