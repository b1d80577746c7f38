package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}

	var last Progress
	pool := Pool{Jobs: 3, OnDone: func(_ int, _ error, p Progress) { last = p }}
	results := Run(context.Background(), pool, items, func(_ context.Context, _ int, item int) error {
		n := inFlight.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		if item%4 == 0 {
			return errors.New("boom")
		}
		return nil
	})

	if peak.Load() > 3 {
		t.Fatalf("more than 3 jobs in flight: %d", peak.Load())
	}
	for i, r := range results {
		if r.Index != i || r.Item != items[i] {
			t.Fatalf("results out of order at %d: %+v", i, r)
		}
	}
	failed := Failed(results)
	if len(failed) != 2 || failed[0].Item != 4 || failed[1].Item != 8 {
		t.Fatalf("unexpected failures %+v", failed)
	}
	if last.Complete != 8 || last.Failed != 2 || last.Percent() != 100 {
		t.Fatalf("unexpected final progress %+v", last)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var started atomic.Int32
	results := Run(ctx, Pool{Jobs: 1}, []string{"a", "b", "c"}, func(ctx context.Context, i int, _ string) error {
		started.Add(1)
		if i == 0 {
			cancel()
		}
		return nil
	})
	if started.Load() != 1 {
		t.Fatalf("expected only the first item to start, got %d", started.Load())
	}
	if !errors.Is(results[1].Err, context.Canceled) || !errors.Is(results[2].Err, context.Canceled) {
		t.Fatalf("unstarted items should carry ctx error: %+v", results)
	}
}

func TestSemaphoreDefaultsToOne(t *testing.T) {
	s := NewSemaphore(0)
	if err := s.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := s.Acquire(ctx); err == nil {
		t.Fatal("second acquire should block until timeout")
	}
	s.Release()
	s.Release()
	if len(s.permits) != 1 {
		t.Fatalf("release past capacity should be dropped, have %d", len(s.permits))
	}
}
