// Package worker runs batch jobs on a bounded number of goroutines.
package worker

import (
	"context"
	"sync"
)

// Semaphore provides a counting semaphore for controlling concurrency.
type Semaphore struct {
	permits chan struct{}
}

// NewSemaphore creates a new semaphore with the given number of permits.
func NewSemaphore(count int) *Semaphore {
	if count <= 0 {
		count = 1
	}
	s := &Semaphore{
		permits: make(chan struct{}, count),
	}
	for range count {
		s.permits <- struct{}{}
	}
	return s
}

// Acquire blocks until a permit is available or ctx is done. A permit won
// after cancellation is handed back.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case <-s.permits:
		if err := ctx.Err(); err != nil {
			s.Release()
			return err
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a permit to the semaphore.
func (s *Semaphore) Release() {
	select {
	case s.permits <- struct{}{}:
	default:
		// Semaphore is full, this shouldn't happen in normal use
	}
}

// Result is the outcome of one item.
type Result[T any] struct {
	Index int
	Item  T
	Err   error
}

// Progress represents batch progress.
type Progress struct {
	Complete int
	Failed   int
	Total    int
}

// Percent returns the completion percentage.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Complete) / float64(p.Total) * 100
}

// Pool runs a function over a list of items.
type Pool struct {
	Jobs int
	// OnDone is called after each item finishes, serialized.
	OnDone func(index int, err error, progress Progress)
}

// Run calls fn for every item with at most Jobs in flight and returns the
// results in input order. Items not started before ctx is cancelled get
// ctx.Err().
func Run[T any](ctx context.Context, p Pool, items []T, fn func(ctx context.Context, index int, item T) error) []Result[T] {
	results := make([]Result[T], len(items))
	sem := NewSemaphore(p.Jobs)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		progress = Progress{Total: len(items)}
	)
	finish := func(i int, err error) {
		mu.Lock()
		defer mu.Unlock()
		results[i].Err = err
		progress.Complete++
		if err != nil {
			progress.Failed++
		}
		if p.OnDone != nil {
			p.OnDone(i, err, progress)
		}
	}

	for i, item := range items {
		results[i] = Result[T]{Index: i, Item: item}
		if err := sem.Acquire(ctx); err != nil {
			finish(i, err)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release()
			finish(i, fn(ctx, i, item))
		}()
	}
	wg.Wait()
	return results
}

// Failed returns the results that carry an error.
func Failed[T any](results []Result[T]) []Result[T] {
	var out []Result[T]
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
