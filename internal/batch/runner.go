package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultConcurrency is the admission-gate width when none is configured.
	// The LLM endpoint is a shared local service; a small cap gives
	// throughput on network latency without overwhelming it.
	DefaultConcurrency = 4

	// DefaultItemTimeout bounds a single item's processing. A hung LLM call
	// records a nil result and frees its slot instead of stalling the batch.
	DefaultItemTimeout = 5 * time.Minute
)

// ErrNoItems is returned before any work starts when the batch is empty.
var ErrNoItems = errors.New("batch: no valid input items")

// Func processes a single item. A nil result or an error both record a nil
// slot in the batch result; errors are additionally logged.
type Func[In, Out any] func(ctx context.Context, item In) (*Out, error)

// Result is the aggregate outcome of one batch run. Items is positionally
// aligned with the input sequence; failed or skipped items are nil entries.
type Result[Out any] struct {
	Items     []*Out
	Attempted int
	Succeeded int
	Duration  time.Duration
}

// Runner executes batches with bounded concurrency.
type Runner[In, Out any] struct {
	Concurrency int           // max in-flight items, DefaultConcurrency if <= 0
	ItemTimeout time.Duration // per-item deadline, DefaultItemTimeout if <= 0
	Logger      *slog.Logger  // nil means slog.Default
	Label       func(In) string
}

// Run processes items and returns the aligned result set. It returns an error
// only for configuration failures detected before any item is started.
func (r *Runner[In, Out]) Run(ctx context.Context, items []In, fn Func[In, Out]) (*Result[Out], error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	if fn == nil {
		return nil, errors.New("batch: nil process func")
	}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	timeout := r.ItemTimeout
	if timeout <= 0 {
		timeout = DefaultItemTimeout
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	results := make([]*Out, len(items))
	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for i, item := range items {
		wg.Add(1)
		go func(i int, item In) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			itemCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			itemStart := time.Now()
			out, err := fn(itemCtx, item)
			if err != nil {
				logger.Warn("batch item failed",
					"item", r.label(i, item),
					"elapsed", time.Since(itemStart).Round(time.Millisecond),
					"error", err)
				return
			}
			if out != nil {
				logger.Info("batch item done",
					"item", r.label(i, item),
					"elapsed", time.Since(itemStart).Round(time.Millisecond))
			}
			results[i] = out
		}(i, item)
	}

	wg.Wait()

	res := &Result[Out]{
		Items:     results,
		Attempted: len(items),
		Duration:  time.Since(start),
	}
	for _, out := range results {
		if out != nil {
			res.Succeeded++
		}
	}

	logger.Info("batch completed",
		"succeeded", res.Succeeded,
		"attempted", res.Attempted,
		"elapsed", res.Duration.Round(100*time.Millisecond))
	return res, nil
}

func (r *Runner[In, Out]) label(i int, item In) string {
	if r.Label != nil {
		return r.Label(item)
	}
	return fmt.Sprintf("item %d", i)
}

// Summary renders the operator-facing one-line outcome, e.g.
// "62/100 succeeded in 41.3s".
func (res *Result[Out]) Summary() string {
	return fmt.Sprintf("%d/%d succeeded in %.1fs",
		res.Succeeded, res.Attempted, res.Duration.Seconds())
}
