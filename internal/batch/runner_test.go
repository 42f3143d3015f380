package batch

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"
)

func TestRun_OrderPreservedUnderRandomDelays(t *testing.T) {
	items := make([]int, 20)
	for i := range items {
		items[i] = i
	}

	r := &Runner[int, string]{Concurrency: 5}
	res, err := r.Run(context.Background(), items, func(ctx context.Context, n int) (*string, error) {
		time.Sleep(time.Duration(rand.Intn(20)) * time.Millisecond)
		s := fmt.Sprintf("result-%d", n)
		return &s, nil
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(res.Items) != len(items) {
		t.Fatalf("got %d results, want %d", len(res.Items), len(items))
	}
	for i, out := range res.Items {
		if out == nil {
			t.Fatalf("result %d is nil", i)
		}
		want := fmt.Sprintf("result-%d", i)
		if *out != want {
			t.Errorf("result[%d] = %q, want %q", i, *out, want)
		}
	}
	if res.Succeeded != 20 || res.Attempted != 20 {
		t.Errorf("counts = %d/%d, want 20/20", res.Succeeded, res.Attempted)
	}
}

func TestRun_PartialFailureIsolation(t *testing.T) {
	items := []int{1, 2, 3}
	r := &Runner[int, string]{Concurrency: 3}
	res, err := r.Run(context.Background(), items, func(ctx context.Context, n int) (*string, error) {
		if n == 2 {
			return nil, errors.New("connection refused")
		}
		s := fmt.Sprintf("ok-%d", n)
		return &s, nil
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(res.Items) != 3 {
		t.Fatalf("got %d results, want 3", len(res.Items))
	}
	if res.Items[0] == nil || *res.Items[0] != "ok-1" {
		t.Errorf("result[0] = %v", res.Items[0])
	}
	if res.Items[1] != nil {
		t.Errorf("result[1] = %v, want nil", *res.Items[1])
	}
	if res.Items[2] == nil || *res.Items[2] != "ok-3" {
		t.Errorf("result[2] = %v", res.Items[2])
	}
	if res.Succeeded != 2 {
		t.Errorf("Succeeded = %d, want 2", res.Succeeded)
	}
}

func TestRun_ConcurrencyBoundRespected(t *testing.T) {
	var running, peak atomic.Int32

	items := make([]int, 5)
	r := &Runner[int, int]{Concurrency: 2}
	_, err := r.Run(context.Background(), items, func(ctx context.Context, n int) (*int, error) {
		cur := running.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(15 * time.Millisecond)
		running.Add(-1)
		return &n, nil
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got := peak.Load(); got > 2 {
		t.Errorf("observed %d concurrent items, want <= 2", got)
	}
}

func TestRun_EmptyBatchIsConfigurationError(t *testing.T) {
	var calls atomic.Int32
	r := &Runner[int, int]{}
	_, err := r.Run(context.Background(), nil, func(ctx context.Context, n int) (*int, error) {
		calls.Add(1)
		return &n, nil
	})
	if !errors.Is(err, ErrNoItems) {
		t.Fatalf("err = %v, want ErrNoItems", err)
	}
	if calls.Load() != 0 {
		t.Errorf("process func called %d times before config error", calls.Load())
	}
}

func TestRun_ItemTimeoutFreesSlot(t *testing.T) {
	r := &Runner[int, string]{Concurrency: 1, ItemTimeout: 20 * time.Millisecond}
	items := []int{1, 2}
	start := time.Now()
	res, err := r.Run(context.Background(), items, func(ctx context.Context, n int) (*string, error) {
		if n == 1 {
			<-ctx.Done() // simulate a hung LLM call
			return nil, ctx.Err()
		}
		s := "fast"
		return &s, nil
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.Items[0] != nil {
		t.Error("hung item should record nil")
	}
	if res.Items[1] == nil || *res.Items[1] != "fast" {
		t.Errorf("result[1] = %v", res.Items[1])
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("batch blocked for %v on a hung item", elapsed)
	}
}

func TestRun_NilResultWithoutErrorCountsAsSkip(t *testing.T) {
	items := []int{1}
	r := &Runner[int, string]{}
	res, err := r.Run(context.Background(), items, func(ctx context.Context, n int) (*string, error) {
		return nil, nil // skipped, not failed
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.Succeeded != 0 {
		t.Errorf("Succeeded = %d, want 0", res.Succeeded)
	}
}

func TestSummary(t *testing.T) {
	res := &Result[string]{Attempted: 100, Succeeded: 62, Duration: 41300 * time.Millisecond}
	if got := res.Summary(); got != "62/100 succeeded in 41.3s" {
		t.Errorf("Summary = %q", got)
	}
}
