//go:build !integration

package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool(t *testing.T) {
	t.Run("should run every submitted task", func(t *testing.T) {
		// --- Arrange ---
		p := NewPool(2, 8, nil)
		p.Start(context.Background())
		var ran int32
		var wg sync.WaitGroup
		wg.Add(5)

		// --- Act ---
		for i := 0; i < 5; i++ {
			if err := p.Submit(func(ctx context.Context) error {
				defer wg.Done()
				atomic.AddInt32(&ran, 1)
				return nil
			}); err != nil {
				t.Fatalf("submit: %v", err)
			}
		}
		wg.Wait()
		p.Stop()

		// --- Assert ---
		if got := atomic.LoadInt32(&ran); got != 5 {
			t.Errorf("expected 5 tasks to run, got %d", got)
		}
	})

	t.Run("should refuse work when the queue is full", func(t *testing.T) {
		// Not started, so nothing drains the queue.
		p := NewPool(1, 1, nil)
		noop := func(ctx context.Context) error { return nil }
		if err := p.Submit(noop); err != nil {
			t.Fatalf("first submit: %v", err)
		}
		if err := p.Submit(noop); !errors.Is(err, ErrQueueFull) {
			t.Fatalf("expected ErrQueueFull, got %v", err)
		}
	})

	t.Run("should refuse nil tasks and work after stop", func(t *testing.T) {
		p := NewPool(1, 1, nil)
		p.Start(context.Background())
		if err := p.Submit(nil); !errors.Is(err, ErrNilTask) {
			t.Errorf("expected ErrNilTask, got %v", err)
		}
		p.Stop()
		p.Stop()
		if err := p.Submit(func(ctx context.Context) error { return nil }); !errors.Is(err, ErrStopped) {
			t.Errorf("expected ErrStopped, got %v", err)
		}
	})

	t.Run("should still run queued tasks after the context is cancelled", func(t *testing.T) {
		// --- Arrange ---
		p := NewPool(2, 8, nil)
		var ran int32
		for i := 0; i < 4; i++ {
			if err := p.Submit(func(ctx context.Context) error {
				atomic.AddInt32(&ran, 1)
				return ctx.Err()
			}); err != nil {
				t.Fatalf("submit: %v", err)
			}
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// --- Act ---
		p.Start(ctx)
		p.Stop()

		// --- Assert ---
		if got := atomic.LoadInt32(&ran); got != 4 {
			t.Errorf("expected every queued task to run, got %d", got)
		}
	})

	t.Run("should survive a panicking task", func(t *testing.T) {
		p := NewPool(1, 2, nil)
		p.Start(context.Background())
		done := make(chan struct{})
		_ = p.Submit(func(ctx context.Context) error { panic("boom") })
		_ = p.Submit(func(ctx context.Context) error { close(done); return nil })
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("worker died after a panic")
		}
		p.Stop()
	})
}
