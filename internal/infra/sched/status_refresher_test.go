//go:build !integration

package sched

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"subscription-tracker/internal/domain/model"
	"subscription-tracker/internal/infra/metrics"
)

type mockCounter struct {
	CountFunc func(ctx context.Context) (map[model.SubscriptionStatus]int, error)
	calls     int32
}

func (m *mockCounter) CountByStatus(ctx context.Context) (map[model.SubscriptionStatus]int, error) {
	atomic.AddInt32(&m.calls, 1)
	return m.CountFunc(ctx)
}

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func gaugeValue(t *testing.T, status string) float64 {
	t.Helper()
	metrics.MustRegister()
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != "subscriptions_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "status" && lp.GetValue() == status {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("no subscriptions_total sample for %s", status)
	return 0
}

func TestStatusRefresher_Refresh(t *testing.T) {
	t.Run("should publish counts and run hooks", func(t *testing.T) {
		// --- Arrange ---
		c := &mockCounter{CountFunc: func(ctx context.Context) (map[model.SubscriptionStatus]int, error) {
			return map[model.SubscriptionStatus]int{model.SubscriptionStatusActive: 3, model.SubscriptionStatusCancel: 1}, nil
		}}
		var hooked bool
		w := NewStatusRefresher("", c, newTestLogger()).OnTick(func() { hooked = true })

		// --- Act ---
		err := w.Refresh(context.Background())

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if !hooked {
			t.Error("expected the tick hook to run")
		}
		if got := gaugeValue(t, "active"); got != 3 {
			t.Errorf("expected active=3, got %v", got)
		}
		if got := gaugeValue(t, "expired"); got != 0 {
			t.Errorf("expected expired=0, got %v", got)
		}
	})

	t.Run("should return counter errors", func(t *testing.T) {
		c := &mockCounter{CountFunc: func(ctx context.Context) (map[model.SubscriptionStatus]int, error) {
			return nil, errors.New("db down")
		}}
		if err := NewStatusRefresher("", c, newTestLogger()).Refresh(context.Background()); err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestStatusRefresher_Run(t *testing.T) {
	t.Run("should refresh immediately and stop with the context", func(t *testing.T) {
		c := &mockCounter{CountFunc: func(ctx context.Context) (map[model.SubscriptionStatus]int, error) {
			return map[model.SubscriptionStatus]int{}, nil
		}}
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- NewStatusRefresher("@every 1h", c, newTestLogger()).Run(ctx) }()

		deadline := time.Now().Add(2 * time.Second)
		for atomic.LoadInt32(&c.calls) == 0 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		cancel()

		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("refresher did not stop")
		}
		if atomic.LoadInt32(&c.calls) < 1 {
			t.Error("expected an initial refresh")
		}
	})

	t.Run("should reject an invalid schedule", func(t *testing.T) {
		c := &mockCounter{}
		if err := NewStatusRefresher("every now and then", c, newTestLogger()).Run(context.Background()); err == nil {
			t.Fatal("expected an error")
		}
	})
}
