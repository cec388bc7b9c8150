package sched

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"subscription-tracker/internal/domain/model"
	"subscription-tracker/internal/infra/metrics"
)

// StatusCounter is the read side the refresher needs; SubscriptionUseCase satisfies it.
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[model.SubscriptionStatus]int, error)
}

// StatusRefresher publishes the per-status subscription gauge on a cron
// schedule. It only reads; statuses are never changed here.
type StatusRefresher struct {
	spec    string
	counter StatusCounter
	hooks   []func()
	timeout time.Duration
	log     *zerolog.Logger
}

func NewStatusRefresher(spec string, counter StatusCounter, logger *zerolog.Logger) *StatusRefresher {
	l := logger.With().Str("component", "StatusRefresher").Logger()
	if spec == "" {
		spec = "@every 1m"
	}
	return &StatusRefresher{spec: spec, counter: counter, timeout: 10 * time.Second, log: &l}
}

// OnTick registers an extra observation run on every tick (e.g. pool stats).
func (w *StatusRefresher) OnTick(fn func()) *StatusRefresher {
	w.hooks = append(w.hooks, fn)
	return w
}

// Refresh runs a single tick.
func (w *StatusRefresher) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	for _, fn := range w.hooks {
		fn()
	}
	counts, err := w.counter.CountByStatus(ctx)
	if err != nil {
		return fmt.Errorf("count by status: %w", err)
	}
	metrics.SetSubscriptionsTotal(counts)
	w.log.Debug().Interface("counts", counts).Msg("subscription gauge refreshed")
	return nil
}

// Run refreshes once, then on every schedule tick until ctx is done.
func (w *StatusRefresher) Run(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(w.spec, func() {
		if err := w.Refresh(ctx); err != nil {
			w.log.Error().Err(err).Msg("status refresh failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", w.spec, err)
	}

	w.log.Info().Str("schedule", w.spec).Msg("Starting status refresher")
	if err := w.Refresh(ctx); err != nil {
		w.log.Error().Err(err).Msg("initial status refresh failed")
	}
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	w.log.Info().Msg("Stopping status refresher")
	return ctx.Err()
}
