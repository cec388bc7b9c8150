package usecase

import (
	"context"
	"fmt"
	"time"

	"subscription-tracker/internal/domain"
	"subscription-tracker/internal/domain/ports/adapter"
	"subscription-tracker/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// TaskRunner accepts background work without blocking; worker.Pool satisfies it.
type TaskRunner interface {
	Submit(task func(ctx context.Context) error) error
}

// DispatchResult is the outcome of one reminder trigger. Err is a
// domain.KindDispatch error when the trigger was refused or failed.
type DispatchResult struct {
	WorkflowRunID string
	Err           error
}

// ReminderDispatcher hands reminder triggers to a TaskRunner so that
// creation never waits on the reminder service.
type ReminderDispatcher struct {
	scheduler   adapter.ReminderScheduler
	runner      TaskRunner
	callbackURL string
	log         *zerolog.Logger
}

func NewReminderDispatcher(scheduler adapter.ReminderScheduler, runner TaskRunner, callbackURL string, logger *zerolog.Logger) *ReminderDispatcher {
	l := logger.With().Str("component", "reminder_dispatcher").Str("driver", scheduler.Name()).Logger()
	return &ReminderDispatcher{scheduler: scheduler, runner: runner, callbackURL: callbackURL, log: &l}
}

// Dispatch queues one trigger for subscriptionID. The returned channel is
// buffered and always receives exactly one result.
func (d *ReminderDispatcher) Dispatch(subscriptionID string) <-chan DispatchResult {
	out := make(chan DispatchResult, 1)
	trigger := adapter.ReminderTrigger{
		CallbackURL:    d.callbackURL,
		SubscriptionID: subscriptionID,
		Headers:        map[string]string{"content-type": "application/json"},
		Retries:        0,
	}

	task := func(ctx context.Context) (taskErr error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				taskErr = fmt.Errorf("reminder trigger panicked: %v", r)
				metrics.ObserveReminderDispatch(d.scheduler.Name(), "failed", time.Since(start))
				out <- DispatchResult{Err: domain.Dispatch(taskErr)}
			}
		}()
		runID, err := d.scheduler.Trigger(ctx, trigger)
		if err != nil {
			metrics.ObserveReminderDispatch(d.scheduler.Name(), "failed", time.Since(start))
			d.log.Warn().Err(err).Str("subscription_id", subscriptionID).Msg("reminder trigger failed")
			out <- DispatchResult{Err: domain.Dispatch(err)}
			return nil
		}
		metrics.ObserveReminderDispatch(d.scheduler.Name(), "accepted", time.Since(start))
		d.log.Info().Str("subscription_id", subscriptionID).Str("workflow_run_id", runID).Msg("reminder scheduled")
		out <- DispatchResult{WorkflowRunID: runID}
		return nil
	}

	if err := d.runner.Submit(task); err != nil {
		metrics.ObserveReminderDispatch(d.scheduler.Name(), "rejected", 0)
		d.log.Warn().Err(err).Str("subscription_id", subscriptionID).Msg("reminder trigger not queued")
		out <- DispatchResult{Err: domain.Dispatch(err)}
	}
	return out
}
