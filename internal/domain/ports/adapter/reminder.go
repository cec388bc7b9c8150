package adapter

import "context"

// ReminderTrigger is the message handed to the reminder workflow service.
type ReminderTrigger struct {
	CallbackURL    string
	SubscriptionID string
	Headers        map[string]string
	Retries        int
}

// ReminderScheduler starts the external reminder workflow for a subscription.
// Implementations make a single attempt and never retry.
type ReminderScheduler interface {
	Name() string
	Trigger(ctx context.Context, t ReminderTrigger) (workflowRunID string, err error)
}
