package reminder

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/hibiken/asynq"

	"subscription-tracker/internal/domain/ports/adapter"
)

// TaskTypeReminder is the asynq task type consumed by the reminder worker.
const TaskTypeReminder = "subscription:reminder"

var _ adapter.ReminderScheduler = (*AsynqScheduler)(nil)

// Enqueuer is the part of *asynq.Client the scheduler needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ReminderPayload is the task body; the worker posts it to CallbackURL.
type ReminderPayload struct {
	SubscriptionID string            `json:"subscriptionId"`
	CallbackURL    string            `json:"callbackUrl"`
	Headers        map[string]string `json:"headers,omitempty"`
}

// AsynqScheduler enqueues reminder workflows on a Redis-backed asynq queue.
type AsynqScheduler struct {
	client Enqueuer
	queue  string
}

func NewAsynqScheduler(client Enqueuer, queue string) *AsynqScheduler {
	if queue == "" {
		queue = "default"
	}
	return &AsynqScheduler{client: client, queue: queue}
}

// NewAsynqClient opens an asynq client against the given redis address.
func NewAsynqClient(addr, password string, db int) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{Addr: addr, Password: password, DB: db})
}

func (a *AsynqScheduler) Name() string { return "asynq" }

func (a *AsynqScheduler) Trigger(ctx context.Context, t adapter.ReminderTrigger) (string, error) {
	if t.SubscriptionID == "" {
		return "", errors.New("asynq trigger: subscription id is required")
	}
	payload, err := json.Marshal(ReminderPayload{
		SubscriptionID: t.SubscriptionID,
		CallbackURL:    t.CallbackURL,
		Headers:        t.Headers,
	})
	if err != nil {
		return "", err
	}
	info, err := a.client.EnqueueContext(ctx, asynq.NewTask(TaskTypeReminder, payload),
		asynq.MaxRetry(t.Retries),
		asynq.Queue(a.queue),
	)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}
