package reminder

import (
	"fmt"

	"subscription-tracker/internal/config"
	"subscription-tracker/internal/domain/ports/adapter"
	red "subscription-tracker/internal/infra/redis"
)

// New builds the scheduler selected by cfg.Reminder.Driver. The returned
// close func releases driver resources and is never nil.
func New(cfg *config.Config) (adapter.ReminderScheduler, func() error, error) {
	nop := func() error { return nil }
	switch cfg.Reminder.Driver {
	case "workflow":
		c, err := NewWorkflowClient(cfg.Reminder.QStash.URL, cfg.Reminder.QStash.Token, cfg.Reminder.HTTPTimeout)
		if err != nil {
			return nil, nop, err
		}
		return c, nop, nil
	case "asynq":
		opts, err := red.Options(&cfg.Redis)
		if err != nil {
			return nil, nop, fmt.Errorf("asynq redis options: %w", err)
		}
		client := NewAsynqClient(opts.Addr, opts.Password, opts.DB)
		return NewAsynqScheduler(client, cfg.Reminder.Asynq.Queue), client.Close, nil
	case "noop", "":
		return NewNoopScheduler(), nop, nil
	default:
		return nil, nop, fmt.Errorf("unknown reminder driver %q", cfg.Reminder.Driver)
	}
}
