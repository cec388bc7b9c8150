package reminder

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"

	"subscription-tracker/internal/domain/ports/adapter"
)

var _ adapter.ReminderScheduler = (*NoopScheduler)(nil)

// NoopScheduler accepts every trigger and keeps it in memory. Used in
// development and tests when no workflow service is configured.
type NoopScheduler struct {
	mu       sync.Mutex
	triggers []adapter.ReminderTrigger
}

func NewNoopScheduler() *NoopScheduler { return &NoopScheduler{} }

func (n *NoopScheduler) Name() string { return "noop" }

func (n *NoopScheduler) Trigger(ctx context.Context, t adapter.ReminderTrigger) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.triggers = append(n.triggers, t)
	return "noop_" + ulid.Make().String(), nil
}

// Triggers returns a copy of everything accepted so far.
func (n *NoopScheduler) Triggers() []adapter.ReminderTrigger {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]adapter.ReminderTrigger, len(n.triggers))
	copy(out, n.triggers)
	return out
}
