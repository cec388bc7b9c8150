//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"subscription-tracker/internal/domain"
	"subscription-tracker/internal/domain/model"
	"subscription-tracker/internal/domain/ports/adapter"
	"subscription-tracker/internal/domain/ports/repository"
)

// =============================
// Repositories
// =============================

// ---- Mock SubscriptionRepository ----

// MockSubscriptionRepo keeps an in-memory table; any Func field overrides the default.
type MockSubscriptionRepo struct {
	mu   sync.Mutex
	data map[string]*model.Subscription // by id

	CreateFunc   func(ctx context.Context, tx repository.Tx, s *model.Subscription) error
	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error)
	UpdateFunc   func(ctx context.Context, tx repository.Tx, s *model.Subscription) error
	DeleteFunc   func(ctx context.Context, tx repository.Tx, id string) error

	UpdateCalls int
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{data: map[string]*model.Subscription{}}
}

func (r *MockSubscriptionRepo) Create(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, tx, s)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.data[s.ID] = &cp
	return nil
}

func (r *MockSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

// Update mirrors the store contract: the owner column is never written.
func (r *MockSubscriptionRepo) Update(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	r.mu.Lock()
	r.UpdateCalls++
	r.mu.Unlock()
	if r.UpdateFunc != nil {
		return r.UpdateFunc(ctx, tx, s)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.data[s.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *s
	cp.OwnerID = cur.OwnerID
	r.data[s.ID] = &cp
	return nil
}

func (r *MockSubscriptionRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	if r.DeleteFunc != nil {
		return r.DeleteFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *MockSubscriptionRepo) FindWhere(ctx context.Context, tx repository.Tx, f repository.SubscriptionFilter) ([]*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Subscription{}
	for _, s := range r.data {
		if f.OwnerID != "" && s.OwnerID != f.OwnerID {
			continue
		}
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if f.RenewalFrom != nil && s.RenewalDate.Before(*f.RenewalFrom) {
			continue
		}
		if f.RenewalTo != nil && s.RenewalDate.After(*f.RenewalTo) {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	switch f.RenewalSorted {
	case repository.SortAsc:
		sort.Slice(out, func(i, j int) bool { return out[i].RenewalDate.Before(out[j].RenewalDate) })
	case repository.SortDesc:
		sort.Slice(out, func(i, j int) bool { return out[i].RenewalDate.After(out[j].RenewalDate) })
	}
	return out, nil
}

func (r *MockSubscriptionRepo) ListWithOwners(ctx context.Context, tx repository.Tx) ([]*model.SubscriptionWithOwner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.SubscriptionWithOwner, 0, len(r.data))
	for _, s := range r.data {
		cp := *s
		out = append(out, &model.SubscriptionWithOwner{Subscription: &cp, Owner: &model.UserSummary{ID: s.OwnerID}})
	}
	return out, nil
}

func (r *MockSubscriptionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[model.SubscriptionStatus]int{}
	for _, s := range r.data {
		out[s.Status]++
	}
	return out, nil
}

// put seeds a record directly, bypassing the engine.
func (r *MockSubscriptionRepo) put(s *model.Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.data[s.ID] = &cp
}

func (r *MockSubscriptionRepo) get(id string) *model.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.data[id]
	if !ok {
		return nil
	}
	cp := *s
	return &cp
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn immediately with NoTX unless WithTxFunc is set.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// =============================
// Adapters
// =============================

// ---- Mock ReminderScheduler ----

type MockReminderScheduler struct {
	mu        sync.Mutex
	Triggered []adapter.ReminderTrigger

	TriggerFunc func(ctx context.Context, t adapter.ReminderTrigger) (string, error)
}

var _ adapter.ReminderScheduler = (*MockReminderScheduler)(nil)

func (m *MockReminderScheduler) Name() string { return "mock" }

func (m *MockReminderScheduler) Trigger(ctx context.Context, t adapter.ReminderTrigger) (string, error) {
	m.mu.Lock()
	m.Triggered = append(m.Triggered, t)
	m.mu.Unlock()
	if m.TriggerFunc != nil {
		return m.TriggerFunc(ctx, t)
	}
	return "wfr_" + t.SubscriptionID, nil
}

func (m *MockReminderScheduler) calls() []adapter.ReminderTrigger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]adapter.ReminderTrigger(nil), m.Triggered...)
}

// ---- Task runners ----

// inlineRunner runs tasks synchronously on Submit.
type inlineRunner struct{}

func (inlineRunner) Submit(task func(ctx context.Context) error) error {
	return task(context.Background())
}

// goRunner runs each task on its own goroutine, like a started pool.
type goRunner struct{}

func (goRunner) Submit(task func(ctx context.Context) error) error {
	go func() { _ = task(context.Background()) }()
	return nil
}

// fullRunner refuses every task, like a saturated pool.
type fullRunner struct{}

func (fullRunner) Submit(task func(ctx context.Context) error) error {
	return errors.New("worker queue full")
}

// =============================
// Utilities
// =============================

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
