//go:build !integration

package postgres

import (
	"context"
	"time"

	"subscription-tracker/internal/domain/model"
	"subscription-tracker/internal/domain/ports/repository"
	red "subscription-tracker/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerSubscriptionRepo mocks the database repository that the subscription decorator wraps.
type mockInnerSubscriptionRepo struct {
	CreateFunc         func(ctx context.Context, tx repository.Tx, s *model.Subscription) error
	FindByIDFunc       func(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error)
	UpdateFunc         func(ctx context.Context, tx repository.Tx, s *model.Subscription) error
	DeleteFunc         func(ctx context.Context, tx repository.Tx, id string) error
	FindWhereFunc      func(ctx context.Context, tx repository.Tx, f repository.SubscriptionFilter) ([]*model.Subscription, error)
	ListWithOwnersFunc func(ctx context.Context, tx repository.Tx) ([]*model.SubscriptionWithOwner, error)
	CountByStatusFunc  func(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int, error)
}

func (m *mockInnerSubscriptionRepo) Create(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	return m.CreateFunc(ctx, tx, s)
}
func (m *mockInnerSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerSubscriptionRepo) Update(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	return m.UpdateFunc(ctx, tx, s)
}
func (m *mockInnerSubscriptionRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	return m.DeleteFunc(ctx, tx, id)
}
func (m *mockInnerSubscriptionRepo) FindWhere(ctx context.Context, tx repository.Tx, f repository.SubscriptionFilter) ([]*model.Subscription, error) {
	return m.FindWhereFunc(ctx, tx, f)
}
func (m *mockInnerSubscriptionRepo) ListWithOwners(ctx context.Context, tx repository.Tx) ([]*model.SubscriptionWithOwner, error) {
	return m.ListWithOwnersFunc(ctx, tx)
}
func (m *mockInnerSubscriptionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int, error) {
	return m.CountByStatusFunc(ctx, tx)
}

// mockInnerUserRepo mocks the database repository that the User decorator wraps.
type mockInnerUserRepo struct {
	SaveFunc     func(ctx context.Context, tx repository.Tx, u *model.User) error
	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.User, error)
}

func (m *mockInnerUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	return m.SaveFunc(ctx, tx, u)
}
func (m *mockInnerUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	return m.FindByIDFunc(ctx, tx, id)
}

// mockRedisClient mocks our Redis client wrapper. Unset funcs behave like an empty cache.
type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc    func(ctx context.Context, keys ...string) error
	PingFunc   func(ctx context.Context) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
	CloseFunc  func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc == nil {
		return "", red.ErrCacheMiss
	}
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc == nil {
		return nil
	}
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error {
	if m.PingFunc == nil {
		return nil
	}
	return m.PingFunc(ctx)
}
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	if m.IncrFunc == nil {
		return 0, nil
	}
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	if m.ExpireFunc == nil {
		return nil
	}
	return m.ExpireFunc(ctx, key, expiration)
}
func (m *mockRedisClient) Close() error {
	if m.CloseFunc == nil {
		return nil
	}
	return m.CloseFunc()
}
