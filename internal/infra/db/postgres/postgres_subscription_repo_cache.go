package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"subscription-tracker/internal/domain/model"
	"subscription-tracker/internal/domain/ports/repository"
	"subscription-tracker/internal/infra/metrics"
	red "subscription-tracker/internal/infra/redis"
)

var _ repository.SubscriptionRepository = (*subscriptionRepoCacheDecorator)(nil)

// subscriptionRepoCacheDecorator is a read-through cache for single-record
// lookups outside transactions. Writes drop the cached entry once their
// transaction commits, so a read racing the write cannot re-cache the old row.
type subscriptionRepoCacheDecorator struct {
	inner repository.SubscriptionRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewSubscriptionRepoCacheDecorator(inner repository.SubscriptionRepository, cache red.RedisClient, ttl time.Duration) repository.SubscriptionRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &subscriptionRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func subscriptionKey(id string) string { return fmt.Sprintf("subscription:%s", id) }

func (d *subscriptionRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	// Reads inside a transaction must see the transaction's view.
	if tx != nil {
		return d.inner.FindByID(ctx, tx, id)
	}
	key := subscriptionKey(id)
	if val, err := d.cache.Get(ctx, key); err == nil {
		var sub model.Subscription
		if json.Unmarshal([]byte(val), &sub) == nil {
			metrics.IncCacheRequest("subscription", "hit")
			return &sub, nil
		}
	}

	metrics.IncCacheRequest("subscription", "miss")
	sub, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(sub); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return sub, nil
}

func (d *subscriptionRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	return d.inner.Create(ctx, tx, s)
}

func (d *subscriptionRepoCacheDecorator) Update(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if err := d.inner.Update(ctx, tx, s); err != nil {
		return err
	}
	d.invalidate(ctx, s.ID)
	return nil
}

func (d *subscriptionRepoCacheDecorator) Delete(ctx context.Context, tx repository.Tx, id string) error {
	if err := d.inner.Delete(ctx, tx, id); err != nil {
		return err
	}
	d.invalidate(ctx, id)
	return nil
}

func (d *subscriptionRepoCacheDecorator) invalidate(ctx context.Context, id string) {
	key := subscriptionKey(id)
	repository.AfterCommit(ctx, func(ctx context.Context) { _ = d.cache.Del(ctx, key) })
}

// Listings and counts always hit the store.

func (d *subscriptionRepoCacheDecorator) FindWhere(ctx context.Context, tx repository.Tx, f repository.SubscriptionFilter) ([]*model.Subscription, error) {
	return d.inner.FindWhere(ctx, tx, f)
}

func (d *subscriptionRepoCacheDecorator) ListWithOwners(ctx context.Context, tx repository.Tx) ([]*model.SubscriptionWithOwner, error) {
	return d.inner.ListWithOwners(ctx, tx)
}

func (d *subscriptionRepoCacheDecorator) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int, error) {
	return d.inner.CountByStatus(ctx, tx)
}
