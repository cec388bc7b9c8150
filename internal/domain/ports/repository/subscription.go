package repository

import (
	"context"
	"time"

	"subscription-tracker/internal/domain/model"
)

// SortOrder is the direction of a renewal-date ordering.
type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SubscriptionFilter selects subscriptions. Zero-valued fields are ignored;
// the renewal bounds are inclusive.
type SubscriptionFilter struct {
	OwnerID       string
	Status        model.SubscriptionStatus
	RenewalFrom   *time.Time
	RenewalTo     *time.Time
	RenewalSorted SortOrder
}

// SubscriptionRepository is the port for subscription records.
type SubscriptionRepository interface {
	Create(ctx context.Context, tx Tx, s *model.Subscription) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscription, error)
	// Update writes every mutable column of s. The owner column is never written.
	Update(ctx context.Context, tx Tx, s *model.Subscription) error
	Delete(ctx context.Context, tx Tx, id string) error
	FindWhere(ctx context.Context, tx Tx, f SubscriptionFilter) ([]*model.Subscription, error)

	// --- read-only views ---
	ListWithOwners(ctx context.Context, tx Tx) ([]*model.SubscriptionWithOwner, error)
	CountByStatus(ctx context.Context, tx Tx) (map[model.SubscriptionStatus]int, error)
}
