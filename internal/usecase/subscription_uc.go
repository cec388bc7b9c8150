// File: internal/usecase/subscription_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"subscription-tracker/internal/domain"
	"subscription-tracker/internal/domain/model"
	"subscription-tracker/internal/domain/ports/repository"
	"subscription-tracker/internal/infra/logging"
	"subscription-tracker/internal/infra/metrics"
)

// DefaultUpcomingWindow is the look-ahead of the upcoming-renewals report.
const DefaultUpcomingWindow = 7 * 24 * time.Hour

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

// SubscriptionUseCase is the lifecycle engine plus the read-side query service.
// Every mutation takes the authenticated principal; reads of the
// administrative views do not.
type SubscriptionUseCase interface {
	Create(ctx context.Context, principal model.Principal, p model.SubscriptionParams) (*CreateResult, error)
	GetByID(ctx context.Context, id string) (*model.Subscription, error)
	Update(ctx context.Context, principal model.Principal, id string, patch model.SubscriptionPatch) (*model.Subscription, error)
	Cancel(ctx context.Context, principal model.Principal, id string) (*model.Subscription, error)
	Delete(ctx context.Context, principal model.Principal, id string) error

	ListAll(ctx context.Context) ([]*model.SubscriptionWithOwner, error)
	ListForUser(ctx context.Context, principal model.Principal, userID string) ([]*model.Subscription, error)
	UpcomingRenewals(ctx context.Context, now time.Time, window time.Duration) ([]*model.Subscription, error)
	CountByStatus(ctx context.Context) (map[model.SubscriptionStatus]int, error)
}

// Dispatcher starts the reminder workflow for a freshly created subscription.
type Dispatcher interface {
	Dispatch(subscriptionID string) <-chan DispatchResult
}

// CreateResult carries the persisted subscription and the pending reminder
// outcome. The subscription exists regardless of what Reminder delivers.
type CreateResult struct {
	Subscription *model.Subscription
	Reminder     <-chan DispatchResult
}

// AwaitReminder waits up to timeout for the reminder outcome. ok is false
// when the trigger is still in flight.
func (r *CreateResult) AwaitReminder(ctx context.Context, timeout time.Duration) (res DispatchResult, ok bool) {
	if r == nil || r.Reminder == nil {
		return DispatchResult{}, false
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case res = <-r.Reminder:
		return res, true
	case <-t.C:
		return DispatchResult{}, false
	case <-ctx.Done():
		return DispatchResult{}, false
	}
}

type subscriptionUC struct {
	subs       repository.SubscriptionRepository
	tm         repository.TransactionManager
	dispatcher Dispatcher
	now        func() time.Time
	log        *zerolog.Logger
}

func NewSubscriptionUseCase(
	subs repository.SubscriptionRepository,
	tm repository.TransactionManager,
	dispatcher Dispatcher,
	logger *zerolog.Logger,
) *subscriptionUC {
	return &subscriptionUC{
		subs:       subs,
		tm:         tm,
		dispatcher: dispatcher,
		now:        time.Now,
		log:        logger,
	}
}

// WithClock replaces the time source; tests pin "now" with it.
func (uc *subscriptionUC) WithClock(now func() time.Time) *subscriptionUC {
	uc.now = now
	return uc
}

func (uc *subscriptionUC) Create(ctx context.Context, principal model.Principal, p model.SubscriptionParams) (*CreateResult, error) {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.Create")()

	if principal.ID == "" {
		return nil, domain.Unauthorized("authentication required")
	}
	sub, err := model.NewSubscription(uuid.NewString(), principal.ID, p, uc.now().UTC())
	if err != nil {
		metrics.IncSubscriptionOp("create", err)
		return nil, err
	}
	if err := uc.subs.Create(ctx, repository.NoTX, sub); err != nil {
		metrics.IncSubscriptionOp("create", err)
		return nil, err
	}
	metrics.IncSubscriptionOp("create", nil)

	logging.With(ctx, uc.log).Info().
		Str("subscription_id", sub.ID).
		Str("status", string(sub.Status)).
		Time("renewal_date", sub.RenewalDate).
		Msg("subscription created")

	// The record is committed; the reminder runs on its own from here.
	return &CreateResult{Subscription: sub, Reminder: uc.dispatcher.Dispatch(sub.ID)}, nil
}

func (uc *subscriptionUC) GetByID(ctx context.Context, id string) (*model.Subscription, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	return uc.subs.FindByID(ctx, repository.NoTX, id)
}

func (uc *subscriptionUC) Update(ctx context.Context, principal model.Principal, id string, patch model.SubscriptionPatch) (*model.Subscription, error) {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.Update")()

	var updated *model.Subscription
	err := uc.mutate(ctx, principal, id, func(ctx context.Context, tx repository.Tx, cur *model.Subscription) error {
		next, err := cur.Apply(patch, uc.now().UTC())
		if err != nil {
			return err
		}
		// Owner is not patchable; pin it in case the store round-trip returns a copy.
		next.OwnerID = cur.OwnerID
		if err := uc.subs.Update(ctx, tx, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	metrics.IncSubscriptionOp("update", err)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Cancel moves the subscription to cancel. Cancelling twice succeeds and
// leaves the record untouched.
func (uc *subscriptionUC) Cancel(ctx context.Context, principal model.Principal, id string) (*model.Subscription, error) {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.Cancel")()

	var out *model.Subscription
	err := uc.mutate(ctx, principal, id, func(ctx context.Context, tx repository.Tx, cur *model.Subscription) error {
		next, changed := model.TransitionToCancel(cur, uc.now().UTC())
		out = next
		if !changed {
			return nil
		}
		return uc.subs.Update(ctx, tx, next)
	})
	metrics.IncSubscriptionOp("cancel", err)
	if err != nil {
		return nil, err
	}
	logging.With(ctx, uc.log).Info().Str("subscription_id", id).Msg("subscription cancelled")
	return out, nil
}

func (uc *subscriptionUC) Delete(ctx context.Context, principal model.Principal, id string) error {
	defer logging.TraceDuration(uc.log, "SubscriptionUC.Delete")()

	err := uc.mutate(ctx, principal, id, func(ctx context.Context, tx repository.Tx, _ *model.Subscription) error {
		return uc.subs.Delete(ctx, tx, id)
	})
	metrics.IncSubscriptionOp("delete", err)
	if err == nil {
		logging.With(ctx, uc.log).Info().Str("subscription_id", id).Msg("subscription deleted")
	}
	return err
}

// mutate runs the single-record read, ownership check and write in one transaction.
func (uc *subscriptionUC) mutate(ctx context.Context, principal model.Principal, id string, fn func(ctx context.Context, tx repository.Tx, cur *model.Subscription) error) error {
	if principal.ID == "" {
		return domain.Unauthorized("authentication required")
	}
	if !validID(id) {
		return domain.ErrNotFound
	}
	return uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		cur, err := uc.subs.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := CheckOwnership(principal, cur); err != nil {
			return err
		}
		return fn(ctx, tx, cur)
	})
}

func (uc *subscriptionUC) ListAll(ctx context.Context) ([]*model.SubscriptionWithOwner, error) {
	return uc.subs.ListWithOwners(ctx, repository.NoTX)
}

func (uc *subscriptionUC) ListForUser(ctx context.Context, principal model.Principal, userID string) ([]*model.Subscription, error) {
	if err := CheckIdentity(principal, userID); err != nil {
		return nil, err
	}
	return uc.subs.FindWhere(ctx, repository.NoTX, repository.SubscriptionFilter{OwnerID: userID})
}

// UpcomingRenewals lists active subscriptions renewing in [now, now+window],
// soonest first. A non-positive window means DefaultUpcomingWindow.
func (uc *subscriptionUC) UpcomingRenewals(ctx context.Context, now time.Time, window time.Duration) ([]*model.Subscription, error) {
	if window <= 0 {
		window = DefaultUpcomingWindow
	}
	if now.IsZero() {
		now = uc.now()
	}
	from := now.UTC()
	to := from.Add(window)
	return uc.subs.FindWhere(ctx, repository.NoTX, repository.SubscriptionFilter{
		Status:        model.SubscriptionStatusActive,
		RenewalFrom:   &from,
		RenewalTo:     &to,
		RenewalSorted: repository.SortAsc,
	})
}

func (uc *subscriptionUC) CountByStatus(ctx context.Context) (map[model.SubscriptionStatus]int, error) {
	return uc.subs.CountByStatus(ctx, repository.NoTX)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
