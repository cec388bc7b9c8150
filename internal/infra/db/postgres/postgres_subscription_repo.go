package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"subscription-tracker/internal/domain"
	"subscription-tracker/internal/domain/model"
	"subscription-tracker/internal/domain/ports/repository"
)

// Ensure subscriptionRepo implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subscriptionColumns = `id, name, price::text, COALESCE(currency, ''), COALESCE(frequency, ''), COALESCE(category, ''),
       payment_method, status, start_date, renewal_date, user_id, created_at, updated_at`

func (r *subscriptionRepo) Create(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (
  id, name, price, currency, frequency, category, payment_method, status,
  start_date, renewal_date, user_id, created_at, updated_at
) VALUES ($1,$2,$3::numeric,NULLIF($4,''),NULLIF($5,''),NULLIF($6,''),$7,$8,$9,$10,$11,$12,$13);`

	_, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.Name, s.Price.String(), string(s.Currency), string(s.Frequency), string(s.Category),
		s.PaymentMethod, string(s.Status), s.StartDate, s.RenewalDate, s.OwnerID, s.CreatedAt, s.UpdatedAt)
	return mapErr("insert subscription", err)
}

func (r *subscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	q := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id=$1;`
	s, err := scanSubscription(pickRow(ctx, r.pool, tx, q, id))
	if err != nil {
		return nil, mapErr("find subscription", err)
	}
	return s, nil
}

// Update writes the mutable columns only; user_id is deliberately absent.
func (r *subscriptionRepo) Update(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
UPDATE subscriptions SET
  name=$2, price=$3::numeric, currency=NULLIF($4,''), frequency=NULLIF($5,''), category=NULLIF($6,''),
  payment_method=$7, status=$8, start_date=$9, renewal_date=$10, updated_at=$11
WHERE id=$1;`

	tag, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.Name, s.Price.String(), string(s.Currency), string(s.Frequency), string(s.Category),
		s.PaymentMethod, string(s.Status), s.StartDate, s.RenewalDate, s.UpdatedAt)
	if err != nil {
		return mapErr("update subscription", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM subscriptions WHERE id=$1;`, id)
	if err != nil {
		return mapErr("delete subscription", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepo) FindWhere(ctx context.Context, tx repository.Tx, f repository.SubscriptionFilter) ([]*model.Subscription, error) {
	q, args := buildFindWhere(f)
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, mapErr("find subscriptions", err)
	}
	defer rows.Close()

	out := []*model.Subscription{}
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, mapErr("scan subscription", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("read subscriptions", err)
	}
	return out, nil
}

// buildFindWhere renders the filter as a parameterized query.
func buildFindWhere(f repository.SubscriptionFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.OwnerID != "" {
		add("user_id=$%d", f.OwnerID)
	}
	if f.Status != "" {
		add("status=$%d", string(f.Status))
	}
	if f.RenewalFrom != nil {
		add("renewal_date >= $%d", *f.RenewalFrom)
	}
	if f.RenewalTo != nil {
		add("renewal_date <= $%d", *f.RenewalTo)
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + subscriptionColumns + ` FROM subscriptions`)
	if len(conds) > 0 {
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	switch f.RenewalSorted {
	case repository.SortAsc:
		b.WriteString(" ORDER BY renewal_date ASC, id ASC")
	case repository.SortDesc:
		b.WriteString(" ORDER BY renewal_date DESC, id ASC")
	default:
		b.WriteString(" ORDER BY created_at ASC, id ASC")
	}
	b.WriteString(";")
	return b.String(), args
}

func (r *subscriptionRepo) ListWithOwners(ctx context.Context, tx repository.Tx) ([]*model.SubscriptionWithOwner, error) {
	const q = `
SELECT s.id, s.name, s.price::text, COALESCE(s.currency, ''), COALESCE(s.frequency, ''), COALESCE(s.category, ''),
       s.payment_method, s.status, s.start_date, s.renewal_date, s.user_id, s.created_at, s.updated_at,
       u.name, u.email
  FROM subscriptions s
  LEFT JOIN users u ON u.id = s.user_id
 ORDER BY s.created_at ASC, s.id ASC;`

	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, mapErr("list subscriptions", err)
	}
	defer rows.Close()

	out := []*model.SubscriptionWithOwner{}
	for rows.Next() {
		var (
			s            model.Subscription
			price        string
			name, email  *string
			cur, fr, cat string
			status       string
		)
		if err := rows.Scan(&s.ID, &s.Name, &price, &cur, &fr, &cat, &s.PaymentMethod, &status,
			&s.StartDate, &s.RenewalDate, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt, &name, &email); err != nil {
			return nil, mapErr("scan subscription", err)
		}
		if err := fillSubscription(&s, price, cur, fr, cat, status); err != nil {
			return nil, err
		}
		row := &model.SubscriptionWithOwner{Subscription: &s}
		if name != nil {
			owner := &model.User{ID: s.OwnerID, Name: *name}
			if email != nil {
				owner.Email = *email
			}
			row.Owner = owner.Summary()
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("read subscriptions", err)
	}
	return out, nil
}

func (r *subscriptionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT status, COUNT(*) FROM subscriptions GROUP BY status;`)
	if err != nil {
		return nil, mapErr("count subscriptions", err)
	}
	defer rows.Close()

	out := make(map[model.SubscriptionStatus]int, len(model.AllStatuses))
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, mapErr("scan count", err)
		}
		out[model.SubscriptionStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("read counts", err)
	}
	return out, nil
}

func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	var (
		s            model.Subscription
		price        string
		cur, fr, cat string
		status       string
	)
	if err := row.Scan(&s.ID, &s.Name, &price, &cur, &fr, &cat, &s.PaymentMethod, &status,
		&s.StartDate, &s.RenewalDate, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if err := fillSubscription(&s, price, cur, fr, cat, status); err != nil {
		return nil, err
	}
	return &s, nil
}

func fillSubscription(s *model.Subscription, price, cur, fr, cat, status string) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return domain.Store("parse price", err)
	}
	s.Price = p
	s.Currency = model.Currency(cur)
	s.Frequency = model.Frequency(fr)
	s.Category = model.Category(cat)
	s.Status = model.SubscriptionStatus(status)
	s.StartDate = s.StartDate.UTC()
	s.RenewalDate = s.RenewalDate.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return nil
}

// utcNow is the store-side clock for rows written without an explicit time.
var utcNow = func() time.Time { return time.Now().UTC() }
