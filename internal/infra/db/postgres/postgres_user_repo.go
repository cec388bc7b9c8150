package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"subscription-tracker/internal/domain"
	"subscription-tracker/internal/domain/model"
	"subscription-tracker/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

func (r *PostgresUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (id, name, email, created_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (id) DO UPDATE SET name=$2, email=$3;`

	if u.CreatedAt.IsZero() {
		u.CreatedAt = utcNow()
	}
	_, err := execSQL(ctx, r.pool, tx, q, u.ID, u.Name, u.Email, u.CreatedAt)
	return mapErr("save user", err)
}

func (r *PostgresUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NotFound("user not found")
	}
	const q = `SELECT id, name, email, created_at FROM users WHERE id=$1;`
	var u model.User
	if err := pickRow(ctx, r.pool, tx, q, id).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
		err = mapErr("find user", err)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("user not found")
		}
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}
