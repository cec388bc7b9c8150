package repository

import (
	"context"

	"subscription-tracker/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

// UserRepository is a read-mostly view of accounts; account CRUD lives elsewhere.
// Save exists for seeding and tests.
type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
}
