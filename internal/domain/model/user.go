package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"subscription-tracker/internal/domain"
)

// User is the read-only view of an account that owns subscriptions.
// Account storage itself lives outside this service.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewUser(id, name, email string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || !strings.Contains(email, "@") {
		return nil, domain.Validation("user requires a name and a valid email")
	}
	return &User{ID: id, Name: name, Email: email, CreatedAt: time.Now()}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }

func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	ID string
}
