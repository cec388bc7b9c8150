package model

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"subscription-tracker/internal/domain"
)

type Currency string

const (
	CurrencyUSD   Currency = "USD"
	CurrencyEUR   Currency = "EUR"
	CurrencyRupee Currency = "RUPEE"
	CurrencyGBP   Currency = "GBP"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

type Category string

const (
	CategorySports        Category = "sports"
	CategoryEntertainment Category = "entertainment"
	CategoryMusic         Category = "music"
	CategoryLifestyle     Category = "lifestyle"
	CategoryTechnology    Category = "technology"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive  SubscriptionStatus = "active"
	SubscriptionStatusCancel  SubscriptionStatus = "cancel"
	SubscriptionStatusExpired SubscriptionStatus = "expired"
)

// AllStatuses lists every persisted status, in display order.
var AllStatuses = []SubscriptionStatus{
	SubscriptionStatusActive,
	SubscriptionStatusCancel,
	SubscriptionStatusExpired,
}

// Subscription is a recurring billing record owned by exactly one user.
type Subscription struct {
	ID            string             `json:"id"`
	Name          string             `json:"name" validate:"required,min=2,max=100"`
	Price         decimal.Decimal    `json:"price"`
	Currency      Currency           `json:"currency,omitempty" validate:"omitempty,oneof=USD EUR RUPEE GBP"`
	Frequency     Frequency          `json:"frequency,omitempty" validate:"omitempty,oneof=daily monthly yearly"`
	Category      Category           `json:"category,omitempty" validate:"omitempty,oneof=sports entertainment music lifestyle technology"`
	PaymentMethod string             `json:"paymentMethod" validate:"required"`
	Status        SubscriptionStatus `json:"status" validate:"required,oneof=active cancel expired"`
	StartDate     time.Time          `json:"startDate"`
	RenewalDate   time.Time          `json:"renewalDate"`
	OwnerID       string             `json:"user" validate:"required,uuid"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// SubscriptionParams is the caller-supplied part of a new subscription.
// RenewalDate is optional; when nil it is derived from StartDate and Frequency.
type SubscriptionParams struct {
	Name          string
	Price         decimal.Decimal
	Currency      Currency
	Frequency     Frequency
	Category      Category
	PaymentMethod string
	StartDate     time.Time
	RenewalDate   *time.Time
}

// SubscriptionPatch carries the fields an owner may change. Owner is not part of it.
type SubscriptionPatch struct {
	Name          *string
	Price         *decimal.Decimal
	Currency      *Currency
	Frequency     *Frequency
	Category      *Category
	PaymentMethod *string
	StartDate     *time.Time
	RenewalDate   *time.Time
	Status        *SubscriptionStatus
}

// UserSummary is the owner display data denormalized into list views.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SubscriptionWithOwner is a subscription plus its owner's display fields.
type SubscriptionWithOwner struct {
	*Subscription
	Owner *UserSummary `json:"owner,omitempty"`
}

// NewSubscription runs the creation rules: derive the renewal date, check the
// temporal invariants and resolve the initial status against now.
func NewSubscription(id, ownerID string, p SubscriptionParams, now time.Time) (*Subscription, error) {
	if p.StartDate.IsZero() {
		return nil, domain.Validation("startDate is required")
	}
	renewal, err := DeriveRenewalDate(p.StartDate, p.Frequency, p.RenewalDate)
	if err != nil {
		return nil, err
	}
	if err := ValidateTemporal(p.StartDate, renewal, now); err != nil {
		return nil, err
	}
	s := &Subscription{
		ID:            id,
		Name:          strings.TrimSpace(p.Name),
		Price:         p.Price,
		Currency:      p.Currency,
		Frequency:     p.Frequency,
		Category:      p.Category,
		PaymentMethod: strings.TrimSpace(p.PaymentMethod),
		Status:        ResolveInitialStatus(renewal, now),
		StartDate:     p.StartDate,
		RenewalDate:   renewal,
		OwnerID:       ownerID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Apply returns a patched copy of s. The renewal date is never recomputed and
// status cannot be changed here; cancellation goes through TransitionToCancel.
func (s *Subscription) Apply(p SubscriptionPatch, now time.Time) (*Subscription, error) {
	cp := *s
	if p.Status != nil && *p.Status != s.Status {
		return nil, domain.Validation("status can only be changed by cancelling the subscription")
	}
	if p.Name != nil {
		cp.Name = strings.TrimSpace(*p.Name)
	}
	if p.Price != nil {
		cp.Price = *p.Price
	}
	if p.Currency != nil {
		cp.Currency = *p.Currency
	}
	if p.Frequency != nil {
		cp.Frequency = *p.Frequency
	}
	if p.Category != nil {
		cp.Category = *p.Category
	}
	if p.PaymentMethod != nil {
		cp.PaymentMethod = strings.TrimSpace(*p.PaymentMethod)
	}
	if p.StartDate != nil {
		cp.StartDate = *p.StartDate
	}
	if p.RenewalDate != nil {
		cp.RenewalDate = *p.RenewalDate
	}
	if err := ValidateTemporal(cp.StartDate, cp.RenewalDate, now); err != nil {
		return nil, err
	}
	if err := cp.Validate(); err != nil {
		return nil, err
	}
	cp.UpdatedAt = now
	return &cp, nil
}

// Validate checks field constraints that do not depend on the current time.
func (s *Subscription) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fieldMessage(fe))
			}
			return domain.Validation("%s", strings.Join(msgs, ", "))
		}
		return domain.Validation("%v", err)
	}
	if s.Price.IsNegative() {
		return domain.Validation("price must be greater than or equal to 0")
	}
	if s.StartDate.IsZero() {
		return domain.Validation("startDate is required")
	}
	if !s.RenewalDate.After(s.StartDate) {
		return domain.Validation("renewalDate must be after startDate")
	}
	return nil
}

func (s *Subscription) IsCancelled() bool { return s.Status == SubscriptionStatusCancel }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "oneof":
		return fe.Field() + " must be one of [" + fe.Param() + "]"
	case "uuid":
		return fe.Field() + " must be a valid id"
	default:
		return fe.Field() + " is invalid"
	}
}
