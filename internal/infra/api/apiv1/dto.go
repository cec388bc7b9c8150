package apiv1

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"subscription-tracker/internal/domain"
	"subscription-tracker/internal/domain/model"
)

// flexTime accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
type flexTime struct{ time.Time }

func (f *flexTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return domain.Validation("dates must be strings")
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			f.Time = t.UTC()
			return nil
		}
	}
	return domain.Validation("invalid date %q", s)
}

func (f *flexTime) ptr() *time.Time {
	if f == nil || f.IsZero() {
		return nil
	}
	t := f.Time
	return &t
}

// createRequest is the POST body. Any "user" field is ignored; the owner is
// always the authenticated caller.
type createRequest struct {
	Name          string           `json:"name"`
	Price         *decimal.Decimal `json:"price"`
	Currency      model.Currency   `json:"currency"`
	Frequency     model.Frequency  `json:"frequency"`
	Category      model.Category   `json:"category"`
	PaymentMethod string           `json:"paymentMethod"`
	StartDate     *flexTime        `json:"startDate"`
	RenewalDate   *flexTime        `json:"renewalDate"`
}

func (r createRequest) params() (model.SubscriptionParams, error) {
	if r.Price == nil {
		return model.SubscriptionParams{}, domain.Validation("price is required")
	}
	start := r.StartDate.ptr()
	if start == nil {
		return model.SubscriptionParams{}, domain.Validation("startDate is required")
	}
	return model.SubscriptionParams{
		Name:          r.Name,
		Price:         *r.Price,
		Currency:      r.Currency,
		Frequency:     r.Frequency,
		Category:      r.Category,
		PaymentMethod: r.PaymentMethod,
		StartDate:     *start,
		RenewalDate:   r.RenewalDate.ptr(),
	}, nil
}

type updateRequest struct {
	Name          *string                   `json:"name"`
	Price         *decimal.Decimal          `json:"price"`
	Currency      *model.Currency           `json:"currency"`
	Frequency     *model.Frequency          `json:"frequency"`
	Category      *model.Category           `json:"category"`
	PaymentMethod *string                   `json:"paymentMethod"`
	StartDate     *flexTime                 `json:"startDate"`
	RenewalDate   *flexTime                 `json:"renewalDate"`
	Status        *model.SubscriptionStatus `json:"status"`
}

func (r updateRequest) patch() model.SubscriptionPatch {
	return model.SubscriptionPatch{
		Name:          r.Name,
		Price:         r.Price,
		Currency:      r.Currency,
		Frequency:     r.Frequency,
		Category:      r.Category,
		PaymentMethod: r.PaymentMethod,
		StartDate:     r.StartDate.ptr(),
		RenewalDate:   r.RenewalDate.ptr(),
		Status:        r.Status,
	}
}

// decode reads a JSON body into v; malformed bodies are validation errors.
func decode(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.Validation("request body is required")
	}
	if err := json.Unmarshal(body, v); err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return de
		}
		return domain.Validation("invalid request body")
	}
	return nil
}
