package model

import (
	"time"

	"subscription-tracker/internal/domain"
)

// renewalPeriodDays maps a billing frequency to its renewal period in calendar days.
var renewalPeriodDays = map[Frequency]int{
	FrequencyDaily:   1,
	FrequencyMonthly: 30,
	FrequencyYearly:  365,
}

// DeriveRenewalDate returns explicit when given (it must still be after start),
// otherwise start plus the period for frequency. Unknown or empty frequencies fail.
func DeriveRenewalDate(start time.Time, frequency Frequency, explicit *time.Time) (time.Time, error) {
	if explicit != nil {
		if !explicit.After(start) {
			return time.Time{}, domain.Validation("renewalDate must be after startDate")
		}
		return *explicit, nil
	}
	days, ok := renewalPeriodDays[frequency]
	if !ok {
		if frequency == "" {
			return time.Time{}, domain.Validation("frequency is required when renewalDate is not provided")
		}
		return time.Time{}, domain.Validation("frequency %q has no renewal period", frequency)
	}
	return start.AddDate(0, 0, days), nil
}

// ResolveInitialStatus is expired iff renewal already lies before now.
func ResolveInitialStatus(renewal, now time.Time) SubscriptionStatus {
	if renewal.Before(now) {
		return SubscriptionStatusExpired
	}
	return SubscriptionStatusActive
}

// ValidateTemporal enforces startDate <= now and renewalDate > startDate.
func ValidateTemporal(start, renewal, now time.Time) error {
	if start.After(now) {
		return domain.Validation("startDate must be in the past")
	}
	if !renewal.After(start) {
		return domain.Validation("renewalDate must be after startDate")
	}
	return nil
}

// TransitionToCancel returns a cancelled copy of s. Cancelling an already
// cancelled subscription is a no-op and reports changed=false.
func TransitionToCancel(s *Subscription, now time.Time) (out *Subscription, changed bool) {
	cp := *s
	if cp.IsCancelled() {
		return &cp, false
	}
	cp.Status = SubscriptionStatusCancel
	cp.UpdatedAt = now
	return &cp, true
}
