package usecase

import (
	"subscription-tracker/internal/domain"
	"subscription-tracker/internal/domain/model"
)

// CheckOwnership allows a mutation only for the subscription's owner.
func CheckOwnership(p model.Principal, s *model.Subscription) error {
	if p.ID == "" {
		return domain.Unauthorized("authentication required")
	}
	if s == nil || s.OwnerID != p.ID {
		return domain.Forbidden("you are not the owner of this subscription")
	}
	return nil
}

// CheckIdentity allows a per-user listing only for that same user.
func CheckIdentity(p model.Principal, userID string) error {
	if p.ID == "" || p.ID != userID {
		return domain.Unauthorized("you are not the owner of this account")
	}
	return nil
}
