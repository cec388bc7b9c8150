//go:build !integration

package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIs(t *testing.T) {
	t.Run("should match any error of the same kind", func(t *testing.T) {
		err := Validation("name is required")
		if !errors.Is(err, ErrValidation) {
			t.Errorf("expected %v to match ErrValidation", err)
		}
		if errors.Is(err, ErrNotFound) {
			t.Errorf("expected %v not to match ErrNotFound", err)
		}
	})

	t.Run("should match detail sentinels by identity only", func(t *testing.T) {
		if errors.Is(Validation("price is invalid"), ErrDuplicate) {
			t.Error("expected a plain validation error not to match ErrDuplicate")
		}
		wrapped := fmt.Errorf("save user: %w", ErrDuplicate)
		if !errors.Is(wrapped, ErrDuplicate) || !errors.Is(wrapped, ErrValidation) {
			t.Errorf("expected %v to match ErrDuplicate and ErrValidation", wrapped)
		}
	})
}

func TestKindOf(t *testing.T) {
	if got := KindOf(Forbidden("not yours")); got != KindForbidden {
		t.Errorf("expected %s, got %s", KindForbidden, got)
	}
	if got := KindOf(errors.New("boom")); got != KindStore {
		t.Errorf("expected unclassified errors to be %s, got %s", KindStore, got)
	}
}
