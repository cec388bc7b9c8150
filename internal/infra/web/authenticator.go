package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"subscription-tracker/internal/domain"
	"subscription-tracker/internal/domain/model"
	"subscription-tracker/internal/domain/ports/repository"
	"subscription-tracker/internal/infra/logging"
	"subscription-tracker/internal/infra/metrics"
)

type ctxKey int

const principalKey ctxKey = iota

// WithPrincipal stores the authenticated caller on ctx.
func WithPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the caller set by Authenticator, if any.
func PrincipalFrom(ctx context.Context) (model.Principal, bool) {
	p, ok := ctx.Value(principalKey).(model.Principal)
	return p, ok && p.ID != ""
}

// Authenticator resolves a bearer token into a Principal backed by an existing user.
type Authenticator struct {
	auth  *AuthManager
	users repository.UserRepository
	log   *zerolog.Logger
}

func NewAuthenticator(auth *AuthManager, users repository.UserRepository, logger *zerolog.Logger) *Authenticator {
	return &Authenticator{auth: auth, users: users, log: logger}
}

// Require rejects the request with 401 unless it carries a valid token for a
// known user.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.auth == nil {
			unauthorized(w)
			return
		}
		claims, err := a.auth.ParseFromRequest(r)
		if err != nil {
			reason := "invalid_token"
			if errors.Is(err, ErrMissingToken) {
				reason = "missing_token"
			}
			metrics.IncAuthRejected(reason)
			unauthorized(w)
			return
		}

		u, err := a.users.FindByID(r.Context(), repository.NoTX, claims.UserID)
		if err == nil && u.IsZero() {
			err = domain.NotFound("user not found")
		}
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				logging.With(r.Context(), a.log).Error().Err(err).Msg("auth user lookup failed")
			}
			metrics.IncAuthRejected("unknown_user")
			unauthorized(w)
			return
		}

		ctx := WithPrincipal(r.Context(), model.Principal{ID: u.ID})
		ctx = logging.WithUserID(ctx, u.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Unauthorized"})
}
