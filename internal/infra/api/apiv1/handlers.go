package apiv1

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"subscription-tracker/internal/domain"
	"subscription-tracker/internal/domain/ports/repository"
	"subscription-tracker/internal/infra/logging"
	"subscription-tracker/internal/infra/web"
	"subscription-tracker/internal/usecase"
)

const maxBodyBytes = 1 << 20

// Server holds the handlers for /api/v1.
type Server struct {
	subs          usecase.SubscriptionUseCase
	users         repository.UserRepository
	acceptTimeout time.Duration
	ready         func(ctx context.Context) error
	now           func() time.Time
	log           *zerolog.Logger
}

func NewServer(subs usecase.SubscriptionUseCase, users repository.UserRepository, acceptTimeout time.Duration, logger *zerolog.Logger) *Server {
	return &Server{
		subs:          subs,
		users:         users,
		acceptTimeout: acceptTimeout,
		now:           time.Now,
		log:           logger,
	}
}

// WithReadiness makes /health report 503 while check fails.
func (s *Server) WithReadiness(check func(ctx context.Context) error) *Server {
	s.ready = check
	return s
}

func (s *Server) logger(r *http.Request) *zerolog.Logger { return logging.With(r.Context(), s.log) }

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			s.logger(r).Warn().Err(err).Msg("readiness check failed")
			writeFail(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "OK"})
}

// ===== subscriptions =====

func (s *Server) listAll(w http.ResponseWriter, r *http.Request) {
	subs, err := s.subs.ListAll(r.Context())
	if err != nil {
		writeErr(w, s.logger(r), err)
		return
	}
	writeOK(w, subs)
}

func (s *Server) upcomingRenewals(w http.ResponseWriter, r *http.Request) {
	window := usecase.DefaultUpcomingWindow
	if q := r.URL.Query().Get("days"); q != "" {
		days, err := strconv.Atoi(q)
		if err != nil || days < 1 || days > 365 {
			writeErr(w, s.logger(r), domain.Validation("days must be an integer between 1 and 365"))
			return
		}
		window = time.Duration(days) * 24 * time.Hour
	}
	subs, err := s.subs.UpcomingRenewals(r.Context(), s.now(), window)
	if err != nil {
		writeErr(w, s.logger(r), err)
		return
	}
	writeOK(w, subs)
}

func (s *Server) listForUser(w http.ResponseWriter, r *http.Request) {
	p, _ := web.PrincipalFrom(r.Context())
	subs, err := s.subs.ListForUser(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, s.logger(r), err)
		return
	}
	writeOK(w, subs)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	sub, err := s.subs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, s.logger(r), err)
		return
	}
	writeOK(w, sub)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := s.readBody(w, r, &req); err != nil {
		writeErr(w, s.logger(r), err)
		return
	}
	params, err := req.params()
	if err != nil {
		writeErr(w, s.logger(r), err)
		return
	}

	p, _ := web.PrincipalFrom(r.Context())
	res, err := s.subs.Create(r.Context(), p, params)
	if err != nil {
		writeErr(w, s.logger(r), err)
		return
	}

	body := envelope{Success: true, Data: res.Subscription}
	rem, ok := res.AwaitReminder(r.Context(), s.acceptTimeout)
	switch {
	case !ok:
		body.ReminderPending = true
	case rem.Err != nil:
		s.logger(r).Warn().Err(rem.Err).Str("subscription_id", res.Subscription.ID).Msg("reminder not scheduled")
		body.Warning = "subscription created but the renewal reminder could not be scheduled"
	default:
		body.WorkflowRunID = rem.WorkflowRunID
	}
	writeJSON(w, http.StatusCreated, body)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := s.readBody(w, r, &req); err != nil {
		writeErr(w, s.logger(r), err)
		return
	}
	p, _ := web.PrincipalFrom(r.Context())
	sub, err := s.subs.Update(r.Context(), p, chi.URLParam(r, "id"), req.patch())
	if err != nil {
		writeErr(w, s.logger(r), err)
		return
	}
	writeOK(w, sub)
}

func (s *Server) cancel(w http.ResponseWriter, r *http.Request) {
	p, _ := web.PrincipalFrom(r.Context())
	sub, err := s.subs.Cancel(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, s.logger(r), err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Subscription cancelled", Data: sub})
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	p, _ := web.PrincipalFrom(r.Context())
	if err := s.subs.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		writeErr(w, s.logger(r), err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Subscription deleted"})
}

// ===== users =====

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	if s.users == nil {
		writeFail(w, http.StatusNotImplemented, "not implemented")
		return
	}
	u, err := s.users.FindByID(r.Context(), repository.NoTX, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, s.logger(r), err)
		return
	}
	writeOK(w, u)
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request, v any) error {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return domain.Validation("request body too large or unreadable")
	}
	return decode(b, v)
}
