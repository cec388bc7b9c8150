package apiv1

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"subscription-tracker/internal/infra/api"
	"subscription-tracker/internal/infra/metrics"
	"subscription-tracker/internal/infra/web"
)

type RouterConfig struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
	MetricsEnabled bool
	RateLimiter    api.Limiter
}

// NewRouter mounts /health, /metrics and the /api/v1 resources.
func NewRouter(s *Server, authn *web.Authenticator, rc RouterConfig) http.Handler {
	origins := rc.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(
		api.Recover(s.log),
		api.TraceID(),
		api.RequestLog(s.log),
		cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}),
	)
	if rc.RequestTimeout > 0 {
		r.Use(api.Timeout(rc.RequestTimeout))
	}

	r.Get("/health", s.health)
	if rc.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/", s.listAll)

			r.Group(func(r chi.Router) {
				r.Use(authn.Require, api.RateLimit(rc.RateLimiter, "subscriptions", s.log))
				r.Get("/upcoming-renewals", s.upcomingRenewals)
				r.Get("/user/{id}", s.listForUser)
				r.Get("/{id}", s.get)
				r.Post("/", s.create)
				r.Put("/{id}", s.update)
				r.Put("/{id}/cancel", s.cancel)
				r.Delete("/{id}", s.delete)
			})
		})
		r.With(authn.Require).Get("/users/{id}", s.getUser)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeFail(w, http.StatusNotFound, "Route not found")
	})
	return r
}
