package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(authRejectedTotal, rateLimitTriggeredTotal) }

var (
	authRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_rejected_total",
			Help: "Requests rejected by the bearer-token guard.",
		},
		[]string{"reason"}, // missing_token|invalid_token|unknown_user
	)

	rateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limit_triggered_total",
			Help: "Total number of times callers have been rate-limited.",
		},
	)
)

func IncAuthRejected(reason string) {
	authRejectedTotal.WithLabelValues(norm(reason)).Inc()
}

func IncRateLimitTriggered() {
	rateLimitTriggeredTotal.Inc()
}
