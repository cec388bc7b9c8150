package metrics

import (
	"subscription-tracker/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		subscriptionOpsTotal,
		subscriptionsTotal,
	)
}

var (
	subscriptionOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_operations_total",
			Help: "Subscription mutations by operation and outcome.",
		},
		[]string{"op", "result"}, // op: create|update|cancel|delete, result: ok|error
	)

	subscriptionsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "subscriptions_total",
			Help: "Current number of subscriptions by persisted status.",
		},
		[]string{"status"},
	)
)

func IncSubscriptionOp(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	subscriptionOpsTotal.WithLabelValues(norm(op), result).Inc()
}

// SetSubscriptionsTotal publishes counts for every known status; missing ones read as zero.
func SetSubscriptionsTotal(counts map[model.SubscriptionStatus]int) {
	for _, status := range model.AllStatuses {
		subscriptionsTotal.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
}
