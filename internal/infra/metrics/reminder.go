package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(reminderDispatchTotal, reminderDispatchLatency) }

var (
	reminderDispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_dispatch_total",
			Help: "Reminder workflow triggers by driver and result.",
		},
		[]string{"driver", "result"}, // result: accepted|failed|rejected
	)

	reminderDispatchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reminder_dispatch_latency_seconds",
			Help:    "Time until the reminder service accepted or refused a trigger.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"driver"},
	)
)

func ObserveReminderDispatch(driver, result string, elapsed time.Duration) {
	reminderDispatchTotal.WithLabelValues(norm(driver), norm(result)).Inc()
	if elapsed > 0 {
		reminderDispatchLatency.WithLabelValues(norm(driver)).Observe(elapsed.Seconds())
	}
}
