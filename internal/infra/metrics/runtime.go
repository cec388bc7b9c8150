package metrics

import (
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(buildInfo, dbPoolStats) }

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "A constant metric with labels for version and commit hash.",
		},
		[]string{"version", "commit"},
	)

	dbPoolStats = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_stats",
			Help: "Current state of the database connection pool.",
		},
		[]string{"state"}, // 'total', 'idle', 'in_use'
	)
)

func SetBuildInfo(version, commit string) {
	buildInfo.WithLabelValues(version, commit).Set(1)
}

// ObservePool copies a pgxpool snapshot into the pool gauges.
func ObservePool(p *pgxpool.Pool) {
	if p == nil {
		return
	}
	st := p.Stat()
	dbPoolStats.WithLabelValues("total").Set(float64(st.TotalConns()))
	dbPoolStats.WithLabelValues("idle").Set(float64(st.IdleConns()))
	dbPoolStats.WithLabelValues("in_use").Set(float64(st.AcquiredConns()))
}
