package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "admin_gateway",
			Name:      "logins_total",
			Help:      "Admin login attempts by result",
		},
		[]string{"result"},
	)

	forcedLogoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "admin_gateway",
			Name:      "forced_logouts_total",
			Help:      "Sessions cleared after an unauthorized downstream response",
		},
	)

	graphRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "admin_gateway",
			Name:      "graph_requests_total",
			Help:      "Data access operations by resource, operation and outcome",
		},
		[]string{"resource", "operation", "outcome"},
	)

	dependencyHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "admin_gateway",
			Name:      "dependency_health",
			Help:      "Health status of dependencies (1 = healthy, 0 = unhealthy)",
		},
		[]string{"dependency"},
	)
)

// RecordLogin counts a login attempt; result is success, rejected or error.
func RecordLogin(result string) {
	loginsTotal.WithLabelValues(result).Inc()
}

func RecordForcedLogout() {
	forcedLogoutsTotal.Inc()
}

// RecordGraphRequest counts a data access call.
func RecordGraphRequest(resource, operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	graphRequestsTotal.WithLabelValues(resource, operation, outcome).Inc()
}

// SetDependencyHealth sets the health status of a dependency
func SetDependencyHealth(dependency string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	dependencyHealth.WithLabelValues(dependency).Set(value)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
