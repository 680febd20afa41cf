package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "om_requests_total",
			Help: "OM fetch requests served, by outcome",
		},
		[]string{"outcome"},
	)

	OMNormalizedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "om_normalized_total",
			Help: "OM content records normalized",
		},
	)
)

// Start registers the counters and serves /metrics on its own port.
func Start(port string) {
	prometheus.MustRegister(OMRequestsTotal, OMNormalizedTotal)
	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(":"+port, nil)
}
