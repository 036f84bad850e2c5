package obs

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry is the dedicated Prometheus registry of the service.
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "operation_duration_seconds", Help: "Duration of timed internal operations.", Buckets: prometheus.DefBuckets},
		[]string{"op", "outcome"},
	)

	// SimulationRuns counts terminal and rejected runs by status and error code.
	SimulationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "simulation_runs_total", Help: "Simulation runs by status and error code."},
		[]string{"status", "code"},
	)
	SimulationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "simulation_execution_seconds", Help: "Engine execution time per run.", Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5}},
	)
	SkippedOrders = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "simulation_skipped_orders_total", Help: "Orders skipped because their route did not resolve."},
	)
	RunCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "simulation_cache_lookups_total", Help: "Run cache lookups by result."},
		[]string{"result"},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on Registry. Safe to call repeatedly.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(OperationDuration)
		Registry.MustRegister(SimulationRuns)
		Registry.MustRegister(SimulationDuration)
		Registry.MustRegister(SkippedOrders)
		Registry.MustRegister(RunCacheLookups)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// Handler exposes Registry in the Prometheus text format.
func Handler() http.Handler {
	RegisterDefault()
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
