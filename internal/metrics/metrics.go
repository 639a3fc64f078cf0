package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	fillsTotal        *prometheus.CounterVec
	positionsOpened   prometheus.Counter
	positionsClosed   *prometheus.CounterVec
	setupsSkipped     *prometheus.CounterVec
	simulationsTotal  *prometheus.CounterVec
	simulateDuration  prometheus.Histogram
	priceFetchesTotal *prometheus.CounterVec
	openPositions     prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.fillsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swingtrade_fills_total",
			Help: "Total number of executed fills by action",
		},
		[]string{"action"},
	)
	r.positionsOpened = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "swingtrade_positions_opened_total",
			Help: "Total number of positions opened",
		},
	)
	r.positionsClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swingtrade_positions_closed_total",
			Help: "Total number of positions fully closed, by exit reason",
		},
		[]string{"reason"},
	)
	r.setupsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swingtrade_setups_skipped_total",
			Help: "Total number of setup rows skipped during normalization",
		},
		[]string{"reason"},
	)
	r.simulationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swingtrade_simulations_total",
			Help: "Total number of simulation runs",
		},
		[]string{"status"},
	)
	r.simulateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "swingtrade_simulation_duration_seconds",
			Help:    "Simulation run duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)
	r.priceFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swingtrade_price_fetches_total",
			Help: "Total number of price fetch requests",
		},
		[]string{"kind", "status"},
	)
	r.openPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "swingtrade_open_positions",
			Help: "Number of positions open at the end of the last run",
		},
	)

	reg.MustRegister(r.fillsTotal)
	reg.MustRegister(r.positionsOpened)
	reg.MustRegister(r.positionsClosed)
	reg.MustRegister(r.setupsSkipped)
	reg.MustRegister(r.simulationsTotal)
	reg.MustRegister(r.simulateDuration)
	reg.MustRegister(r.priceFetchesTotal)
	reg.MustRegister(r.openPositions)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordFill records one executed fill.
func (r *Registry) RecordFill(action string) {
	r.fillsTotal.WithLabelValues(action).Inc()
}

// RecordPositionOpened records a position entry.
func (r *Registry) RecordPositionOpened() {
	r.positionsOpened.Inc()
}

// RecordPositionClosed records a fully closed position with its exit
// reason ("stop_loss" or "targets").
func (r *Registry) RecordPositionClosed(reason string) {
	r.positionsClosed.WithLabelValues(reason).Inc()
}

// RecordSetupSkipped records a setup row dropped during normalization.
func (r *Registry) RecordSetupSkipped(reason string) {
	r.setupsSkipped.WithLabelValues(reason).Inc()
}

// RecordSimulation records a simulation run completion.
func (r *Registry) RecordSimulation(status string, duration float64) {
	r.simulationsTotal.WithLabelValues(status).Inc()
	r.simulateDuration.Observe(duration)
}

// RecordPriceFetch records a price fetch attempt.
func (r *Registry) RecordPriceFetch(kind, status string) {
	r.priceFetchesTotal.WithLabelValues(kind, status).Inc()
}

// SetOpenPositions sets the open-position gauge after a run.
func (r *Registry) SetOpenPositions(count int) {
	r.openPositions.Set(float64(count))
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
