package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/gobank/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transfer metrics
	TransfersRequested  prometheus.Counter
	SagasFinished       *prometheus.CounterVec
	SagaDuplicates      prometheus.Counter
	SagasDeferred       prometheus.Counter
	SagaDuration        *prometheus.HistogramVec
	CommandsRepublished prometheus.Counter

	// API metrics
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	HTTPInFlight  prometheus.Gauge
	RateLimitHits prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TransfersRequested: factory.NewCounter(prometheus.CounterOpts{
			Name: "gobank_transfers_requested_total",
			Help: "Total number of transfer commands published",
		}),
		SagasFinished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobank_transfer_sagas_finished_total",
				Help: "Total number of transfer sagas finished by outcome",
			},
			[]string{"status"},
		),
		SagaDuplicates: factory.NewCounter(prometheus.CounterOpts{
			Name: "gobank_transfer_saga_duplicates_total",
			Help: "Total number of redelivered commands answered from saga state",
		}),
		SagasDeferred: factory.NewCounter(prometheus.CounterOpts{
			Name: "gobank_transfer_sagas_deferred_total",
			Help: "Total number of deliveries left for republish because locks or saga state were unavailable",
		}),
		SagaDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gobank_transfer_saga_duration_seconds",
				Help:    "Duration of transfer sagas from delivery to outcome",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		CommandsRepublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "gobank_transfer_commands_republished_total",
			Help: "Total number of stale transfer commands published again",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobank_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gobank_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gobank_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "gobank_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),
	}
}

// TransferRequested implements usecase.SagaMetrics.
func (m *Metrics) TransferRequested() {
	m.TransfersRequested.Inc()
}

// SagaFinished implements usecase.SagaMetrics.
func (m *Metrics) SagaFinished(status domain.SagaStatus, duration time.Duration) {
	m.SagasFinished.WithLabelValues(string(status)).Inc()
	m.SagaDuration.WithLabelValues(string(status)).Observe(duration.Seconds())
}

// SagaDuplicate implements usecase.SagaMetrics.
func (m *Metrics) SagaDuplicate() {
	m.SagaDuplicates.Inc()
}

// SagaDeferred implements usecase.SagaMetrics.
func (m *Metrics) SagaDeferred() {
	m.SagasDeferred.Inc()
}

// Republished counts commands published again by the stale saga sweeper.
func (m *Metrics) Republished(n int) {
	m.CommandsRepublished.Add(float64(n))
}

func (m *Metrics) RequestStarted() {
	m.HTTPInFlight.Inc()
}

func (m *Metrics) RequestFinished(method, path string, status int, duration time.Duration) {
	m.HTTPInFlight.Dec()
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) RateLimited() {
	m.RateLimitHits.Inc()
}
