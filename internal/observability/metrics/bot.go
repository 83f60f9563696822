package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type BotMetrics struct {
	registry *prometheus.Registry

	updatesTotal    *prometheus.CounterVec
	uploadsTotal    *prometheus.CounterVec
	uploadDuration  *prometheus.HistogramVec
	pollAttempts    *prometheus.HistogramVec
	trackerInFlight prometheus.Gauge
	queriesTotal    *prometheus.CounterVec
}

func NewBotMetrics(service string) *BotMetrics {
	registry := prometheus.NewRegistry()

	updatesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "bot",
			Name:      "updates_total",
			Help:      "Total inbound chat updates by kind.",
		},
		[]string{"service", "kind"},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "upload",
			Name:      "jobs_total",
			Help:      "Total tracked upload jobs by terminal status.",
		},
		[]string{"service", "status"},
	)
	uploadDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "concierge",
			Subsystem: "upload",
			Name:      "job_duration_seconds",
			Help:      "Wall-clock time from submit to terminal status.",
			Buckets:   []float64{1, 3, 5, 10, 20, 30, 60, 120, 180},
		},
		[]string{"service", "status"},
	)
	pollAttempts := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "concierge",
			Subsystem: "upload",
			Name:      "poll_attempts",
			Help:      "Distribution of status polls per job.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34, 55},
		},
		[]string{"service"},
	)
	trackerInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "concierge",
			Subsystem: "upload",
			Name:      "tracker_in_flight",
			Help:      "Number of upload poll loops currently running.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "query",
			Name:      "requests_total",
			Help:      "Total answered queries by answer source.",
		},
		[]string{"service", "source"},
	)

	registry.MustRegister(
		updatesTotal,
		uploadsTotal,
		uploadDuration,
		pollAttempts,
		trackerInFlight,
		queriesTotal,
	)

	return &BotMetrics{
		registry:        registry,
		updatesTotal:    updatesTotal,
		uploadsTotal:    uploadsTotal,
		uploadDuration:  uploadDuration,
		pollAttempts:    pollAttempts,
		trackerInFlight: trackerInFlight,
		queriesTotal:    queriesTotal,
	}
}

func (m *BotMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *BotMetrics) ObserveUpdate(service, kind string) {
	m.updatesTotal.WithLabelValues(service, kind).Inc()
}

func (m *BotMetrics) StartTracking() {
	m.trackerInFlight.Inc()
}

func (m *BotMetrics) FinishTracking(service, status string, duration time.Duration, attempts int) {
	m.trackerInFlight.Dec()
	m.uploadsTotal.WithLabelValues(service, status).Inc()
	m.uploadDuration.WithLabelValues(service, status).Observe(duration.Seconds())
	m.pollAttempts.WithLabelValues(service).Observe(float64(attempts))
}

func (m *BotMetrics) ObserveQuery(service, source string) {
	m.queriesTotal.WithLabelValues(service, source).Inc()
}
