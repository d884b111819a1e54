package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics instruments the audit worker that stores processed-report events.
type WorkerMetrics struct {
	registry *prometheus.Registry

	eventsTotal  *prometheus.CounterVec
	saveDuration *prometheus.HistogramVec
	inFlight     prometheus.Gauge
	eventLag     *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	eventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "events_total",
			Help:      "Processed-report events handled by status.",
		},
		[]string{"service", "status"},
	)
	saveDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "save_duration_seconds",
			Help:      "Audit row write duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	inFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "worker",
			Name:        "events_in_flight",
			Help:        "Number of events currently being stored.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	eventLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "event_lag_seconds",
			Help:      "Delay between report processing and audit write.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 300},
		},
		[]string{"service"},
	)

	registry.MustRegister(eventsTotal, saveDuration, inFlight, eventLag)

	return &WorkerMetrics{
		registry:     registry,
		eventsTotal:  eventsTotal,
		saveDuration: saveDuration,
		inFlight:     inFlight,
		eventLag:     eventLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartEvent() {
	m.inFlight.Inc()
}

func (m *WorkerMetrics) FinishEvent(service string, duration time.Duration, err error) {
	m.inFlight.Dec()
	s := status(err)
	m.eventsTotal.WithLabelValues(service, s).Inc()
	m.saveDuration.WithLabelValues(service, s).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveEventLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.eventLag.WithLabelValues(service).Observe(lag.Seconds())
}
