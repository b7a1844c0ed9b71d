// Package metrics holds the Prometheus collectors of the service. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "assethub"

	ResultSuccess = "success"
	ResultError   = "error"
)

type Metrics struct {
	resolutions    *prometheus.CounterVec
	queries        *prometheus.CounterVec
	queryLatency   *prometheus.HistogramVec
	history        *prometheus.CounterVec
	historyLatency *prometheus.HistogramVec
	windows        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "binding_resolutions_total",
				Help:      "Total attribute binding resolutions by outcome",
			},
			[]string{"outcome"},
		),
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total resource queries by resource type and result",
			},
			[]string{"resource_type", "result"},
		),
		queryLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_latency_seconds",
				Help:      "Resource query latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"resource_type"},
		),
		history: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "history_requests_total",
				Help:      "Total history requests by execution mode and result",
			},
			[]string{"mode", "result"},
		),
		historyLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "history_latency_seconds",
				Help:      "History request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		windows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lifecycle_windows_total",
				Help:      "Total reconciled usage windows by state",
			},
			[]string{"state"},
		),
	}
	for _, c := range []prometheus.Collector{m.resolutions, m.queries, m.queryLatency, m.history, m.historyLatency, m.windows} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

func (m *Metrics) ObserveResolution(outcome string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveQuery(resourceType string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(resourceType, result(err)).Inc()
	m.queryLatency.WithLabelValues(resourceType).Observe(d.Seconds())
}

func (m *Metrics) ObserveHistory(mode string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.history.WithLabelValues(mode, result(err)).Inc()
	m.historyLatency.WithLabelValues(mode).Observe(d.Seconds())
}

func (m *Metrics) ObserveWindow(state string) {
	if m == nil {
		return
	}
	m.windows.WithLabelValues(state).Inc()
}
