// Package metrics exposes route activity as Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure stages.
const (
	StageRender   = "render"
	StageDelivery = "delivery"
)

// Metrics holds the collectors of one application instance.
type Metrics struct {
	exchanges *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	active    prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		exchanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kamelrun_exchanges_total",
			Help: "Exchanges delivered to their sink.",
		}, []string{"integration", "route"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kamelrun_exchange_failures_total",
			Help: "Exchanges that failed, by stage.",
		}, []string{"integration", "route", "stage"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kamelrun_exchange_duration_seconds",
			Help:    "Time from timer firing to sink delivery.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"integration", "route"}),
		active: factory.NewGauge(prometheus.GaugeOpts{
			Name: "kamelrun_routes_active",
			Help: "Routes currently running.",
		}),
	}
}

// Delivered records a successful exchange.
func (m *Metrics) Delivered(integration, route string, took time.Duration) {
	m.exchanges.WithLabelValues(integration, route).Inc()
	m.duration.WithLabelValues(integration, route).Observe(took.Seconds())
}

// Failed records a failed exchange.
func (m *Metrics) Failed(integration, route, stage string) {
	m.failures.WithLabelValues(integration, route, stage).Inc()
}

// RouteStarted and RouteStopped track the number of running routes.
func (m *Metrics) RouteStarted() { m.active.Inc() }

func (m *Metrics) RouteStopped() { m.active.Dec() }
