// Package metrics expone los contadores Prometheus del servicio.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	CatAdoptionsTotal prometheus.Counter
	CatReturnsTotal   prometheus.Counter
}

// New crea los colectores sobre un registry propio, así cada instancia del
// router (tests incluidos) registra sin chocar con el registry global.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "catshelter_http_requests_total",
			Help: "Total number of HTTP requests handled",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "catshelter_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		CatAdoptionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "catshelter_adoptions_total",
			Help: "Total number of successful cat adoptions",
		}),
		CatReturnsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "catshelter_returns_total",
			Help: "Total number of cats returned to the shelter",
		}),
	}
}

// Handler sirve /metrics para este registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route, status string, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordAdoption y RecordReturn implementan cats.AdoptionRecorder.
func (m *Metrics) RecordAdoption() { m.CatAdoptionsTotal.Inc() }
func (m *Metrics) RecordReturn()   { m.CatReturnsTotal.Inc() }
