package worker

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry         *prometheus.Registry
	deliveriesTotal  *prometheus.CounterVec
	deliveryDuration *prometheus.HistogramVec
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &metrics{
		registry: registry,
		deliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobtrack_worker_deliveries_total",
			Help: "Total webhook deliveries by event and outcome.",
		}, []string{"event", "outcome"}),
		deliveryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jobtrack_worker_delivery_duration_seconds",
			Help:    "Webhook delivery duration by event and outcome.",
			Buckets: prometheus.DefBuckets,
		}, []string{"event", "outcome"}),
	}
	registry.MustRegister(
		m.deliveriesTotal,
		m.deliveryDuration,
	)
	return m
}

func (m *metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
