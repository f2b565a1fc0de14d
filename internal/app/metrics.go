package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	obs "marketplace-delivery/internal/http/middleware"
	"marketplace-delivery/internal/metrics"
)

// Metrics is the process-wide metric set, registered on its own registry.
type Metrics struct {
	Registry        *prometheus.Registry
	HTTP            *obs.HTTPMetrics
	CourierRequests *prometheus.CounterVec
	Checkouts       *prometheus.CounterVec
	Fallbacks       *prometheus.CounterVec
	StatusEvents    *prometheus.CounterVec
	GatewayRetries  prometheus.Counter
}

// NewMetrics creates and registers all service metrics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		Registry:        reg,
		HTTP:            obs.NewHTTPMetrics(reg),
		CourierRequests: metrics.NewCourierRequestsTotal(),
		Checkouts:       metrics.NewCheckoutsTotal(),
		Fallbacks:       metrics.NewVendorFallbacksTotal(),
		StatusEvents:    metrics.NewStatusEventsTotal(),
		GatewayRetries:  metrics.NewGatewayRetriesTotal(),
	}
	reg.MustRegister(m.CourierRequests, m.Checkouts, m.Fallbacks, m.StatusEvents, m.GatewayRetries)
	return m
}
