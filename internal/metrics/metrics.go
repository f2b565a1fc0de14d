package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewCourierRequestsTotal returns a counter of courier provider calls labelled by operation and result
func NewCourierRequestsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "courier_requests_total",
		Help: "Total number of courier provider calls by operation and result",
	}, []string{"operation", "result"})
}

// NewCheckoutsTotal returns a counter of completed checkouts labelled by the committed delivery method
func NewCheckoutsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_total",
		Help: "Total number of persisted checkouts by delivery method",
	}, []string{"method"})
}

// NewVendorFallbacksTotal returns a counter of vendors routed to standard delivery labelled by reason
func NewVendorFallbacksTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vendor_fallbacks_total",
		Help: "Total number of vendor groups that fell back to standard delivery",
	}, []string{"reason"})
}

// NewStatusEventsTotal returns a counter of consumed courier status events labelled by result
func NewStatusEventsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "courier_status_events_total",
		Help: "Total number of courier status events consumed by result",
	}, []string{"result"})
}

// NewGatewayRetriesTotal returns a Prometheus counter for the number of retry attempts performed by gateways
func NewGatewayRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_retries_total",
		Help: "Total number of retry attempts performed by gateways",
	})
}
