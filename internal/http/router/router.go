package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketplace-delivery/internal/http/handlers"
	obs "marketplace-delivery/internal/http/middleware"
	"marketplace-delivery/internal/logx"
)

const defaultRequestTimeout = 15 * time.Second

// Deps are the handlers and infrastructure the router mounts.
type Deps struct {
	Base     *handlers.Handlers
	Checkout *handlers.CheckoutHandler
	Delivery *handlers.DeliveryHandler
	Orders   *handlers.OrderHandler

	Metrics  *obs.HTTPMetrics
	Gatherer prometheus.Gatherer
	Logger   logx.Logger
	// RequestTimeout bounds every route except the tracking stream.
	RequestTimeout time.Duration
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(d Deps) http.Handler {
	if d.Metrics == nil {
		d.Metrics = obs.NewHTTPMetrics(nil)
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = defaultRequestTimeout
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(obs.Observability(d.Metrics, d.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/ping", d.Base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(d.Base.HealthcheckHead))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))

	// SSE живёт дольше любого таймаута запроса
	r.Get("/delivery/track/stream", d.Delivery.Stream)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(d.RequestTimeout))

		r.Post("/checkout", d.Checkout.Checkout)

		r.Post("/delivery/quote", d.Delivery.Quote)
		r.Post("/delivery/create", d.Delivery.Create)
		r.Get("/delivery/track", d.Delivery.Track)
		r.Post("/delivery/cancel", d.Delivery.Cancel)

		r.Get("/orders/{id}", d.Orders.GetByID)
	})

	r.NotFound(http.HandlerFunc(d.Base.NotFound))

	return r
}
