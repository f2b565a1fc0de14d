package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-delivery/internal/http/handlers"
	obs "marketplace-delivery/internal/http/middleware"
	"marketplace-delivery/internal/http/router"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	return router.New(router.Deps{
		Base:     handlers.New(nil),
		Checkout: &handlers.CheckoutHandler{},
		Delivery: &handlers.DeliveryHandler{},
		Orders:   &handlers.OrderHandler{},
		Metrics:  obs.NewHTTPMetrics(reg),
		Gatherer: reg,
	})
}

func TestNew_BaseRoutes(t *testing.T) {
	t.Parallel()

	h := newRouter(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Content-Type"))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodHead, "/healthcheck", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"route not found"}`, rr.Body.String())
}

func TestNew_MetricsExposesHTTPCounters(t *testing.T) {
	t.Parallel()

	h := newRouter(t)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `http_requests_total{method="GET",path="/ping",status="200"} 1`)
}

func TestNew_TrackRequiresJobID(t *testing.T) {
	t.Parallel()

	h := newRouter(t)
	for _, path := range []string{"/delivery/track", "/delivery/track/stream"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equalf(t, http.StatusBadRequest, rr.Code, "path %s", path)
	}
}

func TestNew_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/checkout", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
