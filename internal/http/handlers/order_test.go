package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-delivery/internal/apperr"
	"marketplace-delivery/internal/domain"
)

func serveOrder(h *OrderHandler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/orders/{id}", h.GetByID)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestOrderHandler_GetByID(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	orders := &stubOrders{getFn: func(_ context.Context, id string) (*domain.Order, error) {
		if id != "ORD-1" {
			return nil, fmt.Errorf("order %s: %w", id, apperr.ErrNotFound)
		}
		return &domain.Order{
			ID:             "ORD-1",
			TransactionID:  "TXN-1",
			UserID:         "u-1",
			PaymentStatus:  domain.PaymentPending,
			DeliveryMethod: domain.DeliveryStandard,
			DeliveryFee:    decimal.NewFromInt(15),
			CreatedAt:      created,
		}, nil
	}}
	h := NewOrderHandler(nil, orders)

	rr := serveOrder(h, "/orders/ORD-1")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"id":"ORD-1"`)
	assert.Contains(t, rr.Body.String(), `"deliveryFee":15`)
	assert.Contains(t, rr.Body.String(), `"courierJobs":null`)
	assert.Contains(t, rr.Body.String(), `"createdAt":"2025-03-01T09:00:00Z"`)

	rr = serveOrder(h, "/orders/ORD-404")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"not found"}`, rr.Body.String())
}

func TestOrderHandler_GetByID_ExpressListsJobs(t *testing.T) {
	t.Parallel()

	orders := &stubOrders{getFn: func(context.Context, string) (*domain.Order, error) {
		return &domain.Order{
			ID:             "ORD-2",
			DeliveryMethod: domain.DeliveryExpress,
			DeliveryFee:    decimal.NewFromInt(120),
			CourierJobs: []domain.CourierJob{
				{JobID: "job-1", VendorID: "v-1", Status: "new", PaymentAmount: decimal.NewFromInt(120)},
			},
		}, nil
	}}

	rr := serveOrder(NewOrderHandler(nil, orders), "/orders/ORD-2")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"jobId":"job-1"`)
	assert.NotContains(t, rr.Body.String(), `"courierJobs":null`)
}
