package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"marketplace-delivery/internal/logx"
)

// OrderHandler serves persisted orders.
type OrderHandler struct {
	orders orderReader
	logger logx.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(logger logx.Logger, orders orderReader) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// GetByID handles GET /orders/{id}.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	o, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(*o))
}
