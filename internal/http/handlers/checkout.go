package handlers

import (
	"net/http"

	"marketplace-delivery/internal/logx"
)

// CheckoutHandler serves POST /checkout.
type CheckoutHandler struct {
	usecase fulfillmentUsecase
	logger  logx.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(logger logx.Logger, uc fulfillmentUsecase) *CheckoutHandler {
	return &CheckoutHandler{usecase: uc, logger: logger}
}

// Checkout handles POST /checkout.
// @Summary Оформить заказ
// @Description Решает express/standard, создаёт курьерские задания и сохраняет заказ
// @Tags checkout
// @Accept json
// @Produce json
// @Success 200 {object} checkoutResponse
// @Failure 400 {object} ErrorResponse "invalid input"
// @Failure 500 {object} ErrorResponse "order could not be saved"
// @Router /checkout [post]
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	res, err := h.usecase.Checkout(r.Context(), req.toCheckout())
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, checkoutToResponse(res))
}
