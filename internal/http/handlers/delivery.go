package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"marketplace-delivery/internal/logx"
	"marketplace-delivery/internal/service/tracking"
)

// DeliveryHandler handles quote, job creation, tracking and cancellation.
type DeliveryHandler struct {
	fulfillment fulfillmentUsecase
	tracking    trackingUsecase
	logger      logx.Logger
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(logger logx.Logger, f fulfillmentUsecase, t trackingUsecase) *DeliveryHandler {
	return &DeliveryHandler{fulfillment: f, tracking: t, logger: logger}
}

// Quote handles POST /delivery/quote. Ineligible orders get the flat fee, not an error.
func (h *DeliveryHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	q, err := h.fulfillment.Quote(r.Context(), req.toQuote())
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, quoteToResponse(q))
}

// Create handles POST /delivery/create. Provider errors surface as 422 or 502.
func (h *DeliveryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	job, err := h.fulfillment.CreateJob(r.Context(), req.toJob())
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, createJobResponse{
		Success:           true,
		CourierJobDetails: jobToResponse(job),
	})
}

// Track handles GET /delivery/track?jobId=.
func (h *DeliveryHandler) Track(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.jobIDFromQuery(w, r)
	if !ok {
		return
	}

	st, err := h.tracking.Track(r.Context(), jobID)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, trackResponse{Success: true, JobStatus: statusToResponse(st)})
}

// Stream handles GET /delivery/track/stream?jobId= as server-sent events.
// The stream ends when the job reaches a terminal status or the client leaves.
func (h *DeliveryHandler) Stream(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.jobIDFromQuery(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(h.logger, w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	// снимаем WriteTimeout сервера для долгого соединения
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	log := loggerOrNop(h.logger).With(
		logx.String("req_id", reqID(r.Context())),
		logx.String("job_id", jobID),
	)
	err := h.tracking.Watch(r.Context(), jobID, func(v tracking.View) {
		data, err := json.Marshal(viewToEvent(v))
		if err != nil {
			log.Error("sse encode failed", logx.Err(err))
			return
		}
		if _, err := fmt.Fprintf(w, "event: status\ndata: %s\n\n", data); err != nil {
			log.Debug("sse write failed", logx.Err(err))
			return
		}
		flusher.Flush()
	})
	if err != nil && r.Context().Err() == nil {
		log.Warn("tracking stream ended", logx.Err(err))
	}
}

// Cancel handles POST /delivery/cancel.
func (h *DeliveryHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	ack, err := h.tracking.Cancel(r.Context(), req.JobID)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, cancelResponse{Success: true, JobID: ack.JobID, Status: ack.Status})
}

func (h *DeliveryHandler) jobIDFromQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	jobID := strings.TrimSpace(r.URL.Query().Get("jobId"))
	if jobID == "" {
		writeError(h.logger, w, r, http.StatusBadRequest, "jobId is required")
		return "", false
	}
	return jobID, true
}
