package handlers

import (
	"context"

	"marketplace-delivery/internal/domain"
	"marketplace-delivery/internal/service/fulfillment"
	"marketplace-delivery/internal/service/tracking"
)

type fulfillmentUsecase interface {
	Checkout(ctx context.Context, in fulfillment.CheckoutInput) (fulfillment.CheckoutResult, error)
	Quote(ctx context.Context, in fulfillment.QuoteInput) (fulfillment.QuoteResult, error)
	CreateJob(ctx context.Context, in fulfillment.JobInput) (domain.CourierJob, error)
}

// NewFulfillmentUsecase wires a fulfillment Service into a fulfillmentUsecase.
func NewFulfillmentUsecase(svc *fulfillment.Service) fulfillmentUsecase {
	return svc
}

type trackingUsecase interface {
	Track(ctx context.Context, jobID string) (domain.JobStatus, error)
	Watch(ctx context.Context, jobID string, emit func(tracking.View)) error
	Cancel(ctx context.Context, jobID string) (domain.CancelAck, error)
}

// NewTrackingUsecase wires a tracking Service into a trackingUsecase.
func NewTrackingUsecase(svc *tracking.Service) trackingUsecase {
	return svc
}

type orderReader interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}
