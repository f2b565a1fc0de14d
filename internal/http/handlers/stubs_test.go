package handlers

import (
	"context"

	"marketplace-delivery/internal/domain"
	"marketplace-delivery/internal/service/fulfillment"
	"marketplace-delivery/internal/service/tracking"
)

type stubFulfillment struct {
	checkoutFn func(ctx context.Context, in fulfillment.CheckoutInput) (fulfillment.CheckoutResult, error)
	quoteFn    func(ctx context.Context, in fulfillment.QuoteInput) (fulfillment.QuoteResult, error)
	createFn   func(ctx context.Context, in fulfillment.JobInput) (domain.CourierJob, error)
}

func (s *stubFulfillment) Checkout(ctx context.Context, in fulfillment.CheckoutInput) (fulfillment.CheckoutResult, error) {
	if s.checkoutFn == nil {
		panic("Checkout not expected in this test")
	}
	return s.checkoutFn(ctx, in)
}

func (s *stubFulfillment) Quote(ctx context.Context, in fulfillment.QuoteInput) (fulfillment.QuoteResult, error) {
	if s.quoteFn == nil {
		panic("Quote not expected in this test")
	}
	return s.quoteFn(ctx, in)
}

func (s *stubFulfillment) CreateJob(ctx context.Context, in fulfillment.JobInput) (domain.CourierJob, error) {
	if s.createFn == nil {
		panic("CreateJob not expected in this test")
	}
	return s.createFn(ctx, in)
}

type stubTracking struct {
	trackFn  func(ctx context.Context, jobID string) (domain.JobStatus, error)
	watchFn  func(ctx context.Context, jobID string, emit func(tracking.View)) error
	cancelFn func(ctx context.Context, jobID string) (domain.CancelAck, error)
}

func (s *stubTracking) Track(ctx context.Context, jobID string) (domain.JobStatus, error) {
	if s.trackFn == nil {
		panic("Track not expected in this test")
	}
	return s.trackFn(ctx, jobID)
}

func (s *stubTracking) Watch(ctx context.Context, jobID string, emit func(tracking.View)) error {
	if s.watchFn == nil {
		panic("Watch not expected in this test")
	}
	return s.watchFn(ctx, jobID, emit)
}

func (s *stubTracking) Cancel(ctx context.Context, jobID string) (domain.CancelAck, error) {
	if s.cancelFn == nil {
		panic("Cancel not expected in this test")
	}
	return s.cancelFn(ctx, jobID)
}

type stubOrders struct {
	getFn func(ctx context.Context, id string) (*domain.Order, error)
}

func (s *stubOrders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return s.getFn(ctx, id)
}
