//go:generate mockgen -source=contracts.go -destination=fulfillment_mocks_test.go -package=fulfillment

package fulfillment

import (
	"context"

	"marketplace-delivery/internal/domain"
	"marketplace-delivery/internal/gateway/courier"
)

type courierGateway interface {
	QuotePrice(ctx context.Context, req courier.JobRequest) (domain.Quote, error)
	CreateJob(ctx context.Context, req courier.JobRequest) (domain.CourierJob, error)
	Cancel(ctx context.Context, jobID string) (domain.CancelAck, error)
}

type orderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
}

// IDGenerator issues order and transaction identifiers.
type IDGenerator interface {
	OrderID() string
	TransactionID() string
}
