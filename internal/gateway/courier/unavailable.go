package courier

import (
	"context"

	"marketplace-delivery/internal/domain"
)

const reasonNotConfigured = "courier provider not configured"

// Unavailable stands in for the provider when no credentials are configured.
// Every call fails as a transport error, so checkout falls back to standard delivery.
type Unavailable struct{}

// QuotePrice always fails.
func (Unavailable) QuotePrice(context.Context, JobRequest) (domain.Quote, error) {
	return domain.Quote{}, transportErr(OpQuote, reasonNotConfigured, nil, nil)
}

// CreateJob always fails.
func (Unavailable) CreateJob(context.Context, JobRequest) (domain.CourierJob, error) {
	return domain.CourierJob{}, transportErr(OpCreate, reasonNotConfigured, nil, nil)
}

// GetStatus always fails.
func (Unavailable) GetStatus(context.Context, string) (domain.JobStatus, error) {
	return domain.JobStatus{}, transportErr(OpStatus, reasonNotConfigured, nil, nil)
}

// Cancel always fails.
func (Unavailable) Cancel(context.Context, string) (domain.CancelAck, error) {
	return domain.CancelAck{}, transportErr(OpCancel, reasonNotConfigured, nil, nil)
}
