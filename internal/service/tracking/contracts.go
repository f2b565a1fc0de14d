package tracking

import (
	"context"
	"time"

	"marketplace-delivery/internal/domain"
)

type statusReader interface {
	GetStatus(ctx context.Context, jobID string) (domain.JobStatus, error)
}

type courierGateway interface {
	statusReader
	Cancel(ctx context.Context, jobID string) (domain.CancelAck, error)
}

type jobRepository interface {
	UpdateJobStatus(ctx context.Context, jobID, status, description string, at time.Time) (bool, error)
	ListOpenJobs(ctx context.Context, limit int) ([]domain.CourierJob, error)
	MarkChecked(ctx context.Context, jobIDs []string, at time.Time) error
}

type statusCache interface {
	Get(ctx context.Context, jobID string) (domain.JobStatus, bool, error)
	Set(ctx context.Context, st domain.JobStatus) error
	Delete(ctx context.Context, jobID string) error
}
