package kafka

import (
	"strings"
	"time"

	"marketplace-delivery/internal/domain"
)

// StatusEventDTO is the wire form of a courier status event.
type StatusEventDTO struct {
	JobID             string    `json:"job_id"`
	Status            string    `json:"status"`
	StatusDescription string    `json:"status_description"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// ToDomain converts StatusEventDTO to domain.StatusUpdate.
func ToDomain(dto StatusEventDTO) domain.StatusUpdate {
	return domain.StatusUpdate{
		JobID:             strings.TrimSpace(dto.JobID),
		Status:            strings.TrimSpace(dto.Status),
		StatusDescription: strings.TrimSpace(dto.StatusDescription),
		OccurredAt:        dto.OccurredAt,
	}
}
