package app

import (
	"context"
	"errors"

	"marketplace-delivery/internal/apperr"
	"marketplace-delivery/internal/domain"
	"marketplace-delivery/internal/transport/kafka"
)

type statusApplier interface {
	ApplyStatus(ctx context.Context, u domain.StatusUpdate) error
}

// makeStatusKafka adapts the tracking service to the consumer. Events for
// unknown jobs or with bad payloads never succeed on redelivery, so they are
// marked permanent and skipped.
func makeStatusKafka(svc statusApplier) kafka.HandleFunc {
	return func(ctx context.Context, u domain.StatusUpdate) error {
		err := svc.ApplyStatus(ctx, u)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrInvalid):
			return kafka.Permanent(err)
		default:
			return err
		}
	}
}
