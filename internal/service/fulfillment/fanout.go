package fulfillment

import (
	"context"

	"golang.org/x/sync/errgroup"

	"marketplace-delivery/internal/formatter"
	"marketplace-delivery/internal/gateway/courier"
)

// outcome is the result of one provider call for one vendor group.
type outcome[T any] struct {
	vendorID string
	value    T
	err      error
}

// fanOut calls fn for every request with at most limit calls in flight.
// Results keep the order of reqs; errors stay inside their outcome.
func fanOut[T any](ctx context.Context, limit int, reqs []formatter.VendorRequest,
	fn func(context.Context, courier.JobRequest) (T, error),
) []outcome[T] {
	out := make([]outcome[T], len(reqs))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, r := range reqs {
		g.Go(func() error {
			v, err := fn(ctx, r.Body)
			out[i] = outcome[T]{vendorID: r.VendorID, value: v, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return out
}
