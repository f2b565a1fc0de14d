package tracking

import (
	"context"
	"time"

	"marketplace-delivery/internal/domain"
)

// Polling cadence.
const (
	ActiveInterval = 15 * time.Second
	IdleInterval   = 30 * time.Second
)

// View is what a tracking screen shows after a poll.
type View struct {
	// Status is the last successfully fetched status, nil until the first success.
	Status *domain.JobStatus
	// Err is the error of the latest poll, if any.
	Err  error
	Next time.Duration
	Done bool
}

// NextInterval returns the delay before the next poll and whether polling is over.
func NextInterval(st *domain.JobStatus) (time.Duration, bool) {
	switch {
	case st == nil:
		return IdleInterval, false
	case st.Terminal():
		return 0, true
	case st.Active():
		return ActiveInterval, false
	default:
		return IdleInterval, false
	}
}

// Poller polls one job. Each view gets its own Poller.
type Poller struct {
	gw    statusReader
	after func(time.Duration) <-chan time.Time
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithAfter replaces time.After, used by tests.
func WithAfter(after func(time.Duration) <-chan time.Time) PollerOption {
	return func(p *Poller) {
		if after != nil {
			p.after = after
		}
	}
}

// NewPoller creates a Poller reading through gw.
func NewPoller(gw statusReader, opts ...PollerOption) *Poller {
	p := &Poller{gw: gw, after: time.After}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls jobID until a terminal status or ctx is done. A failed poll keeps
// the last good status and reports the error next to it.
func (p *Poller) Run(ctx context.Context, jobID string, emit func(View)) error {
	var last *domain.JobStatus
	for {
		st, err := p.gw.GetStatus(ctx, jobID)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			last = &st
		}

		next, done := NextInterval(last)
		emit(View{Status: last, Err: err, Next: next, Done: done})
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.after(next):
		}
	}
}
