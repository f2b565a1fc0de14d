package courier

import (
	"context"
	"errors"
	"time"

	"marketplace-delivery/internal/domain"
	"marketplace-delivery/internal/logx"
)

type statusGateway interface {
	GetStatus(ctx context.Context, jobID string) (domain.JobStatus, error)
}

type counter interface {
	Inc()
}

// RetryConfig describes the behaviour of RetryingGateway.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingGateway retries status reads on transport failures.
// Only the idempotent GetStatus is decorated; job creation is never retried here.
type RetryingGateway struct {
	next    statusGateway
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
	sleep   func(context.Context, time.Duration) bool
}

// NewRetryingGateway returns nil when next is nil.
func NewRetryingGateway(next statusGateway, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingGateway {
	if next == nil {
		return nil
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &RetryingGateway{next: next, logger: logger, retries: retries, cfg: cfg, sleep: sleepWithContext}
}

// GetStatus calls next until success, a non-retryable error or MaxAttempts.
func (g *RetryingGateway) GetStatus(ctx context.Context, jobID string) (domain.JobStatus, error) {
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		st, err := g.next.GetStatus(ctx, jobID)
		if err == nil {
			return st, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == g.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(g.cfg.BaseDelay, g.cfg.MaxDelay, attempt)
		if g.retries != nil {
			g.retries.Inc()
		}
		g.logger.Warn("courier gateway retry",
			logx.String("method", "GetStatus"),
			logx.String("job_id", jobID),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
		if !g.sleep(ctx, delay) {
			break
		}
	}
	return domain.JobStatus{}, lastErr
}

// isRetryable: only transport failures; a rejection will not change on retry.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	ce, ok := AsCourierError(err)
	return ok && ce.Kind == KindTransport
}

func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max || d < 0 {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
