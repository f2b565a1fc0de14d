// Package jobs holds scheduled background tasks.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"marketplace-delivery/internal/logx"
	"marketplace-delivery/internal/service/tracking"
)

const (
	defaultInterval = time.Minute
	defaultTimeout  = 30 * time.Second
)

type reconciler interface {
	Reconcile(ctx context.Context) (tracking.ReconcileStats, error)
}

// ReconcileJob periodically refreshes the persisted status of open courier jobs.
// A run that is still going when the next tick fires makes that tick a no-op.
type ReconcileJob struct {
	r        reconciler
	cron     *cron.Cron
	interval time.Duration
	timeout  time.Duration
	logger   logx.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewReconcileJob creates a job running every interval, each run bounded by timeout.
func NewReconcileJob(r reconciler, interval, timeout time.Duration, logger logx.Logger) *ReconcileJob {
	if interval <= 0 {
		interval = defaultInterval
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &ReconcileJob{
		r:        r,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		interval: interval,
		timeout:  timeout,
		logger:   logger.With(logx.String("component", "reconcile_job")),
		ctx:      context.Background(),
	}
}

// Start schedules the job. Runs are canceled when ctx is done or Stop is called.
func (j *ReconcileJob) Start(ctx context.Context) error {
	j.mu.Lock()
	j.ctx, j.cancel = context.WithCancel(ctx)
	j.mu.Unlock()

	if _, err := j.cron.AddFunc(fmt.Sprintf("@every %s", j.interval), j.RunOnce); err != nil {
		return fmt.Errorf("schedule reconcile: %w", err)
	}
	j.cron.Start()
	j.logger.Info("reconcile job started", logx.Duration("interval", j.interval))
	return nil
}

// RunOnce performs a single reconcile pass.
func (j *ReconcileJob) RunOnce() {
	j.mu.Lock()
	base := j.ctx
	j.mu.Unlock()

	ctx, cancel := context.WithTimeout(base, j.timeout)
	defer cancel()

	start := time.Now()
	stats, err := j.r.Reconcile(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		j.logger.Error("reconcile failed", logx.Err(err))
		return
	}
	j.logger.Info("reconcile finished",
		logx.Int("checked", stats.Checked),
		logx.Int("updated", stats.Updated),
		logx.Int("unchanged", stats.Unchanged),
		logx.Int("failed", stats.Failed),
		logx.Duration("took", time.Since(start)),
	)
}

// Stop stops scheduling, cancels a running pass and waits for it to return.
func (j *ReconcileJob) Stop() {
	j.mu.Lock()
	if j.cancel != nil {
		j.cancel()
	}
	j.mu.Unlock()

	<-j.cron.Stop().Done()
	j.logger.Info("reconcile job stopped")
}
