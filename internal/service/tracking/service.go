// Package tracking follows courier jobs after checkout.
package tracking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marketplace-delivery/internal/apperr"
	"marketplace-delivery/internal/domain"
	"marketplace-delivery/internal/logx"
)

const defaultBatchSize = 100

// Service serves live job status and keeps persisted job status current.
type Service struct {
	gw        courierGateway
	reconcile statusReader
	repo      jobRepository
	cache     statusCache
	logger    logx.Logger
	now       func() time.Time
	batchSize int
	pollOpts  []PollerOption
}

// Option configures a Service.
type Option func(*Service)

// WithReconcileReader sets the status reader used by Reconcile, typically a retrying gateway.
func WithReconcileReader(r statusReader) Option {
	return func(s *Service) {
		if r != nil {
			s.reconcile = r
		}
	}
}

// WithBatchSize limits how many open jobs one Reconcile run refreshes.
func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPollerOptions applies opts to every poller started by Watch.
func WithPollerOptions(opts ...PollerOption) Option {
	return func(s *Service) { s.pollOpts = append(s.pollOpts, opts...) }
}

// NewService creates a tracking Service. A nil cache disables caching.
func NewService(gw courierGateway, repo jobRepository, cache statusCache, logger logx.Logger, opts ...Option) *Service {
	if cache == nil {
		cache = noCache{}
	}
	if logger == nil {
		logger = logx.Nop()
	}
	s := &Service{
		gw:        gw,
		reconcile: gw,
		repo:      repo,
		cache:     cache,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Track returns the live status of a job, served from cache when fresh.
func (s *Service) Track(ctx context.Context, jobID string) (domain.JobStatus, error) {
	jobID, err := validateJobID(jobID)
	if err != nil {
		return domain.JobStatus{}, err
	}

	if st, ok, err := s.cache.Get(ctx, jobID); err != nil {
		s.logger.Warn("status cache read failed", logx.String("job_id", jobID), logx.Err(err))
	} else if ok {
		return st, nil
	}

	st, err := s.gw.GetStatus(ctx, jobID)
	if err != nil {
		return domain.JobStatus{}, err
	}

	if err := s.cache.Set(ctx, st); err != nil {
		s.logger.Warn("status cache write failed", logx.String("job_id", jobID), logx.Err(err))
	}
	s.store(ctx, jobID, st.Status, st.StatusDescription)

	return st, nil
}

// Watch streams views of a job to emit until it reaches a terminal status or ctx is done.
func (s *Service) Watch(ctx context.Context, jobID string, emit func(View)) error {
	jobID, err := validateJobID(jobID)
	if err != nil {
		return err
	}
	return NewPoller(s.gw, s.pollOpts...).Run(ctx, jobID, func(v View) {
		if v.Err == nil && v.Status != nil {
			s.store(ctx, jobID, v.Status.Status, v.Status.StatusDescription)
		}
		emit(v)
	})
}

// Cancel cancels a job with the provider and records the new status.
func (s *Service) Cancel(ctx context.Context, jobID string) (domain.CancelAck, error) {
	jobID, err := validateJobID(jobID)
	if err != nil {
		return domain.CancelAck{}, err
	}

	ack, err := s.gw.Cancel(ctx, jobID)
	if err != nil {
		return domain.CancelAck{}, err
	}

	s.store(ctx, jobID, ack.Status, "canceled on request")
	s.invalidate(ctx, jobID)

	s.logger.Info("courier job canceled",
		logx.String("event", "courier_job_canceled"),
		logx.String("job_id", jobID),
		logx.String("status", ack.Status),
	)
	return ack, nil
}

// ApplyStatus records an asynchronous status update. An unknown job yields apperr.ErrNotFound.
func (s *Service) ApplyStatus(ctx context.Context, u domain.StatusUpdate) error {
	jobID, err := validateJobID(u.JobID)
	if err != nil {
		return err
	}
	status := strings.TrimSpace(u.Status)
	if status == "" {
		return fmt.Errorf("%w: status is required", apperr.ErrInvalid)
	}
	at := u.OccurredAt
	if at.IsZero() {
		at = s.now()
	}

	ok, err := s.repo.UpdateJobStatus(ctx, jobID, status, u.StatusDescription, at)
	if err != nil {
		return fmt.Errorf("apply status of job %s: %w", jobID, err)
	}
	if !ok {
		return fmt.Errorf("%w: courier job %s", apperr.ErrNotFound, jobID)
	}
	s.invalidate(ctx, jobID)

	s.logger.Info("courier status applied",
		logx.String("event", "courier_status_applied"),
		logx.String("job_id", jobID),
		logx.String("status", status),
	)
	return nil
}

// ReconcileStats summarises one Reconcile run.
type ReconcileStats struct {
	Checked   int
	Updated   int
	Unchanged int
	Failed    int
}

// Reconcile refreshes the persisted status of non-terminal jobs. Per-job
// failures are logged and skipped. Every attempted job is marked checked so
// the next run moves on to the rest of the queue.
func (s *Service) Reconcile(ctx context.Context) (ReconcileStats, error) {
	var stats ReconcileStats

	jobs, err := s.repo.ListOpenJobs(ctx, s.batchSize)
	if err != nil {
		return stats, fmt.Errorf("list open jobs: %w", err)
	}

	checked := make([]string, 0, len(jobs))
	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		stats.Checked++
		checked = append(checked, job.JobID)

		st, err := s.reconcile.GetStatus(ctx, job.JobID)
		if err != nil {
			stats.Failed++
			s.logger.Warn("reconcile status failed", logx.String("job_id", job.JobID), logx.Err(err))
			continue
		}
		if st.Status == job.Status && st.StatusDescription == job.StatusDescription {
			stats.Unchanged++
			continue
		}

		if _, err := s.repo.UpdateJobStatus(ctx, job.JobID, st.Status, st.StatusDescription, s.now()); err != nil {
			stats.Failed++
			s.logger.Warn("reconcile update failed", logx.String("job_id", job.JobID), logx.Err(err))
			continue
		}
		stats.Updated++
		s.invalidate(ctx, job.JobID)
	}

	// отметку ставим и при отмене контекста, иначе следующий запуск начнёт с тех же работ
	if err := s.repo.MarkChecked(context.WithoutCancel(ctx), checked, s.now()); err != nil {
		return stats, fmt.Errorf("mark jobs checked: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

// store refreshes the persisted status; failures are logged only.
func (s *Service) store(ctx context.Context, jobID, status, description string) {
	if status == "" {
		return
	}
	ok, err := s.repo.UpdateJobStatus(ctx, jobID, status, description, s.now())
	switch {
	case err != nil:
		s.logger.Warn("persist job status failed", logx.String("job_id", jobID), logx.Err(err))
	case !ok:
		s.logger.Debug("job status not persisted, unknown job", logx.String("job_id", jobID))
	}
}

func (s *Service) invalidate(ctx context.Context, jobID string) {
	if err := s.cache.Delete(ctx, jobID); err != nil {
		s.logger.Warn("status cache delete failed", logx.String("job_id", jobID), logx.Err(err))
	}
}

func validateJobID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", fmt.Errorf("%w: jobId is required", apperr.ErrInvalid)
	}
	return id, nil
}

type noCache struct{}

func (noCache) Get(context.Context, string) (domain.JobStatus, bool, error) {
	return domain.JobStatus{}, false, nil
}
func (noCache) Set(context.Context, domain.JobStatus) error { return nil }
func (noCache) Delete(context.Context, string) error        { return nil }
