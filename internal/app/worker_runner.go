package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"marketplace-delivery/internal/jobs"
	"marketplace-delivery/internal/logx"
	"marketplace-delivery/internal/transport/kafka"
)

// WorkerRunner runs the status consumer and the reconcile job
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun runs the worker until its context is done
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(
	ctx context.Context,
	pool *pgxpool.Pool,
	logger logx.Logger,
	consumer *kafka.Consumer,
	job *jobs.ReconcileJob,
	closeCache cacheCloser,
) error {
	if job == nil {
		return fmt.Errorf("reconcile job is nil: worker container misconfigured")
	}
	if err := migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer closeWorker(pool, logger, consumer, closeCache)

	if err := job.Start(ctx); err != nil {
		return err
	}
	defer job.Stop()

	logger.Info("service-fulfillment-worker started", logx.Bool("kafka", consumer != nil))
	if consumer == nil {
		// без кафки остаётся только reconcile
		<-ctx.Done()
		return ctx.Err()
	}
	return consumer.Run(ctx)
}

func closeWorker(pool *pgxpool.Pool, logger logx.Logger, consumer *kafka.Consumer, closeCache cacheCloser) {
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("kafka close error", logx.Err(err))
		}
	}
	closeResources(pool, closeCache, logger)
}
