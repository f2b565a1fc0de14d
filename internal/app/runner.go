package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"marketplace-delivery/internal/logx"
)

const shutdownTimeout = 15 * time.Second

// MustRun starts the HTTP server using the provided DI container
func MustRun(container *dig.Container) {
	if err := run(container); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			log.Println("shutdown requested, exiting")
			return
		case errors.Is(err, context.DeadlineExceeded):
			log.Println("startup aborted: startup timeout exceeded")
			return
		default:
			log.Fatalf("run error: %v", err)
		}
	}
}

func run(container *dig.Container) error {
	return container.Invoke(serve)
}

func serve(ctx context.Context, server *http.Server, pool *pgxpool.Pool, logger logx.Logger, closeCache cacheCloser) error {
	if err := migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("service-fulfillment listening", logx.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down service-fulfillment")
	case err := <-errCh:
		runErr = fmt.Errorf("listen: %w", err)
	}

	gracefulShutdown(server, logger, shutdownTimeout)
	closeResources(pool, closeCache, logger)
	return runErr
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error("graceful shutdown error", logx.Err(err))
		if err := srv.Close(); err != nil {
			logger.Error("server close error", logx.Err(err))
		}
	}
}

func closeResources(pool *pgxpool.Pool, closeCache cacheCloser, logger logx.Logger) {
	if closeCache != nil {
		if err := closeCache(); err != nil {
			logger.Error("redis close error", logx.Err(err))
		}
	}
	if pool != nil {
		pool.Close()
	}
	_ = logger.Sync()
}
