package main

import (
	"context"
	"os/signal"
	"syscall"

	"marketplace-delivery/internal/app"
)

// worker consumes courier status events and periodically reconciles open jobs.
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	container := app.MustBuildWorkerContainer(ctx)
	app.NewWorkerRunner().MustRun(container)
}
