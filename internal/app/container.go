package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"marketplace-delivery/internal/cache"
	"marketplace-delivery/internal/config"
	"marketplace-delivery/internal/domain"
	"marketplace-delivery/internal/formatter"
	"marketplace-delivery/internal/gateway/courier"
	"marketplace-delivery/internal/http/handlers"
	"marketplace-delivery/internal/http/router"
	"marketplace-delivery/internal/jobs"
	"marketplace-delivery/internal/logx"
	"marketplace-delivery/internal/repository"
	"marketplace-delivery/internal/service/fulfillment"
	"marketplace-delivery/internal/service/tracking"
	"marketplace-delivery/internal/transport/kafka"
)

type dbConnectFunc func(context.Context, logx.Logger, config.DB, int, time.Duration) (*pgxpool.Pool, error)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect  dbConnectFunc
	loadConfig func() (*config.Config, error)
	logFatalf  func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect:  connectDbWithRetry,
		loadConfig: config.Load,
		logFatalf:  log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(fn dbConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithConfigLoader replaces config.Load
func (b *ContainerBuilder) WithConfigLoader(fn func() (*config.Config, error)) *ContainerBuilder {
	if fn != nil {
		b.loadConfig = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds the HTTP service container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

// MustBuildWorker builds the background worker container
func (b *ContainerBuilder) MustBuildWorker(ctx context.Context) *dig.Container {
	container, err := b.buildWorker(ctx)
	if err != nil {
		b.logFatalf("failed to build worker container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) base(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx, b.loadConfig); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerGateway(container); err != nil {
		return nil, fmt.Errorf("gateway: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	return container, nil
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container, err := b.base(ctx)
	if err != nil {
		return nil, err
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

func (b *ContainerBuilder) buildWorker(ctx context.Context) (*dig.Container, error) {
	container, err := b.base(ctx)
	if err != nil {
		return nil, err
	}
	if err := registerWorker(container); err != nil {
		return nil, fmt.Errorf("worker: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds the HTTP service container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

// MustBuildWorkerContainer builds the background worker container
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuildWorker(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context, load func() (*config.Config, error)) error {
	return provideAll(container,
		func() context.Context { return ctx },
		load,
		NewLogger,
		NewMetrics,
	)
}

func registerDb(container *dig.Container, dbConnect dbConnectFunc) error {
	providerDB := func(ctx context.Context, logger logx.Logger, cfg *config.Config) (*pgxpool.Pool, error) {
		return dbConnect(ctx, logger, cfg.DB, 10, time.Second)
	}
	return provideAll(container, providerDB)
}

// courierAPI is the full provider surface; fulfillment and tracking each use a part of it.
type courierAPI interface {
	QuotePrice(ctx context.Context, req courier.JobRequest) (domain.Quote, error)
	CreateJob(ctx context.Context, req courier.JobRequest) (domain.CourierJob, error)
	GetStatus(ctx context.Context, jobID string) (domain.JobStatus, error)
	Cancel(ctx context.Context, jobID string) (domain.CancelAck, error)
}

func newCourierAPI(cfg *config.Config, m *Metrics, logger logx.Logger) (courierAPI, error) {
	if !cfg.Courier.Enabled() {
		logger.Warn("courier provider not configured, express delivery disabled")
		return courier.Unavailable{}, nil
	}
	return courier.NewClient(courier.Config{
		BaseURL:    cfg.Courier.BaseURL,
		Token:      cfg.Courier.Token,
		AuthHeader: cfg.Courier.AuthHeader,
		Timeout:    cfg.Courier.Timeout,
	}, courier.WithRequestCounter(m.CourierRequests))
}

func newRetryingGateway(api courierAPI, cfg *config.Config, m *Metrics, logger logx.Logger) *courier.RetryingGateway {
	return courier.NewRetryingGateway(api, logger, m.GatewayRetries, courier.RetryConfig{
		MaxAttempts: cfg.Courier.RetryMaxAttempts,
		BaseDelay:   cfg.Courier.RetryBaseDelay,
		MaxDelay:    cfg.Courier.RetryMaxDelay,
	})
}

func registerGateway(container *dig.Container) error {
	return provideAll(container,
		newCourierAPI,
		newRetryingGateway,
	)
}

type statusCache interface {
	Get(ctx context.Context, jobID string) (domain.JobStatus, bool, error)
	Set(ctx context.Context, st domain.JobStatus) error
	Delete(ctx context.Context, jobID string) error
}

type cacheCloser func() error

func newStatusCache(cfg *config.Config, logger logx.Logger) (statusCache, cacheCloser) {
	if cfg.Redis.Addr == "" {
		logger.Info("redis not configured, status cache disabled")
		return cache.Nop{}, func() error { return nil }
	}
	client := cache.NewRedisClient(cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return cache.NewStatusCache(client, cfg.Tracking.StatusTTL), client.Close
}

func newFormatter(cfg *config.Config) *formatter.Formatter {
	return formatter.New(formatter.Config{
		Type:                       cfg.Courier.JobType,
		VehicleTypeID:              cfg.Courier.VehicleTypeID,
		ClientNotifications:        cfg.Courier.ClientNotifications,
		ContactPersonNotifications: cfg.Courier.ContactNotifications,
	})
}

func newFulfillmentService(
	api courierAPI,
	repo *repository.OrderRepo,
	f *formatter.Formatter,
	cfg *config.Config,
	m *Metrics,
	logger logx.Logger,
) *fulfillment.Service {
	return fulfillment.NewService(api, repo, f, fulfillment.Config{
		NearbyRadiusKm:  cfg.Fulfillment.NearbyRadiusKm,
		StandardFee:     cfg.Fulfillment.StandardFee,
		MaxConcurrency:  cfg.Courier.MaxConcurrency,
		ExpressMinutes:  cfg.Fulfillment.ExpressMinutes,
		StandardMinutes: cfg.Fulfillment.StandardMinutes,
	}, logger.With(logx.String("component", "fulfillment")),
		fulfillment.WithMetrics(m.Checkouts, m.Fallbacks),
	)
}

func newTrackingService(
	api courierAPI,
	retrying *courier.RetryingGateway,
	repo *repository.OrderRepo,
	sc statusCache,
	cfg *config.Config,
	logger logx.Logger,
) *tracking.Service {
	return tracking.NewService(api, repo, sc, logger.With(logx.String("component", "tracking")),
		tracking.WithReconcileReader(retrying),
		tracking.WithBatchSize(cfg.Tracking.ReconcileBatch),
	)
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		repository.NewOrderRepo,
		newStatusCache,
		newFormatter,
		newFulfillmentService,
		newTrackingService,
	)
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	orderHandler := func(logger logx.Logger, repo *repository.OrderRepo) *handlers.OrderHandler {
		return handlers.NewOrderHandler(logger, repo)
	}
	routerProvider := func(
		base *handlers.Handlers,
		co *handlers.CheckoutHandler,
		del *handlers.DeliveryHandler,
		ord *handlers.OrderHandler,
		m *Metrics,
		logger logx.Logger,
	) http.Handler {
		return router.New(router.Deps{
			Base:     base,
			Checkout: co,
			Delivery: del,
			Orders:   ord,
			Metrics:  m.HTTP,
			Gatherer: m.Registry,
			Logger:   logger,
		})
	}
	return provideAll(container,
		handlers.New,
		handlers.NewFulfillmentUsecase,
		handlers.NewTrackingUsecase,
		handlers.NewCheckoutHandler,
		handlers.NewDeliveryHandler,
		orderHandler,
		routerProvider,
		serverProvider,
	)
}

func registerWorker(container *dig.Container) error {
	consumerProvider := func(cfg *config.Config, svc *tracking.Service, m *Metrics, logger logx.Logger) (*kafka.Consumer, error) {
		return kafka.NewConsumer(kafka.Config{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.GroupID,
			Topic:   cfg.Kafka.Topic,
		}, makeStatusKafka(svc), logger.With(logx.String("component", "kafka")), m.StatusEvents)
	}
	jobProvider := func(cfg *config.Config, svc *tracking.Service, logger logx.Logger) *jobs.ReconcileJob {
		return jobs.NewReconcileJob(svc, cfg.Tracking.ReconcileInterval, cfg.Tracking.ReconcileTimeout, logger)
	}
	return provideAll(container,
		consumerProvider,
		jobProvider,
	)
}
