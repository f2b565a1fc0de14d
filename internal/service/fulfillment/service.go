// Package fulfillment decides how a checkout is delivered and commits the order.
package fulfillment

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"marketplace-delivery/internal/formatter"
	"marketplace-delivery/internal/geo"
	"marketplace-delivery/internal/logx"
)

// State is a checkout lifecycle state.
type State string

// Checkout states.
const (
	StateEvaluating        State = "evaluating"
	StateExpressAttempted  State = "express_attempted"
	StateExpressCommitted  State = "express_committed"
	StateExpressFailed     State = "express_failed"
	StateStandardCommitted State = "standard_committed"
)

const (
	defaultMaxConcurrency  = 4
	defaultExpressMinutes  = 60
	defaultStandardMinutes = 48 * 60
	defaultSaveTimeout     = 5 * time.Second
)

var defaultStandardFee = decimal.NewFromInt(15)

// Config holds fulfillment policy.
type Config struct {
	NearbyRadiusKm  float64
	StandardFee     decimal.Decimal
	MaxConcurrency  int
	ExpressMinutes  int
	StandardMinutes int
	SaveTimeout     time.Duration
}

func (c Config) withDefaults() Config {
	if c.NearbyRadiusKm <= 0 {
		c.NearbyRadiusKm = geo.DefaultMaxKm
	}
	if !c.StandardFee.IsPositive() {
		c.StandardFee = defaultStandardFee
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = defaultMaxConcurrency
	}
	if c.ExpressMinutes <= 0 {
		c.ExpressMinutes = defaultExpressMinutes
	}
	if c.StandardMinutes <= 0 {
		c.StandardMinutes = defaultStandardMinutes
	}
	if c.SaveTimeout <= 0 {
		c.SaveTimeout = defaultSaveTimeout
	}
	return c
}

// Service is the fulfillment orchestrator.
type Service struct {
	gw        courierGateway
	repo      orderRepository
	formatter *formatter.Formatter
	ids       IDGenerator
	cfg       Config
	logger    logx.Logger
	now       func() time.Time

	checkouts *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator replaces the random id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Service) {
		if g != nil {
			s.ids = g
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

// WithMetrics records committed checkouts and vendor fallbacks.
func WithMetrics(checkouts, fallbacks *prometheus.CounterVec) Option {
	return func(s *Service) {
		s.checkouts = checkouts
		s.fallbacks = fallbacks
	}
}

// NewService creates a fulfillment Service.
func NewService(gw courierGateway, repo orderRepository, f *formatter.Formatter, cfg Config, logger logx.Logger, opts ...Option) *Service {
	if f == nil {
		f = formatter.New(formatter.Config{})
	}
	if logger == nil {
		logger = logx.Nop()
	}
	s := &Service{
		gw:        gw,
		repo:      repo,
		formatter: f,
		ids:       NewIDGenerator(),
		cfg:       cfg.withDefaults(),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
