package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

// Config stores service settings.
type Config struct {
	Port        int
	LogLevel    string
	DB          DB
	Courier     Courier
	Fulfillment Fulfillment
	Tracking    Tracking
	Kafka       Kafka
	Redis       Redis
}

// DB stores PostgreSQL settings.
type DB struct {
	Host     string
	Port     string
	User     string
	Pass     string
	Name     string
	MaxConns int
}

// DSN returns a pgx connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		d.User, d.Pass, net.JoinHostPort(d.Host, d.Port), d.Name)
}

// Courier stores courier provider settings.
type Courier struct {
	BaseURL              string
	Token                string
	AuthHeader           string
	Timeout              time.Duration
	JobType              string
	VehicleTypeID        int
	ClientNotifications  bool
	ContactNotifications bool
	MaxConcurrency       int
	RetryMaxAttempts     int
	RetryBaseDelay       time.Duration
	RetryMaxDelay        time.Duration
}

// Enabled reports whether provider credentials are configured.
func (c Courier) Enabled() bool {
	return strings.TrimSpace(c.BaseURL) != "" && strings.TrimSpace(c.Token) != ""
}

// Fulfillment stores checkout policy.
type Fulfillment struct {
	NearbyRadiusKm  float64
	StandardFee     decimal.Decimal
	ExpressMinutes  int
	StandardMinutes int
}

// Tracking stores status cache and reconcile settings.
type Tracking struct {
	StatusTTL         time.Duration
	ReconcileInterval time.Duration
	ReconcileTimeout  time.Duration
	ReconcileBatch    int
}

// Kafka stores status event consumer settings.
type Kafka struct {
	Brokers []string
	GroupID string
	Topic   string
}

// Redis stores status cache connection settings; empty Addr disables the cache.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:        DefaultPort(),
		LogLevel:    "info",
		DB:          DefaultDB(),
		Courier:     DefaultCourier(),
		Fulfillment: DefaultFulfillment(),
		Tracking:    DefaultTracking(),
		Kafka:       DefaultKafka(),
	}

	e := &envReader{}
	e.int("PORT", &cfg.Port)
	e.str("LOG_LEVEL", &cfg.LogLevel)

	e.str("POSTGRES_HOST", &cfg.DB.Host)
	e.str("POSTGRES_PORT", &cfg.DB.Port)
	e.str("POSTGRES_USER", &cfg.DB.User)
	e.str("POSTGRES_PASSWORD", &cfg.DB.Pass)
	e.str("POSTGRES_DB", &cfg.DB.Name)
	e.int("POSTGRES_MAX_CONNS", &cfg.DB.MaxConns)

	e.str("COURIER_BASE_URL", &cfg.Courier.BaseURL)
	e.str("COURIER_TOKEN", &cfg.Courier.Token)
	e.str("COURIER_AUTH_HEADER", &cfg.Courier.AuthHeader)
	e.duration("COURIER_TIMEOUT", &cfg.Courier.Timeout)
	e.str("COURIER_JOB_TYPE", &cfg.Courier.JobType)
	e.int("COURIER_VEHICLE_TYPE_ID", &cfg.Courier.VehicleTypeID)
	e.bool("COURIER_CLIENT_NOTIFICATIONS", &cfg.Courier.ClientNotifications)
	e.bool("COURIER_CONTACT_NOTIFICATIONS", &cfg.Courier.ContactNotifications)
	e.int("COURIER_MAX_CONCURRENCY", &cfg.Courier.MaxConcurrency)
	e.int("COURIER_RETRY_MAX_ATTEMPTS", &cfg.Courier.RetryMaxAttempts)
	e.duration("COURIER_RETRY_BASE_DELAY", &cfg.Courier.RetryBaseDelay)
	e.duration("COURIER_RETRY_MAX_DELAY", &cfg.Courier.RetryMaxDelay)

	e.float("FULFILLMENT_NEARBY_RADIUS_KM", &cfg.Fulfillment.NearbyRadiusKm)
	e.decimal("FULFILLMENT_STANDARD_FEE", &cfg.Fulfillment.StandardFee)
	e.int("FULFILLMENT_EXPRESS_MINUTES", &cfg.Fulfillment.ExpressMinutes)
	e.int("FULFILLMENT_STANDARD_MINUTES", &cfg.Fulfillment.StandardMinutes)

	e.duration("TRACKING_STATUS_TTL", &cfg.Tracking.StatusTTL)
	e.duration("RECONCILE_INTERVAL", &cfg.Tracking.ReconcileInterval)
	e.duration("RECONCILE_TIMEOUT", &cfg.Tracking.ReconcileTimeout)
	e.int("RECONCILE_BATCH", &cfg.Tracking.ReconcileBatch)

	e.list("KAFKA_BROKERS", &cfg.Kafka.Brokers)
	e.str("KAFKA_GROUP_ID", &cfg.Kafka.GroupID)
	e.str("KAFKA_STATUS_TOPIC", &cfg.Kafka.Topic)

	e.str("REDIS_ADDR", &cfg.Redis.Addr)
	e.str("REDIS_PASSWORD", &cfg.Redis.Password)
	e.int("REDIS_DB", &cfg.Redis.DB)

	if e.err != nil {
		return nil, e.err
	}

	fs := pflag.CommandLine
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.Courier.BaseURL, "courier-base-url", cfg.Courier.BaseURL, "courier provider base url")
	fs.StringSliceVar(&cfg.Kafka.Brokers, "kafka-brokers", cfg.Kafka.Brokers, "kafka brokers")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if _, err := strconv.Atoi(c.DB.Port); err != nil {
		return fmt.Errorf("invalid POSTGRES_PORT %q: %w", c.DB.Port, err)
	}
	if c.Fulfillment.NearbyRadiusKm <= 0 {
		return fmt.Errorf("invalid nearby radius: %v", c.Fulfillment.NearbyRadiusKm)
	}
	if !c.Fulfillment.StandardFee.IsPositive() {
		return fmt.Errorf("invalid standard fee: %s", c.Fulfillment.StandardFee)
	}
	if c.Courier.MaxConcurrency <= 0 {
		return fmt.Errorf("invalid courier max concurrency: %d", c.Courier.MaxConcurrency)
	}
	if c.Tracking.ReconcileInterval <= 0 {
		return fmt.Errorf("invalid reconcile interval: %s", c.Tracking.ReconcileInterval)
	}
	return nil
}

// envReader collects the first parse error so Load can report it once.
type envReader struct {
	err error
}

func (e *envReader) lookup(key string) (string, bool) {
	if e.err != nil {
		return "", false
	}
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *envReader) fail(key, v string, err error) {
	e.err = fmt.Errorf("invalid %s %q: %w", key, v, err)
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.lookup(key); ok {
		*dst = v
	}
}

func (e *envReader) int(key string, dst *int) {
	if v, ok := e.lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) float(key string, dst *float64) {
	if v, ok := e.lookup(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = f
	}
}

func (e *envReader) bool(key string, dst *bool) {
	if v, ok := e.lookup(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = b
	}
}

func (e *envReader) duration(key string, dst *time.Duration) {
	if v, ok := e.lookup(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = d
	}
}

func (e *envReader) decimal(key string, dst *decimal.Decimal) {
	if v, ok := e.lookup(key); ok {
		d, err := decimal.NewFromString(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = d
	}
}

func (e *envReader) list(key string, dst *[]string) {
	if v, ok := e.lookup(key); ok {
		var out []string
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		*dst = out
	}
}
