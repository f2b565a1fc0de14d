package config

import (
	"time"

	"github.com/shopspring/decimal"
)

const defaultPort = 8080

var defaultDB = DB{
	Host:     "127.0.0.1",
	Port:     "5432",
	User:     "delivery",
	Pass:     "delivery",
	Name:     "delivery",
	MaxConns: 10,
}

var defaultCourier = Courier{
	BaseURL:          "https://robot-in.borzodelivery.com/api/business/1.6",
	AuthHeader:       "X-DV-Auth-Token",
	Timeout:          10 * time.Second,
	JobType:          "standard",
	VehicleTypeID:    8,
	MaxConcurrency:   4,
	RetryMaxAttempts: 3,
	RetryBaseDelay:   200 * time.Millisecond,
	RetryMaxDelay:    2 * time.Second,
}

var defaultFulfillment = Fulfillment{
	NearbyRadiusKm:  10,
	StandardFee:     decimal.NewFromInt(15),
	ExpressMinutes:  60,
	StandardMinutes: 48 * 60,
}

var defaultTracking = Tracking{
	StatusTTL:         10 * time.Second,
	ReconcileInterval: time.Minute,
	ReconcileTimeout:  30 * time.Second,
	ReconcileBatch:    100,
}

var defaultKafka = Kafka{
	GroupID: "delivery-fulfillment",
	Topic:   "courier.status",
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultCourier returns the default courier provider settings.
func DefaultCourier() Courier {
	return defaultCourier
}

// DefaultFulfillment returns the default fulfillment policy.
func DefaultFulfillment() Fulfillment {
	return defaultFulfillment
}

// DefaultTracking returns the default tracking settings.
func DefaultTracking() Tracking {
	return defaultTracking
}

// DefaultKafka returns the default kafka settings.
func DefaultKafka() Kafka {
	return defaultKafka
}
