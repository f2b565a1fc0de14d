package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CourierJob is a delivery job created with the courier provider for one vendor.
// Only Status, StatusDescription and UpdatedAt change after creation.
type CourierJob struct {
	JobID             string
	OrderID           string
	VendorID          string
	Name              string
	Status            string
	StatusDescription string
	PaymentAmount     decimal.Decimal
	TrackingURLs      []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Quote is a provider price estimate for one job request.
type Quote struct {
	PaymentAmount decimal.Decimal
	// ETA is the latest estimated arrival across points, zero when the provider gave none.
	ETA time.Time
}

// CourierInfo describes the courier assigned to a job, when known.
type CourierInfo struct {
	Name      string
	Phone     string
	Latitude  *float64
	Longitude *float64
}

// PointStatus is the state of a single stop of a job.
type PointStatus struct {
	Address          string
	Status           string
	EstimatedArrival *time.Time
	ContactPerson    string
	TrackingURL      string
}

// JobStatus is a live view of a courier job.
type JobStatus struct {
	JobID             string
	Status            string
	StatusDescription string
	Courier           *CourierInfo
	TrackingURLs      []string
	Points            []PointStatus
}

// CancelAck is the provider acknowledgement of a cancellation.
type CancelAck struct {
	JobID  string
	Status string
}

// StatusUpdate is an asynchronous courier status notification.
type StatusUpdate struct {
	JobID             string
	Status            string
	StatusDescription string
	OccurredAt        time.Time
}
