package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryMethod is the delivery commitment made for an order or vendor.
type DeliveryMethod string

// Supported delivery methods.
const (
	DeliveryStandard DeliveryMethod = "standard"
	DeliveryExpress  DeliveryMethod = "express"
)

// Valid checks that the method is one of the supported values.
func (m DeliveryMethod) Valid() bool {
	return m == DeliveryStandard || m == DeliveryExpress
}

// FallbackReason explains why a vendor was routed to standard delivery.
type FallbackReason string

// Fallback reasons recorded per vendor.
const (
	ReasonNone               FallbackReason = ""
	ReasonRequestedStandard  FallbackReason = "requested_standard"
	ReasonIneligibleLocation FallbackReason = "ineligible_location"
	ReasonProviderTransport  FallbackReason = "provider_transport"
	ReasonProviderRejected   FallbackReason = "provider_rejected"
)

// PaymentPending is the payment state of a freshly checked out order.
const PaymentPending = "pending"

// VendorInfo carries per-vendor pickup data.
type VendorInfo struct {
	VendorID     string
	Address      string
	ContactName  string
	ContactPhone string
	Coordinate   Coordinate
}

// LineItem is a single cart position.
type LineItem struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	WeightKg  float64         `json:"weightKg"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	VendorID  string          `json:"vendorId"`
}

// ShippingAddress is the customer's drop-off address as entered at checkout.
type ShippingAddress struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address"`
	Apartment  string `json:"apartment,omitempty"`
	State      string `json:"state,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

// FullName joins first and last names.
func (a ShippingAddress) FullName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	default:
		return a.FirstName + " " + a.LastName
	}
}

// Line renders the address as a single provider-facing line.
func (a ShippingAddress) Line() string {
	out := a.Address
	for _, part := range []string{a.City, a.State, a.PostalCode} {
		if part == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += part
	}
	return out
}

// DeliveryRequest is the ephemeral aggregate built at checkout.
type DeliveryRequest struct {
	OrderID       string
	TransactionID string
	Shipping      ShippingAddress
	Customer      Coordinate
	Items         []LineItem
	Vendors       map[string]VendorInfo
}

// VendorIDs returns distinct vendor ids in order of first appearance.
func (r DeliveryRequest) VendorIDs() []string {
	return DistinctVendors(r.Items)
}

// DistinctVendors returns distinct vendor ids in order of first appearance.
func DistinctVendors(items []LineItem) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.VendorID]; ok {
			continue
		}
		seen[it.VendorID] = struct{}{}
		out = append(out, it.VendorID)
	}
	return out
}

// VendorDelivery is the per-vendor delivery outcome of a checkout.
type VendorDelivery struct {
	VendorID string         `json:"vendorId"`
	Method   DeliveryMethod `json:"method"`
	JobID    string         `json:"jobId,omitempty"`
	Reason   FallbackReason `json:"reason,omitempty"`
}

// Order is the persisted checkout record.
type Order struct {
	ID                  string
	TransactionID       string
	UserID              string
	Items               []LineItem
	ShippingAddress     ShippingAddress
	DeliveryCoordinates Coordinate
	PaymentStatus       string
	DeliveryMethod      DeliveryMethod
	DeliveryFee         decimal.Decimal
	IsMultiVendor       bool
	CourierJobs         []CourierJob
	VendorDeliveries    []VendorDelivery
	CreatedAt           time.Time
}
