// Package formatter turns a checkout into provider-shaped courier job requests.
package formatter

import (
	"errors"
	"fmt"
	"strings"

	"marketplace-delivery/internal/domain"
	"marketplace-delivery/internal/gateway/courier"
)

// ErrNoLineItems is returned when the request has nothing to deliver.
var ErrNoLineItems = errors.New("formatter: no line items")

// Mode selects how items are split into jobs.
type Mode int

// Formatting modes.
const (
	// Single builds one job for the whole order using the first vendor as pickup.
	Single Mode = iota
	// Multi builds one job per vendor group.
	Multi
)

// minWeightKg is the smallest weight the provider accepts.
const minWeightKg = 1.0

// Config holds the provider job settings that do not depend on the order.
type Config struct {
	Type                       string
	VehicleTypeID              int
	ClientNotifications        bool
	ContactPersonNotifications bool
}

// VendorRequest is a job request bound to the vendor it picks up from.
type VendorRequest struct {
	VendorID string
	Body     courier.JobRequest
}

// Formatter builds job requests. The zero value uses the "standard" job type.
type Formatter struct {
	cfg Config
}

// New returns a Formatter for cfg.
func New(cfg Config) *Formatter {
	if cfg.Type == "" {
		cfg.Type = "standard"
	}
	return &Formatter{cfg: cfg}
}

// Format builds the requests for req. Missing vendor info still yields a request;
// only an empty item list is an error.
func (f *Formatter) Format(req domain.DeliveryRequest, mode Mode) ([]VendorRequest, error) {
	if len(req.Items) == 0 {
		return nil, ErrNoLineItems
	}

	if mode == Single {
		vendorID := req.Items[0].VendorID
		return []VendorRequest{f.build(req, vendorID, req.Items)}, nil
	}

	groups := groupByVendor(req.Items)
	out := make([]VendorRequest, 0, len(groups))
	for _, g := range groups {
		out = append(out, f.build(req, g.vendorID, g.items))
	}
	return out, nil
}

type group struct {
	vendorID string
	items    []domain.LineItem
}

func groupByVendor(items []domain.LineItem) []group {
	idx := make(map[string]int, len(items))
	var out []group
	for _, it := range items {
		i, ok := idx[it.VendorID]
		if !ok {
			i = len(out)
			idx[it.VendorID] = i
			out = append(out, group{vendorID: it.VendorID})
		}
		out[i].items = append(out[i].items, it)
	}
	return out
}

func (f *Formatter) build(req domain.DeliveryRequest, vendorID string, items []domain.LineItem) VendorRequest {
	clientID := ClientOrderID(req.OrderID, vendorID, req.TransactionID)
	vendor := req.Vendors[vendorID]

	pickup := courier.Point{
		Address: vendor.Address,
		ContactPerson: courier.ContactPerson{
			Name:  vendor.ContactName,
			Phone: vendor.ContactPhone,
		},
		ClientOrderID: clientID,
	}
	if vendor.Coordinate.Valid() {
		pickup.Latitude, pickup.Longitude = vendor.Coordinate.Latitude, vendor.Coordinate.Longitude
	}

	dropoff := courier.Point{
		Address: req.Shipping.Line(),
		ContactPerson: courier.ContactPerson{
			Name:  req.Shipping.FullName(),
			Phone: req.Shipping.Phone,
		},
		ClientOrderID: clientID,
		Note:          req.Shipping.Apartment,
	}
	if req.Customer.Valid() {
		dropoff.Latitude, dropoff.Longitude = req.Customer.Latitude, req.Customer.Longitude
	}

	return VendorRequest{
		VendorID: vendorID,
		Body: courier.JobRequest{
			Type:                               f.cfg.Type,
			Matter:                             Matter(items),
			TotalWeightKg:                      TotalWeightKg(items),
			VehicleTypeID:                      f.cfg.VehicleTypeID,
			Points:                             []courier.Point{pickup, dropoff},
			IsClientNotificationEnabled:        f.cfg.ClientNotifications,
			IsContactPersonNotificationEnabled: f.cfg.ContactPersonNotifications,
		},
	}
}

// ClientOrderID joins the ids and truncates the result to the provider limit.
func ClientOrderID(orderID, vendorID, txID string) string {
	id := orderID + "-" + vendorID + "-" + txID
	r := []rune(id)
	if len(r) > courier.MaxClientOrderIDLen {
		return string(r[:courier.MaxClientOrderIDLen])
	}
	return id
}

// TotalWeightKg sums weight*quantity, floored at the provider minimum.
func TotalWeightKg(items []domain.LineItem) float64 {
	var total float64
	for _, it := range items {
		total += it.WeightKg * float64(it.Quantity)
	}
	if total < minWeightKg {
		return minWeightKg
	}
	return total
}

// Matter describes the parcel contents, e.g. "Dog food x2, Leash x1".
func Matter(items []domain.LineItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			title = it.ProductID
		}
		parts = append(parts, fmt.Sprintf("%s x%d", title, it.Quantity))
	}
	return strings.Join(parts, ", ")
}
