package courier

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxClientOrderIDLen is the provider limit for points[].client_order_id.
const MaxClientOrderIDLen = 40

// ContactPerson is a point contact.
type ContactPerson struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Point is a pickup or drop-off stop of a job request.
type Point struct {
	Address       string        `json:"address"`
	ContactPerson ContactPerson `json:"contact_person"`
	Latitude      *float64      `json:"latitude,omitempty"`
	Longitude     *float64      `json:"longitude,omitempty"`
	ClientOrderID string        `json:"client_order_id"`
	Note          string        `json:"note,omitempty"`
}

// JobRequest is the provider-shaped description of one delivery job.
type JobRequest struct {
	Type                               string  `json:"type"`
	Matter                             string  `json:"matter"`
	TotalWeightKg                      float64 `json:"total_weight_kg"`
	VehicleTypeID                      int     `json:"vehicle_type_id"`
	Points                             []Point `json:"points"`
	IsClientNotificationEnabled        bool    `json:"is_client_notification_enabled"`
	IsContactPersonNotificationEnabled bool    `json:"is_contact_person_notification_enabled"`
}

type cancelRequest struct {
	OrderID string `json:"order_id"`
}

// providerID accepts both numeric and string ids.
type providerID string

func (id *providerID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = providerID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = providerID(n.String())
	return nil
}

type wireContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type wirePoint struct {
	Address                  string      `json:"address"`
	Status                   string      `json:"status"`
	EstimatedArrivalDatetime *time.Time  `json:"estimated_arrival_datetime"`
	ContactPerson            wireContact `json:"contact_person"`
	TrackingURL              string      `json:"tracking_url"`
}

type wireCourier struct {
	Name      string   `json:"name"`
	Surname   string   `json:"surname"`
	Phone     string   `json:"phone"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type wireOrder struct {
	OrderID           providerID      `json:"order_id"`
	OrderName         string          `json:"order_name"`
	Status            string          `json:"status"`
	StatusDescription string          `json:"status_description"`
	PaymentAmount     decimal.Decimal `json:"payment_amount"`
	Courier           *wireCourier    `json:"courier"`
	Points            []wirePoint     `json:"points"`
}

type envelope struct {
	IsSuccessful bool            `json:"is_successful"`
	Errors       []string        `json:"errors"`
	Warnings     []string        `json:"warnings"`
	Parameters   json.RawMessage `json:"parameter_errors"`
	Order        *wireOrder      `json:"order"`
	Orders       []wireOrder     `json:"orders"`
}
