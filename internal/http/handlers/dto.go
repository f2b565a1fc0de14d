package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"marketplace-delivery/internal/domain"
)

// amount renders money as a JSON number.
type amount decimal.Decimal

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).String()), nil
}

type vendorInfoDTO struct {
	VendorID     string            `json:"vendorId"`
	Address      string            `json:"address"`
	ContactName  string            `json:"contactName"`
	ContactPhone string            `json:"contactPhone"`
	Coordinates  domain.Coordinate `json:"coordinates"`
}

// vendorInfoList accepts either one vendor object or an array of them.
type vendorInfoList []vendorInfoDTO

func (l *vendorInfoList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*l = nil
		return nil
	case len(b) > 0 && b[0] == '[':
		var list []vendorInfoDTO
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*l = list
		return nil
	case len(b) > 0 && b[0] == '{':
		var one vendorInfoDTO
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*l = vendorInfoList{one}
		return nil
	default:
		return errors.New("vendorInfo must be an object or an array")
	}
}

// orderRequest is the order shape shared by checkout, quote and job creation.
type orderRequest struct {
	UserID              string                 `json:"userId"`
	OrderID             string                 `json:"orderId"`
	VendorID            string                 `json:"vendorId"`
	TransactionID       string                 `json:"transactionId"`
	CartItems           []domain.LineItem      `json:"cartItems"`
	ShippingAddress     domain.ShippingAddress `json:"shippingAddress"`
	DeliveryMethod      domain.DeliveryMethod  `json:"deliveryMethod"`
	IsMultiVendor       *bool                  `json:"isMultiVendor,omitempty"`
	VendorInfo          vendorInfoList         `json:"vendorInfo"`
	DeliveryCoordinates domain.Coordinate      `json:"deliveryCoordinates"`
}

type courierJobDTO struct {
	JobID             string   `json:"jobId"`
	VendorID          string   `json:"vendorId,omitempty"`
	Name              string   `json:"name"`
	Status            string   `json:"status"`
	StatusDescription string   `json:"statusDescription"`
	PaymentAmount     amount   `json:"paymentAmount"`
	TrackingURLs      []string `json:"trackingUrls"`
}

type checkoutResponse struct {
	Success          bool                    `json:"success"`
	OrderID          string                  `json:"orderId"`
	TransactionID    string                  `json:"transactionId"`
	IsMultiVendor    bool                    `json:"isMultiVendor"`
	DeliveryMethod   domain.DeliveryMethod   `json:"deliveryMethod"`
	DeliveryFee      amount                  `json:"deliveryFee"`
	CourierJobs      []courierJobDTO         `json:"courierJobs"`
	VendorDeliveries []domain.VendorDelivery `json:"vendorDeliveries,omitempty"`
}

type deliveryTimeDTO struct {
	Minutes               int       `json:"minutes"`
	EstimatedDeliveryTime time.Time `json:"estimatedDeliveryTime"`
}

type quoteResponse struct {
	Success      bool            `json:"success"`
	DeliveryFee  amount          `json:"deliveryFee"`
	DeliveryTime deliveryTimeDTO `json:"deliveryTime"`
	IsEligible   bool            `json:"isEligible"`
}

type createJobResponse struct {
	Success           bool          `json:"success"`
	CourierJobDetails courierJobDTO `json:"courierJobDetails"`
}

type courierDTO struct {
	Name      string   `json:"name"`
	Phone     string   `json:"phone,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type pointDTO struct {
	Address          string     `json:"address"`
	Status           string     `json:"status"`
	EstimatedArrival *time.Time `json:"estimatedArrival,omitempty"`
	ContactPerson    string     `json:"contactPerson,omitempty"`
	TrackingURL      string     `json:"trackingUrl,omitempty"`
}

type jobStatusDTO struct {
	JobID             string      `json:"jobId"`
	Status            string      `json:"status"`
	StatusDescription string      `json:"statusDescription"`
	Courier           *courierDTO `json:"courier,omitempty"`
	TrackingURLs      []string    `json:"trackingUrls"`
	Points            []pointDTO  `json:"points"`
}

type trackResponse struct {
	Success   bool         `json:"success"`
	JobStatus jobStatusDTO `json:"jobStatus"`
}

type streamEvent struct {
	JobStatus       *jobStatusDTO `json:"jobStatus,omitempty"`
	Error           string        `json:"error,omitempty"`
	NextPollSeconds int           `json:"nextPollSeconds"`
	Done            bool          `json:"done"`
}

type cancelRequest struct {
	JobID string `json:"jobId"`
}

type cancelResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"jobId"`
	Status  string `json:"status"`
}

type orderResponse struct {
	ID                  string                  `json:"id"`
	TransactionID       string                  `json:"transactionId"`
	UserID              string                  `json:"userId"`
	Items               []domain.LineItem       `json:"items"`
	ShippingAddress     domain.ShippingAddress  `json:"shippingAddress"`
	DeliveryCoordinates domain.Coordinate       `json:"deliveryCoordinates"`
	PaymentStatus       string                  `json:"paymentStatus"`
	DeliveryMethod      domain.DeliveryMethod   `json:"deliveryMethod"`
	DeliveryFee         amount                  `json:"deliveryFee"`
	IsMultiVendor       bool                    `json:"isMultiVendor"`
	CourierJobs         []courierJobDTO         `json:"courierJobs"`
	VendorDeliveries    []domain.VendorDelivery `json:"vendorDeliveries"`
	CreatedAt           time.Time               `json:"createdAt"`
}
