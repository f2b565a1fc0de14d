package fulfillment

import (
	"context"
	"fmt"
	"strings"

	"marketplace-delivery/internal/apperr"
	"marketplace-delivery/internal/domain"
	"marketplace-delivery/internal/formatter"
	"marketplace-delivery/internal/logx"
)

// JobInput describes a single courier job to create outside of checkout.
type JobInput struct {
	OrderID       string
	TransactionID string
	// VendorID limits the job to one vendor's items; empty means the first item's vendor.
	VendorID string
	Items    []domain.LineItem
	Shipping domain.ShippingAddress
	Customer domain.Coordinate
	Vendors  map[string]domain.VendorInfo
}

// CreateJob creates one courier job. Provider errors are returned as is.
func (s *Service) CreateJob(ctx context.Context, in JobInput) (domain.CourierJob, error) {
	if err := validateItems(in.Items); err != nil {
		return domain.CourierJob{}, err
	}

	items := in.Items
	vendorID := strings.TrimSpace(in.VendorID)
	if vendorID != "" {
		items = itemsOf(in.Items, vendorID)
		if len(items) == 0 {
			return domain.CourierJob{}, fmt.Errorf("%w: no items for vendor %q", apperr.ErrInvalid, vendorID)
		}
	}

	order := domain.Order{
		ID:                  strings.TrimSpace(in.OrderID),
		TransactionID:       strings.TrimSpace(in.TransactionID),
		Items:               items,
		ShippingAddress:     in.Shipping,
		DeliveryCoordinates: in.Customer,
	}
	if order.ID == "" {
		order.ID = s.ids.OrderID()
	}
	if order.TransactionID == "" {
		order.TransactionID = s.ids.TransactionID()
	}

	reqs, err := s.formatter.Format(deliveryRequest(order, in.Vendors), formatter.Single)
	if err != nil {
		return domain.CourierJob{}, fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}

	job, err := s.gw.CreateJob(ctx, reqs[0].Body)
	if err != nil {
		s.logger.Warn("courier job creation failed",
			logx.String("order_id", order.ID),
			logx.String("vendor_id", reqs[0].VendorID),
			logx.Err(err),
		)
		return domain.CourierJob{}, err
	}

	now := s.now()
	job.OrderID = order.ID
	job.VendorID = reqs[0].VendorID
	job.CreatedAt = now
	job.UpdatedAt = now

	s.logger.Info("courier job created",
		logx.String("event", "courier_job_created"),
		logx.String("order_id", job.OrderID),
		logx.String("job_id", job.JobID),
	)
	return job, nil
}

func itemsOf(items []domain.LineItem, vendorID string) []domain.LineItem {
	var out []domain.LineItem
	for _, it := range items {
		if it.VendorID == vendorID {
			out = append(out, it)
		}
	}
	return out
}
