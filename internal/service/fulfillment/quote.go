package fulfillment

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"marketplace-delivery/internal/domain"
	"marketplace-delivery/internal/logx"
)

const quoteOrderID = "QUOTE"

// QuoteInput is the order shape a quote is computed for.
type QuoteInput struct {
	Items          []domain.LineItem
	Shipping       domain.ShippingAddress
	Customer       domain.Coordinate
	DeliveryMethod domain.DeliveryMethod
	Vendors        map[string]domain.VendorInfo
}

// QuoteResult is a delivery price and time estimate.
type QuoteResult struct {
	Fee         decimal.Decimal
	Minutes     int
	EstimatedAt time.Time
	Eligible    bool
}

// Quote prices express delivery when every vendor is eligible and every
// provider quote succeeds; otherwise it returns the standard flat fee.
// Only malformed input is an error.
func (s *Service) Quote(ctx context.Context, in QuoteInput) (QuoteResult, error) {
	if err := validateItems(in.Items); err != nil {
		return QuoteResult{}, err
	}

	now := s.now()
	standard := QuoteResult{
		Fee:         s.cfg.StandardFee,
		Minutes:     s.cfg.StandardMinutes,
		EstimatedAt: now.Add(time.Duration(s.cfg.StandardMinutes) * time.Minute),
	}

	vendorIDs := domain.DistinctVendors(in.Items)
	if in.DeliveryMethod == domain.DeliveryStandard || !s.eligible(in.Customer, in.Vendors, vendorIDs) {
		return standard, nil
	}

	order := domain.Order{
		ID:                  quoteOrderID,
		TransactionID:       s.ids.TransactionID(),
		Items:               in.Items,
		ShippingAddress:     in.Shipping,
		DeliveryCoordinates: in.Customer,
	}
	reqs, err := s.formatter.Format(deliveryRequest(order, in.Vendors), modeFor(len(vendorIDs) > 1))
	if err != nil {
		return standard, nil
	}

	fee := decimal.Zero
	var latest time.Time
	for _, o := range fanOut(ctx, s.cfg.MaxConcurrency, reqs, s.gw.QuotePrice) {
		if o.err != nil {
			s.logger.Warn("courier quote failed, quoting standard",
				logx.String("vendor_id", o.vendorID),
				logx.Err(o.err),
			)
			return standard, nil
		}
		fee = fee.Add(o.value.PaymentAmount)
		if o.value.ETA.After(latest) {
			latest = o.value.ETA
		}
	}

	res := QuoteResult{Fee: fee, Minutes: s.cfg.ExpressMinutes, Eligible: true}
	if latest.After(now) {
		res.Minutes = int(math.Ceil(latest.Sub(now).Minutes()))
		res.EstimatedAt = latest
	} else {
		res.EstimatedAt = now.Add(time.Duration(res.Minutes) * time.Minute)
	}
	return res, nil
}
