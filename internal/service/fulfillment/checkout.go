package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"marketplace-delivery/internal/apperr"
	"marketplace-delivery/internal/domain"
	"marketplace-delivery/internal/formatter"
	"marketplace-delivery/internal/geo"
	"marketplace-delivery/internal/logx"
)

// CheckoutInput is a checkout request.
type CheckoutInput struct {
	UserID         string
	TransactionID  string
	Items          []domain.LineItem
	Shipping       domain.ShippingAddress
	Customer       domain.Coordinate
	DeliveryMethod domain.DeliveryMethod
	Vendors        map[string]domain.VendorInfo
}

// CheckoutResult is the committed order and the state the checkout ended in.
type CheckoutResult struct {
	Order domain.Order
	State State
}

type stateTracker struct {
	state State
	log   logx.Logger
}

func (t *stateTracker) to(next State) {
	t.log.Debug("checkout state",
		logx.String("from", string(t.state)),
		logx.String("to", string(next)),
	)
	t.state = next
}

// Checkout evaluates eligibility, creates courier jobs when possible and persists the order once.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (CheckoutResult, error) {
	if err := validateCheckout(in); err != nil {
		return CheckoutResult{}, err
	}

	order := domain.Order{
		ID:                  s.ids.OrderID(),
		TransactionID:       strings.TrimSpace(in.TransactionID),
		UserID:              strings.TrimSpace(in.UserID),
		Items:               in.Items,
		ShippingAddress:     in.Shipping,
		DeliveryCoordinates: in.Customer,
		PaymentStatus:       domain.PaymentPending,
		CreatedAt:           s.now(),
	}
	if order.TransactionID == "" {
		order.TransactionID = s.ids.TransactionID()
	}
	vendorIDs := domain.DistinctVendors(in.Items)
	order.IsMultiVendor = len(vendorIDs) > 1

	log := s.logger.With(
		logx.String("order_id", order.ID),
		logx.String("transaction_id", order.TransactionID),
	)
	st := &stateTracker{state: StateEvaluating, log: log}

	switch {
	case in.DeliveryMethod == domain.DeliveryStandard:
		s.commitStandard(&order, vendorIDs, domain.ReasonRequestedStandard)
		st.to(StateStandardCommitted)
	case !s.eligible(in.Customer, in.Vendors, vendorIDs):
		s.commitStandard(&order, vendorIDs, domain.ReasonIneligibleLocation)
		st.to(StateStandardCommitted)
	default:
		st.to(StateExpressAttempted)
		reqs, err := s.formatter.Format(deliveryRequest(order, in.Vendors), modeFor(order.IsMultiVendor))
		if err != nil {
			return CheckoutResult{}, fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
		}
		outcomes := fanOut(ctx, s.cfg.MaxConcurrency, reqs, s.gw.CreateJob)
		if s.aggregate(&order, outcomes, log) {
			st.to(StateExpressCommitted)
		} else {
			st.to(StateExpressFailed)
			st.to(StateStandardCommitted)
		}
	}

	if err := s.persist(ctx, &order); err != nil {
		log.Error("save order failed", logx.Err(err))
		s.compensate(ctx, order.CourierJobs, log)
		return CheckoutResult{}, err
	}

	if s.checkouts != nil {
		s.checkouts.WithLabelValues(string(order.DeliveryMethod)).Inc()
	}
	log.Info("checkout committed",
		logx.String("event", "checkout_committed"),
		logx.String("state", string(st.state)),
		logx.String("delivery_method", string(order.DeliveryMethod)),
		logx.String("delivery_fee", order.DeliveryFee.StringFixed(2)),
		logx.Int("courier_jobs", len(order.CourierJobs)),
		logx.Bool("multi_vendor", order.IsMultiVendor),
	)

	return CheckoutResult{Order: order, State: st.state}, nil
}

func validateCheckout(in CheckoutInput) error {
	if strings.TrimSpace(in.UserID) == "" {
		return fmt.Errorf("%w: userId is required", apperr.ErrInvalid)
	}
	if in.DeliveryMethod != "" && !in.DeliveryMethod.Valid() {
		return fmt.Errorf("%w: unknown delivery method %q", apperr.ErrInvalid, in.DeliveryMethod)
	}
	return validateItems(in.Items)
}

func validateItems(items []domain.LineItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: at least one cart item is required", apperr.ErrInvalid)
	}
	for i, it := range items {
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item %d: quantity must be positive", apperr.ErrInvalid, i)
		}
	}
	return nil
}

// eligible is true when every vendor has pickup info and is near the customer.
func (s *Service) eligible(customer domain.Coordinate, vendors map[string]domain.VendorInfo, vendorIDs []string) bool {
	coords := make([]domain.Coordinate, 0, len(vendorIDs))
	for _, id := range vendorIDs {
		v, ok := vendors[id]
		if !ok {
			return false
		}
		coords = append(coords, v.Coordinate)
	}
	return geo.AllNearby(coords, customer, s.cfg.NearbyRadiusKm)
}

func (s *Service) commitStandard(order *domain.Order, vendorIDs []string, reason domain.FallbackReason) {
	order.DeliveryMethod = domain.DeliveryStandard
	order.DeliveryFee = s.cfg.StandardFee
	order.CourierJobs = nil
	order.VendorDeliveries = make([]domain.VendorDelivery, 0, len(vendorIDs))
	for _, id := range vendorIDs {
		order.VendorDeliveries = append(order.VendorDeliveries, domain.VendorDelivery{
			VendorID: id,
			Method:   domain.DeliveryStandard,
			Reason:   reason,
		})
		s.countFallback(reason)
	}
}

// aggregate folds job outcomes into order. It reports whether at least one job was created.
func (s *Service) aggregate(order *domain.Order, outcomes []outcome[domain.CourierJob], log logx.Logger) bool {
	fee := decimal.Zero
	fellBack := false
	jobs := make([]domain.CourierJob, 0, len(outcomes))
	deliveries := make([]domain.VendorDelivery, 0, len(outcomes))

	for _, o := range outcomes {
		if o.err != nil {
			fellBack = true
			reason := fallbackReason(o.err)
			deliveries = append(deliveries, domain.VendorDelivery{
				VendorID: o.vendorID,
				Method:   domain.DeliveryStandard,
				Reason:   reason,
			})
			s.countFallback(reason)
			log.Warn("courier job failed, vendor falls back to standard",
				logx.String("vendor_id", o.vendorID),
				logx.String("reason", string(reason)),
				logx.Err(o.err),
			)
			continue
		}

		job := o.value
		job.OrderID = order.ID
		job.VendorID = o.vendorID
		job.CreatedAt = order.CreatedAt
		job.UpdatedAt = order.CreatedAt
		jobs = append(jobs, job)
		fee = fee.Add(job.PaymentAmount)
		deliveries = append(deliveries, domain.VendorDelivery{
			VendorID: o.vendorID,
			Method:   domain.DeliveryExpress,
			JobID:    job.JobID,
		})
	}

	order.VendorDeliveries = deliveries
	if len(jobs) == 0 {
		order.DeliveryMethod = domain.DeliveryStandard
		order.DeliveryFee = s.cfg.StandardFee
		order.CourierJobs = nil
		return false
	}

	if fellBack {
		fee = fee.Add(s.cfg.StandardFee)
	}
	order.DeliveryMethod = domain.DeliveryExpress
	order.DeliveryFee = fee
	order.CourierJobs = jobs
	return true
}

func (s *Service) persist(ctx context.Context, order *domain.Order) error {
	// клиент мог уйти, а джобы уже созданы: сохраняем в любом случае
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.SaveTimeout)
	defer cancel()

	if err := s.repo.Save(ctx, order); err != nil {
		return fmt.Errorf("save order %s: %w: %w", order.ID, apperr.ErrPersistence, err)
	}
	return nil
}

// compensate cancels jobs that were created for an order that could not be saved.
func (s *Service) compensate(ctx context.Context, jobs []domain.CourierJob, log logx.Logger) {
	if len(jobs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.SaveTimeout)
	defer cancel()

	for _, j := range jobs {
		if _, err := s.gw.Cancel(ctx, j.JobID); err != nil {
			log.Error("cancel orphaned courier job failed",
				logx.String("job_id", j.JobID),
				logx.Err(err),
			)
		}
	}
}

func (s *Service) countFallback(reason domain.FallbackReason) {
	if s.fallbacks != nil {
		s.fallbacks.WithLabelValues(string(reason)).Inc()
	}
}

func fallbackReason(err error) domain.FallbackReason {
	if errors.Is(err, apperr.ErrProviderRejected) {
		return domain.ReasonProviderRejected
	}
	return domain.ReasonProviderTransport
}

func modeFor(multiVendor bool) formatter.Mode {
	if multiVendor {
		return formatter.Multi
	}
	return formatter.Single
}

func deliveryRequest(order domain.Order, vendors map[string]domain.VendorInfo) domain.DeliveryRequest {
	return domain.DeliveryRequest{
		OrderID:       order.ID,
		TransactionID: order.TransactionID,
		Shipping:      order.ShippingAddress,
		Customer:      order.DeliveryCoordinates,
		Items:         order.Items,
		Vendors:       vendors,
	}
}
