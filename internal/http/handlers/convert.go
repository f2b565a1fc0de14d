package handlers

import (
	"strings"

	"marketplace-delivery/internal/domain"
	"marketplace-delivery/internal/service/fulfillment"
	"marketplace-delivery/internal/service/tracking"
)

// vendors indexes vendor info by id. A single entry without an id belongs
// to the vendor of the first cart item.
func (r orderRequest) vendors() map[string]domain.VendorInfo {
	if len(r.VendorInfo) == 0 {
		return nil
	}
	out := make(map[string]domain.VendorInfo, len(r.VendorInfo))
	for _, v := range r.VendorInfo {
		id := strings.TrimSpace(v.VendorID)
		if id == "" && len(r.VendorInfo) == 1 && len(r.CartItems) > 0 {
			id = r.CartItems[0].VendorID
		}
		if id == "" {
			continue
		}
		out[id] = domain.VendorInfo{
			VendorID:     id,
			Address:      v.Address,
			ContactName:  v.ContactName,
			ContactPhone: v.ContactPhone,
			Coordinate:   v.Coordinates,
		}
	}
	return out
}

func (r orderRequest) toCheckout() fulfillment.CheckoutInput {
	return fulfillment.CheckoutInput{
		UserID:         r.UserID,
		TransactionID:  r.TransactionID,
		Items:          r.CartItems,
		Shipping:       r.ShippingAddress,
		Customer:       r.DeliveryCoordinates,
		DeliveryMethod: r.DeliveryMethod,
		Vendors:        r.vendors(),
	}
}

func (r orderRequest) toQuote() fulfillment.QuoteInput {
	return fulfillment.QuoteInput{
		Items:          r.CartItems,
		Shipping:       r.ShippingAddress,
		Customer:       r.DeliveryCoordinates,
		DeliveryMethod: r.DeliveryMethod,
		Vendors:        r.vendors(),
	}
}

func (r orderRequest) toJob() fulfillment.JobInput {
	return fulfillment.JobInput{
		OrderID:       r.OrderID,
		TransactionID: r.TransactionID,
		VendorID:      r.VendorID,
		Items:         r.CartItems,
		Shipping:      r.ShippingAddress,
		Customer:      r.DeliveryCoordinates,
		Vendors:       r.vendors(),
	}
}

func jobToResponse(j domain.CourierJob) courierJobDTO {
	urls := j.TrackingURLs
	if urls == nil {
		urls = []string{}
	}
	return courierJobDTO{
		JobID:             j.JobID,
		VendorID:          j.VendorID,
		Name:              j.Name,
		Status:            j.Status,
		StatusDescription: j.StatusDescription,
		PaymentAmount:     amount(j.PaymentAmount),
		TrackingURLs:      urls,
	}
}

func jobsToResponse(list []domain.CourierJob) []courierJobDTO {
	out := make([]courierJobDTO, 0, len(list))
	for _, j := range list {
		out = append(out, jobToResponse(j))
	}
	return out
}

func checkoutToResponse(res fulfillment.CheckoutResult) checkoutResponse {
	o := res.Order
	return checkoutResponse{
		Success:          true,
		OrderID:          o.ID,
		TransactionID:    o.TransactionID,
		IsMultiVendor:    o.IsMultiVendor,
		DeliveryMethod:   o.DeliveryMethod,
		DeliveryFee:      amount(o.DeliveryFee),
		CourierJobs:      jobsToResponse(o.CourierJobs),
		VendorDeliveries: o.VendorDeliveries,
	}
}

func quoteToResponse(q fulfillment.QuoteResult) quoteResponse {
	return quoteResponse{
		Success:     true,
		DeliveryFee: amount(q.Fee),
		DeliveryTime: deliveryTimeDTO{
			Minutes:               q.Minutes,
			EstimatedDeliveryTime: q.EstimatedAt.UTC(),
		},
		IsEligible: q.Eligible,
	}
}

func statusToResponse(st domain.JobStatus) jobStatusDTO {
	out := jobStatusDTO{
		JobID:             st.JobID,
		Status:            st.Status,
		StatusDescription: st.StatusDescription,
		TrackingURLs:      st.TrackingURLs,
		Points:            make([]pointDTO, 0, len(st.Points)),
	}
	if out.TrackingURLs == nil {
		out.TrackingURLs = []string{}
	}
	if c := st.Courier; c != nil {
		out.Courier = &courierDTO{Name: c.Name, Phone: c.Phone, Latitude: c.Latitude, Longitude: c.Longitude}
	}
	for _, p := range st.Points {
		out.Points = append(out.Points, pointDTO{
			Address:          p.Address,
			Status:           p.Status,
			EstimatedArrival: p.EstimatedArrival,
			ContactPerson:    p.ContactPerson,
			TrackingURL:      p.TrackingURL,
		})
	}
	return out
}

func viewToEvent(v tracking.View) streamEvent {
	ev := streamEvent{
		NextPollSeconds: int(v.Next.Seconds()),
		Done:            v.Done,
	}
	if v.Status != nil {
		st := statusToResponse(*v.Status)
		ev.JobStatus = &st
	}
	if v.Err != nil {
		ev.Error = "status temporarily unavailable"
	}
	return ev
}

func orderToResponse(o domain.Order) orderResponse {
	vd := o.VendorDeliveries
	if vd == nil {
		vd = []domain.VendorDelivery{}
	}
	// у стандартной доставки курьерских заказов нет: courierJobs = null
	var jobs []courierJobDTO
	if o.DeliveryMethod != domain.DeliveryStandard {
		jobs = jobsToResponse(o.CourierJobs)
	}
	return orderResponse{
		ID:                  o.ID,
		TransactionID:       o.TransactionID,
		UserID:              o.UserID,
		Items:               o.Items,
		ShippingAddress:     o.ShippingAddress,
		DeliveryCoordinates: o.DeliveryCoordinates,
		PaymentStatus:       o.PaymentStatus,
		DeliveryMethod:      o.DeliveryMethod,
		DeliveryFee:         amount(o.DeliveryFee),
		IsMultiVendor:       o.IsMultiVendor,
		CourierJobs:         jobs,
		VendorDeliveries:    vd,
		CreatedAt:           o.CreatedAt,
	}
}
