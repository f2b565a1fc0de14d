package formatter_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-delivery/internal/domain"
	"marketplace-delivery/internal/formatter"
	"marketplace-delivery/internal/gateway/courier"
)

func sampleRequest() domain.DeliveryRequest {
	return domain.DeliveryRequest{
		OrderID:       "ORD-1",
		TransactionID: "TXN-1",
		Shipping: domain.ShippingAddress{
			FirstName: "Asha",
			LastName:  "Rao",
			Phone:     "+919800000000",
			Address:   "12 Hill Road",
			Apartment: "Flat 4B",
			City:      "Mumbai",
		},
		Customer: domain.NewCoordinate(19.08, 72.88),
		Items: []domain.LineItem{
			{ProductID: "p1", Title: "Dog food", Quantity: 2, WeightKg: 1.5, VendorID: "v1"},
			{ProductID: "p2", Title: "Cat toy", Quantity: 1, WeightKg: 0.2, VendorID: "v2"},
			{ProductID: "p3", Title: "Leash", Quantity: 3, WeightKg: 0.1, VendorID: "v1"},
		},
		Vendors: map[string]domain.VendorInfo{
			"v1": {VendorID: "v1", Address: "Pet Shop, Bandra", ContactName: "Shop", ContactPhone: "+91111", Coordinate: domain.NewCoordinate(19.07, 72.87)},
			"v2": {VendorID: "v2", Address: "Cat Corner", Coordinate: domain.NewCoordinate(19.09, 72.86)},
		},
	}
}

func TestFormat_SingleMode(t *testing.T) {
	t.Parallel()

	f := formatter.New(formatter.Config{VehicleTypeID: 8, ClientNotifications: true})
	req := sampleRequest()

	out, err := f.Format(req, formatter.Single)
	require.NoError(t, err)
	require.Len(t, out, 1)

	body := out[0].Body
	require.Len(t, body.Points, 2)
	assert.Equal(t, "v1", out[0].VendorID)
	assert.Equal(t, "standard", body.Type)
	assert.Equal(t, 8, body.VehicleTypeID)
	assert.True(t, body.IsClientNotificationEnabled)
	assert.False(t, body.IsContactPersonNotificationEnabled)

	pickup, dropoff := body.Points[0], body.Points[1]
	assert.Equal(t, "Pet Shop, Bandra", pickup.Address)
	assert.Equal(t, "Shop", pickup.ContactPerson.Name)
	require.NotNil(t, pickup.Latitude)
	assert.Equal(t, 19.07, *pickup.Latitude)

	assert.Equal(t, "12 Hill Road, Mumbai", dropoff.Address)
	assert.Equal(t, "Asha Rao", dropoff.ContactPerson.Name)
	assert.Equal(t, "Flat 4B", dropoff.Note)
	require.NotNil(t, dropoff.Longitude)
	assert.Equal(t, 72.88, *dropoff.Longitude)

	assert.Equal(t, "ORD-1-v1-TXN-1", pickup.ClientOrderID)
	assert.Equal(t, pickup.ClientOrderID, dropoff.ClientOrderID)

	// 2*1.5 + 1*0.2 + 3*0.1
	assert.InDelta(t, 3.5, body.TotalWeightKg, 1e-9)
	assert.Equal(t, "Dog food x2, Cat toy x1, Leash x3", body.Matter)
}

func TestFormat_MultiMode_GroupsByVendor(t *testing.T) {
	t.Parallel()

	f := formatter.New(formatter.Config{})
	req := sampleRequest()

	out, err := f.Format(req, formatter.Multi)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "v1", out[0].VendorID)
	assert.Equal(t, "v2", out[1].VendorID)

	var weight float64
	for _, r := range out {
		require.Len(t, r.Body.Points, 2)
		assert.True(t, strings.HasSuffix(r.Body.Points[0].ClientOrderID, "-TXN-1"))
		weight += r.Body.TotalWeightKg
	}

	assert.Equal(t, "Dog food x2, Leash x3", out[0].Body.Matter)
	assert.InDelta(t, 3.3, out[0].Body.TotalWeightKg, 1e-9)
	// 0.2 kg is raised to the minimum
	assert.InDelta(t, 1.0, out[1].Body.TotalWeightKg, 1e-9)
	assert.Equal(t, "ORD-1-v2-TXN-1", out[1].Body.Points[1].ClientOrderID)
	assert.InDelta(t, 4.3, weight, 1e-9)
}

func TestFormat_RequestCountMatchesDistinctVendors(t *testing.T) {
	t.Parallel()

	f := formatter.New(formatter.Config{})
	req := sampleRequest()

	out, err := f.Format(req, formatter.Multi)
	require.NoError(t, err)
	require.Len(t, out, len(domain.DistinctVendors(req.Items)))
}

func TestFormat_MissingVendorInfoStillBuilds(t *testing.T) {
	t.Parallel()

	req := sampleRequest()
	req.Vendors = nil
	req.Customer = domain.Coordinate{}

	out, err := formatter.New(formatter.Config{}).Format(req, formatter.Multi)
	require.NoError(t, err)
	require.Len(t, out, 2)

	p := out[0].Body.Points[0]
	assert.Empty(t, p.Address)
	assert.Nil(t, p.Latitude)
	assert.Nil(t, out[0].Body.Points[1].Latitude)
}

func TestFormat_NoItems(t *testing.T) {
	t.Parallel()

	f := formatter.New(formatter.Config{})
	for _, items := range [][]domain.LineItem{nil, {}} {
		req := sampleRequest()
		req.Items = items
		_, err := f.Format(req, formatter.Multi)
		require.ErrorIs(t, err, formatter.ErrNoLineItems)
		_, err = f.Format(req, formatter.Single)
		require.ErrorIs(t, err, formatter.ErrNoLineItems)
	}
}

func TestClientOrderID_Truncated(t *testing.T) {
	t.Parallel()

	id := formatter.ClientOrderID("ORD-1728900000000-1a2b3c4d", "vendor-with-long-id", "TXN-1728900000000-9f8e7d6c")
	require.Equal(t, courier.MaxClientOrderIDLen, utf8.RuneCountInString(id))
	require.True(t, strings.HasPrefix(id, "ORD-1728900000000-1a2b3c4d-vendor"))

	require.Equal(t, "a-b-c", formatter.ClientOrderID("a", "b", "c"))
}

func TestMatter_FallsBackToProductID(t *testing.T) {
	t.Parallel()

	got := formatter.Matter([]domain.LineItem{{ProductID: "sku-9", Quantity: 4}})
	require.Equal(t, "sku-9 x4", got)
}
