package fulfillment

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"marketplace-delivery/internal/apperr"
	"marketplace-delivery/internal/domain"
	"marketplace-delivery/internal/gateway/courier"
)

func quoteInput(in CheckoutInput) QuoteInput {
	return QuoteInput{Items: in.Items, Shipping: in.Shipping, Customer: in.Customer, Vendors: in.Vendors}
}

func TestQuote_EligibleSumsFeesAndTakesLatestETA(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	gw := NewMockcourierGateway(ctrl)
	gw.EXPECT().QuotePrice(gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(_ context.Context, req courier.JobRequest) (domain.Quote, error) {
			require.Contains(t, req.Points[0].ClientOrderID, "QUOTE-")
			if req.Points[0].Address == nearbyV2.Address {
				return domain.Quote{PaymentAmount: decimal.NewFromInt(30), ETA: fixedNow.Add(45 * time.Minute)}, nil
			}
			return domain.Quote{PaymentAmount: decimal.NewFromInt(20), ETA: fixedNow.Add(20 * time.Minute)}, nil
		})

	svc := newTestService(gw, NewMockorderRepository(ctrl), newIDs(ctrl))
	res, err := svc.Quote(context.Background(), quoteInput(multiVendorInput(nearbyV2)))
	require.NoError(t, err)
	require.True(t, res.Eligible)
	require.Equal(t, "50", res.Fee.String())
	require.Equal(t, 45, res.Minutes)
	require.True(t, res.EstimatedAt.Equal(fixedNow.Add(45*time.Minute)))
}

func TestQuote_NoETAUsesDefaultMinutes(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	gw := NewMockcourierGateway(ctrl)
	gw.EXPECT().QuotePrice(gomock.Any(), gomock.Any()).Return(domain.Quote{PaymentAmount: decimal.NewFromInt(20)}, nil)

	svc := newTestService(gw, NewMockorderRepository(ctrl), newIDs(ctrl))
	res, err := svc.Quote(context.Background(), quoteInput(singleVendorInput()))
	require.NoError(t, err)
	require.True(t, res.Eligible)
	require.Equal(t, defaultExpressMinutes, res.Minutes)
}

func TestQuote_FallsBackToFlatFee(t *testing.T) {
	t.Parallel()

	t.Run("ineligible", func(t *testing.T) {
		ctrl := newCtrl(t)
		svc := newTestService(NewMockcourierGateway(ctrl), NewMockorderRepository(ctrl), newIDs(ctrl))

		res, err := svc.Quote(context.Background(), quoteInput(multiVendorInput(farAwayV2)))
		require.NoError(t, err)
		require.False(t, res.Eligible)
		require.Equal(t, "15", res.Fee.String())
		require.Equal(t, defaultStandardMinutes, res.Minutes)
	})

	t.Run("provider failure", func(t *testing.T) {
		ctrl := newCtrl(t)
		gw := NewMockcourierGateway(ctrl)
		gw.EXPECT().QuotePrice(gomock.Any(), gomock.Any()).Return(domain.Quote{}, providerDown())

		svc := newTestService(gw, NewMockorderRepository(ctrl), newIDs(ctrl))
		res, err := svc.Quote(context.Background(), quoteInput(singleVendorInput()))
		require.NoError(t, err)
		require.False(t, res.Eligible)
		require.Equal(t, "15", res.Fee.String())
	})
}

func TestQuote_NoItemsIsInvalid(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	svc := newTestService(NewMockcourierGateway(ctrl), NewMockorderRepository(ctrl), newIDs(ctrl))
	_, err := svc.Quote(context.Background(), QuoteInput{})
	require.ErrorIs(t, err, apperr.ErrInvalid)
}
