package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lessonledger/ledger/internal/model"
)

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.bookings.CreateBooking(ctx, f.learnerID, f.tutorID, 1, 100, 3)
	require.NoError(t, err)

	// 10% of 300 plus the fixed 5.
	assert.Equal(t, int64(300), booking.TotalAmount)
	assert.Equal(t, int64(35), booking.SystemFeeAmount)
	assert.Equal(t, f.feeID, booking.SystemFeeID)
	assert.Equal(t, model.BookingStatusPending, booking.Status)
	assert.Equal(t, model.PaymentStatusUnpaid, booking.PaymentStatus)
}

func TestCreateBookingRequiresActiveFee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fee := f.store.fees[f.feeID]
	fee.IsActive = false
	f.store.fees[f.feeID] = fee

	_, err := f.bookings.CreateBooking(ctx, f.learnerID, f.tutorID, 1, 100, 3)
	assert.ErrorIs(t, err, ErrNoActiveFee)
}

func TestCreateBookingValidatesUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.bookings.CreateBooking(ctx, 9999, f.tutorID, 1, 100, 3)
	assert.Error(t, err)

	_, err = f.bookings.CreateBooking(ctx, f.learnerID, 9999, 1, 100, 3)
	assert.Error(t, err)
}

func TestRecalculateUsesFrozenPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.bookings.CreateBooking(ctx, f.learnerID, f.tutorID, 1, 100, 3)
	require.NoError(t, err)

	// A newer, pricier fee schedule takes over for future bookings.
	pct := 50.0
	newer := model.SystemFee{
		ID:            f.store.nextID(),
		Name:          "raised",
		Percentage:    &pct,
		EffectiveFrom: testTime.Add(-time.Minute),
		IsActive:      true,
	}
	f.store.fees[newer.ID] = newer

	got, err := f.bookings.Recalculate(ctx, booking.ID, 5)
	require.NoError(t, err)

	// Still priced with the original 10% + 5, not the new 50%.
	assert.Equal(t, 5, got.Sessions)
	assert.Equal(t, int64(500), got.TotalAmount)
	assert.Equal(t, int64(55), got.SystemFeeAmount)
	assert.Equal(t, f.feeID, got.SystemFeeID)
}

func TestRecalculateRejectedOncePaid(t *testing.T) {
	f := newFixture(t)
	booking := f.paidBooking(t)

	_, err := f.bookings.Recalculate(context.Background(), booking.ID, 5)
	assert.ErrorIs(t, err, ErrBookingAlreadyPaid)
}

func TestConfirmBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.bookings.CreateBooking(ctx, f.learnerID, f.tutorID, 1, 100, 3)
	require.NoError(t, err)

	require.NoError(t, f.bookings.Confirm(ctx, booking.ID))

	got, err := f.store.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, got.Status)

	err = f.bookings.Confirm(ctx, booking.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestActiveFeePrefersOldestOnOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pct := 25.0
	overlap := model.SystemFee{
		ID:            f.store.nextID(),
		Name:          "overlapping",
		Percentage:    &pct,
		EffectiveFrom: testTime.Add(-2 * time.Hour),
		IsActive:      true,
	}
	f.store.fees[overlap.ID] = overlap

	policy, err := f.fees.ActiveFee(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.feeID, policy.ID)
}
