package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lessonledger/ledger/internal/clock"
	"github.com/lessonledger/ledger/internal/model"
)

var testTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

const (
	testConfirmWindow = 72 * time.Hour
	testReleaseDelay  = 24 * time.Hour
	testTZOffset      = 7
)

// stepClock is a clock the test advances by hand.
type stepClock struct {
	t time.Time
}

func (c *stepClock) Now() time.Time { return c.t }

func (c *stepClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// spyNotifier records alerts instead of delivering them.
type spyNotifier struct {
	alerts []string
}

func (n *spyNotifier) Alert(_ context.Context, message string) {
	n.alerts = append(n.alerts, message)
}

// fixture wires every service against one memStore seeded with a learner,
// a tutor, an admin, their wallets, the platform wallet and one active fee
// policy of 10% plus 5 units fixed.
type fixture struct {
	store    *memStore
	clock    *stepClock
	notifier *spyNotifier

	learnerID int64
	tutorID   int64
	adminID   int64

	learnerWalletID  int64
	tutorWalletID    int64
	platformWalletID int64

	feeID int64

	fees        *FeeService
	bookings    *BookingService
	escrow      *EscrowService
	completions *CompletionService
	payouts     *PayoutService
	refunds     *RefundService
	withdrawals *WithdrawalService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	clk := &stepClock{t: testTime}
	notifier := &spyNotifier{}
	logger := zap.NewNop()

	f := &fixture{
		store:    store,
		clock:    clk,
		notifier: notifier,
	}

	f.learnerID = f.addUser("learner@example.com", model.UserRoleLearner)
	f.tutorID = f.addUser("tutor@example.com", model.UserRoleTutor)
	f.adminID = f.addUser("admin@example.com", model.UserRoleAdmin)

	f.learnerWalletID = f.addWallet(&f.learnerID, 100_000)
	f.tutorWalletID = f.addWallet(&f.tutorID, 0)
	f.platformWalletID = f.addWallet(nil, 0)

	pct := 10.0
	fixed := int64(5)
	fee := model.SystemFee{
		ID:            store.nextID(),
		Name:          "standard",
		Percentage:    &pct,
		FixedAmount:   &fixed,
		EffectiveFrom: testTime.Add(-time.Hour),
		IsActive:      true,
	}
	store.fees[fee.ID] = fee
	f.feeID = fee.ID

	f.fees = NewFeeService(store, clk, logger)
	f.bookings = NewBookingService(store, f.fees, logger)
	f.escrow = NewEscrowService(store, clk, testConfirmWindow, testReleaseDelay, logger)
	f.completions = NewCompletionService(store, clk, logger)
	f.payouts = NewPayoutService(store, clock.NewCalendar(clk, testTZOffset), notifier, logger)
	f.refunds = NewRefundService(store, clk, logger)
	f.withdrawals = NewWithdrawalService(store, clk, logger)

	return f
}

func (f *fixture) addUser(email string, role model.UserRole) int64 {
	id := f.store.nextID()
	f.store.users[id] = model.User{ID: id, Email: email, Role: role}
	return id
}

func (f *fixture) addWallet(userID *int64, available int64) int64 {
	id := f.store.nextID()
	f.store.wallets[id] = model.Wallet{ID: id, UserID: userID, Available: available}
	return id
}

func (f *fixture) wallet(t *testing.T, id int64) *model.Wallet {
	t.Helper()
	w, err := f.store.GetWallet(context.Background(), id)
	require.NoError(t, err)
	return w
}

// paidBooking runs the happy path up to escrow: a confirmed booking of
// 3 sessions at 100 each (total 300, fee 35) with funds locked.
func (f *fixture) paidBooking(t *testing.T) *model.Booking {
	t.Helper()
	ctx := context.Background()

	booking, err := f.bookings.CreateBooking(ctx, f.learnerID, f.tutorID, 1, 100, 3)
	require.NoError(t, err)
	require.NoError(t, f.bookings.Confirm(ctx, booking.ID))
	require.NoError(t, f.escrow.LockFunds(ctx, booking.ID))

	booking, err = f.store.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	return booking
}

// bookingCompletions returns the booking's schedule completions in session
// order.
func (f *fixture) bookingCompletions(t *testing.T, bookingID int64) []*model.ScheduleCompletion {
	t.Helper()
	var out []*model.ScheduleCompletion
	for id := range f.store.completions {
		c, err := f.store.GetScheduleCompletion(context.Background(), id)
		require.NoError(t, err)
		if c.BookingID == bookingID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionNumber < out[j].SessionNumber })
	return out
}

// confirmAll marks every session of the booking learner-confirmed.
func (f *fixture) confirmAll(t *testing.T, bookingID int64) {
	t.Helper()
	for _, c := range f.bookingCompletions(t, bookingID) {
		require.NoError(t, f.completions.Confirm(context.Background(), c.ID))
	}
}
