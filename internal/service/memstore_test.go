package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/lessonledger/ledger/internal/model"
	"github.com/lessonledger/ledger/internal/storage"
)

// memStore is an in-memory storage.Store for service tests. InTx snapshots
// every table and restores the snapshot when fn fails, matching the
// rollback semantics the services rely on. failOn maps a method name to an
// error injected the next time that method runs, for atomicity tests.
type memStore struct {
	seq int64

	users          map[int64]model.User
	bankAccounts   map[int64]model.BankAccount
	wallets        map[int64]model.Wallet
	transactions   map[int64]model.WalletTransaction
	fees           map[int64]model.SystemFee
	bookings       map[int64]model.Booking
	completions    map[int64]model.ScheduleCompletion
	payouts        map[int64]model.TutorPayout
	withdrawals    map[int64]model.Withdrawal
	refundPolicies map[int64]model.RefundPolicy
	refundRequests map[int64]model.BookingRefundRequest

	failOn map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		users:          make(map[int64]model.User),
		bankAccounts:   make(map[int64]model.BankAccount),
		wallets:        make(map[int64]model.Wallet),
		transactions:   make(map[int64]model.WalletTransaction),
		fees:           make(map[int64]model.SystemFee),
		bookings:       make(map[int64]model.Booking),
		completions:    make(map[int64]model.ScheduleCompletion),
		payouts:        make(map[int64]model.TutorPayout),
		withdrawals:    make(map[int64]model.Withdrawal),
		refundPolicies: make(map[int64]model.RefundPolicy),
		refundRequests: make(map[int64]model.BookingRefundRequest),
		failOn:         make(map[string]error),
	}
}

func (m *memStore) nextID() int64 {
	m.seq++
	return m.seq
}

func (m *memStore) fail(method string) error {
	if err, ok := m.failOn[method]; ok {
		delete(m.failOn, method)
		return err
	}
	return nil
}

func copyTable[V any](t map[int64]V) map[int64]V {
	out := make(map[int64]V, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

func (m *memStore) InTx(_ context.Context, fn func(storage.Store) error) error {
	users := copyTable(m.users)
	bankAccounts := copyTable(m.bankAccounts)
	wallets := copyTable(m.wallets)
	transactions := copyTable(m.transactions)
	fees := copyTable(m.fees)
	bookings := copyTable(m.bookings)
	completions := copyTable(m.completions)
	payouts := copyTable(m.payouts)
	withdrawals := copyTable(m.withdrawals)
	refundPolicies := copyTable(m.refundPolicies)
	refundRequests := copyTable(m.refundRequests)
	seq := m.seq

	if err := fn(m); err != nil {
		m.users = users
		m.bankAccounts = bankAccounts
		m.wallets = wallets
		m.transactions = transactions
		m.fees = fees
		m.bookings = bookings
		m.completions = completions
		m.payouts = payouts
		m.withdrawals = withdrawals
		m.refundPolicies = refundPolicies
		m.refundRequests = refundRequests
		m.seq = seq
		return err
	}
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) GetBankAccount(_ context.Context, id int64) (*model.BankAccount, error) {
	a, ok := m.bankAccounts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &a, nil
}

func (m *memStore) CreateWallet(_ context.Context, w *model.Wallet) error {
	w.ID = m.nextID()
	m.wallets[w.ID] = *w
	return nil
}

func (m *memStore) GetWallet(_ context.Context, id int64) (*model.Wallet, error) {
	w, ok := m.wallets[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &w, nil
}

func (m *memStore) GetWalletByUserID(_ context.Context, userID int64) (*model.Wallet, error) {
	for _, w := range m.wallets {
		if w.UserID != nil && *w.UserID == userID {
			w := w
			return &w, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) GetPlatformWallet(_ context.Context) (*model.Wallet, error) {
	for _, w := range m.wallets {
		if w.UserID == nil {
			w := w
			return &w, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) UpdateWalletBalances(_ context.Context, id int64, available, locked int64) error {
	if err := m.fail("UpdateWalletBalances"); err != nil {
		return err
	}
	w, ok := m.wallets[id]
	if !ok {
		return storage.ErrNotFound
	}
	w.Available = available
	w.Locked = locked
	m.wallets[id] = w
	return nil
}

func (m *memStore) CreateWalletTransaction(_ context.Context, t *model.WalletTransaction) error {
	if err := m.fail("CreateWalletTransaction"); err != nil {
		return err
	}
	// Mirrors the table's amount > 0 check constraint.
	if t.Amount <= 0 {
		return fmt.Errorf("wallet transaction amount must be positive, got %d", t.Amount)
	}
	t.ID = m.nextID()
	m.transactions[t.ID] = *t
	return nil
}

func (m *memStore) UpdateWalletTransactionStatus(_ context.Context, id int64, status model.TransactionStatus) error {
	t, ok := m.transactions[id]
	if !ok {
		return storage.ErrNotFound
	}
	t.Status = status
	m.transactions[id] = t
	return nil
}

func (m *memStore) ListWalletTransactions(_ context.Context, walletID int64) ([]*model.WalletTransaction, error) {
	var out []*model.WalletTransaction
	for _, t := range m.transactions {
		if t.WalletID == walletID {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) CreateSystemFee(_ context.Context, f *model.SystemFee) error {
	f.ID = m.nextID()
	m.fees[f.ID] = *f
	return nil
}

func (m *memStore) GetSystemFee(_ context.Context, id int64) (*model.SystemFee, error) {
	f, ok := m.fees[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &f, nil
}

func (m *memStore) ActiveSystemFee(_ context.Context, at time.Time) (*model.SystemFee, error) {
	var best *model.SystemFee
	for _, f := range m.fees {
		f := f
		if f.EffectiveAt(at) && (best == nil || f.ID < best.ID) {
			best = &f
		}
	}
	if best == nil {
		return nil, storage.ErrNotFound
	}
	return best, nil
}

func (m *memStore) CreateBooking(_ context.Context, b *model.Booking) error {
	b.ID = m.nextID()
	m.bookings[b.ID] = *b
	return nil
}

func (m *memStore) GetBooking(_ context.Context, id int64) (*model.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &b, nil
}

func (m *memStore) UpdateBookingAmounts(_ context.Context, id int64, sessions int, totalAmount, feeAmount int64) error {
	b, ok := m.bookings[id]
	if !ok {
		return storage.ErrNotFound
	}
	b.Sessions = sessions
	b.TotalAmount = totalAmount
	b.SystemFeeAmount = feeAmount
	m.bookings[id] = b
	return nil
}

func (m *memStore) UpdateBookingStatus(_ context.Context, id int64, status model.BookingStatus) error {
	b, ok := m.bookings[id]
	if !ok {
		return storage.ErrNotFound
	}
	b.Status = status
	m.bookings[id] = b
	return nil
}

func (m *memStore) UpdateBookingPaymentStatus(_ context.Context, id int64, status model.PaymentStatus) error {
	if err := m.fail("UpdateBookingPaymentStatus"); err != nil {
		return err
	}
	b, ok := m.bookings[id]
	if !ok {
		return storage.ErrNotFound
	}
	b.PaymentStatus = status
	m.bookings[id] = b
	return nil
}

func (m *memStore) CreateScheduleCompletion(_ context.Context, c *model.ScheduleCompletion) error {
	c.ID = m.nextID()
	m.completions[c.ID] = *c
	return nil
}

func (m *memStore) GetScheduleCompletion(_ context.Context, id int64) (*model.ScheduleCompletion, error) {
	c, ok := m.completions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &c, nil
}

func (m *memStore) ListDueCompletions(_ context.Context, deadlineBefore time.Time) ([]*model.ScheduleCompletion, error) {
	var out []*model.ScheduleCompletion
	for _, c := range m.completions {
		if c.Status == model.CompletionStatusPendingConfirm && !c.ConfirmDeadline.After(deadlineBefore) {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpdateScheduleCompletion(_ context.Context, c *model.ScheduleCompletion) error {
	if _, ok := m.completions[c.ID]; !ok {
		return storage.ErrNotFound
	}
	m.completions[c.ID] = *c
	return nil
}

func (m *memStore) CreateTutorPayout(_ context.Context, p *model.TutorPayout) error {
	p.ID = m.nextID()
	m.payouts[p.ID] = *p
	return nil
}

func (m *memStore) GetTutorPayout(_ context.Context, id int64) (*model.TutorPayout, error) {
	p, ok := m.payouts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) GetPayoutByCompletion(_ context.Context, completionID int64) (*model.TutorPayout, error) {
	for _, p := range m.payouts {
		if p.CompletionID == completionID {
			p := p
			return &p, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) ListOpenPayoutsByBooking(_ context.Context, bookingID int64) ([]*model.TutorPayout, error) {
	open := map[model.PayoutStatus]bool{
		model.PayoutStatusPending:        true,
		model.PayoutStatusReadyForPayout: true,
		model.PayoutStatusOnHold:         true,
	}
	var out []*model.TutorPayout
	for _, p := range m.payouts {
		if p.BookingID == bookingID && open[p.Status] {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListDuePayoutsForRelease(_ context.Context, releasedBefore time.Time) ([]*model.TutorPayout, error) {
	var out []*model.TutorPayout
	for _, p := range m.payouts {
		if p.Status == model.PayoutStatusReadyForPayout && p.ScheduledReleaseAt.Before(releasedBefore) {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) AdvancePayoutStatus(_ context.Context, id int64, from, to model.PayoutStatus, trigger *model.PayoutTrigger) (bool, error) {
	p, ok := m.payouts[id]
	if !ok {
		return false, storage.ErrNotFound
	}
	if p.Status != from {
		return false, nil
	}
	p.Status = to
	if trigger != nil {
		p.Trigger = trigger
	}
	m.payouts[id] = p
	return true, nil
}

func (m *memStore) MarkPayoutPaid(_ context.Context, id int64, transactionID int64, releasedAt time.Time) (bool, error) {
	p, ok := m.payouts[id]
	if !ok {
		return false, storage.ErrNotFound
	}
	if p.Status != model.PayoutStatusReadyForPayout {
		return false, nil
	}
	p.Status = model.PayoutStatusPaid
	p.WalletTransactionID = &transactionID
	p.ReleasedAt = &releasedAt
	m.payouts[id] = p
	return true, nil
}

func (m *memStore) CreateWithdrawal(_ context.Context, w *model.Withdrawal) error {
	w.ID = m.nextID()
	m.withdrawals[w.ID] = *w
	return nil
}

func (m *memStore) GetWithdrawal(_ context.Context, id int64) (*model.Withdrawal, error) {
	w, ok := m.withdrawals[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &w, nil
}

func (m *memStore) UpdateWithdrawal(_ context.Context, w *model.Withdrawal) error {
	if err := m.fail("UpdateWithdrawal"); err != nil {
		return err
	}
	if _, ok := m.withdrawals[w.ID]; !ok {
		return storage.ErrNotFound
	}
	m.withdrawals[w.ID] = *w
	return nil
}

func (m *memStore) CreateRefundPolicy(_ context.Context, p *model.RefundPolicy) error {
	p.ID = m.nextID()
	m.refundPolicies[p.ID] = *p
	return nil
}

func (m *memStore) GetRefundPolicy(_ context.Context, id int64) (*model.RefundPolicy, error) {
	p, ok := m.refundPolicies[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) CreateRefundRequest(_ context.Context, r *model.BookingRefundRequest) error {
	r.ID = m.nextID()
	m.refundRequests[r.ID] = *r
	return nil
}

func (m *memStore) GetRefundRequest(_ context.Context, id int64) (*model.BookingRefundRequest, error) {
	r, ok := m.refundRequests[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &r, nil
}

func (m *memStore) UpdateRefundRequest(_ context.Context, r *model.BookingRefundRequest) error {
	if _, ok := m.refundRequests[r.ID]; !ok {
		return storage.ErrNotFound
	}
	m.refundRequests[r.ID] = *r
	return nil
}

var _ storage.Store = (*memStore)(nil)
