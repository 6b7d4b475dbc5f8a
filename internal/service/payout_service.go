package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lessonledger/ledger/internal/alert"
	"github.com/lessonledger/ledger/internal/clock"
	"github.com/lessonledger/ledger/internal/model"
	"github.com/lessonledger/ledger/internal/storage"
)

type PayoutService struct {
	store    storage.Store
	calendar *clock.Calendar
	notifier alert.Notifier
	logger   *zap.Logger
}

func NewPayoutService(store storage.Store, calendar *clock.Calendar, notifier alert.Notifier, logger *zap.Logger) *PayoutService {
	return &PayoutService{
		store:    store,
		calendar: calendar,
		notifier: notifier,
		logger:   logger,
	}
}

// ProcessDuePayouts settles every releasable payout whose scheduled date
// falls on or before the current business day. The whole batch commits as
// one transaction: the due rows are selected under row locks and the
// paid transition is conditional, so overlapping or retried runs settle
// each payout exactly once. An under-funded locked balance is a consistency
// fault: the batch rolls back, alerts the operator and surfaces the error.
func (s *PayoutService) ProcessDuePayouts(ctx context.Context) (int, error) {
	cutoff := s.calendar.EndOfToday()
	processed := 0

	err := s.store.InTx(ctx, func(tx storage.Store) error {
		due, err := tx.ListDuePayoutsForRelease(ctx, cutoff)
		if err != nil {
			return err
		}

		for _, payout := range due {
			if err := s.release(ctx, tx, payout); err != nil {
				return err
			}
			processed++
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("process due payouts: %w", err)
	}

	if processed > 0 {
		s.logger.Info("Payout batch settled", zap.Int("count", processed))
	}

	return processed, nil
}

func (s *PayoutService) release(ctx context.Context, tx storage.Store, payout *model.TutorPayout) error {
	booking, err := tx.GetBooking(ctx, payout.BookingID)
	if err != nil {
		return err
	}
	tutorWallet, err := tx.GetWallet(ctx, payout.WalletID)
	if err != nil {
		return fmt.Errorf("tutor wallet: %w", err)
	}
	learnerWallet, err := tx.GetWalletByUserID(ctx, booking.LearnerID)
	if err != nil {
		return fmt.Errorf("learner wallet: %w", err)
	}
	platformWallet, err := tx.GetPlatformWallet(ctx)
	if err != nil {
		return err
	}

	total := payout.TotalToRelease()
	if learnerWallet.Locked < total || platformWallet.Locked < total {
		fault := fmt.Errorf(
			"payout %d needs %d locked, learner has %d, platform has %d: %w",
			payout.ID, total, learnerWallet.Locked, platformWallet.Locked, ErrLedgerCorrupt)
		s.notifier.Alert(ctx, fault.Error())
		return fault
	}

	// Tutor earns their share into the available balance.
	newTutorAvailable := tutorWallet.Available + payout.Amount
	if err := tx.UpdateWalletBalances(ctx, tutorWallet.ID, newTutorAvailable, tutorWallet.Locked); err != nil {
		return err
	}
	tutorTxn, err := recordAvailableChange(ctx, tx, tutorWallet.ID, payout.Amount,
		model.TransactionTypeCredit, model.TransactionReasonBookingPayout, model.TransactionStatusCompleted,
		tutorWallet.Available, newTutorAvailable, &booking.ID, nil)
	if err != nil {
		return err
	}

	// The learner's escrow slice leaves their locked balance for good.
	if err := tx.UpdateWalletBalances(ctx, learnerWallet.ID, learnerWallet.Available, learnerWallet.Locked-total); err != nil {
		return err
	}

	// The platform releases its mirror and keeps the fee.
	newPlatformAvailable := platformWallet.Available + payout.SystemFeeAmount
	if err := tx.UpdateWalletBalances(ctx, platformWallet.ID, newPlatformAvailable, platformWallet.Locked-total); err != nil {
		return err
	}
	if payout.SystemFeeAmount > 0 {
		_, err = recordAvailableChange(ctx, tx, platformWallet.ID, payout.SystemFeeAmount,
			model.TransactionTypeCredit, model.TransactionReasonPlatformFee, model.TransactionStatusCompleted,
			platformWallet.Available, newPlatformAvailable, &booking.ID, nil)
		if err != nil {
			return err
		}
	}

	paid, err := tx.MarkPayoutPaid(ctx, payout.ID, tutorTxn.ID, s.calendar.Now())
	if err != nil {
		return err
	}
	if !paid {
		// The row left ready_for_payout despite our lock: roll the whole
		// batch back rather than double-release.
		return fmt.Errorf("payout %d no longer releasable: %w", payout.ID, ErrLedgerCorrupt)
	}

	s.logger.Info("Payout released",
		zap.Int64("payout_id", payout.ID),
		zap.Int64("booking_id", booking.ID),
		zap.Int64("amount", payout.Amount),
		zap.Int64("fee_amount", payout.SystemFeeAmount),
	)

	return nil
}
