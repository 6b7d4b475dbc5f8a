package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lessonledger/ledger/internal/clock"
	"github.com/lessonledger/ledger/internal/fee"
	"github.com/lessonledger/ledger/internal/model"
	"github.com/lessonledger/ledger/internal/storage"
)

type EscrowService struct {
	store         storage.Store
	clock         clock.Clock
	confirmWindow time.Duration // how long a learner has to confirm a lesson
	releaseDelay  time.Duration // earliest payout release after locking
	logger        *zap.Logger
}

func NewEscrowService(store storage.Store, clk clock.Clock, confirmWindow, releaseDelay time.Duration, logger *zap.Logger) *EscrowService {
	return &EscrowService{
		store:         store,
		clock:         clk,
		confirmWindow: confirmWindow,
		releaseDelay:  releaseDelay,
		logger:        logger,
	}
}

// LockFunds reserves a confirmed booking's total plus fee out of the
// learner's available balance, mirrors the reservation on the platform
// wallet, and opens one payout and one completion per session. Invoked by
// the payment-confirmation flow; calling it again on a paid booking is
// rejected before any mutation.
func (s *EscrowService) LockFunds(ctx context.Context, bookingID int64) error {
	now := s.clock.Now()

	err := s.store.InTx(ctx, func(tx storage.Store) error {
		booking, err := tx.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking.Status != model.BookingStatusConfirmed {
			return ErrBookingNotConfirmed
		}
		if booking.PaymentStatus != model.PaymentStatusUnpaid {
			return ErrBookingAlreadyPaid
		}

		learnerWallet, err := tx.GetWalletByUserID(ctx, booking.LearnerID)
		if err != nil {
			return fmt.Errorf("learner wallet: %w", err)
		}
		tutorWallet, err := tx.GetWalletByUserID(ctx, booking.TutorID)
		if errors.Is(err, storage.ErrNotFound) {
			// First booking for this tutor; open their wallet now so the
			// payouts have somewhere to land.
			tutorWallet = &model.Wallet{UserID: &booking.TutorID}
			err = tx.CreateWallet(ctx, tutorWallet)
		}
		if err != nil {
			return fmt.Errorf("tutor wallet: %w", err)
		}
		platformWallet, err := tx.GetPlatformWallet(ctx)
		if err != nil {
			return err
		}

		total := booking.TotalAmount + booking.SystemFeeAmount
		if learnerWallet.Available < total {
			return ErrInsufficientFunds
		}

		// Learner side of the escrow: available -> locked.
		newAvailable := learnerWallet.Available - total
		if err := tx.UpdateWalletBalances(ctx, learnerWallet.ID, newAvailable, learnerWallet.Locked+total); err != nil {
			return err
		}
		_, err = recordAvailableChange(ctx, tx, learnerWallet.ID, total,
			model.TransactionTypeDebit, model.TransactionReasonEscrowLock, model.TransactionStatusCompleted,
			learnerWallet.Available, newAvailable, &booking.ID, nil)
		if err != nil {
			return err
		}

		// Platform mirror of the same reservation.
		if err := tx.UpdateWalletBalances(ctx, platformWallet.ID, platformWallet.Available, platformWallet.Locked+total); err != nil {
			return err
		}

		amountShares := fee.SplitAcrossSessions(booking.TotalAmount, booking.Sessions)
		feeShares := fee.SplitAcrossSessions(booking.SystemFeeAmount, booking.Sessions)
		releaseAt := now.Add(s.releaseDelay)

		for i := 0; i < booking.Sessions; i++ {
			completion := &model.ScheduleCompletion{
				BookingID:       booking.ID,
				SessionNumber:   i + 1,
				Status:          model.CompletionStatusPendingConfirm,
				ConfirmDeadline: now.Add(s.confirmWindow),
			}
			if err := tx.CreateScheduleCompletion(ctx, completion); err != nil {
				return err
			}

			payout := &model.TutorPayout{
				WalletID:           tutorWallet.ID,
				BookingID:          booking.ID,
				CompletionID:       completion.ID,
				Amount:             amountShares[i],
				SystemFeeAmount:    feeShares[i],
				Status:             model.PayoutStatusPending,
				ScheduledReleaseAt: releaseAt,
			}
			if err := tx.CreateTutorPayout(ctx, payout); err != nil {
				return err
			}
		}

		return tx.UpdateBookingPaymentStatus(ctx, booking.ID, model.PaymentStatusPaid)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Escrow locked",
		zap.Int64("booking_id", bookingID),
	)

	return nil
}
