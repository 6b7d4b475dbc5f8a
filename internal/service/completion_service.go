package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lessonledger/ledger/internal/clock"
	"github.com/lessonledger/ledger/internal/model"
	"github.com/lessonledger/ledger/internal/storage"
)

// HoldResolution is the admin's verdict on a reported lesson.
type HoldResolution string

const (
	// ResolutionRelease clears the hold in the tutor's favor; the lesson
	// counts as completed and its payout becomes releasable.
	ResolutionRelease HoldResolution = "release"
	// ResolutionRefund clears the hold in the learner's favor; the lesson
	// is canceled and its escrow slice returns to the learner.
	ResolutionRefund HoldResolution = "refund"
)

type CompletionService struct {
	store  storage.Store
	clock  clock.Clock
	logger *zap.Logger
}

func NewCompletionService(store storage.Store, clk clock.Clock, logger *zap.Logger) *CompletionService {
	return &CompletionService{
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

// Confirm records the learner's confirmation of a lesson and promotes its
// payout to releasable. A hold always wins over confirmation: both a held
// schedule and a held payout reject it.
func (s *CompletionService) Confirm(ctx context.Context, completionID int64) error {
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		completion, err := tx.GetScheduleCompletion(ctx, completionID)
		if err != nil {
			return err
		}

		switch completion.Status {
		case model.CompletionStatusPendingConfirm:
			// proceed
		case model.CompletionStatusLearnerConfirmed, model.CompletionStatusAutoCompleted:
			return ErrAlreadyConfirmed
		case model.CompletionStatusReportedOnHold:
			return ErrScheduleOnHold
		default:
			return ErrInvalidTransition
		}

		payout, err := tx.GetPayoutByCompletion(ctx, completionID)
		if err != nil {
			return err
		}
		if payout.Status == model.PayoutStatusOnHold {
			return ErrPayoutOnHold
		}
		// A canceled payout means the booking was refunded out from under
		// this lesson; there is nothing left to confirm.
		if payout.Status == model.PayoutStatusCanceled {
			return ErrInvalidTransition
		}

		now := s.clock.Now()
		completion.Status = model.CompletionStatusLearnerConfirmed
		completion.ConfirmedAt = &now
		if err := tx.UpdateScheduleCompletion(ctx, completion); err != nil {
			return err
		}

		if payout.Status == model.PayoutStatusPending {
			trigger := model.PayoutTriggerLearnerConfirmed
			if _, err := tx.AdvancePayoutStatus(ctx, payout.ID,
				model.PayoutStatusPending, model.PayoutStatusReadyForPayout, &trigger); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Schedule confirmed by learner",
		zap.Int64("completion_id", completionID),
	)

	return nil
}

// Report parks a still-unconfirmed lesson on hold pending dispute review
// and freezes its payout.
func (s *CompletionService) Report(ctx context.Context, completionID int64, reason string) error {
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		completion, err := tx.GetScheduleCompletion(ctx, completionID)
		if err != nil {
			return err
		}
		if completion.Status != model.CompletionStatusPendingConfirm {
			return ErrInvalidTransition
		}

		completion.Status = model.CompletionStatusReportedOnHold
		completion.ReportReason = &reason
		if err := tx.UpdateScheduleCompletion(ctx, completion); err != nil {
			return err
		}

		payout, err := tx.GetPayoutByCompletion(ctx, completionID)
		if err != nil {
			return err
		}

		for _, from := range []model.PayoutStatus{model.PayoutStatusPending, model.PayoutStatusReadyForPayout} {
			moved, err := tx.AdvancePayoutStatus(ctx, payout.ID, from, model.PayoutStatusOnHold, nil)
			if err != nil {
				return err
			}
			if moved {
				return nil
			}
		}

		// Already paid or canceled: too late to hold the money.
		return fmt.Errorf("hold payout %d: %w", payout.ID, ErrInvalidTransition)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Schedule reported, payout on hold",
		zap.Int64("completion_id", completionID),
	)

	return nil
}

// ResolveHold is the only path out of reported_on_hold, reserved for
// admins. Release treats the lesson as completed; refund cancels it and
// returns its escrow slice to the learner.
func (s *CompletionService) ResolveHold(ctx context.Context, completionID int64, resolution HoldResolution, adminID int64) error {
	admin, err := s.store.GetUserByID(ctx, adminID)
	if err != nil {
		return fmt.Errorf("validate admin: %w", err)
	}

	err = s.store.InTx(ctx, func(tx storage.Store) error {
		completion, err := tx.GetScheduleCompletion(ctx, completionID)
		if err != nil {
			return err
		}
		if completion.Status != model.CompletionStatusReportedOnHold {
			return ErrInvalidTransition
		}

		payout, err := tx.GetPayoutByCompletion(ctx, completionID)
		if err != nil {
			return err
		}
		if payout.Status != model.PayoutStatusOnHold {
			return fmt.Errorf("payout %d not on hold: %w", payout.ID, ErrInvalidTransition)
		}

		now := s.clock.Now()

		switch resolution {
		case ResolutionRelease:
			completion.Status = model.CompletionStatusAutoCompleted
			completion.AutoCompletedAt = &now
			if err := tx.UpdateScheduleCompletion(ctx, completion); err != nil {
				return err
			}

			trigger := model.PayoutTriggerHoldReleased
			moved, err := tx.AdvancePayoutStatus(ctx, payout.ID,
				model.PayoutStatusOnHold, model.PayoutStatusReadyForPayout, &trigger)
			if err != nil {
				return err
			}
			if !moved {
				return fmt.Errorf("release payout %d: %w", payout.ID, ErrInvalidTransition)
			}
			return nil

		case ResolutionRefund:
			completion.Status = model.CompletionStatusCanceled
			if err := tx.UpdateScheduleCompletion(ctx, completion); err != nil {
				return err
			}

			moved, err := tx.AdvancePayoutStatus(ctx, payout.ID,
				model.PayoutStatusOnHold, model.PayoutStatusCanceled, nil)
			if err != nil {
				return err
			}
			if !moved {
				return fmt.Errorf("cancel payout %d: %w", payout.ID, ErrInvalidTransition)
			}

			return s.returnEscrowSlice(ctx, tx, payout)

		default:
			return fmt.Errorf("unknown resolution %q", resolution)
		}
	})
	if err != nil {
		return err
	}

	s.logger.Info("Hold resolved",
		zap.Int64("completion_id", completionID),
		zap.String("resolution", string(resolution)),
		zap.String("admin", admin.Email),
	)

	return nil
}

// returnEscrowSlice gives one canceled lesson's amount+fee back to the
// learner from both locked balances.
func (s *CompletionService) returnEscrowSlice(ctx context.Context, tx storage.Store, payout *model.TutorPayout) error {
	booking, err := tx.GetBooking(ctx, payout.BookingID)
	if err != nil {
		return err
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
		return fmt.Errorf("escrow for payout %d under-funded: %w", payout.ID, ErrLedgerCorrupt)
	}

	newAvailable := learnerWallet.Available + total
	if err := tx.UpdateWalletBalances(ctx, learnerWallet.ID, newAvailable, learnerWallet.Locked-total); err != nil {
		return err
	}
	_, err = recordAvailableChange(ctx, tx, learnerWallet.ID, total,
		model.TransactionTypeCredit, model.TransactionReasonDisputeRefund, model.TransactionStatusCompleted,
		learnerWallet.Available, newAvailable, &booking.ID, nil)
	if err != nil {
		return err
	}

	return tx.UpdateWalletBalances(ctx, platformWallet.ID, platformWallet.Available, platformWallet.Locked-total)
}

// AutoCompletePastDue finishes every lesson whose confirmation deadline has
// passed and promotes the payouts. Returns the number of lessons advanced;
// an empty due-set is a no-op, so the sweep is safe to re-run.
func (s *CompletionService) AutoCompletePastDue(ctx context.Context) (int, error) {
	now := s.clock.Now()
	advanced := 0

	err := s.store.InTx(ctx, func(tx storage.Store) error {
		due, err := tx.ListDueCompletions(ctx, now)
		if err != nil {
			return err
		}

		for _, completion := range due {
			completion.Status = model.CompletionStatusAutoCompleted
			completion.AutoCompletedAt = &now
			if err := tx.UpdateScheduleCompletion(ctx, completion); err != nil {
				return err
			}

			payout, err := tx.GetPayoutByCompletion(ctx, completion.ID)
			if err != nil {
				return err
			}
			if payout.Status == model.PayoutStatusPending {
				trigger := model.PayoutTriggerAutoCompleted
				if _, err := tx.AdvancePayoutStatus(ctx, payout.ID,
					model.PayoutStatusPending, model.PayoutStatusReadyForPayout, &trigger); err != nil {
					return err
				}
			}

			advanced++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	if advanced > 0 {
		s.logger.Info("Auto-completed past-due schedules", zap.Int("count", advanced))
	}

	return advanced, nil
}
