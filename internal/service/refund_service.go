package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lessonledger/ledger/internal/clock"
	"github.com/lessonledger/ledger/internal/fee"
	"github.com/lessonledger/ledger/internal/model"
	"github.com/lessonledger/ledger/internal/storage"
)

type RefundService struct {
	store  storage.Store
	clock  clock.Clock
	logger *zap.Logger
}

func NewRefundService(store storage.Store, clk clock.Clock, logger *zap.Logger) *RefundService {
	return &RefundService{
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

// Create records a refund request against a confirmed booking. The
// approved amount is computed from the policy once, here, and never
// recomputed; a later policy change does not touch open requests.
func (s *RefundService) Create(ctx context.Context, bookingID int64, learnerEmail string, policyID int64, reason string) (*model.BookingRefundRequest, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != model.BookingStatusConfirmed {
		return nil, ErrBookingNotConfirmed
	}

	learner, err := s.store.GetUserByEmail(ctx, learnerEmail)
	if err != nil {
		return nil, fmt.Errorf("validate learner: %w", err)
	}
	if learner.ID != booking.LearnerID {
		return nil, ErrNotBookingLearner
	}

	policy, err := s.store.GetRefundPolicy(ctx, policyID)
	if err != nil {
		return nil, err
	}
	if !policy.IsActive {
		return nil, ErrPolicyInactive
	}

	amount, err := fee.RefundAmount(booking.TotalAmount, policy.RefundPercentage)
	if err != nil {
		return nil, fmt.Errorf("compute refund amount: %w", err)
	}

	request := &model.BookingRefundRequest{
		BookingID:      bookingID,
		LearnerID:      learner.ID,
		RefundPolicyID: policyID,
		Reason:         reason,
		ApprovedAmount: amount,
		Status:         model.RefundRequestStatusPending,
	}
	if err := s.store.CreateRefundRequest(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info("Refund request created",
		zap.Int64("request_id", request.ID),
		zap.Int64("booking_id", bookingID),
		zap.Int64("approved_amount", amount),
	)

	return request, nil
}

// UpdateStatus adjudicates a pending request, recording the acting admin.
// Rejection moves no money. Approval releases the frozen amount from the
// remaining escrow back to the learner, cancels the booking's open payouts
// and credits the tutor with whatever share the policy lets them keep, all
// in one transaction.
func (s *RefundService) UpdateStatus(ctx context.Context, requestID int64, status model.RefundRequestStatus, adminID int64) error {
	if status != model.RefundRequestStatusApproved && status != model.RefundRequestStatusRejected {
		return fmt.Errorf("refund request cannot move to %q: %w", status, ErrInvalidTransition)
	}

	admin, err := s.store.GetUserByID(ctx, adminID)
	if err != nil {
		return fmt.Errorf("validate admin: %w", err)
	}

	err = s.store.InTx(ctx, func(tx storage.Store) error {
		request, err := tx.GetRefundRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if request.Status != model.RefundRequestStatusPending {
			return ErrInvalidTransition
		}

		now := s.clock.Now()
		request.Status = status
		request.ReviewedBy = &admin.ID
		request.ReviewedAt = &now
		if err := tx.UpdateRefundRequest(ctx, request); err != nil {
			return err
		}

		if status == model.RefundRequestStatusRejected {
			return nil
		}

		return s.applyRefund(ctx, tx, request)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Refund request adjudicated",
		zap.Int64("request_id", requestID),
		zap.String("status", string(status)),
		zap.String("admin", admin.Email),
	)

	return nil
}

// applyRefund settles an approved request: every open payout is canceled,
// the learner recovers the approved amount, the tutor keeps the rest of the
// released escrow.
func (s *RefundService) applyRefund(ctx context.Context, tx storage.Store, request *model.BookingRefundRequest) error {
	booking, err := tx.GetBooking(ctx, request.BookingID)
	if err != nil {
		return err
	}
	if booking.PaymentStatus != model.PaymentStatusPaid {
		return ErrBookingNotPaid
	}

	open, err := tx.ListOpenPayoutsByBooking(ctx, booking.ID)
	if err != nil {
		return err
	}

	var released int64
	for _, payout := range open {
		moved, err := tx.AdvancePayoutStatus(ctx, payout.ID, payout.Status, model.PayoutStatusCanceled, nil)
		if err != nil {
			return err
		}
		if !moved {
			return fmt.Errorf("cancel payout %d: %w", payout.ID, ErrInvalidTransition)
		}
		released += payout.TotalToRelease()
	}

	if request.ApprovedAmount > released {
		return ErrRefundExceedsEscrow
	}
	tutorShare := released - request.ApprovedAmount

	learnerWallet, err := tx.GetWalletByUserID(ctx, booking.LearnerID)
	if err != nil {
		return fmt.Errorf("learner wallet: %w", err)
	}
	platformWallet, err := tx.GetPlatformWallet(ctx)
	if err != nil {
		return err
	}
	if learnerWallet.Locked < released || platformWallet.Locked < released {
		return fmt.Errorf("escrow for booking %d under-funded: %w", booking.ID, ErrLedgerCorrupt)
	}

	newLearnerAvailable := learnerWallet.Available + request.ApprovedAmount
	if err := tx.UpdateWalletBalances(ctx, learnerWallet.ID, newLearnerAvailable, learnerWallet.Locked-released); err != nil {
		return err
	}
	// A 0% policy approves a refund of nothing; the escrow still unwinds
	// but there is no learner credit to record.
	if request.ApprovedAmount > 0 {
		_, err = recordAvailableChange(ctx, tx, learnerWallet.ID, request.ApprovedAmount,
			model.TransactionTypeCredit, model.TransactionReasonRefund, model.TransactionStatusCompleted,
			learnerWallet.Available, newLearnerAvailable, &booking.ID, nil)
		if err != nil {
			return err
		}
	}

	if err := tx.UpdateWalletBalances(ctx, platformWallet.ID, platformWallet.Available, platformWallet.Locked-released); err != nil {
		return err
	}

	if tutorShare > 0 {
		tutorWallet, err := tx.GetWalletByUserID(ctx, booking.TutorID)
		if err != nil {
			return fmt.Errorf("tutor wallet: %w", err)
		}
		newTutorAvailable := tutorWallet.Available + tutorShare
		if err := tx.UpdateWalletBalances(ctx, tutorWallet.ID, newTutorAvailable, tutorWallet.Locked); err != nil {
			return err
		}
		_, err = recordAvailableChange(ctx, tx, tutorWallet.ID, tutorShare,
			model.TransactionTypeCredit, model.TransactionReasonRetainedShare, model.TransactionStatusCompleted,
			tutorWallet.Available, newTutorAvailable, &booking.ID, nil)
		if err != nil {
			return err
		}
	}

	if err := tx.UpdateBookingPaymentStatus(ctx, booking.ID, model.PaymentStatusRefunded); err != nil {
		return err
	}
	return tx.UpdateBookingStatus(ctx, booking.ID, model.BookingStatusCanceled)
}
