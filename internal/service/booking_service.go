package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lessonledger/ledger/internal/fee"
	"github.com/lessonledger/ledger/internal/model"
	"github.com/lessonledger/ledger/internal/storage"
)

type BookingService struct {
	store  storage.Store
	fees   *FeeService
	logger *zap.Logger
}

func NewBookingService(store storage.Store, fees *FeeService, logger *zap.Logger) *BookingService {
	return &BookingService{
		store:  store,
		fees:   fees,
		logger: logger,
	}
}

// CreateBooking creates a booking with its amounts frozen against the
// currently active fee policy.
func (s *BookingService) CreateBooking(ctx context.Context, learnerID, tutorID, subjectID, unitPrice int64, sessions int) (*model.Booking, error) {
	if _, err := s.store.GetUserByID(ctx, learnerID); err != nil {
		return nil, fmt.Errorf("validate learner: %w", err)
	}
	if _, err := s.store.GetUserByID(ctx, tutorID); err != nil {
		return nil, fmt.Errorf("validate tutor: %w", err)
	}

	quote, policy, err := s.fees.QuoteBooking(ctx, unitPrice, sessions)
	if err != nil {
		return nil, err
	}

	booking := &model.Booking{
		LearnerID:       learnerID,
		TutorID:         tutorID,
		SubjectID:       subjectID,
		UnitPrice:       unitPrice,
		Sessions:        sessions,
		TotalAmount:     quote.BaseAmount,
		SystemFeeAmount: quote.FeeAmount,
		SystemFeeID:     policy.ID,
		PaymentStatus:   model.PaymentStatusUnpaid,
		Status:          model.BookingStatusPending,
	}

	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info("Booking created",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("learner_id", learnerID),
		zap.Int64("tutor_id", tutorID),
		zap.Int64("total_amount", booking.TotalAmount),
		zap.Int64("fee_amount", booking.SystemFeeAmount),
		zap.Int64("fee_id", policy.ID),
	)

	return booking, nil
}

// Recalculate re-derives a booking's amounts after its session count
// changed. The fee comes from the booking's frozen policy, never a freshly
// resolved one, and a paid booking's amounts are immutable.
func (s *BookingService) Recalculate(ctx context.Context, bookingID int64, sessions int) (*model.Booking, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus != model.PaymentStatusUnpaid {
		return nil, ErrBookingAlreadyPaid
	}

	policy, err := s.store.GetSystemFee(ctx, booking.SystemFeeID)
	if err != nil {
		return nil, fmt.Errorf("load booking fee policy: %w", err)
	}

	quote, err := fee.Calculate(booking.UnitPrice, sessions, policy.Percentage, policy.FixedAmount)
	if err != nil {
		return nil, fmt.Errorf("calculate fee: %w", err)
	}

	if err := s.store.UpdateBookingAmounts(ctx, bookingID, sessions, quote.BaseAmount, quote.FeeAmount); err != nil {
		return nil, err
	}

	booking.Sessions = sessions
	booking.TotalAmount = quote.BaseAmount
	booking.SystemFeeAmount = quote.FeeAmount

	s.logger.Info("Booking amounts recalculated",
		zap.Int64("booking_id", bookingID),
		zap.Int("sessions", sessions),
		zap.Int64("total_amount", quote.BaseAmount),
		zap.Int64("fee_amount", quote.FeeAmount),
	)

	return booking, nil
}

// Confirm moves a pending booking to confirmed.
func (s *BookingService) Confirm(ctx context.Context, bookingID int64) error {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status != model.BookingStatusPending {
		return ErrInvalidTransition
	}

	if err := s.store.UpdateBookingStatus(ctx, bookingID, model.BookingStatusConfirmed); err != nil {
		return err
	}

	s.logger.Info("Booking confirmed", zap.Int64("booking_id", bookingID))

	return nil
}
