package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lessonledger/ledger/internal/clock"
	"github.com/lessonledger/ledger/internal/fee"
	"github.com/lessonledger/ledger/internal/model"
	"github.com/lessonledger/ledger/internal/storage"
)

type FeeService struct {
	store  storage.Store
	clock  clock.Clock
	logger *zap.Logger
}

func NewFeeService(store storage.Store, clk clock.Clock, logger *zap.Logger) *FeeService {
	return &FeeService{
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

// ActiveFee resolves the fee policy in effect right now. No booking can be
// created without one.
func (s *FeeService) ActiveFee(ctx context.Context) (*model.SystemFee, error) {
	policy, err := s.store.ActiveSystemFee(ctx, s.clock.Now())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoActiveFee
		}
		return nil, fmt.Errorf("resolve active fee: %w", err)
	}

	return policy, nil
}

// QuoteBooking prices a booking against the currently active fee policy and
// returns both, so the caller can freeze the policy reference.
func (s *FeeService) QuoteBooking(ctx context.Context, unitPrice int64, sessions int) (fee.Quote, *model.SystemFee, error) {
	policy, err := s.ActiveFee(ctx)
	if err != nil {
		return fee.Quote{}, nil, err
	}

	quote, err := fee.Calculate(unitPrice, sessions, policy.Percentage, policy.FixedAmount)
	if err != nil {
		return fee.Quote{}, nil, fmt.Errorf("calculate fee: %w", err)
	}

	return quote, policy, nil
}

// CreatePolicy registers a new fee schedule version. Existing rows are
// never edited; bookings keep pointing at the version they were priced with.
func (s *FeeService) CreatePolicy(ctx context.Context, policy *model.SystemFee) error {
	if policy.Percentage == nil && policy.FixedAmount == nil {
		return fmt.Errorf("fee policy needs a percentage or a fixed component")
	}

	if err := s.store.CreateSystemFee(ctx, policy); err != nil {
		return fmt.Errorf("create fee policy: %w", err)
	}

	s.logger.Info("Fee policy created",
		zap.Int64("fee_id", policy.ID),
		zap.String("name", policy.Name),
	)

	return nil
}
