package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lessonledger/ledger/internal/service"
)

// Scheduler runs the settlement batch jobs. Each job loops in its own
// goroutine off a ticker, so a single writer per process drives each sweep;
// cross-process overlap is handled by the row locks inside the services.
type Scheduler struct {
	completions *service.CompletionService
	payouts     *service.PayoutService

	sweepInterval  time.Duration
	payoutInterval time.Duration

	logger   *zap.Logger
	stopChan chan struct{}
}

func NewScheduler(
	completions *service.CompletionService,
	payouts *service.PayoutService,
	sweepInterval, payoutInterval time.Duration,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		completions:    completions,
		payouts:        payouts,
		sweepInterval:  sweepInterval,
		payoutInterval: payoutInterval,
		logger:         logger,
		stopChan:       make(chan struct{}),
	}
}

// Start launches the background jobs.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	go s.runAutoCompleteTask(ctx)
	go s.runPayoutTask(ctx)
}

// Stop stops the background jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

func (s *Scheduler) runAutoCompleteTask(ctx context.Context) {
	// First run right at startup.
	s.autoComplete(ctx)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.autoComplete(ctx)
		case <-s.stopChan:
			s.logger.Info("Auto-complete task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Auto-complete task cancelled")
			return
		}
	}
}

func (s *Scheduler) runPayoutTask(ctx context.Context) {
	s.processPayouts(ctx)

	ticker := time.NewTicker(s.payoutInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.processPayouts(ctx)
		case <-s.stopChan:
			s.logger.Info("Payout task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Payout task cancelled")
			return
		}
	}
}

func (s *Scheduler) autoComplete(ctx context.Context) {
	count, err := s.completions.AutoCompletePastDue(ctx)
	if err != nil {
		s.logger.Error("Auto-complete sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		s.logger.Info("Auto-complete sweep finished", zap.Int("advanced", count))
	}
}

func (s *Scheduler) processPayouts(ctx context.Context) {
	count, err := s.payouts.ProcessDuePayouts(ctx)
	if err != nil {
		// The batch already rolled back and alerting already fired for
		// consistency faults; the next tick retries safely.
		s.logger.Error("Payout batch failed", zap.Error(err))
		return
	}
	if count > 0 {
		s.logger.Info("Payout batch finished", zap.Int("released", count))
	}
}
