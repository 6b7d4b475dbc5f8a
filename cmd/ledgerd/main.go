package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/lessonledger/ledger/internal/alert"
	"github.com/lessonledger/ledger/internal/app"
	"github.com/lessonledger/ledger/internal/clock"
	"github.com/lessonledger/ledger/internal/config"
	"github.com/lessonledger/ledger/internal/service"
	"github.com/lessonledger/ledger/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, "migrations")
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	store := postgres.New(pool)
	clk := clock.System()
	calendar := clock.NewCalendar(clk, cfg.BusinessTZOffset)

	var notifier alert.Notifier = alert.Nop{}
	if cfg.TelegramToken != "" {
		tg, err := alert.NewTelegram(cfg.TelegramToken, cfg.AlertChatID, logger)
		if err != nil {
			logger.Fatal("Failed to create alert notifier", zap.Error(err))
		}
		notifier = tg
	}

	completionService := service.NewCompletionService(store, clk, logger)
	payoutService := service.NewPayoutService(store, calendar, notifier, logger)

	scheduler := app.NewScheduler(
		completionService,
		payoutService,
		cfg.SweepInterval,
		cfg.PayoutInterval,
		logger,
	)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logger.Info("Ledger engine started",
		zap.String("environment", cfg.Environment),
		zap.Int("business_tz_offset", cfg.BusinessTZOffset),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
}
