package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN       string
	Environment string

	// Operator alert channel; alerts are disabled when the token is empty.
	TelegramToken string
	AlertChatID   string

	// Fixed UTC offset, in hours, of the business calendar used for
	// payout day boundaries.
	BusinessTZOffset int

	// How long a learner has to confirm a lesson before the sweep
	// auto-completes it.
	ConfirmWindow time.Duration
	// Earliest payout release after escrow is locked.
	ReleaseDelay time.Duration

	SweepInterval  time.Duration
	PayoutInterval time.Duration
}

func Load() (*Config, error) {
	// Load .env when present; plain environment variables otherwise.
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		DBDSN:         os.Getenv("DB_DSN"),
		Environment:   os.Getenv("ENV"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		AlertChatID:   os.Getenv("ALERT_CHAT_ID"),
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.TelegramToken != "" && cfg.AlertChatID == "" {
		return nil, fmt.Errorf("ALERT_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	var err error
	if cfg.BusinessTZOffset, err = intEnv("BUSINESS_TZ_OFFSET", 7); err != nil {
		return nil, err
	}
	if cfg.ConfirmWindow, err = durationEnv("CONFIRM_WINDOW", 72*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ReleaseDelay, err = durationEnv("RELEASE_DELAY", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = durationEnv("SWEEP_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.PayoutInterval, err = durationEnv("PAYOUT_INTERVAL", 6*time.Hour); err != nil {
		return nil, err
	}

	return cfg, nil
}

func intEnv(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return v, nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return v, nil
}
