package alert

import (
	"context"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

// Telegram sends alerts to an operator chat.
type Telegram struct {
	bot    *bot.Bot
	chatID string
	logger *zap.Logger
}

// NewTelegram builds a notifier for the given bot token and chat.
func NewTelegram(token, chatID string, logger *zap.Logger) (*Telegram, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, err
	}

	return &Telegram{
		bot:    b,
		chatID: chatID,
		logger: logger,
	}, nil
}

func (t *Telegram) Alert(ctx context.Context, message string) {
	_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   message,
	})
	if err != nil {
		t.logger.Error("Failed to deliver operator alert",
			zap.String("message", message),
			zap.Error(err),
		)
	}
}
