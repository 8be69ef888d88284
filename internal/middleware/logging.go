package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Logging logs each update with its chat and handling time.
func Logging() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			start := time.Now()
			chatID, kind := ChatOf(update)

			next(ctx, b, update)

			slog.Debug("update processed",
				"type", kind,
				"chat_id", chatID,
				"update_id", update.ID,
				"duration", time.Since(start),
			)
		}
	}
}

// ChatOf returns the chat an update belongs to and a short update kind.
func ChatOf(update *models.Update) (int64, string) {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID, "message"
	case update.EditedMessage != nil:
		return update.EditedMessage.Chat.ID, "edited_message"
	case update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil:
		return update.CallbackQuery.Message.Message.Chat.ID, "callback_query"
	default:
		return 0, "unknown"
	}
}
