package middleware

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// OwnerOnly drops every update that does not come from ownerChatID, so the
// bot serves exactly one conversation.
func OwnerOnly(ownerChatID int64) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			chatID, kind := ChatOf(update)
			if chatID != ownerChatID {
				slog.Debug("update from foreign chat ignored", "chat_id", chatID, "type", kind)
				return
			}
			next(ctx, b, update)
		}
	}
}
