package middleware

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/geminichat/internal/config"
	tg "github.com/set-night/geminichat/internal/telegram"
)

// Recover turns a handler panic into a log entry and a short notice in the
// chat the update came from.
func Recover() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			var m tg.Messenger
			if b != nil {
				m = b
			}
			defer recoverUpdate(ctx, m, update)
			next(ctx, b, update)
		}
	}
}

// recoverUpdate must be deferred directly for recover to see the panic.
func recoverUpdate(ctx context.Context, m tg.Messenger, update *models.Update) {
	r := recover()
	if r == nil {
		return
	}

	chatID, kind := ChatOf(update)
	slog.Error("handler panicked",
		"panic", r,
		"type", kind,
		"chat_id", chatID,
		"update_id", update.ID,
		"stack", string(debug.Stack()),
	)
	if m == nil || chatID == 0 {
		return
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.TelegramSendTimeout)
	defer cancel()
	tg.SendText(sendCtx, m, chatID, config.PanicText)
}
