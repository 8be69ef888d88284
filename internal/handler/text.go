package handler

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/geminichat/internal/config"
	tg "github.com/set-night/geminichat/internal/telegram"
)

// HandleDefault receives every update no command matched and forwards
// plain text to the model.
func (h *Handler) HandleDefault(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.reply(ctx, b, update)
}

func (h *Handler) reply(ctx context.Context, m tg.Messenger, update *models.Update) {
	msg := update.Message
	if msg == nil || strings.TrimSpace(msg.Text) == "" {
		return
	}
	chatID := msg.Chat.ID

	if strings.HasPrefix(msg.Text, "/") {
		tg.SendText(ctx, m, chatID, "Unknown command. Try /start.")
		return
	}

	// One request at a time. The bot runs several workers, so a second
	// message can arrive while the first is still waiting on the model.
	if h.session.Busy() || !h.inFlight.CompareAndSwap(false, true) {
		tg.SendText(ctx, m, chatID, config.BusyText)
		return
	}
	defer h.inFlight.Store(false)

	stopTyping := tg.StartTyping(ctx, m, chatID, config.TypingInterval)
	replies := h.session.SendAsync(ctx, msg.Text)
	if replies == nil {
		stopTyping()
		return
	}
	reply := <-replies
	stopTyping()

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.TelegramSendTimeout)
	defer cancel()
	if err := tg.SendLongMessage(sendCtx, m, chatID, reply.Text); err != nil {
		tg.SendText(sendCtx, m, chatID, "❌ Could not deliver the reply.")
	}
}
