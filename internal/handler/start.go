package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/geminichat/internal/config"
	"github.com/set-night/geminichat/internal/domain"
	tg "github.com/set-night/geminichat/internal/telegram"
)

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.start(ctx, b, update)
}

func (h *Handler) start(ctx context.Context, m tg.Messenger, update *models.Update) {
	if update.Message == nil {
		return
	}
	text := config.GreetingText + "\n\n/model: show the current model"
	if n := len(h.session.Transcript()); n > 0 {
		text += fmt.Sprintf("\n\nThis conversation already has %d messages.", n)
	}
	tg.SendText(ctx, m, update.Message.Chat.ID, text)
}

func (h *Handler) handleModel(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.model(ctx, b, update)
}

func (h *Handler) model(ctx context.Context, m tg.Messenger, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	id := h.models.Model()

	info, err := h.models.GetModel(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrModelNotFound) {
			slog.Error("get model", "error", err, "model", id)
		}
		tg.SendText(ctx, m, chatID, "🤖 Model: "+id)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🤖 Model: %s\n", info.ID)
	if info.DisplayName != "" {
		fmt.Fprintf(&sb, "Name: %s\n", info.DisplayName)
	}
	fmt.Fprintf(&sb, "Context: %d in / %d out tokens", info.InputTokenLimit, info.OutputTokenLimit)
	tg.SendText(ctx, m, chatID, sb.String())
}
