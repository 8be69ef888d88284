package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/geminichat/internal/config"
)

// Messenger is the part of *bot.Bot the front end talks through.
type Messenger interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
}

// fenceReserve leaves room for the closing fence FixMarkdown may append.
const fenceReserve = 8

// SendLongMessage sends text as one or more messages. Every chunk is repaired
// separately so a code block cut in two still parses; chunks Telegram refuses
// as Markdown are resent as plain text.
func SendLongMessage(ctx context.Context, m Messenger, chatID int64, text string) error {
	for _, part := range SplitMessage(text, config.MaxTelegramMessageLen-fenceReserve) {
		text := part
		if !IsBalanced(part) {
			text = FixMarkdown(part)
			slog.Debug("markdown chunk repaired", "chat_id", chatID, "runes", utf8.RuneCountInString(part))
		}
		params := &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      text,
			ParseMode: models.ParseModeMarkdownV1,
		}
		if _, err := m.SendMessage(ctx, params); err != nil {
			slog.Warn("markdown send failed, falling back to plain text", "error", err, "chat_id", chatID)
			params.Text = part
			params.ParseMode = ""
			if _, err := m.SendMessage(ctx, params); err != nil {
				return fmt.Errorf("send message: %w", err)
			}
		}
	}
	return nil
}

// SendText sends a short plain message and logs failures.
func SendText(ctx context.Context, m Messenger, chatID int64, text string) {
	if _, err := m.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		slog.Error("send message", "error", err, "chat_id", chatID)
	}
}

// StartTyping shows "typing..." every interval until the returned func is called.
func StartTyping(ctx context.Context, m Messenger, chatID int64, interval time.Duration) context.CancelFunc {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			m.SendChatAction(ctx, &bot.SendChatActionParams{
				ChatID: chatID,
				Action: models.ChatActionTyping,
			})
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
