package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/spf13/cobra"

	"github.com/set-night/geminichat/internal/config"
	"github.com/set-night/geminichat/internal/handler"
	"github.com/set-night/geminichat/internal/middleware"
	"github.com/set-night/geminichat/internal/service"
)

func newTelegramCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "telegram",
		Short: "Serve the conversation to a single Telegram chat",
		RunE:  runTelegram,
	}
}

func runTelegram(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateTelegram(); err != nil {
		return err
	}
	setupLogger(cfg, os.Stdout)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gemini, err := service.NewGeminiService(service.OptionsFromConfig(cfg))
	if err != nil {
		return fmt.Errorf("create gemini service: %w", err)
	}
	session := service.NewChatSession(gemini)

	// Handler pointer for use in default handler closure
	var h *handler.Handler

	opts := []bot.Option{
		bot.WithWorkers(config.TelegramWorkers),
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
			middleware.OwnerOnly(cfg.TelegramOwnerChatID),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil {
				return
			}
			h.HandleDefault(ctx, b, update)
		}),
	}

	b, err := bot.New(cfg.TelegramBotToken, opts...)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("get bot info: %w", err)
	}
	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username)

	h = handler.New(handler.Deps{
		Bot:     b,
		Session: session,
		Models:  gemini,
	})
	h.Register()

	slog.Info("starting bot", "username", me.Username, "model", gemini.Model(), "owner_chat_id", cfg.TelegramOwnerChatID)
	b.Start(ctx)

	slog.Info("bot stopped gracefully")
	return nil
}
