package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/set-night/geminichat/internal/config"
	"github.com/set-night/geminichat/internal/service"
	"github.com/set-night/geminichat/internal/tui"
)

func newTUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Chat in the terminal (default)",
		RunE:  runTUI,
	}
	cmd.Flags().String("style", "dark", "markdown style for model replies: dark, light or notty")
	return cmd
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The terminal belongs to the widget, so logs go to a file.
	logOut, closeLog, err := openLogFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()
	setupLogger(cfg, logOut)

	gemini, err := service.NewGeminiService(service.OptionsFromConfig(cfg))
	if err != nil {
		return fmt.Errorf("create gemini service: %w", err)
	}
	session := service.NewChatSession(gemini)

	style := "dark"
	if f := cmd.Flags().Lookup("style"); f != nil {
		style = f.Value.String()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting terminal chat", "model", gemini.Model())
	return tui.Run(ctx, session, tui.Options{
		ModelName:     gemini.Model(),
		MarkdownStyle: style,
	})
}

func openLogFile(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

