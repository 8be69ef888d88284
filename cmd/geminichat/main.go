package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/set-night/geminichat/internal/config"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "geminichat",
		Short:         "Chat with Gemini from the terminal or Telegram",
		Long:          "geminichat keeps one conversation with a Gemini model and renders it in a terminal widget or a Telegram chat.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newTUICmd())
	cmd.AddCommand(newTelegramCmd())
	cmd.AddCommand(newModelsCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "geminichat %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// setupLogger installs a JSON slog logger writing to w.
func setupLogger(cfg *config.Config, w io.Writer) {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
