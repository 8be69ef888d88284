package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/set-night/geminichat/internal/config"
	"github.com/set-night/geminichat/internal/domain"
	"github.com/set-night/geminichat/internal/service"
)

func newModelsCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models that can serve generateContent",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			setupLogger(cfg, cmd.ErrOrStderr())

			gemini, err := service.NewGeminiService(service.OptionsFromConfig(cfg))
			if err != nil {
				return fmt.Errorf("create gemini service: %w", err)
			}
			list, err := gemini.ListModels(cmd.Context())
			if err != nil {
				return err
			}
			return printModels(cmd.OutOrStdout(), list, all, gemini.Model())
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include models without generateContent support")
	return cmd
}

func printModels(out io.Writer, list []domain.AIModel, all bool, current string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tINPUT\tOUTPUT\t")
	for _, m := range list {
		if !all && !m.SupportsGenerateContent() {
			continue
		}
		id := m.ID
		if id == current {
			id += " *"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t\n", id, m.DisplayName, m.InputTokenLimit, m.OutputTokenLimit)
	}
	return w.Flush()
}
