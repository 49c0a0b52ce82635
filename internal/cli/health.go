package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/gomoku-go/internal/api/response"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Health
			if err := client.Get("/api/v1/health", &result); err != nil {
				return fmt.Errorf("server %s: %w", cfg.ServerURL, err)
			}

			out := NewOutput(cfg.Output)
			if cfg.Output == "json" {
				out.Print(result)
				return nil
			}
			out.PrintMessage(fmt.Sprintf("%s is %s", cfg.ServerURL, result.Status))
			return nil
		},
	}
}
