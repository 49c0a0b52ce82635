package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/gomoku-go/internal/api/response"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player management commands",
	}

	cmd.AddCommand(newPlayerCreateCmd())
	cmd.AddCommand(newPlayerUseCmd())
	cmd.AddCommand(newPlayerGetCmd())
	cmd.AddCommand(newPlayerStatsCmd())

	return cmd
}

func newPlayerCreateCmd() *cobra.Command {
	var name, id string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a player and act as them from now on",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"display_name": name}
			if id != "" {
				req["id"] = id
			}
			var result response.Player

			if err := client.Post("/api/v1/players", req, &result); err != nil {
				return err
			}

			if err := cfg.SavePlayer(result.ID); err != nil {
				return fmt.Errorf("failed to save player: %w", err)
			}
			client.SetPlayer(result.ID)

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&id, "id", "", "Player id (generated if omitted)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPlayerUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <id>",
		Short: "Act as an existing player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Player
			if err := client.Get("/api/v1/players/"+args[0], &result); err != nil {
				return err
			}
			if err := cfg.SavePlayer(result.ID); err != nil {
				return fmt.Errorf("failed to save player: %w", err)
			}
			client.SetPlayer(result.ID)

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newPlayerGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show a player (defaults to the current player)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := playerArg(args)
			if err != nil {
				return err
			}
			var result response.Player
			if err := client.Get("/api/v1/players/"+id, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newPlayerStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [id]",
		Short: "Show a player's record (defaults to the current player)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := playerArg(args)
			if err != nil {
				return err
			}
			var result response.Stats
			if err := client.Get("/api/v1/players/"+id+"/stats", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRankingCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "ranking",
		Short: "Show the players ranked by points",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Ranking
			if err := client.Get(fmt.Sprintf("/api/v1/ranking?limit=%d", limit), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of players to show (0 for all)")

	return cmd
}

// playerArg returns the explicit id argument or the current player
func playerArg(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return requirePlayer()
}

// requirePlayer returns the current player or an error telling the user how to set one
func requirePlayer() (string, error) {
	if cfg.PlayerID == "" {
		return "", fmt.Errorf("no current player: run 'gomoku player create' or pass --player")
	}
	return cfg.PlayerID, nil
}
