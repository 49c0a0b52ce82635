package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/gomoku-go/internal/api/response"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameListCmd())
	cmd.AddCommand(newGamePlayCmd())
	cmd.AddCommand(newGameSwapCmd())
	cmd.AddCommand(newGameLeaveCmd())

	return cmd
}

func newGameCreateCmd() *cobra.Command {
	var black, white, variant string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start a game between two players",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"player_black": black,
				"player_white": white,
				"variant":      variant,
			}
			var result response.Game

			if err := client.Post("/api/v1/games", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&black, "black", "", "Black player id (required)")
	cmd.Flags().StringVar(&white, "white", "", "White player id (required)")
	cmd.Flags().StringVar(&variant, "variant", "STANDARD", "Variant name")
	_ = cmd.MarkFlagRequired("black")
	_ = cmd.MarkFlagRequired("white")

	return cmd
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a game and its board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Game

			if err := client.Get("/api/v1/games/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameListCmd() *cobra.Command {
	var player string
	var mine bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List games, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/games"
			if mine {
				id, err := requirePlayer()
				if err != nil {
					return err
				}
				player = id
			}
			if player != "" {
				path += "?player=" + player
			}

			var result response.GameList
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&player, "for", "", "Only games of this player")
	cmd.Flags().BoolVar(&mine, "mine", false, "Only games of the current player")

	return cmd
}

func newGamePlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play <id> <cell>",
		Short: "Place a stone, e.g. 'play <id> 8H'",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requirePlayer(); err != nil {
				return err
			}
			return playRound(args[0], map[string]any{"cell": args[1]})
		},
	}
}

func newGameSwapCmd() *cobra.Command {
	var keep bool

	cmd := &cobra.Command{
		Use:   "swap <id>",
		Short: "As white in a SWAP game, take over the opening stone (or --keep colours)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requirePlayer(); err != nil {
				return err
			}
			return playRound(args[0], map[string]any{"wants_to_swap": !keep})
		},
	}

	cmd.Flags().BoolVar(&keep, "keep", false, "Keep the current colours")

	return cmd
}

func playRound(gameID string, body map[string]any) error {
	var result response.RoundResult
	if err := client.Post("/api/v1/games/"+gameID+"/rounds", body, &result); err != nil {
		return err
	}

	out := NewOutput(cfg.Output)
	out.Print(result)
	return nil
}

func newGameLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <id>",
		Short: "Forfeit a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requirePlayer(); err != nil {
				return err
			}
			var result response.Game

			if err := client.Post("/api/v1/games/"+args[0]+"/leave", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newVariantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List the available rule variants",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.VariantList
			if err := client.Get("/api/v1/variants", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
