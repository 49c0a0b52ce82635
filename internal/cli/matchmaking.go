package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/gomoku-go/internal/api/response"
)

func newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Matchmaking queue commands",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			_, err := requirePlayer()
			return err
		},
	}

	cmd.AddCommand(newMatchJoinCmd())
	cmd.AddCommand(newMatchStatusCmd())
	cmd.AddCommand(newMatchLeaveCmd())

	return cmd
}

func newMatchJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join [variant]",
		Short: "Join the queue, or start a game if someone is waiting",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			variant := "STANDARD"
			if len(args) == 1 {
				variant = args[0]
			}

			var result response.MatchmakingResult
			if err := client.Post("/api/v1/matchmaking", map[string]string{"variant": variant}, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newMatchStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <entry>",
		Short: "Show whether a queue entry has been matched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.MatchmakingEntry
			if err := client.Get("/api/v1/matchmaking/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newMatchLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <entry>",
		Short: "Leave the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/matchmaking/" + args[0]); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Left the queue")
			return nil
		},
	}
}
