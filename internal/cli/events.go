package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/gomoku-go/internal/model"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream live events",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "game <id>",
		Short: "Stream a game's events",
		Long: `Follow a game as it is played. Anyone may watch.

Events:
  round_played  a stone was placed or the swap was decided
  game_ended    the game was won, drawn, timed out or left

Press Ctrl+C to stop.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watch("/api/v1/games/"+args[0]+"/events", "game "+args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "me",
		Short: "Stream the current player's matchmaking events",
		Long: `Follow your own matchmaking activity.

Events:
  queue_joined, queue_left  a queue entry was created or withdrawn
  match_found               an opponent was found and a game created

Press Ctrl+C to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := requirePlayer()
			if err != nil {
				return err
			}
			return watch("/api/v1/players/"+id+"/events", "player "+id)
		},
	})

	return cmd
}

func watch(path, label string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := NewOutput(cfg.Output)
	if cfg.Output != "json" {
		out.PrintMessage("Watching " + label)
	}

	err := client.Stream(ctx, path, func(ev StreamEvent) {
		// the greeting carries no game data
		if ev.Name == "connected" {
			return
		}
		if cfg.Output == "json" {
			fmt.Fprintln(out.w, ev.Data)
			return
		}
		out.PrintMessage(describeEvent(ev))
	})
	if err != nil {
		return err
	}

	if cfg.Output != "json" {
		out.PrintMessage("Disconnected")
	}
	return nil
}

// wireEvent mirrors model.Event with the payload left undecoded
type wireEvent struct {
	Type      model.EventType `json:"type"`
	GameID    model.GameID    `json:"game_id"`
	PlayerID  model.PlayerID  `json:"player_id"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp string          `json:"timestamp"`
}

// describeEvent renders one event as a line of text
func describeEvent(ev StreamEvent) string {
	var e wireEvent
	if err := json.Unmarshal([]byte(ev.Data), &e); err != nil {
		return ev.Name + ": " + ev.Data
	}

	switch e.Type {
	case model.EventRoundPlayed:
		var p model.RoundPlayedPayload
		_ = json.Unmarshal(e.Payload, &p)
		switch {
		case p.Cell != "":
			return fmt.Sprintf("%s played %s, now %s", e.PlayerID, p.Cell, p.State)
		case p.Outcome == model.OutcomeTooLate:
			return fmt.Sprintf("%s ran out of time, %s", e.PlayerID, p.State)
		case p.Swapped:
			return fmt.Sprintf("%s swapped colours", e.PlayerID)
		default:
			return fmt.Sprintf("%s kept colours", e.PlayerID)
		}

	case model.EventGameEnded:
		var p model.GameEndedPayload
		_ = json.Unmarshal(e.Payload, &p)
		if p.Winner == "" {
			return fmt.Sprintf("game %s ended: %s (%s)", e.GameID, p.State, p.Reason)
		}
		return fmt.Sprintf("game %s ended: %s wins (%s)", e.GameID, p.Winner, p.Reason)

	case model.EventMatchFound:
		var p model.MatchFoundPayload
		_ = json.Unmarshal(e.Payload, &p)
		return fmt.Sprintf("matched: game %s, %s (black) vs %s (white), %s", e.GameID, p.PlayerBlack, p.PlayerWhite, p.Variant)

	case model.EventQueueJoined, model.EventQueueLeft:
		var p model.QueuePayload
		_ = json.Unmarshal(e.Payload, &p)
		return fmt.Sprintf("%s: entry %s (%s)", e.Type, p.EntryID, p.Variant)
	}

	return ev.Name + ": " + ev.Data
}
