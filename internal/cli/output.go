package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mcoot/gomoku-go/internal/api/response"
	"github.com/mcoot/gomoku-go/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Player:
		fmt.Fprintf(o.w, "Player: %s (%s)\n", v.DisplayName, v.ID)
	case response.Stats:
		o.printStats(v)
	case response.Ranking:
		o.printRanking(v)
	case response.VariantList:
		o.printVariants(v)
	case response.Game:
		o.printGame(v)
	case response.GameList:
		o.printGameList(v)
	case response.RoundResult:
		fmt.Fprintf(o.w, "Outcome: %s\n", v.Outcome)
		o.printGame(v.Game)
	case response.MatchmakingResult:
		o.printMatchmaking(v)
	case response.MatchmakingEntry:
		o.printEntry(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printStats(s response.Stats) {
	fmt.Fprintf(o.w, "Player: %s\n", s.PlayerID)
	fmt.Fprintf(o.w, "Rank: %d\n", s.Rank)
	fmt.Fprintf(o.w, "Points: %d\n", s.Points)
	fmt.Fprintf(o.w, "Games: %d (W %d / L %d / D %d)\n", s.GamesPlayed, s.Wins, s.Losses, s.Draws)
}

func (o *Output) printRanking(r response.Ranking) {
	if len(r.Players) == 0 {
		fmt.Fprintln(o.w, "No players yet")
		return
	}
	fmt.Fprintf(o.w, "%-5s %-20s %7s %5s %5s %5s\n", "RANK", "PLAYER", "POINTS", "W", "L", "D")
	for _, s := range r.Players {
		fmt.Fprintf(o.w, "%-5d %-20s %7d %5d %5d %5d\n", s.Rank, s.PlayerID, s.Points, s.Wins, s.Losses, s.Draws)
	}
}

func (o *Output) printVariants(l response.VariantList) {
	fmt.Fprintf(o.w, "%-14s %5s %-9s %-16s %6s\n", "NAME", "BOARD", "OPENING", "PLACEMENT", "POINTS")
	for _, v := range l.Variants {
		fmt.Fprintf(o.w, "%-14s %5d %-9s %-16s %6d\n", v.Name, v.BoardDim, v.OpeningRule, v.PlacementRule, v.PointsAwarded)
	}
}

func (o *Output) printGame(g response.Game) {
	fmt.Fprintf(o.w, "Game: %s (%s)\n", g.ID, g.Variant.Name)
	fmt.Fprintf(o.w, "State: %s\n", g.State)
	fmt.Fprintf(o.w, "Black (X): %s\n", g.PlayerBlack)
	fmt.Fprintf(o.w, "White (O): %s\n", g.PlayerWhite)
	if g.Winner != "" {
		fmt.Fprintf(o.w, "Winner: %s\n", g.Winner)
	}
	if g.Deadline != nil {
		fmt.Fprintf(o.w, "Deadline: %s\n", g.Deadline.Format(time.RFC3339))
	}
	fmt.Fprint(o.w, RenderBoard(g.Board, g.Variant.BoardDim))
}

func (o *Output) printGameList(l response.GameList) {
	if len(l.Games) == 0 {
		fmt.Fprintln(o.w, "No games")
		return
	}
	for _, g := range l.Games {
		fmt.Fprintf(o.w, "%s  %-12s %-18s %s vs %s\n", g.ID, g.Variant.Name, g.State, g.PlayerBlack, g.PlayerWhite)
	}
}

func (o *Output) printMatchmaking(m response.MatchmakingResult) {
	if !m.Matched {
		fmt.Fprintf(o.w, "Queued for %s as entry %s\n", m.Entry.Variant, m.Entry.ID)
		return
	}
	fmt.Fprintf(o.w, "Matched with %s\n", m.Entry.UserID)
	if m.Game != nil {
		o.printGame(*m.Game)
	}
}

func (o *Output) printEntry(e response.MatchmakingEntry) {
	fmt.Fprintf(o.w, "Entry: %s\n", e.ID)
	fmt.Fprintf(o.w, "Variant: %s\n", e.Variant)
	fmt.Fprintf(o.w, "Status: %s\n", e.Status)
	if e.GameID != "" {
		fmt.Fprintf(o.w, "Game: %s\n", e.GameID)
	}
}

// RenderBoard draws the board as text: rows numbered from 1 at the top,
// columns lettered from A, X for black and O for white
func RenderBoard(b model.Board, dim int) string {
	var sb strings.Builder

	sb.WriteString("    ")
	for col := 0; col < dim; col++ {
		sb.WriteString(" " + string(rune('A'+col)))
	}
	sb.WriteString("\n")

	for row := 0; row < dim; row++ {
		fmt.Fprintf(&sb, "%3d ", row+1)
		for col := 0; col < dim; col++ {
			mark := "."
			if p, ok := b.PieceAt(model.Cell{Row: row, Col: col}); ok {
				mark = "X"
				if p == model.PieceWhite {
					mark = "O"
				}
			}
			sb.WriteString(" " + mark)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
