package response

import (
	"time"

	"github.com/mcoot/gomoku-go/internal/model"
)

// Player represents a player in API responses
type Player struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		CreatedAt:   p.CreatedAt,
	}
}

// Stats represents a player's record
type Stats struct {
	PlayerID    string `json:"player_id"`
	GamesPlayed int    `json:"games_played"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Draws       int    `json:"draws"`
	Points      int    `json:"points"`
	Rank        int    `json:"rank"`
}

// StatsFromModel converts model.PlayerStats
func StatsFromModel(s model.PlayerStats) Stats {
	return Stats{
		PlayerID:    string(s.PlayerID),
		GamesPlayed: s.GamesPlayed,
		Wins:        s.Wins,
		Losses:      s.Losses,
		Draws:       s.Draws,
		Points:      s.Points,
		Rank:        s.Rank,
	}
}

// Ranking is the response for the ranking endpoint
type Ranking struct {
	Players []Stats `json:"players"`
}

// RankingFromModel converts a ranked slice of stats
func RankingFromModel(stats []model.PlayerStats) Ranking {
	out := Ranking{Players: make([]Stats, 0, len(stats))}
	for _, s := range stats {
		out.Players = append(out.Players, StatsFromModel(s))
	}
	return out
}

// Variant represents a rule configuration
type Variant struct {
	Name          string `json:"name"`
	BoardDim      int    `json:"board_dim"`
	OpeningRule   string `json:"opening_rule"`
	PlacementRule string `json:"placement_rule"`
	PointsAwarded int    `json:"points_awarded"`
}

// VariantFromModel converts model.Variant
func VariantFromModel(v model.Variant) Variant {
	return Variant{
		Name:          string(v.Name),
		BoardDim:      v.BoardDim,
		OpeningRule:   string(v.OpeningRule),
		PlacementRule: string(v.PlacementRule),
		PointsAwarded: v.PointsAwarded,
	}
}

// VariantList is the response for the variant catalog
type VariantList struct {
	Variants []Variant `json:"variants"`
}

// VariantListFromModel converts the variant catalog
func VariantListFromModel(variants []model.Variant) VariantList {
	out := VariantList{Variants: make([]Variant, 0, len(variants))}
	for _, v := range variants {
		out.Variants = append(out.Variants, VariantFromModel(v))
	}
	return out
}

// Game represents a game in API responses. Board uses the model's wire form.
type Game struct {
	ID          string      `json:"id"`
	State       string      `json:"state"`
	Variant     Variant     `json:"variant"`
	PlayerBlack string      `json:"player_black"`
	PlayerWhite string      `json:"player_white"`
	Board       model.Board `json:"board"`
	Deadline    *time.Time  `json:"deadline,omitempty"`
	Winner      string      `json:"winner,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Version     int64       `json:"version"`
}

// GameFromModel converts a model.Game
func GameFromModel(g *model.Game) Game {
	winner, _ := g.Winner()
	return Game{
		ID:          string(g.ID),
		State:       string(g.State),
		Variant:     VariantFromModel(g.Variant),
		PlayerBlack: string(g.PlayerBlack),
		PlayerWhite: string(g.PlayerWhite),
		Board:       g.Board,
		Deadline:    g.Deadline,
		Winner:      string(winner),
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
		Version:     g.Version,
	}
}

// GameList is the response for game listings
type GameList struct {
	Games []Game `json:"games"`
}

// GameListFromModel converts a slice of games
func GameListFromModel(games []*model.Game) GameList {
	out := GameList{Games: make([]Game, 0, len(games))}
	for _, g := range games {
		out.Games = append(out.Games, GameFromModel(g))
	}
	return out
}

// RoundResult is the response for a played round
type RoundResult struct {
	Outcome string `json:"outcome"`
	Game    Game   `json:"game"`
}

// RoundOutcomeFor names the outcome of an accepted, in-time round
func RoundOutcomeFor(g *model.Game) model.RoundOutcome {
	switch {
	case g.State == model.GameStateDraw:
		return model.OutcomeDraw
	case g.State.IsEnded():
		return model.OutcomeYouWon
	}
	return model.OutcomeOthersTurn
}

// MatchmakingEntry represents a queue entry
type MatchmakingEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Variant   string    `json:"variant"`
	Status    string    `json:"status"`
	GameID    string    `json:"game_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MatchmakingEntryFromModel converts model.MatchmakingEntry
func MatchmakingEntryFromModel(e model.MatchmakingEntry) MatchmakingEntry {
	return MatchmakingEntry{
		ID:        string(e.ID),
		UserID:    string(e.UserID),
		Variant:   string(e.Variant),
		Status:    string(e.Status),
		GameID:    string(e.GameID),
		CreatedAt: e.CreatedAt,
	}
}

// MatchmakingResult is the response for entering matchmaking. Entry is the
// caller's queue entry when queued, or the claimed opponent entry when matched.
type MatchmakingResult struct {
	Matched bool             `json:"matched"`
	Entry   MatchmakingEntry `json:"entry"`
	Game    *Game            `json:"game,omitempty"`
}

// MatchmakingResultFromModel converts model.MatchmakingOutcome
func MatchmakingResultFromModel(o model.MatchmakingOutcome) MatchmakingResult {
	out := MatchmakingResult{
		Matched: o.Matched(),
		Entry:   MatchmakingEntryFromModel(o.Entry),
	}
	if o.Game != nil {
		g := GameFromModel(o.Game)
		out.Game = &g
	}
	return out
}

// Health is the response for the health endpoint
type Health struct {
	Status string `json:"status"`
}
