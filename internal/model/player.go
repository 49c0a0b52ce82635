package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player is a registered user who can be seated in games
type Player struct {
	ID          PlayerID
	DisplayName string
	CreatedAt   time.Time
}

// PlayerStats is a player's record across finished games
type PlayerStats struct {
	PlayerID    PlayerID
	GamesPlayed int
	Wins        int
	Losses      int
	Draws       int
	Points      int
	Rank        int // 1-based position by points, 0 until ranked
}

// GameResult describes how a finished game affects statistics
type GameResult struct {
	Winner PlayerID // empty on a draw
	Loser  PlayerID // empty on a draw
	Draw   bool
	Black  PlayerID
	White  PlayerID
	Points int // awarded to the winner
}

// ResultOf derives the statistics update for a game that has just ended.
// It returns nil while the game is still in progress.
func ResultOf(g *Game) *GameResult {
	switch g.State {
	case GameStatePlayerBlackWon:
		return &GameResult{Winner: g.PlayerBlack, Loser: g.PlayerWhite, Black: g.PlayerBlack, White: g.PlayerWhite, Points: g.Variant.PointsAwarded}
	case GameStatePlayerWhiteWon:
		return &GameResult{Winner: g.PlayerWhite, Loser: g.PlayerBlack, Black: g.PlayerBlack, White: g.PlayerWhite, Points: g.Variant.PointsAwarded}
	case GameStateDraw:
		return &GameResult{Draw: true, Black: g.PlayerBlack, White: g.PlayerWhite}
	}
	return nil
}

// Apply adds a finished game to the stats of one of its players
func (s *PlayerStats) Apply(r GameResult) {
	s.GamesPlayed++
	switch {
	case r.Draw:
		s.Draws++
	case r.Winner == s.PlayerID:
		s.Wins++
		s.Points += r.Points
	default:
		s.Losses++
	}
}
