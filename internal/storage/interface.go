package storage

import (
	"context"

	"github.com/mcoot/gomoku-go/internal/model"
)

// UpdateGameFunc computes the next value of a game from the stored one.
// Returning a nil game (and nil error) leaves the record untouched.
type UpdateGameFunc func(current *model.Game) (*model.Game, error)

// BuildGameFunc creates the game for a pairing once an opponent's entry has been claimed
type BuildGameFunc func(opponent model.MatchmakingEntry) (*model.Game, error)

// Storage defines the interface for data persistence
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)

	// Game operations
	CreateGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	ListGames(ctx context.Context) ([]*model.Game, error)
	ListGamesForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Game, error)

	// UpdateGame atomically reads a game, applies fn and writes the result.
	// When the write moves the game into an ended state, both players' statistics
	// are updated in the same unit of work. Implementations that detect a
	// concurrent write return model.ErrConflict without changing anything.
	UpdateGame(ctx context.Context, id model.GameID, fn UpdateGameFunc) (*model.Game, error)

	// Matchmaking operations

	// Matchmake claims the oldest pending entry of another user for the same
	// variant and stores the game built for it, or enqueues the caller if there is
	// none. Two calls never claim the same entry and no call waits on another.
	Matchmake(ctx context.Context, req model.MatchmakingRequest, build BuildGameFunc) (model.MatchmakingOutcome, error)
	GetMatchmakingEntry(ctx context.Context, id model.MatchmakingEntryID) (*model.MatchmakingEntry, error)
	// DeletePendingEntry removes an entry that belongs to userID and is still pending
	DeletePendingEntry(ctx context.Context, id model.MatchmakingEntryID, userID model.PlayerID) error

	// Statistics operations
	GetStats(ctx context.Context, playerID model.PlayerID) (*model.PlayerStats, error)
	Ranking(ctx context.Context, limit int) ([]model.PlayerStats, error)
}
