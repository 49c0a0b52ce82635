package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// A single mutex makes every operation, including matchmaking, one atomic unit.
type Storage struct {
	mu sync.RWMutex

	players map[model.PlayerID]*model.Player
	stats   map[model.PlayerID]*model.PlayerStats
	games   map[model.GameID]*model.Game

	entries map[model.MatchmakingEntryID]*model.MatchmakingEntry

	// queue holds pending entry IDs in arrival order
	queue []model.MatchmakingEntryID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players: make(map[model.PlayerID]*model.Player),
		stats:   make(map[model.PlayerID]*model.PlayerStats),
		games:   make(map[model.GameID]*model.Game),
		entries: make(map[model.MatchmakingEntryID]*model.MatchmakingEntry),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *player
	s.players[player.ID] = &p
	if _, ok := s.stats[player.ID]; !ok {
		s.stats[player.ID] = &model.PlayerStats{PlayerID: player.ID}
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.games[game.ID]; exists {
		return fmt.Errorf("game %s: %w", game.ID, model.ErrConflict)
	}
	g := game.Clone()
	s.games[game.ID] = &g
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	g := game.Clone()
	return &g, nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]*model.Game, 0, len(s.games))
	for _, game := range s.games {
		g := game.Clone()
		games = append(games, &g)
	}
	storage.SortGamesNewestFirst(games)
	return games, nil
}

func (s *Storage) ListGamesForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var games []*model.Game
	for _, game := range s.games {
		if game.HasPlayer(playerID) {
			g := game.Clone()
			games = append(games, &g)
		}
	}
	storage.SortGamesNewestFirst(games)
	return games, nil
}

func (s *Storage) UpdateGame(ctx context.Context, id model.GameID, fn storage.UpdateGameFunc) (*model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	current := stored.Clone()

	next, err := fn(&current)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return &current, nil
	}

	saved := next.Clone()
	saved.Version = stored.Version + 1
	if !stored.State.IsEnded() && saved.State.IsEnded() {
		s.applyResultLocked(model.ResultOf(&saved))
	}
	s.games[id] = &saved

	out := saved.Clone()
	return &out, nil
}

// applyResultLocked records a finished game for both players
func (s *Storage) applyResultLocked(result *model.GameResult) {
	if result == nil {
		return
	}
	for _, id := range []model.PlayerID{result.Black, result.White} {
		st, ok := s.stats[id]
		if !ok {
			st = &model.PlayerStats{PlayerID: id}
			s.stats[id] = st
		}
		st.Apply(*result)
	}
}

// Matchmaking operations

func (s *Storage) Matchmake(ctx context.Context, req model.MatchmakingRequest, build storage.BuildGameFunc) (model.MatchmakingOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, id := range s.queue {
		entry := s.entries[id]
		if entry.Variant != req.Variant.Name || entry.UserID == req.UserID {
			continue
		}

		game, err := build(*entry)
		if err != nil {
			return model.MatchmakingOutcome{}, err
		}
		if _, exists := s.games[game.ID]; exists {
			return model.MatchmakingOutcome{}, fmt.Errorf("game %s: %w", game.ID, model.ErrConflict)
		}

		g := game.Clone()
		s.games[g.ID] = &g
		entry.Status = model.MatchmakingMatched
		entry.GameID = g.ID
		s.queue = append(s.queue[:i:i], s.queue[i+1:]...)

		out := g.Clone()
		return model.MatchmakingOutcome{Game: &out, Entry: *entry}, nil
	}

	for _, id := range s.queue {
		if s.entries[id].UserID == req.UserID {
			return model.MatchmakingOutcome{}, model.ErrUserAlreadyQueued
		}
	}

	entry := &model.MatchmakingEntry{
		ID:        req.EntryID,
		UserID:    req.UserID,
		Variant:   req.Variant.Name,
		Status:    model.MatchmakingPending,
		CreatedAt: req.CreatedAt,
	}
	s.entries[entry.ID] = entry
	s.queue = append(s.queue, entry.ID)
	return model.MatchmakingOutcome{Entry: *entry}, nil
}

func (s *Storage) GetMatchmakingEntry(ctx context.Context, id model.MatchmakingEntryID) (*model.MatchmakingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, model.ErrMatchDoesNotExist
	}
	e := *entry
	return &e, nil
}

func (s *Storage) DeletePendingEntry(ctx context.Context, id model.MatchmakingEntryID, userID model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok || entry.UserID != userID || entry.Status != model.MatchmakingPending {
		return model.ErrMatchDoesNotExist
	}
	delete(s.entries, id)
	for i, queued := range s.queue {
		if queued == id {
			s.queue = append(s.queue[:i:i], s.queue[i+1:]...)
			break
		}
	}
	return nil
}

// Statistics operations

func (s *Storage) GetStats(ctx context.Context, playerID model.PlayerID) (*model.PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.stats[playerID]; !ok {
		return nil, model.ErrPlayerNotFound
	}
	for _, st := range storage.RankStats(s.snapshotStatsLocked(), 0) {
		if st.PlayerID == playerID {
			return &st, nil
		}
	}
	return nil, model.ErrPlayerNotFound
}

func (s *Storage) Ranking(ctx context.Context, limit int) ([]model.PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return storage.RankStats(s.snapshotStatsLocked(), limit), nil
}

func (s *Storage) snapshotStatsLocked() []model.PlayerStats {
	out := make([]model.PlayerStats, 0, len(s.stats))
	for _, st := range s.stats {
		out = append(out, *st)
	}
	return out
}
