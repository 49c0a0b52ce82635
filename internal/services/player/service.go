package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mcoot/gomoku-go/internal/dependencies/clock"
	"github.com/mcoot/gomoku-go/internal/dependencies/random"
	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/storage"
)

// MaxDisplayNameLength bounds display names, counted in runes
const MaxDisplayNameLength = 32

// ErrInvalidDisplayName is returned for empty or overlong display names
var ErrInvalidDisplayName = errors.New("display name must be 1-32 characters")

// Service manages the player registry and statistics
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// New creates a new player Service
func New(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger,
	}
}

// CreatePlayer registers a new player. An empty id gets a generated one;
// an id that is already registered fails with ErrPlayerExists.
func (s *Service) CreatePlayer(ctx context.Context, id model.PlayerID, displayName string) (*model.Player, error) {
	displayName = strings.TrimSpace(displayName)
	if n := utf8.RuneCountInString(displayName); n == 0 || n > MaxDisplayNameLength {
		return nil, ErrInvalidDisplayName
	}

	if id == "" {
		id = model.PlayerID("p_" + s.random.UUID())
	} else {
		_, err := s.storage.GetPlayer(ctx, id)
		if err == nil {
			return nil, fmt.Errorf("player %s: %w", id, model.ErrPlayerExists)
		}
		if !errors.Is(err, model.ErrPlayerNotFound) {
			return nil, err
		}
	}

	player := &model.Player{
		ID:          id,
		DisplayName: displayName,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info("player created",
		slog.String("player_id", string(player.ID)),
		slog.String("display_name", player.DisplayName),
	)
	return player, nil
}

// GetPlayer retrieves a player by ID
func (s *Service) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return s.storage.GetPlayer(ctx, id)
}

// GetStats returns a player's record and current rank
func (s *Service) GetStats(ctx context.Context, id model.PlayerID) (*model.PlayerStats, error) {
	return s.storage.GetStats(ctx, id)
}

// Ranking returns the top players by points; limit <= 0 returns everyone
func (s *Service) Ranking(ctx context.Context, limit int) ([]model.PlayerStats, error) {
	return s.storage.Ranking(ctx, limit)
}

// ServiceInterface defines the player operations used by the API layer
type ServiceInterface interface {
	CreatePlayer(ctx context.Context, id model.PlayerID, displayName string) (*model.Player, error)
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetStats(ctx context.Context, id model.PlayerID) (*model.PlayerStats, error)
	Ranking(ctx context.Context, limit int) ([]model.PlayerStats, error)
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
