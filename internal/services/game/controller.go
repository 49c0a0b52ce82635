package game

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mcoot/gomoku-go/internal/dependencies/clock"
	"github.com/mcoot/gomoku-go/internal/dependencies/random"
	"github.com/mcoot/gomoku-go/internal/events"
	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/storage"
	"github.com/mcoot/gomoku-go/internal/telemetry"
)

// Controller persists the state machine's decisions: it loads a game, runs a
// round through the Domain and writes the result back in one atomic update.
type Controller struct {
	storage   storage.Storage
	domain    *Domain
	clock     clock.Clock
	random    random.Random
	publisher events.Publisher
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewController creates a new game Controller
func NewController(
	storage storage.Storage,
	domain *Domain,
	clock clock.Clock,
	random random.Random,
	publisher events.Publisher,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:   storage,
		domain:    domain,
		clock:     clock,
		random:    random,
		publisher: publisher,
		tracer:    telemetry.Tracer("game"),
		logger:    logger,
	}
}

// CreateGame starts a game between two registered players
func (c *Controller) CreateGame(ctx context.Context, black, white model.PlayerID, variantName model.VariantName) (*model.Game, error) {
	variant, err := model.LookupVariant(variantName)
	if err != nil {
		return nil, err
	}
	for _, id := range []model.PlayerID{black, white} {
		if _, err := c.storage.GetPlayer(ctx, id); err != nil {
			return nil, err
		}
	}

	game, err := c.domain.NewGame(model.GameID(c.random.UUID()), black, white, variant)
	if err != nil {
		return nil, err
	}

	if err := c.storage.CreateGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("game created",
		slog.String("game_id", string(game.ID)),
		slog.String("variant", string(variant.Name)),
		slog.String("player_black", string(black)),
		slog.String("player_white", string(white)),
	)
	c.publisher.Publish(ctx, model.Event{
		Type:      model.EventGameCreated,
		Timestamp: c.clock.Now(),
		GameID:    game.ID,
		PlayerID:  black,
	})

	return game, nil
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, gameID)
}

// ListGames returns every game, newest first
func (c *Controller) ListGames(ctx context.Context) ([]*model.Game, error) {
	return c.storage.ListGames(ctx)
}

// ListGamesForPlayer returns the games a player is seated in, newest first
func (c *Controller) ListGamesForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Game, error) {
	if _, err := c.storage.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	return c.storage.ListGamesForPlayer(ctx, playerID)
}

// ListVariants returns the variant catalog
func (c *Controller) ListVariants() []model.Variant {
	return model.Variants()
}

// Play applies one round to a game. Accepted rounds return the updated game.
// Rejected rounds return their sentinel error without writing anything. A late
// round is persisted as a forfeit and returned together with ErrTooLate.
func (c *Controller) Play(ctx context.Context, gameID model.GameID, round model.Round) (*model.Game, error) {
	ctx, span := c.tracer.Start(ctx, "game.Play", trace.WithAttributes(
		attribute.String("game.id", string(gameID)),
		attribute.String("player.id", string(round.Player)),
	))
	defer span.End()

	var (
		result model.RoundResult
		before model.GameState
	)
	update := func(current *model.Game) (*model.Game, error) {
		res, err := c.domain.PlayRound(current, round)
		if err != nil {
			return nil, err
		}
		result = res
		before = current.State
		if !res.Mutates() {
			return nil, nil
		}
		return res.Game, nil
	}

	game, err := c.updateWithRetry(ctx, gameID, update)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("round.outcome", string(result.Outcome)))

	if !result.Mutates() {
		c.logger.Debug("round rejected",
			slog.String("game_id", string(gameID)),
			slog.String("player_id", string(round.Player)),
			slog.String("outcome", string(result.Outcome)),
		)
		return nil, result.Err()
	}

	c.publishRound(ctx, game, round, result.Outcome, before)
	return game, result.Err()
}

// Leave forfeits the game for userID regardless of whose turn it is
func (c *Controller) Leave(ctx context.Context, gameID model.GameID, userID model.PlayerID) (*model.Game, error) {
	ctx, span := c.tracer.Start(ctx, "game.Leave", trace.WithAttributes(
		attribute.String("game.id", string(gameID)),
		attribute.String("player.id", string(userID)),
	))
	defer span.End()

	game, err := c.updateWithRetry(ctx, gameID, func(current *model.Game) (*model.Game, error) {
		return c.domain.Forfeit(current, userID)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	c.logger.Info("player left game",
		slog.String("game_id", string(gameID)),
		slog.String("player_id", string(userID)),
		slog.String("state", string(game.State)),
	)
	c.publishEnded(ctx, game, userID, "left")
	return game, nil
}

// updateWithRetry runs fn against the stored game, retrying exactly once
// against a freshly loaded game if another writer got there first
func (c *Controller) updateWithRetry(ctx context.Context, gameID model.GameID, fn storage.UpdateGameFunc) (*model.Game, error) {
	game, err := c.storage.UpdateGame(ctx, gameID, fn)
	if errors.Is(err, model.ErrConflict) {
		c.logger.Info("concurrent game update, retrying",
			slog.String("game_id", string(gameID)),
		)
		game, err = c.storage.UpdateGame(ctx, gameID, fn)
	}
	return game, err
}

func (c *Controller) publishRound(ctx context.Context, game *model.Game, round model.Round, outcome model.RoundOutcome, before model.GameState) {
	payload := model.RoundPlayedPayload{Outcome: outcome, State: game.State}
	switch {
	case outcome == model.OutcomeTooLate:
	case before == model.GameStateSwappingPieces:
		payload.Swapped = round.WantsToSwap
	default:
		payload.Cell = round.Cell.String()
	}

	c.logger.Info("round played",
		slog.String("game_id", string(game.ID)),
		slog.String("player_id", string(round.Player)),
		slog.String("outcome", string(outcome)),
		slog.String("state", string(game.State)),
	)
	c.publisher.Publish(ctx, model.Event{
		Type:      model.EventRoundPlayed,
		Timestamp: c.clock.Now(),
		GameID:    game.ID,
		PlayerID:  round.Player,
		Payload:   payload,
	})

	switch outcome {
	case model.OutcomeYouWon:
		c.publishEnded(ctx, game, round.Player, "five")
	case model.OutcomeDraw:
		c.publishEnded(ctx, game, round.Player, "draw")
	case model.OutcomeTooLate:
		c.publishEnded(ctx, game, round.Player, "timeout")
	}
}

func (c *Controller) publishEnded(ctx context.Context, game *model.Game, by model.PlayerID, reason string) {
	winner, _ := game.Winner()
	c.logger.Info("game ended",
		slog.String("game_id", string(game.ID)),
		slog.String("state", string(game.State)),
		slog.String("reason", reason),
	)
	c.publisher.Publish(ctx, model.Event{
		Type:      model.EventGameEnded,
		Timestamp: c.clock.Now(),
		GameID:    game.ID,
		PlayerID:  by,
		Payload:   model.GameEndedPayload{State: game.State, Winner: winner, Reason: reason},
	})
}

// ControllerInterface defines the game operations used by the API layer
type ControllerInterface interface {
	CreateGame(ctx context.Context, black, white model.PlayerID, variant model.VariantName) (*model.Game, error)
	GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error)
	ListGames(ctx context.Context) ([]*model.Game, error)
	ListGamesForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Game, error)
	ListVariants() []model.Variant
	Play(ctx context.Context, gameID model.GameID, round model.Round) (*model.Game, error)
	Leave(ctx context.Context, gameID model.GameID, userID model.PlayerID) (*model.Game, error)
}

// Ensure Controller implements ControllerInterface
var _ ControllerInterface = (*Controller)(nil)
