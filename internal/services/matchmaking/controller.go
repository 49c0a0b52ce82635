package matchmaking

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mcoot/gomoku-go/internal/dependencies/clock"
	"github.com/mcoot/gomoku-go/internal/dependencies/random"
	"github.com/mcoot/gomoku-go/internal/events"
	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/services/game"
	"github.com/mcoot/gomoku-go/internal/storage"
	"github.com/mcoot/gomoku-go/internal/telemetry"
)

// Controller pairs users into games. The exclusive claim of a waiting entry
// happens inside storage; this layer validates input and builds the game.
type Controller struct {
	storage   storage.Storage
	domain    *game.Domain
	clock     clock.Clock
	random    random.Random
	publisher events.Publisher
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewController creates a new matchmaking Controller
func NewController(
	storage storage.Storage,
	domain *game.Domain,
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
		tracer:    telemetry.Tracer("matchmaking"),
		logger:    logger,
	}
}

// TryMatchmaking pairs userID with the oldest waiting user of the same variant,
// or puts userID on the queue if nobody is waiting
func (c *Controller) TryMatchmaking(ctx context.Context, userID model.PlayerID, variantName model.VariantName) (model.MatchmakingOutcome, error) {
	ctx, span := c.tracer.Start(ctx, "matchmaking.Try", trace.WithAttributes(
		attribute.String("player.id", string(userID)),
		attribute.String("variant", string(variantName)),
	))
	defer span.End()

	variant, err := model.LookupVariant(variantName)
	if err != nil {
		return model.MatchmakingOutcome{}, err
	}
	if _, err := c.storage.GetPlayer(ctx, userID); err != nil {
		return model.MatchmakingOutcome{}, err
	}

	req := model.MatchmakingRequest{
		UserID:    userID,
		Variant:   variant,
		EntryID:   model.MatchmakingEntryID(c.random.UUID()),
		CreatedAt: c.clock.Now(),
	}
	build := func(opponent model.MatchmakingEntry) (*model.Game, error) {
		return c.domain.NewGame(model.GameID(c.random.UUID()), opponent.UserID, userID, variant)
	}

	outcome, err := c.storage.Matchmake(ctx, req, build)
	if err != nil {
		span.RecordError(err)
		return model.MatchmakingOutcome{}, err
	}

	now := c.clock.Now()
	if outcome.Matched() {
		span.SetAttributes(attribute.String("game.id", string(outcome.Game.ID)))
		c.logger.Info("match found",
			slog.String("game_id", string(outcome.Game.ID)),
			slog.String("entry_id", string(outcome.Entry.ID)),
			slog.String("player_black", string(outcome.Game.PlayerBlack)),
			slog.String("player_white", string(outcome.Game.PlayerWhite)),
		)
		c.publisher.Publish(ctx, model.Event{
			Type:      model.EventMatchFound,
			Timestamp: now,
			GameID:    outcome.Game.ID,
			PlayerID:  userID,
			Payload: model.MatchFoundPayload{
				EntryID:     outcome.Entry.ID,
				PlayerBlack: outcome.Game.PlayerBlack,
				PlayerWhite: outcome.Game.PlayerWhite,
				Variant:     variant.Name,
			},
		})
		return outcome, nil
	}

	c.logger.Info("user queued",
		slog.String("entry_id", string(outcome.Entry.ID)),
		slog.String("player_id", string(userID)),
		slog.String("variant", string(variant.Name)),
	)
	c.publisher.Publish(ctx, model.Event{
		Type:      model.EventQueueJoined,
		Timestamp: now,
		PlayerID:  userID,
		Payload:   model.QueuePayload{EntryID: outcome.Entry.ID, Variant: variant.Name},
	})
	return outcome, nil
}

// GetStatus returns an entry, which only its owner may see
func (c *Controller) GetStatus(ctx context.Context, entryID model.MatchmakingEntryID, userID model.PlayerID) (*model.MatchmakingEntry, error) {
	entry, err := c.storage.GetMatchmakingEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		return nil, model.ErrMatchDoesNotExist
	}
	return entry, nil
}

// ExitQueue removes a still-pending entry owned by userID
func (c *Controller) ExitQueue(ctx context.Context, entryID model.MatchmakingEntryID, userID model.PlayerID) error {
	entry, err := c.GetStatus(ctx, entryID, userID)
	if err != nil {
		return err
	}
	if err := c.storage.DeletePendingEntry(ctx, entryID, userID); err != nil {
		return err
	}

	c.logger.Info("user left queue",
		slog.String("entry_id", string(entryID)),
		slog.String("player_id", string(userID)),
	)
	c.publisher.Publish(ctx, model.Event{
		Type:      model.EventQueueLeft,
		Timestamp: c.clock.Now(),
		PlayerID:  userID,
		Payload:   model.QueuePayload{EntryID: entryID, Variant: entry.Variant},
	})
	return nil
}

// ControllerInterface defines the matchmaking operations used by the API layer
type ControllerInterface interface {
	TryMatchmaking(ctx context.Context, userID model.PlayerID, variant model.VariantName) (model.MatchmakingOutcome, error)
	GetStatus(ctx context.Context, entryID model.MatchmakingEntryID, userID model.PlayerID) (*model.MatchmakingEntry, error)
	ExitQueue(ctx context.Context, entryID model.MatchmakingEntryID, userID model.PlayerID) error
}

// Ensure Controller implements ControllerInterface
var _ ControllerInterface = (*Controller)(nil)
