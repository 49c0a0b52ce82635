package game

import (
	"fmt"
	"time"

	"github.com/mcoot/gomoku-go/internal/dependencies/clock"
	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/services/board"
)

// DomainConfig holds the rules that are not part of a variant
type DomainConfig struct {
	// TurnTimeout is how long a player has to act before forfeiting
	TurnTimeout time.Duration
}

// DefaultDomainConfig returns the default game rules configuration
func DefaultDomainConfig() DomainConfig {
	return DomainConfig{
		TurnTimeout: 5 * time.Minute,
	}
}

// Domain is the game state machine. It never touches storage: every method
// takes a game value and returns a new one, leaving persistence to the caller.
type Domain struct {
	clock  clock.Clock
	config DomainConfig
}

// NewDomain creates a new game state machine
func NewDomain(clock clock.Clock, config DomainConfig) *Domain {
	return &Domain{
		clock:  clock,
		config: config,
	}
}

// NewGame builds the initial state of a game between two distinct users
func (d *Domain) NewGame(id model.GameID, black, white model.PlayerID, variant model.Variant) (*model.Game, error) {
	if black == white {
		return nil, model.ErrSamePlayer
	}

	now := d.clock.Now()
	deadline := now.Add(d.config.TurnTimeout)

	b := model.NewRunBoard(model.PieceBlack)
	if variant.OpeningRule == model.OpeningSwap {
		b = model.NewOpenBoard(model.PieceBlack)
	}

	return &model.Game{
		ID:          id,
		State:       model.GameStateNextPlayerBlack,
		Board:       b,
		Variant:     variant,
		PlayerBlack: black,
		PlayerWhite: white,
		Deadline:    &deadline,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// PlayRound evaluates one round against the given game. Caller mistakes come
// back as outcomes with no game; transitions carry the new game to persist.
// An error is returned only when the game itself is inconsistent.
func (d *Domain) PlayRound(g *model.Game, round model.Round) (model.RoundResult, error) {
	seat, ok := g.PlayerFor(round.Player)
	if !ok {
		return model.RoundResult{Outcome: model.OutcomeNotAPlayer}, nil
	}

	now := d.clock.Now()

	switch g.State {
	case model.GameStatePlayerBlackWon, model.GameStatePlayerWhiteWon, model.GameStateDraw:
		return model.RoundResult{Outcome: model.OutcomeGameAlreadyEnded}, nil

	case model.GameStateSwappingPieces:
		return d.decideSwap(g, seat, round, now), nil

	case model.GameStateNextPlayerBlack:
		return d.placeStone(g, seat, model.PieceBlack, round, now)

	case model.GameStateNextPlayerWhite:
		return d.placeStone(g, seat, model.PieceWhite, round, now)
	}

	return model.RoundResult{}, fmt.Errorf("game %s: unknown state %q", g.ID, g.State)
}

// Forfeit ends the game in favour of the opponent of userID, whoever's turn it is
func (d *Domain) Forfeit(g *model.Game, userID model.PlayerID) (*model.Game, error) {
	seat, ok := g.PlayerFor(userID)
	if !ok {
		return nil, model.ErrNotAPlayer
	}
	if g.State.IsEnded() {
		return nil, model.ErrGameAlreadyEnded
	}
	return d.lose(g, seat.Piece, d.clock.Now()), nil
}

// decideSwap handles White's pie-rule decision after the first stone
func (d *Domain) decideSwap(g *model.Game, seat model.GamePlayer, round model.Round, now time.Time) model.RoundResult {
	if seat.Piece != model.PieceWhite {
		return model.RoundResult{Outcome: model.OutcomeNotYourTurn}
	}
	if d.expired(g, now) {
		return model.RoundResult{Outcome: model.OutcomeTooLate, Game: d.lose(g, model.PieceWhite, now)}
	}

	next := g.Clone()
	if round.WantsToSwap {
		next.PlayerBlack, next.PlayerWhite = g.PlayerWhite, g.PlayerBlack
	}
	// Black moves again after the decision and so places two stones in a row
	next.State = model.GameStateNextPlayerBlack
	next.Board = g.Board.Retag(model.PhaseRun, model.PieceBlack)
	d.touch(&next, now)
	return model.RoundResult{Outcome: model.OutcomeOthersTurn, Game: &next}
}

// placeStone handles a normal move by the side whose turn it is
func (d *Domain) placeStone(g *model.Game, seat model.GamePlayer, mover model.Piece, round model.Round, now time.Time) (model.RoundResult, error) {
	if seat.Piece != mover {
		return model.RoundResult{Outcome: model.OutcomeNotYourTurn}, nil
	}
	if d.expired(g, now) {
		return model.RoundResult{Outcome: model.OutcomeTooLate, Game: d.lose(g, mover, now)}, nil
	}
	if round.Cell == nil {
		return model.RoundResult{Outcome: model.OutcomeMissingCell}, nil
	}
	if !board.CanPlayOn(g.Board, *round.Cell, g.Variant) {
		return model.RoundResult{Outcome: model.OutcomePositionNotAvailable}, nil
	}

	nb, err := board.ApplyMove(g.Board, *round.Cell, mover, g.Variant)
	if err != nil {
		return model.RoundResult{}, fmt.Errorf("game %s in state %s: %w", g.ID, g.State, err)
	}

	next := g.Clone()
	next.Board = nb

	switch nb.Phase {
	case model.PhaseWin:
		next.State = model.WonState(mover)
		next.Deadline = nil
		next.UpdatedAt = now
		return model.RoundResult{Outcome: model.OutcomeYouWon, Game: &next}, nil

	case model.PhaseDraw:
		next.State = model.GameStateDraw
		next.Deadline = nil
		next.UpdatedAt = now
		return model.RoundResult{Outcome: model.OutcomeDraw, Game: &next}, nil

	case model.PhaseOpen:
		next.State = model.GameStateSwappingPieces

	default:
		next.State = model.NextPlayerState(mover.Other())
	}

	d.touch(&next, now)
	return model.RoundResult{Outcome: model.OutcomeOthersTurn, Game: &next}, nil
}

// lose returns a copy of g won by the opponent of loser, with the board closed
func (d *Domain) lose(g *model.Game, loser model.Piece, now time.Time) *model.Game {
	next := g.Clone()
	winner := loser.Other()
	next.State = model.WonState(winner)
	next.Board = g.Board.Retag(model.PhaseWin, winner)
	next.Deadline = nil
	next.UpdatedAt = now
	return &next
}

func (d *Domain) expired(g *model.Game, now time.Time) bool {
	return g.Deadline != nil && now.After(*g.Deadline)
}

// touch refreshes the turn deadline after an accepted round
func (d *Domain) touch(g *model.Game, now time.Time) {
	deadline := now.Add(d.config.TurnTimeout)
	g.Deadline = &deadline
	g.UpdatedAt = now
}
