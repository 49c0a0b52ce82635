package model

import "time"

// GameID uniquely identifies a game
type GameID string

// GameState is the game-level phase derived from the board
type GameState string

const (
	GameStateSwappingPieces  GameState = "SWAPPING_PIECES"
	GameStateNextPlayerBlack GameState = "NEXT_PLAYER_BLACK"
	GameStateNextPlayerWhite GameState = "NEXT_PLAYER_WHITE"
	GameStatePlayerBlackWon  GameState = "PLAYER_BLACK_WON"
	GameStatePlayerWhiteWon  GameState = "PLAYER_WHITE_WON"
	GameStateDraw            GameState = "DRAW"
)

// IsEnded returns true for the terminal states
func (s GameState) IsEnded() bool {
	switch s {
	case GameStatePlayerBlackWon, GameStatePlayerWhiteWon, GameStateDraw:
		return true
	}
	return false
}

// NextPlayerState returns the state in which the given piece is to move
func NextPlayerState(p Piece) GameState {
	if p == PieceBlack {
		return GameStateNextPlayerBlack
	}
	return GameStateNextPlayerWhite
}

// WonState returns the state in which the given piece has won
func WonState(p Piece) GameState {
	if p == PieceBlack {
		return GameStatePlayerBlackWon
	}
	return GameStatePlayerWhiteWon
}

// GamePlayer seats a user at a piece
type GamePlayer struct {
	UserID PlayerID
	Piece  Piece
}

// Game is one two-player match
type Game struct {
	ID          GameID
	State       GameState
	Board       Board
	Variant     Variant
	PlayerBlack PlayerID
	PlayerWhite PlayerID
	Deadline    *time.Time // nil once the game has ended
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Version is bumped on every write and used for optimistic concurrency
	Version int64
}

// Clone returns a deep copy of the game
func (g Game) Clone() Game {
	out := g
	out.Board = g.Board.Retag(g.Board.Phase, g.Board.Piece)
	if g.Deadline != nil {
		d := *g.Deadline
		out.Deadline = &d
	}
	return out
}

// PlayerFor returns the seat of a user, if the user plays in this game
func (g *Game) PlayerFor(userID PlayerID) (GamePlayer, bool) {
	switch userID {
	case g.PlayerBlack:
		return GamePlayer{UserID: userID, Piece: PieceBlack}, true
	case g.PlayerWhite:
		return GamePlayer{UserID: userID, Piece: PieceWhite}, true
	}
	return GamePlayer{}, false
}

// UserFor returns the user holding the given piece
func (g *Game) UserFor(p Piece) PlayerID {
	if p == PieceBlack {
		return g.PlayerBlack
	}
	return g.PlayerWhite
}

// HasPlayer returns true if the user plays in this game
func (g *Game) HasPlayer(userID PlayerID) bool {
	_, ok := g.PlayerFor(userID)
	return ok
}

// Winner returns the winning user for a won game
func (g *Game) Winner() (PlayerID, bool) {
	switch g.State {
	case GameStatePlayerBlackWon:
		return g.PlayerBlack, true
	case GameStatePlayerWhiteWon:
		return g.PlayerWhite, true
	}
	return "", false
}

// Round is one request to act in a game. Cell is nil for a swap decision.
type Round struct {
	Cell        *Cell
	Player      PlayerID
	WantsToSwap bool
}

// RoundOutcome discriminates the result of playing a round
type RoundOutcome string

const (
	// Caller errors; the game is not changed
	OutcomeNotAPlayer           RoundOutcome = "NOT_A_PLAYER"
	OutcomeNotYourTurn          RoundOutcome = "NOT_YOUR_TURN"
	OutcomeGameAlreadyEnded     RoundOutcome = "GAME_ALREADY_ENDED"
	OutcomePositionNotAvailable RoundOutcome = "POSITION_NOT_AVAILABLE"
	OutcomeMissingCell          RoundOutcome = "MISSING_CELL"

	// Transitions; Game holds the new value to persist
	OutcomeTooLate    RoundOutcome = "TOO_LATE"
	OutcomeYouWon     RoundOutcome = "YOU_WON"
	OutcomeOthersTurn RoundOutcome = "OTHERS_TURN"
	OutcomeDraw       RoundOutcome = "DRAW"
)

// RoundResult is what playing a round produced
type RoundResult struct {
	Outcome RoundOutcome
	Game    *Game // set only for transitions
}

// Mutates returns true if the result carries a new game value to persist
func (r RoundResult) Mutates() bool {
	return r.Game != nil
}

// Err maps caller outcomes to their sentinel error and transitions to nil,
// except TooLate which is reported as ErrTooLate after it has been persisted.
func (r RoundResult) Err() error {
	switch r.Outcome {
	case OutcomeNotAPlayer:
		return ErrNotAPlayer
	case OutcomeNotYourTurn:
		return ErrNotYourTurn
	case OutcomeGameAlreadyEnded:
		return ErrGameAlreadyEnded
	case OutcomePositionNotAvailable:
		return ErrPositionNotAvailable
	case OutcomeMissingCell:
		return ErrMalformedCell
	case OutcomeTooLate:
		return ErrTooLate
	}
	return nil
}
