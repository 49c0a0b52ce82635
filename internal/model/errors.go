package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrPlayerExists   = errors.New("player already exists")

	// Game errors
	ErrGameNotFound         = errors.New("game not found")
	ErrNotAPlayer           = errors.New("user is not a player in this game")
	ErrNotYourTurn          = errors.New("not this player's turn")
	ErrPositionNotAvailable = errors.New("position not available")
	ErrGameAlreadyEnded     = errors.New("game has already ended")
	ErrTooLate              = errors.New("turn deadline has passed")
	ErrSamePlayer           = errors.New("a game needs two distinct players")

	// Board errors
	ErrMalformedCell    = errors.New("malformed cell")
	ErrMalformedBoard   = errors.New("malformed board")
	ErrPositionOccupied = errors.New("position already occupied")
	ErrGameAlreadyOver  = errors.New("board is already won or drawn")
	ErrOutOfBounds      = errors.New("cell is outside the board")
	ErrWrongPiece       = errors.New("piece does not match the side to move")

	// Variant errors
	ErrVariantUnknown = errors.New("variant unknown")

	// Matchmaking errors
	ErrUserAlreadyQueued = errors.New("user already in the matchmaking queue")
	ErrMatchDoesNotExist = errors.New("matchmaking entry does not exist")

	// Storage errors
	ErrConflict = errors.New("concurrent modification")
)
