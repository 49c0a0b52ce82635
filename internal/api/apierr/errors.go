package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/services/player"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeMissingPlayer        = "MISSING_PLAYER"
	CodeMalformedCell        = "MALFORMED_CELL"
	CodePlayerNotFound       = "PLAYER_NOT_FOUND"
	CodePlayerExists         = "PLAYER_EXISTS"
	CodeInvalidDisplayName   = "INVALID_DISPLAY_NAME"
	CodeGameNotFound         = "GAME_NOT_FOUND"
	CodeNotAPlayer           = "NOT_A_PLAYER"
	CodeNotYourTurn          = "NOT_YOUR_TURN"
	CodePositionNotAvailable = "POSITION_NOT_AVAILABLE"
	CodeGameAlreadyEnded     = "GAME_ALREADY_ENDED"
	CodeTooLate              = "TOO_LATE"
	CodeSamePlayer           = "SAME_PLAYER"
	CodeVariantUnknown       = "VARIANT_UNKNOWN"
	CodeUserAlreadyQueued    = "USER_ALREADY_QUEUED"
	CodeMatchDoesNotExist    = "MATCH_DOES_NOT_EXIST"
	CodeConflict             = "CONFLICT"
	CodeInternalError        = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Lookups
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrMatchDoesNotExist):
		return &httpError{http.StatusNotFound, APIError{CodeMatchDoesNotExist, "Matchmaking entry does not exist"}}

	// Round outcomes
	case errors.Is(err, model.ErrTooLate):
		return &httpError{http.StatusConflict, APIError{CodeTooLate, "Turn deadline has passed, the game was forfeited"}}
	case errors.Is(err, model.ErrPositionNotAvailable):
		return &httpError{http.StatusConflict, APIError{CodePositionNotAvailable, "Position not available"}}
	case errors.Is(err, model.ErrNotYourTurn):
		return &httpError{http.StatusConflict, APIError{CodeNotYourTurn, "Not your turn"}}
	case errors.Is(err, model.ErrGameAlreadyEnded):
		return &httpError{http.StatusConflict, APIError{CodeGameAlreadyEnded, "Game has already ended"}}
	case errors.Is(err, model.ErrNotAPlayer):
		return &httpError{http.StatusForbidden, APIError{CodeNotAPlayer, "Not a player in this game"}}

	// Input
	case errors.Is(err, model.ErrMalformedCell):
		return &httpError{http.StatusBadRequest, APIError{CodeMalformedCell, err.Error()}}
	case errors.Is(err, model.ErrVariantUnknown):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeVariantUnknown, err.Error()}}
	case errors.Is(err, model.ErrSamePlayer):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeSamePlayer, "A game needs two distinct players"}}
	case errors.Is(err, player.ErrInvalidDisplayName):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeInvalidDisplayName, err.Error()}}

	// State conflicts
	case errors.Is(err, model.ErrPlayerExists):
		return &httpError{http.StatusConflict, APIError{CodePlayerExists, "Player already exists"}}
	case errors.Is(err, model.ErrUserAlreadyQueued):
		return &httpError{http.StatusConflict, APIError{CodeUserAlreadyQueued, "Already waiting in the matchmaking queue"}}
	case errors.Is(err, model.ErrConflict):
		return &httpError{http.StatusConflict, APIError{CodeConflict, "Concurrent modification, try again"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewMissingPlayerError is returned when a request needs X-Player-ID and has none
func NewMissingPlayerError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeMissingPlayer, "X-Player-ID header required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
