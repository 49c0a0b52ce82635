package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/gomoku-go/internal/api/apierr"
	"github.com/mcoot/gomoku-go/internal/model"
)

// PlayerHeader carries the caller's player id
const PlayerHeader = "X-Player-ID"

type contextKey string

const playerContextKey contextKey = "player_id"

// RequirePlayer rejects requests without an X-Player-ID header and stores the
// id in the request context. The id is trusted as given.
func RequirePlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := PlayerFromHeader(r)
		if id == "" {
			apierr.WriteError(w, apierr.NewMissingPlayerError())
			return
		}
		ctx := context.WithValue(r.Context(), playerContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PlayerFromHeader reads the caller's player id without requiring one
func PlayerFromHeader(r *http.Request) model.PlayerID {
	return model.PlayerID(strings.TrimSpace(r.Header.Get(PlayerHeader)))
}

// GetPlayerID returns the caller's player id from the request context
func GetPlayerID(ctx context.Context) (model.PlayerID, bool) {
	id, ok := ctx.Value(playerContextKey).(model.PlayerID)
	return id, ok
}

// MustGetPlayerID returns the caller's player id or panics
func MustGetPlayerID(ctx context.Context) model.PlayerID {
	id, ok := GetPlayerID(ctx)
	if !ok {
		panic("no player in context - RequirePlayer middleware not applied?")
	}
	return id
}
