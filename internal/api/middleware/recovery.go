package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/gomoku-go/internal/api/apierr"
	"github.com/mcoot/gomoku-go/internal/middleware"
)

// Recovery converts handler panics into INTERNAL_ERROR JSON responses
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, writePanicError)
}

func writePanicError(w http.ResponseWriter, r *http.Request, _ any) {
	// an event stream has already sent its headers
	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		return
	}
	apierr.WriteError(w, apierr.NewInternalError())
}
