package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gomoku-go/internal/api/handler"
	"github.com/mcoot/gomoku-go/internal/api/middleware"
	"github.com/mcoot/gomoku-go/internal/api/response"
	"github.com/mcoot/gomoku-go/internal/events/sse"
	sharedmw "github.com/mcoot/gomoku-go/internal/middleware"
	"github.com/mcoot/gomoku-go/internal/services/game"
	"github.com/mcoot/gomoku-go/internal/services/matchmaking"
	"github.com/mcoot/gomoku-go/internal/services/player"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger                *slog.Logger
	PlayerService         player.ServiceInterface
	GameController        game.ControllerInterface
	MatchmakingController matchmaking.ControllerInterface
	HubManager            *sse.HubManager
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.PlayerService, cfg.HubManager)
	gameHandler := handler.NewGameHandler(cfg.GameController, cfg.HubManager)
	matchmakingHandler := handler.NewMatchmakingHandler(cfg.MatchmakingController)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(sharedmw.Tracing())
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(sharedmw.Logging(cfg.Logger))

	// Open routes
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/variants", gameHandler.Variants).Methods(http.MethodGet)
	api.HandleFunc("/ranking", playerHandler.Ranking).Methods(http.MethodGet)
	api.HandleFunc("/players", playerHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/players/{id}", playerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}/stats", playerHandler.Stats).Methods(http.MethodGet)
	api.HandleFunc("/games", gameHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/games", gameHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", gameHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/events", gameHandler.Events).Methods(http.MethodGet)

	// Routes acting as a player (X-Player-ID)
	acting := api.NewRoute().Subrouter()
	acting.Use(middleware.RequirePlayer)
	acting.HandleFunc("/games/{id}/rounds", gameHandler.PlayRound).Methods(http.MethodPost)
	acting.HandleFunc("/games/{id}/leave", gameHandler.Leave).Methods(http.MethodPost)
	acting.HandleFunc("/players/{id}/events", playerHandler.Events).Methods(http.MethodGet)
	acting.HandleFunc("/matchmaking", matchmakingHandler.Enter).Methods(http.MethodPost)
	acting.HandleFunc("/matchmaking/{id}", matchmakingHandler.Status).Methods(http.MethodGet)
	acting.HandleFunc("/matchmaking/{id}", matchmakingHandler.Exit).Methods(http.MethodDelete)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
