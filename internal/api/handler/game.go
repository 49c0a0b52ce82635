package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gomoku-go/internal/api/middleware"
	"github.com/mcoot/gomoku-go/internal/api/request"
	"github.com/mcoot/gomoku-go/internal/api/response"
	"github.com/mcoot/gomoku-go/internal/events/sse"
	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/services/game"
)

// GameHandler handles game and variant endpoints
type GameHandler struct {
	gameController game.ControllerInterface
	hubManager     *sse.HubManager
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameController game.ControllerInterface, hubManager *sse.HubManager) *GameHandler {
	return &GameHandler{
		gameController: gameController,
		hubManager:     hubManager,
	}
}

// Variants handles GET /api/v1/variants
func (h *GameHandler) Variants(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.VariantListFromModel(h.gameController.ListVariants()))
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGameRequest
	if !decode(w, r, &req) {
		return
	}
	if req.PlayerBlack == "" || req.PlayerWhite == "" {
		WriteError(w, NewInvalidRequestError("player_black and player_white are required"))
		return
	}

	g, err := h.gameController.CreateGame(r.Context(),
		model.PlayerID(req.PlayerBlack),
		model.PlayerID(req.PlayerWhite),
		model.VariantName(req.Variant),
	)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, "/api/v1/games/"+string(g.ID), response.GameFromModel(g))
}

// List handles GET /api/v1/games?player=ID
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		games []*model.Game
		err   error
	)
	if p := r.URL.Query().Get("player"); p != "" {
		games, err = h.gameController.ListGamesForPlayer(r.Context(), model.PlayerID(p))
	} else {
		games, err = h.gameController.ListGames(r.Context())
	}
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameListFromModel(games))
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.gameController.GetGame(r.Context(), model.GameID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

// PlayRound handles POST /api/v1/games/{id}/rounds.
// A late round is reported as TOO_LATE even though the forfeit was persisted.
func (h *GameHandler) PlayRound(w http.ResponseWriter, r *http.Request) {
	var req request.PlayRoundRequest
	if !decode(w, r, &req) {
		return
	}

	round := model.Round{
		Player:      mustCaller(r),
		WantsToSwap: req.WantsToSwap,
	}
	if req.Cell != "" {
		cell, err := model.ParseCell(req.Cell)
		if err != nil {
			WriteError(w, err)
			return
		}
		round.Cell = &cell
	}

	g, err := h.gameController.Play(r.Context(), model.GameID(mux.Vars(r)["id"]), round)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoundResult{
		Outcome: string(response.RoundOutcomeFor(g)),
		Game:    response.GameFromModel(g),
	})
}

// Leave handles POST /api/v1/games/{id}/leave
func (h *GameHandler) Leave(w http.ResponseWriter, r *http.Request) {
	g, err := h.gameController.Leave(r.Context(), model.GameID(mux.Vars(r)["id"]), mustCaller(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

// Events handles GET /api/v1/games/{id}/events (SSE). Anyone may watch a game.
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := model.GameID(mux.Vars(r)["id"])
	if _, err := h.gameController.GetGame(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	sse.ServeSSE(w, r, h.hubManager.GetOrCreateHub(sse.GameTopic(id)), middleware.PlayerFromHeader(r))
}
