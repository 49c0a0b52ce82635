package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/gomoku-go/internal/api/request"
	"github.com/mcoot/gomoku-go/internal/api/response"
	"github.com/mcoot/gomoku-go/internal/events/sse"
	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/services/player"
)

// defaultRankingLimit applies when the ranking request has no limit
const defaultRankingLimit = 50

// PlayerHandler handles player and ranking endpoints
type PlayerHandler struct {
	playerService player.ServiceInterface
	hubManager    *sse.HubManager
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(playerService player.ServiceInterface, hubManager *sse.HubManager) *PlayerHandler {
	return &PlayerHandler{
		playerService: playerService,
		hubManager:    hubManager,
	}
}

// Create handles POST /api/v1/players
func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePlayerRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.playerService.CreatePlayer(r.Context(), model.PlayerID(req.ID), req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, "/api/v1/players/"+string(p.ID), response.PlayerFromModel(p))
}

// Get handles GET /api/v1/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.playerService.GetPlayer(r.Context(), model.PlayerID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(p))
}

// Stats handles GET /api/v1/players/{id}/stats
func (h *PlayerHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.playerService.GetStats(r.Context(), model.PlayerID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.StatsFromModel(*stats))
}

// Ranking handles GET /api/v1/ranking?limit=N
func (h *PlayerHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	limit := defaultRankingLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteError(w, NewInvalidRequestError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	stats, err := h.playerService.Ranking(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RankingFromModel(stats))
}

// Events handles GET /api/v1/players/{id}/events (SSE).
// Only the player themselves may listen to their matchmaking stream.
func (h *PlayerHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])
	caller := mustCaller(r)
	if caller != id {
		WriteError(w, model.ErrPlayerNotFound)
		return
	}
	if _, err := h.playerService.GetPlayer(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	sse.ServeSSE(w, r, h.hubManager.GetOrCreateHub(sse.PlayerTopic(id)), caller)
}
