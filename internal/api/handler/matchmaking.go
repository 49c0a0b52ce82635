package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gomoku-go/internal/api/middleware"
	"github.com/mcoot/gomoku-go/internal/api/request"
	"github.com/mcoot/gomoku-go/internal/api/response"
	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/services/matchmaking"
)

// MatchmakingHandler handles the matchmaking queue endpoints
type MatchmakingHandler struct {
	controller matchmaking.ControllerInterface
}

// NewMatchmakingHandler creates a new matchmaking handler
func NewMatchmakingHandler(controller matchmaking.ControllerInterface) *MatchmakingHandler {
	return &MatchmakingHandler{controller: controller}
}

// Enter handles POST /api/v1/matchmaking.
// Responds 201 with the new game when paired, 202 with the queue entry otherwise.
func (h *MatchmakingHandler) Enter(w http.ResponseWriter, r *http.Request) {
	var req request.MatchmakingRequest
	if !decode(w, r, &req) {
		return
	}

	outcome, err := h.controller.TryMatchmaking(r.Context(), mustCaller(r), model.VariantName(req.Variant))
	if err != nil {
		WriteError(w, err)
		return
	}

	if outcome.Matched() {
		response.Created(w, "/api/v1/games/"+string(outcome.Game.ID), response.MatchmakingResultFromModel(outcome))
		return
	}
	response.JSON(w, http.StatusAccepted, response.MatchmakingResultFromModel(outcome))
}

// Status handles GET /api/v1/matchmaking/{id}
func (h *MatchmakingHandler) Status(w http.ResponseWriter, r *http.Request) {
	entry, err := h.controller.GetStatus(r.Context(), model.MatchmakingEntryID(mux.Vars(r)["id"]), mustCaller(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.MatchmakingEntryFromModel(*entry))
}

// Exit handles DELETE /api/v1/matchmaking/{id}
func (h *MatchmakingHandler) Exit(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.ExitQueue(r.Context(), model.MatchmakingEntryID(mux.Vars(r)["id"]), mustCaller(r)); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

func mustCaller(r *http.Request) model.PlayerID {
	return middleware.MustGetPlayerID(r.Context())
}
