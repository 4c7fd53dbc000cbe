package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"hoops-server/internal/engine"
	"hoops-server/internal/livegame"
	"hoops-server/internal/middleware"
	"hoops-server/internal/shared/errors"
	"hoops-server/internal/shared/response"
)

type LiveGameHandler struct {
	service *livegame.Service
}

func NewLiveGameHandler(service *livegame.Service) *LiveGameHandler {
	return &LiveGameHandler{service: service}
}

type startRequest struct {
	Lineup  []int                    `json:"lineup,omitempty"`
	Tactics *engine.TacticalSettings `json:"tactics,omitempty"`
}

type continueRequest struct {
	Lineup  []int                    `json:"lineup,omitempty"`
	Tactics *engine.TacticalSettings `json:"tactics,omitempty"`
}

// Start plays quarter 1 of the user's game and pauses.
func (h *LiveGameHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "livegame_start")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	gameID, err := gameIDFromPath(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	claims := middleware.SessionFromRequest(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	var req startRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
			return
		}
	}

	result, err := h.service.Start(ctx, gameID, claims.TeamID, req.Lineup, req.Tactics)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}

// Continue applies adjustments and plays the next quarter.
func (h *LiveGameHandler) Continue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "livegame_continue")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	gameID, err := gameIDFromPath(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	claims := middleware.SessionFromRequest(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	var req continueRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
			return
		}
	}

	var adjustments *engine.Adjustments
	if req.Lineup != nil || req.Tactics != nil {
		adjustments = &engine.Adjustments{Lineup: req.Lineup, Tactics: req.Tactics}
	}

	outcome, err := h.service.Continue(ctx, gameID, claims.TeamID, adjustments)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, outcome)
}

// SimToEnd finishes the user's paused game without further stops.
func (h *LiveGameHandler) SimToEnd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "livegame_sim_to_end")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	gameID, err := gameIDFromPath(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	final, err := h.service.SimToEnd(ctx, gameID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, final)
}

// Abandon discards a paused game's checkpoint.
func (h *LiveGameHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "livegame_abandon")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	gameID, err := gameIDFromPath(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if err := h.service.Abandon(ctx, gameID); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"status": "abandoned"})
}

func gameIDFromPath(r *http.Request) (int, error) {
	idStr := r.PathValue("id")
	if idStr == "" {
		return 0, errors.Validation("game ID is required")
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, errors.WrapValidation("invalid game ID format", err)
	}
	return id, nil
}
