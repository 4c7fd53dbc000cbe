package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"hoops-server/internal/engine"
	"hoops-server/internal/schedule"
	"hoops-server/internal/season"
	"hoops-server/internal/shared/errors"
	"hoops-server/internal/shared/response"
)

type ScheduleHandler struct {
	repo  *schedule.Repository
	cache *season.RedisBoxScoreCache
}

func NewScheduleHandler(repo *schedule.Repository, cache *season.RedisBoxScoreCache) *ScheduleHandler {
	return &ScheduleHandler{
		repo:  repo,
		cache: cache,
	}
}

// GetGame returns one schedule entry, including scores and the box
// score once the game is complete.
func (h *ScheduleHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "schedule_get_game")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	gameID, err := gameIDFromPath(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	game, err := h.repo.GetGame(ctx, gameID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	if game == nil {
		response.Error(w, r, logger, errors.NotFoundf("game %d not found", gameID))
		return
	}

	response.Success(w, http.StatusOK, game)
}

// GetGamesByDate returns the slate for one calendar day.
func (h *ScheduleHandler) GetGamesByDate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "schedule_get_by_date")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		response.Error(w, r, logger, errors.Validation("date query parameter is required"))
		return
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid date, expected YYYY-MM-DD", err))
		return
	}

	games, err := h.repo.GetGamesByDate(ctx, date)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if games == nil {
		games = []schedule.Game{}
	}

	response.Success(w, http.StatusOK, games)
}

// GetBoxScore returns a completed game's final box score, served from
// the cache when warm.
func (h *ScheduleHandler) GetBoxScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "schedule_get_box_score")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	gameID, err := gameIDFromPath(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if cached, err := h.cache.ReadFinalBoxScore(ctx, gameID); err == nil && cached != nil {
		response.Success(w, http.StatusOK, cached)
		return
	}

	game, err := h.repo.GetGame(ctx, gameID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	if game == nil {
		response.Error(w, r, logger, errors.NotFoundf("game %d not found", gameID))
		return
	}
	if !game.IsComplete || game.BoxScore == nil {
		response.Error(w, r, logger, errors.Validationf("game %d is not complete", gameID))
		return
	}

	result := engine.FinalResult{
		GameID:        game.ID,
		HomeTeamID:    game.HomeTeamID,
		AwayTeamID:    game.AwayTeamID,
		HomeScore:     game.HomeScore,
		AwayScore:     game.AwayScore,
		QuarterScores: game.QuarterScores,
		HomeLines:     game.BoxScore.Home,
		AwayLines:     game.BoxScore.Away,
	}
	if len(game.QuarterScores) > 4 {
		result.Overtimes = len(game.QuarterScores) - 4
	}

	response.Success(w, http.StatusOK, result)
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
