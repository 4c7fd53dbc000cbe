package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"hoops-server/internal/season"
	"hoops-server/internal/shared/errors"
	"hoops-server/internal/shared/response"
)

type SeasonHandler struct {
	standings *season.StandingsRepository
	stats     *season.StatsRepository
}

func NewSeasonHandler(standings *season.StandingsRepository, stats *season.StatsRepository) *SeasonHandler {
	return &SeasonHandler{
		standings: standings,
		stats:     stats,
	}
}

// Standings returns both conferences' standings, best record first.
func (h *SeasonHandler) Standings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "season_standings")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	standings, err := h.standings.GetStandings(ctx)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if standings == nil {
		standings = []season.Standing{}
	}

	response.Success(w, http.StatusOK, standings)
}

// PlayerStats returns one player's season totals and averages.
func (h *SeasonHandler) PlayerStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "season_player_stats")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	playerID, err := idFromPath(r, "player ID")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	stats, err := h.stats.GetPlayerStats(ctx, playerID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	if stats == nil {
		response.Error(w, r, logger, errors.NotFoundf("no season stats for player %d", playerID))
		return
	}

	response.Success(w, http.StatusOK, stats)
}

// TeamStats returns season stat lines for every player on a team.
func (h *SeasonHandler) TeamStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "season_team_stats")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	teamID, err := idFromPath(r, "team ID")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	stats, err := h.stats.GetTeamStats(ctx, teamID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if stats == nil {
		stats = []season.PlayerSeasonStats{}
	}

	response.Success(w, http.StatusOK, stats)
}

func idFromPath(r *http.Request, label string) (int, error) {
	idStr := r.PathValue("id")
	if idStr == "" {
		return 0, errors.Validationf("%s is required", label)
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, errors.WrapValidation("invalid "+label+" format", err)
	}
	return id, nil
}
