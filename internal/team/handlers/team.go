package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"hoops-server/internal/player"
	"hoops-server/internal/shared/errors"
	"hoops-server/internal/shared/response"
	"hoops-server/internal/team"
)

type TeamHandler struct {
	teamService *team.Service
	playerRepo  *player.Repository
}

func NewTeamHandler(teamService *team.Service, playerRepo *player.Repository) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
		playerRepo:  playerRepo,
	}
}

// GetAll returns every team in the league.
func (h *TeamHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_teams")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	teams, err := h.teamService.GetAllTeams(ctx)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if teams == nil {
		teams = []team.Team{}
	}

	response.Success(w, http.StatusOK, teams)
}

// Get returns one team.
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_team")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	teamID, err := teamIDFromPath(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	t, err := h.teamService.GetTeam(ctx, teamID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	if t == nil {
		response.Error(w, r, logger, errors.NotFoundf("team %d not found", teamID))
		return
	}

	response.Success(w, http.StatusOK, t)
}

// GetRoster returns a team's players ordered by rating.
func (h *TeamHandler) GetRoster(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_team_roster")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	teamID, err := teamIDFromPath(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	players, err := h.playerRepo.GetPlayersByTeam(ctx, teamID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if players == nil {
		players = []player.Player{}
	}

	response.Success(w, http.StatusOK, players)
}

func teamIDFromPath(r *http.Request) (int, error) {
	idStr := r.PathValue("id")
	if idStr == "" {
		return 0, errors.Validation("team ID is required")
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, errors.WrapValidation("invalid team ID format", err)
	}
	return id, nil
}
