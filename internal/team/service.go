package team

import (
	"context"
	"fmt"
	"log/slog"

	"hoops-server/internal/engine"
	"hoops-server/internal/player"
	"hoops-server/internal/shared/errors"
)

// Service is the roster/team provider every simulation call reads from.
type Service struct {
	teamRepo   *Repository
	playerRepo *player.Repository
	logger     *slog.Logger
}

func NewService(teamRepo *Repository, playerRepo *player.Repository, logger *slog.Logger) *Service {
	return &Service{
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		logger:     logger,
	}
}

func (s *Service) GetTeam(ctx context.Context, teamID int) (*Team, error) {
	t, err := s.teamRepo.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errors.NotFoundf("team %d not found", teamID)
	}
	return t, nil
}

func (s *Service) GetAllTeams(ctx context.Context) ([]Team, error) {
	return s.teamRepo.GetAllTeams(ctx)
}

// GetRoster assembles the engine's view of a team: active players with
// their current condition folded in.
func (s *Service) GetRoster(ctx context.Context, teamID int) (engine.Roster, error) {
	logger := s.logger.With("component", "team_service", "operation", "get_roster", "team_id", teamID)

	players, err := s.playerRepo.GetPlayersByTeam(ctx, teamID)
	if err != nil {
		logger.Error("Failed to load players", "error", err)
		return engine.Roster{}, fmt.Errorf("failed to load players for team %d: %w", teamID, err)
	}

	if len(players) == 0 {
		return engine.Roster{}, errors.NotFoundf("no roster for team %d", teamID)
	}

	roster := engine.Roster{TeamID: teamID, Players: make([]engine.RosterPlayer, 0, len(players))}
	for _, p := range players {
		roster.Players = append(roster.Players, engine.RosterPlayer{
			ID:       p.ID,
			Name:     p.Name,
			Position: p.Position,
			Rating:   p.Rating,
			Fatigue:  p.Fatigue,
		})
	}

	logger.Debug("Roster assembled", "players", len(roster.Players))
	return roster, nil
}

// RecordCoachResult forwards a completed game to the coach record.
func (s *Service) RecordCoachResult(ctx context.Context, teamID int, won, playoff bool) error {
	return s.teamRepo.RecordCoachResult(ctx, teamID, won, playoff)
}
