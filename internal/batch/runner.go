package batch

import (
	"context"
	"fmt"
	"log/slog"

	"hoops-server/internal/engine"
	"hoops-server/internal/schedule"
)

// RosterProvider supplies rosters for non-interactive games.
type RosterProvider interface {
	GetRoster(ctx context.Context, teamID int) (engine.Roster, error)
}

// Runner simulates one whole game without pausing. Each job builds its
// own engine state from the game's stable seed, so jobs share nothing
// and can run on any number of workers.
type Runner struct {
	engine  *engine.Engine
	rosters RosterProvider
	logger  *slog.Logger
}

func NewRunner(eng *engine.Engine, rosters RosterProvider, logger *slog.Logger) *Runner {
	return &Runner{
		engine:  eng,
		rosters: rosters,
		logger:  logger,
	}
}

func (r *Runner) RunGame(ctx context.Context, game schedule.Game) (engine.FinalResult, error) {
	logger := r.logger.With("component", "batch_runner", "operation", "run_game", "game_id", game.ID)

	homeRoster, err := r.rosters.GetRoster(ctx, game.HomeTeamID)
	if err != nil {
		return engine.FinalResult{}, fmt.Errorf("failed to load home roster: %w", err)
	}
	awayRoster, err := r.rosters.GetRoster(ctx, game.AwayTeamID)
	if err != nil {
		return engine.FinalResult{}, fmt.Errorf("failed to load away roster: %w", err)
	}

	var state *engine.GameState
	if len(game.Checkpoint) > 0 {
		// A game the user started live but handed off to the batch
		// resumes from its checkpoint rather than restarting.
		state, err = engine.Decode(game.Checkpoint)
		if err != nil {
			return engine.FinalResult{}, fmt.Errorf("failed to decode checkpoint: %w", err)
		}
	} else {
		state, err = r.engine.NewGame(game.ID, homeRoster, awayRoster, engine.SeedFor(game.ID, game.Date))
		if err != nil {
			return engine.FinalResult{}, fmt.Errorf("failed to initialize game: %w", err)
		}
	}

	result, err := r.engine.SimulateToEnd(state)
	if err != nil {
		return engine.FinalResult{}, fmt.Errorf("failed to simulate game: %w", err)
	}

	logger.Debug("Game simulated",
		"home_score", result.HomeScore, "away_score", result.AwayScore, "overtimes", result.Overtimes)

	return result, nil
}
