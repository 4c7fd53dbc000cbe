package livegame

import (
	"context"
	"log/slog"

	"hoops-server/internal/engine"
	"hoops-server/internal/schedule"
	"hoops-server/internal/shared/errors"
)

// ScheduleStore is the slice of schedule persistence the state machine
// drives: loading a game and storing its paused checkpoint. Completion
// goes through the aggregator, never directly through this store.
type ScheduleStore interface {
	GetGame(ctx context.Context, gameID int) (*schedule.Game, error)
	SaveCheckpoint(ctx context.Context, gameID, quarter, homeScore, awayScore int, checkpoint []byte) error
	ClearCheckpoint(ctx context.Context, gameID int) error
}

// RosterProvider supplies both teams' rosters for a matchup.
type RosterProvider interface {
	GetRoster(ctx context.Context, teamID int) (engine.Roster, error)
}

// ResultApplier is the single result-application contract shared with
// the batch path.
type ResultApplier interface {
	ApplyResult(ctx context.Context, game schedule.Game, result engine.FinalResult, isUserGame bool) error
}

// Outcome is what Continue returns: either another paused quarter or
// the finished game, never both.
type Outcome struct {
	Quarter *engine.QuarterResult `json:"quarter,omitempty"`
	Final   *engine.FinalResult   `json:"final,omitempty"`
}

// Service drives the simulation engine across quarters for the one
// game a human is watching. Between calls the whole game state lives in
// the checkpoint on the schedule entry, so play survives navigation and
// process restarts.
type Service struct {
	engine     *engine.Engine
	schedule   ScheduleStore
	rosters    RosterProvider
	aggregator ResultApplier
	logger     *slog.Logger
}

func NewService(
	eng *engine.Engine,
	scheduleStore ScheduleStore,
	rosters RosterProvider,
	aggregator ResultApplier,
	logger *slog.Logger,
) *Service {
	return &Service{
		engine:     eng,
		schedule:   scheduleStore,
		rosters:    rosters,
		aggregator: aggregator,
		logger:     logger,
	}
}

// Start simulates exactly quarter 1 of a not-started game and pauses.
// Starting is not idempotent: a game that already carries a checkpoint
// is rejected with a conflict and its checkpoint is left untouched.
func (s *Service) Start(ctx context.Context, gameID, userTeamID int, lineup []int, tactics *engine.TacticalSettings) (engine.QuarterResult, error) {
	logger := s.logger.With("component", "livegame_service", "operation", "start", "game_id", gameID)

	game, err := s.loadGame(ctx, gameID)
	if err != nil {
		return engine.QuarterResult{}, err
	}

	if game.IsComplete {
		return engine.QuarterResult{}, errors.Validationf("game %d is already complete", gameID)
	}
	if game.IsInProgress || len(game.Checkpoint) > 0 {
		return engine.QuarterResult{}, errors.Conflictf("game %d is already in progress", gameID)
	}

	homeRoster, err := s.rosters.GetRoster(ctx, game.HomeTeamID)
	if err != nil {
		return engine.QuarterResult{}, err
	}
	awayRoster, err := s.rosters.GetRoster(ctx, game.AwayTeamID)
	if err != nil {
		return engine.QuarterResult{}, err
	}

	state, err := s.engine.NewGame(gameID, homeRoster, awayRoster, engine.SeedFor(game.ID, game.Date))
	if err != nil {
		return engine.QuarterResult{}, errors.WrapInternal("failed to initialize game", err)
	}

	if lineup != nil || tactics != nil {
		adj := engine.Adjustments{Lineup: lineup, Tactics: tactics}
		if err := s.engine.ApplyAdjustments(state, userTeamID, adj); err != nil {
			return engine.QuarterResult{}, errors.Validationf("invalid starting adjustments: %v", err)
		}
	}

	result, err := s.engine.SimulateQuarter(state)
	if err != nil {
		return engine.QuarterResult{}, errors.WrapInternal("failed to simulate quarter", err)
	}

	if err := s.saveCheckpoint(ctx, game.ID, state); err != nil {
		return engine.QuarterResult{}, err
	}

	logger.Info("Game started",
		"home_score", result.HomeScore, "away_score", result.AwayScore)

	return result, nil
}

// Continue applies any coach adjustments, simulates the next quarter
// and either pauses again or finishes the game. A regulation tie keeps
// the game open: the next Continue call plays an overtime period under
// the same contract.
func (s *Service) Continue(ctx context.Context, gameID, userTeamID int, adjustments *engine.Adjustments) (*Outcome, error) {
	logger := s.logger.With("component", "livegame_service", "operation", "continue", "game_id", gameID)

	game, state, err := s.loadCheckpoint(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if adjustments != nil {
		if err := s.engine.ApplyAdjustments(state, userTeamID, *adjustments); err != nil {
			return nil, errors.Validationf("invalid adjustments: %v", err)
		}
	}

	result, err := s.engine.SimulateQuarter(state)
	if err != nil {
		return nil, errors.WrapInternal("failed to simulate quarter", err)
	}

	if !result.GameOver {
		if err := s.saveCheckpoint(ctx, game.ID, state); err != nil {
			return nil, err
		}
		logger.Debug("Quarter complete, game paused",
			"quarter", result.Quarter, "home_score", result.HomeScore, "away_score", result.AwayScore)
		return &Outcome{Quarter: &result}, nil
	}

	final, err := s.engine.Final(state)
	if err != nil {
		return nil, errors.WrapInternal("failed to finalize game", err)
	}

	if err := s.aggregator.ApplyResult(ctx, *game, final, true); err != nil {
		return nil, err
	}

	logger.Info("Game finished",
		"home_score", final.HomeScore, "away_score", final.AwayScore, "overtimes", final.Overtimes)

	return &Outcome{Final: &final}, nil
}

// SimToEnd runs every remaining quarter from the stored checkpoint
// without pausing and applies the final result.
func (s *Service) SimToEnd(ctx context.Context, gameID int) (*engine.FinalResult, error) {
	logger := s.logger.With("component", "livegame_service", "operation", "sim_to_end", "game_id", gameID)

	game, state, err := s.loadCheckpoint(ctx, gameID)
	if err != nil {
		return nil, err
	}

	final, err := s.engine.SimulateToEnd(state)
	if err != nil {
		return nil, errors.WrapInternal("failed to simulate to end", err)
	}

	if err := s.aggregator.ApplyResult(ctx, *game, final, true); err != nil {
		return nil, err
	}

	logger.Info("Game simulated to end",
		"home_score", final.HomeScore, "away_score", final.AwayScore, "overtimes", final.Overtimes)

	return &final, nil
}

// Abandon discards an in-progress game's checkpoint so it can be
// started over.
func (s *Service) Abandon(ctx context.Context, gameID int) error {
	game, err := s.loadGame(ctx, gameID)
	if err != nil {
		return err
	}
	if game.IsComplete {
		return errors.Validationf("game %d is already complete", gameID)
	}
	if !game.IsInProgress {
		return errors.Validationf("game %d is not in progress", gameID)
	}
	return s.schedule.ClearCheckpoint(ctx, gameID)
}

func (s *Service) loadGame(ctx context.Context, gameID int) (*schedule.Game, error) {
	game, err := s.schedule.GetGame(ctx, gameID)
	if err != nil {
		return nil, errors.WrapInternal("failed to load game", err)
	}
	if game == nil {
		return nil, errors.NotFoundf("game %d not found", gameID)
	}
	return game, nil
}

func (s *Service) loadCheckpoint(ctx context.Context, gameID int) (*schedule.Game, *engine.GameState, error) {
	game, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}

	if game.IsComplete {
		return nil, nil, errors.Validationf("game %d is already complete", gameID)
	}
	if !game.IsInProgress || len(game.Checkpoint) == 0 {
		return nil, nil, errors.Validationf("game %d has no checkpoint to resume", gameID)
	}

	state, err := engine.Decode(game.Checkpoint)
	if err != nil {
		return nil, nil, errors.WrapInternal("failed to decode checkpoint", err)
	}

	return game, state, nil
}

func (s *Service) saveCheckpoint(ctx context.Context, gameID int, state *engine.GameState) error {
	blob, err := engine.Encode(state)
	if err != nil {
		return errors.WrapInternal("failed to encode checkpoint", err)
	}

	home, away := engine.Score(state)
	if err := s.schedule.SaveCheckpoint(ctx, gameID, engine.Quarter(state), home, away, blob); err != nil {
		return errors.WrapInternal("failed to save checkpoint", err)
	}

	return nil
}
