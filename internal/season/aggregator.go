package season

import (
	"context"
	"log/slog"

	"hoops-server/internal/engine"
	"hoops-server/internal/schedule"
	"hoops-server/internal/shared/errors"
)

// ScheduleStore marks a game complete exactly once. The boolean return
// is the no-double-apply guard: false means the game was already
// complete and nothing was written.
type ScheduleStore interface {
	CompleteGame(ctx context.Context, gameID int, result engine.FinalResult) (bool, error)
}

// StandingsStore folds a win or loss into one team's record.
type StandingsStore interface {
	RecordResult(ctx context.Context, teamID int, won, home bool) error
}

// StatsStore folds one box-score line into season totals. false means
// the player id is unknown and the line was skipped.
type StatsStore interface {
	AddLine(ctx context.Context, line engine.StatLine) (bool, error)
}

// ConditionStore updates longer-lived player condition fields from one
// game's line.
type ConditionStore interface {
	ApplyGameLine(ctx context.Context, line engine.StatLine) (bool, error)
}

// CoachStore records a completed game on a coach's record.
type CoachStore interface {
	RecordCoachResult(ctx context.Context, teamID int, won, playoff bool) error
}

// PlayoffNotifier is the external playoff-progression collaborator; it
// owns series/bracket state.
type PlayoffNotifier interface {
	PlayoffGameCompleted(ctx context.Context, game schedule.Game, homeScore, awayScore int) error
}

// ProgressionNotifier is the external player-development collaborator.
// It receives the same box score the aggregator applied.
type ProgressionNotifier interface {
	GameCompleted(ctx context.Context, game schedule.Game, result engine.FinalResult) error
}

// BoxScoreCache optionally mirrors final box scores for the read
// surface; a nil cache is skipped.
type BoxScoreCache interface {
	WriteFinalBoxScore(ctx context.Context, gameID int, result engine.FinalResult) error
}

// Aggregator is the single entry point that applies a finished game to
// season state. The interactive path and the batch path both call
// ApplyResult, so a game can only be counted through one contract.
type Aggregator struct {
	scheduleStore  ScheduleStore
	standingsStore StandingsStore
	statsStore     StatsStore
	conditionStore ConditionStore
	coachStore     CoachStore
	playoffs       PlayoffNotifier
	progression    ProgressionNotifier
	boxScoreCache  BoxScoreCache
	logger         *slog.Logger
}

func NewAggregator(
	scheduleStore ScheduleStore,
	standingsStore StandingsStore,
	statsStore StatsStore,
	conditionStore ConditionStore,
	coachStore CoachStore,
	logger *slog.Logger,
) *Aggregator {
	return &Aggregator{
		scheduleStore:  scheduleStore,
		standingsStore: standingsStore,
		statsStore:     statsStore,
		conditionStore: conditionStore,
		coachStore:     coachStore,
		logger:         logger,
	}
}

// WithPlayoffNotifier attaches the playoff-progression collaborator.
func (a *Aggregator) WithPlayoffNotifier(n PlayoffNotifier) *Aggregator {
	a.playoffs = n
	return a
}

// WithProgressionNotifier attaches the player-development collaborator.
func (a *Aggregator) WithProgressionNotifier(n ProgressionNotifier) *Aggregator {
	a.progression = n
	return a
}

// WithBoxScoreCache attaches the optional final box-score mirror.
func (a *Aggregator) WithBoxScoreCache(c BoxScoreCache) *Aggregator {
	a.boxScoreCache = c
	return a
}

// ApplyResult applies one completed game, exactly once. Re-applying a
// result to an already-complete game is rejected with a conflict before
// anything is written, so standings and season stats never double-count.
// A missing player id inside the box score is skipped, not an error;
// collaborator failures after the season-state update are logged and do
// not roll anything back.
func (a *Aggregator) ApplyResult(ctx context.Context, game schedule.Game, result engine.FinalResult, isUserGame bool) error {
	logger := a.logger.With("component", "season_aggregator", "operation", "apply_result",
		"game_id", game.ID, "user_game", isUserGame)

	applied, err := a.scheduleStore.CompleteGame(ctx, game.ID, result)
	if err != nil {
		logger.Error("Failed to complete schedule entry", "error", err)
		return errors.WrapInternal("failed to complete schedule entry", err)
	}
	if !applied {
		return errors.Conflictf("game %d result already applied", game.ID)
	}

	homeWon := result.HomeScore > result.AwayScore

	if err := a.standingsStore.RecordResult(ctx, game.HomeTeamID, homeWon, true); err != nil {
		logger.Error("Failed to update home standing", "error", err, "team_id", game.HomeTeamID)
		return errors.WrapInternal("failed to update standings", err)
	}
	if err := a.standingsStore.RecordResult(ctx, game.AwayTeamID, !homeWon, false); err != nil {
		logger.Error("Failed to update away standing", "error", err, "team_id", game.AwayTeamID)
		return errors.WrapInternal("failed to update standings", err)
	}

	a.applyBoxScore(ctx, logger, result)

	if err := a.coachStore.RecordCoachResult(ctx, game.HomeTeamID, homeWon, game.IsPlayoff); err != nil {
		logger.Warn("Failed to update home coach record", "error", err)
	}
	if err := a.coachStore.RecordCoachResult(ctx, game.AwayTeamID, !homeWon, game.IsPlayoff); err != nil {
		logger.Warn("Failed to update away coach record", "error", err)
	}

	a.notifyCollaborators(ctx, logger, game, result)

	logger.Info("Result applied",
		"home_team", game.HomeTeamID, "away_team", game.AwayTeamID,
		"home_score", result.HomeScore, "away_score", result.AwayScore,
		"overtimes", result.Overtimes)

	return nil
}

func (a *Aggregator) applyBoxScore(ctx context.Context, logger *slog.Logger, result engine.FinalResult) {
	skipped := 0
	for _, line := range append(append([]engine.StatLine(nil), result.HomeLines...), result.AwayLines...) {
		added, err := a.statsStore.AddLine(ctx, line)
		if err != nil {
			logger.Warn("Failed to add season line", "error", err, "player_id", line.PlayerID)
			continue
		}
		if !added {
			skipped++
			continue
		}

		if _, err := a.conditionStore.ApplyGameLine(ctx, line); err != nil {
			logger.Warn("Failed to update player condition", "error", err, "player_id", line.PlayerID)
		}
	}

	if skipped > 0 {
		logger.Debug("Skipped unknown player ids in box score", "count", skipped)
	}
}

func (a *Aggregator) notifyCollaborators(ctx context.Context, logger *slog.Logger, game schedule.Game, result engine.FinalResult) {
	if game.IsPlayoff && a.playoffs != nil {
		if err := a.playoffs.PlayoffGameCompleted(ctx, game, result.HomeScore, result.AwayScore); err != nil {
			logger.Error("Playoff collaborator failed", "error", err)
		}
	}

	if a.progression != nil {
		if err := a.progression.GameCompleted(ctx, game, result); err != nil {
			logger.Error("Progression collaborator failed", "error", err)
		}
	}

	if a.boxScoreCache != nil {
		if err := a.boxScoreCache.WriteFinalBoxScore(ctx, game.ID, result); err != nil {
			logger.Warn("Failed to cache final box score", "error", err)
		}
	}
}
