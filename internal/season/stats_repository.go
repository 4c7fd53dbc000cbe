package season

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"hoops-server/internal/engine"
)

type StatsRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewStatsRepository(db *sql.DB, logger *slog.Logger) *StatsRepository {
	return &StatsRepository{
		db:     db,
		logger: logger,
	}
}

// AddLine folds one box-score line into a player's season totals.
// Returns false for an unknown player id; the aggregator skips those
// rather than failing the whole result application.
func (r *StatsRepository) AddLine(ctx context.Context, line engine.StatLine) (bool, error) {
	logger := r.logger.With("component", "stats_repository", "operation", "add_line", "player_id", line.PlayerID)

	query := `
		UPDATE player_season_stats
		SET games_played = games_played + 1,
		    minutes = minutes + $2,
		    points = points + $3,
		    rebounds = rebounds + $4,
		    assists = assists + $5,
		    steals = steals + $6,
		    blocks = blocks + $7,
		    turnovers = turnovers + $8,
		    fgm = fgm + $9, fga = fga + $10,
		    tpm = tpm + $11, tpa = tpa + $12,
		    ftm = ftm + $13, fta = fta + $14,
		    updated_at = NOW()
		WHERE player_id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		line.PlayerID,
		line.Minutes,
		line.Points,
		line.Rebounds,
		line.Assists,
		line.Steals,
		line.Blocks,
		line.Turnovers,
		line.FieldGoalsMade, line.FieldGoalsAttempted,
		line.ThreePointersMade, line.ThreePointersAttempted,
		line.FreeThrowsMade, line.FreeThrowsAttempted,
	)
	if err != nil {
		logger.Error("Failed to add season line", "error", err)
		return false, fmt.Errorf("failed to add season line: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		logger.Debug("Unknown player id, skipping season line")
		return false, nil
	}

	return true, nil
}

func (r *StatsRepository) GetPlayerStats(ctx context.Context, playerID int) (*PlayerSeasonStats, error) {
	logger := r.logger.With("component", "stats_repository", "operation", "get_player_stats", "player_id", playerID)

	query := `
		SELECT player_id, games_played, minutes, points, rebounds, assists,
		       steals, blocks, turnovers, fgm, fga, tpm, tpa, ftm, fta
		FROM player_season_stats
		WHERE player_id = $1
	`

	var s PlayerSeasonStats
	err := r.db.QueryRowContext(ctx, query, playerID).Scan(
		&s.PlayerID,
		&s.GamesPlayed,
		&s.Minutes,
		&s.Points,
		&s.Rebounds,
		&s.Assists,
		&s.Steals,
		&s.Blocks,
		&s.Turnovers,
		&s.FieldGoalsMade, &s.FieldGoalsAttempted,
		&s.ThreePointersMade, &s.ThreePointersAttempted,
		&s.FreeThrowsMade, &s.FreeThrowsAttempted,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			logger.Debug("No season stats for player")
			return nil, nil
		}
		logger.Error("Failed to get player stats", "error", err)
		return nil, fmt.Errorf("failed to get player stats: %w", err)
	}

	return &s, nil
}

func (r *StatsRepository) GetTeamStats(ctx context.Context, teamID int) ([]PlayerSeasonStats, error) {
	logger := r.logger.With("component", "stats_repository", "operation", "get_team_stats", "team_id", teamID)

	query := `
		SELECT s.player_id, s.games_played, s.minutes, s.points, s.rebounds, s.assists,
		       s.steals, s.blocks, s.turnovers, s.fgm, s.fga, s.tpm, s.tpa, s.ftm, s.fta
		FROM player_season_stats s
		JOIN players p ON p.id = s.player_id
		WHERE p.team_id = $1
		ORDER BY s.points DESC, s.player_id
	`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		logger.Error("Failed to query team stats", "error", err)
		return nil, fmt.Errorf("failed to query team stats: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var stats []PlayerSeasonStats
	for rows.Next() {
		var s PlayerSeasonStats
		err := rows.Scan(
			&s.PlayerID,
			&s.GamesPlayed,
			&s.Minutes,
			&s.Points,
			&s.Rebounds,
			&s.Assists,
			&s.Steals,
			&s.Blocks,
			&s.Turnovers,
			&s.FieldGoalsMade, &s.FieldGoalsAttempted,
			&s.ThreePointersMade, &s.ThreePointersAttempted,
			&s.FreeThrowsMade, &s.FreeThrowsAttempted,
		)
		if err != nil {
			logger.Error("Failed to scan stats row", "error", err)
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stats: %w", err)
	}

	return stats, nil
}
