package season

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
)

type StandingsRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewStandingsRepository(db *sql.DB, logger *slog.Logger) *StandingsRepository {
	return &StandingsRepository{
		db:     db,
		logger: logger,
	}
}

// RecordResult folds one completed game into a team's standing. The
// read and write run in one transaction with the row locked, so two
// batch jobs finishing at once cannot lose an update.
func (r *StandingsRepository) RecordResult(ctx context.Context, teamID int, won, home bool) error {
	logger := r.logger.With("component", "standings_repository", "operation", "record_result",
		"team_id", teamID, "won", won, "home", home)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		SELECT team_id, conference, wins, losses, home_wins, home_losses,
		       away_wins, away_losses, streak, recent_results
		FROM standings
		WHERE team_id = $1
		FOR UPDATE
	`

	var s Standing
	var recentResults []byte
	err = tx.QueryRowContext(ctx, query, teamID).Scan(
		&s.TeamID,
		&s.Conference,
		&s.Wins,
		&s.Losses,
		&s.HomeWins,
		&s.HomeLosses,
		&s.AwayWins,
		&s.AwayLosses,
		&s.Streak,
		&recentResults,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("no standing for team %d", teamID)
		}
		logger.Error("Failed to load standing", "error", err)
		return fmt.Errorf("failed to load standing: %w", err)
	}

	if len(recentResults) > 0 {
		if err := json.Unmarshal(recentResults, &s.RecentResults); err != nil {
			return fmt.Errorf("failed to decode recent results: %w", err)
		}
	}

	s.recordResult(won, home)

	updatedRecent, err := json.Marshal(s.RecentResults)
	if err != nil {
		return fmt.Errorf("failed to encode recent results: %w", err)
	}

	update := `
		UPDATE standings
		SET wins = $2, losses = $3, home_wins = $4, home_losses = $5,
		    away_wins = $6, away_losses = $7, streak = $8, recent_results = $9,
		    updated_at = NOW()
		WHERE team_id = $1
	`

	if _, err := tx.ExecContext(ctx, update, teamID,
		s.Wins, s.Losses, s.HomeWins, s.HomeLosses,
		s.AwayWins, s.AwayLosses, s.Streak, updatedRecent); err != nil {
		logger.Error("Failed to update standing", "error", err)
		return fmt.Errorf("failed to update standing: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit standing update: %w", err)
	}

	logger.Debug("Standing updated", "wins", s.Wins, "losses", s.Losses, "streak", s.Streak)
	return nil
}

// GetStandings returns all standings, best record first within each
// conference.
func (r *StandingsRepository) GetStandings(ctx context.Context) ([]Standing, error) {
	logger := r.logger.With("component", "standings_repository", "operation", "get_standings")

	query := `
		SELECT team_id, conference, wins, losses, home_wins, home_losses,
		       away_wins, away_losses, streak, recent_results
		FROM standings
		ORDER BY conference, wins DESC, losses, team_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("Failed to query standings", "error", err)
		return nil, fmt.Errorf("failed to query standings: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var standings []Standing
	for rows.Next() {
		var s Standing
		var recentResults []byte
		err := rows.Scan(
			&s.TeamID,
			&s.Conference,
			&s.Wins,
			&s.Losses,
			&s.HomeWins,
			&s.HomeLosses,
			&s.AwayWins,
			&s.AwayLosses,
			&s.Streak,
			&recentResults,
		)
		if err != nil {
			logger.Error("Failed to scan standing row", "error", err)
			return nil, fmt.Errorf("failed to scan standing: %w", err)
		}

		if len(recentResults) > 0 {
			if err := json.Unmarshal(recentResults, &s.RecentResults); err != nil {
				return nil, fmt.Errorf("failed to decode recent results: %w", err)
			}
		}

		standings = append(standings, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating standings: %w", err)
	}

	return standings, nil
}
