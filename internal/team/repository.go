package team

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

type Repository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRepository(db *sql.DB, logger *slog.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetTeam(ctx context.Context, teamID int) (*Team, error) {
	logger := r.logger.With("component", "team_repository", "operation", "get_team", "team_id", teamID)

	query := `
		SELECT id, name, city, abbreviation, conference, coach_name,
		       coach_wins, coach_losses, coach_playoff_wins, coach_playoff_losses,
		       created_at, updated_at
		FROM teams
		WHERE id = $1
	`

	var t Team
	err := r.db.QueryRowContext(ctx, query, teamID).Scan(
		&t.ID,
		&t.Name,
		&t.City,
		&t.Abbreviation,
		&t.Conference,
		&t.CoachName,
		&t.CoachWins,
		&t.CoachLosses,
		&t.CoachPlayoffWins,
		&t.CoachPlayoffLosses,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			logger.Debug("Team not found")
			return nil, nil
		}
		logger.Error("Database error getting team", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &t, nil
}

func (r *Repository) GetAllTeams(ctx context.Context) ([]Team, error) {
	logger := r.logger.With("component", "team_repository", "operation", "get_all_teams")

	query := `
		SELECT id, name, city, abbreviation, conference, coach_name,
		       coach_wins, coach_losses, coach_playoff_wins, coach_playoff_losses,
		       created_at, updated_at
		FROM teams
		ORDER BY conference, city
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("Failed to query teams", "error", err)
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var teams []Team
	for rows.Next() {
		var t Team
		err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.City,
			&t.Abbreviation,
			&t.Conference,
			&t.CoachName,
			&t.CoachWins,
			&t.CoachLosses,
			&t.CoachPlayoffWins,
			&t.CoachPlayoffLosses,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			logger.Error("Failed to scan team row", "error", err)
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	logger.Debug("Teams retrieved", "count", len(teams))
	return teams, nil
}

// RecordCoachResult adds one game to a coach's running record.
func (r *Repository) RecordCoachResult(ctx context.Context, teamID int, won, playoff bool) error {
	logger := r.logger.With("component", "team_repository", "operation", "record_coach_result",
		"team_id", teamID, "won", won, "playoff", playoff)

	column := "coach_losses"
	if won && playoff {
		column = "coach_playoff_wins"
	} else if won {
		column = "coach_wins"
	} else if playoff {
		column = "coach_playoff_losses"
	}

	query := fmt.Sprintf(`UPDATE teams SET %s = %s + 1, updated_at = NOW() WHERE id = $1`, column, column)

	result, err := r.db.ExecContext(ctx, query, teamID)
	if err != nil {
		logger.Error("Failed to record coach result", "error", err)
		return fmt.Errorf("failed to record coach result: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		logger.Warn("Team not found for coach record update")
		return fmt.Errorf("team %d not found", teamID)
	}

	return nil
}
