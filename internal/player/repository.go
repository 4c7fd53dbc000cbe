package player

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"hoops-server/internal/engine"
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

func (r *Repository) GetPlayer(ctx context.Context, playerID int) (*Player, error) {
	logger := r.logger.With("component", "player_repository", "operation", "get_player", "player_id", playerID)

	query := `
		SELECT id, team_id, name, position, rating, fatigue, form,
		       career_games, career_points, career_rebounds, career_assists,
		       created_at, updated_at
		FROM players
		WHERE id = $1
	`

	var p Player
	err := r.db.QueryRowContext(ctx, query, playerID).Scan(
		&p.ID,
		&p.TeamID,
		&p.Name,
		&p.Position,
		&p.Rating,
		&p.Fatigue,
		&p.Form,
		&p.CareerGames,
		&p.CareerPoints,
		&p.CareerRebounds,
		&p.CareerAssists,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			logger.Debug("Player not found")
			return nil, nil
		}
		logger.Error("Database error getting player", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &p, nil
}

func (r *Repository) GetPlayersByTeam(ctx context.Context, teamID int) ([]Player, error) {
	logger := r.logger.With("component", "player_repository", "operation", "get_players_by_team", "team_id", teamID)

	query := `
		SELECT id, team_id, name, position, rating, fatigue, form,
		       career_games, career_points, career_rebounds, career_assists,
		       created_at, updated_at
		FROM players
		WHERE team_id = $1
		ORDER BY rating DESC, id
	`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		logger.Error("Failed to query players", "error", err)
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var players []Player
	for rows.Next() {
		var p Player
		err := rows.Scan(
			&p.ID,
			&p.TeamID,
			&p.Name,
			&p.Position,
			&p.Rating,
			&p.Fatigue,
			&p.Form,
			&p.CareerGames,
			&p.CareerPoints,
			&p.CareerRebounds,
			&p.CareerAssists,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			logger.Error("Failed to scan player row", "error", err)
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}

	return players, nil
}

// ApplyGameLine folds one box-score line into a player's condition and
// career fields: fatigue climbs with minutes played, form is an
// exponentially-weighted recent-performance window, career totals
// accumulate. Returns false when the player id is unknown; callers skip
// rather than abort.
func (r *Repository) ApplyGameLine(ctx context.Context, line engine.StatLine) (bool, error) {
	logger := r.logger.With("component", "player_repository", "operation", "apply_game_line", "player_id", line.PlayerID)

	// Game score as a crude single-game performance measure
	performance := float64(line.Points) + 1.2*float64(line.Rebounds) + 1.5*float64(line.Assists) -
		float64(line.Turnovers)

	query := `
		UPDATE players
		SET fatigue = LEAST(1.0, fatigue + $2),
		    form = 0.7 * form + 0.3 * $3,
		    career_games = career_games + 1,
		    career_points = career_points + $4,
		    career_rebounds = career_rebounds + $5,
		    career_assists = career_assists + $6,
		    updated_at = NOW()
		WHERE id = $1
	`

	fatigueGain := line.Minutes / 240.0

	result, err := r.db.ExecContext(ctx, query,
		line.PlayerID,
		fatigueGain,
		performance,
		line.Points,
		line.Rebounds,
		line.Assists,
	)
	if err != nil {
		logger.Error("Failed to apply game line", "error", err)
		return false, fmt.Errorf("failed to apply game line: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		logger.Debug("Unknown player id, skipping line")
		return false, nil
	}

	return true, nil
}

// RecoverFatigue applies a league-wide off-day recovery step.
func (r *Repository) RecoverFatigue(ctx context.Context, amount float64) error {
	logger := r.logger.With("component", "player_repository", "operation", "recover_fatigue")

	query := `
		UPDATE players
		SET fatigue = GREATEST(0.0, fatigue - $1), updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, amount); err != nil {
		logger.Error("Failed to recover fatigue", "error", err)
		return fmt.Errorf("failed to recover fatigue: %w", err)
	}

	return nil
}
