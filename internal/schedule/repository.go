package schedule

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

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

const gameColumns = `
	id, home_team_id, away_team_id, game_date, is_playoff,
	is_complete, is_in_progress, current_quarter,
	home_score, away_score, box_score, quarter_scores, checkpoint,
	created_at, updated_at
`

func scanGame(scanner interface{ Scan(...interface{}) error }) (*Game, error) {
	var g Game
	var boxScore, quarterScores []byte
	var checkpoint []byte

	err := scanner.Scan(
		&g.ID,
		&g.HomeTeamID,
		&g.AwayTeamID,
		&g.Date,
		&g.IsPlayoff,
		&g.IsComplete,
		&g.IsInProgress,
		&g.CurrentQuarter,
		&g.HomeScore,
		&g.AwayScore,
		&boxScore,
		&quarterScores,
		&checkpoint,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(boxScore) > 0 {
		var bs BoxScore
		if err := json.Unmarshal(boxScore, &bs); err != nil {
			return nil, fmt.Errorf("failed to decode box score for game %d: %w", g.ID, err)
		}
		g.BoxScore = &bs
	}

	if len(quarterScores) > 0 {
		if err := json.Unmarshal(quarterScores, &g.QuarterScores); err != nil {
			return nil, fmt.Errorf("failed to decode quarter scores for game %d: %w", g.ID, err)
		}
	}

	g.Checkpoint = checkpoint
	return &g, nil
}

func (r *Repository) GetGame(ctx context.Context, gameID int) (*Game, error) {
	logger := r.logger.With("component", "schedule_repository", "operation", "get_game", "game_id", gameID)

	query := `SELECT ` + gameColumns + ` FROM schedule WHERE id = $1`

	game, err := scanGame(r.db.QueryRowContext(ctx, query, gameID))
	if err != nil {
		if err == sql.ErrNoRows {
			logger.Debug("Game not found")
			return nil, nil
		}
		logger.Error("Database error getting game", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	return game, nil
}

func (r *Repository) GetGamesByDate(ctx context.Context, date time.Time) ([]Game, error) {
	logger := r.logger.With("component", "schedule_repository", "operation", "get_games_by_date",
		"date", date.Format("2006-01-02"))

	query := `SELECT ` + gameColumns + ` FROM schedule WHERE game_date = $1 ORDER BY id`

	return r.queryGames(ctx, logger, query, date)
}

// GetUnplayedByDateRange returns every game in [from, to] that is not
// yet complete, ordered by date then id.
func (r *Repository) GetUnplayedByDateRange(ctx context.Context, from, to time.Time) ([]Game, error) {
	logger := r.logger.With("component", "schedule_repository", "operation", "get_unplayed_by_date_range",
		"from", from.Format("2006-01-02"), "to", to.Format("2006-01-02"))

	query := `
		SELECT ` + gameColumns + `
		FROM schedule
		WHERE game_date >= $1 AND game_date <= $2 AND is_complete = FALSE
		ORDER BY game_date, id
	`

	return r.queryGames(ctx, logger, query, from, to)
}

func (r *Repository) queryGames(ctx context.Context, logger *slog.Logger, query string, args ...interface{}) ([]Game, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("Failed to query games", "error", err)
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var games []Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			logger.Error("Failed to scan game row", "error", err)
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, *game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	logger.Debug("Games retrieved", "count", len(games))
	return games, nil
}

// SaveCheckpoint stores a paused game's checkpoint and running score in
// one atomic write. Guarded so a completed game can never regress to
// in-progress.
func (r *Repository) SaveCheckpoint(ctx context.Context, gameID, quarter, homeScore, awayScore int, checkpoint []byte) error {
	logger := r.logger.With("component", "schedule_repository", "operation", "save_checkpoint",
		"game_id", gameID, "quarter", quarter)

	query := `
		UPDATE schedule
		SET is_in_progress = TRUE,
		    current_quarter = $2,
		    home_score = $3,
		    away_score = $4,
		    checkpoint = $5,
		    updated_at = NOW()
		WHERE id = $1 AND is_complete = FALSE
	`

	result, err := r.db.ExecContext(ctx, query, gameID, quarter, homeScore, awayScore, checkpoint)
	if err != nil {
		logger.Error("Failed to save checkpoint", "error", err)
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		logger.Warn("Game not found or already complete")
		return fmt.Errorf("game %d not found or already complete", gameID)
	}

	logger.Debug("Checkpoint saved")
	return nil
}

// ClearCheckpoint discards an in-progress game's state, returning it to
// not-started.
func (r *Repository) ClearCheckpoint(ctx context.Context, gameID int) error {
	logger := r.logger.With("component", "schedule_repository", "operation", "clear_checkpoint", "game_id", gameID)

	query := `
		UPDATE schedule
		SET is_in_progress = FALSE,
		    current_quarter = 0,
		    home_score = 0,
		    away_score = 0,
		    checkpoint = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND is_complete = FALSE
	`

	if _, err := r.db.ExecContext(ctx, query, gameID); err != nil {
		logger.Error("Failed to clear checkpoint", "error", err)
		return fmt.Errorf("failed to clear checkpoint: %w", err)
	}

	return nil
}

// CompleteGame writes the final result and clears any checkpoint in a
// single guarded update. Returns false when the game was already
// complete, which callers use as the no-double-apply signal.
func (r *Repository) CompleteGame(ctx context.Context, gameID int, result engine.FinalResult) (bool, error) {
	logger := r.logger.With("component", "schedule_repository", "operation", "complete_game", "game_id", gameID)

	boxScore, err := json.Marshal(BoxScore{Home: result.HomeLines, Away: result.AwayLines})
	if err != nil {
		return false, fmt.Errorf("failed to encode box score: %w", err)
	}

	quarterScores, err := json.Marshal(result.QuarterScores)
	if err != nil {
		return false, fmt.Errorf("failed to encode quarter scores: %w", err)
	}

	query := `
		UPDATE schedule
		SET is_complete = TRUE,
		    is_in_progress = FALSE,
		    current_quarter = $2,
		    home_score = $3,
		    away_score = $4,
		    box_score = $5,
		    quarter_scores = $6,
		    checkpoint = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND is_complete = FALSE
	`

	res, err := r.db.ExecContext(ctx, query, gameID,
		len(result.QuarterScores), result.HomeScore, result.AwayScore, boxScore, quarterScores)
	if err != nil {
		logger.Error("Failed to complete game", "error", err)
		return false, fmt.Errorf("failed to complete game: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		logger.Debug("Game already complete, result not applied")
		return false, nil
	}

	logger.Info("Game completed", "home_score", result.HomeScore, "away_score", result.AwayScore)
	return true, nil
}
