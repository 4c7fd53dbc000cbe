package campaign

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
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

// Get loads the campaign row. A single campaign per database keeps the
// same single-save design the rest of the schema assumes.
func (r *Repository) Get(ctx context.Context) (*ProgressionState, error) {
	logger := r.logger.With("component", "campaign_repository", "operation", "get")

	query := `
		SELECT id, season_year, current_date_value, COALESCE(active_batch_id, ''), user_team_id, updated_at
		FROM campaign
		ORDER BY id
		LIMIT 1
	`

	var state ProgressionState
	err := r.db.QueryRowContext(ctx, query).Scan(
		&state.ID,
		&state.SeasonYear,
		&state.CurrentDate,
		&state.ActiveBatchID,
		&state.UserTeamID,
		&state.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			logger.Debug("No campaign row")
			return nil, nil
		}
		logger.Error("Database error getting campaign", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &state, nil
}

// AdvanceDate moves the calendar forward. Guarded so a late batch
// callback can never move the date backwards.
func (r *Repository) AdvanceDate(ctx context.Context, to time.Time) error {
	logger := r.logger.With("component", "campaign_repository", "operation", "advance_date",
		"to", to.Format("2006-01-02"))

	query := `
		UPDATE campaign
		SET current_date_value = $1, updated_at = NOW()
		WHERE current_date_value <= $1
	`

	result, err := r.db.ExecContext(ctx, query, to)
	if err != nil {
		logger.Error("Failed to advance date", "error", err)
		return fmt.Errorf("failed to advance date: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		logger.Warn("Date not advanced, campaign already past target")
		return nil
	}

	logger.Info("Calendar advanced")
	return nil
}

// ActiveBatchID returns the campaign's active batch marker, empty when
// none is set.
func (r *Repository) ActiveBatchID(ctx context.Context) (string, error) {
	var id sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT active_batch_id FROM campaign ORDER BY id LIMIT 1`).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to read active batch id: %w", err)
	}
	return id.String, nil
}

// SetActiveBatch records a newly submitted batch as the campaign's
// active one.
func (r *Repository) SetActiveBatch(ctx context.Context, batchID string) error {
	logger := r.logger.With("component", "campaign_repository", "operation", "set_active_batch", "batch_id", batchID)

	query := `UPDATE campaign SET active_batch_id = $1, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, batchID); err != nil {
		logger.Error("Failed to set active batch", "error", err)
		return fmt.Errorf("failed to set active batch: %w", err)
	}

	logger.Debug("Active batch set")
	return nil
}

// ClearActiveBatch clears the marker only when it still names the given
// batch. The orchestrator's completion callback is the single writer,
// but a stale callback after external remediation must not clobber a
// newer batch's marker.
func (r *Repository) ClearActiveBatch(ctx context.Context, batchID string) error {
	logger := r.logger.With("component", "campaign_repository", "operation", "clear_active_batch", "batch_id", batchID)

	query := `UPDATE campaign SET active_batch_id = NULL, updated_at = NOW() WHERE active_batch_id = $1`
	if _, err := r.db.ExecContext(ctx, query, batchID); err != nil {
		logger.Error("Failed to clear active batch", "error", err)
		return fmt.Errorf("failed to clear active batch: %w", err)
	}

	logger.Debug("Active batch cleared")
	return nil
}
