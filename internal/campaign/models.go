package campaign

import "time"

// ProgressionState is the campaign's single piece of shared mutable
// orchestration state: where the calendar sits and which simulation
// batch, if any, currently owns the day.
type ProgressionState struct {
	ID            int       `json:"id"`
	SeasonYear    int       `json:"season_year"`
	CurrentDate   time.Time `json:"current_date"`
	ActiveBatchID string    `json:"active_batch_id,omitempty"`
	UserTeamID    int       `json:"user_team_id"`
	UpdatedAt     time.Time `json:"updated_at"`
}
