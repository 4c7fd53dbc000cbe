package batch

// Status is a batch's lifecycle state. Everything except StatusRunning
// is terminal.
type Status string

const (
	StatusRunning             Status = "running"
	StatusCompleted           Status = "completed"
	StatusCompletedWithErrors Status = "completed_with_errors"
	StatusFailed              Status = "failed"
	StatusCancelled           Status = "cancelled"
)

// IsTerminal reports whether the batch has finished.
func (s Status) IsTerminal() bool {
	return s != StatusRunning && s != ""
}

// Progress is the mid-flight view of a batch: how many jobs finished,
// failed, or are still pending.
type Progress struct {
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Pending   int `json:"pending"`
	Total     int `json:"total"`
}

// GameOutcome is one job's result as exposed to the status surface.
type GameOutcome struct {
	GameID     int    `json:"game_id"`
	HomeTeamID int    `json:"home_team_id"`
	AwayTeamID int    `json:"away_team_id"`
	HomeScore  int    `json:"home_score,omitempty"`
	AwayScore  int    `json:"away_score,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Handle identifies a submitted batch for later status queries.
type Handle struct {
	ID string `json:"id"`
}
