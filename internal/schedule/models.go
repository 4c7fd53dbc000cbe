package schedule

import (
	"time"

	"hoops-server/internal/engine"
)

// Game is one scheduled matchup. IsComplete and IsInProgress are
// mutually exclusive, and Checkpoint is present exactly when
// IsInProgress is true. Once complete, score and box-score fields are
// never written again.
type Game struct {
	ID             int                   `json:"id"`
	HomeTeamID     int                   `json:"home_team_id"`
	AwayTeamID     int                   `json:"away_team_id"`
	Date           time.Time             `json:"date"`
	IsPlayoff      bool                  `json:"is_playoff"`
	IsComplete     bool                  `json:"is_complete"`
	IsInProgress   bool                  `json:"is_in_progress"`
	CurrentQuarter int                   `json:"current_quarter"`
	HomeScore      int                   `json:"home_score"`
	AwayScore      int                   `json:"away_score"`
	BoxScore       *BoxScore             `json:"box_score,omitempty"`
	QuarterScores  []engine.QuarterScore `json:"quarter_scores,omitempty"`
	Checkpoint     []byte                `json:"-"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// BoxScore holds both sides' per-player lines for a completed game.
type BoxScore struct {
	Home []engine.StatLine `json:"home"`
	Away []engine.StatLine `json:"away"`
}

// InvolvesTeam reports whether the given team plays in this game.
func (g *Game) InvolvesTeam(teamID int) bool {
	return g.HomeTeamID == teamID || g.AwayTeamID == teamID
}
