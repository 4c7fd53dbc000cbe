package engine

// RosterPlayer is the engine's read-only view of a player entering a game.
type RosterPlayer struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Position string  `json:"position"`
	Rating   int     `json:"rating"`
	Fatigue  float64 `json:"fatigue"`
}

// Roster is one team's available players for a game.
type Roster struct {
	TeamID  int            `json:"team_id"`
	Players []RosterPlayer `json:"players"`
}

// TacticalSettings controls how a team plays; adjustable between quarters.
type TacticalSettings struct {
	Pace    int    `json:"pace"`    // 1 (slow) .. 10 (fast)
	Offense string `json:"offense"` // balanced | inside | perimeter
	Defense string `json:"defense"` // man | zone | press
}

// DefaultTactics returns the settings used when a coach supplies none.
func DefaultTactics() TacticalSettings {
	return TacticalSettings{Pace: 5, Offense: OffenseBalanced, Defense: DefenseMan}
}

const (
	OffenseBalanced  = "balanced"
	OffenseInside    = "inside"
	OffensePerimeter = "perimeter"

	DefenseMan   = "man"
	DefenseZone  = "zone"
	DefensePress = "press"
)

// Adjustments are the mid-game changes a coach may apply before the
// next quarter is simulated.
type Adjustments struct {
	Lineup  []int             `json:"lineup,omitempty"`
	Tactics *TacticalSettings `json:"tactics,omitempty"`
}

// StatLine is one player's box-score line for a single game.
type StatLine struct {
	PlayerID               int     `json:"player_id"`
	Minutes                float64 `json:"minutes"`
	Points                 int     `json:"points"`
	Rebounds               int     `json:"rebounds"`
	Assists                int     `json:"assists"`
	Steals                 int     `json:"steals"`
	Blocks                 int     `json:"blocks"`
	Turnovers              int     `json:"turnovers"`
	Fouls                  int     `json:"fouls"`
	FieldGoalsMade         int     `json:"fgm"`
	FieldGoalsAttempted    int     `json:"fga"`
	ThreePointersMade      int     `json:"tpm"`
	ThreePointersAttempted int     `json:"tpa"`
	FreeThrowsMade         int     `json:"ftm"`
	FreeThrowsAttempted    int     `json:"fta"`
}

// QuarterScore is one segment's scoring for both sides.
type QuarterScore struct {
	Quarter int `json:"quarter"`
	Home    int `json:"home"`
	Away    int `json:"away"`
}

// QuarterResult is what one SimulateQuarter call produced.
type QuarterResult struct {
	Quarter    int  `json:"quarter"`
	HomePoints int  `json:"home_points"`
	AwayPoints int  `json:"away_points"`
	HomeScore  int  `json:"home_score"`
	AwayScore  int  `json:"away_score"`
	GameOver   bool `json:"game_over"`
}

// FinalResult is the completed game: final score, per-quarter scores and
// the full box score for both sides.
type FinalResult struct {
	GameID        int            `json:"game_id"`
	HomeTeamID    int            `json:"home_team_id"`
	AwayTeamID    int            `json:"away_team_id"`
	HomeScore     int            `json:"home_score"`
	AwayScore     int            `json:"away_score"`
	Overtimes     int            `json:"overtimes"`
	QuarterScores []QuarterScore `json:"quarter_scores"`
	HomeLines     []StatLine     `json:"home_lines"`
	AwayLines     []StatLine     `json:"away_lines"`
}
