package player

import "time"

// Player carries the persistent condition fields consulted before every
// simulation and updated after every completed game.
type Player struct {
	ID       int    `json:"id"`
	TeamID   int    `json:"team_id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Rating   int    `json:"rating"`

	// Condition: fatigue in [0,1], form is a rolling recent-performance
	// score centered on 0.
	Fatigue float64 `json:"fatigue"`
	Form    float64 `json:"form"`

	CareerGames    int `json:"career_games"`
	CareerPoints   int `json:"career_points"`
	CareerRebounds int `json:"career_rebounds"`
	CareerAssists  int `json:"career_assists"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
