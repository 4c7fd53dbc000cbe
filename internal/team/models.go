package team

import "time"

type Conference string

const (
	ConferenceEast Conference = "east"
	ConferenceWest Conference = "west"
)

type Team struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	City         string     `json:"city"`
	Abbreviation string     `json:"abbreviation"`
	Conference   Conference `json:"conference"`
	CoachName    string     `json:"coach_name"`
	CoachWins    int        `json:"coach_wins"`
	CoachLosses  int        `json:"coach_losses"`
	CoachPlayoffWins   int  `json:"coach_playoff_wins"`
	CoachPlayoffLosses int  `json:"coach_playoff_losses"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
