package season

// Standing is one team's win/loss record, partitioned by conference in
// queries. Streak is signed: +3 means three straight wins, -2 two
// straight losses. RecentResults keeps the last ten outcomes, newest
// last, for the last-10 window.
type Standing struct {
	TeamID        int    `json:"team_id"`
	Conference    string `json:"conference"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	HomeWins      int    `json:"home_wins"`
	HomeLosses    int    `json:"home_losses"`
	AwayWins      int    `json:"away_wins"`
	AwayLosses    int    `json:"away_losses"`
	Streak        int    `json:"streak"`
	RecentResults []bool `json:"recent_results"`
}

// Last10 derives the last-10 record from the recent-results window.
func (s *Standing) Last10() (wins, losses int) {
	for _, won := range s.RecentResults {
		if won {
			wins++
		} else {
			losses++
		}
	}
	return wins, losses
}

// recordResult folds one completed game into the standing.
func (s *Standing) recordResult(won, home bool) {
	if won {
		s.Wins++
		if home {
			s.HomeWins++
		} else {
			s.AwayWins++
		}
		if s.Streak > 0 {
			s.Streak++
		} else {
			s.Streak = 1
		}
	} else {
		s.Losses++
		if home {
			s.HomeLosses++
		} else {
			s.AwayLosses++
		}
		if s.Streak < 0 {
			s.Streak--
		} else {
			s.Streak = -1
		}
	}

	s.RecentResults = append(s.RecentResults, won)
	if len(s.RecentResults) > 10 {
		s.RecentResults = s.RecentResults[len(s.RecentResults)-10:]
	}
}

// PlayerSeasonStats is the season-scoped accumulator for one player.
// Totals only; per-game averages are derived, never stored.
type PlayerSeasonStats struct {
	PlayerID    int     `json:"player_id"`
	GamesPlayed int     `json:"games_played"`
	Minutes     float64 `json:"minutes"`
	Points      int     `json:"points"`
	Rebounds    int     `json:"rebounds"`
	Assists     int     `json:"assists"`
	Steals      int     `json:"steals"`
	Blocks      int     `json:"blocks"`
	Turnovers   int     `json:"turnovers"`

	FieldGoalsMade         int `json:"fgm"`
	FieldGoalsAttempted    int `json:"fga"`
	ThreePointersMade      int `json:"tpm"`
	ThreePointersAttempted int `json:"tpa"`
	FreeThrowsMade         int `json:"ftm"`
	FreeThrowsAttempted    int `json:"fta"`
}

// PointsPerGame derives the scoring average.
func (p *PlayerSeasonStats) PointsPerGame() float64 {
	if p.GamesPlayed == 0 {
		return 0
	}
	return float64(p.Points) / float64(p.GamesPlayed)
}
