package engine

import (
	"fmt"
	"log/slog"
	"sort"
)

const (
	regulationQuarters = 4
	overtimeMinutes    = 5
	lineupSize         = 5
)

type Config struct {
	PossessionsPerGame int
	QuarterMinutes     int
}

// Engine computes basketball quarters from a GameState. It holds no
// mutable state of its own; everything that influences a continuation
// is captured in the checkpoint at NewGame time.
type Engine struct {
	config Config
	logger *slog.Logger
}

func NewEngine(config Config, logger *slog.Logger) *Engine {
	if config.PossessionsPerGame <= 0 {
		config.PossessionsPerGame = 96
	}
	if config.QuarterMinutes <= 0 {
		config.QuarterMinutes = 12
	}

	return &Engine{
		config: config,
		logger: logger,
	}
}

// NewGame builds the initial checkpoint for a matchup. The seed fixes
// the whole random process; the same seed and inputs always produce the
// same game.
func (e *Engine) NewGame(gameID int, home, away Roster, seed int64) (*GameState, error) {
	if len(home.Players) < lineupSize || len(away.Players) < lineupSize {
		return nil, fmt.Errorf("both rosters need at least %d players", lineupSize)
	}

	rng := uint64(seed)
	if rng == 0 {
		// xorshift gets stuck at zero
		rng = 0x9E3779B97F4A7C15
	}

	state := &GameState{
		Version:           StateVersion,
		GameID:            gameID,
		Home:              newTeamState(home),
		Away:              newTeamState(away),
		PossessionsPerQtr: e.config.PossessionsPerGame / regulationQuarters,
		QuarterMinutes:    e.config.QuarterMinutes,
		Rng:               rng,
	}

	e.logger.Debug("Game initialized",
		"component", "engine",
		"game_id", gameID,
		"home_team", home.TeamID,
		"away_team", away.TeamID)

	return state, nil
}

func newTeamState(roster Roster) TeamState {
	players := make([]RosterPlayer, len(roster.Players))
	copy(players, roster.Players)

	// Default lineup: best five by rating
	sorted := make([]RosterPlayer, len(players))
	copy(sorted, players)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Rating != sorted[j].Rating {
			return sorted[i].Rating > sorted[j].Rating
		}
		return sorted[i].ID < sorted[j].ID
	})

	lineup := make([]int, 0, lineupSize)
	for _, p := range sorted[:lineupSize] {
		lineup = append(lineup, p.ID)
	}

	return TeamState{
		TeamID:  roster.TeamID,
		Players: players,
		Lineup:  lineup,
		Tactics: DefaultTactics(),
		Lines:   make(map[int]*StatLine),
	}
}

// ApplyAdjustments swaps the lineup and/or tactics for one side before
// the next quarter. Lineup players must exist on the stored roster.
func (e *Engine) ApplyAdjustments(state *GameState, teamID int, adj Adjustments) error {
	team := &state.Home
	if state.Away.TeamID == teamID {
		team = &state.Away
	} else if state.Home.TeamID != teamID {
		return fmt.Errorf("team %d is not part of game %d", teamID, state.GameID)
	}

	if adj.Lineup != nil {
		if len(adj.Lineup) != lineupSize {
			return fmt.Errorf("lineup must have exactly %d players, got %d", lineupSize, len(adj.Lineup))
		}
		seen := make(map[int]bool, lineupSize)
		for _, id := range adj.Lineup {
			if _, ok := team.player(id); !ok {
				return fmt.Errorf("player %d is not on team %d roster", id, teamID)
			}
			if seen[id] {
				return fmt.Errorf("player %d appears twice in lineup", id)
			}
			seen[id] = true
		}
		team.Lineup = append([]int(nil), adj.Lineup...)
	}

	if adj.Tactics != nil {
		tactics := *adj.Tactics
		if tactics.Pace < 1 || tactics.Pace > 10 {
			return fmt.Errorf("pace must be between 1 and 10, got %d", tactics.Pace)
		}
		team.Tactics = tactics
	}

	return nil
}

// SimulateQuarter advances the checkpoint by exactly one quarter (or
// one overtime period past regulation) and reports the segment's score.
func (e *Engine) SimulateQuarter(state *GameState) (QuarterResult, error) {
	if IsOver(state) {
		return QuarterResult{}, fmt.Errorf("game %d is already decided", state.GameID)
	}

	quarter := state.Quarter + 1
	possessions := state.PossessionsPerQtr
	minutes := float64(state.QuarterMinutes)
	if quarter > regulationQuarters {
		possessions = possessions * overtimeMinutes / state.QuarterMinutes
		if possessions < 4 {
			possessions = 4
		}
		minutes = overtimeMinutes
	}

	// Pace shifts possessions for both sides
	paceShift := (state.Home.Tactics.Pace + state.Away.Tactics.Pace - 10) / 2
	possessions += paceShift

	homeBefore := state.HomeScore
	awayBefore := state.AwayScore

	for i := 0; i < possessions; i++ {
		e.simulatePossession(state, &state.Home, &state.Away)
		e.simulatePossession(state, &state.Away, &state.Home)
	}

	for _, id := range state.Home.Lineup {
		state.Home.line(id).Minutes += minutes
	}
	for _, id := range state.Away.Lineup {
		state.Away.line(id).Minutes += minutes
	}

	state.Quarter = quarter
	state.QuarterScores = append(state.QuarterScores, QuarterScore{
		Quarter: quarter,
		Home:    state.HomeScore - homeBefore,
		Away:    state.AwayScore - awayBefore,
	})

	return QuarterResult{
		Quarter:    quarter,
		HomePoints: state.HomeScore - homeBefore,
		AwayPoints: state.AwayScore - awayBefore,
		HomeScore:  state.HomeScore,
		AwayScore:  state.AwayScore,
		GameOver:   IsOver(state),
	}, nil
}

// SimulateToEnd runs every remaining quarter, overtime included, and
// returns the final result.
func (e *Engine) SimulateToEnd(state *GameState) (FinalResult, error) {
	if IsOver(state) {
		return e.Final(state)
	}

	for !IsOver(state) {
		if _, err := e.SimulateQuarter(state); err != nil {
			return FinalResult{}, err
		}
	}

	return e.Final(state)
}

// Final builds the completed game's result. The checkpoint must be
// decided; a tied or unfinished game is a precondition violation.
func (e *Engine) Final(state *GameState) (FinalResult, error) {
	if !IsOver(state) {
		return FinalResult{}, fmt.Errorf("game %d is not decided yet", state.GameID)
	}

	return FinalResult{
		GameID:        state.GameID,
		HomeTeamID:    state.Home.TeamID,
		AwayTeamID:    state.Away.TeamID,
		HomeScore:     state.HomeScore,
		AwayScore:     state.AwayScore,
		Overtimes:     state.Quarter - regulationQuarters,
		QuarterScores: append([]QuarterScore(nil), state.QuarterScores...),
		HomeLines:     state.Home.sortedLines(),
		AwayLines:     state.Away.sortedLines(),
	}, nil
}

func (e *Engine) simulatePossession(state *GameState, offense, defense *TeamState) {
	offRating := lineupRating(offense)
	defRating := lineupRating(defense)

	// Turnover before a shot goes up
	turnoverChance := 0.13
	if defense.Tactics.Defense == DefensePress {
		turnoverChance += 0.03
	}
	if state.randFloat() < turnoverChance {
		handler := pickLineupPlayer(state, offense)
		offense.line(handler).Turnovers++
		if state.randFloat() < 0.55 {
			defense.line(pickLineupPlayer(state, defense)).Steals++
		}
		return
	}

	shooter := pickLineupPlayer(state, offense)
	line := offense.line(shooter)

	// Shooting foul: two free throws, no field-goal attempt
	if state.randFloat() < 0.10 {
		defense.line(pickLineupPlayer(state, defense)).Fouls++
		for i := 0; i < 2; i++ {
			line.FreeThrowsAttempted++
			if state.randFloat() < 0.77 {
				line.FreeThrowsMade++
				line.Points++
				teamScore(state, offense, 1)
			}
		}
		return
	}

	threeChance := 0.35
	switch offense.Tactics.Offense {
	case OffensePerimeter:
		threeChance += 0.12
	case OffenseInside:
		threeChance -= 0.12
	}
	isThree := state.randFloat() < threeChance

	makeChance := 0.46 + float64(offRating-defRating)/500.0
	if isThree {
		makeChance -= 0.10
	}
	if defense.Tactics.Defense == DefenseZone && isThree {
		makeChance -= 0.02
	}
	if makeChance < 0.25 {
		makeChance = 0.25
	}
	if makeChance > 0.65 {
		makeChance = 0.65
	}

	line.FieldGoalsAttempted++
	if isThree {
		line.ThreePointersAttempted++
	}

	if state.randFloat() < makeChance {
		points := 2
		line.FieldGoalsMade++
		if isThree {
			points = 3
			line.ThreePointersMade++
		}
		line.Points += points
		teamScore(state, offense, points)

		if state.randFloat() < 0.58 {
			if passer := pickLineupPlayerExcept(state, offense, shooter); passer != 0 {
				offense.line(passer).Assists++
			}
		}
		return
	}

	// Missed shot: maybe a block, then a rebound
	if state.randFloat() < 0.08 {
		defense.line(pickLineupPlayer(state, defense)).Blocks++
	}

	if state.randFloat() < 0.74 {
		defense.line(pickLineupPlayer(state, defense)).Rebounds++
	} else {
		offense.line(pickLineupPlayer(state, offense)).Rebounds++
	}
}

func teamScore(state *GameState, team *TeamState, points int) {
	if team.TeamID == state.Home.TeamID {
		state.HomeScore += points
	} else {
		state.AwayScore += points
	}
}

func lineupRating(team *TeamState) int {
	total := 0
	for _, id := range team.Lineup {
		if p, ok := team.player(id); ok {
			rating := float64(p.Rating) * (1.0 - 0.25*p.Fatigue)
			total += int(rating)
		}
	}
	return total / len(team.Lineup)
}

// pickLineupPlayer picks a player on the floor, weighted by rating.
func pickLineupPlayer(state *GameState, team *TeamState) int {
	total := 0
	for _, id := range team.Lineup {
		if p, ok := team.player(id); ok {
			total += p.Rating
		}
	}
	if total == 0 {
		return team.Lineup[state.randIntn(len(team.Lineup))]
	}

	pick := state.randIntn(total)
	for _, id := range team.Lineup {
		if p, ok := team.player(id); ok {
			pick -= p.Rating
			if pick < 0 {
				return id
			}
		}
	}
	return team.Lineup[len(team.Lineup)-1]
}

func pickLineupPlayerExcept(state *GameState, team *TeamState, except int) int {
	for attempts := 0; attempts < 8; attempts++ {
		id := pickLineupPlayer(state, team)
		if id != except {
			return id
		}
	}
	return 0
}
