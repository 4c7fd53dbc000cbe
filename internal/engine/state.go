package engine

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"time"
)

// StateVersion tags serialized checkpoints. Decode rejects blobs from a
// different engine generation instead of misreading them.
const StateVersion = 1

// GameState is the resumable checkpoint taken at a quarter boundary.
// It is fully self-contained: rosters, lineups, tactics, accrued stats
// and the random-process state all travel with it, so continuation is a
// deterministic function of the checkpoint alone. Outside this package
// it is an opaque blob; callers store and hand back the encoded bytes
// verbatim.
type GameState struct {
	Version            int            `json:"version"`
	GameID             int            `json:"game_id"`
	Quarter            int            `json:"quarter"` // quarters completed so far
	HomeScore          int            `json:"home_score"`
	AwayScore          int            `json:"away_score"`
	QuarterScores      []QuarterScore `json:"quarter_scores"`
	Home               TeamState      `json:"home"`
	Away               TeamState      `json:"away"`
	PossessionsPerQtr  int            `json:"possessions_per_qtr"`
	QuarterMinutes     int            `json:"quarter_minutes"`
	Rng                uint64         `json:"rng"`
}

// TeamState is one side's in-game state.
type TeamState struct {
	TeamID  int               `json:"team_id"`
	Players []RosterPlayer    `json:"players"`
	Lineup  []int             `json:"lineup"`
	Tactics TacticalSettings  `json:"tactics"`
	Lines   map[int]*StatLine `json:"lines"`
}

// Encode serializes a checkpoint for storage on the schedule entry.
func Encode(state *GameState) ([]byte, error) {
	state.Version = StateVersion
	blob, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode game state: %w", err)
	}
	return blob, nil
}

// Decode restores a checkpoint previously produced by Encode.
func Decode(blob []byte) (*GameState, error) {
	var state GameState
	if err := json.Unmarshal(blob, &state); err != nil {
		return nil, fmt.Errorf("failed to decode game state: %w", err)
	}
	if state.Version != StateVersion {
		return nil, fmt.Errorf("unsupported game state version %d", state.Version)
	}
	return &state, nil
}

// Quarter reports how many quarters the checkpoint has completed.
func Quarter(state *GameState) int {
	return state.Quarter
}

// Score reports the running score.
func Score(state *GameState) (home, away int) {
	return state.HomeScore, state.AwayScore
}

// IsOver reports whether regulation (plus any overtimes) has produced a
// winner. A tie after quarter 4 keeps the game open.
func IsOver(state *GameState) bool {
	return state.Quarter >= regulationQuarters && state.HomeScore != state.AwayScore
}

func (t *TeamState) line(playerID int) *StatLine {
	if t.Lines == nil {
		t.Lines = make(map[int]*StatLine)
	}
	line, ok := t.Lines[playerID]
	if !ok {
		line = &StatLine{PlayerID: playerID}
		t.Lines[playerID] = line
	}
	return line
}

func (t *TeamState) sortedLines() []StatLine {
	lines := make([]StatLine, 0, len(t.Lines))
	for _, line := range t.Lines {
		lines = append(lines, *line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].PlayerID < lines[j].PlayerID })
	return lines
}

func (t *TeamState) player(playerID int) (RosterPlayer, bool) {
	for _, p := range t.Players {
		if p.ID == playerID {
			return p, true
		}
	}
	return RosterPlayer{}, false
}

// SeedFor derives a stable per-game seed from the matchup identity, so
// replaying a game from scratch reproduces the same result on both the
// interactive and the batch path.
func SeedFor(gameID int, date time.Time) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(date.Format("2006-01-02")))
	return int64(h.Sum64()) ^ (int64(gameID) << 20)
}

// xorshift64* step. The state rides in the checkpoint so a resumed game
// continues the exact sequence a straight run would have used.
func (s *GameState) rand() uint64 {
	x := s.Rng
	x ^= x >> 12
	x ^= x << 25
	x ^= x >> 27
	s.Rng = x
	return x * 0x2545F4914F6CDD1D
}

func (s *GameState) randFloat() float64 {
	return float64(s.rand()>>11) / float64(1<<53)
}

func (s *GameState) randIntn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.rand() % uint64(n))
}
