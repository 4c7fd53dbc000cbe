package engine

import (
	"log/slog"
	"reflect"
	"testing"
	"time"
)

func testEngine() *Engine {
	return NewEngine(Config{}, slog.Default())
}

func testRoster(teamID, baseID int) Roster {
	positions := []string{"PG", "SG", "SF", "PF", "C", "PG", "SG", "C"}
	players := make([]RosterPlayer, 0, len(positions))
	for i, pos := range positions {
		players = append(players, RosterPlayer{
			ID:       baseID + i,
			Name:     "Player",
			Position: pos,
			Rating:   70 + (i*3)%20,
		})
	}
	return Roster{TeamID: teamID, Players: players}
}

func TestNewGameRequiresFullRosters(t *testing.T) {
	e := testEngine()

	short := Roster{TeamID: 1, Players: []RosterPlayer{{ID: 1, Rating: 70}}}
	if _, err := e.NewGame(1, short, testRoster(2, 100), 42); err == nil {
		t.Fatal("expected error for short home roster")
	}
	if _, err := e.NewGame(1, testRoster(1, 1), short, 42); err == nil {
		t.Fatal("expected error for short away roster")
	}
}

func TestDefaultLineupIsTopFiveByRating(t *testing.T) {
	e := testEngine()

	state, err := e.NewGame(1, testRoster(1, 1), testRoster(2, 100), 42)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}

	if len(state.Home.Lineup) != 5 {
		t.Fatalf("lineup size = %d, want 5", len(state.Home.Lineup))
	}

	lineupRatings := make(map[int]bool)
	for _, id := range state.Home.Lineup {
		p, ok := state.Home.player(id)
		if !ok {
			t.Fatalf("lineup player %d not on roster", id)
		}
		lineupRatings[p.Rating] = true
	}
	for _, p := range state.Home.Players {
		inLineup := false
		for _, id := range state.Home.Lineup {
			if id == p.ID {
				inLineup = true
			}
		}
		if !inLineup {
			for _, id := range state.Home.Lineup {
				lp, _ := state.Home.player(id)
				if lp.Rating < p.Rating {
					t.Fatalf("bench player %d (rating %d) outrates lineup player %d (rating %d)",
						p.ID, p.Rating, lp.ID, lp.Rating)
				}
			}
		}
	}
}

func TestSameSeedSameResult(t *testing.T) {
	e := testEngine()

	run := func() FinalResult {
		state, err := e.NewGame(7, testRoster(1, 1), testRoster(2, 100), 12345)
		if err != nil {
			t.Fatalf("NewGame: %v", err)
		}
		final, err := e.SimulateToEnd(state)
		if err != nil {
			t.Fatalf("SimulateToEnd: %v", err)
		}
		return final
	}

	first := run()
	second := run()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("same seed produced different results:\n%+v\n%+v", first, second)
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	e := testEngine()

	finals := make(map[[2]int]bool)
	for _, seed := range []int64{1, 2, 3, 4, 5} {
		state, err := e.NewGame(7, testRoster(1, 1), testRoster(2, 100), seed)
		if err != nil {
			t.Fatalf("NewGame: %v", err)
		}
		final, err := e.SimulateToEnd(state)
		if err != nil {
			t.Fatalf("SimulateToEnd: %v", err)
		}
		finals[[2]int{final.HomeScore, final.AwayScore}] = true
	}

	if len(finals) < 2 {
		t.Error("five different seeds all produced the same score")
	}
}

func TestResumeMatchesStraightRun(t *testing.T) {
	e := testEngine()

	straight, err := e.NewGame(9, testRoster(1, 1), testRoster(2, 100), 777)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	want, err := e.SimulateToEnd(straight)
	if err != nil {
		t.Fatalf("SimulateToEnd: %v", err)
	}

	// Same game, but serialized and restored at every quarter boundary.
	state, err := e.NewGame(9, testRoster(1, 1), testRoster(2, 100), 777)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	for !IsOver(state) {
		if _, err := e.SimulateQuarter(state); err != nil {
			t.Fatalf("SimulateQuarter: %v", err)
		}

		blob, err := Encode(state)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		state, err = Decode(blob)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
	}
	got, err := e.Final(state)
	if err != nil {
		t.Fatalf("Final: %v", err)
	}

	if !reflect.DeepEqual(want, got) {
		t.Errorf("resumed run diverged from straight run:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestRegulationTieForcesOvertime(t *testing.T) {
	e := testEngine()

	state, err := e.NewGame(3, testRoster(1, 1), testRoster(2, 100), 42)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, err := e.SimulateQuarter(state); err != nil {
			t.Fatalf("SimulateQuarter: %v", err)
		}
	}

	// Force a tie at the end of regulation.
	state.AwayScore = state.HomeScore

	if IsOver(state) {
		t.Fatal("tied game reported as over")
	}
	if _, err := e.Final(state); err == nil {
		t.Fatal("Final accepted a tied game")
	}

	result, err := e.SimulateQuarter(state)
	if err != nil {
		t.Fatalf("overtime SimulateQuarter: %v", err)
	}
	if result.Quarter != 5 {
		t.Errorf("overtime quarter = %d, want 5", result.Quarter)
	}
	if len(state.QuarterScores) != 5 {
		t.Errorf("quarter scores = %d entries, want 5", len(state.QuarterScores))
	}
}

func TestSimulateQuarterRejectsDecidedGame(t *testing.T) {
	e := testEngine()

	state, err := e.NewGame(3, testRoster(1, 1), testRoster(2, 100), 42)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if _, err := e.SimulateToEnd(state); err != nil {
		t.Fatalf("SimulateToEnd: %v", err)
	}
	if _, err := e.SimulateQuarter(state); err == nil {
		t.Fatal("expected error simulating a decided game")
	}
}

func TestApplyAdjustments(t *testing.T) {
	e := testEngine()

	newState := func() *GameState {
		state, err := e.NewGame(5, testRoster(1, 1), testRoster(2, 100), 42)
		if err != nil {
			t.Fatalf("NewGame: %v", err)
		}
		return state
	}

	t.Run("valid lineup and tactics", func(t *testing.T) {
		state := newState()
		tactics := TacticalSettings{Pace: 9, Offense: OffensePerimeter, Defense: DefensePress}
		adj := Adjustments{Lineup: []int{1, 2, 3, 4, 6}, Tactics: &tactics}
		if err := e.ApplyAdjustments(state, 1, adj); err != nil {
			t.Fatalf("ApplyAdjustments: %v", err)
		}
		if !reflect.DeepEqual(state.Home.Lineup, []int{1, 2, 3, 4, 6}) {
			t.Errorf("lineup = %v", state.Home.Lineup)
		}
		if state.Home.Tactics != tactics {
			t.Errorf("tactics = %+v", state.Home.Tactics)
		}
	})

	t.Run("wrong lineup size", func(t *testing.T) {
		if err := e.ApplyAdjustments(newState(), 1, Adjustments{Lineup: []int{1, 2, 3}}); err == nil {
			t.Fatal("expected error for short lineup")
		}
	})

	t.Run("player not on roster", func(t *testing.T) {
		if err := e.ApplyAdjustments(newState(), 1, Adjustments{Lineup: []int{1, 2, 3, 4, 999}}); err == nil {
			t.Fatal("expected error for unknown player")
		}
	})

	t.Run("duplicate player", func(t *testing.T) {
		if err := e.ApplyAdjustments(newState(), 1, Adjustments{Lineup: []int{1, 1, 2, 3, 4}}); err == nil {
			t.Fatal("expected error for duplicate player")
		}
	})

	t.Run("pace out of range", func(t *testing.T) {
		tactics := TacticalSettings{Pace: 11, Offense: OffenseBalanced, Defense: DefenseMan}
		if err := e.ApplyAdjustments(newState(), 1, Adjustments{Tactics: &tactics}); err == nil {
			t.Fatal("expected error for pace 11")
		}
	})

	t.Run("team not in game", func(t *testing.T) {
		if err := e.ApplyAdjustments(newState(), 99, Adjustments{}); err == nil {
			t.Fatal("expected error for foreign team")
		}
	})
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	e := testEngine()

	state, err := e.NewGame(11, testRoster(1, 1), testRoster(2, 100), 42)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if _, err := e.SimulateQuarter(state); err != nil {
		t.Fatalf("SimulateQuarter: %v", err)
	}

	blob, err := Encode(state)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	restored, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if !reflect.DeepEqual(state, restored) {
		t.Errorf("round trip changed state:\nwant %+v\ngot  %+v", state, restored)
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	if _, err := Decode([]byte(`{"version": 99}`)); err == nil {
		t.Fatal("expected error for unknown state version")
	}
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Fatal("expected error for malformed blob")
	}
}

func TestBoxScoreConsistency(t *testing.T) {
	e := testEngine()

	state, err := e.NewGame(13, testRoster(1, 1), testRoster(2, 100), 4242)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	final, err := e.SimulateToEnd(state)
	if err != nil {
		t.Fatalf("SimulateToEnd: %v", err)
	}

	sum := func(lines []StatLine) int {
		total := 0
		for _, line := range lines {
			total += line.Points
		}
		return total
	}

	if got := sum(final.HomeLines); got != final.HomeScore {
		t.Errorf("home line points = %d, score = %d", got, final.HomeScore)
	}
	if got := sum(final.AwayLines); got != final.AwayScore {
		t.Errorf("away line points = %d, score = %d", got, final.AwayScore)
	}

	qHome, qAway := 0, 0
	for _, qs := range final.QuarterScores {
		qHome += qs.Home
		qAway += qs.Away
	}
	if qHome != final.HomeScore || qAway != final.AwayScore {
		t.Errorf("quarter scores sum to %d-%d, final is %d-%d",
			qHome, qAway, final.HomeScore, final.AwayScore)
	}

	if final.HomeScore == final.AwayScore {
		t.Error("final result is a tie")
	}
}

func TestSeedForIsStable(t *testing.T) {
	date := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)

	if SeedFor(1, date) != SeedFor(1, date) {
		t.Error("same game and date produced different seeds")
	}
	if SeedFor(1, date) == SeedFor(2, date) {
		t.Error("different games share a seed")
	}
	if SeedFor(1, date) == SeedFor(1, date.AddDate(0, 0, 1)) {
		t.Error("different dates share a seed")
	}

	// Time-of-day must not leak into the seed.
	noon := time.Date(2025, 11, 3, 12, 30, 0, 0, time.UTC)
	if SeedFor(1, date) != SeedFor(1, noon) {
		t.Error("time of day changed the seed")
	}
}
