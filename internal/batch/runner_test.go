package batch

import (
	"context"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"hoops-server/internal/engine"
	"hoops-server/internal/schedule"
)

func TestRunGameMatchesDirectSimulation(t *testing.T) {
	rosters := &fakeRosterProvider{}
	eng := engine.NewEngine(engine.Config{}, slog.Default())
	runner := NewRunner(eng, rosters, slog.Default())

	game := schedule.Game{
		ID:         7,
		HomeTeamID: 1,
		AwayTeamID: 2,
		Date:       time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC),
	}

	got, err := runner.RunGame(context.Background(), game)
	if err != nil {
		t.Fatalf("RunGame: %v", err)
	}

	home, _ := rosters.GetRoster(context.Background(), 1)
	away, _ := rosters.GetRoster(context.Background(), 2)
	state, err := eng.NewGame(game.ID, home, away, engine.SeedFor(game.ID, game.Date))
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	want, err := eng.SimulateToEnd(state)
	if err != nil {
		t.Fatalf("SimulateToEnd: %v", err)
	}

	if !reflect.DeepEqual(want, got) {
		t.Errorf("runner diverged from direct simulation:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestRunGameResumesFromCheckpoint(t *testing.T) {
	rosters := &fakeRosterProvider{}
	eng := engine.NewEngine(engine.Config{}, slog.Default())
	runner := NewRunner(eng, rosters, slog.Default())

	game := schedule.Game{
		ID:         8,
		HomeTeamID: 1,
		AwayTeamID: 2,
		Date:       time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC),
	}

	// A game the user played into the second quarter before handing off.
	home, _ := rosters.GetRoster(context.Background(), 1)
	away, _ := rosters.GetRoster(context.Background(), 2)
	state, err := eng.NewGame(game.ID, home, away, engine.SeedFor(game.ID, game.Date))
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := eng.SimulateQuarter(state); err != nil {
			t.Fatalf("SimulateQuarter: %v", err)
		}
	}
	blob, err := engine.Encode(state)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	game.Checkpoint = blob
	game.IsInProgress = true

	got, err := runner.RunGame(context.Background(), game)
	if err != nil {
		t.Fatalf("RunGame: %v", err)
	}

	resumed, err := engine.Decode(blob)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want, err := eng.SimulateToEnd(resumed)
	if err != nil {
		t.Fatalf("SimulateToEnd: %v", err)
	}

	if !reflect.DeepEqual(want, got) {
		t.Errorf("resumed run diverged:\nwant %+v\ngot  %+v", want, got)
	}
}
