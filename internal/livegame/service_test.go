package livegame

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"hoops-server/internal/engine"
	"hoops-server/internal/schedule"
	"hoops-server/internal/shared/errors"
)

type fakeSchedule struct {
	games map[int]*schedule.Game

	saveCalls  int
	clearCalls int
}

func (f *fakeSchedule) GetGame(ctx context.Context, gameID int) (*schedule.Game, error) {
	game, ok := f.games[gameID]
	if !ok {
		return nil, nil
	}
	copied := *game
	return &copied, nil
}

func (f *fakeSchedule) SaveCheckpoint(ctx context.Context, gameID, quarter, homeScore, awayScore int, checkpoint []byte) error {
	f.saveCalls++
	game := f.games[gameID]
	game.IsInProgress = true
	game.CurrentQuarter = quarter
	game.HomeScore = homeScore
	game.AwayScore = awayScore
	game.Checkpoint = checkpoint
	return nil
}

func (f *fakeSchedule) ClearCheckpoint(ctx context.Context, gameID int) error {
	f.clearCalls++
	game := f.games[gameID]
	game.IsInProgress = false
	game.CurrentQuarter = 0
	game.HomeScore = 0
	game.AwayScore = 0
	game.Checkpoint = nil
	return nil
}

type fakeRosters struct{}

func (fakeRosters) GetRoster(ctx context.Context, teamID int) (engine.Roster, error) {
	players := make([]engine.RosterPlayer, 0, 8)
	for i := 0; i < 8; i++ {
		players = append(players, engine.RosterPlayer{
			ID:     teamID*100 + i,
			Rating: 68 + (i*5)%25,
		})
	}
	return engine.Roster{TeamID: teamID, Players: players}, nil
}

type fakeApplier struct {
	calls    int
	game     schedule.Game
	result   engine.FinalResult
	userGame bool
}

func (f *fakeApplier) ApplyResult(ctx context.Context, game schedule.Game, result engine.FinalResult, isUserGame bool) error {
	f.calls++
	f.game = game
	f.result = result
	f.userGame = isUserGame
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeSchedule, *fakeApplier) {
	t.Helper()
	store := &fakeSchedule{games: map[int]*schedule.Game{
		1: {
			ID:         1,
			HomeTeamID: 10,
			AwayTeamID: 20,
			Date:       time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC),
		},
	}}
	applier := &fakeApplier{}
	eng := engine.NewEngine(engine.Config{}, slog.Default())
	svc := NewService(eng, store, fakeRosters{}, applier, slog.Default())
	return svc, store, applier
}

func TestStartSimulatesFirstQuarterAndPauses(t *testing.T) {
	svc, store, applier := newTestService(t)

	result, err := svc.Start(context.Background(), 1, 10, nil, nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if result.Quarter != 1 {
		t.Errorf("quarter = %d, want 1", result.Quarter)
	}
	if result.GameOver {
		t.Error("quarter 1 reported game over")
	}
	if store.saveCalls != 1 {
		t.Errorf("checkpoint saves = %d, want 1", store.saveCalls)
	}
	if len(store.games[1].Checkpoint) == 0 {
		t.Error("no checkpoint stored")
	}
	if !store.games[1].IsInProgress {
		t.Error("game not marked in progress")
	}
	if applier.calls != 0 {
		t.Error("result applied before game finished")
	}
}

func TestStartRejectsCompletedGame(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.games[1].IsComplete = true

	_, err := svc.Start(context.Background(), 1, 10, nil, nil)
	if err == nil || errors.GetType(err) != errors.ErrorTypeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestStartRejectsGameInProgress(t *testing.T) {
	svc, store, _ := newTestService(t)

	if _, err := svc.Start(context.Background(), 1, 10, nil, nil); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	before := store.games[1].Checkpoint

	_, err := svc.Start(context.Background(), 1, 10, nil, nil)
	if !errors.IsConflict(err) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if string(store.games[1].Checkpoint) != string(before) {
		t.Error("rejected Start modified the stored checkpoint")
	}
}

func TestStartRejectsUnknownGame(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Start(context.Background(), 99, 10, nil, nil)
	if !errors.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestContinueThroughWholeGame(t *testing.T) {
	svc, store, applier := newTestService(t)

	if _, err := svc.Start(context.Background(), 1, 10, nil, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var final *engine.FinalResult
	for i := 0; i < 12; i++ {
		outcome, err := svc.Continue(context.Background(), 1, 10, nil)
		if err != nil {
			t.Fatalf("Continue %d: %v", i, err)
		}
		if outcome.Final != nil {
			final = outcome.Final
			break
		}
		if outcome.Quarter == nil {
			t.Fatal("outcome carries neither quarter nor final")
		}
	}

	if final == nil {
		t.Fatal("game never finished")
	}
	if final.HomeScore == final.AwayScore {
		t.Error("final result is a tie")
	}
	if applier.calls != 1 {
		t.Errorf("result applied %d times, want 1", applier.calls)
	}
	if !applier.userGame {
		t.Error("result not flagged as user game")
	}
	if applier.game.ID != 1 {
		t.Errorf("applied game id = %d", applier.game.ID)
	}
	// Completion goes through the aggregator, never the checkpoint store.
	if store.games[1].IsComplete {
		t.Error("service wrote completion directly to the schedule")
	}
}

func TestContinueWithAdjustments(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.Start(context.Background(), 1, 10, nil, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}

	tactics := engine.TacticalSettings{Pace: 8, Offense: engine.OffensePerimeter, Defense: engine.DefenseZone}
	adj := &engine.Adjustments{Lineup: []int{1000, 1001, 1002, 1003, 1004}, Tactics: &tactics}
	if _, err := svc.Continue(context.Background(), 1, 10, adj); err != nil {
		t.Fatalf("Continue with adjustments: %v", err)
	}

	bad := &engine.Adjustments{Lineup: []int{1000, 1001}}
	_, err := svc.Continue(context.Background(), 1, 10, bad)
	if err == nil || errors.GetType(err) != errors.ErrorTypeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestContinueRequiresCheckpoint(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Continue(context.Background(), 1, 10, nil)
	if err == nil || errors.GetType(err) != errors.ErrorTypeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestSimToEndMatchesQuarterByQuarter(t *testing.T) {
	// The same matchup played quarter by quarter and via SimToEnd must
	// land on the same score; the checkpoint carries the whole process.
	quarterSvc, _, quarterApplier := newTestService(t)
	if _, err := quarterSvc.Start(context.Background(), 1, 10, nil, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for quarterApplier.calls == 0 {
		if _, err := quarterSvc.Continue(context.Background(), 1, 10, nil); err != nil {
			t.Fatalf("Continue: %v", err)
		}
	}

	simSvc, _, simApplier := newTestService(t)
	if _, err := simSvc.Start(context.Background(), 1, 10, nil, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := simSvc.SimToEnd(context.Background(), 1); err != nil {
		t.Fatalf("SimToEnd: %v", err)
	}

	if quarterApplier.result.HomeScore != simApplier.result.HomeScore ||
		quarterApplier.result.AwayScore != simApplier.result.AwayScore {
		t.Errorf("paths diverged: quarter-by-quarter %d-%d, sim-to-end %d-%d",
			quarterApplier.result.HomeScore, quarterApplier.result.AwayScore,
			simApplier.result.HomeScore, simApplier.result.AwayScore)
	}
}

func TestAbandonClearsCheckpoint(t *testing.T) {
	svc, store, _ := newTestService(t)

	if _, err := svc.Start(context.Background(), 1, 10, nil, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := svc.Abandon(context.Background(), 1); err != nil {
		t.Fatalf("Abandon: %v", err)
	}
	if store.clearCalls != 1 {
		t.Errorf("clear calls = %d, want 1", store.clearCalls)
	}
	if store.games[1].Checkpoint != nil {
		t.Error("checkpoint not cleared")
	}

	// A fresh start replays from the stable seed.
	if _, err := svc.Start(context.Background(), 1, 10, nil, nil); err != nil {
		t.Fatalf("Start after Abandon: %v", err)
	}
}

func TestAbandonRequiresGameInProgress(t *testing.T) {
	svc, store, _ := newTestService(t)

	if err := svc.Abandon(context.Background(), 1); err == nil {
		t.Fatal("expected error abandoning a game that never started")
	}

	store.games[1].IsComplete = true
	if err := svc.Abandon(context.Background(), 1); err == nil {
		t.Fatal("expected error abandoning a completed game")
	}
}
