package campaign

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"hoops-server/internal/batch"
	"hoops-server/internal/schedule"
)

type fakeSubmitter struct {
	games    []schedule.Game
	nextDate time.Time
	calls    int
}

func (f *fakeSubmitter) Submit(ctx context.Context, games []schedule.Game, nextDate time.Time) (batch.Handle, error) {
	f.calls++
	f.games = games
	f.nextDate = nextDate
	return batch.Handle{ID: "abc123"}, nil
}

type fakeDateStore struct {
	advanced []time.Time
}

func (f *fakeDateStore) AdvanceDate(ctx context.Context, to time.Time) error {
	f.advanced = append(f.advanced, to)
	return nil
}

type fakeConditionStore struct {
	recovered []float64
}

func (f *fakeConditionStore) RecoverFatigue(ctx context.Context, amount float64) error {
	f.recovered = append(f.recovered, amount)
	return nil
}

func newTestCampaignService(games []schedule.Game, current time.Time) (*Service, *fakeSubmitter, *fakeDateStore, *fakeConditionStore) {
	scheduleStore := &fakeScheduleStore{games: games}
	campaignStore := &fakeCampaignStore{state: &ProgressionState{
		ID:          1,
		SeasonYear:  2025,
		CurrentDate: current,
		UserTeamID:  10,
	}}
	advancer := NewAdvancer(scheduleStore, campaignStore, slog.Default())
	submitter := &fakeSubmitter{}
	dates := &fakeDateStore{}
	condition := &fakeConditionStore{}
	svc := NewService(advancer, campaignStore, submitter, dates, condition, slog.Default())
	return svc, submitter, dates, condition
}

func TestSimulateDaySubmitsBatch(t *testing.T) {
	games := []schedule.Game{
		{ID: 1, HomeTeamID: 1, AwayTeamID: 2, Date: day(3)},
		{ID: 2, HomeTeamID: 10, AwayTeamID: 5, Date: day(3)},
	}
	svc, submitter, dates, condition := newTestCampaignService(games, day(3))

	result, err := svc.SimulateNextDay(context.Background(), true)
	if err != nil {
		t.Fatalf("SimulateNextDay: %v", err)
	}

	if len(condition.recovered) != 0 {
		t.Errorf("fatigue recovered on a game day: %v", condition.recovered)
	}
	if result.Batch == nil || result.Batch.ID != "abc123" {
		t.Fatalf("batch handle = %+v", result.Batch)
	}
	if result.UserGame == nil || result.UserGame.ID != 2 {
		t.Errorf("user game = %+v, want game 2", result.UserGame)
	}
	if submitter.calls != 1 || len(submitter.games) != 1 {
		t.Errorf("submitted %d batches with %d games", submitter.calls, len(submitter.games))
	}
	// The user's game is held, so the batch lands the calendar on the
	// same day rather than past it.
	if !submitter.nextDate.Equal(day(3)) {
		t.Errorf("batch next date = %s, want the held day", submitter.nextDate.Format("2006-01-02"))
	}
	// The batch owns the calendar; the service must not move it itself.
	if len(dates.advanced) != 0 {
		t.Errorf("service advanced the date directly: %v", dates.advanced)
	}
	if result.Advanced {
		t.Error("result claims an immediate advance")
	}
}

func TestSimulateEmptyDayAdvancesImmediately(t *testing.T) {
	svc, submitter, dates, condition := newTestCampaignService(nil, day(3))

	result, err := svc.SimulateNextDay(context.Background(), true)
	if err != nil {
		t.Fatalf("SimulateNextDay: %v", err)
	}

	if submitter.calls != 0 {
		t.Errorf("submitted %d batches for an empty day", submitter.calls)
	}
	if len(dates.advanced) != 1 || !dates.advanced[0].Equal(day(4)) {
		t.Errorf("advanced = %v, want one advance to 2025-11-04", dates.advanced)
	}
	if !result.Advanced {
		t.Error("result does not report the advance")
	}
	// An empty day is an off day; everyone sheds some fatigue.
	if len(condition.recovered) != 1 {
		t.Errorf("recovery calls = %v, want one", condition.recovered)
	}
}

func TestSimulateDayWithOnlyUserGameHoldsCalendar(t *testing.T) {
	games := []schedule.Game{
		{ID: 1, HomeTeamID: 10, AwayTeamID: 5, Date: day(3)},
	}
	svc, submitter, dates, condition := newTestCampaignService(games, day(3))

	result, err := svc.SimulateNextDay(context.Background(), true)
	if err != nil {
		t.Fatalf("SimulateNextDay: %v", err)
	}

	if submitter.calls != 0 {
		t.Error("submitted a batch with no AI games")
	}
	if len(condition.recovered) != 0 {
		t.Errorf("fatigue recovered while the user's game is pending: %v", condition.recovered)
	}
	if len(dates.advanced) != 0 {
		t.Errorf("calendar moved past the user's unplayed game: %v", dates.advanced)
	}
	if result.UserGame == nil {
		t.Fatal("user game missing from result")
	}
	if !result.NextDate.Equal(day(3)) {
		t.Errorf("next date = %s, want current day", result.NextDate.Format("2006-01-02"))
	}
}
