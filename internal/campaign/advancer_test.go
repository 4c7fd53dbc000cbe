package campaign

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"hoops-server/internal/schedule"
	"hoops-server/internal/shared/errors"
)

type fakeScheduleStore struct {
	games []schedule.Game

	from, to time.Time
}

func (f *fakeScheduleStore) GetUnplayedByDateRange(ctx context.Context, from, to time.Time) ([]schedule.Game, error) {
	f.from, f.to = from, to
	var out []schedule.Game
	for _, g := range f.games {
		if !g.IsComplete && !g.Date.Before(from) && !g.Date.After(to) {
			out = append(out, g)
		}
	}
	return out, nil
}

type fakeCampaignStore struct {
	state *ProgressionState
}

func (f *fakeCampaignStore) Get(ctx context.Context) (*ProgressionState, error) {
	return f.state, nil
}

func day(d int) time.Time {
	return time.Date(2025, 11, d, 0, 0, 0, 0, time.UTC)
}

func newTestAdvancer(games []schedule.Game, current time.Time) (*Advancer, *fakeScheduleStore) {
	scheduleStore := &fakeScheduleStore{games: games}
	campaignStore := &fakeCampaignStore{state: &ProgressionState{
		ID:          1,
		SeasonYear:  2025,
		CurrentDate: current,
		UserTeamID:  10,
	}}
	return NewAdvancer(scheduleStore, campaignStore, slog.Default()), scheduleStore
}

func TestPlanSeparatesUserGameOnTargetDate(t *testing.T) {
	games := []schedule.Game{
		{ID: 1, HomeTeamID: 1, AwayTeamID: 2, Date: day(3)},
		{ID: 2, HomeTeamID: 10, AwayTeamID: 5, Date: day(3)},
		{ID: 3, HomeTeamID: 6, AwayTeamID: 7, Date: day(3)},
	}
	advancer, _ := newTestAdvancer(games, day(3))

	plan, err := advancer.PlanThroughDate(context.Background(), day(3), true)
	if err != nil {
		t.Fatalf("PlanThroughDate: %v", err)
	}

	if plan.UserGame == nil || plan.UserGame.ID != 2 {
		t.Fatalf("user game = %+v, want game 2", plan.UserGame)
	}
	if len(plan.BatchGames) != 2 {
		t.Errorf("batch games = %d, want 2", len(plan.BatchGames))
	}
	// The user still has a game to play today; the calendar must stop here.
	if !plan.NextDate.Equal(day(3)) {
		t.Errorf("next date = %s, want %s", plan.NextDate.Format("2006-01-02"), "2025-11-03")
	}
}

func TestPlanUserGameJoinsBatchWhenNotPlayingLive(t *testing.T) {
	games := []schedule.Game{
		{ID: 1, HomeTeamID: 1, AwayTeamID: 2, Date: day(3)},
		{ID: 2, HomeTeamID: 10, AwayTeamID: 5, Date: day(3)},
	}
	advancer, _ := newTestAdvancer(games, day(3))

	plan, err := advancer.PlanThroughDate(context.Background(), day(3), false)
	if err != nil {
		t.Fatalf("PlanThroughDate: %v", err)
	}

	if plan.UserGame != nil {
		t.Errorf("user game = %+v, want nil", plan.UserGame)
	}
	if len(plan.BatchGames) != 2 {
		t.Errorf("batch games = %d, want 2", len(plan.BatchGames))
	}
	if !plan.NextDate.Equal(day(4)) {
		t.Errorf("next date = %s, want day after target", plan.NextDate.Format("2006-01-02"))
	}
}

func TestPlanMultiDayRangeBatchesEarlierUserGames(t *testing.T) {
	games := []schedule.Game{
		{ID: 1, HomeTeamID: 10, AwayTeamID: 2, Date: day(3)}, // user's, but before target
		{ID: 2, HomeTeamID: 4, AwayTeamID: 5, Date: day(4)},
		{ID: 3, HomeTeamID: 10, AwayTeamID: 6, Date: day(5)}, // user's, on target
	}
	advancer, store := newTestAdvancer(games, day(3))

	plan, err := advancer.PlanThroughDate(context.Background(), day(5), true)
	if err != nil {
		t.Fatalf("PlanThroughDate: %v", err)
	}

	if !store.from.Equal(day(3)) || !store.to.Equal(day(5)) {
		t.Errorf("queried range %s..%s", store.from.Format("2006-01-02"), store.to.Format("2006-01-02"))
	}
	if plan.UserGame == nil || plan.UserGame.ID != 3 {
		t.Fatalf("user game = %+v, want game 3", plan.UserGame)
	}
	// Only the target-date game is held back for live play.
	if len(plan.BatchGames) != 2 {
		t.Errorf("batch games = %d, want 2", len(plan.BatchGames))
	}
	if len(plan.Dates) != 3 {
		t.Errorf("dates = %d, want 3", len(plan.Dates))
	}
}

func TestPlanRejectsTargetBeforeCurrentDate(t *testing.T) {
	advancer, _ := newTestAdvancer(nil, day(5))

	_, err := advancer.PlanThroughDate(context.Background(), day(3), true)
	if err == nil || errors.GetType(err) != errors.ErrorTypeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestPlanEmptyRange(t *testing.T) {
	advancer, _ := newTestAdvancer(nil, day(3))

	plan, err := advancer.PlanThroughDate(context.Background(), day(3), true)
	if err != nil {
		t.Fatalf("PlanThroughDate: %v", err)
	}
	if plan.UserGame != nil || len(plan.BatchGames) != 0 {
		t.Errorf("plan = %+v, want empty", plan)
	}
	if !plan.NextDate.Equal(day(4)) {
		t.Errorf("next date = %s, want day after target", plan.NextDate.Format("2006-01-02"))
	}
}
