package campaign

import (
	"context"
	"log/slog"
	"time"

	"hoops-server/internal/schedule"
	"hoops-server/internal/shared/errors"
)

// ScheduleStore is the slice of the schedule the advancer reads.
type ScheduleStore interface {
	GetUnplayedByDateRange(ctx context.Context, from, to time.Time) ([]schedule.Game, error)
}

// CampaignStore reads the current calendar position.
type CampaignStore interface {
	Get(ctx context.Context) (*ProgressionState, error)
}

// DayPlan is the advancer's answer for a "simulate through this date"
// intent: which dates must be resolved, which games are the user's own
// versus AI-vs-AI, and where the calendar lands once everything is
// resolved.
type DayPlan struct {
	TargetDate time.Time       `json:"target_date"`
	Dates      []time.Time     `json:"dates"`
	UserGame   *schedule.Game  `json:"user_game,omitempty"`
	BatchGames []schedule.Game `json:"batch_games"`
	NextDate   time.Time       `json:"next_date"`
}

// Advancer decides which games must be resolved before the calendar
// may move past a date.
type Advancer struct {
	scheduleStore ScheduleStore
	campaignStore CampaignStore
	logger        *slog.Logger
}

func NewAdvancer(scheduleStore ScheduleStore, campaignStore CampaignStore, logger *slog.Logger) *Advancer {
	return &Advancer{
		scheduleStore: scheduleStore,
		campaignStore: campaignStore,
		logger:        logger,
	}
}

// PlanThroughDate enumerates every unresolved game from the campaign's
// current date through target, inclusive. On the target date the user's
// own game is separated out for interactive play unless playUserGameLive
// is false, in which case it joins the batch. The plan's NextDate is
// the day after target, except when the user keeps their game to play
// live; the calendar then stops on the target so the game stays today.
func (a *Advancer) PlanThroughDate(ctx context.Context, target time.Time, playUserGameLive bool) (*DayPlan, error) {
	logger := a.logger.With("component", "day_advancer", "operation", "plan_through_date",
		"target", target.Format("2006-01-02"), "play_live", playUserGameLive)

	state, err := a.campaignStore.Get(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, errors.NotFoundf("no campaign")
	}

	current := dateOnly(state.CurrentDate)
	target = dateOnly(target)

	if target.Before(current) {
		return nil, errors.Validationf("target date %s is before campaign date %s",
			target.Format("2006-01-02"), current.Format("2006-01-02"))
	}

	games, err := a.scheduleStore.GetUnplayedByDateRange(ctx, current, target)
	if err != nil {
		logger.Error("Failed to load unplayed games", "error", err)
		return nil, err
	}

	plan := &DayPlan{
		TargetDate: target,
		NextDate:   target.AddDate(0, 0, 1),
	}

	seenDates := make(map[string]bool)
	for i := range games {
		game := games[i]
		day := dateOnly(game.Date)

		if key := day.Format("2006-01-02"); !seenDates[key] {
			seenDates[key] = true
			plan.Dates = append(plan.Dates, day)
		}

		if day.Equal(target) && game.InvolvesTeam(state.UserTeamID) && playUserGameLive {
			if plan.UserGame == nil {
				userGame := game
				plan.UserGame = &userGame
				continue
			}
		}

		plan.BatchGames = append(plan.BatchGames, game)
	}

	if plan.UserGame != nil {
		// The user still wants to play today's game; the calendar must
		// not move past it.
		plan.NextDate = target
	}

	logger.Debug("Day plan built",
		"dates", len(plan.Dates),
		"batch_games", len(plan.BatchGames),
		"has_user_game", plan.UserGame != nil,
		"next_date", plan.NextDate.Format("2006-01-02"))

	return plan, nil
}

// PlanNextDay plans a single-day advance from the campaign's current
// date.
func (a *Advancer) PlanNextDay(ctx context.Context, playUserGameLive bool) (*DayPlan, error) {
	state, err := a.campaignStore.Get(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, errors.NotFoundf("no campaign")
	}

	return a.PlanThroughDate(ctx, state.CurrentDate, playUserGameLive)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
