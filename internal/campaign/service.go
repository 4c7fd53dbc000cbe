package campaign

import (
	"context"
	"log/slog"
	"time"

	"hoops-server/internal/batch"
	"hoops-server/internal/schedule"
	"hoops-server/internal/shared/errors"
)

// BatchSubmitter starts a batch of AI-vs-AI games and returns a handle
// for polling.
type BatchSubmitter interface {
	Submit(ctx context.Context, games []schedule.Game, nextDate time.Time) (batch.Handle, error)
}

// DateStore moves the calendar when there is no batch to do it.
type DateStore interface {
	AdvanceDate(ctx context.Context, to time.Time) error
}

// ConditionStore applies off-day fatigue recovery.
type ConditionStore interface {
	RecoverFatigue(ctx context.Context, amount float64) error
}

// offDayRecovery is the fatigue shed per day without games.
const offDayRecovery = 0.15

// AdvanceResult is the answer to a simulate-day request. Exactly one of
// three shapes comes back: a batch handle to poll, a user game waiting
// to be played live (possibly alongside a batch), or an immediately
// advanced calendar when no games stood in the way.
type AdvanceResult struct {
	Batch      *batch.Handle  `json:"batch,omitempty"`
	UserGame   *schedule.Game `json:"user_game,omitempty"`
	BatchGames int            `json:"batch_games"`
	NextDate   time.Time      `json:"next_date"`
	Advanced   bool           `json:"advanced"`
}

// Service is the campaign's day-advancement entry point: it plans which
// games block the calendar, hands the AI-vs-AI ones to the batch
// orchestrator and moves the date itself on empty days.
type Service struct {
	advancer  *Advancer
	campaigns CampaignStore
	batches   BatchSubmitter
	dates     DateStore
	condition ConditionStore
	logger    *slog.Logger
}

func NewService(
	advancer *Advancer,
	campaigns CampaignStore,
	batches BatchSubmitter,
	dates DateStore,
	condition ConditionStore,
	logger *slog.Logger,
) *Service {
	return &Service{
		advancer:  advancer,
		campaigns: campaigns,
		batches:   batches,
		dates:     dates,
		condition: condition,
		logger:    logger,
	}
}

// Get returns the campaign's progression state.
func (s *Service) Get(ctx context.Context) (*ProgressionState, error) {
	return s.campaigns.Get(ctx)
}

// SimulateThroughDate resolves every game between the campaign's current
// date and target. AI-vs-AI games go to a batch whose completion moves
// the calendar; when playUserGameLive is true the user's game on the
// target date is held back and the calendar stops on that date until
// the game is played.
func (s *Service) SimulateThroughDate(ctx context.Context, target time.Time, playUserGameLive bool) (*AdvanceResult, error) {
	logger := s.logger.With("component", "campaign_service", "operation", "simulate_through_date",
		"target", target.Format("2006-01-02"))

	plan, err := s.advancer.PlanThroughDate(ctx, target, playUserGameLive)
	if err != nil {
		return nil, err
	}

	result := &AdvanceResult{
		UserGame:   plan.UserGame,
		BatchGames: len(plan.BatchGames),
		NextDate:   plan.NextDate,
	}

	if len(plan.BatchGames) == 0 {
		// Nothing for the batch to do. If the user also has no game
		// pending, the calendar can move right now and every team gets
		// an off day.
		if plan.UserGame == nil {
			if err := s.dates.AdvanceDate(ctx, plan.NextDate); err != nil {
				return nil, err
			}
			if err := s.condition.RecoverFatigue(ctx, offDayRecovery); err != nil {
				logger.Warn("Off-day fatigue recovery failed", "error", err)
			}
			result.Advanced = true
			logger.Info("No games in range, calendar advanced", "next_date", plan.NextDate.Format("2006-01-02"))
		}
		return result, nil
	}

	handle, err := s.batches.Submit(ctx, plan.BatchGames, plan.NextDate)
	if err != nil {
		return nil, err
	}
	result.Batch = &handle

	logger.Info("Day simulation started",
		"batch_id", handle.ID,
		"batch_games", len(plan.BatchGames),
		"has_user_game", plan.UserGame != nil)

	return result, nil
}

// SimulateNextDay resolves the campaign's current date only.
func (s *Service) SimulateNextDay(ctx context.Context, playUserGameLive bool) (*AdvanceResult, error) {
	state, err := s.campaigns.Get(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, errors.NotFoundf("no campaign")
	}
	return s.SimulateThroughDate(ctx, state.CurrentDate, playUserGameLive)
}
