package batch

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"hoops-server/internal/engine"
	"hoops-server/internal/schedule"
	"hoops-server/internal/shared/errors"
)

// ResultApplier is the single result-application contract shared with
// the interactive path.
type ResultApplier interface {
	ApplyResult(ctx context.Context, game schedule.Game, result engine.FinalResult, isUserGame bool) error
}

// CampaignStore is the slice of campaign persistence the orchestrator
// drives: the active-batch marker and the calendar.
type CampaignStore interface {
	ActiveBatchID(ctx context.Context) (string, error)
	SetActiveBatch(ctx context.Context, batchID string) error
	ClearActiveBatch(ctx context.Context, batchID string) error
	AdvanceDate(ctx context.Context, to time.Time) error
}

// ProgressSink mirrors batch progress for the polling surface. A nil
// sink is skipped.
type ProgressSink interface {
	WriteProgress(ctx context.Context, batchID string, status Status, progress Progress) error
}

// State is the polling view of one batch.
type State struct {
	ID         string     `json:"id"`
	Status     Status     `json:"status"`
	Progress   Progress   `json:"progress"`
	NextDate   time.Time  `json:"next_date"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

type job struct {
	game    schedule.Game
	result  engine.FinalResult
	err     error
	done    bool
	skipped bool
}

type run struct {
	mu        sync.Mutex
	id        string
	nextDate  time.Time
	jobs      []*job
	status    Status
	outcomes  []GameOutcome
	startedAt time.Time
	finished  *time.Time
	cancel    context.CancelFunc
	done      chan struct{}
}

// Orchestrator runs batches of AI-vs-AI games on a bounded worker pool.
// Only one batch may be in flight per campaign; results are buffered
// while workers run and merged into season state in one pass at the
// end, after the calendar has moved.
type Orchestrator struct {
	runner     *Runner
	aggregator ResultApplier
	campaign   CampaignStore
	progress   ProgressSink
	workers    int
	logger     *slog.Logger

	mu   sync.Mutex
	runs map[string]*run
}

func NewOrchestrator(
	runner *Runner,
	aggregator ResultApplier,
	campaign CampaignStore,
	workers int,
	logger *slog.Logger,
) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		runner:     runner,
		aggregator: aggregator,
		campaign:   campaign,
		workers:    workers,
		logger:     logger,
		runs:       make(map[string]*run),
	}
}

// WithProgressSink attaches the optional progress mirror.
func (o *Orchestrator) WithProgressSink(sink ProgressSink) *Orchestrator {
	o.progress = sink
	return o
}

// Submit starts a new batch over the given games. It is rejected with a
// conflict while another batch is still in flight. nextDate is where
// the calendar lands once the batch finishes; when the user kept a game
// to play live, the caller passes the held date and the advance is a
// no-op.
func (o *Orchestrator) Submit(ctx context.Context, games []schedule.Game, nextDate time.Time) (Handle, error) {
	logger := o.logger.With("component", "batch_orchestrator", "operation", "submit")

	if len(games) == 0 {
		return Handle{}, errors.Validationf("batch contains no games")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	activeID, err := o.campaign.ActiveBatchID(ctx)
	if err != nil {
		return Handle{}, errors.WrapInternal("failed to read active batch", err)
	}
	if activeID != "" {
		// The marker alone is not trusted: a batch that finished but
		// whose clear was lost (or one from before a restart) must not
		// block the campaign forever.
		if active, ok := o.runs[activeID]; ok && !active.snapshotStatus().IsTerminal() {
			return Handle{}, errors.Conflictf("batch %s is still running", activeID)
		}
		logger.Warn("Clearing stale active batch marker", "batch_id", activeID)
		if err := o.campaign.ClearActiveBatch(ctx, activeID); err != nil {
			return Handle{}, errors.WrapInternal("failed to clear stale batch marker", err)
		}
	}

	id, err := newBatchID()
	if err != nil {
		return Handle{}, errors.WrapInternal("failed to generate batch id", err)
	}

	if err := o.campaign.SetActiveBatch(ctx, id); err != nil {
		return Handle{}, errors.WrapInternal("failed to mark batch active", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	r := &run{
		id:        id,
		nextDate:  nextDate,
		status:    StatusRunning,
		startedAt: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	for i := range games {
		r.jobs = append(r.jobs, &job{game: games[i]})
	}
	o.runs[id] = r

	logger.Info("Batch submitted", "batch_id", id, "games", len(games), "workers", o.workers)

	go o.execute(runCtx, r)

	return Handle{ID: id}, nil
}

// Status reports a batch's current state.
func (o *Orchestrator) Status(batchID string) (*State, error) {
	r, err := o.lookup(batchID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	state := &State{
		ID:        r.id,
		Status:    r.status,
		Progress:  r.progressLocked(),
		NextDate:  r.nextDate,
		StartedAt: r.startedAt,
	}
	if r.finished != nil {
		t := *r.finished
		state.FinishedAt = &t
	}
	return state, nil
}

// Results returns a batch's per-game outcomes starting at the given
// offset, so pollers only fetch what they have not seen yet.
func (o *Orchestrator) Results(batchID string, since int) ([]GameOutcome, error) {
	r, err := o.lookup(batchID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if since < 0 {
		since = 0
	}
	if since >= len(r.outcomes) {
		return []GameOutcome{}, nil
	}
	out := make([]GameOutcome, len(r.outcomes)-since)
	copy(out, r.outcomes[since:])
	return out, nil
}

// Cancel stops dispatching a batch's remaining games. Games already
// simulated still count; the calendar does not advance for a cancelled
// batch.
func (o *Orchestrator) Cancel(batchID string) error {
	r, err := o.lookup(batchID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if r.status != StatusRunning {
		r.mu.Unlock()
		return errors.Validationf("batch %s is not running", batchID)
	}
	r.status = StatusCancelled
	r.mu.Unlock()

	r.cancel()
	o.logger.Info("Batch cancelled", "component", "batch_orchestrator", "batch_id", batchID)
	return nil
}

func (o *Orchestrator) execute(ctx context.Context, r *run) {
	logger := o.logger.With("component", "batch_orchestrator", "operation", "execute", "batch_id", r.id)
	defer close(r.done)

	jobs := make(chan *job)
	var wg sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				o.runJob(ctx, r, j)
			}
		}()
	}

dispatch:
	for _, j := range r.jobs {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- j:
		}
	}
	close(jobs)
	wg.Wait()

	o.finalize(ctx, r, logger)
}

func (o *Orchestrator) runJob(ctx context.Context, r *run, j *job) {
	if ctx.Err() != nil {
		r.mu.Lock()
		j.skipped = true
		r.mu.Unlock()
		return
	}

	result, err := o.runner.RunGame(ctx, j.game)

	r.mu.Lock()
	j.done = true
	if err != nil {
		j.err = err
		r.outcomes = append(r.outcomes, GameOutcome{
			GameID:     j.game.ID,
			HomeTeamID: j.game.HomeTeamID,
			AwayTeamID: j.game.AwayTeamID,
			Error:      err.Error(),
		})
	} else {
		j.result = result
		r.outcomes = append(r.outcomes, GameOutcome{
			GameID:     j.game.ID,
			HomeTeamID: j.game.HomeTeamID,
			AwayTeamID: j.game.AwayTeamID,
			HomeScore:  result.HomeScore,
			AwayScore:  result.AwayScore,
		})
	}
	status, progress := r.status, r.progressLocked()
	r.mu.Unlock()

	o.mirror(ctx, r.id, status, progress)
}

// finalize merges the buffered results into season state. The calendar
// moves first so a crash between the two steps leaves already-finished
// games re-runnable behind an advanced date rather than a date stuck in
// the past; the aggregator's completion guard makes the re-merge safe.
func (o *Orchestrator) finalize(ctx context.Context, r *run, logger *slog.Logger) {
	// The submit request is long gone by now; merging uses its own
	// context even when the batch was cancelled.
	mergeCtx := context.WithoutCancel(ctx)

	r.mu.Lock()
	cancelled := r.status == StatusCancelled
	r.mu.Unlock()

	if cancelled {
		logger.Info("Batch cancelled, calendar not advanced")
	} else {
		if err := o.campaign.AdvanceDate(mergeCtx, r.nextDate); err != nil {
			logger.Error("Failed to advance calendar", "error", err)
		}
	}

	merged, mergeFailed := 0, 0
	for _, j := range r.jobs {
		// Only games that actually ran have a result; a cancelled
		// batch leaves undispatched jobs with done=false.
		if !j.done || j.skipped || j.err != nil {
			continue
		}
		err := o.aggregator.ApplyResult(mergeCtx, j.game, j.result, false)
		if err != nil {
			if errors.IsConflict(err) {
				logger.Debug("Result already applied", "game_id", j.game.ID)
				merged++
				continue
			}
			logger.Error("Failed to merge game result", "error", err, "game_id", j.game.ID)
			j.err = err
			mergeFailed++
			continue
		}
		merged++
	}

	r.mu.Lock()
	if r.status == StatusRunning {
		r.status = o.terminalStatus(r)
	}
	now := time.Now()
	r.finished = &now
	status, progress := r.status, r.progressLocked()
	r.mu.Unlock()

	if err := o.campaign.ClearActiveBatch(mergeCtx, r.id); err != nil {
		logger.Error("Failed to clear active batch marker", "error", err)
	}

	o.mirror(mergeCtx, r.id, status, progress)

	logger.Info("Batch finished",
		"status", status,
		"merged", merged,
		"merge_failed", mergeFailed,
		"completed", progress.Completed,
		"failed", progress.Failed,
		"pending", progress.Pending)
}

func (o *Orchestrator) terminalStatus(r *run) Status {
	completed, failed := 0, 0
	for _, j := range r.jobs {
		switch {
		case j.skipped:
		case j.err != nil:
			failed++
		default:
			completed++
		}
	}
	switch {
	case failed == 0:
		return StatusCompleted
	case completed == 0:
		return StatusFailed
	default:
		return StatusCompletedWithErrors
	}
}

func (o *Orchestrator) mirror(ctx context.Context, batchID string, status Status, progress Progress) {
	if o.progress == nil {
		return
	}
	if err := o.progress.WriteProgress(ctx, batchID, status, progress); err != nil {
		o.logger.Warn("Failed to mirror batch progress",
			"component", "batch_orchestrator", "batch_id", batchID, "error", err)
	}
}

func (o *Orchestrator) lookup(batchID string) (*run, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	r, ok := o.runs[batchID]
	if !ok {
		return nil, errors.NotFoundf("batch %s not found", batchID)
	}
	return r, nil
}

func (r *run) snapshotStatus() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *run) progressLocked() Progress {
	p := Progress{Total: len(r.jobs)}
	for _, j := range r.jobs {
		switch {
		case !j.done || j.skipped:
			p.Pending++
		case j.err != nil:
			p.Failed++
		default:
			p.Completed++
		}
	}
	return p
}

func newBatchID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
