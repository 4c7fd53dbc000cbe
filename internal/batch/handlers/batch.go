package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"hoops-server/internal/batch"
	"hoops-server/internal/shared/errors"
	"hoops-server/internal/shared/response"
)

// BatchReader is the orchestrator's polling surface.
type BatchReader interface {
	Status(batchID string) (*batch.State, error)
	Results(batchID string, since int) ([]batch.GameOutcome, error)
	Cancel(batchID string) error
}

// ProgressReader serves the mirrored snapshot of a batch the current
// process never ran. Nil misses come back as (nil, nil).
type ProgressReader interface {
	ReadProgress(ctx context.Context, batchID string) (*batch.ProgressSnapshot, error)
}

type BatchHandler struct {
	orchestrator BatchReader
	mirror       ProgressReader
}

func NewBatchHandler(orchestrator BatchReader, mirror ProgressReader) *BatchHandler {
	return &BatchHandler{orchestrator: orchestrator, mirror: mirror}
}

// Status returns a batch's lifecycle state and progress counters. A
// batch unknown to this process (the registry is lost on restart) is
// answered from the mirrored snapshot when one is still available.
func (h *BatchHandler) Status(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "batch_status")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	batchID := r.PathValue("id")
	if batchID == "" {
		response.Error(w, r, logger, errors.Validation("batch ID is required"))
		return
	}

	state, err := h.orchestrator.Status(batchID)
	if err != nil {
		if errors.IsNotFound(err) && h.mirror != nil {
			snapshot, mirrorErr := h.mirror.ReadProgress(r.Context(), batchID)
			if mirrorErr == nil && snapshot != nil {
				response.Success(w, http.StatusOK, batch.State{
					ID:       snapshot.BatchID,
					Status:   snapshot.Status,
					Progress: snapshot.Progress,
				})
				return
			}
		}
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, state)
}

// Results returns per-game outcomes from the given offset onward, so
// pollers only fetch outcomes they have not seen.
func (h *BatchHandler) Results(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "batch_results")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	batchID := r.PathValue("id")
	if batchID == "" {
		response.Error(w, r, logger, errors.Validation("batch ID is required"))
		return
	}

	since := 0
	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		parsed, err := strconv.Atoi(sinceStr)
		if err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid since offset", err))
			return
		}
		since = parsed
	}

	outcomes, err := h.orchestrator.Results(batchID, since)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, outcomes)
}

// Cancel stops dispatching a running batch's remaining games.
func (h *BatchHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "batch_cancel")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	batchID := r.PathValue("id")
	if batchID == "" {
		response.Error(w, r, logger, errors.Validation("batch ID is required"))
		return
	}

	if err := h.orchestrator.Cancel(batchID); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"status": "cancelling"})
}
