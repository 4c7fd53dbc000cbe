package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"hoops-server/internal/campaign"
	"hoops-server/internal/shared/errors"
	"hoops-server/internal/shared/response"
)

type CampaignHandler struct {
	service *campaign.Service
}

func NewCampaignHandler(service *campaign.Service) *CampaignHandler {
	return &CampaignHandler{service: service}
}

// Get returns the campaign's calendar position and active batch marker.
func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "campaign_get")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	state, err := h.service.Get(ctx)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	if state == nil {
		response.Error(w, r, logger, errors.NotFoundf("no campaign"))
		return
	}

	response.Success(w, http.StatusOK, state)
}

type simulateRequest struct {
	TargetDate       string `json:"target_date,omitempty"`
	PlayUserGameLive bool   `json:"play_user_game_live"`
}

// Simulate advances the campaign through a date. With no target date in
// the body it resolves the current day only.
func (h *CampaignHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "campaign_simulate")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req simulateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
			return
		}
	}

	var result *campaign.AdvanceResult
	var err error

	if req.TargetDate == "" {
		result, err = h.service.SimulateNextDay(ctx, req.PlayUserGameLive)
	} else {
		target, parseErr := time.Parse("2006-01-02", req.TargetDate)
		if parseErr != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid target date, expected YYYY-MM-DD", parseErr))
			return
		}
		result, err = h.service.SimulateThroughDate(ctx, target, req.PlayUserGameLive)
	}

	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusAccepted, result)
}
