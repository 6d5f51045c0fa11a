// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/danielhkuo/ai-ceo/cliparse"
	"github.com/danielhkuo/ai-ceo/logger"
	"github.com/danielhkuo/ai-ceo/middleware"
	"github.com/danielhkuo/ai-ceo/models"
	"github.com/danielhkuo/ai-ceo/store"
	"github.com/danielhkuo/ai-ceo/voting"
)

type VotingHandler struct {
	svc *Services
	cfg cliparse.Config
}

func NewVotingHandler(svc *Services, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{svc: svc, cfg: cfg}
}

// Vote handles POST /candidates/{id}/votes
func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request) {
	device, err := deviceID(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	candidateID := r.PathValue("id")

	res, err := h.svc.Votes.Vote(r.Context(), device, candidateID)

	resp := models.VoteResponse{
		State:       string(res.State),
		CandidateID: candidateID,
		Budget:      budgetResponse(res.Budget, h.svc.Budget.Cap()),
	}

	switch {
	case err == nil:
		resp.Message = "Vote counted"
		middleware.JSONResponse(w, http.StatusOK, resp)
	case errors.Is(err, store.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
	case errors.Is(err, voting.ErrVoteInProgress):
		middleware.ErrorResponse(w, http.StatusConflict, "A vote is already being submitted")
	case errors.Is(err, voting.ErrBudgetExhausted):
		resp.UnlockOptions = unlockOptions(res.UnlockOptions)
		resp.Message = "Out of votes. Share or email a CEO to unlock more."
		middleware.JSONResponse(w, http.StatusTooManyRequests, resp)
	case errors.Is(err, voting.ErrRemoteWrite):
		resp.Message = "Your vote could not be recorded. Try again."
		middleware.JSONResponse(w, http.StatusServiceUnavailable, resp)
	default:
		logger.Error("vote failed", zap.String("candidate_id", candidateID), zap.Error(err))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to vote")
	}
}
