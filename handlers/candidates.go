// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/danielhkuo/ai-ceo/cliparse"
	"github.com/danielhkuo/ai-ceo/logger"
	"github.com/danielhkuo/ai-ceo/middleware"
	"github.com/danielhkuo/ai-ceo/models"
	"github.com/danielhkuo/ai-ceo/moderation"
	"github.com/danielhkuo/ai-ceo/store"
)

type CandidateHandler struct {
	svc *Services
	cfg cliparse.Config
}

func NewCandidateHandler(svc *Services, cfg cliparse.Config) *CandidateHandler {
	return &CandidateHandler{svc: svc, cfg: cfg}
}

// List handles GET /candidates?approved=&category=
// A one-shot query ordered by votes.
func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	q := store.Query{ByVotes: true}

	if raw := r.URL.Query().Get("approved"); raw != "" {
		approved, err := strconv.ParseBool(raw)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "approved must be true or false")
			return
		}
		q.Approved = store.Bool(approved)
	}

	category, ok := categoryFilter(r.URL.Query().Get("category"))
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown category")
		return
	}
	if category != "" {
		q.Category = store.String(category)
	}

	candidates, err := h.svc.Store.Query(r.Context(), q)
	if err != nil {
		logger.Error("failed to query candidates", zap.Error(err))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CandidateListResponse{
		Candidates: toViews(candidates, false),
	})
}

// Get handles GET /candidates/{id}
func (h *CandidateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	c, err := h.svc.Store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}
	if err != nil {
		logger.Error("failed to get candidate", zap.String("candidate_id", id), zap.Error(err))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CandidateView{
		Candidate:    *c,
		VotesDisplay: votesDisplay(c.VoteCount),
	})
}

// Submit handles POST /candidates
// The new candidate stays hidden until it collects enough votes.
func (h *CandidateHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	c, err := h.svc.Gate.Submit(r.Context(), req.Name, req.Organization, req.Category)
	switch {
	case errors.Is(err, moderation.ErrDuplicate):
		middleware.ErrorResponse(w, http.StatusConflict, "This CEO has already been nominated")
		return
	case errors.Is(err, moderation.ErrInappropriate):
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "Please keep nominations civil")
		return
	case errors.Is(err, moderation.ErrValidationRejected):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		logger.Error("failed to submit candidate", zap.Error(err))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit candidate")
		return
	}

	h.svc.Moderation.Enqueue()

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitCandidateResponse{
		Candidate: *c,
		Message:   fmt.Sprintf("Nominated. It goes on the leaderboard once it reaches %d votes.", h.svc.Moderation.Threshold()),
	})
}
