// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/danielhkuo/ai-ceo/budget"
	"github.com/danielhkuo/ai-ceo/cliparse"
	"github.com/danielhkuo/ai-ceo/logger"
	"github.com/danielhkuo/ai-ceo/middleware"
	"github.com/danielhkuo/ai-ceo/models"
)

type BudgetHandler struct {
	svc *Services
	cfg cliparse.Config
}

func NewBudgetHandler(svc *Services, cfg cliparse.Config) *BudgetHandler {
	return &BudgetHandler{svc: svc, cfg: cfg}
}

// Get handles GET /devices/budget
func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	device, err := deviceID(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	st := h.svc.Budget.Status(r.Context(), device)
	middleware.JSONResponse(w, http.StatusOK, budgetResponse(st, h.svc.Budget.Cap()))
}

// Unlock handles POST /devices/budget/unlock
// Completing a share or email action refunds a fixed number of votes.
func (h *BudgetHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	device, err := deviceID(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.UnlockRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	st, err := h.svc.Budget.Unlock(r.Context(), device, req.Action)
	if errors.Is(err, budget.ErrUnknownUnlockAction) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "action must be one of: share, copy_link, email_ceo")
		return
	}
	if err != nil {
		logger.Error("unlock failed", zap.Error(err))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to unlock votes")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, budgetResponse(st, h.svc.Budget.Cap()))
}

// Reset handles DELETE /devices/budget
func (h *BudgetHandler) Reset(w http.ResponseWriter, r *http.Request) {
	device, err := deviceID(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Budget.Reset(r.Context(), device); err != nil {
		logger.Error("budget reset failed", zap.Error(err))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset budget")
		return
	}

	st := h.svc.Budget.Status(r.Context(), device)
	middleware.JSONResponse(w, http.StatusOK, budgetResponse(st, h.svc.Budget.Cap()))
}
