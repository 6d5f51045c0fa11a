// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/danielhkuo/ai-ceo/auth"
	"github.com/danielhkuo/ai-ceo/cliparse"
	"github.com/danielhkuo/ai-ceo/logger"
	"github.com/danielhkuo/ai-ceo/middleware"
	"github.com/danielhkuo/ai-ceo/models"
	"github.com/danielhkuo/ai-ceo/seed"
)

type AdminHandler struct {
	svc *Services
	cfg cliparse.Config
}

func NewAdminHandler(svc *Services, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{svc: svc, cfg: cfg}
}

// RequireKey rejects requests without a valid X-Admin-Key.
func (h *AdminHandler) RequireKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Admin-Key")
		if err := auth.ValidateAdminKey(auth.AdminScope, key, h.cfg.AdminKeySalt); err != nil {
			logger.Warn("admin key rejected", zap.String("path", r.URL.Path), zap.String("ip", middleware.GetClientIP(r)))
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
			return
		}
		next(w, r)
	}
}

func seedResponse(res seed.Result) models.SeedResponse {
	return models.SeedResponse{Created: res.Created, Skipped: res.Skipped, Reapproved: res.Reapproved}
}

// Seed handles POST /admin/seed
func (h *AdminHandler) Seed(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Seeder.Seed(r.Context())
	if err != nil {
		logger.Error("seed failed", zap.Error(err))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to seed candidates")
		return
	}
	if res.Created > 0 {
		h.publish(r)
	}
	middleware.JSONResponse(w, http.StatusOK, seedResponse(res))
}

// Reset handles POST /admin/reset
// Hides every candidate and restores the seed list.
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Seeder.Reset(r.Context())
	if err != nil {
		logger.Error("reset failed", zap.Error(err))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset candidates")
		return
	}
	h.publish(r)
	middleware.JSONResponse(w, http.StatusOK, seedResponse(res))
}

// Moderate handles POST /admin/moderation
// Runs a promotion pass now instead of waiting for the next vote.
func (h *AdminHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	promoted, err := h.svc.Moderation.Pass(r.Context())
	if err != nil {
		logger.Error("moderation pass failed", zap.Error(err))
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Moderation pass failed")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ModerationResponse{Promoted: promoted})
}

func (h *AdminHandler) publish(r *http.Request) {
	if err := h.svc.Leaderboard.Publish(r.Context()); err != nil {
		logger.Warn("failed to publish leaderboard change", zap.Error(err))
	}
}
