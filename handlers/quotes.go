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
	"github.com/danielhkuo/ai-ceo/quotes"
)

type QuoteHandler struct {
	svc *Services
	cfg cliparse.Config
}

func NewQuoteHandler(svc *Services, cfg cliparse.Config) *QuoteHandler {
	return &QuoteHandler{svc: svc, cfg: cfg}
}

// Generate handles GET /quotes?goal=
func (h *QuoteHandler) Generate(w http.ResponseWriter, r *http.Request) {
	q := h.svc.Quotes.Generate(r.URL.Query().Get("goal"))
	if err := h.svc.Archive.Save(r.Context(), q); err != nil {
		// The quote is still usable, only its share link is not.
		logger.Warn("failed to archive quote", zap.String("slug", q.Slug), zap.Error(err))
	}
	middleware.JSONResponse(w, http.StatusOK, quoteResponse(q))
}

// Get handles GET /quotes/{slug}
func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	q, err := h.svc.Archive.Load(r.Context(), slug)
	if errors.Is(err, quotes.ErrQuoteNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Quote not found")
		return
	}
	if err != nil {
		logger.Error("failed to load quote", zap.String("slug", slug), zap.Error(err))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load quote")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, quoteResponse(q))
}
