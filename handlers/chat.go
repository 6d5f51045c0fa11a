// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/danielhkuo/ai-ceo/chatflow"
	"github.com/danielhkuo/ai-ceo/cliparse"
	"github.com/danielhkuo/ai-ceo/logger"
	"github.com/danielhkuo/ai-ceo/middleware"
	"github.com/danielhkuo/ai-ceo/models"
)

type ChatHandler struct {
	svc *Services
	cfg cliparse.Config
}

func NewChatHandler(svc *Services, cfg cliparse.Config) *ChatHandler {
	return &ChatHandler{svc: svc, cfg: cfg}
}

func (h *ChatHandler) view(sess chatflow.Session) models.ChatSessionResponse {
	step, _ := chatflow.StepFor(sess.State)

	resp := models.ChatSessionResponse{
		SessionID: sess.ID,
		State:     string(sess.State),
		Prompt:    step.Prompt,
		Goal:      sess.Goal,
		Options:   make([]models.ChatOption, 0, len(step.Options)),
	}
	for _, o := range step.Options {
		resp.Options = append(resp.Options, models.ChatOption{
			Label:  o.Label,
			Kind:   string(o.Kind),
			Target: string(o.Target),
			Goal:   o.Goal,
		})
	}
	if sess.Quote != nil {
		q := quoteResponse(*sess.Quote)
		resp.Quote = &q
	}
	return resp
}

func (h *ChatHandler) archive(ctx context.Context, sess chatflow.Session) {
	if sess.Quote == nil {
		return
	}
	if err := h.svc.Archive.Save(ctx, *sess.Quote); err != nil {
		logger.Warn("failed to archive chat quote", zap.String("session_id", sess.ID), zap.Error(err))
	}
}

// Start handles POST /chat/sessions
// The body is optional; a goal skips straight to a quote.
func (h *ChatHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req models.StartChatRequest
	if r.ContentLength > 0 {
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	}

	sess := h.svc.Chat.Start(req.Goal)
	h.archive(r.Context(), sess)
	middleware.JSONResponse(w, http.StatusCreated, h.view(sess))
}

// Get handles GET /chat/sessions/{id}
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Chat.Get(r.PathValue("id"))
	if errors.Is(err, chatflow.ErrSessionNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Chat session not found")
		return
	}
	if err != nil {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load chat session")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.view(sess))
}

// Act handles POST /chat/sessions/{id}/actions
func (h *ChatHandler) Act(w http.ResponseWriter, r *http.Request) {
	var req models.ChatActionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	sess, err := h.svc.Chat.Apply(r.PathValue("id"), chatflow.Action{
		Kind:   chatflow.ActionKind(req.Kind),
		Target: chatflow.State(req.Target),
		Goal:   req.Goal,
		Text:   req.Text,
	})
	switch {
	case errors.Is(err, chatflow.ErrSessionNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Chat session not found")
		return
	case errors.Is(err, chatflow.ErrInvalidTransition):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to apply action")
		return
	}

	if sess.State == chatflow.StateResult {
		h.archive(r.Context(), sess)
	}
	middleware.JSONResponse(w, http.StatusOK, h.view(sess))
}
