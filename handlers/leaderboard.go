// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/danielhkuo/ai-ceo/cliparse"
	"github.com/danielhkuo/ai-ceo/leaderboard"
	"github.com/danielhkuo/ai-ceo/logger"
	"github.com/danielhkuo/ai-ceo/middleware"
	"github.com/danielhkuo/ai-ceo/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	// Clients only send control frames.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type LeaderboardHandler struct {
	svc *Services
	cfg cliparse.Config
}

func NewLeaderboardHandler(svc *Services, cfg cliparse.Config) *LeaderboardHandler {
	return &LeaderboardHandler{svc: svc, cfg: cfg}
}

func (h *LeaderboardHandler) response(snap leaderboard.Snapshot, category string) models.LeaderboardResponse {
	at := snap.At
	return models.LeaderboardResponse{
		Candidates: toViews(leaderboard.FilterByCategory(snap.Candidates, category), true),
		Category:   category,
		SyncedAt:   &at,
		Connected:  h.svc.Leaderboard.Connected(),
	}
}

// Get handles GET /leaderboard?category=
// Serves the last synced snapshot; stale data is returned with connected=false.
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryFilter(r.URL.Query().Get("category"))
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown category")
		return
	}

	snap, ok := h.svc.Leaderboard.Latest()
	if !ok {
		h.svc.Leaderboard.Refresh(r.Context())
		snap, ok = h.svc.Leaderboard.Latest()
	}
	if !ok {
		middleware.JSONResponse(w, http.StatusOK, models.LeaderboardResponse{
			Candidates: []models.CandidateView{},
			Category:   category,
			Connected:  false,
		})
		return
	}

	middleware.JSONResponse(w, http.StatusOK, h.response(snap, category))
}

// Live handles GET /leaderboard/live?category=
// Upgrades to a WebSocket and pushes a LeaderboardResponse for every snapshot.
func (h *LeaderboardHandler) Live(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryFilter(r.URL.Query().Get("category"))
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown category")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := h.svc.Leaderboard.Subscribe(r.Context())
	go h.readPump(conn, sub)
	h.writePump(conn, sub, category)
}

// readPump discards client frames and ends the subscription when the peer goes away.
func (h *LeaderboardHandler) readPump(conn *websocket.Conn, sub *leaderboard.Subscription) {
	defer sub.Close()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("leaderboard client error", zap.Error(err))
			}
			return
		}
	}
}

func (h *LeaderboardHandler) writePump(conn *websocket.Conn, sub *leaderboard.Subscription, category string) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.Close()
		conn.Close()
	}()

	for {
		select {
		case snap, ok := <-sub.C():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
				return
			}
			if err := conn.WriteJSON(h.response(snap, category)); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
