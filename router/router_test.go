// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/ai-ceo/handlers"
	"github.com/danielhkuo/ai-ceo/kv"
	"github.com/danielhkuo/ai-ceo/middleware"
	"github.com/danielhkuo/ai-ceo/models"
	"github.com/danielhkuo/ai-ceo/store"
	"github.com/danielhkuo/ai-ceo/testutil"
)

func setupRouter(t *testing.T, limiter *middleware.RateLimiter) (*http.ServeMux, *handlers.Services) {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	svc := handlers.NewServices(handlers.Deps{
		Candidates: store.NewSQLStore(conn),
		KV:         kv.NewSQLStore(conn),
	}, cfg)
	t.Cleanup(svc.Close)

	return NewRouter(svc, cfg, limiter), svc
}

func TestHealthEndpoint(t *testing.T) {
	mux, _ := setupRouter(t, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux, _ := setupRouter(t, nil)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "ai-ceo API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestRouteExistence(t *testing.T) {
	mux, _ := setupRouter(t, nil)

	// 400, 401, 404 are all valid responses depending on handler logic
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},

		{"GET", "/candidates"},
		{"GET", "/candidates/test-id"},
		{"POST", "/candidates"},
		{"POST", "/candidates/test-id/votes"},

		{"GET", "/leaderboard"},

		{"GET", "/devices/budget"},
		{"POST", "/devices/budget/unlock"},
		{"DELETE", "/devices/budget"},

		{"GET", "/quotes"},
		{"GET", "/quotes/test-slug"},
		{"POST", "/chat/sessions"},
		{"GET", "/chat/sessions/test-id"},
		{"POST", "/chat/sessions/test-id/actions"},

		{"POST", "/admin/seed"},
		{"POST", "/admin/reset"},
		{"POST", "/admin/moderation"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _ := setupRouter(t, nil)

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},
		{"DELETE", "/candidates/test-id"},
		{"GET", "/candidates/test-id/votes"},
		{"PUT", "/devices/budget"},
		{"GET", "/admin/seed"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestAdminRoutesRequireKey(t *testing.T) {
	mux, _ := setupRouter(t, nil)
	cfg := testutil.GetTestConfig()

	for _, path := range []string{"/admin/seed", "/admin/reset", "/admin/moderation"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, testutil.MakeRequest("POST", path, nil, nil))
			testutil.AssertStatus(t, w, http.StatusUnauthorized)

			w = httptest.NewRecorder()
			mux.ServeHTTP(w, testutil.MakeRequest("POST", path, nil, map[string]string{"X-Admin-Key": testutil.AdminKey(cfg)}))
			testutil.AssertStatus(t, w, http.StatusOK)
		})
	}
}

func TestRateLimitedRoutes(t *testing.T) {
	limiter := middleware.NewRateLimiter(0.001, 2, "test-salt", false)
	mux, _ := setupRouter(t, limiter)

	body := models.SubmitCandidateRequest{Name: "Jane Doe", Organization: "Acme"}
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.MakeRequest("POST", "/candidates", body, nil))
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusCreated || codes[1] != http.StatusConflict {
		t.Errorf("Expected the burst to reach the handler, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("Expected 429 after the burst, got %d", codes[2])
	}

	// Reads are never limited
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/candidates", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
}

// A nomination that collects enough votes appears on the leaderboard.
func TestNominationReachesLeaderboard(t *testing.T) {
	mux, svc := setupRouter(t, nil)
	cfg := testutil.GetTestConfig()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go svc.Leaderboard.Run(ctx)
	go svc.Moderation.Run(ctx)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/candidates",
		models.SubmitCandidateRequest{Name: "Jane Doe", Organization: "Acme Corp", Category: "tech"}, nil))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var submitted models.SubmitCandidateResponse
	testutil.AssertJSON(t, w, &submitted)
	id := submitted.Candidate.ID

	// The nomination counts as the first vote; spread the rest over two devices.
	devices := []string{testutil.TestDeviceID, "0b5f8e1a-7c2d-4e3f-9a8b-1c2d3e4f5a6b"}
	for i := 1; i < cfg.PromoteThreshold; i++ {
		device := devices[(i-1)/cfg.VoteCap]
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.MakeRequest("POST", "/candidates/"+id+"/votes", nil, testutil.DeviceHeaders(device)))
		testutil.AssertStatus(t, w, http.StatusOK)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.MakeRequest("GET", "/leaderboard?category=tech", nil, nil))

		var board models.LeaderboardResponse
		testutil.AssertJSON(t, w, &board)
		if len(board.Candidates) == 1 && board.Candidates[0].ID == id {
			if board.Candidates[0].VoteCount != cfg.PromoteThreshold || board.Candidates[0].Rank != 1 {
				t.Errorf("Unexpected leaderboard entry: %+v", board.Candidates[0])
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("Candidate never reached the leaderboard, last: %+v", board.Candidates)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
