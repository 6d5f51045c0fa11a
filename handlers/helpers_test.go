// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/ai-ceo/cliparse"
	"github.com/danielhkuo/ai-ceo/kv"
	"github.com/danielhkuo/ai-ceo/models"
	"github.com/danielhkuo/ai-ceo/seed"
	"github.com/danielhkuo/ai-ceo/store"
	"github.com/danielhkuo/ai-ceo/testutil"
)

var testSeeds = []seed.Entry{
	{Name: "Chad Synergy", Organization: "Acme Dynamics", Category: models.CategoryTech},
	{Name: "Brock Ledger", Organization: "Goldbridge Capital", Category: models.CategoryFinance},
}

// setupServices builds services over a fresh in-memory SQLite database
func setupServices(t *testing.T) (*Services, cliparse.Config) {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	svc := NewServices(Deps{
		Candidates: store.NewSQLStore(conn),
		KV:         kv.NewSQLStore(conn),
		Seeds:      testSeeds,
		Rand:       rand.NewPCG(1, 2),
	}, cfg)
	t.Cleanup(svc.Close)
	return svc, cfg
}

// serve runs a single handler with path values bound by a throwaway mux
func serve(pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}
