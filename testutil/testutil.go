// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/ai-ceo/auth"
	"github.com/danielhkuo/ai-ceo/cliparse"
	"github.com/danielhkuo/ai-ceo/db"
	"github.com/danielhkuo/ai-ceo/models"
	"github.com/danielhkuo/ai-ceo/store"
)

// TestDeviceID is a valid X-Device-UUID for requests
const TestDeviceID = "9f0c2b7e-3d4a-4c1b-8e2f-5a6b7c8d9e01"

// SetupTestDB opens a private in-memory SQLite database with the full schema.
// It is closed when the test ends.
func SetupTestDB(t *testing.T) *db.DB {
	t.Helper()

	ctx := context.Background()
	conn, err := db.Open(ctx, db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(ctx, conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               3318,
		DatabaseType:       db.TypeSQLite,
		DatabaseURL:        ":memory:",
		AdminKeySalt:       "test-admin-salt",
		ShareSlugSalt:      "test-slug-salt",
		VoteCap:            3,
		PromoteThreshold:   5,
		VoteCooldown:       10 * time.Millisecond,
		ResyncInterval:     time.Minute,
		ModerationInterval: 0,
		LogLevel:           "debug",
		RateLimitRPS:       5,
		RateLimitBurst:     10,
	}
}

// AdminKey returns the admin key for cfg
func AdminKey(cfg cliparse.Config) string {
	return auth.GenerateAdminKey(auth.AdminScope, cfg.AdminKeySalt)
}

// CreateTestCandidate inserts a candidate and returns its ID
func CreateTestCandidate(t *testing.T, s store.CandidateStore, name, organization, category string, votes int, approved bool) string {
	t.Helper()

	id, err := s.Create(context.Background(), models.Candidate{
		Name:         name,
		Organization: organization,
		Category:     category,
		VoteCount:    votes,
		Approved:     approved,
	})
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}
	return id
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// DeviceHeaders returns headers identifying device
func DeviceHeaders(device string) map[string]string {
	return map[string]string{"X-Device-UUID": device}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response: %v. Body: %s", err, w.Body.String())
	}
}
