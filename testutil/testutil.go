// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/uwezert/verify/auth"
	"github.com/uwezert/verify/cliparse"
	"github.com/uwezert/verify/db"
)

// TestAPIKey is the admin key used by test configurations
const TestAPIKey = "test-api-key"

// SetupTestDB creates a fresh in-memory database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// A :memory: database exists per connection; the pool must not
	// open a second one.
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if _, err := conn.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          8000,
		DatabaseType:  "sqlite",
		DatabaseURL:   ":memory:",
		BackendAPIKey: TestAPIKey,
		CORSOrigins:   []string{"*"},
	}
}

// CreateTestContest creates a contest and returns its ID
// active controls whether it becomes the active contest
func CreateTestContest(t *testing.T, conn *sql.DB, name string, active bool) string {
	t.Helper()

	contestID, _ := auth.GenerateID(8)
	_, err := conn.Exec(`
		INSERT INTO contest (id, name, created_at, is_active)
		VALUES ($1, $2, $3, $4)
	`, contestID, name, time.Now().UTC().Format(time.RFC3339), active)
	if err != nil {
		t.Fatalf("Failed to create test contest: %v", err)
	}

	return contestID
}

// CreateTestParticipant registers a participant in a contest and returns
// its confirmation token. status should be "registered", "submitted",
// "approved", or "rejected".
func CreateTestParticipant(t *testing.T, conn *sql.DB, contestID, uid, status string) string {
	t.Helper()

	token, _ := auth.GenerateToken()
	var decidedAt, decision *string
	if status == "approved" || status == "rejected" {
		now := time.Now().UTC().Format(time.RFC3339)
		decidedAt = &now
		decision = &status
	}

	_, err := conn.Exec(`
		INSERT INTO participant (uid, token, user_id, chat_id, username, created_at, status, decided_at, decision, contest_id)
		VALUES ($1, $2, 1001, 1001, 'testuser', $3, $4, $5, $6, $7)
	`, uid, token, time.Now().UTC().Format(time.RFC3339), status, decidedAt, decision, contestID)
	if err != nil {
		t.Fatalf("Failed to create test participant: %v", err)
	}

	return token
}

// CreateTestSubmission stores a confirmation payload for a participant
// and returns the submission ID
func CreateTestSubmission(t *testing.T, conn *sql.DB, uid string, payload map[string]any) string {
	t.Helper()

	if payload == nil {
		payload = map[string]any{"uid": uid}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal test payload: %v", err)
	}

	submissionID, _ := auth.GenerateID(16)
	_, err = conn.Exec(`
		INSERT INTO submission (id, uid, received_at, ip, user_agent, payload_json)
		VALUES ($1, $2, $3, '192.0.2.1', 'test-agent', $4)
	`, submissionID, uid, time.Now().UTC().Format(time.RFC3339), string(raw))
	if err != nil {
		t.Fatalf("Failed to create test submission: %v", err)
	}

	return submissionID
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
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
