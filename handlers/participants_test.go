// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/uwezert/verify/geoip"
	"github.com/uwezert/verify/models"
	"github.com/uwezert/verify/testutil"
)

// stubGeo is a GeoResolver returning a fixed location or error
type stubGeo struct {
	loc *geoip.Location
	err error
}

func (s *stubGeo) Lookup(ctx context.Context, ip string) (*geoip.Location, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.loc, nil
}

func failingGeo() *stubGeo {
	return &stubGeo{err: geoip.ErrLocalAddress}
}

func TestRegisterCreatesParticipant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	testutil.CreateTestContest(t, db, "Test Contest", true)
	h := NewParticipantHandler(db, cfg, failingGeo())

	req := testutil.MakeRequest("POST", "/register", models.RegisterRequest{
		UID:      "abc123",
		UserID:   1001,
		ChatID:   1001,
		Username: "jdoe",
	}, nil)
	w := httptest.NewRecorder()
	h.Register(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.RegisterResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Token == "" {
		t.Fatal("Expected a token in the response")
	}

	var status string
	if err := db.QueryRow(`SELECT status FROM participant WHERE uid = 'abc123'`).Scan(&status); err != nil {
		t.Fatalf("participant not stored: %v", err)
	}
	if status != models.StatusRegistered {
		t.Errorf("Expected status registered, got %s", status)
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	testutil.CreateTestContest(t, db, "Test Contest", true)
	h := NewParticipantHandler(db, cfg, failingGeo())

	body := models.RegisterRequest{UID: "abc123", UserID: 1001, ChatID: 1001}

	w1 := httptest.NewRecorder()
	h.Register(w1, testutil.MakeRequest("POST", "/register", body, nil))
	testutil.AssertStatus(t, w1, http.StatusOK)
	var first models.RegisterResponse
	testutil.AssertJSON(t, w1, &first)

	// Second registration returns the same token
	body.Username = "renamed"
	w2 := httptest.NewRecorder()
	h.Register(w2, testutil.MakeRequest("POST", "/register", body, nil))
	testutil.AssertStatus(t, w2, http.StatusOK)
	var second models.RegisterResponse
	testutil.AssertJSON(t, w2, &second)

	if first.Token != second.Token {
		t.Errorf("Token changed on re-registration: %q vs %q", first.Token, second.Token)
	}

	var count int
	db.QueryRow(`SELECT COUNT(*) FROM participant`).Scan(&count)
	if count != 1 {
		t.Errorf("Expected 1 participant, got %d", count)
	}
}

func TestRegisterCreatesDefaultContestWhenNoneActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewParticipantHandler(db, testutil.GetTestConfig(), failingGeo())

	w := httptest.NewRecorder()
	h.Register(w, testutil.MakeRequest("POST", "/register", models.RegisterRequest{
		UID: "abc123", UserID: 1, ChatID: 1,
	}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	if _, err := ActiveContestID(db); err != nil {
		t.Errorf("Expected an active contest after registration: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewParticipantHandler(db, testutil.GetTestConfig(), failingGeo())

	tests := []struct {
		name string
		body models.RegisterRequest
	}{
		{"short uid", models.RegisterRequest{UID: "abc", UserID: 1, ChatID: 1}},
		{"missing user_id", models.RegisterRequest{UID: "abc123", ChatID: 1}},
		{"missing chat_id", models.RegisterRequest{UID: "abc123", UserID: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Register(w, testutil.MakeRequest("POST", "/register", tt.body, nil))
			testutil.AssertStatus(t, w, http.StatusBadRequest)
		})
	}
}

func TestConfirmStoresSubmission(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	contestID := testutil.CreateTestContest(t, db, "Test Contest", true)
	token := testutil.CreateTestParticipant(t, db, contestID, "abc123", models.StatusRegistered)

	geo := &stubGeo{loc: &geoip.Location{Query: "1.2.3.4", Country: "France", City: "Paris"}}
	h := NewParticipantHandler(db, cfg, geo)

	w := httptest.NewRecorder()
	h.Confirm(w, testutil.MakeRequest("POST", "/confirm", models.ConfirmRequest{
		UID:   "abc123",
		Token: token,
		Payload: map[string]any{
			"timezone": "Europe/Paris",
		},
	}, nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.ConfirmResponse
	testutil.AssertJSON(t, w, &resp)
	if !resp.OK || resp.Message != "saved" {
		t.Errorf("Unexpected response: %+v", resp)
	}

	var payloadJSON, status string
	if err := db.QueryRow(`SELECT payload_json FROM submission WHERE uid = 'abc123'`).Scan(&payloadJSON); err != nil {
		t.Fatalf("submission not stored: %v", err)
	}
	db.QueryRow(`SELECT status FROM participant WHERE uid = 'abc123'`).Scan(&status)
	if status != models.StatusSubmitted {
		t.Errorf("Expected status submitted, got %s", status)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
		t.Fatalf("stored payload is not JSON: %v", err)
	}
	if payload["uid"] != "abc123" {
		t.Errorf("Payload uid = %v, want abc123", payload["uid"])
	}
	if payload["timezone"] != "Europe/Paris" {
		t.Errorf("Client payload fields must be preserved, got %v", payload["timezone"])
	}
	if _, ok := payload["received_at"]; !ok {
		t.Error("Payload should carry a received_at default")
	}
	loc, ok := payload["ip_resolved_location"].(map[string]any)
	if !ok {
		t.Fatalf("Expected ip_resolved_location in payload, got %v", payload["ip_resolved_location"])
	}
	if loc["city"] != "Paris" || loc["country"] != "France" {
		t.Errorf("Unexpected resolved location: %v", loc)
	}
}

func TestConfirmGeoFailureStillStores(t *testing.T) {
	db := testutil.SetupTestDB(t)
	contestID := testutil.CreateTestContest(t, db, "Test Contest", true)
	token := testutil.CreateTestParticipant(t, db, contestID, "abc123", models.StatusRegistered)
	h := NewParticipantHandler(db, testutil.GetTestConfig(), &stubGeo{err: errors.New("provider down")})

	w := httptest.NewRecorder()
	h.Confirm(w, testutil.MakeRequest("POST", "/confirm", models.ConfirmRequest{
		UID: "abc123", Token: token,
	}, nil))

	testutil.AssertStatus(t, w, http.StatusOK)

	var payloadJSON string
	if err := db.QueryRow(`SELECT payload_json FROM submission WHERE uid = 'abc123'`).Scan(&payloadJSON); err != nil {
		t.Fatalf("submission not stored despite geo failure: %v", err)
	}
	var payload map[string]any
	json.Unmarshal([]byte(payloadJSON), &payload)
	if _, ok := payload["ip_resolved_location"]; ok {
		t.Error("Failed lookup must not add a location to the payload")
	}
}

func TestConfirmRejectsUnknownUIDAndBadToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	contestID := testutil.CreateTestContest(t, db, "Test Contest", true)
	testutil.CreateTestParticipant(t, db, contestID, "abc123", models.StatusRegistered)
	h := NewParticipantHandler(db, testutil.GetTestConfig(), failingGeo())

	tests := []struct {
		name      string
		body      models.ConfirmRequest
		wantError string
	}{
		{"unknown uid", models.ConfirmRequest{UID: "nope99", Token: "whatever"}, "unknown_uid"},
		{"bad token", models.ConfirmRequest{UID: "abc123", Token: "wrong-token"}, "bad_token"},
		{"missing token", models.ConfirmRequest{UID: "abc123"}, ""},
		{"missing uid", models.ConfirmRequest{Token: "whatever"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Confirm(w, testutil.MakeRequest("POST", "/confirm", tt.body, nil))
			testutil.AssertStatus(t, w, http.StatusBadRequest)
			if tt.wantError != "" {
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Message != tt.wantError {
					t.Errorf("Expected error %q, got %q", tt.wantError, resp.Message)
				}
			}
		})
	}

	var count int
	db.QueryRow(`SELECT COUNT(*) FROM submission`).Scan(&count)
	if count != 0 {
		t.Errorf("Rejected confirmations must not store submissions, got %d", count)
	}
}

func TestConfirmKeepsDecidedStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	contestID := testutil.CreateTestContest(t, db, "Test Contest", true)
	token := testutil.CreateTestParticipant(t, db, contestID, "abc123", models.StatusApproved)
	h := NewParticipantHandler(db, testutil.GetTestConfig(), failingGeo())

	w := httptest.NewRecorder()
	h.Confirm(w, testutil.MakeRequest("POST", "/confirm", models.ConfirmRequest{
		UID: "abc123", Token: token,
	}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var status string
	var count int
	db.QueryRow(`SELECT status FROM participant WHERE uid = 'abc123'`).Scan(&status)
	db.QueryRow(`SELECT COUNT(*) FROM submission WHERE uid = 'abc123'`).Scan(&count)
	if status != models.StatusApproved {
		t.Errorf("Decided status must be kept, got %s", status)
	}
	if count != 1 {
		t.Errorf("Late submissions are still stored, got %d", count)
	}
}

func TestConfirmRepeatSubmissions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	contestID := testutil.CreateTestContest(t, db, "Test Contest", true)
	token := testutil.CreateTestParticipant(t, db, contestID, "abc123", models.StatusRegistered)
	h := NewParticipantHandler(db, testutil.GetTestConfig(), failingGeo())

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		h.Confirm(w, testutil.MakeRequest("POST", "/confirm", models.ConfirmRequest{
			UID: "abc123", Token: token,
		}, nil))
		testutil.AssertStatus(t, w, http.StatusOK)
	}

	var count int
	db.QueryRow(`SELECT COUNT(*) FROM submission WHERE uid = 'abc123'`).Scan(&count)
	if count != 3 {
		t.Errorf("Each confirmation stores a submission, got %d", count)
	}
}
