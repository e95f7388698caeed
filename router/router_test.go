// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/uwezert/verify/cliparse"
	"github.com/uwezert/verify/flow"
	"github.com/uwezert/verify/geoip"
	"github.com/uwezert/verify/models"
	"github.com/uwezert/verify/testutil"
)

func newTestRouter(t *testing.T, cfg cliparse.Config) (*http.ServeMux, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.CreateTestContest(t, db, "Router Round", true)
	geo := geoip.NewClient("http://127.0.0.1:0") // lookups fail, which is fine
	return NewRouter(db, cfg, geo), db
}

func TestHealthEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t, testutil.GetTestConfig())

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/health", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	if w.Body.String() != "OK" {
		t.Errorf("Expected OK body, got %q", w.Body.String())
	}
}

func TestRootBanner(t *testing.T) {
	mux, _ := newTestRouter(t, testutil.GetTestConfig())

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	if w.Body.String() != "uwezert-verify API v1" {
		t.Errorf("Unexpected banner: %q", w.Body.String())
	}
}

func TestPublicRoutesMethodDispatch(t *testing.T) {
	mux, _ := newTestRouter(t, testutil.GetTestConfig())

	// Wrong method on a registered pattern is rejected by the mux
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/register", nil, nil))
	testutil.AssertStatus(t, w, http.StatusMethodNotAllowed)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/confirm", nil, nil))
	testutil.AssertStatus(t, w, http.StatusMethodNotAllowed)
}

func TestAdminRoutesRequireAPIKey(t *testing.T) {
	cfg := testutil.GetTestConfig()
	mux, _ := newTestRouter(t, cfg)

	adminRoutes := []struct {
		method, path string
	}{
		{"GET", "/pending"},
		{"GET", "/confirmations"},
		{"POST", "/decision"},
		{"POST", "/reset"},
		{"POST", "/contests"},
		{"GET", "/contests"},
	}

	for _, route := range adminRoutes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			// No key
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, testutil.MakeRequest(route.method, route.path, nil, nil))
			testutil.AssertStatus(t, w, http.StatusUnauthorized)

			// Wrong key
			w = httptest.NewRecorder()
			mux.ServeHTTP(w, testutil.MakeRequest(route.method, route.path, nil,
				map[string]string{"X-API-Key": "wrong"}))
			testutil.AssertStatus(t, w, http.StatusUnauthorized)
		})
	}

	// Correct key reaches the handler
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/pending", nil,
		map[string]string{"X-API-Key": testutil.TestAPIKey}))
	testutil.AssertStatus(t, w, http.StatusOK)
}

func TestAdminRoutesWithoutConfiguredKey(t *testing.T) {
	cfg := testutil.GetTestConfig()
	cfg.BackendAPIKey = ""
	mux, _ := newTestRouter(t, cfg)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/pending", nil,
		map[string]string{"X-API-Key": "anything"}))
	testutil.AssertStatus(t, w, http.StatusInternalServerError)
}

// TestFlowClientAgainstRouter runs the terminal confirmation client
// against a live instance of the API: register over HTTP, then run the
// confirmation flow with the issued token.
func TestFlowClientAgainstRouter(t *testing.T) {
	mux, db := newTestRouter(t, testutil.GetTestConfig())
	server := httptest.NewServer(mux)
	defer server.Close()

	// Register first to obtain a token
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/register", models.RegisterRequest{
		UID: "e2e001", UserID: 7001, ChatID: 7001,
	}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var reg models.RegisterResponse
	testutil.AssertJSON(t, w, &reg)

	f, err := flow.New("https://page.example/c?uid=e2e001&token="+reg.Token, flow.Config{
		EndpointBase: server.URL,
	})
	if err != nil {
		t.Fatalf("flow.New() error = %v", err)
	}
	if err := f.Run(context.Background(), nil); err != nil {
		t.Fatalf("flow.Run() error = %v", err)
	}

	var count int
	db.QueryRow(`SELECT COUNT(*) FROM submission WHERE uid = 'e2e001'`).Scan(&count)
	if count != 1 {
		t.Errorf("Expected 1 stored submission, got %d", count)
	}

	// A flow with a stale token is rejected by the server
	f2, err := flow.New("https://page.example/c?uid=e2e001&token=stale", flow.Config{
		EndpointBase: server.URL,
	})
	if err != nil {
		t.Fatalf("flow.New() error = %v", err)
	}
	if err := f2.Run(context.Background(), nil); err == nil {
		t.Fatal("flow.Run() with a bad token should fail")
	}
}
