// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/uwezert/verify/cliparse"
	"github.com/uwezert/verify/handlers"
	"github.com/uwezert/verify/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, geo handlers.GeoResolver) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	participantHandler := handlers.NewParticipantHandler(db, cfg, geo)
	adminHandler := handlers.NewAdminHandler(db, cfg)
	contestHandler := handlers.NewContestHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Public surface (called by the confirmation page)
	mux.HandleFunc("POST /register", middleware.WithLogging(participantHandler.Register))
	mux.HandleFunc("POST /confirm", middleware.WithLogging(participantHandler.Confirm))

	// Admin surface (bot polling and decisions, requires X-API-Key)
	key := cfg.BackendAPIKey
	mux.HandleFunc("GET /pending", middleware.WithLogging(middleware.RequireAPIKey(key, adminHandler.Pending)))
	mux.HandleFunc("GET /confirmations", middleware.WithLogging(middleware.RequireAPIKey(key, adminHandler.Confirmations)))
	mux.HandleFunc("POST /decision", middleware.WithLogging(middleware.RequireAPIKey(key, adminHandler.Decision)))
	mux.HandleFunc("POST /reset", middleware.WithLogging(middleware.RequireAPIKey(key, adminHandler.Reset)))
	mux.HandleFunc("POST /contests", middleware.WithLogging(middleware.RequireAPIKey(key, contestHandler.Create)))
	mux.HandleFunc("GET /contests", middleware.WithLogging(middleware.RequireAPIKey(key, contestHandler.List)))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("uwezert-verify API v1"))
	})

	return mux
}
