// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/uwezert/verify/auth"
	"github.com/uwezert/verify/cliparse"
	"github.com/uwezert/verify/middleware"
	"github.com/uwezert/verify/models"
)

type ContestHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewContestHandler(db *sql.DB, cfg cliparse.Config) *ContestHandler {
	return &ContestHandler{db: db, cfg: cfg}
}

// ActiveContestID returns the id of the active contest, or sql.ErrNoRows
// when none exists.
func ActiveContestID(db *sql.DB) (string, error) {
	var id string
	err := db.QueryRow(`
		SELECT id FROM contest WHERE is_active = TRUE LIMIT 1
	`).Scan(&id)
	return id, err
}

// EnsureDefaultContest creates and activates a default contest when no
// active one exists. Called at startup and as a registration fallback.
func EnsureDefaultContest(db *sql.DB) (string, error) {
	if id, err := ActiveContestID(db); err == nil {
		return id, nil
	} else if err != sql.ErrNoRows {
		return "", err
	}
	return createContest(db, "Default Contest")
}

func createContest(db *sql.DB, name string) (string, error) {
	id, err := auth.GenerateID(8)
	if err != nil {
		return "", err
	}

	tx, err := db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	// Exactly one active contest at a time
	if _, err := tx.Exec(`UPDATE contest SET is_active = FALSE WHERE is_active = TRUE`); err != nil {
		return "", err
	}
	if _, err := tx.Exec(`
		INSERT INTO contest (id, name, created_at, is_active)
		VALUES ($1, $2, $3, TRUE)
	`, id, name, nowISO()); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// Create handles POST /contests
// Creates a new contest and makes it the active one.
func (h *ContestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateContestRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := req.Name
	if name == "" {
		name = "Contest_" + nowISO()
	}

	id, err := createContest(h.db, name)
	if err != nil {
		slog.Error("failed to create contest", "error", err, "name", name)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create contest")
		return
	}

	slog.Info("contest created and activated", "contest_id", id, "name", name)
	middleware.JSONResponse(w, http.StatusCreated, models.CreateContestResponse{ContestID: id})
}

// List handles GET /contests
func (h *ContestHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT id, name, created_at, is_active FROM contest
		ORDER BY created_at DESC
	`)
	if err != nil {
		slog.Error("failed to list contests", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	contests := []models.Contest{}
	for rows.Next() {
		var c models.Contest
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.IsActive); err != nil {
			slog.Error("failed to scan contest", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		contests = append(contests, c)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate contests", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ContestListResponse{Contests: contests})
}
