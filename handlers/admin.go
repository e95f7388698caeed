// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/uwezert/verify/cliparse"
	"github.com/uwezert/verify/middleware"
	"github.com/uwezert/verify/models"
)

// confirmationsLimit bounds the bot polling endpoint
const confirmationsLimit = 50

type AdminHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAdminHandler(db *sql.DB, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{db: db, cfg: cfg}
}

// Pending handles GET /pending?limit=
// Lists participants of the active contest that have submitted and
// await a decision, newest submission first.
func (h *AdminHandler) Pending(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	items, err := h.pendingItems(limit)
	if err != nil {
		slog.Error("failed to list pending participants", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("pending list served", "count", len(items))
	middleware.JSONResponse(w, http.StatusOK, models.PendingResponse{Items: items})
}

// Confirmations handles GET /confirmations
// The bot polling surface: pending participants together with the
// payload of their latest submission, geo data included.
func (h *AdminHandler) Confirmations(w http.ResponseWriter, r *http.Request) {
	pending, err := h.pendingItems(confirmationsLimit)
	if err != nil {
		slog.Error("failed to list pending participants", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	items := make([]models.ConfirmationItem, 0, len(pending))
	for _, p := range pending {
		item := models.ConfirmationItem{PendingItem: p, SubmissionPayload: map[string]any{}}

		var payloadJSON string
		err := h.db.QueryRow(`
			SELECT payload_json FROM submission
			WHERE uid = $1
			ORDER BY received_at DESC, id DESC
			LIMIT 1
		`, p.UID).Scan(&payloadJSON)

		switch err {
		case nil:
			if err := json.Unmarshal([]byte(payloadJSON), &item.SubmissionPayload); err != nil {
				slog.Warn("could not decode submission payload", "uid", p.UID, "error", err)
			}
		case sql.ErrNoRows:
			// pending without a stored submission should not happen;
			// serve the item with an empty payload anyway
		default:
			slog.Error("failed to load latest submission", "error", err, "uid", p.UID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		items = append(items, item)
	}

	slog.Info("confirmations served", "count", len(items))
	middleware.JSONResponse(w, http.StatusOK, models.ConfirmationsResponse{Items: items})
}

func (h *AdminHandler) pendingItems(limit int) ([]models.PendingItem, error) {
	contestID, err := ActiveContestID(h.db)
	if err == sql.ErrNoRows {
		return []models.PendingItem{}, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := h.db.Query(`
		SELECT p.uid, p.user_id, p.chat_id, p.username, p.first_name, p.last_name,
		       p.created_at,
		       (SELECT s.received_at FROM submission s WHERE s.uid = p.uid ORDER BY s.received_at DESC, s.id DESC LIMIT 1) AS last_received_at
		FROM participant p
		WHERE p.contest_id = $1 AND p.status = 'submitted'
		ORDER BY last_received_at DESC
		LIMIT $2
	`, contestID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.PendingItem{}
	for rows.Next() {
		var item models.PendingItem
		if err := rows.Scan(&item.UID, &item.UserID, &item.ChatID,
			&item.Username, &item.FirstName, &item.LastName,
			&item.CreatedAt, &item.LastReceivedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Decision handles POST /decision
// Approve or reject a participant. Idempotent: the first decision wins
// and repeated calls return the stored outcome.
func (h *AdminHandler) Decision(w http.ResponseWriter, r *http.Request) {
	var req models.DecisionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.UID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "uid is required")
		return
	}
	if req.Action != models.ActionApprove && req.Action != models.ActionReject {
		middleware.ErrorResponse(w, http.StatusBadRequest, "action must be approve or reject")
		return
	}

	adminID := req.AdminID
	if adminID <= 0 {
		adminID = -1
	}
	slog.Info("decision request", "uid", req.UID, "action", req.Action, "admin_id", adminID)

	status := models.StatusApproved
	if req.Action == models.ActionReject {
		status = models.StatusRejected
	}

	var existing sql.NullString
	err := h.db.QueryRow(`
		SELECT decision FROM participant WHERE uid = $1
	`, req.UID).Scan(&existing)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusBadRequest, "unknown_uid")
		return
	}
	if err != nil {
		slog.Error("failed to query participant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// First decision wins
	if existing.Valid && (existing.String == models.StatusApproved || existing.String == models.StatusRejected) {
		status = existing.String
	}

	_, err = h.db.Exec(`
		UPDATE participant
		SET status = $1,
		    decision = $2,
		    decided_at = COALESCE(decided_at, $3),
		    decision_by = COALESCE(decision_by, $4),
		    decision_note = COALESCE(decision_note, $5)
		WHERE uid = $6
	`, status, status, nowISO(), adminID, nullable(req.Note), req.UID)
	if err != nil {
		slog.Error("failed to apply decision", "error", err, "uid", req.UID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to apply decision")
		return
	}

	participant, err := h.getParticipant(req.UID)
	if err != nil {
		slog.Error("failed to load participant", "error", err, "uid", req.UID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("decision applied", "uid", req.UID, "decision", status)
	middleware.JSONResponse(w, http.StatusOK, models.DecisionResponse{
		Status:      "ok",
		Participant: *participant,
	})
}

func (h *AdminHandler) getParticipant(uid string) (*models.Participant, error) {
	var p models.Participant
	err := h.db.QueryRow(`
		SELECT uid, token, user_id, chat_id, username, first_name, last_name,
		       created_at, registered_ip, status, decided_at, decision,
		       decision_by, decision_note, contest_id
		FROM participant WHERE uid = $1
	`, uid).Scan(&p.UID, &p.Token, &p.UserID, &p.ChatID,
		&p.Username, &p.FirstName, &p.LastName,
		&p.CreatedAt, &p.RegisteredIP, &p.Status, &p.DecidedAt, &p.Decision,
		&p.DecisionBy, &p.DecisionNote, &p.ContestID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Reset handles POST /reset
// Wipes all data. Used between contests in manual operation.
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	slog.Info("reset command received")

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM submission`,
		`DELETE FROM participant`,
		`DELETE FROM contest`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			slog.Error("failed to reset table", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit reset", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset")
		return
	}

	slog.Info("database reset completed")
	middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
