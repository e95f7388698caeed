// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/uwezert/verify/auth"
	"github.com/uwezert/verify/cliparse"
	"github.com/uwezert/verify/geoip"
	"github.com/uwezert/verify/middleware"
	"github.com/uwezert/verify/models"
)

// GeoResolver resolves a client IP to a location. Errors are always
// non-fatal to confirmation handling.
type GeoResolver interface {
	Lookup(ctx context.Context, ip string) (*geoip.Location, error)
}

type ParticipantHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	geo GeoResolver
}

func NewParticipantHandler(db *sql.DB, cfg cliparse.Config, geo GeoResolver) *ParticipantHandler {
	return &ParticipantHandler{db: db, cfg: cfg, geo: geo}
}

// nowISO returns the current UTC time as an ISO-8601 string, the
// timestamp format stored throughout the schema.
func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Register handles POST /register
// Idempotent per uid: an already registered participant gets their
// existing confirmation token back.
func (h *ParticipantHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if len(req.UID) < 6 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "uid must be at least 6 characters")
		return
	}
	if req.UserID == 0 || req.ChatID == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id and chat_id are required")
		return
	}

	ip := middleware.GetClientIP(r)
	slog.Info("registration request", "uid", req.UID, "ip", ip)

	// Existing participant keeps their token
	var token string
	err := h.db.QueryRow(`
		SELECT token FROM participant WHERE uid = $1
	`, req.UID).Scan(&token)

	if err == nil {
		middleware.JSONResponse(w, http.StatusOK, models.RegisterResponse{Token: token})
		return
	}
	if err != sql.ErrNoRows {
		slog.Error("failed to query participant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	contestID, err := ActiveContestID(h.db)
	if err == sql.ErrNoRows {
		contestID, err = EnsureDefaultContest(h.db)
	}
	if err != nil {
		slog.Error("failed to resolve active contest", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	token, err = auth.GenerateToken()
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	// A concurrent register for the same uid keeps the first row's
	// identity fields fresh but never replaces the stored token.
	_, err = h.db.Exec(`
		INSERT INTO participant (
			uid, token, user_id, chat_id, username, first_name, last_name,
			created_at, registered_ip, status, contest_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT(uid) DO UPDATE SET
			user_id=excluded.user_id,
			chat_id=excluded.chat_id,
			username=excluded.username,
			first_name=excluded.first_name,
			last_name=excluded.last_name
	`, req.UID, token, req.UserID, req.ChatID,
		nullable(req.Username), nullable(req.FirstName), nullable(req.LastName),
		nowISO(), ip, models.StatusRegistered, contestID)

	if err != nil {
		slog.Error("failed to insert participant", "error", err, "uid", req.UID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	// Read back so the caller always receives the stored token
	if err := h.db.QueryRow(`
		SELECT token FROM participant WHERE uid = $1
	`, req.UID).Scan(&token); err != nil {
		slog.Error("failed to read back token", "error", err, "uid", req.UID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	slog.Info("registration successful", "uid", req.UID)
	middleware.JSONResponse(w, http.StatusOK, models.RegisterResponse{Token: token})
}

// Confirm handles POST /confirm
// Stores an immutable submission, enriched server-side with the
// location resolved from the client IP. Enrichment is best effort:
// lookup failures only reduce payload fidelity.
func (h *ParticipantHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req models.ConfirmRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.UID == "" || req.Token == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "uid and token are required")
		return
	}

	ip := middleware.GetClientIP(r)
	userAgent := r.UserAgent()
	slog.Info("confirmation request", "uid", req.UID, "ip", ip)

	var storedToken, status string
	err := h.db.QueryRow(`
		SELECT token, status FROM participant WHERE uid = $1
	`, req.UID).Scan(&storedToken, &status)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusBadRequest, "unknown_uid")
		return
	}
	if err != nil {
		slog.Error("failed to query participant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !auth.TokensEqual(req.Token, storedToken) {
		slog.Warn("confirmation with bad token", "uid", req.UID)
		middleware.ErrorResponse(w, http.StatusBadRequest, "bad_token")
		return
	}

	payload := req.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	if _, ok := payload["uid"]; !ok {
		payload["uid"] = req.UID
	}
	receivedAt := nowISO()
	if _, ok := payload["received_at"]; !ok {
		payload["received_at"] = receivedAt
	}

	if loc, err := h.geo.Lookup(r.Context(), ip); err != nil {
		slog.Warn("geo lookup failed", "uid", req.UID, "ip", ip, "error", err)
	} else {
		payload["ip_resolved_location"] = loc.AsPayload()
		slog.Info("geo data resolved", "uid", req.UID, "city", loc.City, "country", loc.Country)
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal payload", "error", err, "uid", req.UID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store submission")
		return
	}

	submissionID, _ := auth.GenerateID(16)

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO submission (id, uid, received_at, ip, user_agent, payload_json)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, submissionID, req.UID, receivedAt, ip, userAgent, string(payloadJSON))
	if err != nil {
		slog.Error("failed to insert submission", "error", err, "uid", req.UID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store submission")
		return
	}

	// Decided participants keep their status; later submissions are
	// still stored.
	_, err = tx.Exec(`
		UPDATE participant
		SET status = CASE
			WHEN status IN ('approved', 'rejected') THEN status
			ELSE 'submitted'
		END
		WHERE uid = $1
	`, req.UID)
	if err != nil {
		slog.Error("failed to update participant status", "error", err, "uid", req.UID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store submission")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store submission")
		return
	}

	slog.Info("confirmation stored", "uid", req.UID, "submission_id", submissionID)
	middleware.JSONResponse(w, http.StatusOK, models.ConfirmResponse{OK: true, Message: "saved"})
}

// nullable maps "" to NULL for optional text columns
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
