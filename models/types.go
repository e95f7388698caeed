// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Participant status constants
const (
	StatusRegistered = "registered"
	StatusSubmitted  = "submitted"
	StatusApproved   = "approved"
	StatusRejected   = "rejected"
)

// Decision action constants
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Request types

type RegisterRequest struct {
	UID       string `json:"uid"`
	UserID    int64  `json:"user_id"`
	ChatID    int64  `json:"chat_id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Payload is stored verbatim as the submission body; the server only
// adds defaults (uid, received_at) and the resolved location.
type ConfirmRequest struct {
	UID     string         `json:"uid"`
	Token   string         `json:"token"`
	Payload map[string]any `json:"payload"`
}

type DecisionRequest struct {
	UID     string `json:"uid"`
	Action  string `json:"action"`
	Note    string `json:"note,omitempty"`
	AdminID int64  `json:"admin_id,omitempty"`
}

type CreateContestRequest struct {
	Name string `json:"name"`
}

// Response types

type RegisterResponse struct {
	Token string `json:"token"`
}

type ConfirmResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

type DecisionResponse struct {
	Status      string      `json:"status"`
	Participant Participant `json:"participant"`
}

type PendingResponse struct {
	Items []PendingItem `json:"items"`
}

type ConfirmationsResponse struct {
	Items []ConfirmationItem `json:"items"`
}

type CreateContestResponse struct {
	ContestID string `json:"contest_id"`
}

type ContestListResponse struct {
	Contests []Contest `json:"contests"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Domain types

type Participant struct {
	UID          string  `json:"uid"`
	Token        string  `json:"-"` // Never expose in JSON
	UserID       int64   `json:"user_id"`
	ChatID       int64   `json:"chat_id"`
	Username     *string `json:"username,omitempty"`
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	CreatedAt    string  `json:"created_at"`
	RegisteredIP *string `json:"-"` // Never expose in JSON
	Status       string  `json:"status"`
	DecidedAt    *string `json:"decided_at,omitempty"`
	Decision     *string `json:"decision,omitempty"`
	DecisionBy   *int64  `json:"decision_by,omitempty"`
	DecisionNote *string `json:"decision_note,omitempty"`
	ContestID    string  `json:"contest_id"`
}

type Submission struct {
	ID         string         `json:"id"`
	UID        string         `json:"uid"`
	ReceivedAt string         `json:"received_at"`
	IP         *string        `json:"-"` // Never expose in JSON
	UserAgent  *string        `json:"-"` // Never expose in JSON
	Payload    map[string]any `json:"payload"`
}

type Contest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	IsActive  bool   `json:"is_active"`
}

// PendingItem is one participant awaiting an admin decision.
type PendingItem struct {
	UID            string  `json:"uid"`
	UserID         int64   `json:"user_id"`
	ChatID         int64   `json:"chat_id"`
	Username       *string `json:"username,omitempty"`
	FirstName      *string `json:"first_name,omitempty"`
	LastName       *string `json:"last_name,omitempty"`
	CreatedAt      string  `json:"created_at"`
	LastReceivedAt *string `json:"last_received_at,omitempty"`
}

// ConfirmationItem is a pending participant together with the payload of
// their latest submission, as polled by the admin bot.
type ConfirmationItem struct {
	PendingItem
	SubmissionPayload map[string]any `json:"submission_payload"`
}
