// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RegisterRequest: uid, user_id, chat_id, username, first_name, last_name
  - ConfirmRequest: uid, token, payload (free-form object)
  - DecisionRequest: uid, action (approve|reject), note, admin_id
  - CreateContestRequest: name

# Response Types

Types for JSON responses:

  - RegisterResponse: token
  - ConfirmResponse: ok, message
  - DecisionResponse: status, participant
  - PendingResponse / ConfirmationsResponse: items
  - CreateContestResponse: contest_id
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Participant: identity, confirmation token, status, decision fields
  - Submission: immutable confirmation payload record
  - Contest: a review round; exactly one is active at a time
  - PendingItem / ConfirmationItem: admin review projections

# Constants

Participant status values:

	StatusRegistered = "registered"
	StatusSubmitted  = "submitted"
	StatusApproved   = "approved"
	StatusRejected   = "rejected"

Decision actions:

	ActionApprove = "approve"
	ActionReject  = "reject"

Status progression: registered → submitted → approved|rejected.
A decided participant never moves back; later submissions are stored
but do not change status.
*/
package models
