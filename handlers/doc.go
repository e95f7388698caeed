// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the verification API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - ParticipantHandler: Registration and confirmation submission
  - AdminHandler: Pending review, decisions, reset
  - ContestHandler: Contest lifecycle

Handlers are created via constructor functions that accept *sql.DB and
Config. The participant handler additionally takes a GeoResolver so
tests can stub the geo-IP provider:

	participantHandler := handlers.NewParticipantHandler(db, cfg, geoClient)

# Participant Lifecycle

Participants progress through four states:

	registered → submitted → approved|rejected

	POST /register → Register (returns confirmation token, idempotent)
	POST /confirm  → Confirm  (stores submission, advances to submitted)

A decided participant never changes status again; later submissions are
still stored for the record.

# Server-Side Enrichment

Confirm resolves the client IP against the geo provider and nests the
result under "ip_resolved_location" in the stored payload. Lookup
failures are logged and swallowed: the submission is stored without
location data.

# Admin Review

Admin operations require the X-API-Key header:

	GET  /pending?limit=  → Pending (awaiting decision, active contest)
	GET  /confirmations   → Confirmations (pending + latest payloads)
	POST /decision        → Decision (approve|reject, first decision wins)
	POST /contests        → Create contest (activates it)
	GET  /contests        → List contests
	POST /reset           → Wipe all data

# Error Vocabulary

Validation failures answer 400 with the original wire codes the bot
understands: "unknown_uid", "bad_token".
*/
package handlers
