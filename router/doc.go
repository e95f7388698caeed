// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the verification API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, geoClient)

# Endpoints

Health:

	GET /health

Public (called by the confirmation page):

	POST /register - Register participant, returns confirmation token
	POST /confirm  - Store confirmation submission

Admin (bot polling and decisions, requires X-API-Key):

	GET  /pending        - Participants awaiting decision
	GET  /confirmations  - Pending participants + latest payloads
	POST /decision       - Approve or reject a participant
	POST /contests       - Create and activate a contest
	GET  /contests       - List contests
	POST /reset          - Wipe all data

# Handler Initialization

The router creates handler instances with dependency injection:

	participantHandler := handlers.NewParticipantHandler(db, cfg, geo)
	adminHandler := handlers.NewAdminHandler(db, cfg)
	contestHandler := handlers.NewContestHandler(db, cfg)

CORS is applied at the server level around the whole mux, since the
static page origin applies to every route.
*/
package router
