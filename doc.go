// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the UWEZert verification
backend.

The backend records contest participation: a messaging-bot flow
registers a participant and hands them a confirmation link, the linked
page confirms through this API, and an admin reviews and decides each
submission. Submissions are enriched server-side with geo-IP data
resolved from the client address.

# Starting the Server

The server reads configuration from flags, a .env file, or environment
variables:

	BACKEND_API_KEY=... go run .

Or with flags:

	go run . -p 8000 -d data/app.db

# Configuration

Optional settings:

  - PORT (-p): Server port (default: 8000)
  - DATABASE_URL (-d): SQLite path (default: data/app.db) or postgres URL
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - BACKEND_API_KEY (-api-key): Admin key; admin routes answer 500 until set
  - CORS_ORIGINS (-cors-origins): Allowed page origins (default: *)
  - GEO_PROVIDER_URL (-geo-url): Geo-IP provider base

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (participants, admin, contests)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, API-key guard, JSON helpers
  - models: Request/response types
  - auth: Token generation and key validation
  - db: Schema creation
  - cliparse: Configuration parsing
  - geoip: Geo-IP provider client
  - flow: Client-side confirmation flow (used by cmd/confirm)

See package documentation for each component.
*/
package main
