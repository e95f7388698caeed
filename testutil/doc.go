// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package testutil provides shared helpers for handler and router
// tests: an in-memory database with the full schema, fixture builders
// for contests, participants, and submissions, and small HTTP
// assertion helpers.
package testutil
