// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Timestamps are stored as ISO-8601 TEXT and ids as random hex TEXT so
// the same schema runs on both sqlite and postgres.
const schema = `
-- Contests (review rounds; exactly one active at a time)
CREATE TABLE IF NOT EXISTS contest (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    created_at TEXT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_contest_is_active ON contest(is_active);

-- Participants
CREATE TABLE IF NOT EXISTS participant (
    uid TEXT PRIMARY KEY,
    token TEXT NOT NULL UNIQUE,
    user_id BIGINT NOT NULL,
    chat_id BIGINT NOT NULL,
    username TEXT,
    first_name TEXT,
    last_name TEXT,
    created_at TEXT NOT NULL,
    registered_ip TEXT,
    status TEXT NOT NULL DEFAULT 'registered' CHECK (status IN ('registered', 'submitted', 'approved', 'rejected')),
    decided_at TEXT,
    decision TEXT,
    decision_by BIGINT,
    decision_note TEXT,
    contest_id TEXT NOT NULL REFERENCES contest(id)
);

CREATE INDEX IF NOT EXISTS idx_participant_status ON participant(status);
CREATE INDEX IF NOT EXISTS idx_participant_contest_id ON participant(contest_id);
CREATE INDEX IF NOT EXISTS idx_participant_status_contest ON participant(status, contest_id);

-- Submissions (immutable, one per confirmation call)
CREATE TABLE IF NOT EXISTS submission (
    id TEXT PRIMARY KEY,
    uid TEXT NOT NULL REFERENCES participant(uid) ON DELETE CASCADE,
    received_at TEXT NOT NULL,
    ip TEXT,
    user_agent TEXT,
    payload_json TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_submission_uid ON submission(uid);
`
