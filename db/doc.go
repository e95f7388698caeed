// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

The schema includes:

  - contest: Review rounds; exactly one is active at a time
  - participant: Registered identities, confirmation tokens, status
  - submission: Immutable confirmation payload records

# Relationships

	contest 1──* participant
	participant 1──* submission

Submissions cascade on participant deletion.

# Portability

The same schema text runs on both supported drivers (sqlite default,
postgres optional): ids are random hex TEXT, timestamps are ISO-8601
TEXT, and there are no database-generated defaults beyond literals.
Queries throughout the codebase use $N placeholders in ascending
first-occurrence order, which both drivers bind positionally.

# Indexes

Performance indexes on:

  - contest.is_active
  - participant.status
  - participant.contest_id
  - participant.(status, contest_id)
  - submission.uid
*/
package db
