// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Connecting

Open selects the driver from the configured database type:

	conn, err := db.Open("postgres", "postgres://...")
	conn, err := db.Open("sqlite", "file:countroll.db")

The postgres driver is github.com/lib/pq and the sqlite driver is the
cgo-free modernc.org/sqlite. In-memory sqlite URLs are limited to a single
connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

The schema includes:

  - election: Election metadata and lifecycle state
  - candidate: Contestants per election
  - station: Registered polling stations
  - ballot: Ranked preferences (JSON array) per ballot
  - count_snapshot: Immutable LPV count results
  - person_record: Voter roll entries checked for duplicates

# Relationships

	election 1──* candidate
	election 1──* ballot
	station  1──* ballot
	election 1──* count_snapshot

Deleting an election cascades; deleting a station keeps its ballots.
*/
package db
