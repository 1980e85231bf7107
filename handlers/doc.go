// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the countroll API.

# Handler Types

Each handler is a struct holding the dependencies it needs:

  - ElectionHandler: Election lifecycle (create, candidates, publish, close)
  - BallotHandler: Ballot submission
  - ResultsHandler: Election info and sealed results
  - StationHandler: Polling station registration and history
  - CountHandler: Stateless LPV counts
  - DedupHandler: Stateless duplicate search
  - RecordHandler: Stored voter roll and its duplicate search

Handlers are created via constructor functions:

	electionHandler := handlers.NewElectionHandler(db, cfg, m)

A nil *metrics.Metrics is accepted everywhere and records nothing.

# Election Lifecycle

Elections progress through three states: draft → open → closed

	POST /elections                 → CreateElection (returns admin_key)
	POST /elections/{id}/candidates → AddCandidate (draft only)
	POST /elections/{id}/publish    → PublishElection (needs 2 candidates)
	POST /elections/{id}/close      → CloseElection (stores the count snapshot)

Admin operations are guarded by middleware.RequireAdminKey in the router.

# Counting

CloseElection loads the election's candidates and stored ballots inside the
closing transaction and runs lpv.RunCount over them, so a ballot is either
in the snapshot or refused with 409. The snapshot's inputs_hash is
auth.InputsHash over the counted ballot IDs.

# Ballots

Ballots are ranked candidate IDs, most preferred first. Unknown or repeated
IDs and empty ballots are rejected. An optional X-Station-Code header
attaches the ballot to a registered station.

# Duplicate Search

NewFinder builds the shared dedup.Finder from Config. POST /dedup scores
posted records; GET /records/duplicates scores stored ones, optionally
filtered by province (UNKNOWN selects records without one).
*/
package handlers
