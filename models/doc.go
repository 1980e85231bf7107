// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateElectionRequest: title, description, province
  - AddCandidateRequest: candidate_id, label
  - SubmitBallotRequest: preferences ([]string, most preferred first)
  - RegisterStationRequest: province, district
  - CountRequest: candidates, ballots
  - DedupRequest: records, threshold
  - RegisterRecordRequest: one voter roll entry

# Response Types

Types for JSON responses:

  - CreateElectionResponse: election_id, admin_key
  - PublishElectionResponse: share_slug
  - SubmitBallotResponse: ballot_id, message
  - CloseElectionResponse: closed_at, snapshot
  - ElectionResultsResponse: election, candidates, snapshot, ballot_count
  - DedupResponse: threshold, candidates
  - ErrorResponse: error, message

# Domain Types

  - Election: election metadata and lifecycle state
  - Candidate: contestant with label
  - StationInfo: registered polling station
  - CountSnapshot: immutable LPV count with its inputs hash

Count results and person records reuse lpv.Result and dedup.PersonRecord
directly.

# Constants

Status values:

	StatusDraft  = "draft"
	StatusOpen   = "open"
	StatusClosed = "closed"

Counting method:

	MethodLPV = "lpv"
*/
package models
