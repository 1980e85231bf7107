// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/countroll/lpv"
	"github.com/danielhkuo/countroll/metrics"
	"github.com/danielhkuo/countroll/middleware"
	"github.com/danielhkuo/countroll/models"
	"github.com/dustin/go-humanize"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// storedCount is an LPV count over the ballots stored for an election
type storedCount struct {
	Result    lpv.Result
	BallotIDs []string
}

// computeCount runs an LPV count over every ballot stored for an election.
// Pass the closing transaction as q so the count and the status change see
// the same ballots.
func computeCount(q querier, electionID string) (storedCount, error) {
	candidates, err := getCandidateIDs(q, electionID)
	if err != nil {
		return storedCount{}, fmt.Errorf("failed to get candidates: %w", err)
	}

	ballotIDs, ballots, err := getBallots(q, electionID)
	if err != nil {
		return storedCount{}, fmt.Errorf("failed to get ballots: %w", err)
	}

	result, err := lpv.RunCount(candidates, ballots)
	if err != nil {
		return storedCount{}, err
	}

	return storedCount{Result: result, BallotIDs: ballotIDs}, nil
}

// getCandidateIDs returns an election's candidate IDs in byte order
func getCandidateIDs(q querier, electionID string) ([]lpv.CandidateID, error) {
	rows, err := q.Query(`
		SELECT candidate_id FROM candidate WHERE election_id = $1 ORDER BY candidate_id
	`, electionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []lpv.CandidateID{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// getBallots returns the stored ballots of an election in submission order
func getBallots(q querier, electionID string) ([]string, []lpv.Ballot, error) {
	rows, err := q.Query(`
		SELECT id, station_id, preferences
		FROM ballot
		WHERE election_id = $1
		ORDER BY submitted_at, id
	`, electionID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var ids []string
	var ballots []lpv.Ballot
	for rows.Next() {
		var id, prefsJSON string
		var stationID sql.NullString
		if err := rows.Scan(&id, &stationID, &prefsJSON); err != nil {
			return nil, nil, err
		}

		var prefs []lpv.CandidateID
		if err := json.Unmarshal([]byte(prefsJSON), &prefs); err != nil {
			return nil, nil, fmt.Errorf("ballot %s: bad preferences: %w", id, err)
		}

		ids = append(ids, id)
		ballots = append(ballots, lpv.Ballot{StationID: stationID.String, Preferences: prefs})
	}

	return ids, ballots, rows.Err()
}

type CountHandler struct {
	metrics *metrics.Metrics
}

func NewCountHandler(m *metrics.Metrics) *CountHandler {
	return &CountHandler{metrics: m}
}

// Count handles POST /count
// Runs an LPV count over the posted candidates and ballots without storing anything
func (h *CountHandler) Count(w http.ResponseWriter, r *http.Request) {
	var req models.CountRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, err := lpv.RunCount(req.Candidates, req.Ballots)
	if errors.Is(err, lpv.ErrDuplicateCandidate) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("count failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Count failed")
		return
	}

	h.metrics.ObserveCount("adhoc", result.TotalRounds(), len(req.Ballots))
	slog.Info("ad hoc count run",
		"candidates", len(req.Candidates),
		"ballots", humanize.Comma(int64(len(req.Ballots))),
		"rounds", result.TotalRounds(),
	)

	middleware.JSONResponse(w, http.StatusOK, result)
}
