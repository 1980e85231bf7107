// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/countroll/auth"
	"github.com/danielhkuo/countroll/cliparse"
	"github.com/danielhkuo/countroll/metrics"
	"github.com/danielhkuo/countroll/middleware"
	"github.com/danielhkuo/countroll/models"
	"github.com/google/uuid"
)

type BallotHandler struct {
	db      *sql.DB
	cfg     cliparse.Config
	metrics *metrics.Metrics
}

func NewBallotHandler(db *sql.DB, cfg cliparse.Config, m *metrics.Metrics) *BallotHandler {
	return &BallotHandler{db: db, cfg: cfg, metrics: m}
}

// SubmitBallot handles POST /elections/{slug}/ballots
// An optional X-Station-Code header records which polling station cast the ballot
func (h *BallotHandler) SubmitBallot(w http.ResponseWriter, r *http.Request) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	var req models.SubmitBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if len(req.Preferences) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "preferences cannot be empty")
		return
	}

	var electionID, status string
	err := h.db.QueryRow(`
		SELECT id, status FROM election WHERE share_slug = $1
	`, shareSlug).Scan(&electionID, &status)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if status != models.StatusOpen {
		middleware.ErrorResponse(w, http.StatusConflict, "Election is not open for voting")
		return
	}

	candidateIDs, err := getCandidateIDs(h.db, electionID)
	if err != nil {
		slog.Error("failed to query candidates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	valid := make(map[string]bool, len(candidateIDs))
	for _, id := range candidateIDs {
		valid[id] = true
	}

	// Stored ballots are kept clean even though the count tolerates bad entries
	seen := make(map[string]bool, len(req.Preferences))
	for _, id := range req.Preferences {
		if !valid[id] {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid candidate_id: "+id)
			return
		}
		if seen[id] {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Candidate ranked twice: "+id)
			return
		}
		seen[id] = true
	}

	var stationID *string
	if code := r.Header.Get("X-Station-Code"); code != "" {
		id, err := touchStation(h.db, code)
		if err == sql.ErrNoRows {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown polling station")
			return
		}
		if err != nil {
			slog.Error("failed to query station", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		stationID = &id
	}

	prefsJSON, err := json.Marshal(req.Preferences)
	if err != nil {
		slog.Error("failed to encode preferences", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit ballot")
		return
	}

	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.IPHashSalt)
	ballotID := uuid.NewString()

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	// Re-check inside the transaction so a concurrent close wins cleanly
	if err := tx.QueryRow("SELECT status FROM election WHERE id = $1", electionID).Scan(&status); err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if status != models.StatusOpen {
		middleware.ErrorResponse(w, http.StatusConflict, "Election is not open for voting")
		return
	}

	_, err = tx.Exec(`
		INSERT INTO ballot (id, election_id, station_id, preferences, submitted_at, ip_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, ballotID, electionID, stationID, string(prefsJSON), time.Now(), ipHash)

	if err != nil {
		slog.Error("failed to insert ballot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit ballot")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit ballot")
		return
	}

	h.metrics.IncrementBallotsCast()
	slog.Info("ballot submitted", "election_id", electionID, "ballot_id", ballotID, "ranked", len(req.Preferences))

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitBallotResponse{
		BallotID: ballotID,
		Message:  "Ballot submitted successfully",
	})
}
