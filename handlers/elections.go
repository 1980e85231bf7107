// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/countroll/auth"
	"github.com/danielhkuo/countroll/cliparse"
	"github.com/danielhkuo/countroll/lpv"
	"github.com/danielhkuo/countroll/metrics"
	"github.com/danielhkuo/countroll/middleware"
	"github.com/danielhkuo/countroll/models"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// ElectionHandler serves the admin side of the election lifecycle.
// Every method except CreateElection expects middleware.RequireAdminKey
// to have checked the {id} path value.
type ElectionHandler struct {
	db      *sql.DB
	cfg     cliparse.Config
	metrics *metrics.Metrics
}

func NewElectionHandler(db *sql.DB, cfg cliparse.Config, m *metrics.Metrics) *ElectionHandler {
	return &ElectionHandler{db: db, cfg: cfg, metrics: m}
}

// CreateElection handles POST /elections
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}

	electionID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate election ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	adminKey := auth.GenerateAdminKey(electionID, h.cfg.AdminKeySalt)

	_, err = h.db.Exec(`
		INSERT INTO election (id, title, description, province, method, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, electionID, req.Title, req.Description, req.Province, models.MethodLPV, models.StatusDraft, time.Now())

	if err != nil {
		slog.Error("failed to insert election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	slog.Info("election created", "election_id", electionID, "title", req.Title)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateElectionResponse{
		ElectionID: electionID,
		AdminKey:   adminKey,
	})
}

// AddCandidate handles POST /elections/{id}/candidates
func (h *ElectionHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	var req models.AddCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.CandidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate_id is required")
		return
	}
	if req.Label == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "label is required")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRow("SELECT status FROM election WHERE id = $1", electionID).Scan(&status)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if status != models.StatusDraft {
		middleware.ErrorResponse(w, http.StatusConflict, "Cannot add candidates to non-draft election")
		return
	}

	var exists bool
	err = tx.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM candidate WHERE election_id = $1 AND candidate_id = $2
		)
	`, electionID, req.CandidateID).Scan(&exists)
	if err != nil {
		slog.Error("failed to check candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if exists {
		middleware.ErrorResponse(w, http.StatusConflict, "Candidate "+req.CandidateID+" already exists")
		return
	}

	_, err = tx.Exec(`
		INSERT INTO candidate (election_id, candidate_id, label)
		VALUES ($1, $2, $3)
	`, electionID, req.CandidateID, req.Label)
	if err != nil {
		slog.Error("failed to insert candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add candidate")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add candidate")
		return
	}

	slog.Info("candidate added", "election_id", electionID, "candidate_id", req.CandidateID)

	middleware.JSONResponse(w, http.StatusCreated, models.AddCandidateResponse{
		CandidateID: req.CandidateID,
	})
}

// PublishElection handles POST /elections/{id}/publish
func (h *ElectionHandler) PublishElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	var status string
	var candidateCount int
	err := h.db.QueryRow(`
		SELECT e.status, COUNT(c.candidate_id)
		FROM election e
		LEFT JOIN candidate c ON e.id = c.election_id
		WHERE e.id = $1
		GROUP BY e.status
	`, electionID).Scan(&status, &candidateCount)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if status != models.StatusDraft {
		middleware.ErrorResponse(w, http.StatusConflict, "Election is not in draft status")
		return
	}

	if candidateCount < 2 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Election must have at least 2 candidates")
		return
	}

	shareSlug := auth.GenerateShareSlug(electionID, h.cfg.ElectionSlugSalt)

	_, err = h.db.Exec(`
		UPDATE election
		SET status = $1, share_slug = $2
		WHERE id = $3 AND status = $4
	`, models.StatusOpen, shareSlug, electionID, models.StatusDraft)

	if err != nil {
		slog.Error("failed to publish election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to publish election")
		return
	}

	slog.Info("election published", "election_id", electionID, "share_slug", shareSlug, "candidates", candidateCount)

	middleware.JSONResponse(w, http.StatusOK, models.PublishElectionResponse{
		ShareSlug: shareSlug,
	})
}

// GetElectionAdmin handles GET /elections/{id}/admin
func (h *ElectionHandler) GetElectionAdmin(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	election, err := getElection(h.db, "id", electionID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	candidates, err := getCandidates(h.db, election.ID)
	if err != nil {
		slog.Error("failed to query candidates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ElectionWithCandidates{
		Election:   election,
		Candidates: candidates,
	})
}

// CloseElection handles POST /elections/{id}/close
// Counts the stored ballots and seals the result in one transaction
func (h *ElectionHandler) CloseElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRow("SELECT status FROM election WHERE id = $1", electionID).Scan(&status)
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
		middleware.ErrorResponse(w, http.StatusConflict, "Election is not open")
		return
	}

	count, err := computeCount(tx, electionID)
	if err != nil {
		slog.Error("failed to count ballots", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to count ballots")
		return
	}

	closedAt := time.Now()
	snapshot := models.CountSnapshot{
		ID:          uuid.NewString(),
		ElectionID:  electionID,
		Method:      models.MethodLPV,
		ComputedAt:  closedAt,
		BallotCount: len(count.BallotIDs),
		Result:      count.Result,
		InputsHash:  auth.InputsHash(count.BallotIDs),
	}

	payload, err := json.Marshal(snapshotPayload{
		BallotCount: snapshot.BallotCount,
		Result:      snapshot.Result,
		InputsHash:  snapshot.InputsHash,
	})
	if err != nil {
		slog.Error("failed to encode snapshot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save results")
		return
	}

	_, err = tx.Exec(`
		INSERT INTO count_snapshot (id, election_id, method, computed_at, payload)
		VALUES ($1, $2, $3, $4, $5)
	`, snapshot.ID, electionID, snapshot.Method, closedAt, string(payload))

	if err != nil {
		slog.Error("failed to insert snapshot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save results")
		return
	}

	_, err = tx.Exec(`
		UPDATE election
		SET status = $1, closed_at = $2, final_snapshot_id = $3
		WHERE id = $4
	`, models.StatusClosed, closedAt, snapshot.ID, electionID)

	if err != nil {
		slog.Error("failed to close election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close election")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close election")
		return
	}

	h.metrics.ObserveCount("election", snapshot.Result.TotalRounds(), snapshot.BallotCount)

	var winner string
	if snapshot.Result.Winner != nil {
		winner = *snapshot.Result.Winner
	}
	slog.Info("election closed",
		"election_id", electionID,
		"snapshot_id", snapshot.ID,
		"ballots", humanize.Comma(int64(snapshot.BallotCount)),
		"rounds", snapshot.Result.TotalRounds(),
		"winner", winner,
	)

	middleware.JSONResponse(w, http.StatusOK, models.CloseElectionResponse{
		ClosedAt: closedAt,
		Snapshot: snapshot,
	})
}

// snapshotPayload is the JSON stored in count_snapshot.payload
type snapshotPayload struct {
	BallotCount int        `json:"ballot_count"`
	Result      lpv.Result `json:"result"`
	InputsHash  string     `json:"inputs_hash"`
}

// getElection loads one election by "id" or "share_slug"
func getElection(q querier, column, value string) (models.Election, error) {
	var e models.Election
	err := q.QueryRow(`
		SELECT id, title, description, province, method, status,
		       share_slug, closed_at, final_snapshot_id, created_at
		FROM election
		WHERE `+column+` = $1
	`, value).Scan(
		&e.ID, &e.Title, &e.Description, &e.Province, &e.Method, &e.Status,
		&e.ShareSlug, &e.ClosedAt, &e.FinalSnapshotID, &e.CreatedAt,
	)
	return e, err
}

func getCandidates(q querier, electionID string) ([]models.Candidate, error) {
	rows, err := q.Query(`
		SELECT election_id, candidate_id, label
		FROM candidate
		WHERE election_id = $1
		ORDER BY candidate_id
	`, electionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ElectionID, &c.CandidateID, &c.Label); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}

	return candidates, rows.Err()
}
