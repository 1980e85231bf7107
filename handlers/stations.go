// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/countroll/auth"
	"github.com/danielhkuo/countroll/cliparse"
	"github.com/danielhkuo/countroll/middleware"
	"github.com/danielhkuo/countroll/models"
)

// StationHandler manages polling stations, identified by the X-Station-Code header
type StationHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewStationHandler(db *sql.DB, cfg cliparse.Config) *StationHandler {
	return &StationHandler{db: db, cfg: cfg}
}

// Register handles POST /stations/register
// Registers a station and returns its station_id (or finds existing)
func (h *StationHandler) Register(w http.ResponseWriter, r *http.Request) {
	code := r.Header.Get("X-Station-Code")
	if code == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-Station-Code header required")
		return
	}

	var req models.RegisterStationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	existingID, err := touchStation(h.db, code)
	if err == nil {
		slog.Info("station registered (existing)", "station_id", existingID)
		middleware.JSONResponse(w, http.StatusOK, models.RegisterStationResponse{
			StationID: existingID,
			IsNew:     false,
		})
		return
	}

	if err != sql.ErrNoRows {
		slog.Error("failed to query station", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	stationID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate station ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register station")
		return
	}

	now := time.Now()
	_, err = h.db.Exec(`
		INSERT INTO station (id, station_code, province, district, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, stationID, code, req.Province, req.District, now, now)

	if err != nil {
		slog.Error("failed to insert station", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register station")
		return
	}

	slog.Info("station registered (new)", "station_id", stationID)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterStationResponse{
		StationID: stationID,
		IsNew:     true,
	})
}

// GetMe handles GET /stations/me
func (h *StationHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	code := r.Header.Get("X-Station-Code")
	if code == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-Station-Code header required")
		return
	}

	if _, err := touchStation(h.db, code); err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Station not registered")
		return
	} else if err != nil {
		slog.Error("failed to query station", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var station models.StationInfo
	err := h.db.QueryRow(`
		SELECT id, province, district, created_at, last_seen_at
		FROM station
		WHERE station_code = $1
	`, code).Scan(&station.ID, &station.Province, &station.District, &station.CreatedAt, &station.LastSeenAt)

	if err != nil {
		slog.Error("failed to query station", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, station)
}

// GetMyElections handles GET /stations/me/elections
// Returns the elections this station submitted ballots to
func (h *StationHandler) GetMyElections(w http.ResponseWriter, r *http.Request) {
	code := r.Header.Get("X-Station-Code")
	if code == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-Station-Code header required")
		return
	}

	stationID, err := touchStation(h.db, code)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Station not registered")
		return
	}
	if err != nil {
		slog.Error("failed to query station", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows, err := h.db.Query(`
		SELECT e.id, e.title, e.status, e.share_slug, COUNT(b.id) AS ballot_count
		FROM ballot b
		JOIN election e ON b.election_id = e.id
		WHERE b.station_id = $1
		GROUP BY e.id, e.title, e.status, e.share_slug, e.created_at
		ORDER BY e.created_at DESC, e.id
	`, stationID)

	if err != nil {
		slog.Error("failed to query station elections", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	elections := []models.StationElectionSummary{}
	for rows.Next() {
		var summary models.StationElectionSummary
		if err := rows.Scan(
			&summary.ElectionID,
			&summary.Title,
			&summary.Status,
			&summary.ShareSlug,
			&summary.BallotCount,
		); err != nil {
			slog.Error("failed to scan election", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		elections = append(elections, summary)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to read station elections", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.GetStationElectionsResponse{
		Elections: elections,
	})
}

// touchStation resolves a station code to its ID and bumps last_seen_at.
// Returns sql.ErrNoRows for unregistered codes.
func touchStation(db *sql.DB, code string) (string, error) {
	var stationID string
	err := db.QueryRow(`
		SELECT id FROM station WHERE station_code = $1
	`, code).Scan(&stationID)
	if err != nil {
		return "", err
	}

	if _, err := db.Exec(`UPDATE station SET last_seen_at = $1 WHERE id = $2`, time.Now(), stationID); err != nil {
		slog.Error("failed to update station last_seen_at", "error", err)
	}

	return stationID, nil
}
