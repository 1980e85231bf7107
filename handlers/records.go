// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/countroll/cliparse"
	"github.com/danielhkuo/countroll/dedup"
	"github.com/danielhkuo/countroll/middleware"
	"github.com/danielhkuo/countroll/models"
	"github.com/google/uuid"
)

// RecordHandler maintains the stored voter roll
type RecordHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	finder *dedup.Finder
}

func NewRecordHandler(db *sql.DB, cfg cliparse.Config, finder *dedup.Finder) *RecordHandler {
	return &RecordHandler{db: db, cfg: cfg, finder: finder}
}

// RegisterRecord handles POST /records
func (h *RecordHandler) RegisterRecord(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRecordRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.FullName) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "full_name is required")
		return
	}

	if req.FaceDescriptor != nil && *req.FaceDescriptor != "" {
		if _, err := dedup.DecodeDescriptor(*req.FaceDescriptor); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "face_descriptor: "+err.Error())
			return
		}
	}

	record := dedup.PersonRecord{
		ID:             uuid.NewString(),
		FullName:       req.FullName,
		DateOfBirth:    req.DateOfBirth,
		Province:       req.Province,
		District:       req.District,
		NIDNumber:      req.NIDNumber,
		FaceDescriptor: req.FaceDescriptor,
	}

	_, err := h.db.Exec(`
		INSERT INTO person_record (id, full_name, date_of_birth, province, district, nid_number, face_descriptor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, record.ID, record.FullName, record.DateOfBirth, record.Province, record.District,
		record.NIDNumber, record.FaceDescriptor, time.Now())

	if err != nil {
		slog.Error("failed to insert person record", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register record")
		return
	}

	slog.Info("person record registered", "record_id", record.ID)

	middleware.JSONResponse(w, http.StatusCreated, record)
}

// GetRecord handles GET /records/{id}
func (h *RecordHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	recordID := r.PathValue("id")
	if recordID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "record id is required")
		return
	}

	records, err := h.loadRecords(`WHERE id = $1`, recordID)
	if err != nil {
		slog.Error("failed to query person record", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if len(records) == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Record not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, records[0])
}

// FindDuplicates handles GET /records/duplicates?threshold=&province=
// province=UNKNOWN selects the UNKNOWN block: records without a province
// and records whose province is literally UNKNOWN
func (h *RecordHandler) FindDuplicates(w http.ResponseWriter, r *http.Request) {
	threshold := h.cfg.DedupThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "threshold must be a number")
			return
		}
		threshold = t
	}

	var records []dedup.PersonRecord
	var err error
	switch province := r.URL.Query().Get("province"); province {
	case "":
		records, err = h.loadRecords("")
	case dedup.UnknownBlock:
		records, err = h.loadRecords(`WHERE province IS NULL OR province = '' OR province = $1`, dedup.UnknownBlock)
	default:
		records, err = h.loadRecords(`WHERE province = $1`, province)
	}
	if err != nil {
		slog.Error("failed to query person records", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	runFinder(w, r, h.finder, records, threshold)
}

// loadRecords reads person records in registration order
func (h *RecordHandler) loadRecords(where string, args ...any) ([]dedup.PersonRecord, error) {
	rows, err := h.db.Query(`
		SELECT id, full_name, date_of_birth, province, district, nid_number, face_descriptor
		FROM person_record
		`+where+`
		ORDER BY created_at, id
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []dedup.PersonRecord{}
	for rows.Next() {
		var p dedup.PersonRecord
		if err := rows.Scan(
			&p.ID, &p.FullName, &p.DateOfBirth, &p.Province,
			&p.District, &p.NIDNumber, &p.FaceDescriptor,
		); err != nil {
			return nil, err
		}
		records = append(records, p)
	}

	return records, rows.Err()
}
