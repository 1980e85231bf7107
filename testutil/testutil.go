// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/countroll/auth"
	"github.com/danielhkuo/countroll/cliparse"
	"github.com/danielhkuo/countroll/db"
	"github.com/google/uuid"
)

// TestDBURL is a private in-memory sqlite database
const TestDBURL = "file::memory:"

// SetupTestDB creates a fresh test database with the full schema.
// The database is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             3318,
		DatabaseURL:      TestDBURL,
		DatabaseType:     "sqlite",
		AdminKeySalt:     "test-admin-salt",
		ElectionSlugSalt: "test-slug-salt",
		IPHashSalt:       "test-ip-salt",
		DedupThreshold:   0.8,
		DedupWorkers:     2,
		NameMatcher:      cliparse.MatcherPositional,
	}
}

// CreateTestElection creates an election and returns its ID, admin key and
// share slug. status should be "draft", "open", or "closed"; drafts have no slug.
func CreateTestElection(t *testing.T, db *sql.DB, cfg cliparse.Config, status string) (electionID, adminKey, shareSlug string) {
	t.Helper()

	electionID, _ = auth.GenerateID(16)
	adminKey = auth.GenerateAdminKey(electionID, cfg.AdminKeySalt)

	var slug *string
	if status == "open" || status == "closed" {
		s := auth.GenerateShareSlug(electionID, cfg.ElectionSlugSalt)
		slug = &s
		shareSlug = s
	}

	var closedAt *time.Time
	if status == "closed" {
		now := time.Now()
		closedAt = &now
	}

	_, err := db.Exec(`
		INSERT INTO election (id, title, description, method, status, share_slug, closed_at, created_at)
		VALUES ($1, 'Test Election', 'A test election', 'lpv', $2, $3, $4, $5)
	`, electionID, status, slug, closedAt, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	return electionID, adminKey, shareSlug
}

// AddTestCandidate adds a candidate to an election
func AddTestCandidate(t *testing.T, db *sql.DB, electionID, candidateID, label string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO candidate (election_id, candidate_id, label)
		VALUES ($1, $2, $3)
	`, electionID, candidateID, label)
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}
}

// RegisterTestStation registers a polling station and returns its ID
func RegisterTestStation(t *testing.T, db *sql.DB, stationCode, province string) string {
	t.Helper()

	stationID, _ := auth.GenerateID(16)
	now := time.Now()
	_, err := db.Exec(`
		INSERT INTO station (id, station_code, province, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5)
	`, stationID, stationCode, province, now, now)
	if err != nil {
		t.Fatalf("Failed to create test station: %v", err)
	}

	return stationID
}

// SubmitTestBallot stores a ballot directly and returns its ID.
// stationID may be empty.
func SubmitTestBallot(t *testing.T, db *sql.DB, electionID, stationID string, preferences ...string) string {
	t.Helper()

	if preferences == nil {
		preferences = []string{}
	}
	prefsJSON, _ := json.Marshal(preferences)

	var station *string
	if stationID != "" {
		station = &stationID
	}

	ballotID := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO ballot (id, election_id, station_id, preferences, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
	`, ballotID, electionID, station, string(prefsJSON), time.Now())
	if err != nil {
		t.Fatalf("Failed to create test ballot: %v", err)
	}

	return ballotID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
