// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/countroll/auth"
	"github.com/danielhkuo/countroll/metrics"
	"github.com/danielhkuo/countroll/models"
	"github.com/danielhkuo/countroll/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSubmitBallot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	m := metrics.New(prometheus.NewRegistry())
	handler := NewBallotHandler(db, cfg, m)

	electionID, _, shareSlug := testutil.CreateTestElection(t, db, cfg, "open")
	testutil.AddTestCandidate(t, db, electionID, "kila", "John Kila")
	testutil.AddTestCandidate(t, db, electionID, "mek", "Mary Mek")
	testutil.AddTestCandidate(t, db, electionID, "tau", "Peter Tau")
	testutil.RegisterTestStation(t, db, "LAE-01", "Morobe")

	tests := []struct {
		name           string
		slug           string
		preferences    []string
		headers        map[string]string
		expectedStatus int
	}{
		{"full ranking", shareSlug, []string{"mek", "kila", "tau"}, nil, http.StatusCreated},
		{"partial ranking", shareSlug, []string{"tau"}, nil, http.StatusCreated},
		{"from a station", shareSlug, []string{"kila", "mek"}, map[string]string{"X-Station-Code": "LAE-01"}, http.StatusCreated},
		{"empty ranking", shareSlug, []string{}, nil, http.StatusBadRequest},
		{"unknown candidate", shareSlug, []string{"kila", "nobody"}, nil, http.StatusBadRequest},
		{"repeated candidate", shareSlug, []string{"kila", "mek", "kila"}, nil, http.StatusBadRequest},
		{"unknown station", shareSlug, []string{"kila"}, map[string]string{"X-Station-Code": "NOWHERE"}, http.StatusBadRequest},
		{"unknown election", "no-such-slug", []string{"kila"}, nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/elections/"+tt.slug+"/ballots",
				models.SubmitBallotRequest{Preferences: tt.preferences}, tt.headers)
			req.SetPathValue("slug", tt.slug)
			w := httptest.NewRecorder()

			handler.SubmitBallot(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusCreated {
				return
			}

			var resp models.SubmitBallotResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.BallotID == "" {
				t.Error("Expected ballot_id in response")
			}
		})
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM ballot WHERE election_id = $1", electionID).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("Expected 3 stored ballots, got %d", count)
	}
	if got := promtest.ToFloat64(m.BallotsCast); got != 3 {
		t.Errorf("Expected 3 ballots cast metric, got %v", got)
	}
}

func TestSubmitBallotStoresProvenance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewBallotHandler(db, cfg, nil)

	electionID, _, shareSlug := testutil.CreateTestElection(t, db, cfg, "open")
	testutil.AddTestCandidate(t, db, electionID, "kila", "John Kila")
	testutil.AddTestCandidate(t, db, electionID, "mek", "Mary Mek")
	stationID := testutil.RegisterTestStation(t, db, "LAE-01", "Morobe")

	req := testutil.MakeRequest("POST", "/elections/"+shareSlug+"/ballots",
		models.SubmitBallotRequest{Preferences: []string{"mek", "kila"}},
		map[string]string{"X-Station-Code": "LAE-01"})
	req.SetPathValue("slug", shareSlug)
	req.RemoteAddr = "203.0.113.7:5000"
	w := httptest.NewRecorder()

	handler.SubmitBallot(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.SubmitBallotResponse
	testutil.AssertJSON(t, w, &resp)

	var storedStation sql.NullString
	var prefs, ipHash string
	err := db.QueryRow(`
		SELECT station_id, preferences, ip_hash FROM ballot WHERE id = $1
	`, resp.BallotID).Scan(&storedStation, &prefs, &ipHash)
	if err != nil {
		t.Fatalf("Ballot not stored: %v", err)
	}

	if storedStation.String != stationID {
		t.Errorf("Expected station %s, got %q", stationID, storedStation.String)
	}
	if prefs != `["mek","kila"]` {
		t.Errorf("Unexpected stored preferences %s", prefs)
	}
	if ipHash != auth.HashIP("203.0.113.7", cfg.IPHashSalt) {
		t.Error("IP should be stored as a salted hash")
	}
	if strings.Contains(ipHash, "203.0.113.7") {
		t.Error("Raw IP leaked into storage")
	}

	// The count picks the ballot up
	count, err := computeCount(db, electionID)
	if err != nil {
		t.Fatal(err)
	}
	if len(count.BallotIDs) != 1 || count.BallotIDs[0] != resp.BallotID {
		t.Errorf("Unexpected counted ballots %v", count.BallotIDs)
	}
}

func TestSubmitBallotToClosedElection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewBallotHandler(db, cfg, nil)

	electionID, _, shareSlug := testutil.CreateTestElection(t, db, cfg, "closed")
	testutil.AddTestCandidate(t, db, electionID, "kila", "John Kila")

	req := testutil.MakeRequest("POST", "/elections/"+shareSlug+"/ballots",
		models.SubmitBallotRequest{Preferences: []string{"kila"}}, nil)
	req.SetPathValue("slug", shareSlug)
	w := httptest.NewRecorder()

	handler.SubmitBallot(w, req)

	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestSubmitBallotInvalidJSON(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewBallotHandler(db, cfg, nil)

	req := httptest.NewRequest("POST", "/elections/x/ballots", strings.NewReader(`{"preferences":"kila"}`))
	req.SetPathValue("slug", "x")
	w := httptest.NewRecorder()

	handler.SubmitBallot(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
}
