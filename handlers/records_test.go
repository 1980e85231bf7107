// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/countroll/dedup"
	"github.com/danielhkuo/countroll/models"
	"github.com/danielhkuo/countroll/testutil"
)

func strPtr(s string) *string { return &s }

// registerTestRecord stores a record through the handler and returns its ID
func registerTestRecord(t *testing.T, handler *RecordHandler, req models.RegisterRecordRequest) string {
	t.Helper()

	r := testutil.MakeRequest("POST", "/records", req, nil)
	w := httptest.NewRecorder()

	handler.RegisterRecord(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to register record: %d %s", w.Code, w.Body.String())
	}

	var record dedup.PersonRecord
	testutil.AssertJSON(t, w, &record)
	return record.ID
}

func newTestRecordHandler(t *testing.T) (*RecordHandler, *sql.DB) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	return NewRecordHandler(db, cfg, NewFinder(cfg, nil)), db
}

func TestRegisterRecord(t *testing.T) {
	handler, _ := newTestRecordHandler(t)

	tests := []struct {
		name           string
		req            models.RegisterRecordRequest
		expectedStatus int
	}{
		{"full record", models.RegisterRecordRequest{
			FullName:       "John Kila",
			DateOfBirth:    strPtr("1980-01-01"),
			Province:       strPtr("Morobe"),
			District:       strPtr("Lae"),
			NIDNumber:      strPtr("NID-1"),
			FaceDescriptor: strPtr(dedup.EncodeDescriptor([]float32{0.1, 0.2, 0.3})),
		}, http.StatusCreated},
		{"JSON descriptor", models.RegisterRecordRequest{
			FullName:       "Grace Wari",
			FaceDescriptor: strPtr(base64.StdEncoding.EncodeToString([]byte("[0.1,0.2,0.3,0.4]"))),
		}, http.StatusCreated},
		{"name only", models.RegisterRecordRequest{FullName: "Mary Mek"}, http.StatusCreated},
		{"empty descriptor", models.RegisterRecordRequest{FullName: "Peter Tau", FaceDescriptor: strPtr("")}, http.StatusCreated},
		{"missing name", models.RegisterRecordRequest{Province: strPtr("Morobe")}, http.StatusBadRequest},
		{"blank name", models.RegisterRecordRequest{FullName: "  "}, http.StatusBadRequest},
		{"bad descriptor", models.RegisterRecordRequest{FullName: "John Kila", FaceDescriptor: strPtr("not base64!")}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/records", tt.req, nil)
			w := httptest.NewRecorder()

			handler.RegisterRecord(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusCreated {
				return
			}

			var record dedup.PersonRecord
			testutil.AssertJSON(t, w, &record)
			if record.ID == "" {
				t.Error("Expected record id")
			}
			if record.FullName != tt.req.FullName {
				t.Errorf("Expected name %q, got %q", tt.req.FullName, record.FullName)
			}
		})
	}
}

func TestGetRecord(t *testing.T) {
	handler, _ := newTestRecordHandler(t)

	id := registerTestRecord(t, handler, models.RegisterRecordRequest{
		FullName:  "John Kila",
		Province:  strPtr("Morobe"),
		NIDNumber: strPtr("NID-1"),
	})

	req := testutil.MakeRequest("GET", "/records/"+id, nil, nil)
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()

	handler.GetRecord(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var record dedup.PersonRecord
	testutil.AssertJSON(t, w, &record)
	if record.ID != id || record.FullName != "John Kila" {
		t.Errorf("Unexpected record %+v", record)
	}
	if record.NIDNumber == nil || *record.NIDNumber != "NID-1" {
		t.Errorf("Unexpected NID %v", record.NIDNumber)
	}
	if record.DateOfBirth != nil {
		t.Errorf("Expected no date of birth, got %v", *record.DateOfBirth)
	}

	req = testutil.MakeRequest("GET", "/records/missing", nil, nil)
	req.SetPathValue("id", "missing")
	w = httptest.NewRecorder()

	handler.GetRecord(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestFindStoredDuplicates(t *testing.T) {
	handler, _ := newTestRecordHandler(t)

	// Same person registered twice in Morobe
	first := registerTestRecord(t, handler, models.RegisterRecordRequest{
		FullName: "John Kila", DateOfBirth: strPtr("1980-01-01"),
		Province: strPtr("Morobe"), NIDNumber: strPtr("NID-1"),
	})
	second := registerTestRecord(t, handler, models.RegisterRecordRequest{
		FullName: "John Kila", DateOfBirth: strPtr("1980-01-01"),
		Province: strPtr("Morobe"), NIDNumber: strPtr("NID-1"),
	})
	// Same person in another province is never compared
	registerTestRecord(t, handler, models.RegisterRecordRequest{
		FullName: "John Kila", DateOfBirth: strPtr("1980-01-01"),
		Province: strPtr("Madang"), NIDNumber: strPtr("NID-1"),
	})
	// Two records without a province share the UNKNOWN block
	registerTestRecord(t, handler, models.RegisterRecordRequest{
		FullName: "Mary Mek", DateOfBirth: strPtr("1975-06-30"), NIDNumber: strPtr("NID-2"),
	})
	registerTestRecord(t, handler, models.RegisterRecordRequest{
		FullName: "Mary Mek", DateOfBirth: strPtr("1975-06-30"), NIDNumber: strPtr("NID-2"),
	})
	// A province literally named UNKNOWN lands in the same block
	registerTestRecord(t, handler, models.RegisterRecordRequest{
		FullName: "Mary Mek", DateOfBirth: strPtr("1975-06-30"), NIDNumber: strPtr("NID-2"),
		Province: strPtr(dedup.UnknownBlock),
	})

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedPairs  int
	}{
		{"all records", "", http.StatusOK, 4},
		{"one province", "?province=Morobe", http.StatusOK, 1},
		{"unknown province", "?province=UNKNOWN", http.StatusOK, 3},
		{"province without duplicates", "?province=Madang", http.StatusOK, 0},
		{"threshold above every score", "?threshold=0.95", http.StatusOK, 0},
		{"lower threshold", "?threshold=0.5", http.StatusOK, 4},
		{"non-numeric threshold", "?threshold=high", http.StatusBadRequest, 0},
		{"negative threshold", "?threshold=-1", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/records/duplicates"+tt.query, nil, nil)
			w := httptest.NewRecorder()

			handler.FindDuplicates(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp models.DedupResponse
			testutil.AssertJSON(t, w, &resp)
			if len(resp.Candidates) != tt.expectedPairs {
				t.Fatalf("Expected %d pairs, got %d", tt.expectedPairs, len(resp.Candidates))
			}
			if tt.query != "?province=Morobe" {
				return
			}

			c := resp.Candidates[0]
			if c.A.ID != first || c.B.ID != second {
				t.Errorf("Expected pair (%s, %s), got (%s, %s)", first, second, c.A.ID, c.B.ID)
			}
		})
	}
}
