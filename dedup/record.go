// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dedup

// PersonRecord is one entry of a voter roll or census list.
// Optional fields are nil when absent; an empty string counts as absent.
type PersonRecord struct {
	ID             string  `json:"id"`
	FullName       string  `json:"full_name"`
	DateOfBirth    *string `json:"date_of_birth,omitempty"`
	Province       *string `json:"province,omitempty"`
	District       *string `json:"district,omitempty"`
	NIDNumber      *string `json:"nid_number,omitempty"`
	FaceDescriptor *string `json:"face_descriptor,omitempty"`
}

// Candidate is a pair of records that may describe the same person.
// A and B point into the slice passed to Find.
type Candidate struct {
	A       *PersonRecord `json:"a"`
	B       *PersonRecord `json:"b"`
	Score   float64       `json:"score"`
	Reasons []string      `json:"reasons"`
}

// Match reasons, in the order they are reported
const (
	ReasonName = "Strong name match"
	ReasonDOB  = "Exact date of birth"
	ReasonFace = "High facial similarity"
	ReasonNID  = "Same NID number"
)

func value(s *string) (string, bool) {
	if s == nil || *s == "" {
		return "", false
	}
	return *s, true
}
