package models

import (
	"time"

	"github.com/danielhkuo/countroll/dedup"
	"github.com/danielhkuo/countroll/lpv"
)

// Election status constants
const (
	StatusDraft  = "draft"
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Counting method constants
const (
	MethodLPV = "lpv"
)

// Request types

type CreateElectionRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Province    *string `json:"province,omitempty"`
}

type AddCandidateRequest struct {
	CandidateID string `json:"candidate_id"`
	Label       string `json:"label"`
}

// Preferences are candidate IDs, most preferred first
type SubmitBallotRequest struct {
	Preferences []string `json:"preferences"`
}

type RegisterStationRequest struct {
	Province *string `json:"province,omitempty"`
	District *string `json:"district,omitempty"`
}

type CountRequest struct {
	Candidates []lpv.CandidateID `json:"candidates"`
	Ballots    []lpv.Ballot      `json:"ballots"`
}

// Threshold defaults to the configured dedup threshold
type DedupRequest struct {
	Records   []dedup.PersonRecord `json:"records"`
	Threshold *float64             `json:"threshold,omitempty"`
}

type RegisterRecordRequest struct {
	FullName       string  `json:"full_name"`
	DateOfBirth    *string `json:"date_of_birth,omitempty"`
	Province       *string `json:"province,omitempty"`
	District       *string `json:"district,omitempty"`
	NIDNumber      *string `json:"nid_number,omitempty"`
	FaceDescriptor *string `json:"face_descriptor,omitempty"`
}

// Response types

type CreateElectionResponse struct {
	ElectionID string `json:"election_id"`
	AdminKey   string `json:"admin_key"`
}

type AddCandidateResponse struct {
	CandidateID string `json:"candidate_id"`
}

type PublishElectionResponse struct {
	ShareSlug string `json:"share_slug"`
}

type SubmitBallotResponse struct {
	BallotID string `json:"ballot_id"`
	Message  string `json:"message"`
}

type CloseElectionResponse struct {
	ClosedAt time.Time     `json:"closed_at"`
	Snapshot CountSnapshot `json:"snapshot"`
}

type ElectionPreviewResponse struct {
	Title          string `json:"title"`
	Status         string `json:"status"`
	CandidateCount int    `json:"candidate_count"`
	BallotCount    int    `json:"ballot_count"`
}

type ElectionResultsResponse struct {
	Election    Election      `json:"election"`
	Candidates  []Candidate   `json:"candidates"`
	Snapshot    CountSnapshot `json:"snapshot"`
	BallotCount int           `json:"ballot_count"`
}

type RegisterStationResponse struct {
	StationID string `json:"station_id"`
	IsNew     bool   `json:"is_new"`
}

type GetStationElectionsResponse struct {
	Elections []StationElectionSummary `json:"elections"`
}

type DedupResponse struct {
	Threshold  float64           `json:"threshold"`
	Candidates []dedup.Candidate `json:"candidates"`
}

// Domain types

type Election struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Province        *string    `json:"province,omitempty"`
	Method          string     `json:"method"`
	Status          string     `json:"status"`
	ShareSlug       *string    `json:"share_slug,omitempty"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
	FinalSnapshotID *string    `json:"final_snapshot_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type Candidate struct {
	ElectionID  string `json:"election_id"`
	CandidateID string `json:"candidate_id"`
	Label       string `json:"label"`
}

type ElectionWithCandidates struct {
	Election   Election    `json:"election"`
	Candidates []Candidate `json:"candidates"`
}

type StationInfo struct {
	ID         string    `json:"id"`
	Province   *string   `json:"province,omitempty"`
	District   *string   `json:"district,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// BallotCount is the number of ballots this station submitted
type StationElectionSummary struct {
	ElectionID  string  `json:"election_id"`
	Title       string  `json:"title"`
	Status      string  `json:"status"`
	ShareSlug   *string `json:"share_slug,omitempty"`
	BallotCount int     `json:"ballot_count"`
}

// CountSnapshot is the immutable count stored when an election closes
type CountSnapshot struct {
	ID          string     `json:"id"`
	ElectionID  string     `json:"election_id"`
	Method      string     `json:"method"`
	ComputedAt  time.Time  `json:"computed_at"`
	BallotCount int        `json:"ballot_count"`
	Result      lpv.Result `json:"result"`
	InputsHash  string     `json:"inputs_hash"` // Hash of all ballot IDs for verification
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
