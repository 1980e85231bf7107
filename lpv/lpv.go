// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lpv

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDuplicateCandidate is returned when a candidate id is listed twice
var ErrDuplicateCandidate = errors.New("duplicate candidate identifier")

// CandidateID names a contestant. Ordering is byte-wise.
type CandidateID = string

// Ballot is a ranked list of preferences, most preferred first
type Ballot struct {
	StationID   string        `json:"station_id,omitempty"`
	Preferences []CandidateID `json:"preferences"`
}

// RoundSnapshot is the audit record for one elimination round
type RoundSnapshot struct {
	Round   int                 `json:"round"`
	Tallies map[CandidateID]int `json:"tallies"`

	// Exhausted counts ballots with no remaining preference when Tallies was
	// taken, so sum(Tallies) + Exhausted == len(ballots).
	Exhausted int `json:"exhausted"`

	// NewlyExhausted counts ballots exhausted by this round's elimination.
	NewlyExhausted int `json:"newly_exhausted"`

	Eliminated    *CandidateID        `json:"eliminated,omitempty"`
	Redistributed map[CandidateID]int `json:"redistributed"`
}

// Result is a finished count with one snapshot per elimination round.
// Winner is nil only when there are no candidates.
type Result struct {
	Rounds       []RoundSnapshot     `json:"rounds"`
	Winner       *CandidateID        `json:"winner,omitempty"`
	FinalTallies map[CandidateID]int `json:"final_tallies"`
}

// TotalRounds returns the number of elimination rounds
func (r Result) TotalRounds() int {
	return len(r.Rounds)
}

// RunCount runs a Limited Preferential Voting count. Candidates are
// eliminated one per round (lowest tally, ties to the smaller id) until a
// single candidate remains.
//
// Ballot entries naming unknown candidates are skipped and repeated entries
// keep only their first occurrence. The input slices are not modified.
func RunCount(candidates []CandidateID, ballots []Ballot) (Result, error) {
	known := make(map[CandidateID]struct{}, len(candidates))
	for _, c := range candidates {
		if _, dup := known[c]; dup {
			return Result{}, fmt.Errorf("%w: %q", ErrDuplicateCandidate, c)
		}
		known[c] = struct{}{}
	}

	prefs := normalize(known, ballots)
	eliminated := make(map[CandidateID]bool, len(candidates))
	rounds := []RoundSnapshot{}

	tallies, exhausted := tally(candidates, prefs, eliminated)
	for len(candidates)-len(eliminated) > 1 {
		snapshot := RoundSnapshot{
			Round:         len(rounds) + 1,
			Tallies:       tallies,
			Exhausted:     exhausted,
			Redistributed: map[CandidateID]int{},
		}

		lowest := lowestCandidate(candidates, eliminated, tallies)

		// Ballots still sitting with the candidate about to go
		var moving [][]CandidateID
		for _, p := range prefs {
			if top, ok := topPreference(p, eliminated); ok && top == lowest {
				moving = append(moving, p)
			}
		}

		eliminated[lowest] = true
		snapshot.Eliminated = &lowest

		for _, p := range moving {
			if next, ok := topPreference(p, eliminated); ok {
				snapshot.Redistributed[next]++
			} else {
				snapshot.NewlyExhausted++
			}
		}

		rounds = append(rounds, snapshot)
		tallies, exhausted = tally(candidates, prefs, eliminated)
	}

	return Result{
		Rounds:       rounds,
		Winner:       winner(candidates, eliminated, tallies),
		FinalTallies: tallies,
	}, nil
}

// Tally counts each ballot toward its highest-ranked candidate that is not
// eliminated. Every remaining candidate appears in the map, possibly with
// zero. Ballots with no remaining preference are returned as exhausted.
func Tally(candidates []CandidateID, ballots []Ballot, eliminated map[CandidateID]bool) (map[CandidateID]int, int) {
	known := make(map[CandidateID]struct{}, len(candidates))
	for _, c := range candidates {
		known[c] = struct{}{}
	}
	return tally(candidates, normalize(known, ballots), eliminated)
}

func tally(candidates []CandidateID, prefs [][]CandidateID, eliminated map[CandidateID]bool) (map[CandidateID]int, int) {
	tallies := make(map[CandidateID]int, len(candidates))
	for _, c := range candidates {
		if !eliminated[c] {
			tallies[c] = 0
		}
	}

	exhausted := 0
	for _, p := range prefs {
		if top, ok := topPreference(p, eliminated); ok {
			tallies[top]++
		} else {
			exhausted++
		}
	}
	return tallies, exhausted
}

func topPreference(prefs []CandidateID, eliminated map[CandidateID]bool) (CandidateID, bool) {
	for _, p := range prefs {
		if !eliminated[p] {
			return p, true
		}
	}
	return "", false
}

// normalize drops unknown ids and repeats, keeping first occurrence order
func normalize(known map[CandidateID]struct{}, ballots []Ballot) [][]CandidateID {
	out := make([][]CandidateID, len(ballots))
	for i, b := range ballots {
		seen := make(map[CandidateID]bool, len(b.Preferences))
		prefs := make([]CandidateID, 0, len(b.Preferences))
		for _, p := range b.Preferences {
			if _, ok := known[p]; !ok || seen[p] {
				continue
			}
			seen[p] = true
			prefs = append(prefs, p)
		}
		out[i] = prefs
	}
	return out
}

func lowestCandidate(candidates []CandidateID, eliminated map[CandidateID]bool, tallies map[CandidateID]int) CandidateID {
	var lowest CandidateID
	found := false
	for _, c := range candidates {
		if eliminated[c] {
			continue
		}
		if !found || tallies[c] < tallies[lowest] || (tallies[c] == tallies[lowest] && c < lowest) {
			lowest = c
			found = true
		}
	}
	return lowest
}

func winner(candidates []CandidateID, eliminated map[CandidateID]bool, tallies map[CandidateID]int) *CandidateID {
	var remaining []CandidateID
	for _, c := range candidates {
		if !eliminated[c] {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == 0 {
		return nil
	}

	// Highest tally first, then smallest id
	sort.Slice(remaining, func(i, j int) bool {
		a, b := remaining[i], remaining[j]
		if tallies[a] != tallies[b] {
			return tallies[a] > tallies[b]
		}
		return a < b
	})
	w := remaining[0]
	return &w
}
