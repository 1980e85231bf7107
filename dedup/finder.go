// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dedup

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidThreshold is returned by Find for a NaN or negative threshold
var ErrInvalidThreshold = errors.New("threshold must be a non-negative number")

// DefaultThreshold is the score a pair needs to be reported
const DefaultThreshold = 0.8

// Signal weights for the fused score
const (
	nameWeight = 0.5
	faceWeight = 0.3
	dobWeight  = 0.2
	nidBoost   = 0.2
)

// Reason cut-offs
const (
	strongName = 0.9
	highFace   = 0.7
)

// Fused scores are rounded to nine decimal places, so 0.5+0.2+0.2 is
// exactly 0.9 and the reported score is the one compared to the threshold.
const scorePrecision = 1e9

// Score is the per-signal breakdown for one pair
type Score struct {
	Name  float64 `json:"name"`
	DOB   float64 `json:"dob"`
	Face  float64 `json:"face"`
	Boost float64 `json:"boost"`
	Fused float64 `json:"fused"`
}

// Reasons lists the signals that contributed, in reporting order
func (s Score) Reasons() []string {
	reasons := []string{}
	if s.Name > strongName {
		reasons = append(reasons, ReasonName)
	}
	if s.DOB == 1 {
		reasons = append(reasons, ReasonDOB)
	}
	if s.Face > highFace {
		reasons = append(reasons, ReasonFace)
	}
	if s.Boost > 0 {
		reasons = append(reasons, ReasonNID)
	}
	return reasons
}

// ScorePair computes the fused similarity of two records
func ScorePair(a, b *PersonRecord, names NameMatcher) Score {
	if names == nil {
		names = NameSimilarity
	}

	s := Score{
		Name: names(a.FullName, b.FullName),
		DOB:  DOBSimilarity(a.DateOfBirth, b.DateOfBirth),
		Face: DescriptorSimilarity(a.FaceDescriptor, b.FaceDescriptor),
	}
	if sameNID(a.NIDNumber, b.NIDNumber) {
		s.Boost = nidBoost
	}
	fused := nameWeight*s.Name + faceWeight*s.Face + dobWeight*s.DOB + s.Boost
	s.Fused = min(1, math.Round(fused*scorePrecision)/scorePrecision)
	return s
}

// Stats describes one Find run
type Stats struct {
	Records     int
	Blocks      int
	Comparisons int
	Emitted     int
	Duration    time.Duration
}

// Finder searches a set of records for likely duplicates
type Finder struct {
	names    NameMatcher
	workers  int
	observer func(Stats)
}

// Option configures a Finder
type Option func(*Finder)

// WithNameMatcher replaces the positional name comparison
func WithNameMatcher(m NameMatcher) Option {
	return func(f *Finder) {
		if m != nil {
			f.names = m
		}
	}
}

// WithWorkers compares up to n blocks in parallel
func WithWorkers(n int) Option {
	return func(f *Finder) {
		f.workers = max(n, 1)
	}
}

// WithObserver is called with the run statistics after every successful Find
func WithObserver(fn func(Stats)) Option {
	return func(f *Finder) {
		f.observer = fn
	}
}

// New returns a sequential Finder using NameSimilarity, changed by opts
func New(opts ...Option) *Finder {
	f := &Finder{names: NameSimilarity, workers: 1}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FindCandidates runs a sequential Finder with the positional name matcher
func FindCandidates(records []PersonRecord, threshold float64) ([]Candidate, error) {
	return New().Find(context.Background(), records, threshold)
}

// Find blocks the records by province, scores every pair inside a block
// and returns the pairs scoring at least threshold, best first. Pairs with
// equal scores keep block-then-pair order, so parallel and sequential runs
// return the same slice.
func (f *Finder) Find(ctx context.Context, records []PersonRecord, threshold float64) ([]Candidate, error) {
	if math.IsNaN(threshold) || threshold < 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}

	start := time.Now()
	blocks := BlockByProvince(records)
	found := make([][]Candidate, len(blocks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for i, block := range blocks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			found[i] = f.compareBlock(block, threshold)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := Stats{Records: len(records), Blocks: len(blocks)}
	out := []Candidate{}
	for i, c := range found {
		stats.Comparisons += blocks[i].Pairs()
		out = append(out, c...)
	}

	slices.SortStableFunc(out, func(a, b Candidate) int {
		return cmp.Compare(b.Score, a.Score)
	})

	stats.Emitted = len(out)
	stats.Duration = time.Since(start)
	if f.observer != nil {
		f.observer(stats)
	}
	return out, nil
}

func (f *Finder) compareBlock(block Block, threshold float64) []Candidate {
	var out []Candidate
	for i := 0; i < len(block.Records); i++ {
		for j := i + 1; j < len(block.Records); j++ {
			a, b := block.Records[i], block.Records[j]
			s := ScorePair(a, b, f.names)
			if s.Fused < threshold {
				continue
			}
			out = append(out, Candidate{A: a, B: b, Score: s.Fused, Reasons: s.Reasons()})
		}
	}
	return out
}
