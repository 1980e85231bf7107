// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dedup

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func person(id, name, dob, province, nid string) PersonRecord {
	r := PersonRecord{ID: id, FullName: name}
	if dob != "" {
		r.DateOfBirth = str(dob)
	}
	if province != "" {
		r.Province = str(province)
	}
	if nid != "" {
		r.NIDNumber = str(nid)
	}
	return r
}

func TestFindCandidates_ThresholdAboveMaximum(t *testing.T) {
	a := person("1", "John Kila", "1985-03-15", "Morobe", "PNG1")
	a.FaceDescriptor = desc(0.3, 0.4, 0.5)
	b := a
	b.ID = "2"

	got, err := FindCandidates([]PersonRecord{a, b, person("3", "John Kila", "", "Morobe", "")}, 1.1)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindCandidates_ExactBiographicMatch(t *testing.T) {
	records := []PersonRecord{
		person("1", "John Kila", "1985-03-15", "National Capital District", "PNG12345678"),
		person("2", "john  kila", "1985-03-15", "National Capital District", "PNG12345678"),
	}

	got, err := FindCandidates(records, 0.9)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// 0.5 name + 0.2 dob + 0.2 nid; no descriptor on either side
	assert.Equal(t, 0.9, got[0].Score)
	assert.GreaterOrEqual(t, got[0].Score, 0.9)
	assert.Equal(t, []string{ReasonName, ReasonDOB, ReasonNID}, got[0].Reasons)
}

func TestFindCandidates_ReportedScoreMeetsThreshold(t *testing.T) {
	records := []PersonRecord{
		person("1", "Peter Tau", "1979-11-02", "Madang", "PNG555"),
		person("2", "Peter Tau", "1979-11-02", "Madang", "PNG555"),
		person("3", "Peter Tau", "1979-11-02", "Madang", ""),
	}

	for _, threshold := range []float64{0.7, 0.9} {
		got, err := FindCandidates(records, threshold)
		require.NoError(t, err)
		require.NotEmpty(t, got)
		for _, c := range got {
			assert.GreaterOrEqual(t, c.Score, threshold, "pair %s/%s", c.A.ID, c.B.ID)
		}
	}

	// Just above the rounded score, nothing is reported
	got, err := FindCandidates(records, 0.9+1e-9)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindCandidates_ScoreClampedToOne(t *testing.T) {
	a := person("1", "Mary Temu", "1990-01-01", "Morobe", "PNG777")
	a.FaceDescriptor = desc(0.11, -0.42, 0.93, 0.05)
	b := person("2", "Mary Temu", "1990-01-01", "Morobe", "PNG777")
	b.FaceDescriptor = desc(0.11, -0.42, 0.93, 0.05)

	got, err := FindCandidates([]PersonRecord{a, b}, 1.0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1.0, got[0].Score)
	assert.Equal(t, []string{ReasonName, ReasonDOB, ReasonFace, ReasonNID}, got[0].Reasons)
}

func TestFindCandidates_BlockingBoundary(t *testing.T) {
	records := []PersonRecord{
		person("1", "John Kila", "1985-03-15", "A", "PNG1"),
		person("2", "John Kila", "1985-03-15", "B", "PNG1"),
	}

	got, err := FindCandidates(records, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindCandidates_UnknownProvinceBlock(t *testing.T) {
	records := []PersonRecord{
		person("1", "Peter Kaupa", "1979-07-12", "", ""),
		person("2", "Peter Kaupa", "1979-07-12", "Eastern Highlands", ""),
		person("3", "Peter Kaupa", "1979-07-12", "", ""),
	}
	records[2].Province = str("")

	got, err := FindCandidates(records, 0.5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].A.ID)
	assert.Equal(t, "3", got[0].B.ID)
}

func TestFindCandidates_InvalidThreshold(t *testing.T) {
	for _, th := range []float64{math.NaN(), -0.1} {
		_, err := FindCandidates(nil, th)
		assert.ErrorIs(t, err, ErrInvalidThreshold, "threshold %v", th)
	}
}

func TestFindCandidates_EmptyInput(t *testing.T) {
	got, err := FindCandidates(nil, DefaultThreshold)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFindCandidates_OrderAndBorrowing(t *testing.T) {
	records := []PersonRecord{
		person("1", "John Kila", "1985-03-15", "Morobe", ""),
		person("2", "Jon Killa", "1985-03-15", "Morobe", ""),
		person("3", "John Kila", "1985-03-15", "Morobe", "PNG1"),
		person("4", "John Kila", "1985-03-15", "Morobe", "PNG1"),
	}

	got, err := FindCandidates(records, 0.4)
	require.NoError(t, err)

	var pairs []string
	for _, c := range got {
		pairs = append(pairs, c.A.ID+"-"+c.B.ID)
	}
	// 3-4: 0.9, then the 0.7 ties in enumeration order, then the 0.45 ties
	assert.Equal(t, []string{"3-4", "1-3", "1-4", "1-2", "2-3", "2-4"}, pairs)

	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}

	assert.Same(t, &records[2], got[0].A)
	assert.Same(t, &records[3], got[0].B)
}

func TestFindCandidates_SampleRollBelowDefault(t *testing.T) {
	records := []PersonRecord{
		person("1", "John Kila", "1985-03-15", "National Capital District", "PNG12345678"),
		person("2", "Jon Killa", "1985-03-15", "National Capital District", ""),
		person("3", "Mary Temu", "1990-01-01", "Morobe", ""),
		person("4", "Peter Kaupa", "1979-07-12", "Eastern Highlands", ""),
	}

	got, err := FindCandidates(records, 0.75)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = FindCandidates(records, 0.45)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{ReasonDOB}, got[0].Reasons)
}

func TestFinder_JaroWinklerMatcher(t *testing.T) {
	records := []PersonRecord{
		person("1", "John Kila", "1985-03-15", "Morobe", ""),
		person("2", "Jon Kila", "1985-03-15", "Morobe", ""),
	}

	got, err := New().Find(context.Background(), records, 0.6)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = New(WithNameMatcher(JaroWinkler)).Find(context.Background(), records, 0.6)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 0.6833, got[0].Score, 1e-3)
	assert.Equal(t, []string{ReasonName, ReasonDOB}, got[0].Reasons)
}

func TestFinder_ParallelMatchesSequential(t *testing.T) {
	provinces := []string{"Morobe", "Madang", "Enga", ""}
	names := []string{"John Kila", "Jon Kila", "John Killa", "Mary Temu", "Marie Temu"}
	dobs := []string{"1985-03-15", "1990-01-01", ""}

	var records []PersonRecord
	for i := 0; i < 120; i++ {
		r := person(
			fmt.Sprintf("r%03d", i),
			names[i%len(names)],
			dobs[i%len(dobs)],
			provinces[i%len(provinces)],
			fmt.Sprintf("NID%d", i%7),
		)
		if i%3 == 0 {
			r.FaceDescriptor = desc(float32(i%5), 1, float32(i%2))
		}
		records = append(records, r)
	}

	var stats Stats
	seq, err := FindCandidates(records, 0.5)
	require.NoError(t, err)

	par, err := New(WithWorkers(8), WithObserver(func(s Stats) { stats = s })).
		Find(context.Background(), records, 0.5)
	require.NoError(t, err)

	require.NotEmpty(t, seq)
	assert.Equal(t, seq, par)
	assert.Equal(t, 120, stats.Records)
	assert.Equal(t, 4, stats.Blocks)
	assert.Equal(t, 4*(30*29/2), stats.Comparisons)
	assert.Equal(t, len(par), stats.Emitted)
}

func TestFinder_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := []PersonRecord{
		person("1", "John Kila", "", "Morobe", ""),
		person("2", "John Kila", "", "Morobe", ""),
	}
	_, err := New(WithWorkers(2)).Find(ctx, records, 0.5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScorePair_MissingFieldsContributeNothing(t *testing.T) {
	a := PersonRecord{ID: "1"}
	b := PersonRecord{ID: "2"}

	s := ScorePair(&a, &b, nil)
	assert.Equal(t, Score{}, s)
	assert.Empty(t, s.Reasons())
}

func TestBlockByProvince(t *testing.T) {
	records := []PersonRecord{
		person("1", "a", "", "Enga", ""),
		person("2", "b", "", "", ""),
		person("3", "c", "", "Morobe", ""),
		person("4", "d", "", "Enga", ""),
	}

	blocks := BlockByProvince(records)
	require.Len(t, blocks, 3)
	assert.Equal(t, "Enga", blocks[0].Key)
	assert.Equal(t, UnknownBlock, blocks[1].Key)
	assert.Equal(t, "Morobe", blocks[2].Key)
	require.Len(t, blocks[0].Records, 2)
	assert.Equal(t, "4", blocks[0].Records[1].ID)
	assert.Equal(t, 1, blocks[0].Pairs())
	assert.Equal(t, 0, blocks[1].Pairs())
}
