// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dedup

import (
	"strings"
	"unicode"
)

// NameMatcher scores two full names in [0, 1]
type NameMatcher func(a, b string) float64

// NameSimilarity compares two names position by position after lowercasing
// and removing whitespace: 1 - mismatches/longerLength. Characters past the
// end of the shorter name are mismatches.
//
// This is a crude stand-in for a real edit distance. It is the default
// because the fusion weights and thresholds were calibrated against it.
func NameSimilarity(a, b string) float64 {
	s1, s2 := normalizeName(a), normalizeName(b)
	n := max(len(s1), len(s2))
	if len(s1) == 0 || len(s2) == 0 {
		return 0
	}

	mismatches := 0
	for i := 0; i < n; i++ {
		if i >= len(s1) || i >= len(s2) || s1[i] != s2[i] {
			mismatches++
		}
	}
	return max(0, 1-float64(mismatches)/float64(n))
}

// JaroWinkler is the Jaro-Winkler similarity of the normalized names, with
// the usual 0.1 prefix scale over at most four leading characters.
func JaroWinkler(a, b string) float64 {
	s1, s2 := normalizeName(a), normalizeName(b)
	if len(s1) == 0 || len(s2) == 0 {
		return 0
	}

	window := max(len(s1), len(s2))/2 - 1
	window = max(window, 0)

	m1 := make([]bool, len(s1))
	m2 := make([]bool, len(s2))
	matches := 0
	for i := range s1 {
		lo := max(0, i-window)
		hi := min(len(s2), i+window+1)
		for j := lo; j < hi; j++ {
			if m2[j] || s1[i] != s2[j] {
				continue
			}
			m1[i], m2[j] = true, true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	transpositions := 0
	k := 0
	for i := range s1 {
		if !m1[i] {
			continue
		}
		for !m2[k] {
			k++
		}
		if s1[i] != s2[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	jaro := (m/float64(len(s1)) + m/float64(len(s2)) + (m-float64(transpositions)/2)/m) / 3

	prefix := 0
	for i := 0; i < min(4, len(s1), len(s2)); i++ {
		if s1[i] != s2[i] {
			break
		}
		prefix++
	}
	return jaro + float64(prefix)*0.1*(1-jaro)
}

// DOBSimilarity is 1 when both dates are present and textually identical
func DOBSimilarity(a, b *string) float64 {
	da, okA := value(a)
	db, okB := value(b)
	if !okA || !okB || da != db {
		return 0
	}
	return 1
}

func sameNID(a, b *string) bool {
	na, okA := value(a)
	nb, okB := value(b)
	return okA && okB && na == nb
}

func normalizeName(s string) []rune {
	s = strings.ToLower(s)
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if !unicode.IsSpace(r) {
			out = append(out, r)
		}
	}
	return out
}
