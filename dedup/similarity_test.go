// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func str(s string) *string { return &s }

func TestNameSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{"identical", "John Kila", "John Kila", 1},
		{"case and spacing", "John  Kila", "john kila", 1},
		{"positional mismatches", "John Kila", "Jon Killa", 0.5},
		{"tail counts as mismatch", "abc", "abcd", 0.75},
		{"shift ruins alignment", "John Kila", "Jon Kila", 0.25},
		{"unicode lowercase", "ÉMILE", "émile", 1},
		{"empty side", "", "Mary Temu", 0},
		{"whitespace only", "   ", " ", 0},
		{"nothing in common", "abc", "xyz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, NameSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestJaroWinkler(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{"identical", "Peter Kaupa", "peter kaupa", 1},
		{"transposition", "MARTHA", "MARHTA", 0.9611},
		{"dropped letter", "DWAYNE", "DUANE", 0.84},
		{"dropped letter in name", "John Kila", "Jon Kila", 0.9667},
		{"no matches", "abc", "xyz", 0},
		{"empty", "", "abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, JaroWinkler(tt.a, tt.b), 1e-3)
		})
	}
}

func TestJaroWinklerIsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"John Kila", "Jon Killa"},
		{"Mary Temu", "Marie Temu"},
		{"Namah", "Nama"},
	}
	for _, p := range pairs {
		assert.InDelta(t, JaroWinkler(p[0], p[1]), JaroWinkler(p[1], p[0]), 1e-12, "%v", p)
	}
}

func TestDOBSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, DOBSimilarity(str("1985-03-15"), str("1985-03-15")))
	assert.Equal(t, 0.0, DOBSimilarity(str("1985-03-15"), str("1985-03-16")))
	assert.Equal(t, 0.0, DOBSimilarity(str("1985-03-15"), nil))
	assert.Equal(t, 0.0, DOBSimilarity(nil, nil))
	assert.Equal(t, 0.0, DOBSimilarity(str(""), str("")))
}

func TestSameNID(t *testing.T) {
	assert.True(t, sameNID(str("PNG12345678"), str("PNG12345678")))
	assert.False(t, sameNID(str("PNG12345678"), str("png12345678")))
	assert.False(t, sameNID(str("PNG12345678"), nil))
	assert.False(t, sameNID(str(""), str("")))
}
