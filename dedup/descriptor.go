// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dedup

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var ErrBadDescriptor = errors.New("malformed face descriptor")

// EncodeDescriptor serializes a face descriptor as base64 of its
// little-endian float32 values.
func EncodeDescriptor(v []float32) string {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

// DecodeDescriptor reads a base64 descriptor in either stored layout: a JSON
// array of numbers, as registration clients write it, or the little-endian
// float32 layout of EncodeDescriptor. A payload that parses as a JSON array
// wins over the binary reading.
func DecodeDescriptor(s string) ([]float32, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDescriptor, err)
	}

	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		var v []float32
		if err := json.Unmarshal(trimmed, &v); err == nil {
			return v, nil
		}
	}

	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is neither a JSON array nor whole float32 values", ErrBadDescriptor, len(raw))
	}

	v := make([]float32, len(raw)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return v, nil
}

// DescriptorSimilarity is the cosine similarity of two serialized
// descriptors, clamped to [0, 1]. Vectors of different length are compared
// over their common prefix. Missing or undecodable descriptors score 0.
func DescriptorSimilarity(a, b *string) float64 {
	ea, okA := value(a)
	eb, okB := value(b)
	if !okA || !okB {
		return 0
	}

	va, err := DecodeDescriptor(ea)
	if err != nil {
		return 0
	}
	vb, err := DecodeDescriptor(eb)
	if err != nil {
		return 0
	}
	return cosine(va, vb)
}

func cosine(a, b []float32) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}

	var dot, na, nb float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}

	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom == 0 {
		return 0
	}
	c := dot / denom
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	return min(c, 1)
}
