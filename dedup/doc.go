// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package dedup finds likely duplicate person records in a roll.

# Blocking

Records are grouped by province (records without one go to the UNKNOWN
block) and only records in the same block are compared. Duplicates that
were registered under two different provinces are never reported.

# Scoring

Each pair gets a fused score:

	0.5*name + 0.3*face + 0.2*dob + nidBoost   (capped at 1)

  - name: NameSimilarity by default, or any NameMatcher such as JaroWinkler
  - face: cosine similarity of the base64 face descriptors (JSON array or float32)
  - dob: 1 for identical dates of birth, else 0
  - nidBoost: 0.2 when both records carry the same NID number

Missing fields contribute 0; they never cause an error.

# Usage

	candidates, err := dedup.FindCandidates(records, dedup.DefaultThreshold)

Or with a configured Finder:

	f := dedup.New(dedup.WithWorkers(8), dedup.WithNameMatcher(dedup.JaroWinkler))
	candidates, err := f.Find(ctx, records, 0.75)

Only a NaN or negative threshold is rejected (ErrInvalidThreshold).
*/
package dedup
