// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package lpv implements Limited Preferential Voting counts.

# Counting

RunCount takes the candidate list and the ranked ballots and eliminates
one candidate per round until a single candidate remains:

	result, err := lpv.RunCount([]string{"X", "Y", "Z"}, ballots)

Each round records the tally that justified the elimination, the number
of exhausted ballots, the eliminated candidate, and where that
candidate's ballots moved to.

# Tie-breaking

Both the elimination and the winner selection break ties by byte-wise
comparison of candidate identifiers: the smaller identifier is eliminated
first, and among tied leaders the smaller identifier wins.

# Transfers

Transfers are whole ballots. There is no fractional surplus transfer.
A ballot whose every preference has been eliminated is exhausted for the
rest of the count.

# Input Tolerance

Preferences naming a candidate outside the candidate list are skipped.
A candidate listed twice on one ballot counts at its first position.
A duplicate entry in the candidate list itself is rejected with
ErrDuplicateCandidate.
*/
package lpv
