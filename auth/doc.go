// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides key derivation and hashing utilities.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(electionID, salt)
	err := auth.ValidateAdminKey(electionID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same election ID and salt always produce the same key. This allows validation
without storing the key in the database.

# Share Slugs

Share slugs create URL-friendly identifiers for published elections:

	slug := auth.GenerateShareSlug(electionID, salt)

Slugs are base62 encoded (alphanumeric only) for easy sharing. Like admin keys,
they're deterministic from the election ID and salt.

# ID Generation

Random hex IDs for elections and polling stations:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

Ballots keep only a salted hash of the submitting address:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.

# Inputs Hash

Count snapshots record which ballots they were computed from:

	hash := auth.InputsHash(ballotIDs)

The hex SHA-256 over the sorted, newline-terminated IDs.
*/
package auth
