// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Database connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - AdminKeySalt: Secret for admin key HMAC (required)
  - ElectionSlugSalt: Secret for share slug generation (required)
  - IPHashSalt: Secret for hashing ballot IPs (default: AdminKeySalt)
  - DedupThreshold: Minimum fused score for duplicate pairs (default: 0.8)
  - DedupWorkers: Province blocks compared in parallel (default: 4)
  - NameMatcher: positional or jaro-winkler (default: positional)

# CLI Flags

	-p                 Server port
	-d                 Database URL
	-t                 Database type
	-env               Dotenv file (default: .env, may be missing)
	--admin-salt       Admin key salt
	--slug-salt        Election slug salt
	--dedup-threshold  Duplicate score threshold
	--dedup-workers    Parallel dedup workers
	--name-matcher     Name comparison

# Environment Variables

Flags fall back to environment variables:

	PORT               → -p
	DATABASE_URL       → -d
	DATABASE_TYPE      → -t
	ADMIN_KEY_SALT     → --admin-salt
	ELECTION_SLUG_SALT → --slug-salt
	DEDUP_THRESHOLD    → --dedup-threshold
	DEDUP_WORKERS      → --dedup-workers
	NAME_MATCHER       → --name-matcher
	IP_HASH_SALT

CLI flags take precedence over environment variables, and variables already
set in the environment take precedence over the dotenv file.

# Validation

ParseFlags returns an error if required values are missing or malformed:

  - DATABASE_URL must be provided
  - ADMIN_KEY_SALT must be provided
  - ELECTION_SLUG_SALT must be provided
  - DEDUP_THRESHOLD must be a non-negative number
  - DEDUP_WORKERS must be at least 1

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(conn, cfg, prometheus.NewRegistry())
*/
package cliparse
