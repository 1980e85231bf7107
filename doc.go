// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the countroll API server.

countroll runs Limited Preferential Voting (LPV) counts for elections and
searches voter rolls for duplicate registrations. Closing an election
stores an auditable count snapshot with every elimination round.

# Starting the Server

The server reads CLI flags, then the environment, then an optional .env file:

	DATABASE_URL=countroll.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite path or PostgreSQL connection string
  - ADMIN_KEY_SALT (--admin-salt): Secret for admin key HMAC
  - ELECTION_SLUG_SALT (--slug-salt): Secret for share slug generation

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - IP_HASH_SALT: Secret for ballot IP hashes (default: ADMIN_KEY_SALT)
  - DEDUP_THRESHOLD (--dedup-threshold): Duplicate score cut-off (default: 0.8)
  - DEDUP_WORKERS (--dedup-workers): Blocks compared in parallel (default: 4)
  - NAME_MATCHER (--name-matcher): positional or jaro-winkler (default: positional)
  - --env: dotenv file to load (default: .env)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - lpv: Limited Preferential Voting count
  - dedup: Duplicate record search
  - handlers: HTTP request handlers (elections, ballots, results, stations, roll)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, admin keys, JSON helpers
  - metrics: Prometheus metrics
  - models: Request/response types
  - auth: Key, slug and hash generation
  - db: Connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
