// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the countroll API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints. Metrics
are registered with the given registry and served from it:

	mux := router.NewRouter(db, cfg, prometheus.NewRegistry())

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Election management (admin, requires X-Admin-Key):

	POST /elections                 - Create election
	GET  /elections/{id}/admin      - Get election details
	POST /elections/{id}/candidates - Add candidate
	POST /elections/{id}/publish    - Open for ballots
	POST /elections/{id}/close      - Count and seal results

Ballots and results (public, uses share slug):

	POST /elections/{slug}/ballots      - Submit a ranked ballot
	GET  /elections/{slug}              - Election info and candidates
	GET  /elections/{slug}/results      - Count snapshot (closed only)
	GET  /elections/{slug}/ballot-count - Ballot count
	GET  /elections/{slug}/preview      - Compact preview data

Polling stations (requires X-Station-Code):

	POST /stations/register     - Register station
	GET  /stations/me           - Get station info
	GET  /stations/me/elections - Elections the station submitted to

Stateless tools:

	POST /count - LPV count over posted ballots
	POST /dedup - Duplicate search over posted records

Voter roll:

	POST /records            - Register a person record
	GET  /records/{id}       - Get a record
	GET  /records/duplicates - Duplicate search over stored records

# Admin Routes

Admin routes are wrapped in middleware.RequireAdminKey, so their handlers
never see a request whose key does not match the {id} in the path.
*/
package router
