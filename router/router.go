// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/countroll/cliparse"
	"github.com/danielhkuo/countroll/handlers"
	"github.com/danielhkuo/countroll/metrics"
	"github.com/danielhkuo/countroll/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter registers every endpoint. Metrics are registered with reg and
// served from it at /metrics.
func NewRouter(db *sql.DB, cfg cliparse.Config, reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()

	m := metrics.New(reg)
	finder := handlers.NewFinder(cfg, m)

	// Initialize handlers
	electionHandler := handlers.NewElectionHandler(db, cfg, m)
	ballotHandler := handlers.NewBallotHandler(db, cfg, m)
	resultsHandler := handlers.NewResultsHandler(db, cfg)
	stationHandler := handlers.NewStationHandler(db, cfg)
	countHandler := handlers.NewCountHandler(m)
	dedupHandler := handlers.NewDedupHandler(cfg, finder)
	recordHandler := handlers.NewRecordHandler(db, cfg, finder)

	adminOnly := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdminKey(cfg.AdminKeySalt, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Election management (admin operations)
	mux.HandleFunc("POST /elections", middleware.WithLogging(electionHandler.CreateElection))
	mux.HandleFunc("GET /elections/{id}/admin", adminOnly(electionHandler.GetElectionAdmin))
	mux.HandleFunc("POST /elections/{id}/candidates", adminOnly(electionHandler.AddCandidate))
	mux.HandleFunc("POST /elections/{id}/publish", adminOnly(electionHandler.PublishElection))
	mux.HandleFunc("POST /elections/{id}/close", adminOnly(electionHandler.CloseElection))

	// Ballots (public)
	mux.HandleFunc("POST /elections/{slug}/ballots", middleware.WithLogging(ballotHandler.SubmitBallot))

	// Results retrieval (public, sealed until close)
	mux.HandleFunc("GET /elections/{slug}", middleware.WithLogging(resultsHandler.GetElection))
	mux.HandleFunc("GET /elections/{slug}/results", middleware.WithLogging(resultsHandler.GetResults))
	mux.HandleFunc("GET /elections/{slug}/ballot-count", middleware.WithLogging(resultsHandler.GetBallotCount))
	mux.HandleFunc("GET /elections/{slug}/preview", middleware.WithLogging(resultsHandler.GetPreview))

	// Polling stations
	mux.HandleFunc("POST /stations/register", middleware.WithLogging(stationHandler.Register))
	mux.HandleFunc("GET /stations/me", middleware.WithLogging(stationHandler.GetMe))
	mux.HandleFunc("GET /stations/me/elections", middleware.WithLogging(stationHandler.GetMyElections))

	// Stateless tools
	mux.HandleFunc("POST /count", middleware.WithLogging(countHandler.Count))
	mux.HandleFunc("POST /dedup", middleware.WithLogging(dedupHandler.FindDuplicates))

	// Voter roll
	mux.HandleFunc("POST /records", middleware.WithLogging(recordHandler.RegisterRecord))
	mux.HandleFunc("GET /records/duplicates", middleware.WithLogging(recordHandler.FindDuplicates))
	mux.HandleFunc("GET /records/{id}", middleware.WithLogging(recordHandler.GetRecord))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("countroll API v1"))
	})

	return mux
}
