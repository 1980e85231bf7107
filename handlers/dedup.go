// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/countroll/cliparse"
	"github.com/danielhkuo/countroll/dedup"
	"github.com/danielhkuo/countroll/metrics"
	"github.com/danielhkuo/countroll/middleware"
	"github.com/danielhkuo/countroll/models"
	"github.com/dustin/go-humanize"
)

// NewFinder builds the duplicate finder described by cfg.
// Every completed search is logged and reported to m.
func NewFinder(cfg cliparse.Config, m *metrics.Metrics) *dedup.Finder {
	var names dedup.NameMatcher = dedup.NameSimilarity
	if cfg.NameMatcher == cliparse.MatcherJaroWinkler {
		names = dedup.JaroWinkler
	}

	return dedup.New(
		dedup.WithNameMatcher(names),
		dedup.WithWorkers(cfg.DedupWorkers),
		dedup.WithObserver(func(s dedup.Stats) {
			m.ObserveDedup(s.Comparisons, s.Emitted, s.Duration)
			slog.Info("duplicate search finished",
				"records", humanize.Comma(int64(s.Records)),
				"blocks", s.Blocks,
				"comparisons", humanize.Comma(int64(s.Comparisons)),
				"candidates", s.Emitted,
				"duration", s.Duration,
			)
		}),
	)
}

// DedupHandler scores posted records without storing them
type DedupHandler struct {
	cfg    cliparse.Config
	finder *dedup.Finder
}

func NewDedupHandler(cfg cliparse.Config, finder *dedup.Finder) *DedupHandler {
	return &DedupHandler{cfg: cfg, finder: finder}
}

// FindDuplicates handles POST /dedup
func (h *DedupHandler) FindDuplicates(w http.ResponseWriter, r *http.Request) {
	var req models.DedupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	threshold := h.cfg.DedupThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	runFinder(w, r, h.finder, req.Records, threshold)
}

// runFinder runs a search and writes the response shared by both dedup endpoints
func runFinder(w http.ResponseWriter, r *http.Request, finder *dedup.Finder, records []dedup.PersonRecord, threshold float64) {
	candidates, err := finder.Find(r.Context(), records, threshold)
	if errors.Is(err, dedup.ErrInvalidThreshold) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if errors.Is(err, context.Canceled) {
		slog.Warn("duplicate search abandoned by client", "records", len(records))
		return
	}
	if err != nil {
		slog.Error("duplicate search failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Duplicate search failed")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.DedupResponse{
		Threshold:  threshold,
		Candidates: candidates,
	})
}
