// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package metrics defines the Prometheus metrics for counts and duplicate
searches.

Metrics are registered with the registry passed to New, so tests can use a
fresh prometheus.NewRegistry each time:

	m := metrics.New(reg)
	m.ObserveCount("election", result.TotalRounds(), len(ballots))

Every method is safe to call on a nil *Metrics.
*/
package metrics
