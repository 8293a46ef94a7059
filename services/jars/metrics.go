// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package jars

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Prometheus Metrics for the jars service
// =============================================================================

var (
	// analysisBuilds counts analysis builds.
	// Labels: source (sieve, wythoff), status (ok, error)
	analysisBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jars",
		Subsystem: "analysis",
		Name:      "builds_total",
		Help:      "Total safe-table builds by source and status",
	}, []string{"source", "status"})

	// analysisBuildDuration measures how long a build took.
	analysisBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "jars",
		Subsystem: "analysis",
		Name:      "build_duration_seconds",
		Help:      "Safe-table build time in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	}, []string{"source"})

	// cachedAnalyses is the number of tables held in memory.
	cachedAnalyses = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "jars",
		Subsystem: "analysis",
		Name:      "cached",
		Help:      "Number of cached safe tables",
	})

	// classifications counts classified queries by outcome.
	// Labels: status (SAFE, REDUCIBLE, UNCLASSIFIED, invalid)
	classifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jars",
		Subsystem: "service",
		Name:      "classifications_total",
		Help:      "Total classifications served by outcome",
	}, []string{"status"})

	// strategyDecisions counts strategy moves by branch.
	// Labels: branch (diagonal, single, confused, out_of_range)
	strategyDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jars",
		Subsystem: "service",
		Name:      "strategy_decisions_total",
		Help:      "Total strategy decisions by branch",
	}, []string{"branch"})

	// invariantViolations counts inconsistent tables and sources.
	invariantViolations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "jars",
		Subsystem: "service",
		Name:      "invariant_violations_total",
		Help:      "Total inconsistent tables or sources detected",
	})
)
