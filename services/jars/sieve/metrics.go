// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sieve

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for sieve builds.
var (
	tracer = otel.Tracer("jars.sieve")
	meter  = otel.Meter("jars.sieve")
)

var (
	buildTotal    metric.Int64Counter
	buildDuration metric.Float64Histogram
	safeStates    metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		buildTotal, err = meter.Int64Counter(
			"sieve_build_total",
			metric.WithDescription("Total number of sieve builds"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		buildDuration, err = meter.Float64Histogram(
			"sieve_build_duration_seconds",
			metric.WithDescription("Duration of sieve builds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		safeStates, err = meter.Int64Histogram(
			"sieve_safe_states",
			metric.WithDescription("Safe positions found per build"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordBuild records one finished build.
func recordBuild(ctx context.Context, jars int, duration time.Duration, safe int, status string) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.Int("jars", jars),
		attribute.String("status", status),
	)
	buildTotal.Add(ctx, 1, attrs)
	buildDuration.Record(ctx, duration.Seconds(), attrs)
	if status == "ok" {
		safeStates.Record(ctx, int64(safe), metric.WithAttributes(attribute.Int("jars", jars)))
	}
}

// startBuildSpan creates a span for a sieve build.
func startBuildSpan(ctx context.Context, jars, maxCookies, maxMove int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Sieve.Build",
		trace.WithAttributes(
			attribute.Int("sieve.jars", jars),
			attribute.Int("sieve.max_cookies", maxCookies),
			attribute.Int("sieve.max_move", maxMove),
		),
	)
}
