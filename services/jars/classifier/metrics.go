// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package classifier

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("jars.classifier")
	meter  = otel.Meter("jars.classifier")
)

var (
	classifyTotal metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		classifyTotal, metricsErr = meter.Int64Counter(
			"classifier_queries_total",
			metric.WithDescription("Total number of classified queries by outcome"),
		)
	})
	return metricsErr
}

func recordOutcome(ctx context.Context, outcome string) {
	if err := initMetrics(); err != nil {
		return
	}
	classifyTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func startBatchSpan(ctx context.Context, size, jars int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Classifier.ClassifyBatch",
		trace.WithAttributes(
			attribute.Int("classifier.batch_size", size),
			attribute.Int("classifier.jars", jars),
		),
	)
}
