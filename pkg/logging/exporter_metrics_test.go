// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestMetricsExporter_CountsFromMinLevel(t *testing.T) {
	service := "jars-metrics-test"
	warn := logEntries.WithLabelValues(service, "WARN")
	errs := logEntries.WithLabelValues(service, "ERROR")
	info := logEntries.WithLabelValues(service, "INFO")
	beforeWarn, beforeErr, beforeInfo := testutil.ToFloat64(warn), testutil.ToFloat64(errs), testutil.ToFloat64(info)

	logger := New(Config{Quiet: true, Service: service, Level: LevelInfo, Exporter: NewMetricsExporter(LevelWarn)})
	logger.Info("below exporter level")
	logger.Warn("slow build", "duration_ms", 900)
	logger.Error("inconsistent table")
	logger.Error("inconsistent table")
	require.NoError(t, logger.Close())

	assert.Equal(t, beforeInfo, testutil.ToFloat64(info))
	assert.Equal(t, beforeWarn+1, testutil.ToFloat64(warn))
	assert.Equal(t, beforeErr+2, testutil.ToFloat64(errs))
}

func TestMetricsExporter_SpanEvents(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	logger := New(Config{Quiet: true, Service: "jars", Exporter: NewMetricsExporter(LevelError)})

	ctx, span := tp.Tracer("logging.test").Start(context.Background(), "request")
	logger.Slog().WarnContext(ctx, "ignored")
	logger.Slog().ErrorContext(ctx, "strategy found no move", "a", 2, "b", 9)
	span.End()

	// No span in ctx: counted only.
	logger.Error("no span")

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	events := ended[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "log", events[0].Name)

	attrs := map[string]string{}
	for _, kv := range events[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "ERROR", attrs["log.severity"])
	assert.Equal(t, "strategy found no move", attrs["log.message"])
	assert.Equal(t, "2", attrs["a"])
	assert.Equal(t, "9", attrs["b"])
}
