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
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var logEntries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "jars",
	Subsystem: "log",
	Name:      "entries_total",
	Help:      "Log entries at or above the exporter's minimum level",
}, []string{"service", "level"})

// MetricsExporter turns log entries into telemetry for a long-running
// process.
//
// # Description
//
// Entries at or above MinLevel are counted in jars_log_entries_total by
// service and level. When the log call carried a recording span (the
// *Context slog methods), the entry is also added to it as a "log" event,
// so a failed request shows its error lines in the trace.
//
// # Thread Safety
//
// Safe for concurrent use.
type MetricsExporter struct {
	minLevel Level
}

// NewMetricsExporter creates an exporter for entries at minLevel and above.
//
// # Example
//
//	logger := logging.New(logging.Config{
//	    Service:  "jars",
//	    Exporter: logging.NewMetricsExporter(logging.LevelWarn),
//	})
func NewMetricsExporter(minLevel Level) *MetricsExporter {
	return &MetricsExporter{minLevel: minLevel}
}

// Export counts the entry and annotates the span in ctx.
func (e *MetricsExporter) Export(ctx context.Context, entry LogEntry) error {
	if entry.Level < e.minLevel {
		return nil
	}
	logEntries.WithLabelValues(entry.Service, entry.Level.String()).Inc()

	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return nil
	}
	attrs := make([]attribute.KeyValue, 0, len(entry.Attrs)+2)
	attrs = append(attrs,
		attribute.String("log.severity", entry.Level.String()),
		attribute.String("log.message", entry.Message),
	)
	for k, v := range entry.Attrs {
		attrs = append(attrs, attribute.String(k, fmt.Sprint(v)))
	}
	span.AddEvent("log", trace.WithAttributes(attrs...))
	return nil
}

// Flush is a no-op; counters and span events are recorded immediately.
func (e *MetricsExporter) Flush(context.Context) error { return nil }

// Close is a no-op.
func (e *MetricsExporter) Close() error { return nil }

var _ LogExporter = (*MetricsExporter)(nil)
