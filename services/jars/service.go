// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package jars provides the cookie-jar analysis service.
//
// The service exposes endpoints for:
//   - Classifying positions as safe or reducible
//   - Listing the safe positions of a bounded table
//   - Listing the two-jar pair table
//   - Choosing the two-jar strategy move
//
// Built tables are cached in memory for the life of the process.
package jars

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AleutianAI/jars/pkg/telemetry"
	"github.com/AleutianAI/jars/services/jars/classifier"
	"github.com/AleutianAI/jars/services/jars/position"
	"github.com/AleutianAI/jars/services/jars/sieve"
	"github.com/AleutianAI/jars/services/jars/strategy"
	"github.com/AleutianAI/jars/services/jars/wythoff"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// ServiceVersion is the jars service version.
const ServiceVersion = "1.0.0"

const tracerName = "jars.service"

// Source names the table kind behind an analysis.
type Source string

const (
	// SourceSieve is the brute-force sieve, any number of jars.
	SourceSieve Source = "sieve"

	// SourceWythoff is the two-jar pair table.
	SourceWythoff Source = "wythoff"
)

// ServiceConfig configures the jars service.
type ServiceConfig struct {
	// MaxJars is the largest jar count accepted.
	// Default: 6
	MaxJars int

	// MaxCookies is the largest per-jar bound accepted.
	// Default: 100000
	MaxCookies int

	// MaxStates caps the canonical positions a sieve build may visit.
	// Default: 250000
	MaxStates int

	// MaxBatch is the largest batch accepted by ClassifyBatch.
	// Default: 1000
	MaxBatch int

	// BatchConcurrency is the worker limit for ClassifyBatch.
	// Default: 8
	BatchConcurrency int

	// PreferPairs answers two-jar requests from the pair table instead of
	// the sieve.
	// Default: true
	PreferPairs bool
}

// DefaultServiceConfig returns sensible defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxJars:          6,
		MaxCookies:       100000,
		MaxStates:        250000,
		MaxBatch:         1000,
		BatchConcurrency: 8,
		PreferPairs:      true,
	}
}

// Analysis is one built, immutable safe table.
type Analysis struct {
	Jars       int
	MaxCookies int
	Source     Source
	BuiltAt    time.Time
	Duration   time.Duration

	sieve  *sieve.Table
	pairs  *wythoff.Table
	source classifier.SafeSource
}

// SafeSource returns the table as a classifier source.
func (a *Analysis) SafeSource() classifier.SafeSource { return a.source }

// Sieve returns the sieve table, or nil for a pair-table analysis.
func (a *Analysis) Sieve() *sieve.Table { return a.sieve }

// PairTable returns the pair table, or nil for a sieve analysis.
func (a *Analysis) PairTable() *wythoff.Table { return a.pairs }

// Safe returns the safe positions with every jar in [0, MaxCookies], in
// sorted order.
func (a *Analysis) Safe() []position.Position {
	if a.sieve != nil {
		return a.sieve.Safe()
	}
	var out []position.Position
	for _, p := range a.pairs.Pairs() {
		if p.B > a.MaxCookies {
			break
		}
		out = append(out, position.Position{p.A, p.B})
	}
	return out
}

// Service is the jars service.
//
// Thread Safety:
//
//	Service is safe for concurrent use. Concurrent requests for the same
//	table share one build.
type Service struct {
	logger *slog.Logger

	configMu sync.RWMutex
	config   ServiceConfig

	group    singleflight.Group
	cacheMu  sync.RWMutex
	analyses map[string]*Analysis
	pairs    map[int]*wythoff.Table
}

// NewService creates a jars service.
//
// Description:
//
//	Creates a service with the given configuration and an empty cache.
//
// Inputs:
//
//	config - Service configuration
//	logger - Destination for service logs. Nil uses slog.Default().
//
// Outputs:
//
//	*Service - The configured service
func NewService(config ServiceConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger:   logger.With("component", "jars.service"),
		config:   config,
		analyses: make(map[string]*Analysis),
		pairs:    make(map[int]*wythoff.Table),
	}
}

// Config returns the current configuration.
func (s *Service) Config() ServiceConfig {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.config
}

// UpdateConfig replaces the configuration. Cached tables are kept; the new
// limits apply to subsequent requests.
func (s *Service) UpdateConfig(config ServiceConfig) {
	s.configMu.Lock()
	s.config = config
	s.configMu.Unlock()
	s.logger.Info("service config updated",
		"max_jars", config.MaxJars,
		"max_cookies", config.MaxCookies,
		"max_states", config.MaxStates,
		"prefer_pairs", config.PreferPairs,
	)
}

// CacheSize returns the number of cached tables.
func (s *Service) CacheSize() int {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return len(s.analyses) + len(s.pairs)
}

// Analysis returns the table for jars and maxCookies, building it on first
// use.
//
// Description:
//
//	Two-jar requests use the pair table when PreferPairs is set; everything
//	else runs the sieve. Concurrent callers for the same table wait on a
//	single build.
//
// Inputs:
//
//	ctx - Bounds how long this caller waits. The build itself is shared
//	and is not cancelled with ctx.
//	jars - Number of jars. Must be in [1, MaxJars].
//	maxCookies - Per-jar bound. Must be in [0, MaxCookies].
//
// Outputs:
//
//	*Analysis - The immutable table.
//	error - position.ErrInvalidShape, ErrBoundsTooLarge, or a build error.
func (s *Service) Analysis(ctx context.Context, jars, maxCookies int) (*Analysis, error) {
	cfg := s.Config()
	src := sourceFor(cfg, jars)
	if err := checkBounds(cfg, src, jars, maxCookies); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%d/%d", src, jars, maxCookies)
	if a, ok := s.cachedAnalysis(key); ok {
		return a, nil
	}

	v, err := s.shared(ctx, key, func(buildCtx context.Context) (any, error) {
		if a, ok := s.cachedAnalysis(key); ok {
			return a, nil
		}
		a, err := s.build(buildCtx, src, jars, maxCookies)
		if err != nil {
			return nil, err
		}
		s.cacheMu.Lock()
		s.analyses[key] = a
		cachedAnalyses.Set(float64(len(s.analyses) + len(s.pairs)))
		s.cacheMu.Unlock()
		return a, nil
	})
	if err != nil {
		return nil, err
	}

	a, ok := v.(*Analysis)
	if !ok {
		return nil, fmt.Errorf("unexpected type from analysis group: got %T", v)
	}
	return a, nil
}

// shared runs fn once per key for all concurrent callers.
//
// fn runs under a context detached from the first caller's cancellation.
// Each caller stops waiting when its own ctx is done; the build still
// finishes and is cached. A caller whose ctx is already done never starts a
// build.
func (s *Service) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buildCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		return fn(buildCtx)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		s.logger.Debug("caller left shared build", "key", key, "error", ctx.Err())
		return nil, ctx.Err()
	}
}

func (s *Service) cachedAnalysis(key string) (*Analysis, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	a, ok := s.analyses[key]
	return a, ok
}

func (s *Service) build(ctx context.Context, src Source, jars, maxCookies int) (*Analysis, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "Service.build",
		trace.WithAttributes(
			attribute.String("jars.source", string(src)),
			attribute.Int("jars.jars", jars),
			attribute.Int("jars.max_cookies", maxCookies),
		),
	)
	defer span.End()

	start := time.Now()
	a := &Analysis{Jars: jars, MaxCookies: maxCookies, Source: src}

	var err error
	switch src {
	case SourceWythoff:
		a.pairs, err = wythoff.BuildTable(maxCookies)
		if err == nil {
			a.source = a.pairs.Source()
		}
	default:
		a.sieve, err = sieve.Build(ctx, jars, maxCookies, sieve.WithLogger(s.logger))
		if err == nil {
			a.source = a.sieve
		}
	}

	a.BuiltAt = time.Now()
	a.Duration = a.BuiltAt.Sub(start)
	analysisBuildDuration.WithLabelValues(string(src)).Observe(a.Duration.Seconds())

	if err != nil {
		analysisBuilds.WithLabelValues(string(src), "error").Inc()
		if errors.Is(err, sieve.ErrInconsistentTable) {
			invariantViolations.Inc()
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("build %s table for %d jars up to %d: %w", src, jars, maxCookies, err)
	}

	analysisBuilds.WithLabelValues(string(src), "ok").Inc()
	telemetry.SetSpanOK(span)
	s.logger.Info("analysis built",
		"source", src,
		"jars", jars,
		"max_cookies", maxCookies,
		"duration_ms", a.Duration.Milliseconds(),
	)
	return a, nil
}

// Pairs returns the pair table covering every jar size up to bound.
//
// Outputs:
//
//	*wythoff.Table - The immutable table.
//	error - wythoff.ErrInvalidBound or ErrBoundsTooLarge.
func (s *Service) Pairs(ctx context.Context, bound int) (*wythoff.Table, error) {
	cfg := s.Config()
	if bound < 0 {
		return nil, fmt.Errorf("%w: %d", wythoff.ErrInvalidBound, bound)
	}
	if bound > cfg.MaxCookies {
		return nil, fmt.Errorf("%w: bound %d > %d", ErrBoundsTooLarge, bound, cfg.MaxCookies)
	}

	s.cacheMu.RLock()
	t, ok := s.pairs[bound]
	s.cacheMu.RUnlock()
	if ok {
		return t, nil
	}

	v, err := s.shared(ctx, fmt.Sprintf("pairs/%d", bound), func(buildCtx context.Context) (any, error) {
		_, span := telemetry.StartSpan(buildCtx, tracerName, "Service.Pairs",
			trace.WithAttributes(attribute.Int("jars.bound", bound)))
		defer span.End()

		t, err := wythoff.BuildTable(bound)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		s.cacheMu.Lock()
		s.pairs[bound] = t
		cachedAnalyses.Set(float64(len(s.analyses) + len(s.pairs)))
		s.cacheMu.Unlock()
		telemetry.SetSpanOK(span)
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	t, ok = v.(*wythoff.Table)
	if !ok {
		return nil, fmt.Errorf("unexpected type from pairs group: got %T", v)
	}
	return t, nil
}

// Classify classifies one position against the table for jars and
// maxCookies.
//
// Outputs:
//
//	*ClassifyResponse - The classification and the table source.
//	error - Analysis errors, *classifier.QueryError, or
//	classifier.ErrInconsistentSource.
func (s *Service) Classify(ctx context.Context, jars, maxCookies int, query []int) (*ClassifyResponse, error) {
	a, err := s.Analysis(ctx, jars, maxCookies)
	if err != nil {
		return nil, err
	}

	c := classifier.New(a.source, classifier.WithLogger(s.logger))
	res, err := c.Classify(ctx, position.Position(query))
	if err != nil {
		s.countClassifyError(err)
		return nil, err
	}
	classifications.WithLabelValues(string(res.Status)).Inc()
	return &ClassifyResponse{Result: res, Source: a.Source}, nil
}

// ClassifyBatch classifies many positions against one table. Per-query
// failures are reported in their items.
//
// Outputs:
//
//	*ClassifyBatchResponse - One item per query, in order.
//	error - Analysis errors, ErrBatchTooLarge, or a context error.
func (s *Service) ClassifyBatch(ctx context.Context, jars, maxCookies int, queries [][]int) (*ClassifyBatchResponse, error) {
	cfg := s.Config()
	if len(queries) > cfg.MaxBatch {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(queries), cfg.MaxBatch)
	}

	a, err := s.Analysis(ctx, jars, maxCookies)
	if err != nil {
		return nil, err
	}

	positions := make([]position.Position, len(queries))
	for i, q := range queries {
		positions[i] = position.Position(q)
	}

	c := classifier.New(a.source,
		classifier.WithConcurrency(cfg.BatchConcurrency),
		classifier.WithLogger(s.logger),
	)
	items, err := c.ClassifyBatch(ctx, positions)
	if err != nil {
		return nil, err
	}

	resp := &ClassifyBatchResponse{Source: a.Source, Items: make([]BatchItemResponse, len(items))}
	for i, item := range items {
		resp.Items[i].Index = i
		if item.Err != nil {
			s.countClassifyError(item.Err)
			resp.Items[i].Error = item.Err.Error()
			resp.Failed++
			continue
		}
		classifications.WithLabelValues(string(item.Result.Status)).Inc()
		res := item.Result
		resp.Items[i].Result = &res
	}
	return resp, nil
}

func (s *Service) countClassifyError(err error) {
	if errors.Is(err, classifier.ErrInconsistentSource) {
		invariantViolations.Inc()
		return
	}
	classifications.WithLabelValues("invalid").Inc()
}

// Strategy chooses the computer's move from the two-jar position (a, b).
//
// Outputs:
//
//	*StrategyResponse - The move in the caller's jar order.
//	error - strategy.ErrOutOfRange, ErrBoundsTooLarge, or
//	*strategy.ConfusedError wrapping strategy.ErrAlreadySafe when (a, b) is
//	already a pair, or strategy.ErrConfused for a broken table.
func (s *Service) Strategy(ctx context.Context, a, b int) (*StrategyResponse, error) {
	if a < 0 || b < 0 {
		strategyDecisions.WithLabelValues("out_of_range").Inc()
		return nil, fmt.Errorf("%w: (%d, %d)", strategy.ErrOutOfRange, a, b)
	}

	table, err := s.Pairs(ctx, max(a, b))
	if err != nil {
		return nil, err
	}

	d, err := strategy.Choose(a, b, table)
	if err != nil {
		switch {
		case errors.Is(err, strategy.ErrAlreadySafe):
			strategyDecisions.WithLabelValues("already_safe").Inc()
		case errors.Is(err, strategy.ErrConfused):
			strategyDecisions.WithLabelValues("confused").Inc()
			invariantViolations.Inc()
			s.logger.ErrorContext(ctx, "strategy found no move", "a", a, "b", b, "error", err)
		case errors.Is(err, strategy.ErrOutOfRange):
			strategyDecisions.WithLabelValues("out_of_range").Inc()
		}
		return nil, err
	}

	strategyDecisions.WithLabelValues(string(d.Branch)).Inc()
	return &StrategyResponse{
		Take:   [2]int{d.TakeA, d.TakeB},
		Target: [2]int{d.Target.A, d.Target.B},
		Branch: d.Branch,
	}, nil
}

// Safes lists the safe positions for jars and maxCookies, optionally with
// each position shifted down by its minimum.
func (s *Service) Safes(ctx context.Context, jars, maxCookies int, normalise bool) (*SafesResponse, error) {
	a, err := s.Analysis(ctx, jars, maxCookies)
	if err != nil {
		return nil, err
	}

	safes := a.Safe()
	resp := &SafesResponse{
		Jars:       jars,
		MaxCookies: maxCookies,
		Source:     a.Source,
		Count:      len(safes),
		Safes:      safes,
	}
	if normalise {
		resp.Normalised = make([]position.Position, len(safes))
		for i, p := range safes {
			resp.Normalised[i] = p.Normalised()
		}
	}
	return resp, nil
}

func sourceFor(cfg ServiceConfig, jars int) Source {
	if jars == 2 && cfg.PreferPairs {
		return SourceWythoff
	}
	return SourceSieve
}

func checkBounds(cfg ServiceConfig, src Source, jars, maxCookies int) error {
	if jars < 1 || maxCookies < 0 {
		return fmt.Errorf("%w: jars=%d max_cookies=%d", position.ErrInvalidShape, jars, maxCookies)
	}
	if jars > cfg.MaxJars {
		return fmt.Errorf("%w: jars %d > %d", ErrBoundsTooLarge, jars, cfg.MaxJars)
	}
	if maxCookies > cfg.MaxCookies {
		return fmt.Errorf("%w: max_cookies %d > %d", ErrBoundsTooLarge, maxCookies, cfg.MaxCookies)
	}
	if src == SourceSieve && !withinStates(jars, maxCookies, cfg.MaxStates) {
		return fmt.Errorf("%w: more than %d states for %d jars up to %d",
			ErrBoundsTooLarge, cfg.MaxStates, jars, maxCookies)
	}
	return nil
}

// withinStates reports whether C(maxCookies+jars, jars) <= limit without
// overflowing.
func withinStates(jars, maxCookies, limit int) bool {
	count := 1
	for i := 1; i <= jars; i++ {
		count = count * (maxCookies + i) / i
		if count > limit {
			return false
		}
	}
	return true
}
