// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sieve classifies every position of the cookie jar game up to a
// coordinate bound by brute force.
//
// # Description
//
// The sieve walks positions in non-decreasing order of their largest jar.
// A position that no earlier safe position can reach is safe, and every
// position one move above it is marked unsafe. The result is a Table that
// answers safe/unsafe membership and names the safe ancestor of every unsafe
// position.
//
// The state count grows combinatorially with jars and bound and each safe
// position stores (2^jars - 1) * maxMove closure entries, so callers must keep
// (jars, maxCookies) small. For two jars the wythoff package is far cheaper.
//
// # Thread Safety
//
// Build is sequential. A Table returned by Build is immutable and safe for
// concurrent readers.
package sieve

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/jars/services/jars/moves"
	"github.com/AleutianAI/jars/services/jars/position"
)

// =============================================================================
// Options
// =============================================================================

type buildOptions struct {
	maxMove int
	logger  *slog.Logger
}

// Option configures Build.
type Option func(*buildOptions)

// WithMaxMove sets the largest number of cookies a single move may take from
// each chosen jar. Defaults to maxCookies.
func WithMaxMove(n int) Option {
	return func(o *buildOptions) {
		o.maxMove = n
	}
}

// WithLogger sets the logger used for build progress. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *buildOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// =============================================================================
// Table
// =============================================================================

// Table is the immutable result of a sieve build.
//
// # Description
//
// It holds the safe positions in discovery order and in sorted order, the
// closure of every safe position, and the ancestor index: for every unsafe
// position, the index into the sorted safe list of the first safe position
// whose closure contains it.
type Table struct {
	jars       int
	maxCookies int
	maxMove    int

	discovered []position.Position
	sorted     []position.Position
	closures   map[position.Key]map[position.Key]position.Position
	ancestors  map[position.Key]int
}

// Build runs the sieve for the given jar count and coordinate bound.
//
// # Description
//
// Every canonical position with each jar in [0, maxCookies] is visited in
// enumeration order. A position that is not yet unsafe is declared safe, its
// closure {canonical(s + m)} over all moves is recorded, and the closure is
// unioned into the unsafe set. After the walk the table is checked with
// Verify; an inconsistent table is never returned.
//
// # Inputs
//
//   - ctx: Checked between groups of equal maximum. Cancellation returns
//     ctx.Err() and no table.
//   - jars: Number of jars. Must be >= 1.
//   - maxCookies: Largest cookie count per jar. Must be >= 0.
//   - opts: WithMaxMove, WithLogger. The max move must be >= 1 unless
//     maxCookies is 0.
//
// # Outputs
//
//   - *Table: The verified table.
//   - error: position.ErrInvalidShape, a context error, or an
//     *InconsistencyError.
//
// # Examples
//
//	table, err := sieve.Build(ctx, 2, 10)
//	if err != nil {
//	    return err
//	}
//	table.IsSafe(position.Position{5, 3}) // true
func Build(ctx context.Context, jars, maxCookies int, opts ...Option) (*Table, error) {
	o := buildOptions{maxMove: maxCookies, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxMove < 0 || (maxCookies > 0 && o.maxMove < 1) {
		return nil, fmt.Errorf("%w: max move %d for max cookies %d", position.ErrInvalidShape, o.maxMove, maxCookies)
	}

	enum, err := position.NewEnumerator(jars, maxCookies)
	if err != nil {
		return nil, err
	}

	ctx, span := startBuildSpan(ctx, jars, maxCookies, o.maxMove)
	defer span.End()
	start := time.Now()

	logger := o.logger.With("jars", jars, "max_cookies", maxCookies, "max_move", o.maxMove)
	logger.Debug("sieve build starting")

	t, err := walk(ctx, enum, jars, maxCookies, o.maxMove)
	if err == nil {
		t.index()
		err = t.Verify()
	}

	duration := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		recordBuild(ctx, jars, duration, 0, "error")
		if ctx.Err() != nil {
			logger.Info("sieve build cancelled", "error", err)
		} else {
			logger.Error("sieve build failed", "error", err)
		}
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("sieve.safe_states", t.SafeCount()),
		attribute.Int("sieve.unsafe_states", t.UnsafeCount()),
	)
	span.SetStatus(codes.Ok, "")
	recordBuild(ctx, jars, duration, t.SafeCount(), "ok")
	logger.Info("sieve build complete",
		"safe_states", t.SafeCount(),
		"unsafe_states", t.UnsafeCount(),
		"duration_ms", duration.Milliseconds(),
	)
	return t, nil
}

// walk performs the sieve proper.
func walk(ctx context.Context, enum *position.Enumerator, jars, maxCookies, maxMove int) (*Table, error) {
	t := &Table{
		jars:       jars,
		maxCookies: maxCookies,
		maxMove:    maxMove,
		closures:   make(map[position.Key]map[position.Key]position.Position),
	}
	vectors := moves.Generate(jars, maxMove)
	unsafe := make(map[position.Key]struct{})

	group := -1
	for p, ok := enum.Next(); ok; p, ok = enum.Next() {
		if enum.Group() != group {
			group = enum.Group()
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		key := p.Key()
		if _, hit := unsafe[key]; hit {
			continue
		}

		closure := make(map[position.Key]position.Position, len(vectors))
		for _, m := range vectors {
			q, err := moves.Apply(p, m)
			if err != nil {
				return nil, err
			}
			qk := q.Key()
			closure[qk] = q
			unsafe[qk] = struct{}{}
		}
		t.discovered = append(t.discovered, p)
		t.closures[key] = closure
	}
	return t, nil
}

// index sorts the safe positions and assigns every closure member the first
// sorted safe position that reaches it.
func (t *Table) index() {
	t.sorted = slices.Clone(t.discovered)
	slices.SortFunc(t.sorted, position.Compare)

	t.ancestors = make(map[position.Key]int)
	for i, s := range t.sorted {
		for k := range t.closures[s.Key()] {
			if _, seen := t.ancestors[k]; !seen {
				t.ancestors[k] = i
			}
		}
	}
}

// Verify checks that no safe position lies in any closure, its own
// included.
//
// # Outputs
//
//   - error: nil, or an *InconsistencyError for the first offending safe
//     position in sorted order.
func (t *Table) Verify() error {
	for _, s := range t.sorted {
		if i, hit := t.ancestors[s.Key()]; hit {
			return &InconsistencyError{Safe: s.Clone(), Ancestor: t.sorted[i].Clone()}
		}
	}
	return nil
}

// =============================================================================
// Accessors
// =============================================================================

// Jars returns the jar count the table was built for.
func (t *Table) Jars() int { return t.jars }

// MaxCookies returns the inclusive coordinate bound.
func (t *Table) MaxCookies() int { return t.maxCookies }

// MaxMove returns the move magnitude bound.
func (t *Table) MaxMove() int { return t.maxMove }

// Bound returns the exclusive coordinate bound, MaxCookies()+1. Every
// position with all jars below Bound is classified.
func (t *Table) Bound() int { return t.maxCookies + 1 }

// Safe returns the safe positions in ascending lexicographic order.
//
// The returned slice is a copy; the positions themselves are shared and must
// not be modified.
func (t *Table) Safe() []position.Position {
	return slices.Clone(t.sorted)
}

// Discovered returns the safe positions in the order the sieve found them.
//
// The returned slice is a copy; the positions themselves are shared and must
// not be modified.
func (t *Table) Discovered() []position.Position {
	return slices.Clone(t.discovered)
}

// Closure returns the positions one move above the safe position p, sorted.
// Returns nil if p is not safe.
func (t *Table) Closure(p position.Position) []position.Position {
	closure, ok := t.closures[p.Key()]
	if !ok {
		return nil
	}
	out := make([]position.Position, 0, len(closure))
	for _, q := range closure {
		out = append(out, q.Clone())
	}
	slices.SortFunc(out, position.Compare)
	return out
}

// IsSafe reports whether p is a safe position.
func (t *Table) IsSafe(p position.Position) bool {
	_, ok := t.closures[p.Key()]
	return ok
}

// IsUnsafe reports whether p lies in the closure of some safe position.
//
// The unsafe set includes closure members above the coordinate bound.
func (t *Table) IsUnsafe(p position.Position) bool {
	_, ok := t.ancestors[p.Key()]
	return ok
}

// Classified reports whether p is either safe or unsafe.
func (t *Table) Classified(p position.Position) bool {
	return t.IsSafe(p) || t.IsUnsafe(p)
}

// Ancestor returns the first safe position, in sorted order, whose closure
// contains p.
func (t *Table) Ancestor(p position.Position) (position.Position, bool) {
	i, ok := t.ancestors[p.Key()]
	if !ok {
		return nil, false
	}
	return t.sorted[i].Clone(), true
}

// SafeCount returns the number of safe positions.
func (t *Table) SafeCount() int { return len(t.sorted) }

// UnsafeCount returns the size of the unsafe set, closure members above the
// bound included.
func (t *Table) UnsafeCount() int { return len(t.ancestors) }
