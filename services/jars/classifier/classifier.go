// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package classifier answers "is this position safe, and if not, how do I
// reduce it to a safe one" against a prebuilt safe-position source.
//
// # Description
//
// A source is either a sieve table (any jar count) or a two-jar Wythoff
// table. Classification never mutates the source, so one Classifier may
// serve any number of goroutines.
//
// # Move Tie-Break
//
// A reducible position may be reachable from its ancestor by more than one
// move. The reported move is the first in moves.All order: smaller jar
// subsets first, then lexicographic subset order, then smaller magnitudes.
// No minimality is implied.
package classifier

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/jars/services/jars/moves"
	"github.com/AleutianAI/jars/services/jars/position"
)

// SafeSource is a read-only table of safe positions.
//
// Both *sieve.Table and *wythoff.Source satisfy it.
type SafeSource interface {
	// Jars returns the number of jars every query must have.
	Jars() int

	// Bound returns the exclusive coordinate bound of the analyzed space.
	Bound() int

	// MaxMove returns the largest per-jar magnitude a move may take.
	MaxMove() int

	// IsSafe reports whether the canonical position p is safe.
	IsSafe(p position.Position) bool

	// Ancestor returns the safe position whose closure holds p.
	Ancestor(p position.Position) (position.Position, bool)
}

// Status is the outcome of a classification.
type Status string

const (
	// StatusSafe means the player to move loses under optimal play.
	StatusSafe Status = "SAFE"

	// StatusReducible means a single move reaches a safe position.
	StatusReducible Status = "REDUCIBLE"

	// StatusUnclassified means the source has no answer for the position.
	// Only possible for sources that do not cover their whole bound.
	StatusUnclassified Status = "UNCLASSIFIED"
)

// Result is the classification of one query.
type Result struct {
	// Query is the canonical form of the query.
	Query position.Position `json:"query"`

	// Status is the outcome.
	Status Status `json:"status"`

	// Ancestor is the safe position to move to. Set only for
	// StatusReducible.
	Ancestor position.Position `json:"ancestor,omitempty"`

	// Move satisfies canonical(Ancestor + Move) == Query. Set only for
	// StatusReducible. Its entries index the jars of Ancestor, not Query.
	Move moves.Move `json:"move,omitempty"`
}

// BatchItem pairs a batch result with its per-query error.
type BatchItem struct {
	Result Result
	Err    error
}

// =============================================================================
// Classifier
// =============================================================================

type options struct {
	concurrency int
	logger      *slog.Logger
}

// Option configures a Classifier.
type Option func(*options)

// WithConcurrency bounds the number of goroutines ClassifyBatch uses.
// Values below 1 are ignored. Defaults to 8.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Classifier classifies positions against one SafeSource.
//
// # Thread Safety
//
// Safe for concurrent use as long as the source is immutable.
type Classifier struct {
	source SafeSource
	opts   options
}

// New returns a Classifier over source.
func New(source SafeSource, opts ...Option) *Classifier {
	o := options{concurrency: 8, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Classifier{source: source, opts: o}
}

// Source returns the source the classifier reads.
func (c *Classifier) Source() SafeSource {
	return c.source
}

// Classify reports the status of query and, when reducible, the safe
// ancestor and a move.
//
// # Inputs
//
//   - ctx: Used for metrics only; classification does not block.
//   - query: Cookie counts in any order. Must have Jars() entries, each in
//     [0, Bound()).
//
// # Outputs
//
//   - Result: The classification.
//   - error: *QueryError (ErrInvalidQuery) for a malformed query, or
//     ErrInconsistentSource if the source named an unreachable ancestor.
//
// # Examples
//
//	res, err := c.Classify(ctx, position.Position{7, 2})
//	// res.Status == StatusReducible, res.Ancestor == (1, 2), res.Move == [6 0]
func (c *Classifier) Classify(ctx context.Context, query position.Position) (Result, error) {
	if err := c.validate(query); err != nil {
		recordOutcome(ctx, "invalid")
		return Result{}, err
	}

	q := position.Canonical(query)
	res := Result{Query: q}

	if c.source.IsSafe(q) {
		res.Status = StatusSafe
		recordOutcome(ctx, string(res.Status))
		return res, nil
	}

	ancestor, ok := c.source.Ancestor(q)
	if !ok {
		res.Status = StatusUnclassified
		recordOutcome(ctx, string(res.Status))
		c.opts.logger.Warn("position not covered by source", "query", q.String())
		return res, nil
	}

	move, ok := reducingMove(ancestor, q, c.source.MaxMove())
	if !ok {
		c.opts.logger.Error("ancestor does not reach query",
			"query", q.String(), "ancestor", ancestor.String())
		return Result{}, fmt.Errorf("%w: %v does not reach %v in one move", ErrInconsistentSource, ancestor, q)
	}

	res.Status = StatusReducible
	res.Ancestor = ancestor
	res.Move = move
	recordOutcome(ctx, string(res.Status))
	return res, nil
}

// ClassifyBatch classifies every query concurrently.
//
// # Description
//
// Queries fan out over an errgroup limited by WithConcurrency. A bad query
// is reported in its own BatchItem and does not affect the others. Items
// keep the order of queries.
//
// # Outputs
//
//   - []BatchItem: One per query.
//   - error: ctx.Err() if the context ended before every query ran.
func (c *Classifier) ClassifyBatch(ctx context.Context, queries []position.Position) ([]BatchItem, error) {
	ctx, span := startBatchSpan(ctx, len(queries), c.source.Jars())
	defer span.End()

	items := make([]BatchItem, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.concurrency)

	for i, q := range queries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				items[i].Err = err
				return nil
			}
			items[i].Result, items[i].Err = c.Classify(gctx, q)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return items, err
	}
	span.SetStatus(codes.Ok, "")
	return items, nil
}

func (c *Classifier) validate(query position.Position) error {
	if len(query) != c.source.Jars() {
		return &QueryError{
			Query:  query.Clone(),
			Reason: fmt.Sprintf("expected %d jars, got %d", c.source.Jars(), len(query)),
		}
	}
	bound := c.source.Bound()
	for _, v := range query {
		if v < 0 || v >= bound {
			return &QueryError{
				Query:  query.Clone(),
				Reason: fmt.Sprintf("jar value %d outside [0, %d)", v, bound),
			}
		}
	}
	return nil
}

// reducingMove returns the first move in enumeration order that takes
// ancestor to query.
func reducingMove(ancestor, query position.Position, maxMove int) (moves.Move, bool) {
	for m := range moves.All(len(query), maxMove) {
		reached, err := moves.Apply(ancestor, m)
		if err != nil {
			return nil, false
		}
		if reached.Equal(query) {
			return m, true
		}
	}
	return nil, false
}
