// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package wythoff

import (
	"slices"

	"github.com/AleutianAI/jars/services/jars/position"
)

// Source exposes a Table as a two-jar safe-position source for the
// classifier.
//
// # Description
//
// Membership and ancestors are answered from the pair index without
// enumerating closures. The ancestor of an unsafe position is the
// lexicographically smallest pair it can be reduced to, which is the same
// ancestor a two-jar sieve built to the same bound reports.
//
// Positions are accepted with both jars in [0, Bound()), and any number of
// cookies up to the table bound may be taken in one move.
type Source struct {
	table *Table
}

// Source returns the classifier view of t.
func (t *Table) Source() *Source {
	return &Source{table: t}
}

// Table returns the underlying pair table.
func (s *Source) Table() *Table { return s.table }

// Jars always returns 2.
func (s *Source) Jars() int { return 2 }

// Bound returns the exclusive coordinate bound, Table().Bound()+1.
func (s *Source) Bound() int { return s.table.bound + 1 }

// MaxMove returns the table bound.
func (s *Source) MaxMove() int { return s.table.bound }

// IsSafe reports whether p is a two-jar pair of the table.
func (s *Source) IsSafe(p position.Position) bool {
	return len(p) == 2 && s.table.IsPair(p[0], p[1])
}

// Ancestor returns the smallest pair, in lexicographic order, that reaches p
// with one move.
//
// # Description
//
// A pair (x, y) reaches (lo, hi) in one move when
//
//   - it lies on the same diagonal: y-x == hi-lo and x < lo;
//   - it contains lo and its other coordinate is below hi; or
//   - it contains hi and its other coordinate is below lo.
//
// Partition makes each of those candidates unique, so at most three pairs
// are compared.
func (s *Source) Ancestor(p position.Position) (position.Position, bool) {
	if len(p) != 2 || s.IsSafe(p) {
		return nil, false
	}
	lo, hi := min(p[0], p[1]), max(p[0], p[1])
	if lo < 0 {
		return nil, false
	}

	var candidates []position.Position
	add := func(a, b int) {
		candidates = append(candidates, position.Position{min(a, b), max(a, b)})
	}

	t := s.table
	if diff := hi - lo; diff < len(t.pairs) && t.pairs[diff].A < lo {
		d := t.pairs[diff]
		add(d.A, d.B)
	}
	if pair, ok := t.PairOf(lo); ok {
		if other := pair.Other(lo); other < hi {
			add(lo, other)
		}
	}
	if pair, ok := t.PairOf(hi); ok {
		if other := pair.Other(hi); other < lo {
			add(other, hi)
		}
	}

	if len(candidates) == 0 {
		return nil, false
	}
	return slices.MinFunc(candidates, position.Compare), true
}
