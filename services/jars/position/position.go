// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package position defines game positions for the cookie jar game and the
// enumerator that walks the canonical state space.
//
// # Description
//
// A position is the number of cookies in each jar. Jars are interchangeable,
// so two positions that are permutations of each other are the same game
// state. The canonical form is the ascending sort, and every position that is
// stored, compared, or hashed by the analysis packages goes through
// Canonical or Key first.
//
// # Thread Safety
//
// Position values are plain slices. Functions in this package never mutate
// their inputs; callers that share a Position across goroutines must not
// mutate it either.
package position

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidShape indicates a jar count or coordinate bound that cannot
// describe a state space (fewer than one jar, negative bound).
var ErrInvalidShape = errors.New("invalid position shape")

// Position is the cookie count of each jar.
type Position []int

// Key is the hashable form of a canonical Position.
//
// Keys compare equal exactly when the underlying positions are permutations
// of each other.
type Key string

// Zero returns the all-empty position for the given number of jars.
func Zero(jars int) Position {
	return make(Position, jars)
}

// Canonical returns a sorted copy of p.
//
// The input is never modified. A nil input yields an empty, non-nil
// Position.
func Canonical(p Position) Position {
	out := make(Position, len(p))
	copy(out, p)
	slices.Sort(out)
	return out
}

// IsCanonical reports whether p is sorted ascending.
func (p Position) IsCanonical() bool {
	return slices.IsSorted(p)
}

// Key returns the canonical hash key of p.
//
// # Description
//
// The key is built from the canonical form, so Key is safe to call on an
// unsorted position; the sort is skipped when p is already canonical.
//
// # Examples
//
//	Position{3, 1}.Key() == Position{1, 3}.Key() // true, "1,3"
func (p Position) Key() Key {
	c := p
	if !p.IsCanonical() {
		c = Canonical(p)
	}
	buf := make([]byte, 0, len(c)*3)
	for i, v := range c {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendInt(buf, int64(v), 10)
	}
	return Key(buf)
}

// Max returns the largest coordinate, or -1 for an empty position.
func (p Position) Max() int {
	if len(p) == 0 {
		return -1
	}
	return slices.Max(p)
}

// Min returns the smallest coordinate, or -1 for an empty position.
func (p Position) Min() int {
	if len(p) == 0 {
		return -1
	}
	return slices.Min(p)
}

// IsZero reports whether every jar is empty.
func (p Position) IsZero() bool {
	for _, v := range p {
		if v != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether p and q are the same game state.
func (p Position) Equal(q Position) bool {
	if len(p) != len(q) {
		return false
	}
	return p.Key() == q.Key()
}

// Clone returns an independent copy of p, preserving order.
func (p Position) Clone() Position {
	return slices.Clone(p)
}

// Normalised returns p shifted down by its minimum coordinate.
//
// Used only for display; the result is never fed back into a table.
func (p Position) Normalised() Position {
	out := p.Clone()
	if len(out) == 0 {
		return out
	}
	low := out.Min()
	for i := range out {
		out[i] -= low
	}
	return out
}

// String renders p as a tuple, e.g. "(1, 2)".
func (p Position) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.Itoa(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Compare orders positions lexicographically, shorter first on a shared
// prefix. Intended for slices.SortFunc over canonical positions.
func Compare(a, b Position) int {
	return slices.Compare(a, b)
}

// Count returns the number of canonical positions with the given number of
// jars and every coordinate in [0, maxCoordinate].
//
// # Description
//
// Canonical positions are multisets of size jars drawn from maxCoordinate+1
// values, so the count is C(maxCoordinate+jars, jars). Used by coverage
// checks.
func Count(jars, maxCoordinate int) (int, error) {
	if jars < 1 || maxCoordinate < 0 {
		return 0, fmt.Errorf("%w: jars=%d max=%d", ErrInvalidShape, jars, maxCoordinate)
	}
	n := maxCoordinate + jars
	result := 1
	for i := 1; i <= jars; i++ {
		result = result * (n - jars + i) / i
	}
	return result, nil
}
