// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package moves generates the legal move vectors of the cookie jar game.
//
// A move takes the same number of cookies m >= 1 from every jar in a
// non-empty subset of jars. As a vector it holds m at the chosen jars and 0
// elsewhere.
//
// # Enumeration Order
//
// Generate and All produce moves in a fixed order that callers may rely on
// as a tie-break:
//
//  1. Subsets by increasing size (single jars first).
//  2. Within a size, subsets in lexicographic order of their jar indices
//     ({0,1} before {0,2} before {1,2}).
//  3. Within a subset, magnitudes 1..maxMove ascending.
//
// For two jars and maxMove 2 the order is:
//
//	[1 0] [2 0] [0 1] [0 2] [1 1] [2 2]
package moves

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/AleutianAI/jars/services/jars/position"
)

// Sentinel errors for move construction and application.
var (
	// ErrInvalidMove indicates a vector that is not a legal move shape.
	ErrInvalidMove = errors.New("invalid move")

	// ErrArityMismatch indicates a move and position of different lengths.
	ErrArityMismatch = errors.New("move and position have different jar counts")

	// ErrInsufficientCookies indicates a move that would empty a jar below zero.
	ErrInsufficientCookies = errors.New("not enough cookies in jar")
)

// Move is a per-jar decrement vector.
type Move []int

// New builds the move that takes magnitude cookies from each listed jar.
//
// # Inputs
//
//   - jars: Total number of jars.
//   - piles: Indices of the jars to take from. Must be non-empty, in range,
//     and free of duplicates.
//   - magnitude: Cookies taken from each chosen jar. Must be >= 1.
//
// # Outputs
//
//   - Move: The move vector.
//   - error: ErrInvalidMove describing the problem.
func New(jars int, piles []int, magnitude int) (Move, error) {
	if magnitude < 1 {
		return nil, fmt.Errorf("%w: magnitude %d must be at least 1", ErrInvalidMove, magnitude)
	}
	if len(piles) == 0 {
		return nil, fmt.Errorf("%w: no jars chosen", ErrInvalidMove)
	}
	m := make(Move, jars)
	for _, idx := range piles {
		if idx < 0 || idx >= jars {
			return nil, fmt.Errorf("%w: jar index %d out of range [0,%d)", ErrInvalidMove, idx, jars)
		}
		if m[idx] != 0 {
			return nil, fmt.Errorf("%w: jar index %d listed twice", ErrInvalidMove, idx)
		}
		m[idx] = magnitude
	}
	return m, nil
}

// Validate checks the move shape: at least one nonzero entry, and every
// nonzero entry equal to the same positive magnitude.
func (m Move) Validate() error {
	magnitude := 0
	for i, v := range m {
		switch {
		case v < 0:
			return fmt.Errorf("%w: negative entry %d at jar %d", ErrInvalidMove, v, i)
		case v == 0:
		case magnitude == 0:
			magnitude = v
		case v != magnitude:
			return fmt.Errorf("%w: unequal amounts %d and %d", ErrInvalidMove, magnitude, v)
		}
	}
	if magnitude == 0 {
		return fmt.Errorf("%w: takes nothing", ErrInvalidMove)
	}
	return nil
}

// Magnitude returns the common nonzero entry, or 0 for the empty vector.
func (m Move) Magnitude() int {
	for _, v := range m {
		if v != 0 {
			return v
		}
	}
	return 0
}

// Piles returns the indices of the jars the move takes from.
func (m Move) Piles() []int {
	var out []int
	for i, v := range m {
		if v != 0 {
			out = append(out, i)
		}
	}
	return out
}

// String renders the vector, e.g. "[2 0 2]".
func (m Move) String() string {
	parts := make([]string, len(m))
	for i, v := range m {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Count returns the number of move vectors for the given shape:
// (2^jars - 1) * maxMove.
func Count(jars, maxMove int) int {
	if jars < 1 || maxMove < 1 {
		return 0
	}
	return ((1 << jars) - 1) * maxMove
}

// Generate returns every move vector for jars jars and magnitudes up to
// maxMove, in the package enumeration order.
//
// Returns nil when jars < 1 or maxMove < 1.
func Generate(jars, maxMove int) []Move {
	n := Count(jars, maxMove)
	if n == 0 {
		return nil
	}
	out := make([]Move, 0, n)
	for m := range All(jars, maxMove) {
		out = append(out, m)
	}
	return out
}

// All yields every move vector in the package enumeration order.
//
// Each yielded Move is freshly allocated. The sequence can be ranged over
// any number of times.
func All(jars, maxMove int) iter.Seq[Move] {
	return func(yield func(Move) bool) {
		if jars < 1 || maxMove < 1 {
			return
		}
		for size := 1; size <= jars; size++ {
			for subset := range combinations(jars, size) {
				for magnitude := 1; magnitude <= maxMove; magnitude++ {
					m := make(Move, jars)
					for _, idx := range subset {
						m[idx] = magnitude
					}
					if !yield(m) {
						return
					}
				}
			}
		}
	}
}

// combinations yields the size-element subsets of [0, n) in lexicographic
// order. The yielded slice is reused between iterations.
func combinations(n, size int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		idx := make([]int, size)
		for i := range idx {
			idx[i] = i
		}
		for {
			if !yield(idx) {
				return
			}
			i := size - 1
			for i >= 0 && idx[i] == n-size+i {
				i--
			}
			if i < 0 {
				return
			}
			idx[i]++
			for j := i + 1; j < size; j++ {
				idx[j] = idx[j-1] + 1
			}
		}
	}
}

// Apply adds m to p and returns the canonical result.
//
// This is the sieve direction: the positions from which a player can step
// down to p with one move.
func Apply(p position.Position, m Move) (position.Position, error) {
	if len(p) != len(m) {
		return nil, fmt.Errorf("%w: position %d, move %d", ErrArityMismatch, len(p), len(m))
	}
	out := make(position.Position, len(p))
	for i := range p {
		out[i] = p[i] + m[i]
	}
	return position.Canonical(out), nil
}

// Subtract removes m from p, keeping jar order.
//
// This is the play direction. The result is not canonicalized so callers
// can keep addressing jars by index.
func Subtract(p position.Position, m Move) (position.Position, error) {
	if len(p) != len(m) {
		return nil, fmt.Errorf("%w: position %d, move %d", ErrArityMismatch, len(p), len(m))
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	out := make(position.Position, len(p))
	for i := range p {
		if m[i] > p[i] {
			return nil, fmt.Errorf("%w: jar %d holds %d, move takes %d", ErrInsufficientCookies, i, p[i], m[i])
		}
		out[i] = p[i] - m[i]
	}
	return out, nil
}
