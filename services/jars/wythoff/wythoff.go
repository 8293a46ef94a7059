// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package wythoff generates the safe positions of the two-jar game.
//
// # Description
//
// For two jars the safe positions are the Wythoff pairs (a_k, b_k):
//
//	(0,0) (1,2) (3,5) (4,7) (6,10) (8,13) ...
//
// a_k is the smallest natural not used by an earlier pair and b_k = a_k + k.
// Every natural belongs to exactly one pair. The Generator produces the
// sequence incrementally from that partition property with integer
// arithmetic only; total work for the first K pairs is linear in the largest
// coordinate reached.
//
// # Thread Safety
//
// A Generator is not safe for concurrent use. A Table is immutable and safe
// for concurrent readers.
package wythoff

import (
	"errors"
	"fmt"
	"iter"
)

// ErrInvalidBound indicates a negative table bound.
var ErrInvalidBound = errors.New("invalid pair table bound")

// Pair is one safe two-jar position with A <= B.
type Pair struct {
	A int `json:"a"`
	B int `json:"b"`
}

// Contains reports whether n is one of the pair's coordinates.
func (p Pair) Contains(n int) bool {
	return p.A == n || p.B == n
}

// Other returns the coordinate paired with n. The result is only meaningful
// when Contains(n).
func (p Pair) Other(n int) int {
	if p.A == n {
		return p.B
	}
	return p.A
}

// String renders the pair, e.g. "(3, 5)".
func (p Pair) String() string {
	return fmt.Sprintf("(%d, %d)", p.A, p.B)
}

// =============================================================================
// Generator
// =============================================================================

// Generator produces Wythoff pairs one at a time.
//
// # Description
//
// State is a dense used-marker over the naturals, grown on demand, a cursor
// that only moves forward, and the previous increment. Next advances the
// cursor to the smallest unused natural a, then searches for the smallest
// unused a+d starting from d = previous increment + 1. Starting the search
// there, not at 1, is what makes d equal the pair index.
type Generator struct {
	used      []bool
	cursor    int
	increment int
	emitted   int
}

// NewGenerator returns a generator positioned before pair 0.
func NewGenerator() *Generator {
	return &Generator{}
}

// Next returns the next pair in the sequence.
func (g *Generator) Next() Pair {
	if g.emitted == 0 {
		g.emitted++
		g.mark(0)
		return Pair{}
	}

	for g.isUsed(g.cursor) {
		g.cursor++
	}
	a := g.cursor
	d := g.increment + 1
	for g.isUsed(a + d) {
		d++
	}
	g.increment = d
	g.mark(a)
	g.mark(a + d)
	g.emitted++
	return Pair{A: a, B: a + d}
}

// Emitted returns how many pairs Next has produced.
func (g *Generator) Emitted() int {
	return g.emitted
}

func (g *Generator) isUsed(n int) bool {
	return n < len(g.used) && g.used[n]
}

func (g *Generator) mark(n int) {
	if n >= len(g.used) {
		grown := make([]bool, max(2*len(g.used), n+1, 16))
		copy(grown, g.used)
		g.used = grown
	}
	g.used[n] = true
}

// Pairs returns the unbounded pair sequence. Each range over it starts a new
// generator.
//
// # Examples
//
//	for p := range wythoff.Pairs() {
//	    if p.A > 100 {
//	        break
//	    }
//	    fmt.Println(p)
//	}
func Pairs() iter.Seq[Pair] {
	return func(yield func(Pair) bool) {
		g := NewGenerator()
		for {
			if !yield(g.Next()) {
				return
			}
		}
	}
}

// =============================================================================
// Table
// =============================================================================

// Table is a finite prefix of the pair sequence with a coordinate index.
//
// # Description
//
// The table holds pairs 0..K where pair K is the first with A > bound, so
// every natural in [0, bound] belongs to a pair in the table. Because pairs
// partition the naturals, the index from natural to pair index is a dense
// slice.
type Table struct {
	pairs []Pair
	bound int
	index []int
}

// BuildTable generates pairs until one with A > bound has been appended.
//
// # Inputs
//
//   - bound: Largest jar size the table must cover. Must be >= 0.
//
// # Outputs
//
//   - *Table: The immutable table.
//   - error: ErrInvalidBound for a negative bound.
//
// # Examples
//
//	t, _ := wythoff.BuildTable(10)
//	t.Pairs() // (0,0) (1,2) (3,5) (4,7) (6,10) (8,13) (9,15) (11,18)
func BuildTable(bound int) (*Table, error) {
	if bound < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBound, bound)
	}

	g := NewGenerator()
	var pairs []Pair
	for {
		p := g.Next()
		pairs = append(pairs, p)
		if p.A > bound {
			break
		}
	}

	last := pairs[len(pairs)-1].B
	index := make([]int, last+1)
	for i := range index {
		index[i] = -1
	}
	for k, p := range pairs {
		index[p.A] = k
		index[p.B] = k
	}

	return &Table{pairs: pairs, bound: bound, index: index}, nil
}

// Pairs returns a copy of the table's pairs in sequence order.
func (t *Table) Pairs() []Pair {
	out := make([]Pair, len(t.pairs))
	copy(out, t.pairs)
	return out
}

// Pair returns pair k. It panics if k is outside [0, Len()).
func (t *Table) Pair(k int) Pair {
	return t.pairs[k]
}

// Len returns the number of pairs.
func (t *Table) Len() int {
	return len(t.pairs)
}

// Bound returns the largest jar size the table covers.
func (t *Table) Bound() int {
	return t.bound
}

// IndexOf returns the index of the pair containing n.
//
// Returns false for negative n and for naturals whose pair lies beyond the
// end of the table.
func (t *Table) IndexOf(n int) (int, bool) {
	if n < 0 || n >= len(t.index) || t.index[n] < 0 {
		return 0, false
	}
	return t.index[n], true
}

// PairOf returns the pair containing n.
func (t *Table) PairOf(n int) (Pair, bool) {
	k, ok := t.IndexOf(n)
	if !ok {
		return Pair{}, false
	}
	return t.pairs[k], true
}

// IsPair reports whether (a, b), in either order, is a pair of the table.
func (t *Table) IsPair(a, b int) bool {
	lo, hi := min(a, b), max(a, b)
	p, ok := t.PairOf(lo)
	return ok && p.A == lo && p.B == hi
}
