// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package position

import (
	"fmt"
	"iter"
)

// Enumerator walks every canonical position of a fixed jar count, grouped
// by maximum coordinate.
//
// # Description
//
// Positions are produced in non-decreasing order of their maximum
// coordinate: every position with maximum v is emitted before any position
// with maximum v+1. The sieve relies on this: a position is only classified
// after all positions with a smaller maximum, any of which could be the safe
// ancestor that makes it unsafe.
//
// Within the group of maximum v the enumerator emits each non-decreasing
// prefix of length jars-1 over [0, v] in lexicographic order, followed by v.
// Every canonical position with maximum v is emitted exactly once.
//
// The prefix is advanced in place like an odometer and copied into a fresh
// Position on every emit, so no state is shared with callers.
//
// # Thread Safety
//
// Not safe for concurrent use. The sequence is finite and not restartable;
// create a new Enumerator to walk it again.
type Enumerator struct {
	jars    int
	max     int
	group   int
	prefix  []int
	started bool
	done    bool
}

// NewEnumerator creates an enumerator over positions with the given number
// of jars and maximum coordinate at most maxCoordinate.
//
// # Inputs
//
//   - jars: Number of jars. Must be >= 1.
//   - maxCoordinate: Largest cookie count per jar. Must be >= 0.
//
// # Outputs
//
//   - *Enumerator: Ready to produce the first position.
//   - error: ErrInvalidShape for unusable bounds.
func NewEnumerator(jars, maxCoordinate int) (*Enumerator, error) {
	if jars < 1 || maxCoordinate < 0 {
		return nil, fmt.Errorf("%w: jars=%d max=%d", ErrInvalidShape, jars, maxCoordinate)
	}
	return &Enumerator{
		jars:   jars,
		max:    maxCoordinate,
		prefix: make([]int, jars-1),
	}, nil
}

// Next returns the next canonical position, or false once the space is
// exhausted.
func (e *Enumerator) Next() (Position, bool) {
	if e.done {
		return nil, false
	}
	if !e.started {
		e.started = true
		return e.emit(), true
	}

	// Rightmost prefix slot that can still grow within this group.
	i := len(e.prefix) - 1
	for i >= 0 && e.prefix[i] >= e.group {
		i--
	}
	if i >= 0 {
		e.prefix[i]++
		for j := i + 1; j < len(e.prefix); j++ {
			e.prefix[j] = e.prefix[i]
		}
		return e.emit(), true
	}

	e.group++
	if e.group > e.max {
		e.done = true
		return nil, false
	}
	clear(e.prefix)
	return e.emit(), true
}

// Group returns the maximum coordinate of the most recently emitted
// position.
func (e *Enumerator) Group() int {
	return e.group
}

func (e *Enumerator) emit() Position {
	out := make(Position, e.jars)
	copy(out, e.prefix)
	out[e.jars-1] = e.group
	return out
}

// All returns the enumerator sequence as an iterator.
//
// Invalid bounds yield an empty sequence; use NewEnumerator to observe the
// error.
//
// # Examples
//
//	for p := range position.All(2, 3) {
//	    fmt.Println(p) // (0, 0), (0, 1), (1, 1), (0, 2), ...
//	}
func All(jars, maxCoordinate int) iter.Seq[Position] {
	return func(yield func(Position) bool) {
		e, err := NewEnumerator(jars, maxCoordinate)
		if err != nil {
			return
		}
		for p, ok := e.Next(); ok; p, ok = e.Next() {
			if !yield(p) {
				return
			}
		}
	}
}
