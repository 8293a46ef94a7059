// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package strategy picks the winning move of the two-jar game.
//
// Given an unsafe position and a Wythoff pair table, Choose returns a move
// that leaves the opponent on a pair. Because the pairs partition the
// naturals one of the two move shapes always works; failing both is an
// invariant violation reported as ErrConfused.
package strategy

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/jars/services/jars/wythoff"
)

var (
	// ErrAlreadySafe indicates a position that is already a pair. There is
	// no winning move from it; the caller handed over a lost position.
	ErrAlreadySafe = errors.New("position is already safe")

	// ErrConfused indicates an unsafe position from which no move reaches a
	// pair. Only a broken pair table can cause it.
	ErrConfused = errors.New("strategy is confused")

	// ErrOutOfRange indicates a jar that is negative or above the table
	// bound.
	ErrOutOfRange = errors.New("jar outside pair table range")
)

// ConfusedError carries the position Choose could not handle.
type ConfusedError struct {
	A, B   int
	Reason string

	// Err is ErrAlreadySafe or ErrConfused. Nil means ErrConfused.
	Err error
}

// Error implements the error interface.
func (e *ConfusedError) Error() string {
	return fmt.Sprintf("%v at (%d, %d): %s", e.Unwrap(), e.A, e.B, e.Reason)
}

// Unwrap returns the sentinel the error wraps.
func (e *ConfusedError) Unwrap() error {
	if e.Err == nil {
		return ErrConfused
	}
	return e.Err
}

// Branch names the move shape Choose picked.
type Branch string

const (
	// BranchDiagonal takes the same amount from both jars.
	BranchDiagonal Branch = "diagonal"

	// BranchSingle takes from one jar only.
	BranchSingle Branch = "single"
)

// Decision is a move in the caller's jar order.
type Decision struct {
	// TakeA and TakeB are the cookies to remove from the first and second
	// jar as passed to Choose.
	TakeA int `json:"take_a"`
	TakeB int `json:"take_b"`

	// Target is the pair the move lands on.
	Target wythoff.Pair `json:"target"`

	// Branch is the move shape.
	Branch Branch `json:"branch"`
}

// Choose returns the move from (a, b) to a Wythoff pair.
//
// # Description
//
// With lo <= hi the sorted jars and diff = hi - lo:
//
//  1. If pair number diff exists and its A is below lo, take lo - A from
//     both jars. The difference is kept and the result is that pair.
//  2. Otherwise look at the pair containing lo and the pair containing hi.
//     Of those whose other coordinate is below the other jar, use the one
//     earliest in the table and shrink the other jar down to it.
//
// # Inputs
//
//   - a, b: Jar contents. Must be in [0, table.Bound()].
//   - table: Pair table covering both jars.
//
// # Outputs
//
//   - Decision: The move and its target.
//   - error: ErrOutOfRange for bad jars. A *ConfusedError wrapping
//     ErrAlreadySafe if (a, b) is already a pair, or wrapping ErrConfused if
//     no move applies.
//
// # Examples
//
//	d, _ := strategy.Choose(9, 4, table)
//	// d.TakeA == 2, d.TakeB == 0, d.Target == (4, 7)
func Choose(a, b int, table *wythoff.Table) (Decision, error) {
	if a < 0 || b < 0 || a > table.Bound() || b > table.Bound() {
		return Decision{}, fmt.Errorf("%w: (%d, %d) with bound %d", ErrOutOfRange, a, b, table.Bound())
	}
	if table.IsPair(a, b) {
		return Decision{}, &ConfusedError{A: a, B: b, Reason: "no winning move exists", Err: ErrAlreadySafe}
	}

	lo, hi := min(a, b), max(a, b)
	diff := hi - lo
	if diff < table.Len() {
		if p := table.Pair(diff); p.A < lo {
			take := lo - p.A
			return Decision{TakeA: take, TakeB: take, Target: p, Branch: BranchDiagonal}, nil
		}
	}

	best := -1
	var target wythoff.Pair
	var newLo, newHi int
	if k, ok := table.IndexOf(lo); ok {
		if p := table.Pair(k); p.Other(lo) < hi {
			best, target = k, p
			newLo, newHi = lo, p.Other(lo)
		}
	}
	if k, ok := table.IndexOf(hi); ok && (best < 0 || k < best) {
		if p := table.Pair(k); p.Other(hi) < lo {
			best, target = k, p
			newLo, newHi = p.Other(hi), hi
		}
	}
	if best < 0 {
		return Decision{}, &ConfusedError{A: a, B: b, Reason: "no move reaches a safe pair", Err: ErrConfused}
	}

	d := Decision{Target: target, Branch: BranchSingle}
	if a <= b {
		d.TakeA, d.TakeB = a-newLo, b-newHi
	} else {
		d.TakeA, d.TakeB = a-newHi, b-newLo
	}
	return d, nil
}
