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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/jars/services/jars/position"
)

func firstPairs(n int) []Pair {
	g := NewGenerator()
	out := make([]Pair, n)
	for i := range out {
		out[i] = g.Next()
	}
	return out
}

// =============================================================================
// Generator Tests
// =============================================================================

func TestGenerator_FirstPairs(t *testing.T) {
	want := []Pair{
		{0, 0}, {1, 2}, {3, 5}, {4, 7}, {6, 10},
		{8, 13}, {9, 15}, {11, 18}, {12, 20}, {14, 23},
	}
	assert.Equal(t, want, firstPairs(len(want)))
}

// Every natural below the last a_k is used exactly once.
func TestGenerator_Partition(t *testing.T) {
	pairs := firstPairs(2000)
	lastA := pairs[len(pairs)-1].A

	count := make(map[int]int)
	for _, p := range pairs {
		count[p.A]++
		if p.B != p.A {
			count[p.B]++
		}
	}
	for n := 0; n <= lastA; n++ {
		assert.Equal(t, 1, count[n], "natural %d", n)
	}
	for n, c := range count {
		assert.Equal(t, 1, c, "natural %d used %d times", n, c)
	}
}

func TestGenerator_StrictlyIncreasing(t *testing.T) {
	pairs := firstPairs(500)
	for k := 1; k < len(pairs); k++ {
		assert.Greater(t, pairs[k].A, pairs[k-1].A)
		assert.Greater(t, pairs[k].B, pairs[k-1].B)
		assert.Equal(t, k, pairs[k].B-pairs[k].A, "pair %d", k)
	}
}

// a_k = floor(k*phi), b_k = a_k + k.
func TestGenerator_MatchesClosedForm(t *testing.T) {
	pairs := firstPairs(1000)
	for k, p := range pairs {
		a := int(math.Floor(float64(k) * math.Phi))
		assert.Equal(t, Pair{a, a + k}, p, "pair %d", k)
	}
}

func TestPairs_LazySequence(t *testing.T) {
	var got []Pair
	for p := range Pairs() {
		if p.A > 6 {
			break
		}
		got = append(got, p)
	}
	assert.Equal(t, []Pair{{0, 0}, {1, 2}, {3, 5}, {4, 7}, {6, 10}}, got)
}

// =============================================================================
// Table Tests
// =============================================================================

func TestBuildTable(t *testing.T) {
	table, err := BuildTable(10)
	require.NoError(t, err)

	want := []Pair{
		{0, 0}, {1, 2}, {3, 5}, {4, 7}, {6, 10}, {8, 13}, {9, 15}, {11, 18},
	}
	assert.Equal(t, want, table.Pairs())
	assert.Equal(t, 8, table.Len())
	assert.Equal(t, 10, table.Bound())
	assert.Equal(t, Pair{3, 5}, table.Pair(2))
}

func TestBuildTable_CoversBound(t *testing.T) {
	for _, bound := range []int{0, 1, 7, 50, 333} {
		table, err := BuildTable(bound)
		require.NoError(t, err)
		for n := 0; n <= bound; n++ {
			_, ok := table.IndexOf(n)
			assert.True(t, ok, "bound %d: natural %d has no pair", bound, n)
		}
	}
}

func TestBuildTable_InvalidBound(t *testing.T) {
	_, err := BuildTable(-1)
	assert.ErrorIs(t, err, ErrInvalidBound)
}

func TestTable_Lookups(t *testing.T) {
	table, err := BuildTable(10)
	require.NoError(t, err)

	k, ok := table.IndexOf(13)
	require.True(t, ok)
	assert.Equal(t, 5, k)

	p, ok := table.PairOf(7)
	require.True(t, ok)
	assert.Equal(t, Pair{4, 7}, p)
	assert.Equal(t, 4, p.Other(7))
	assert.True(t, p.Contains(4))

	_, ok = table.IndexOf(-1)
	assert.False(t, ok)
	_, ok = table.IndexOf(1000)
	assert.False(t, ok)

	assert.True(t, table.IsPair(10, 6))
	assert.True(t, table.IsPair(0, 0))
	assert.False(t, table.IsPair(6, 9))
}

// =============================================================================
// Source Tests
// =============================================================================

func TestSource_Shape(t *testing.T) {
	table, err := BuildTable(10)
	require.NoError(t, err)
	src := table.Source()

	assert.Equal(t, 2, src.Jars())
	assert.Equal(t, 11, src.Bound())
	assert.Equal(t, 10, src.MaxMove())
	assert.Same(t, table, src.Table())
	assert.True(t, src.IsSafe(position.Position{5, 3}))
	assert.False(t, src.IsSafe(position.Position{5, 3, 0}))
}

func TestSource_Ancestor(t *testing.T) {
	table, err := BuildTable(10)
	require.NoError(t, err)
	src := table.Source()

	tests := []struct {
		query position.Position
		want  position.Position
	}{
		{position.Position{0, 7}, position.Position{0, 0}},
		{position.Position{9, 9}, position.Position{0, 0}},
		{position.Position{2, 3}, position.Position{1, 2}},
		{position.Position{5, 9}, position.Position{3, 5}},
		{position.Position{10, 7}, position.Position{4, 7}},
	}
	for _, tt := range tests {
		got, ok := src.Ancestor(tt.query)
		require.True(t, ok, "query %v", tt.query)
		assert.Equal(t, tt.want, got, "query %v", tt.query)
	}

	_, ok := src.Ancestor(position.Position{3, 5})
	assert.False(t, ok)
}
