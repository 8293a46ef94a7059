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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Position Tests
// =============================================================================

func TestCanonical_DoesNotMutateInput(t *testing.T) {
	in := Position{3, 1, 2}
	out := Canonical(in)

	assert.Equal(t, Position{1, 2, 3}, out)
	assert.Equal(t, Position{3, 1, 2}, in)
}

func TestKey_OrderIndependent(t *testing.T) {
	tests := []struct {
		name string
		a, b Position
		same bool
	}{
		{"permutation", Position{3, 1}, Position{1, 3}, true},
		{"three jars", Position{2, 0, 5}, Position{5, 2, 0}, true},
		{"different", Position{1, 2}, Position{1, 3}, false},
		{"multi-digit", Position{1, 12}, Position{11, 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.same, tt.a.Key() == tt.b.Key())
		})
	}
}

func TestKey_Format(t *testing.T) {
	assert.Equal(t, Key("1,3,10"), Position{10, 1, 3}.Key())
	assert.Equal(t, Key(""), Position{}.Key())
}

func TestPosition_Helpers(t *testing.T) {
	p := Position{4, 2, 7}

	assert.Equal(t, 7, p.Max())
	assert.Equal(t, 2, p.Min())
	assert.False(t, p.IsZero())
	assert.True(t, Zero(3).IsZero())
	assert.Equal(t, "(4, 2, 7)", p.String())
	assert.Equal(t, Position{2, 0, 5}, p.Normalised())
	assert.True(t, p.Equal(Position{7, 4, 2}))
	assert.False(t, p.Equal(Position{7, 4}))
	assert.Equal(t, -1, Position{}.Max())
}

func TestCount(t *testing.T) {
	tests := []struct {
		jars, max, want int
	}{
		{1, 0, 1},
		{1, 5, 6},
		{2, 1, 3},
		{2, 10, 66},
		{3, 6, 84},
	}

	for _, tt := range tests {
		got, err := Count(tt.jars, tt.max)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "jars=%d max=%d", tt.jars, tt.max)
	}

	_, err := Count(0, 3)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

// =============================================================================
// Enumerator Tests
// =============================================================================

func TestNewEnumerator_InvalidShape(t *testing.T) {
	_, err := NewEnumerator(0, 5)
	assert.ErrorIs(t, err, ErrInvalidShape)

	_, err = NewEnumerator(2, -1)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestEnumerator_TwoJarsOrder(t *testing.T) {
	var got []Position
	for p := range All(2, 2) {
		got = append(got, p)
	}

	want := []Position{
		{0, 0},
		{0, 1}, {1, 1},
		{0, 2}, {1, 2}, {2, 2},
	}
	assert.Equal(t, want, got)
}

func TestEnumerator_SingleJar(t *testing.T) {
	var got []Position
	for p := range All(1, 3) {
		got = append(got, p)
	}
	assert.Equal(t, []Position{{0}, {1}, {2}, {3}}, got)
}

// Every canonical position appears exactly once, and maxima never decrease.
func TestEnumerator_ExhaustiveNoDuplicates(t *testing.T) {
	shapes := []struct{ jars, max int }{
		{1, 7}, {2, 10}, {3, 6}, {4, 4},
	}

	for _, s := range shapes {
		seen := make(map[Key]bool)
		lastMax := 0
		for p := range All(s.jars, s.max) {
			require.Len(t, p, s.jars)
			assert.True(t, p.IsCanonical(), "not canonical: %v", p)
			assert.GreaterOrEqual(t, p.Max(), lastMax, "maximum decreased at %v", p)
			lastMax = p.Max()

			k := p.Key()
			assert.False(t, seen[k], "duplicate %v", p)
			seen[k] = true
		}

		want, err := Count(s.jars, s.max)
		require.NoError(t, err)
		assert.Len(t, seen, want, "jars=%d max=%d", s.jars, s.max)
	}
}

func TestEnumerator_EmitsFreshSlices(t *testing.T) {
	e, err := NewEnumerator(3, 2)
	require.NoError(t, err)

	first, ok := e.Next()
	require.True(t, ok)
	first[0] = 99

	second, ok := e.Next()
	require.True(t, ok)
	assert.Equal(t, Position{0, 0, 1}, second)
}

func TestEnumerator_ExhaustedStaysExhausted(t *testing.T) {
	e, err := NewEnumerator(2, 0)
	require.NoError(t, err)

	p, ok := e.Next()
	require.True(t, ok)
	assert.Equal(t, Position{0, 0}, p)

	_, ok = e.Next()
	assert.False(t, ok)
	_, ok = e.Next()
	assert.False(t, ok)
}

func TestAll_EarlyBreak(t *testing.T) {
	n := 0
	for range All(3, 5) {
		n++
		if n == 4 {
			break
		}
	}
	assert.Equal(t, 4, n)
}
