// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withPersonality(t *testing.T, level PersonalityLevel) {
	t.Helper()
	prev := GetPersonality()
	SetPersonalityLevel(level)
	t.Cleanup(func() { SetPersonality(prev) })
}

func TestParsePersonalityLevel(t *testing.T) {
	tests := []struct {
		in   string
		want PersonalityLevel
	}{
		{"full", PersonalityFull},
		{"F", PersonalityFull},
		{"std", PersonalityStandard},
		{"minimal", PersonalityMinimal},
		{" machine ", PersonalityMachine},
		{"plain", PersonalityMachine},
		{"whatever", PersonalityStandard},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePersonalityLevel(tt.in), tt.in)
	}
}

func TestInitPersonality_Env(t *testing.T) {
	prev := GetPersonality()
	t.Cleanup(func() { SetPersonality(prev) })

	t.Setenv("JARS_PERSONALITY", "minimal")
	InitPersonality()
	assert.Equal(t, PersonalityMinimal, GetPersonality().Level)
	assert.False(t, GetPersonality().Banter)
}

func TestSetPersonalityLevel_Banter(t *testing.T) {
	withPersonality(t, PersonalityFull)
	assert.True(t, GetPersonality().Banter)
	assert.True(t, ShouldShowColors())

	SetPersonalityLevel(PersonalityMachine)
	assert.False(t, GetPersonality().Banter)
	assert.False(t, ShouldShowColors())
	assert.False(t, ShouldShowProgress())
}

func TestIsTerminal_Nil(t *testing.T) {
	assert.False(t, IsTerminal(nil))
}

func TestMessages_MachineMode(t *testing.T) {
	withPersonality(t, PersonalityMachine)
	var buf bytes.Buffer

	Success(&buf, "built")
	Warning(&buf, "slow")
	Error(&buf, "failed")
	Info(&buf, "note")
	Title(&buf, "Safe states")

	assert.Equal(t, "OK: built\nWARN: slow\nERROR: failed\n- note\n== Safe states ==\n", buf.String())
}

func TestBox(t *testing.T) {
	withPersonality(t, PersonalityMachine)
	var buf bytes.Buffer
	Box(&buf, "Pairs", "(0, 0)\n(1, 2)")
	assert.Equal(t, "Pairs\n  (0, 0)\n  (1, 2)\n", buf.String())

	SetPersonalityLevel(PersonalityStandard)
	buf.Reset()
	Box(&buf, "Pairs", "(1, 2)")
	assert.Contains(t, buf.String(), "(1, 2)")
	assert.Contains(t, buf.String(), "╭")
}

func TestRenderPositions_Machine(t *testing.T) {
	withPersonality(t, PersonalityMachine)

	got := RenderPositions(JarHeader(2), [][]int{{0, 0}, {1, 2}, {6, 10}}, 10)
	assert.Equal(t, "  0  0\n  1  2\n  6 10\n", got)

	got = RenderPositions(nil, [][]int{{3}}, 7)
	assert.Equal(t, " 3\n", got)
}

func TestRenderPositions_Table(t *testing.T) {
	withPersonality(t, PersonalityStandard)

	got := RenderPositions(JarHeader(2), [][]int{{1, 2}, {3, 5}}, 5)
	require.NotEmpty(t, got)
	assert.Contains(t, got, "jar 0")
	assert.Contains(t, got, "jar 1")
	for _, v := range []string{"1", "2", "3", "5"} {
		assert.Contains(t, got, v)
	}
	assert.True(t, strings.HasSuffix(got, "\n"))
}

func TestRenderPositions_Empty(t *testing.T) {
	withPersonality(t, PersonalityStandard)
	assert.Empty(t, RenderPositions(JarHeader(2), nil, 10))
}

func TestJarHeader(t *testing.T) {
	assert.Equal(t, []string{"jar 0", "jar 1", "jar 2"}, JarHeader(3))
	assert.Empty(t, JarHeader(0))
}

func TestWithSpinner_Machine(t *testing.T) {
	withPersonality(t, PersonalityMachine)
	var buf bytes.Buffer

	require.NoError(t, WithSpinner(&buf, "building sieve", func() error { return nil }))
	assert.Equal(t, "PROGRESS: building sieve\n", buf.String())

	buf.Reset()
	boom := errors.New("boom")
	err := WithSpinner(&buf, "building sieve", func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, buf.String(), "ERROR: building sieve: boom")
}

func TestSpinner_Animated(t *testing.T) {
	withPersonality(t, PersonalityStandard)
	var buf bytes.Buffer

	s := NewSpinner(&buf, "working")
	s.Start()
	s.Start()
	s.UpdateMessage("still working")
	s.Stop()
	s.Stop()

	assert.Contains(t, buf.String(), "\r\033[K")
}
