// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/AleutianAI/jars/cmd/jars/config"
	"github.com/AleutianAI/jars/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI runs the root command in machine mode against a fresh config,
// feeding inputs to any interactive loop.
func runCLI(t *testing.T, inputs []string, args ...string) (string, string, error) {
	t.Helper()

	c := newCLI()
	c.newReader = func() InputReader { return NewMockInputReader(inputs) }

	root := c.rootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	configPath := filepath.Join(t.TempDir(), "jars.yaml")
	root.SetArgs(append([]string{"--config", configPath, "--personality", "machine"}, args...))

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// =============================================================================
// safes
// =============================================================================

func TestSafes_TwoJars(t *testing.T) {
	out, _, err := runCLI(t, nil, "safes", "-j", "2", "-m", "10")
	require.NoError(t, err)

	assert.Equal(t, "safe states appear safe\n  0  0\n  1  2\n  3  5\n  4  7\n  6 10\n", out)
}

func TestSafes_DefaultsFromConfig(t *testing.T) {
	out, _, err := runCLI(t, nil, "safes")
	require.NoError(t, err)

	// The first-run config is two jars up to 10.
	assert.Contains(t, out, "  6 10\n")
}

func TestSafes_Pairs(t *testing.T) {
	out, _, err := runCLI(t, nil, "safes", "-j", "2", "-m", "10", "--pairs")
	require.NoError(t, err)

	assert.Equal(t, "  0  0\n  1  2\n  3  5\n  4  7\n  6 10\n", out)
}

func TestSafes_PairsNeedTwoJars(t *testing.T) {
	_, _, err := runCLI(t, nil, "safes", "-j", "3", "-m", "5", "--pairs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--pairs needs 2 jars")
}

func TestSafes_Normalise(t *testing.T) {
	out, _, err := runCLI(t, nil, "safes", "-j", "2", "-m", "5", "--normalise")
	require.NoError(t, err)

	// (0,0) (1,2) (3,5) then the same shifted by their minimum.
	assert.Equal(t,
		"safe states appear safe\n 0 0\n 1 2\n 3 5\n 0 0\n 0 1\n 0 2\n", out)
}

// =============================================================================
// solve
// =============================================================================

func TestSolve_Reducible(t *testing.T) {
	out, _, err := runCLI(t, nil, "solve", "-j", "2", "-m", "10", "7", "2")
	require.NoError(t, err)

	assert.Equal(t, "(2, 7) can be reduced to (1, 2)\nusing move [6 0] on\n           (1, 2)\n", out)
}

func TestSolve_Safe(t *testing.T) {
	out, _, err := runCLI(t, nil, "solve", "-j", "2", "-m", "10", "4", "7")
	require.NoError(t, err)

	assert.Equal(t, "this *is* a safe state\n", out)
}

func TestSolve_BadArgs(t *testing.T) {
	_, _, err := runCLI(t, nil, "solve", "-j", "2", "-m", "10", "seven", "2")
	require.Error(t, err)
	assert.ErrorIs(t, err, errInvalidInput)
}

func TestSolve_Interactive(t *testing.T) {
	inputs := []string{"1 2", "abc", "", "7 2", "1 2 3", "20 1"}
	out, _, err := runCLI(t, inputs, "solve", "-j", "2", "-m", "10")
	require.NoError(t, err)

	want := "enter a state> this *is* a safe state\n" +
		"enter a state> invalid input\n" +
		"enter a state> " +
		"enter a state> (2, 7) can be reduced to (1, 2)\nusing move [6 0] on\n           (1, 2)\n" +
		"enter a state> invalid input\n" +
		"enter a state> invalid input\n" +
		"enter a state> bye :)\n"
	assert.Equal(t, want, out)
}

func TestSolve_ArgsThenInteractive(t *testing.T) {
	out, _, err := runCLI(t, []string{"3 5"}, "solve", "-j", "2", "-m", "10", "-i", "0", "0")
	require.NoError(t, err)

	assert.Equal(t,
		"this *is* a safe state\nenter a state> this *is* a safe state\nenter a state> bye :)\n", out)
}

func TestSolve_ThreeJars(t *testing.T) {
	out, _, err := runCLI(t, nil, "solve", "-j", "3", "-m", "4", "1", "2", "3")
	require.NoError(t, err)

	// Either answer names the query in canonical form.
	assert.NotContains(t, out, "invalid input")
	assert.NotEmpty(t, out)
}

// =============================================================================
// play
// =============================================================================

func TestPlay_ComputerWins(t *testing.T) {
	out, _, err := runCLI(t, []string{"4 0"}, "play", "4", "9")
	require.NoError(t, err)

	want := "jars given: (4, 9)\n" +
		"computer starts\n" +
		"Jars are: \nJar 0: 4\nJar 1: 9\n" +
		"computer takes 2 cookies from jar 1\n" +
		"Jars are: \nJar 0: 4\nJar 1: 7\n" +
		"Enter two jar numbers> " +
		"Jars are: \nJar 0: 0\nJar 1: 7\n" +
		"computer takes 7 cookies from jar 1\n" +
		"computer wins\n"
	assert.Equal(t, want, out)
}

func TestPlay_RunAway(t *testing.T) {
	out, _, err := runCLI(t, nil, "play", "1", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "player starts\n")
	assert.True(t, bytes.HasSuffix([]byte(out), []byte("Enter two jar numbers> you run away like a little baby\n")))
}

func TestPlay_RejectsBadMoves(t *testing.T) {
	inputs := []string{"1 2", "5 0", "x y", "0 0"}
	out, _, err := runCLI(t, inputs, "play", "1", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "either one jar must be 0 or they must be equal\n")
	assert.Contains(t, out, "there aren't enough cookies to take out\n")
	assert.Contains(t, out, "invalid input")
	assert.Contains(t, out, "you have to make a move\n")
	assert.Contains(t, out, "you run away like a little baby\n")
}

func TestPlay_ListsPairs(t *testing.T) {
	out, _, err := runCLI(t, nil, "play", "1", "2", "--pairs", "5")
	require.NoError(t, err)

	assert.Contains(t, out, "Here are the pairs you'll never reach:\n0 0\n1 2\n3 5\n4 7\n6 10\njars given: (1, 2)\n")
}

func TestPlay_InvalidStart(t *testing.T) {
	_, _, err := runCLI(t, nil, "play", "0", "0")
	require.Error(t, err)

	_, _, err = runCLI(t, nil, "play", "1")
	require.Error(t, err)
}

// =============================================================================
// pairs
// =============================================================================

func TestPairs_Machine(t *testing.T) {
	out, _, err := runCLI(t, nil, "pairs", "10")
	require.NoError(t, err)

	assert.Equal(t, "0 0\n1 2\n3 5\n4 7\n6 10\n8 13\n9 15\n11 18\n", out)
}

func TestPairs_Errors(t *testing.T) {
	_, _, err := runCLI(t, nil, "pairs", "ten")
	assert.ErrorIs(t, err, errInvalidInput)

	_, _, err = runCLI(t, nil, "pairs", "-1")
	assert.Error(t, err)
}

// =============================================================================
// setup
// =============================================================================

func TestSetup_BadLogLevel(t *testing.T) {
	_, _, err := runCLI(t, nil, "--log-level", "loud", "pairs", "3")
	require.Error(t, err)
}

func TestSetup_WritesConfig(t *testing.T) {
	c := newCLI()
	root := c.rootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	path := filepath.Join(t.TempDir(), "nested", "jars.yaml")
	root.SetArgs([]string{"--config", path, "--personality", "machine", "pairs", "1"})
	require.NoError(t, root.Execute())

	assert.FileExists(t, path)
	assert.Equal(t, 2, c.cfg.Analysis.Jars)
}

func TestServiceConfig(t *testing.T) {
	server := config.DefaultConfig().Server
	server.MaxJars = 4
	server.PreferPairs = false

	sc := serviceConfig(server)
	assert.Equal(t, 4, sc.MaxJars)
	assert.Equal(t, server.MaxCookies, sc.MaxCookies)
	assert.Equal(t, server.MaxStates, sc.MaxStates)
	assert.Equal(t, server.MaxBatch, sc.MaxBatch)
	assert.Equal(t, server.BatchConcurrency, sc.BatchConcurrency)
	assert.False(t, sc.PreferPairs)
}

func TestLoggingConfig_ServeExports(t *testing.T) {
	c := newCLI()
	root := c.rootCmd()

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	cfg := loggingConfig(serve, config.LoggingConfig{JSON: true}, logging.LevelInfo)
	assert.IsType(t, &logging.MetricsExporter{}, cfg.Exporter)
	assert.True(t, cfg.JSON)
	assert.Equal(t, "jars", cfg.Service)

	pairs, _, err := root.Find([]string{"pairs"})
	require.NoError(t, err)
	assert.Nil(t, loggingConfig(pairs, config.LoggingConfig{}, logging.LevelInfo).Exporter)
}
