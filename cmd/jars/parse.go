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
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// errInvalidInput marks a line that is not whole numbers.
var errInvalidInput = errors.New("invalid input")

// parseState parses whitespace-separated jar counts. An empty line gives
// an empty state.
func parseState(line string) ([]int, error) {
	fields := strings.Fields(line)
	state := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", errInvalidInput, f)
		}
		state = append(state, n)
	}
	return state, nil
}

// parseMove parses the two amounts of a play move.
func parseMove(line string) (int, int, error) {
	state, err := parseState(line)
	if err != nil {
		return 0, 0, err
	}
	if len(state) != 2 {
		return 0, 0, fmt.Errorf("%w: expected two numbers, got %d", errInvalidInput, len(state))
	}
	return state[0], state[1], nil
}

// parseArgs parses command-line jar counts.
func parseArgs(args []string) ([]int, error) {
	return parseState(strings.Join(args, " "))
}
