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
	"fmt"

	"github.com/AleutianAI/jars/pkg/ux"
	"github.com/AleutianAI/jars/services/jars/position"
	"github.com/AleutianAI/jars/services/jars/wythoff"
	"github.com/spf13/cobra"
)

func (c *cli) safesCmd() *cobra.Command {
	var (
		s         shape
		normalise bool
		pairs     bool
	)
	cmd := &cobra.Command{
		Use:   "safes",
		Short: "Compute, check and print the safe states up to a bound",
		Example: `  jars safes -j 2 -m 10
  jars safes -j 3 -m 6 --normalise
  jars safes -j 2 -m 1000 --pairs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runSafes(cmd, c.resolve(cmd, s), normalise, pairs)
		},
	}
	addShapeFlags(cmd, &s)
	cmd.Flags().BoolVarP(&normalise, "normalise", "n", false, "also print each safe state shifted down by its minimum")
	cmd.Flags().BoolVarP(&pairs, "pairs", "p", false, "two jars only: read the safe states off the pair table instead of sieving")
	return cmd
}

func (c *cli) runSafes(cmd *cobra.Command, s shape, normalise, pairs bool) error {
	out := cmd.OutOrStdout()

	var safes []position.Position
	if pairs {
		if s.jars != 2 {
			return fmt.Errorf("--pairs needs 2 jars, got %d", s.jars)
		}
		table, err := wythoff.BuildTable(s.maxCookies)
		if err != nil {
			return err
		}
		for _, p := range table.Pairs() {
			if p.B > s.maxCookies {
				break
			}
			safes = append(safes, position.Position{p.A, p.B})
		}
	} else {
		table, err := c.buildSieve(cmd.Context(), cmd, s)
		if err != nil {
			return err
		}
		announce(out, "safe states appear safe")
		safes = table.Safe()
	}

	heading(out, fmt.Sprintf("%d safe states for %d jars up to %d", len(safes), s.jars, s.maxCookies))
	fmt.Fprint(out, ux.RenderPositions(ux.JarHeader(s.jars), rowsOf(safes), s.maxCookies))

	if normalise {
		shifted := make([]position.Position, len(safes))
		for i, p := range safes {
			shifted[i] = p.Normalised()
		}
		heading(out, "normalised")
		fmt.Fprint(out, ux.RenderPositions(ux.JarHeader(s.jars), rowsOf(shifted), s.maxCookies))
	}
	return nil
}
