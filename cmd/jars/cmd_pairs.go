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
	"strconv"

	"github.com/AleutianAI/jars/pkg/ux"
	"github.com/AleutianAI/jars/services/jars/wythoff"
	"github.com/spf13/cobra"
)

func (c *cli) pairsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pairs N",
		Short: "Print the safe two-jar pairs until one starts above N",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bound, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q is not a number", errInvalidInput, args[0])
			}
			table, err := wythoff.BuildTable(bound)
			if err != nil {
				return err
			}
			c.logger.Debug("pair table built", "bound", bound, "pairs", table.Len())

			out := cmd.OutOrStdout()
			pairs := table.Pairs()
			if ux.GetPersonality().Level == ux.PersonalityMachine {
				for _, p := range pairs {
					fmt.Fprintf(out, "%d %d\n", p.A, p.B)
				}
				return nil
			}

			rows := make([][]int, len(pairs))
			for k, p := range pairs {
				rows[k] = []int{k, p.A, p.B}
			}
			heading(out, fmt.Sprintf("%d pairs covering 0..%d", len(pairs), bound))
			fmt.Fprint(out, ux.RenderPositions([]string{"k", "a", "b"}, rows, pairs[len(pairs)-1].B))
			return nil
		},
	}
}
