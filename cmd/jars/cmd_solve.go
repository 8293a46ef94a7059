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
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/AleutianAI/jars/services/jars/classifier"
	"github.com/spf13/cobra"
)

func (c *cli) solveCmd() *cobra.Command {
	var (
		s           shape
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "solve [STATE...]",
		Short: "Say whether a state is safe and how to escape it if not",
		Long: `Classifies a state against the safe table. A reducible state comes with
the safe state to move to and the move that separates them.

With no STATE, or with --interactive, states are read one per line until
end of input.`,
		Example: `  jars solve -j 2 -m 10 7 2
  jars solve -j 3 -m 6 -i`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSolve(cmd, c.resolve(cmd, s), args, interactive)
		},
	}
	addShapeFlags(cmd, &s)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "read further states from the terminal")
	return cmd
}

func (c *cli) runSolve(cmd *cobra.Command, s shape, args []string, interactive bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	table, err := c.buildSieve(ctx, cmd, s)
	if err != nil {
		return err
	}
	clf := classifier.New(table, classifier.WithLogger(c.logger.Slog()))

	if len(args) > 0 {
		state, err := parseArgs(args)
		if err != nil {
			return err
		}
		if err := solveOne(ctx, out, clf, state); err != nil {
			return err
		}
		if !interactive {
			return nil
		}
	}
	return c.solveLoop(ctx, out, clf)
}

func (c *cli) solveLoop(ctx context.Context, out io.Writer, clf *classifier.Classifier) error {
	reader := c.newReader()
	for {
		line, err := readPrompted(reader, out, "enter a state> ")
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out, "bye :)")
			return nil
		}
		if err != nil {
			return err
		}

		state, err := parseState(line)
		if err != nil {
			fmt.Fprintln(out, "invalid input")
			continue
		}
		if len(state) == 0 {
			continue
		}

		if err := solveOne(ctx, out, clf, state); err != nil {
			if errors.Is(err, classifier.ErrInvalidQuery) {
				c.logger.Debug("rejected state", "error", err)
				fmt.Fprintln(out, "invalid input")
				continue
			}
			return err
		}
	}
}

// solveOne prints the verdict for one state.
func solveOne(ctx context.Context, out io.Writer, clf *classifier.Classifier, state []int) error {
	res, err := clf.Classify(ctx, state)
	if err != nil {
		return err
	}

	switch res.Status {
	case classifier.StatusSafe:
		fmt.Fprintln(out, "this *is* a safe state")
	case classifier.StatusReducible:
		fmt.Fprintf(out, "%v can be reduced to %v\n", res.Query, res.Ancestor)
		fmt.Fprintf(out, "using move %v on\n           %v\n", res.Move, res.Ancestor)
	default:
		fmt.Fprintln(out, "this looks pretty bad i can't see a way out")
	}
	return nil
}
