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
	"io"

	"github.com/AleutianAI/jars/pkg/ux"
	"github.com/AleutianAI/jars/services/jars/play"
	"github.com/AleutianAI/jars/services/jars/strategy"
	"github.com/AleutianAI/jars/services/jars/wythoff"
	"github.com/spf13/cobra"
)

const playRules = `Two jars, some cookies in each. You win if you take the last cookie.
Each turn take the same number of cookies from both jars, or any number
from just one of them. Prepare not to win.`

func (c *cli) playCmd() *cobra.Command {
	var pairsUpTo int
	cmd := &cobra.Command{
		Use:   "play A B",
		Short: "Play the two-jar game against the computer",
		Long: `Plays the two-jar game from jars A and B. If the start is already a safe
pair you move first, otherwise the computer does. Enter a move as two
numbers: the cookies to take from jar 0 and from jar 1.`,
		Example: `  jars play 4 9
  jars play 10 10 --pairs 20`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlay(cmd, args, pairsUpTo)
		},
	}
	cmd.Flags().IntVarP(&pairsUpTo, "pairs", "p", 0, "first print the safe pairs up to this value")
	return cmd
}

func (c *cli) runPlay(cmd *cobra.Command, args []string, pairsUpTo int) error {
	out := cmd.OutOrStdout()

	jars, err := parseArgs(args)
	if err != nil {
		return err
	}

	if pairsUpTo > 0 {
		table, err := wythoff.BuildTable(pairsUpTo)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Here are the pairs you'll never reach:")
		for _, p := range table.Pairs() {
			fmt.Fprintf(out, "%d %d\n", p.A, p.B)
		}
	}

	session, err := play.NewSession(jars[0], jars[1])
	if err != nil {
		return err
	}
	logger := c.logger.With("session", session.ID())
	logger.Debug("game started", "jars", fmt.Sprint(session.Jars()))

	if ux.GetPersonality().Banter {
		ux.Box(out, "cookie jars", playRules)
	}
	fmt.Fprintf(out, "jars given: (%d, %d)\n", jars[0], jars[1])
	if session.Turn() == play.Human {
		fmt.Fprintln(out, "player starts")
	} else {
		fmt.Fprintln(out, "computer starts")
	}

	reader := c.newReader()
	for !session.Over() {
		printJars(out, session.Jars())

		if session.Turn() == play.Computer {
			turn, err := session.ComputerMove()
			if errors.Is(err, strategy.ErrConfused) || errors.Is(err, strategy.ErrAlreadySafe) {
				logger.Error("strategy gave up", "error", err)
				fmt.Fprintln(out, "computer is confused - you win")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, turn.Describe())
			continue
		}

		line, err := readPrompted(reader, out, "Enter two jar numbers> ")
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out, "you run away like a little baby")
			return nil
		}
		if err != nil {
			return err
		}

		takeA, takeB, err := parseMove(line)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		if _, err := session.HumanMove(takeA, takeB); err != nil {
			var moveErr *play.MoveError
			if errors.As(err, &moveErr) {
				fmt.Fprintln(out, moveErr)
				continue
			}
			return err
		}
	}

	winner, _ := session.Winner()
	logger.Debug("game over", "winner", winner, "moves", len(session.History()))
	if winner == play.Computer {
		fmt.Fprintln(out, "computer wins")
	} else {
		fmt.Fprintln(out, "you win")
	}
	return nil
}

func printJars(out io.Writer, jars [2]int) {
	fmt.Fprintln(out, "Jars are: ")
	for i, n := range jars {
		fmt.Fprintf(out, "Jar %d: %d\n", i, n)
	}
}
