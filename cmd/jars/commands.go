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
	"fmt"
	"io"
	"log/slog"

	"github.com/AleutianAI/jars/cmd/jars/config"
	"github.com/AleutianAI/jars/pkg/logging"
	"github.com/AleutianAI/jars/pkg/ux"
	"github.com/AleutianAI/jars/services/jars/position"
	"github.com/AleutianAI/jars/services/jars/sieve"
	"github.com/spf13/cobra"
)

// cli holds the state shared by every command of one invocation.
type cli struct {
	// Persistent flags.
	configPath  string
	logLevel    string
	personality string

	cfg    config.JarsConfig
	logger *logging.Logger

	// newReader supplies the line reader for interactive loops.
	newReader func() InputReader
}

func newCLI() *cli {
	return &cli{
		newReader: func() InputReader { return NewInteractiveInputReader(50) },
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jars",
		Short: "Solve and play the cookie jar game",
		Long: `Two players take turns removing cookies from a row of jars. A move takes
the same positive number of cookies from every jar in some non-empty subset.
Whoever takes the last cookie wins.

jars computes the safe states (the ones the player to move loses from),
tells you how to escape an unsafe state, and plays the two-jar game.`,
		SilenceUsage:       true,
		PersistentPreRunE:  c.setup,
		PersistentPostRunE: c.teardown,
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.jars/jars.yaml)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&c.personality, "personality", "", "output style: full, standard, minimal, machine")

	root.AddCommand(c.safesCmd(), c.solveCmd(), c.playCmd(), c.pairsCmd(), c.serveCmd())
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if c.personality != "" {
		ux.SetPersonalityLevel(ux.ParsePersonalityLevel(c.personality))
	} else {
		ux.InitPersonality()
	}

	if c.configPath == "" {
		path, err := config.DefaultPath()
		if err != nil {
			return err
		}
		c.configPath = path
	}
	cfg, created, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	levelName := cfg.Logging.Level
	if c.logLevel != "" {
		levelName = c.logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return err
	}

	c.logger = logging.New(loggingConfig(cmd, cfg.Logging, level))
	slog.SetDefault(c.logger.Slog())

	if created {
		c.logger.Info("First run detected, created default config", "path", c.configPath)
	}
	return nil
}

// loggingConfig builds the logger settings for cmd. The server also exports
// warnings and errors to /metrics and request traces.
func loggingConfig(cmd *cobra.Command, lc config.LoggingConfig, level logging.Level) logging.Config {
	out := logging.Config{
		Level:   level,
		LogDir:  lc.Dir,
		Service: "jars",
		JSON:    lc.JSON,
		Output:  cmd.ErrOrStderr(),
	}
	if cmd.Name() == "serve" {
		out.Exporter = logging.NewMetricsExporter(logging.LevelWarn)
	}
	return out
}

func (c *cli) teardown(*cobra.Command, []string) error {
	if c.logger == nil {
		return nil
	}
	return c.logger.Close()
}

// shape is a table shape after merging flags over the config file.
type shape struct {
	jars       int
	maxCookies int
	maxMove    int
}

// addShapeFlags registers -j, -m and --max-move on cmd.
func addShapeFlags(cmd *cobra.Command, s *shape) {
	cmd.Flags().IntVarP(&s.jars, "jars", "j", 0, "number of jars (default from config)")
	cmd.Flags().IntVarP(&s.maxCookies, "max-cookies", "m", 0, "largest cookie count per jar (default from config)")
	cmd.Flags().IntVar(&s.maxMove, "max-move", 0, "most cookies taken from one jar per move (default max-cookies)")
}

// resolve fills unset flags from the config.
func (c *cli) resolve(cmd *cobra.Command, s shape) shape {
	if !cmd.Flags().Changed("jars") {
		s.jars = c.cfg.Analysis.Jars
	}
	if !cmd.Flags().Changed("max-cookies") {
		s.maxCookies = c.cfg.Analysis.MaxCookies
	}
	if !cmd.Flags().Changed("max-move") {
		s.maxMove = c.cfg.Analysis.MaxMove
	}
	if s.maxMove == 0 {
		s.maxMove = s.maxCookies
	}
	return s
}

// buildSieve builds and verifies the table behind a spinner on stderr.
func (c *cli) buildSieve(ctx context.Context, cmd *cobra.Command, s shape) (*sieve.Table, error) {
	var table *sieve.Table
	msg := fmt.Sprintf("building sieve for %d jars up to %d", s.jars, s.maxCookies)
	err := ux.WithSpinner(cmd.ErrOrStderr(), msg, func() error {
		var err error
		table, err = sieve.Build(ctx, s.jars, s.maxCookies,
			sieve.WithMaxMove(s.maxMove),
			sieve.WithLogger(c.logger.Slog()),
		)
		return err
	})
	return table, err
}

// heading prints a title unless output is for machines.
func heading(w io.Writer, text string) {
	if ux.GetPersonality().Level == ux.PersonalityMachine {
		return
	}
	ux.Title(w, text)
}

// announce prints a status line, plain for machines.
func announce(w io.Writer, text string) {
	if ux.GetPersonality().Level == ux.PersonalityMachine {
		fmt.Fprintln(w, text)
		return
	}
	ux.Success(w, text)
}

func rowsOf(ps []position.Position) [][]int {
	rows := make([][]int, len(ps))
	for i, p := range ps {
		rows[i] = p
	}
	return rows
}
