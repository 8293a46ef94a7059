// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package play runs a two-jar game between a human and the strategy.
//
// # Description
//
// A Session holds the jars and whose turn it is. The caller drives it by
// alternating HumanMove and ComputerMove until Over reports true; the player
// who empties the last jar wins. Session never reads input itself, so the
// same type backs the terminal game and tests.
//
// # Thread Safety
//
// Session is not safe for concurrent use.
package play

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/AleutianAI/jars/services/jars/strategy"
	"github.com/AleutianAI/jars/services/jars/wythoff"
)

var (
	// ErrIllegalMove indicates a human move that breaks the rules.
	ErrIllegalMove = errors.New("illegal move")

	// ErrInvalidStart indicates a starting position that cannot be played.
	ErrInvalidStart = errors.New("invalid starting jars")

	// ErrGameOver indicates a move after the last cookie was taken.
	ErrGameOver = errors.New("game is over")

	// ErrNotYourTurn indicates a move by the player who is not to move.
	ErrNotYourTurn = errors.New("not your turn")
)

// MoveError explains why a human move was rejected.
type MoveError struct {
	TakeA, TakeB int
	Reason       string
}

// Error returns the reason, phrased for the player.
func (e *MoveError) Error() string {
	return e.Reason
}

// Unwrap returns ErrIllegalMove.
func (e *MoveError) Unwrap() error {
	return ErrIllegalMove
}

// Player identifies a side.
type Player string

const (
	Human    Player = "human"
	Computer Player = "computer"
)

// Turn records one move.
type Turn struct {
	Player Player
	TakeA  int
	TakeB  int
	After  [2]int

	// Branch is set for computer moves.
	Branch strategy.Branch
}

// Describe renders the move the way the game announces it.
func (t Turn) Describe() string {
	who := string(t.Player)
	switch {
	case t.TakeA > 0 && t.TakeB > 0:
		return fmt.Sprintf("%s takes %d %s from both jars", who, t.TakeA, cookies(t.TakeA))
	case t.TakeA > 0:
		return fmt.Sprintf("%s takes %d %s from jar 0", who, t.TakeA, cookies(t.TakeA))
	default:
		return fmt.Sprintf("%s takes %d %s from jar 1", who, t.TakeB, cookies(t.TakeB))
	}
}

func cookies(n int) string {
	if n == 1 {
		return "cookie"
	}
	return "cookies"
}

// Session is one game.
type Session struct {
	id      string
	jars    [2]int
	table   *wythoff.Table
	turn    Player
	winner  Player
	history []Turn
}

// NewSession starts a game on jars (a, b).
//
// # Description
//
// The pair table is built up to the larger jar. If the start is already a
// safe pair the human moves first, otherwise the computer does.
//
// # Outputs
//
//   - *Session: The game, ready for the first move.
//   - error: ErrInvalidStart for negative jars or two empty jars.
func NewSession(a, b int) (*Session, error) {
	if a < 0 || b < 0 {
		return nil, fmt.Errorf("%w: (%d, %d) has a negative jar", ErrInvalidStart, a, b)
	}
	if a == 0 && b == 0 {
		return nil, fmt.Errorf("%w: both jars are empty", ErrInvalidStart)
	}

	table, err := wythoff.BuildTable(max(a, b))
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:    uuid.NewString(),
		jars:  [2]int{a, b},
		table: table,
		turn:  Computer,
	}
	if table.IsPair(a, b) {
		s.turn = Human
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Jars returns the current jar contents.
func (s *Session) Jars() [2]int { return s.jars }

// Table returns the pair table the computer plays from.
func (s *Session) Table() *wythoff.Table { return s.table }

// Turn returns the player to move.
func (s *Session) Turn() Player { return s.turn }

// Over reports whether both jars are empty.
func (s *Session) Over() bool { return s.winner != "" }

// Winner returns the player who took the last cookie.
func (s *Session) Winner() (Player, bool) {
	return s.winner, s.winner != ""
}

// History returns the moves made so far.
func (s *Session) History() []Turn {
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// ValidateMove checks a move against the rules and the current jars.
//
// Amounts must be non-negative, not both zero, equal when both are nonzero,
// and no larger than the jar they come from.
func ValidateMove(takeA, takeB int, jars [2]int) error {
	reject := func(reason string) error {
		return &MoveError{TakeA: takeA, TakeB: takeB, Reason: reason}
	}
	switch {
	case takeA < 0 || takeB < 0:
		return reject("should be positive integer")
	case takeA != 0 && takeB != 0 && takeA != takeB:
		return reject("either one jar must be 0 or they must be equal")
	case takeA == 0 && takeB == 0:
		return reject("you have to make a move")
	case takeA > jars[0] || takeB > jars[1]:
		return reject("there aren't enough cookies to take out")
	}
	return nil
}

// HumanMove applies the human's move.
//
// # Outputs
//
//   - Turn: The applied move.
//   - error: ErrGameOver, ErrNotYourTurn, or a *MoveError. The session is
//     unchanged on error.
func (s *Session) HumanMove(takeA, takeB int) (Turn, error) {
	if err := s.ready(Human); err != nil {
		return Turn{}, err
	}
	if err := ValidateMove(takeA, takeB, s.jars); err != nil {
		return Turn{}, err
	}
	return s.apply(Turn{Player: Human, TakeA: takeA, TakeB: takeB}), nil
}

// ComputerMove lets the strategy move.
//
// # Outputs
//
//   - Turn: The applied move.
//   - error: ErrGameOver, ErrNotYourTurn, or a strategy error. The session
//     is unchanged on error.
func (s *Session) ComputerMove() (Turn, error) {
	if err := s.ready(Computer); err != nil {
		return Turn{}, err
	}
	d, err := strategy.Choose(s.jars[0], s.jars[1], s.table)
	if err != nil {
		return Turn{}, err
	}
	return s.apply(Turn{Player: Computer, TakeA: d.TakeA, TakeB: d.TakeB, Branch: d.Branch}), nil
}

func (s *Session) ready(p Player) error {
	if s.Over() {
		return ErrGameOver
	}
	if s.turn != p {
		return fmt.Errorf("%w: %s to move", ErrNotYourTurn, s.turn)
	}
	return nil
}

func (s *Session) apply(t Turn) Turn {
	s.jars[0] -= t.TakeA
	s.jars[1] -= t.TakeB
	t.After = s.jars
	s.history = append(s.history, t)

	if s.jars == [2]int{} {
		s.winner = t.Player
		return t
	}
	if t.Player == Human {
		s.turn = Computer
	} else {
		s.turn = Human
	}
	return t
}
