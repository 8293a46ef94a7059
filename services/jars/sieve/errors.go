// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sieve

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/jars/services/jars/position"
)

// ErrInconsistentTable indicates a safe position found inside the closure of
// a safe position. A table in this state is never published.
var ErrInconsistentTable = errors.New("inconsistent safe table")

// InconsistencyError names the safe position that a closure contains and
// the safe position whose closure it is.
//
// # Description
//
// Returned by Build and Verify. It wraps ErrInconsistentTable so callers can
// match it with errors.Is, and carries both positions for diagnosis.
type InconsistencyError struct {
	// Safe is the safe position found inside a closure.
	Safe position.Position

	// Ancestor is the safe position whose closure contains Safe. Equal to
	// Safe when a position reaches itself.
	Ancestor position.Position
}

// Error implements the error interface.
func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%v: safe position %v lies in the closure of safe position %v",
		ErrInconsistentTable, e.Safe, e.Ancestor)
}

// Unwrap returns ErrInconsistentTable.
func (e *InconsistencyError) Unwrap() error {
	return ErrInconsistentTable
}
