// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package classifier

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/jars/services/jars/position"
)

// Sentinel errors for classification.
var (
	// ErrInvalidQuery indicates a query of the wrong length or with a
	// coordinate outside the analyzed bound. The caller may fix the query and
	// retry; the source is untouched.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrInconsistentSource indicates a source that named an ancestor from
	// which no single move reaches the query.
	ErrInconsistentSource = errors.New("safe source is inconsistent")
)

// QueryError describes why a query was rejected.
type QueryError struct {
	// Query is the rejected position as supplied.
	Query position.Position

	// Reason is a short human readable explanation.
	Reason string
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("%v %v: %s", ErrInvalidQuery, e.Query, e.Reason)
}

// Unwrap returns ErrInvalidQuery.
func (e *QueryError) Unwrap() error {
	return ErrInvalidQuery
}
