// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package jars

import (
	"github.com/AleutianAI/jars/services/jars/classifier"
	"github.com/AleutianAI/jars/services/jars/position"
	"github.com/AleutianAI/jars/services/jars/strategy"
	"github.com/AleutianAI/jars/services/jars/wythoff"
)

// =============================================================================
// Requests
// =============================================================================

// ClassifyRequest is the request for POST /v1/jars/classify.
type ClassifyRequest struct {
	// Jars is the number of jars. Must match len(Position).
	Jars int `json:"jars" binding:"required,min=1"`

	// MaxCookies is the largest cookie count per jar the table covers.
	MaxCookies int `json:"max_cookies" binding:"required,min=1"`

	// Position is the state to classify, in any jar order.
	Position []int `json:"position" binding:"required,min=1"`
}

// ClassifyBatchRequest is the request for POST /v1/jars/classify/batch.
type ClassifyBatchRequest struct {
	Jars       int     `json:"jars" binding:"required,min=1"`
	MaxCookies int     `json:"max_cookies" binding:"required,min=1"`
	Positions  [][]int `json:"positions" binding:"required,min=1"`
}

// StrategyRequest is the request for POST /v1/jars/strategy.
type StrategyRequest struct {
	// Jars holds the two jar counts.
	Jars []int `json:"jars" binding:"required,len=2"`
}

// SafesQuery is the query string for GET /v1/jars/safes.
type SafesQuery struct {
	Jars       int  `form:"jars" binding:"required,min=1"`
	MaxCookies int  `form:"max_cookies" binding:"required,min=1"`
	Normalise  bool `form:"normalise"`
}

// PairsQuery is the query string for GET /v1/jars/pairs.
type PairsQuery struct {
	Bound int `form:"bound" binding:"min=0"`
}

// =============================================================================
// Responses
// =============================================================================

// ClassifyResponse is one classification.
type ClassifyResponse struct {
	classifier.Result

	// Source names the table that answered.
	Source Source `json:"source"`
}

// BatchItemResponse is one entry of a batch response. Exactly one of
// Result or Error is set.
type BatchItemResponse struct {
	Index  int                `json:"index"`
	Result *classifier.Result `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// ClassifyBatchResponse is the response for POST /v1/jars/classify/batch.
type ClassifyBatchResponse struct {
	Source Source              `json:"source"`
	Items  []BatchItemResponse `json:"items"`
	Failed int                 `json:"failed"`
}

// StrategyResponse is the computer's move in the caller's jar order.
type StrategyResponse struct {
	Take   [2]int          `json:"take"`
	Target [2]int          `json:"target"`
	Branch strategy.Branch `json:"branch"`
}

// SafesResponse lists the safe positions of one table.
type SafesResponse struct {
	Jars       int                 `json:"jars"`
	MaxCookies int                 `json:"max_cookies"`
	Source     Source              `json:"source"`
	Count      int                 `json:"count"`
	Safes      []position.Position `json:"safes"`
	Normalised []position.Position `json:"normalised,omitempty"`
}

// PairsResponse lists the pair table covering Bound.
type PairsResponse struct {
	Bound int            `json:"bound"`
	Pairs []wythoff.Pair `json:"pairs"`
}

// HealthResponse is the response for GET /v1/jars/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Cached  int    `json:"cached"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the error code.
	Code string `json:"code,omitempty"`

	// Details provides additional error context (optional).
	Details string `json:"details,omitempty"`
}
