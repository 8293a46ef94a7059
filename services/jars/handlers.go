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
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/AleutianAI/jars/services/jars/classifier"
	"github.com/AleutianAI/jars/services/jars/position"
	"github.com/AleutianAI/jars/services/jars/sieve"
	"github.com/AleutianAI/jars/services/jars/strategy"
	"github.com/AleutianAI/jars/services/jars/wythoff"
	"github.com/gin-gonic/gin"
)

// Handlers contains the HTTP handlers for the jars service.
type Handlers struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandlers creates handlers for the given service. A nil logger uses
// slog.Default().
func NewHandlers(svc *Service, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{svc: svc, logger: logger}
}

// HandleHealth handles GET /v1/jars/health.
//
// Response:
//
//	200 OK: HealthResponse
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: ServiceVersion,
		Cached:  h.svc.CacheSize(),
	})
}

// HandleClassify handles POST /v1/jars/classify.
//
// Description:
//
//	Classifies one position. Reducible positions come back with the safe
//	ancestor and the move that separates it from the query.
//
// Request Body:
//
//	ClassifyRequest
//
// Response:
//
//	200 OK: ClassifyResponse
//	400 Bad Request: Validation error or invalid query
//	500 Internal Server Error: Inconsistent table
func (h *Handlers) HandleClassify(c *gin.Context) {
	logger := h.logger.With("request_id", getOrCreateRequestID(c), "handler", "HandleClassify")

	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}

	resp, err := h.svc.Classify(c.Request.Context(), req.Jars, req.MaxCookies, req.Position)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	logger.Debug("Classified", "query", resp.Query.String(), "status", resp.Status)
	c.JSON(http.StatusOK, resp)
}

// HandleClassifyBatch handles POST /v1/jars/classify/batch.
//
// Description:
//
//	Classifies many positions against one table. A bad position fails its
//	own item only.
//
// Response:
//
//	200 OK: ClassifyBatchResponse
//	400 Bad Request: Validation error or batch too large
func (h *Handlers) HandleClassifyBatch(c *gin.Context) {
	logger := h.logger.With("request_id", getOrCreateRequestID(c), "handler", "HandleClassifyBatch")

	var req ClassifyBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}

	resp, err := h.svc.ClassifyBatch(c.Request.Context(), req.Jars, req.MaxCookies, req.Positions)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	logger.Info("Batch classified", "size", len(resp.Items), "failed", resp.Failed)
	c.JSON(http.StatusOK, resp)
}

// HandleStrategy handles POST /v1/jars/strategy.
//
// Response:
//
//	200 OK: StrategyResponse
//	400 Bad Request: Validation error or jar out of range
//	409 Conflict: The position is already safe
func (h *Handlers) HandleStrategy(c *gin.Context) {
	logger := h.logger.With("request_id", getOrCreateRequestID(c), "handler", "HandleStrategy")

	var req StrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}

	resp, err := h.svc.Strategy(c.Request.Context(), req.Jars[0], req.Jars[1])
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleSafes handles GET /v1/jars/safes.
//
// Query Parameters:
//
//	jars: Number of jars (required)
//	max_cookies: Per-jar bound (required)
//	normalise: Also return each safe state shifted by its minimum
//
// Response:
//
//	200 OK: SafesResponse
//	400 Bad Request: Validation error or bounds too large
func (h *Handlers) HandleSafes(c *gin.Context) {
	logger := h.logger.With("request_id", getOrCreateRequestID(c), "handler", "HandleSafes")

	var q SafesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, logger, err)
		return
	}

	resp, err := h.svc.Safes(c.Request.Context(), q.Jars, q.MaxCookies, q.Normalise)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandlePairs handles GET /v1/jars/pairs.
//
// Query Parameters:
//
//	bound: Largest jar size the table must cover (default 0)
//
// Response:
//
//	200 OK: PairsResponse
//	400 Bad Request: Validation error or bound too large
func (h *Handlers) HandlePairs(c *gin.Context) {
	logger := h.logger.With("request_id", getOrCreateRequestID(c), "handler", "HandlePairs")

	var q PairsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, logger, err)
		return
	}

	table, err := h.svc.Pairs(c.Request.Context(), q.Bound)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, PairsResponse{Bound: table.Bound(), Pairs: table.Pairs()})
}

func badRequest(c *gin.Context, logger *slog.Logger, err error) {
	logger.WarnContext(c.Request.Context(), "Invalid request", "error", err)
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Invalid request",
		Code:    "INVALID_REQUEST",
		Details: err.Error(),
	})
}

// writeError maps service errors onto HTTP responses.
func (h *Handlers) writeError(c *gin.Context, logger *slog.Logger, err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(c.Request.Context(), "Request failed", "error", err, "code", code)
	} else {
		logger.WarnContext(c.Request.Context(), "Request rejected", "error", err, "code", code)
	}
	c.JSON(status, ErrorResponse{
		Error:   http.StatusText(status),
		Code:    code,
		Details: err.Error(),
	})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, classifier.ErrInvalidQuery):
		return http.StatusBadRequest, "INVALID_QUERY"
	case errors.Is(err, position.ErrInvalidShape):
		return http.StatusBadRequest, "INVALID_SHAPE"
	case errors.Is(err, wythoff.ErrInvalidBound):
		return http.StatusBadRequest, "INVALID_BOUND"
	case errors.Is(err, ErrBoundsTooLarge):
		return http.StatusBadRequest, "BOUNDS_TOO_LARGE"
	case errors.Is(err, ErrBatchTooLarge):
		return http.StatusBadRequest, "BATCH_TOO_LARGE"
	case errors.Is(err, strategy.ErrOutOfRange):
		return http.StatusBadRequest, "OUT_OF_RANGE"
	case errors.Is(err, strategy.ErrAlreadySafe):
		return http.StatusConflict, "ALREADY_SAFE"
	case errors.Is(err, sieve.ErrInconsistentTable), errors.Is(err, classifier.ErrInconsistentSource),
		errors.Is(err, strategy.ErrConfused):
		return http.StatusInternalServerError, "INCONSISTENT_TABLE"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "CANCELLED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
