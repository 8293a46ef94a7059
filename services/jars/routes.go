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
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RegisterRoutes registers all jars routes with the router.
//
// Description:
//
//	Registers all /v1/jars/* endpoints with the given Gin router group.
//	The router group should already have any required middleware applied.
//
// Endpoints:
//
//	GET  /v1/jars/health - Health check
//	POST /v1/jars/classify - Classify one position
//	POST /v1/jars/classify/batch - Classify many positions
//	POST /v1/jars/strategy - Two-jar strategy move
//	GET  /v1/jars/safes - Safe positions of a table
//	GET  /v1/jars/pairs - Two-jar pair table
//
// Example:
//
//	svc := jars.NewService(jars.DefaultServiceConfig(), logger)
//	v1 := router.Group("/v1")
//	jars.RegisterRoutes(v1, jars.NewHandlers(svc, logger))
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	j := rg.Group("/jars")
	{
		j.GET("/health", handlers.HandleHealth)

		j.POST("/classify", handlers.HandleClassify)
		j.POST("/classify/batch", handlers.HandleClassifyBatch)
		j.POST("/strategy", handlers.HandleStrategy)

		j.GET("/safes", handlers.HandleSafes)
		j.GET("/pairs", handlers.HandlePairs)
	}
}

// NewRouter builds the engine used by the serve command: recovery, tracing,
// request IDs and rate limiting in front of the /v1/jars routes. A nil
// limiter disables rate limiting.
func NewRouter(serviceName string, handlers *Handlers, limiter *RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(RequestID())
	if limiter != nil {
		router.Use(limiter.Middleware())
	}

	RegisterRoutes(router.Group("/v1"), handlers)
	return router
}
