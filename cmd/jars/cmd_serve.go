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
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AleutianAI/jars/cmd/jars/config"
	"github.com/AleutianAI/jars/pkg/telemetry"
	"github.com/AleutianAI/jars/pkg/ux"
	"github.com/AleutianAI/jars/services/jars"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func (c *cli) serveCmd() *cobra.Command {
	var port int
	var debug bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the jars HTTP API",
		Long: `Starts the HTTP API under /v1/jars with Prometheus metrics on /metrics.
Service limits and the rate limit are reloaded when the config file
changes; the port is not.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("port") {
				port = c.cfg.Server.Port
			}
			return c.runServe(cmd, port, debug)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (default from config)")
	cmd.Flags().BoolVar(&debug, "debug", false, "run gin in debug mode")
	return cmd
}

func (c *cli) runServe(cmd *cobra.Command, port int, debug bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telCfg := telemetry.DefaultConfig()
	if c.cfg.Telemetry.TraceExporter != "" {
		telCfg.TraceExporter = c.cfg.Telemetry.TraceExporter
	}
	if c.cfg.Telemetry.MetricExporter != "" {
		telCfg.MetricExporter = c.cfg.Telemetry.MetricExporter
	}
	if c.cfg.Telemetry.OTLPEndpoint != "" {
		telCfg.OTLPEndpoint = c.cfg.Telemetry.OTLPEndpoint
	}
	telCfg.ServiceVersion = jars.ServiceVersion
	shutdownTelemetry, err := telemetry.Init(ctx, telCfg)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			c.logger.Warn("Telemetry shutdown failed", "error", err)
		}
	}()

	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	svc := jars.NewService(serviceConfig(c.cfg.Server), c.logger.Slog())
	limiter := jars.NewRateLimiter(c.cfg.Server.RateLimit, c.cfg.Server.Burst)
	router := jars.NewRouter("jars", jars.NewHandlers(svc, c.logger.Slog()), limiter)
	metrics := telemetry.MetricsHandler()
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	router.GET("/metrics", gin.WrapH(metrics))

	watcher, err := config.NewWatcher(c.configPath, func(cfg config.JarsConfig) {
		svc.UpdateConfig(serviceConfig(cfg.Server))
		limiter.Update(cfg.Server.RateLimit, cfg.Server.Burst)
		c.logger.Debug("Applied server limits", "rate_limit", cfg.Server.RateLimit, "burst", cfg.Server.Burst)
	}, c.logger.Slog())
	if err != nil {
		c.logger.Warn("Config reload disabled", "error", err)
	} else {
		defer func() { _ = watcher.Stop() }()
		go func() {
			if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				c.logger.Warn("Config watcher stopped", "error", err)
			}
		}()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.logger.Info("Starting jars server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if ux.GetPersonality().Level != ux.PersonalityMachine {
		ux.Box(cmd.OutOrStdout(), "jars server",
			fmt.Sprintf("API:     http://localhost:%d/v1/jars\nMetrics: http://localhost:%d/metrics", port, port))
	}

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	c.logger.Info("Shutting down jars server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// serviceConfig maps the server section onto the service limits.
func serviceConfig(s config.ServerConfig) jars.ServiceConfig {
	return jars.ServiceConfig{
		MaxJars:          s.MaxJars,
		MaxCookies:       s.MaxCookies,
		MaxStates:        s.MaxStates,
		MaxBatch:         s.MaxBatch,
		BatchConcurrency: s.BatchConcurrency,
		PreferPairs:      s.PreferPairs,
	}
}
