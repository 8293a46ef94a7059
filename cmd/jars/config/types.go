// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

// JarsConfig is the on-disk configuration for the jars CLI and server.
type JarsConfig struct {
	// Analysis holds the defaults for safes, solve and the HTTP limits.
	Analysis AnalysisConfig `yaml:"analysis" validate:"required"`

	Logging LoggingConfig `yaml:"logging"`

	Server ServerConfig `yaml:"server" validate:"required"`

	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// AnalysisConfig sets the default table shape.
type AnalysisConfig struct {
	Jars       int `yaml:"jars" validate:"min=1,max=6"`
	MaxCookies int `yaml:"max_cookies" validate:"min=1"`

	// MaxMove caps the cookies taken from one jar per move. 0 means
	// MaxCookies.
	MaxMove int `yaml:"max_move" validate:"min=0"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Dir   string `yaml:"dir,omitempty"`
	JSON  bool   `yaml:"json"`
}

// ServerConfig configures `jars serve`. Every field here is reloaded live.
type ServerConfig struct {
	Port int `yaml:"port" validate:"min=1,max=65535"`

	// RateLimit is requests per second; 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit" validate:"min=0"`
	Burst     int     `yaml:"burst" validate:"min=1"`

	BatchConcurrency int  `yaml:"batch_concurrency" validate:"min=1,max=256"`
	MaxJars          int  `yaml:"max_jars" validate:"min=1,max=6"`
	MaxCookies       int  `yaml:"max_cookies" validate:"min=1"`
	MaxStates        int  `yaml:"max_states" validate:"min=1"`
	MaxBatch         int  `yaml:"max_batch" validate:"min=1"`
	PreferPairs      bool `yaml:"prefer_pairs"`
}

type TelemetryConfig struct {
	TraceExporter  string `yaml:"trace_exporter" validate:"omitempty,oneof=otlp stdout none"`
	MetricExporter string `yaml:"metric_exporter" validate:"omitempty,oneof=prometheus stdout none"`
	OTLPEndpoint   string `yaml:"otlp_endpoint,omitempty" validate:"omitempty,hostname_port"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() JarsConfig {
	return JarsConfig{
		Analysis: AnalysisConfig{
			Jars:       2,
			MaxCookies: 10,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
		Server: ServerConfig{
			Port:             8090,
			RateLimit:        50,
			Burst:            100,
			BatchConcurrency: 8,
			MaxJars:          6,
			MaxCookies:       100000,
			MaxStates:        250000,
			MaxBatch:         1000,
			PreferPairs:      true,
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			OTLPEndpoint:   "localhost:4317",
		},
	}
}
