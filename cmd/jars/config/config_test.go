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

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, Validate(cfg))
	assert.Equal(t, 2, cfg.Analysis.Jars)
	assert.Equal(t, 10, cfg.Analysis.MaxCookies)
	assert.Equal(t, "prometheus", cfg.Telemetry.MetricExporter)
}

func TestLoad_CreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "jars.yaml")

	cfg, created, err := Load(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, DefaultConfig(), cfg)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk JarsConfig
	require.NoError(t, yaml.Unmarshal(data, &onDisk))
	assert.Equal(t, DefaultConfig(), onDisk)

	_, created, err = Load(path)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jars.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis:\n  jars: 3\n  max_cookies: 6\n"), 0644))

	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Analysis.Jars)
	assert.Equal(t, 6, cfg.Analysis.MaxCookies)
	assert.Equal(t, 8090, cfg.Server.Port)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"too many jars", "analysis:\n  jars: 7\n"},
		{"zero cookies", "analysis:\n  max_cookies: 0\n"},
		{"bad level", "logging:\n  level: loud\n"},
		{"bad exporter", "telemetry:\n  trace_exporter: zipkin\n"},
		{"bad port", "server:\n  port: 70000\n"},
		{"negative rate", "server:\n  rate_limit: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "jars.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))

			_, _, err := Load(path)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jars.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis: [unterminated"), 0644))

	_, _, err := Load(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestWatcher_Reloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jars.yaml")
	_, _, err := Load(path)
	require.NoError(t, err)

	changes := make(chan JarsConfig, 8)
	w, err := NewWatcher(path, func(cfg JarsConfig) { changes <- cfg }, quietLogger())
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	started := make(chan struct{})
	go func() {
		close(started)
		_ = w.Start(ctx)
	}()
	<-started

	// Give Start a moment to register the directory before writing.
	time.Sleep(100 * time.Millisecond)

	cfg := DefaultConfig()
	cfg.Server.RateLimit = 5
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	// A truncating write can surface an intermediate empty file first.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-changes:
			if got.Server.RateLimit == 5 {
				return
			}
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}

func TestWatcher_IgnoresInvalidAndOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jars.yaml")
	_, _, err := Load(path)
	require.NoError(t, err)

	var calls int
	w, err := NewWatcher(path, func(JarsConfig) { calls++ }, quietLogger())
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("analysis:\n  jars: 99\n"), 0644))
	w.handleEvent(fsnotifyWrite(path))
	w.handleEvent(fsnotifyWrite(filepath.Join(dir, "other.yaml")))

	assert.Equal(t, 0, calls)
}

func fsnotifyWrite(name string) fsnotify.Event {
	return fsnotify.Event{Name: name, Op: fsnotify.Write}
}
