// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/bureau-foundation/timezoner/lib/config"
)

func TestNewLogger(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "warn"

	var output bytes.Buffer
	logger, err := newLogger(cfg, &output)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info is enabled at level warn")
	}
	logger.Warn("index drift", "entries", 2)
	if !strings.Contains(output.String(), `"msg":"index drift"`) {
		t.Errorf("output = %q, want a JSON record", output.String())
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "loud"
	if _, err := newLogger(cfg, &bytes.Buffer{}); err == nil {
		t.Error("newLogger with log_level loud should fail")
	}
}
