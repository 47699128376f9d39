// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package errsink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bureau-foundation/timezoner/messaging"
)

// DefaultFileName is the report file the bot appends to when no path
// is configured.
const DefaultFileName = "timezoner_errors.txt"

// LogSink writes each report as one error-level log record.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Send(_ context.Context, report Report) error {
	attrs := []any{
		"report_id", report.ID.String(),
		"error", report.Message(),
	}
	for _, key := range slices.Sorted(maps.Keys(report.Attrs)) {
		attrs = append(attrs, key, report.Attrs[key])
	}
	if len(report.Stack) > 0 {
		attrs = append(attrs, "stack", string(report.Stack))
	}
	s.Logger.Error("error report", attrs...)
	return nil
}

// fileRecord is the on-disk form of a report.
type fileRecord struct {
	ID    string            `json:"id"`
	Time  time.Time         `json:"time"`
	Error string            `json:"error"`
	Attrs map[string]string `json:"attrs,omitempty"`
	Stack string            `json:"stack,omitempty"`
}

// FileSink appends reports as JSON lines. Each Send opens the file in
// append mode, so the file can be rotated away underneath a running
// bot.
type FileSink struct {
	path string
	mu   sync.Mutex
}

// NewFileSink returns a sink appending to path.
func NewFileSink(path string) *FileSink {
	if path == "" {
		path = DefaultFileName
	}
	return &FileSink{path: path}
}

func (s *FileSink) Send(_ context.Context, report Report) error {
	line, err := json.Marshal(fileRecord{
		ID:    report.ID.String(),
		Time:  report.Time,
		Error: report.Message(),
		Attrs: report.Attrs,
		Stack: string(report.Stack),
	})
	if err != nil {
		return fmt.Errorf("errsink: encoding report: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o600)
	if err != nil {
		return fmt.Errorf("errsink: opening %s: %w", s.path, err)
	}
	if _, err := file.Write(line); err != nil {
		file.Close()
		return fmt.Errorf("errsink: writing %s: %w", s.path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("errsink: closing %s: %w", s.path, err)
	}
	return nil
}

// MessageSender is the part of a Matrix session RoomSink needs.
type MessageSender interface {
	SendMessage(ctx context.Context, roomID string, content messaging.MessageContent) (string, error)
}

// maxStackLines keeps room notices readable. The full stack still goes
// to the other sinks.
const maxStackLines = 30

// RoomSink posts reports as notices in the owner's room.
type RoomSink struct {
	Sender MessageSender
	RoomID string
}

func (s RoomSink) Send(ctx context.Context, report Report) error {
	var body strings.Builder
	fmt.Fprintf(&body, "error report %s at %s\n%s",
		report.ID, report.Time.Format(time.RFC3339), report.Message())
	for _, key := range slices.Sorted(maps.Keys(report.Attrs)) {
		fmt.Fprintf(&body, "\n%s: %s", key, report.Attrs[key])
	}
	if len(report.Stack) > 0 {
		lines := strings.Split(strings.TrimRight(string(report.Stack), "\n"), "\n")
		if len(lines) > maxStackLines {
			lines = append(lines[:maxStackLines], "...")
		}
		body.WriteString("\n\n")
		body.WriteString(strings.Join(lines, "\n"))
	}

	if _, err := s.Sender.SendMessage(ctx, s.RoomID, messaging.NewNotice(body.String())); err != nil {
		return fmt.Errorf("errsink: posting report to %s: %w", s.RoomID, err)
	}
	return nil
}
