// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package errsink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/timezoner/lib/clock"
	"github.com/bureau-foundation/timezoner/messaging"
)

type recordingSink struct {
	mu      sync.Mutex
	reports []Report
	err     error
}

func (s *recordingSink) Send(_ context.Context, report Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return s.err
}

func TestReporterFillsIdentity(t *testing.T) {
	sink := &recordingSink{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reporter := NewReporter(sink, clock.Fake(now), nil)

	report := reporter.Report(context.Background(), Report{Err: errors.New("boom")})
	if report.ID == uuid.Nil {
		t.Error("report ID not assigned")
	}
	if !report.Time.Equal(now) {
		t.Errorf("report time = %v, want %v", report.Time, now)
	}
	if len(sink.reports) != 1 || sink.reports[0].ID != report.ID {
		t.Fatalf("sink received %+v", sink.reports)
	}

	fixed := uuid.New()
	report = reporter.Report(context.Background(), Report{ID: fixed, Err: errors.New("again")})
	if report.ID != fixed {
		t.Error("existing report ID was replaced")
	}
}

func TestReporterSwallowsSinkFailure(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	reporter := NewReporter(&recordingSink{err: errors.New("owner room unreachable")}, nil, logger)

	report := reporter.Report(context.Background(), Report{Err: errors.New("boom")})
	if report.ID == uuid.Nil {
		t.Error("report should still be completed")
	}
	if !strings.Contains(logs.String(), "owner room unreachable") {
		t.Errorf("sink failure not logged: %s", logs.String())
	}
}

func TestReporterIgnoresCallerCancellation(t *testing.T) {
	var sawCancelled bool
	sink := sinkFunc(func(ctx context.Context, _ Report) error {
		sawCancelled = ctx.Err() != nil
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	NewReporter(sink, nil, nil).Report(ctx, Report{Err: errors.New("late")})
	if sawCancelled {
		t.Error("delivery context inherited the caller's cancellation")
	}
}

type sinkFunc func(context.Context, Report) error

func (f sinkFunc) Send(ctx context.Context, report Report) error { return f(ctx, report) }

func TestMulti(t *testing.T) {
	first := &recordingSink{err: errors.New("first failed")}
	second := &recordingSink{}
	err := Multi(first, second).Send(context.Background(), Report{Err: errors.New("x")})
	if err == nil || !strings.Contains(err.Error(), "first failed") {
		t.Errorf("Multi error = %v", err)
	}
	if len(second.reports) != 1 {
		t.Error("a failing sink stopped delivery to the next one")
	}
}

func TestLogSink(t *testing.T) {
	var logs bytes.Buffer
	sink := LogSink{Logger: slog.New(slog.NewJSONHandler(&logs, nil))}
	report := Report{
		ID:    uuid.New(),
		Err:   errors.New("store unavailable"),
		Attrs: map[string]string{"room_id": "!r:example.org"},
	}
	if err := sink.Send(context.Background(), report); err != nil {
		t.Fatal(err)
	}
	var record map[string]any
	if err := json.Unmarshal(logs.Bytes(), &record); err != nil {
		t.Fatalf("log output is not one JSON record: %v", err)
	}
	if record["level"] != "ERROR" || record["error"] != "store unavailable" || record["room_id"] != "!r:example.org" {
		t.Errorf("log record = %v", record)
	}
}

func TestFileSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	sink := NewFileSink(path)

	var waitGroup sync.WaitGroup
	for i := range 8 {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			report := Report{ID: uuid.New(), Err: errors.New("failure"), Stack: []byte("goroutine 1\n")}
			if i%2 == 0 {
				report.Attrs = map[string]string{"kind": "submit"}
			}
			if err := sink.Send(context.Background(), report); err != nil {
				t.Error(err)
			}
		}()
	}
	waitGroup.Wait()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 8 {
		t.Fatalf("got %d lines, want 8", len(lines))
	}
	for _, line := range lines {
		var record fileRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("line %q: %v", line, err)
		}
		if record.Error != "failure" || record.Stack == "" {
			t.Errorf("record = %+v", record)
		}
	}
}

func TestFileSinkUnwritable(t *testing.T) {
	sink := NewFileSink(filepath.Join(t.TempDir(), "missing", "errors.txt"))
	if err := sink.Send(context.Background(), Report{Err: errors.New("x")}); err == nil {
		t.Error("Send into a missing directory should fail")
	}
}

type recordingSender struct {
	roomID  string
	content messaging.MessageContent
	err     error
}

func (s *recordingSender) SendMessage(_ context.Context, roomID string, content messaging.MessageContent) (string, error) {
	s.roomID = roomID
	s.content = content
	return "$event", s.err
}

func TestRoomSink(t *testing.T) {
	sender := &recordingSender{}
	sink := RoomSink{Sender: sender, RoomID: "!owner:example.org"}

	var stack strings.Builder
	for i := range 50 {
		stack.WriteString("frame ")
		stack.WriteString(strings.Repeat("x", i%3))
		stack.WriteString("\n")
	}
	report := Report{
		ID:    uuid.New(),
		Time:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Err:   errors.New("handler panicked"),
		Attrs: map[string]string{"event_kind": "submit"},
		Stack: []byte(stack.String()),
	}
	if err := sink.Send(context.Background(), report); err != nil {
		t.Fatal(err)
	}
	if sender.roomID != "!owner:example.org" || sender.content.MsgType != "m.notice" {
		t.Errorf("sent %+v to %s", sender.content, sender.roomID)
	}
	body := sender.content.Body
	for _, want := range []string{report.ID.String(), "handler panicked", "event_kind: submit", "2026-03-01T12:00:00Z", "..."} {
		if !strings.Contains(body, want) {
			t.Errorf("notice missing %q:\n%s", want, body)
		}
	}
	if strings.Count(body, "frame") != maxStackLines {
		t.Errorf("stack not truncated to %d lines", maxStackLines)
	}

	sender.err = errors.New("forbidden")
	if err := sink.Send(context.Background(), report); err == nil {
		t.Error("RoomSink should return the send failure")
	}
}
