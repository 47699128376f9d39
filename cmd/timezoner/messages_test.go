// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/timezoner/lib/event"
	"github.com/bureau-foundation/timezoner/lib/statecache"
	"github.com/bureau-foundation/timezoner/lib/tzcatalog"
)

func TestNotFoundMessage(t *testing.T) {
	if got := notFoundMessage(nil); got != messageNotFound {
		t.Errorf("notFoundMessage(nil) = %q", got)
	}
	got := notFoundMessage([]tzcatalog.Zone{"Europe/Paris", "Europe/Prague"})
	want := messageNotFound + "\n\ndid you mean `Europe/Paris`, `Europe/Prague`?"
	if got != want {
		t.Errorf("notFoundMessage = %q, want %q", got, want)
	}
}

func TestShowMessage(t *testing.T) {
	now := time.Date(2026, 7, 15, 20, 30, 0, 0, time.UTC)
	tests := []struct {
		zone tzcatalog.Zone
		want string
	}{
		{zone: "Asia/Tokyo", want: "your timezone is `Asia/Tokyo`. it's 05:30 on Thursday there (UTC+09:00)"},
		{zone: "America/New_York", want: "your timezone is `America/New_York`. it's 16:30 on Wednesday there (UTC-04:00)"},
		{zone: "UTC", want: "your timezone is `UTC`. it's 20:30 on Wednesday there (UTC+00:00)"},
		{zone: "Not/AZone", want: "your timezone is `Not/AZone`"},
	}
	for _, test := range tests {
		if got := showMessage(test.zone, now); got != test.want {
			t.Errorf("showMessage(%s) = %q, want %q", test.zone, got, test.want)
		}
	}
}

func TestInternalErrorMessage(t *testing.T) {
	got := internalErrorMessage("0f0e")
	if !strings.HasSuffix(got, "(ref 0f0e)") {
		t.Errorf("internalErrorMessage = %q", got)
	}
}

func TestRender(t *testing.T) {
	responder := NewResponder(&fakeSession{}, statecache.New())
	tests := []struct {
		input string
		want  string
	}{
		{input: "plain words", want: "plain words"},
		{input: "use `!timezone`", want: "use <code>!timezone</code>"},
		{input: "one\n\ntwo", want: "<p>one</p>\n<p>two</p>"},
		{input: "see https://example.org", want: `see <a href="https://example.org">https://example.org</a>`},
	}
	for _, test := range tests {
		got, err := responder.render(test.input)
		if err != nil {
			t.Fatalf("render(%q): %v", test.input, err)
		}
		if got != test.want {
			t.Errorf("render(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestNoticeFallsBackToUserID(t *testing.T) {
	session := &fakeSession{}
	responder := NewResponder(session, statecache.New())
	e := event.Event{Kind: event.Help, RoomID: testRoom, Sender: "@stranger:example.org"}
	if err := responder.Notice(context.Background(), e, "hi"); err != nil {
		t.Fatal(err)
	}
	notice := requireSingleNotice(t, session)
	if notice.Body != "@stranger:example.org: hi" {
		t.Errorf("body = %q", notice.Body)
	}
	if notice.Format != htmlFormat {
		t.Errorf("format = %q", notice.Format)
	}
}
