// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"testing"

	"github.com/bureau-foundation/timezoner/lib/event"
	"github.com/bureau-foundation/timezoner/messaging"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		body      string
		wantKind  event.Kind
		wantValue string
		wantOK    bool
	}{
		{body: "!timezone Asia/Tokyo", wantKind: event.Command, wantValue: "Asia/Tokyo", wantOK: true},
		{body: "  !timezone   Tokyo, Japan  ", wantKind: event.Command, wantValue: "Tokyo, Japan", wantOK: true},
		{body: "!set_timezone America/New_York", wantKind: event.Command, wantValue: "America/New_York", wantOK: true},
		{body: "!TIMEZONE Europe/Paris", wantKind: event.Command, wantValue: "Europe/Paris", wantOK: true},
		{body: "!timezone\tUTC", wantKind: event.Command, wantValue: "UTC", wantOK: true},
		{body: "!timezone", wantKind: event.Show, wantOK: true},
		{body: "!timezone   ", wantKind: event.Show, wantOK: true},
		{body: "!set_timezone", wantKind: event.Help, wantOK: true},
		{body: "!help", wantKind: event.Help, wantOK: true},
		{body: "!help me please", wantKind: event.Help, wantOK: true},
		{body: "what's the !timezone", wantOK: false},
		{body: "!timezones", wantOK: false},
		{body: "", wantOK: false},
		{body: "hello", wantOK: false},
	}
	for _, test := range tests {
		t.Run(test.body, func(t *testing.T) {
			kind, value, ok := parseCommand(test.body)
			if ok != test.wantOK || kind != test.wantKind || value != test.wantValue {
				t.Errorf("parseCommand(%q) = %q, %q, %v; want %q, %q, %v",
					test.body, kind, value, ok, test.wantKind, test.wantValue, test.wantOK)
			}
		})
	}
}

func TestParseInteraction(t *testing.T) {
	tests := []struct {
		name     string
		content  map[string]any
		wantKind event.Kind
		wantOK   bool
	}{
		{
			name:     "autocomplete",
			content:  map[string]any{"command": "set_timezone", "kind": "autocomplete", "value": "Tok", "request_id": "r1"},
			wantKind: event.Autocomplete,
			wantOK:   true,
		},
		{
			name:     "submit",
			content:  map[string]any{"command": "set_timezone", "kind": "submit", "value": "Tokyo", "request_id": "r2"},
			wantKind: event.Submit,
			wantOK:   true,
		},
		{name: "other command", content: map[string]any{"command": "weather", "kind": "submit", "value": "x"}},
		{name: "unknown kind", content: map[string]any{"command": "set_timezone", "kind": "delete"}},
		{name: "non-string fields", content: map[string]any{"command": 7, "kind": true}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			kind, interaction, ok := parseInteraction(messaging.Event{Type: InteractionEventType, Content: test.content})
			if ok != test.wantOK || kind != test.wantKind {
				t.Fatalf("parseInteraction = %q, %v; want %q, %v", kind, ok, test.wantKind, test.wantOK)
			}
			if !ok {
				return
			}
			if interaction.Value != test.content["value"] || interaction.RequestID != test.content["request_id"] {
				t.Errorf("interaction = %+v", interaction)
			}
		})
	}
}
