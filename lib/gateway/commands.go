// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"strings"

	"github.com/bureau-foundation/timezoner/lib/event"
	"github.com/bureau-foundation/timezoner/messaging"
)

const (
	commandTimezone    = "!timezone"
	commandSetTimezone = "!set_timezone"
	commandHelp        = "!help"

	interactionCommand = "set_timezone"
)

// parseCommand maps a message body to an interaction. ok is false for
// anything that is not a timezoner command.
func parseCommand(body string) (kind event.Kind, value string, ok bool) {
	body = strings.TrimSpace(body)
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return "", "", false
	}
	name := fields[0]
	value = strings.TrimSpace(body[len(name):])

	switch strings.ToLower(name) {
	case commandTimezone:
		if value == "" {
			return event.Show, "", true
		}
		return event.Command, value, true
	case commandSetTimezone:
		if value == "" {
			return event.Help, "", true
		}
		return event.Command, value, true
	case commandHelp:
		return event.Help, "", true
	}
	return "", "", false
}

// parseInteraction reads a dev.timezoner.interaction event.
func parseInteraction(raw messaging.Event) (event.Kind, *event.Interaction, bool) {
	if raw.ContentString("command") != interactionCommand {
		return "", nil, false
	}
	interaction := &event.Interaction{
		Value:     raw.ContentString("value"),
		RequestID: raw.ContentString("request_id"),
	}
	switch raw.ContentString("kind") {
	case "autocomplete":
		return event.Autocomplete, interaction, true
	case "submit":
		return event.Submit, interaction, true
	}
	return "", nil, false
}
