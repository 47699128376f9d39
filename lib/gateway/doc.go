// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package gateway turns Matrix /sync long-polling into the ordered
// inbound event stream consumed by lib/dispatch.
//
// The first sync seeds room state only: members and room names are
// emitted, the historical timeline is not replayed as interactions.
// Incremental syncs follow with exponential backoff on failure. Invites
// are accepted as they arrive. Every sync response is translated into
// events in a fixed order (rooms sorted by ID, events in timeline
// order), and each event gets the next sequence number.
//
// User requests arrive two ways. Text commands in m.room.message:
//
//	!timezone <text>       set, exact-match path
//	!set_timezone <text>   same
//	!timezone              show the stored time zone
//	!help                  usage
//
// and the dev.timezoner.interaction custom event sent by clients that
// support live suggestions:
//
//	{"command": "set_timezone", "kind": "autocomplete" | "submit",
//	 "value": "...", "request_id": "..."}
package gateway
