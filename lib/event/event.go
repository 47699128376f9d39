// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package event defines the inbound events the gateway produces and
// the dispatch loop consumes.
//
// State events (room joins, leaves, memberships, names) change the
// shared cache. Interaction events are user requests routed to a
// handler; the cache only records their sequence number. A handler
// reads the sender's display name from membership state applied
// earlier.
package event

import "time"

// Kind selects the cache update and the handler for an event.
type Kind string

const (
	// RoomJoined: the bot is now in RoomID.
	RoomJoined Kind = "room_joined"

	// RoomLeft: the bot left or was removed from RoomID.
	RoomLeft Kind = "room_left"

	// Member: a membership change for Member.UserID in RoomID.
	Member Kind = "member"

	// RoomName: RoomID was renamed to Name.
	RoomName Kind = "room_name"

	// Autocomplete carries partial text and expects suggestions.
	Autocomplete Kind = "autocomplete"

	// Submit carries a value confirmed from suggestions.
	Submit Kind = "submit"

	// Command carries hand-typed text for the exact-match path.
	Command Kind = "command"

	// Show asks for the sender's stored time zone.
	Show Kind = "show"

	// Help asks for usage text.
	Help Kind = "help"
)

// IsInteraction reports whether events of kind k come from a user
// request rather than room state.
func (k Kind) IsInteraction() bool {
	switch k {
	case Autocomplete, Submit, Command, Show, Help:
		return true
	default:
		return false
	}
}

// Event is one inbound event. Sequence increases by one per event in
// arrival order.
type Event struct {
	Sequence uint64
	Kind     Kind
	RoomID   string
	EventID  string
	Sender   string
	Time     time.Time

	// Name is set for RoomName and RoomJoined events.
	Name string

	// Member is set for Member events.
	Member *Membership

	// Interaction is set for interaction kinds.
	Interaction *Interaction
}

// Membership is a room member's state.
type Membership struct {
	UserID      string
	DisplayName string
	// State is the Matrix membership value: join, invite, leave, ban.
	State string
}

// Interaction is the payload of a user request.
type Interaction struct {
	// Value is the command parameter: partial text for Autocomplete,
	// the chosen or typed value for Submit and Command.
	Value string

	// RequestID correlates an autocomplete reply with its request. Empty
	// for text commands.
	RequestID string
}
