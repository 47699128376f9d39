// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/bureau-foundation/timezoner/lib/event"
	"github.com/bureau-foundation/timezoner/messaging"
)

// translator converts sync responses to events. It remembers which
// rooms it has announced so RoomJoined and RoomLeft are emitted once
// per transition. Not safe for concurrent use.
type translator struct {
	self     string
	joined   map[string]bool
	sequence uint64
	logger   *slog.Logger
}

func newTranslator(self string, logger *slog.Logger) *translator {
	return &translator{self: self, joined: make(map[string]bool), logger: logger}
}

// translate returns the events in response. With initial set, only
// state is emitted.
func (t *translator) translate(response *messaging.SyncResponse, initial bool) []event.Event {
	var events []event.Event

	for _, roomID := range slices.Sorted(maps.Keys(response.Rooms.Join)) {
		room := response.Rooms.Join[roomID]
		if !t.joined[roomID] {
			t.joined[roomID] = true
			events = append(events, t.next(event.Event{
				Kind:   event.RoomJoined,
				RoomID: roomID,
				Name:   latestName(room.State.Events),
			}))
		}
		for _, raw := range room.State.Events {
			events = t.appendState(events, roomID, raw)
		}
		for _, raw := range room.Timeline.Events {
			if raw.StateKey != nil {
				events = t.appendState(events, roomID, raw)
				continue
			}
			if initial {
				continue
			}
			events = t.appendInteraction(events, roomID, raw)
		}
	}

	for _, roomID := range slices.Sorted(maps.Keys(response.Rooms.Leave)) {
		if !t.joined[roomID] {
			continue
		}
		delete(t.joined, roomID)
		events = append(events, t.next(event.Event{Kind: event.RoomLeft, RoomID: roomID}))
	}
	return events
}

func (t *translator) appendState(events []event.Event, roomID string, raw messaging.Event) []event.Event {
	switch raw.Type {
	case eventTypeMember:
		return append(events, t.next(event.Event{
			Kind:    event.Member,
			RoomID:  roomID,
			EventID: raw.EventID,
			Sender:  raw.Sender,
			Time:    raw.Time(),
			Member: &event.Membership{
				UserID:      *raw.StateKey,
				DisplayName: raw.ContentString("displayname"),
				State:       raw.ContentString("membership"),
			},
		}))
	case eventTypeName:
		return append(events, t.next(event.Event{
			Kind:    event.RoomName,
			RoomID:  roomID,
			EventID: raw.EventID,
			Sender:  raw.Sender,
			Time:    raw.Time(),
			Name:    raw.ContentString("name"),
		}))
	}
	return events
}

func (t *translator) appendInteraction(events []event.Event, roomID string, raw messaging.Event) []event.Event {
	if raw.Sender == t.self {
		return events
	}

	var (
		kind        event.Kind
		interaction *event.Interaction
	)
	switch raw.Type {
	case eventTypeMessage:
		if raw.ContentString("msgtype") != "m.text" {
			return events
		}
		commandKind, value, ok := parseCommand(raw.ContentString("body"))
		if !ok {
			return events
		}
		kind, interaction = commandKind, &event.Interaction{Value: value}
	case InteractionEventType:
		interactionKind, parsed, ok := parseInteraction(raw)
		if !ok {
			t.logger.Debug("ignoring unrecognized interaction",
				"room_id", roomID,
				"event_id", raw.EventID,
				"command", raw.ContentString("command"),
				"kind", raw.ContentString("kind"),
			)
			return events
		}
		kind, interaction = interactionKind, parsed
	default:
		return events
	}

	return append(events, t.next(event.Event{
		Kind:        kind,
		RoomID:      roomID,
		EventID:     raw.EventID,
		Sender:      raw.Sender,
		Time:        raw.Time(),
		Interaction: interaction,
	}))
}

func (t *translator) next(e event.Event) event.Event {
	t.sequence++
	e.Sequence = t.sequence
	return e
}

// latestName returns the last m.room.name in events, or "".
func latestName(events []messaging.Event) string {
	name := ""
	for _, raw := range events {
		if raw.Type == eventTypeName && raw.StateKey != nil {
			name = raw.ContentString("name")
		}
	}
	return name
}
