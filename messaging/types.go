// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import "time"

// Event is a Matrix event as delivered by /sync.
type Event struct {
	EventID        string         `json:"event_id,omitempty"`
	Type           string         `json:"type"`
	Sender         string         `json:"sender"`
	OriginServerTS int64          `json:"origin_server_ts,omitempty"`
	Content        map[string]any `json:"content"`
	StateKey       *string        `json:"state_key,omitempty"`
}

// Time converts OriginServerTS.
func (e Event) Time() time.Time {
	return time.UnixMilli(e.OriginServerTS).UTC()
}

// ContentString returns Content[key] when it is a string.
func (e Event) ContentString(key string) string {
	value, _ := e.Content[key].(string)
	return value
}

// SyncOptions controls one /sync request.
type SyncOptions struct {
	Since string
	// Timeout is the long-poll duration in milliseconds. Only sent when
	// SetTimeout is true, so an explicit 0 is distinguishable from
	// "server default".
	Timeout    int
	SetTimeout bool
	Filter     string
}

// SyncResponse is the subset of a /sync response timezoner reads.
type SyncResponse struct {
	NextBatch string    `json:"next_batch"`
	Rooms     SyncRooms `json:"rooms"`
}

type SyncRooms struct {
	Join   map[string]JoinedRoom  `json:"join,omitempty"`
	Invite map[string]InvitedRoom `json:"invite,omitempty"`
	Leave  map[string]LeftRoom    `json:"leave,omitempty"`
}

type JoinedRoom struct {
	State    EventList `json:"state"`
	Timeline Timeline  `json:"timeline"`
}

type InvitedRoom struct {
	InviteState EventList `json:"invite_state"`
}

type LeftRoom struct {
	State    EventList `json:"state"`
	Timeline Timeline  `json:"timeline"`
}

type EventList struct {
	Events []Event `json:"events,omitempty"`
}

type Timeline struct {
	Events    []Event `json:"events,omitempty"`
	Limited   bool    `json:"limited,omitempty"`
	PrevBatch string  `json:"prev_batch,omitempty"`
}

// MessageContent is the content of an m.room.message event.
type MessageContent struct {
	MsgType       string    `json:"msgtype"`
	Body          string    `json:"body"`
	Format        string    `json:"format,omitempty"`
	FormattedBody string    `json:"formatted_body,omitempty"`
	Mentions      *Mentions `json:"m.mentions,omitempty"`
}

// Mentions is the m.mentions block.
type Mentions struct {
	UserIDs []string `json:"user_ids,omitempty"`
}

// NewNotice returns an m.notice with plain body only.
func NewNotice(body string) MessageContent {
	return MessageContent{MsgType: "m.notice", Body: body}
}

type sendEventResponse struct {
	EventID string `json:"event_id"`
}

type whoAmIResponse struct {
	UserID string `json:"user_id"`
}

type joinResponse struct {
	RoomID string `json:"room_id"`
}
