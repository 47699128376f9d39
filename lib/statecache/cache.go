// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package statecache is the in-memory view of the rooms the bot is in.
//
// One goroutine, the dispatch loop, calls [Cache.Update] for every
// inbound event in arrival order. Any number of handlers call
// [Cache.Snapshot] concurrently and read the result without locks.
// Snapshots are immutable: an update copies the parts it changes and
// publishes a new snapshot atomically, so a handler holding an older
// snapshot keeps a consistent view.
package statecache

import (
	"maps"
	"slices"
	"sync/atomic"

	"github.com/bureau-foundation/timezoner/lib/event"
)

// Member is one user's state in a room.
type Member struct {
	UserID      string
	DisplayName string
	Membership  string
}

type room struct {
	name    string
	members map[string]Member
}

// Snapshot is an immutable view of the cache after some event.
type Snapshot struct {
	sequence uint64
	rooms    map[string]*room
}

// Sequence is the sequence number of the last applied event.
func (s *Snapshot) Sequence() uint64 { return s.sequence }

// Joined reports whether the bot is in roomID.
func (s *Snapshot) Joined(roomID string) bool {
	_, ok := s.rooms[roomID]
	return ok
}

// RoomIDs returns the joined rooms, sorted.
func (s *Snapshot) RoomIDs() []string {
	return slices.Sorted(maps.Keys(s.rooms))
}

// RoomName returns roomID's name, or "" if unnamed or unknown.
func (s *Snapshot) RoomName(roomID string) string {
	if r, ok := s.rooms[roomID]; ok {
		return r.name
	}
	return ""
}

// Member returns userID's state in roomID.
func (s *Snapshot) Member(roomID, userID string) (Member, bool) {
	r, ok := s.rooms[roomID]
	if !ok {
		return Member{}, false
	}
	member, ok := r.members[userID]
	return member, ok
}

// DisplayName returns userID's display name in roomID, falling back to
// userID itself.
func (s *Snapshot) DisplayName(roomID, userID string) string {
	if member, ok := s.Member(roomID, userID); ok && member.DisplayName != "" {
		return member.DisplayName
	}
	return userID
}

// JoinedMembers counts members with membership "join" in roomID.
func (s *Snapshot) JoinedMembers(roomID string) int {
	r, ok := s.rooms[roomID]
	if !ok {
		return 0
	}
	count := 0
	for _, member := range r.members {
		if member.Membership == "join" {
			count++
		}
	}
	return count
}

// Cache holds the current snapshot. Update must only be called from one
// goroutine; Snapshot is safe from any.
type Cache struct {
	current atomic.Pointer[Snapshot]
}

// New returns an empty cache.
func New() *Cache {
	cache := &Cache{}
	cache.current.Store(&Snapshot{rooms: map[string]*room{}})
	return cache
}

// Snapshot returns the latest published view.
func (c *Cache) Snapshot() *Snapshot {
	return c.current.Load()
}

// Update applies e and publishes the result. Events that carry no
// state still advance the sequence.
func (c *Cache) Update(e event.Event) {
	previous := c.current.Load()
	next := &Snapshot{sequence: e.Sequence, rooms: previous.rooms}

	switch e.Kind {
	case event.RoomJoined:
		next.rooms = maps.Clone(previous.rooms)
		if existing, ok := previous.rooms[e.RoomID]; ok {
			next.rooms[e.RoomID] = &room{name: existing.name, members: existing.members}
		} else {
			next.rooms[e.RoomID] = &room{members: map[string]Member{}}
		}
		if e.Name != "" {
			next.rooms[e.RoomID].name = e.Name
		}

	case event.RoomLeft:
		if _, ok := previous.rooms[e.RoomID]; ok {
			next.rooms = maps.Clone(previous.rooms)
			delete(next.rooms, e.RoomID)
		}

	case event.RoomName:
		if existing, ok := previous.rooms[e.RoomID]; ok {
			next.rooms = maps.Clone(previous.rooms)
			next.rooms[e.RoomID] = &room{name: e.Name, members: existing.members}
		}

	case event.Member:
		existing, ok := previous.rooms[e.RoomID]
		if !ok || e.Member == nil {
			break
		}
		members := maps.Clone(existing.members)
		switch e.Member.State {
		case "leave", "ban":
			delete(members, e.Member.UserID)
		default:
			members[e.Member.UserID] = Member{
				UserID:      e.Member.UserID,
				DisplayName: e.Member.DisplayName,
				Membership:  e.Member.State,
			}
		}
		next.rooms = maps.Clone(previous.rooms)
		next.rooms[e.RoomID] = &room{name: existing.name, members: members}
	}

	c.current.Store(next)
}
