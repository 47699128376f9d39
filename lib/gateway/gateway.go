// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/bureau-foundation/timezoner/lib/clock"
	"github.com/bureau-foundation/timezoner/lib/event"
	"github.com/bureau-foundation/timezoner/messaging"
)

// Session is the part of a Matrix session the gateway uses.
// *messaging.DirectSession implements it.
type Session interface {
	UserID() string
	Sync(ctx context.Context, options messaging.SyncOptions) (*messaging.SyncResponse, error)
	JoinRoom(ctx context.Context, roomID string) (string, error)
}

// Config configures a Gateway.
type Config struct {
	Session Session

	// SyncTimeout is the long-poll duration. Default 30s.
	SyncTimeout time.Duration

	// MaxBackoff caps the retry delay after a failed sync. Retries
	// start at one second and double. Default 30s.
	MaxBackoff time.Duration

	Clock  clock.Clock
	Logger *slog.Logger
}

// Gateway produces the inbound event stream.
type Gateway struct {
	session     Session
	syncTimeout time.Duration
	maxBackoff  time.Duration
	clock       clock.Clock
	logger      *slog.Logger
	translator  *translator
}

// New creates a Gateway. Session is required.
func New(config Config) (*Gateway, error) {
	if config.Session == nil {
		return nil, fmt.Errorf("gateway: Session is required")
	}
	if config.SyncTimeout == 0 {
		config.SyncTimeout = 30 * time.Second
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = 30 * time.Second
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Gateway{
		session:     config.Session,
		syncTimeout: config.SyncTimeout,
		maxBackoff:  config.MaxBackoff,
		clock:       config.Clock,
		logger:      config.Logger,
		translator:  newTranslator(config.Session.UserID(), config.Logger),
	}, nil
}

// Run syncs until ctx is done, sending events to out in order. out is
// closed when Run returns. A failed initial sync is returned as an
// error; later sync failures are retried. Cancellation returns nil.
func (g *Gateway) Run(ctx context.Context, out chan<- event.Event) error {
	defer close(out)

	response, err := g.session.Sync(ctx, messaging.SyncOptions{Filter: syncFilter})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("gateway: initial sync: %w", err)
	}
	initial := g.translator.translate(response, true)
	g.logger.Info("initial sync complete",
		"rooms", len(response.Rooms.Join),
		"events", len(initial),
	)
	if !g.emit(ctx, out, initial) {
		return nil
	}
	g.acceptInvites(ctx, response.Rooms.Invite)

	since := response.NextBatch
	backoff := time.Second
	for ctx.Err() == nil {
		response, err := g.session.Sync(ctx, messaging.SyncOptions{
			Since:      since,
			Timeout:    int(g.syncTimeout.Milliseconds()),
			SetTimeout: true,
			Filter:     syncFilter,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			g.logger.Error("sync failed, retrying", "error", err, "backoff", backoff)
			select {
			case <-ctx.Done():
				return nil
			case <-g.clock.After(backoff):
			}
			backoff = min(backoff*2, g.maxBackoff)
			continue
		}

		backoff = time.Second
		since = response.NextBatch
		if !g.emit(ctx, out, g.translator.translate(response, false)) {
			return nil
		}
		g.acceptInvites(ctx, response.Rooms.Invite)
	}
	return nil
}

// emit sends events in order. It returns false if ctx ended first.
func (g *Gateway) emit(ctx context.Context, out chan<- event.Event, events []event.Event) bool {
	for _, e := range events {
		select {
		case out <- e:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

// acceptInvites joins every invited room. The join itself shows up in
// a later sync as a joined room.
func (g *Gateway) acceptInvites(ctx context.Context, invites map[string]messaging.InvitedRoom) {
	for _, roomID := range slices.Sorted(maps.Keys(invites)) {
		g.logger.Info("accepting room invite", "room_id", roomID)
		if _, err := g.session.JoinRoom(ctx, roomID); err != nil {
			g.logger.Error("failed to accept room invite",
				"room_id", roomID,
				"error", err,
			)
		}
	}
}
