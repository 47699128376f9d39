// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/timezoner/lib/autocomplete"
	"github.com/bureau-foundation/timezoner/lib/clock"
	"github.com/bureau-foundation/timezoner/lib/errsink"
	"github.com/bureau-foundation/timezoner/lib/event"
	"github.com/bureau-foundation/timezoner/lib/metrics"
	"github.com/bureau-foundation/timezoner/lib/resolve"
	"github.com/bureau-foundation/timezoner/lib/statecache"
	"github.com/bureau-foundation/timezoner/lib/tzcatalog"
	"github.com/bureau-foundation/timezoner/lib/tzindex"
	"github.com/bureau-foundation/timezoner/lib/tzstore"
	"github.com/bureau-foundation/timezoner/messaging"
)

const (
	testBot  = "@timezoner:example.org"
	testRoom = "!room:example.org"
	testUser = "@alice:example.org"
)

// sentEvent is one outbound call recorded by fakeSession.
type sentEvent struct {
	RoomID    string
	EventType string
	Content   any
}

// fakeSession records sends. Sync and JoinRoom are not used by
// handlers.
type fakeSession struct {
	mu      sync.Mutex
	sent    []sentEvent
	sendErr error
}

func (s *fakeSession) UserID() string { return testBot }

func (s *fakeSession) WhoAmI(context.Context) (string, error) { return testBot, nil }

func (s *fakeSession) Sync(context.Context, messaging.SyncOptions) (*messaging.SyncResponse, error) {
	return nil, errors.New("fakeSession: Sync not supported")
}

func (s *fakeSession) JoinRoom(_ context.Context, roomID string) (string, error) {
	return roomID, nil
}

func (s *fakeSession) SendEvent(_ context.Context, roomID, eventType string, content any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return "", s.sendErr
	}
	s.sent = append(s.sent, sentEvent{RoomID: roomID, EventType: eventType, Content: content})
	return fmt.Sprintf("$event%d", len(s.sent)), nil
}

func (s *fakeSession) SendMessage(ctx context.Context, roomID string, content messaging.MessageContent) (string, error) {
	return s.SendEvent(ctx, roomID, "m.room.message", content)
}

func (s *fakeSession) events() []sentEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentEvent(nil), s.sent...)
}

// notices returns every m.room.message sent so far.
func (s *fakeSession) notices() []messaging.MessageContent {
	var notices []messaging.MessageContent
	for _, sent := range s.events() {
		if content, ok := sent.Content.(messaging.MessageContent); ok {
			notices = append(notices, content)
		}
	}
	return notices
}

// recordingSink keeps every report.
type recordingSink struct {
	mu      sync.Mutex
	reports []errsink.Report
}

func (s *recordingSink) Send(_ context.Context, report errsink.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return nil
}

func (s *recordingSink) all() []errsink.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]errsink.Report(nil), s.reports...)
}

// failingBackend fails every record operation but holds the canary so
// VerifyKey passes.
type failingBackend struct {
	meta map[string][]byte
}

var errDiskOnFire = errors.New("disk on fire")

func (b *failingBackend) Put(context.Context, string, []byte, time.Time) error { return errDiskOnFire }

func (b *failingBackend) Get(context.Context, string) ([]byte, time.Time, error) {
	return nil, time.Time{}, errDiskOnFire
}

func (b *failingBackend) Count(context.Context) (int64, error) { return 0, errDiskOnFire }

func (b *failingBackend) PutMeta(_ context.Context, name string, value []byte) error {
	b.meta[name] = value
	return nil
}

func (b *failingBackend) GetMeta(_ context.Context, name string) ([]byte, error) {
	value, ok := b.meta[name]
	if !ok {
		return nil, tzstore.ErrNotFound
	}
	return value, nil
}

func (b *failingBackend) Close() error { return nil }

// harness is a fully wired Context over fakes and a temporary SQLite
// store.
type harness struct {
	app     *Context
	session *fakeSession
	sink    *recordingSink
	clock   *clock.FakeClock
}

type harnessOption func(*harnessOptions)

type harnessOptions struct {
	catalog *tzcatalog.Catalog
	backend tzstore.Backend
	index   *tzindex.Index
}

func withCatalog(catalog *tzcatalog.Catalog) harnessOption {
	return func(options *harnessOptions) { options.catalog = catalog }
}

func withBackend(backend tzstore.Backend) harnessOption {
	return func(options *harnessOptions) { options.backend = backend }
}

func withIndex(index *tzindex.Index) harnessOption {
	return func(options *harnessOptions) { options.index = index }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	options := harnessOptions{catalog: tzcatalog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.index == nil {
		options.index = tzindex.New(tzindex.BuildEntries(tzcatalog.Default()))
	}
	if options.backend == nil {
		backend, err := tzstore.OpenSQLite(filepath.Join(t.TempDir(), "timezones.db"), 4, nil)
		if err != nil {
			t.Fatalf("OpenSQLite: %v", err)
		}
		options.backend = backend
	}

	raw := make([]byte, tzstore.KeySize)
	for i := range raw {
		raw[i] = 0x42
	}
	key, err := tzstore.NewKey(raw)
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	fakeClock := clock.Fake(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))
	store, err := tzstore.New(tzstore.Config{Backend: options.backend, Key: key, Clock: fakeClock})
	if err != nil {
		t.Fatalf("tzstore.New: %v", err)
	}
	if err := store.VerifyKey(context.Background()); err != nil {
		t.Fatalf("VerifyKey: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	session := &fakeSession{}
	sink := &recordingSink{}
	cache := statecache.New()
	cache.Update(event.Event{Sequence: 1, Kind: event.RoomJoined, RoomID: testRoom, Name: "general"})
	cache.Update(event.Event{
		Sequence: 2,
		Kind:     event.Member,
		RoomID:   testRoom,
		Member:   &event.Membership{UserID: testUser, DisplayName: "Alice", State: "join"},
	})

	app := &Context{
		Session:      session,
		BotUserID:    testBot,
		Cache:        cache,
		Reporter:     errsink.NewReporter(sink, fakeClock, nil),
		Store:        store,
		Index:        options.index,
		Catalog:      options.catalog,
		Autocomplete: autocomplete.New(options.index, nil),
		Resolver:     resolve.New(options.index, options.catalog),
		Responder:    NewResponder(session, cache),
		Metrics:      metrics.New(metrics.NewRegistry()),
		Clock:        fakeClock,
		Logger:       slog.New(slog.DiscardHandler),
	}
	return &harness{app: app, session: session, sink: sink, clock: fakeClock}
}

func interaction(kind event.Kind, value string) event.Event {
	return event.Event{
		Sequence:    10,
		Kind:        kind,
		RoomID:      testRoom,
		EventID:     "$request",
		Sender:      testUser,
		Interaction: &event.Interaction{Value: value, RequestID: "req-1"},
	}
}
