// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package dispatch consumes the inbound event stream in order and runs
// a handler per event concurrently.
//
// Each event is applied to the shared cache on the loop goroutine
// before its handler is started, so a handler always sees a snapshot
// at least as new as its own event. Handlers then run on their own
// goroutines and never block the loop. A handler failure (returned
// error or panic) is reported to the error sink and goes no further.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/bureau-foundation/timezoner/lib/errsink"
	"github.com/bureau-foundation/timezoner/lib/event"
)

// State is a step in one event's lifecycle.
type State string

const (
	Received       State = "received"
	CacheApplied   State = "cache_applied"
	HandlerSpawned State = "handler_spawned"
	Completed      State = "completed"
	Failed         State = "failed"
)

// Transition is delivered to the observer for every state change.
// Err is set for Failed.
type Transition struct {
	Event event.Event
	State State
	Err   error
}

// Handler processes one event. The context is never cancelled by the
// loop.
type Handler func(ctx context.Context, e event.Event) error

// Cache receives every event before its handler runs.
// *statecache.Cache implements it.
type Cache interface {
	Update(e event.Event)
}

// Reporter receives handler failures. *errsink.Reporter implements it.
type Reporter interface {
	Report(ctx context.Context, report errsink.Report) errsink.Report
}

// Config configures a Loop.
type Config struct {
	Cache    Cache
	Reporter Reporter

	// Observer, if set, is called for every transition. It runs on the
	// loop goroutine for Received, CacheApplied and HandlerSpawned and
	// on the handler goroutine for Completed and Failed, so it must be
	// safe for concurrent use.
	Observer func(Transition)

	Logger *slog.Logger
}

// Loop is the dispatch loop. Register handlers with Handle, then call
// Run once.
type Loop struct {
	cache    Cache
	reporter Reporter
	observer func(Transition)
	logger   *slog.Logger

	handlers map[event.Kind]Handler
	running  atomic.Bool
	inFlight sync.WaitGroup
}

// New creates a Loop. Cache and Reporter are required.
func New(config Config) *Loop {
	if config.Cache == nil || config.Reporter == nil {
		panic("dispatch: Cache and Reporter are required")
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Loop{
		cache:    config.Cache,
		reporter: config.Reporter,
		observer: config.Observer,
		logger:   config.Logger,
		handlers: make(map[event.Kind]Handler),
	}
}

// Handle registers the handler for kind. Panics if Run has started or
// kind already has a handler.
func (l *Loop) Handle(kind event.Kind, handler Handler) {
	if l.running.Load() {
		panic("dispatch: Handle called after Run")
	}
	if _, exists := l.handlers[kind]; exists {
		panic(fmt.Sprintf("dispatch: duplicate handler for %q", kind))
	}
	l.handlers[kind] = handler
}

// Run consumes events until the channel closes (returns nil) or ctx is
// done (returns ctx.Err()). Handlers still running when Run returns
// keep running; use Wait to wait for them.
func (l *Loop) Run(ctx context.Context, events <-chan event.Event) error {
	if !l.running.CompareAndSwap(false, true) {
		return fmt.Errorf("dispatch: Run called twice")
	}
	handlerCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				return nil
			}
			l.dispatch(handlerCtx, e)
		}
	}
}

func (l *Loop) dispatch(ctx context.Context, e event.Event) {
	l.observe(Transition{Event: e, State: Received})

	l.cache.Update(e)
	l.observe(Transition{Event: e, State: CacheApplied})

	handler, ok := l.handlers[e.Kind]
	if !ok {
		return
	}

	l.inFlight.Add(1)
	l.observe(Transition{Event: e, State: HandlerSpawned})
	go func() {
		defer l.inFlight.Done()
		l.runHandler(ctx, handler, e)
	}()
}

func (l *Loop) runHandler(ctx context.Context, handler Handler, e event.Event) {
	var stack []byte
	err := func() (err error) {
		defer func() {
			if recovered := recover(); recovered != nil {
				stack = debug.Stack()
				err = fmt.Errorf("dispatch: %s handler panicked: %v", e.Kind, recovered)
			}
		}()
		return handler(ctx, e)
	}()

	if err == nil {
		l.observe(Transition{Event: e, State: Completed})
		return
	}

	report := l.reporter.Report(ctx, errsink.Report{
		Err:   err,
		Stack: stack,
		Attrs: map[string]string{
			"event_kind": string(e.Kind),
			"sequence":   strconv.FormatUint(e.Sequence, 10),
			"room_id":    e.RoomID,
			"event_id":   e.EventID,
			"sender":     e.Sender,
		},
	})
	l.logger.Warn("handler failed",
		"kind", string(e.Kind),
		"sequence", e.Sequence,
		"room_id", e.RoomID,
		"report_id", report.ID.String(),
		"error", err,
	)
	l.observe(Transition{Event: e, State: Failed, Err: err})
}

// Wait blocks until every handler started so far has returned.
func (l *Loop) Wait() {
	l.inFlight.Wait()
}

func (l *Loop) observe(transition Transition) {
	if l.observer != nil {
		l.observer(transition)
	}
}
