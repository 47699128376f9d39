// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"

	"github.com/bureau-foundation/timezoner/lib/dispatch"
	"github.com/bureau-foundation/timezoner/lib/errsink"
	"github.com/bureau-foundation/timezoner/lib/event"
	"github.com/bureau-foundation/timezoner/lib/metrics"
	"github.com/bureau-foundation/timezoner/lib/resolve"
	"github.com/bureau-foundation/timezoner/lib/tzcatalog"
	"github.com/bureau-foundation/timezoner/lib/tzstore"
)

// Resolution paths, as metric labels.
const (
	pathExact     = "exact"
	pathConfirmed = "confirmed"
)

// registerHandlers wires every interaction kind to its handler.
func (c *Context) registerHandlers(loop *dispatch.Loop) {
	loop.Handle(event.Autocomplete, c.instrument("autocomplete", c.handleAutocomplete))
	loop.Handle(event.Submit, c.instrument("submit", func(ctx context.Context, e event.Event) error {
		return c.handleSetTimezone(ctx, e, pathConfirmed)
	}))
	loop.Handle(event.Command, c.instrument("command", func(ctx context.Context, e event.Event) error {
		return c.handleSetTimezone(ctx, e, pathExact)
	}))
	loop.Handle(event.Show, c.instrument("show", c.handleShow))
	loop.Handle(event.Help, c.instrument("help", c.handleHelp))
}

func (c *Context) instrument(command string, handler dispatch.Handler) dispatch.Handler {
	return func(ctx context.Context, e event.Event) (err error) {
		start := c.Clock.Now()
		defer func() { c.Metrics.ObserveHandler(command, err, c.Clock.Now().Sub(start)) }()
		return handler(ctx, e)
	}
}

func (c *Context) handleAutocomplete(ctx context.Context, e event.Event) error {
	suggestions, err := c.Autocomplete.Suggest(e.Interaction.Value)
	if err != nil {
		// The user still gets an answer, just an empty one.
		c.report(ctx, e, err)
		suggestions = nil
	}
	c.Metrics.ObserveAutocomplete(len(suggestions))
	return c.Responder.Suggestions(ctx, e, suggestions)
}

// handleSetTimezone resolves the interaction value and stores the
// result. path selects exact-identifier matching (typed text) or
// confirmed matching (a value picked from suggestions).
func (c *Context) handleSetTimezone(ctx context.Context, e event.Event, path string) error {
	var (
		zone tzcatalog.Zone
		err  error
	)
	if path == pathConfirmed {
		zone, err = c.Resolver.ResolveConfirmed(e.Interaction.Value)
	} else {
		zone, err = c.Resolver.ResolveExact(e.Interaction.Value)
	}

	if err != nil {
		kind := resolve.Classify(err)
		c.Metrics.ObserveResolution(path, kind.String())
		switch kind {
		case resolve.KindUserInput:
			c.Logger.Debug("time zone not recognized",
				"room_id", e.RoomID,
				"user_id", e.Sender,
				"path", path,
			)
			return c.Responder.Notice(ctx, e, notFoundMessage(c.Catalog.Closest(e.Interaction.Value, maxDidYouMean)))
		case resolve.KindDataInconsistency:
			c.report(ctx, e, err)
			return c.Responder.Notice(ctx, e, messageInconsistent)
		default:
			report := c.report(ctx, e, err)
			return c.Responder.Notice(ctx, e, internalErrorMessage(report.ID.String()))
		}
	}
	c.Metrics.ObserveResolution(path, metrics.OutcomeOK)

	if err := c.Store.Upsert(ctx, e.Sender, zone); err != nil {
		report := c.report(ctx, e, err)
		return c.Responder.Notice(ctx, e, internalErrorMessage(report.ID.String()))
	}
	c.Logger.Info("time zone saved",
		"room_id", e.RoomID,
		"user_id", e.Sender,
		"path", path,
	)
	return c.Responder.Notice(ctx, e, messageSaved)
}

func (c *Context) handleShow(ctx context.Context, e event.Event) error {
	record, err := c.Store.Get(ctx, e.Sender)
	if errors.Is(err, tzstore.ErrNotFound) {
		return c.Responder.Notice(ctx, e, messageNotSet)
	}
	if err != nil {
		report := c.report(ctx, e, err)
		return c.Responder.Notice(ctx, e, internalErrorMessage(report.ID.String()))
	}
	return c.Responder.Notice(ctx, e, showMessage(record.Zone, c.Clock.Now()))
}

func (c *Context) handleHelp(ctx context.Context, e event.Event) error {
	return c.Responder.Notice(ctx, e, messageHelp)
}

// report sends err to the owner with the event's coordinates.
func (c *Context) report(ctx context.Context, e event.Event, err error) errsink.Report {
	report := c.Reporter.Report(ctx, errsink.Report{
		Err: err,
		Attrs: map[string]string{
			"event_kind": string(e.Kind),
			"room_id":    e.RoomID,
			"event_id":   e.EventID,
			"sender":     e.Sender,
			"class":      resolve.Classify(err).String(),
		},
	})
	c.Logger.Error("interaction failed",
		"kind", string(e.Kind),
		"room_id", e.RoomID,
		"report_id", report.ID.String(),
		"error", err,
	)
	return report
}
