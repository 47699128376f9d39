// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log/slog"

	"github.com/bureau-foundation/timezoner/lib/autocomplete"
	"github.com/bureau-foundation/timezoner/lib/clock"
	"github.com/bureau-foundation/timezoner/lib/errsink"
	"github.com/bureau-foundation/timezoner/lib/metrics"
	"github.com/bureau-foundation/timezoner/lib/resolve"
	"github.com/bureau-foundation/timezoner/lib/statecache"
	"github.com/bureau-foundation/timezoner/lib/tzcatalog"
	"github.com/bureau-foundation/timezoner/lib/tzindex"
	"github.com/bureau-foundation/timezoner/lib/tzstore"
	"github.com/bureau-foundation/timezoner/messaging"
)

// Context is the process-wide state every handler shares. It is built
// once in run and never reassigned; the fields that change at runtime
// (the cache contents, the store's rows) synchronize internally.
type Context struct {
	Session   messaging.Session
	BotUserID string

	Cache    *statecache.Cache
	Reporter *errsink.Reporter

	// Store owns the storage key.
	Store *tzstore.Store

	Index        *tzindex.Index
	Catalog      *tzcatalog.Catalog
	Autocomplete *autocomplete.Engine
	Resolver     *resolve.Resolver

	Responder *Responder
	Metrics   *metrics.Metrics
	Clock     clock.Clock
	Logger    *slog.Logger
}
