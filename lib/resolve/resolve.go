// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package resolve maps confirmed user input to a canonical time zone.
//
// There are two entry paths. [Resolver.ResolveExact] serves hand-typed
// or pasted text and only accepts catalog identifiers. The
// [Resolver.ResolveConfirmed] path serves values chosen from
// autocomplete suggestions: the value is looked up as an alias, and the
// alias's zone is re-validated against the catalog. A suggestion the
// catalog cannot parse means the index and catalog have drifted, which
// is reported as an [*InconsistencyError] rather than blamed on the
// user.
package resolve

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/timezoner/lib/tzcatalog"
	"github.com/bureau-foundation/timezoner/lib/tzindex"
)

// ErrNotFound means the input names no known time zone.
var ErrNotFound = errors.New("resolve: time zone not found")

// InconsistencyError means an index alias points at a zone the catalog
// does not know.
type InconsistencyError struct {
	Display string
	Zone    tzcatalog.Zone
	Err     error
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("resolve: alias %q maps to %q, which the catalog rejects: %v", e.Display, e.Zone, e.Err)
}

func (e *InconsistencyError) Unwrap() error { return e.Err }

// Aliases finds index entries by exact display string.
// *tzindex.Index satisfies it.
type Aliases interface {
	Lookup(display string) (tzindex.Entry, bool)
}

// Resolver is safe for concurrent use.
type Resolver struct {
	aliases Aliases
	catalog *tzcatalog.Catalog
}

// New creates a resolver over an alias index and a catalog.
func New(aliases Aliases, catalog *tzcatalog.Catalog) *Resolver {
	return &Resolver{aliases: aliases, catalog: catalog}
}

// ResolveExact matches raw against catalog identifiers only.
// Surrounding whitespace is ignored; case is significant.
func (r *Resolver) ResolveExact(raw string) (tzcatalog.Zone, error) {
	zone, ok := r.catalog.Lookup(raw)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNotFound, raw)
	}
	return zone, nil
}

// ResolveConfirmed resolves a value chosen from suggestions. Values that
// are not alias display strings were typed by hand and fall back to
// ResolveExact.
func (r *Resolver) ResolveConfirmed(value string) (tzcatalog.Zone, error) {
	entry, ok := r.aliases.Lookup(value)
	if !ok {
		return r.ResolveExact(value)
	}
	zone, err := r.catalog.Parse(string(entry.Zone))
	if err != nil {
		return "", &InconsistencyError{Display: entry.Display, Zone: entry.Zone, Err: err}
	}
	return zone, nil
}
