// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tzindex

import (
	"cmp"
	"errors"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/bureau-foundation/timezoner/lib/bm25"
	"github.com/bureau-foundation/timezoner/lib/tzcatalog"
)

// ErrClosed is returned by Search after Close.
var ErrClosed = errors.New("tzindex: index is closed")

// Entry is one searchable alias.
type Entry struct {
	Display string         `cbor:"display"`
	Zone    tzcatalog.Zone `cbor:"zone"`
}

// Index is an immutable search index over entries.
type Index struct {
	entries   []Entry
	search    *bm25.Index
	byDisplay map[string]int
	closed    atomic.Bool
}

// New indexes entries. When two entries share a display string the
// first one is kept.
func New(entries []Entry) *Index {
	index := &Index{byDisplay: make(map[string]int, len(entries))}
	documents := make([]bm25.Document, 0, len(entries))
	for _, entry := range entries {
		if entry.Display == "" {
			continue
		}
		if _, exists := index.byDisplay[entry.Display]; exists {
			continue
		}
		index.byDisplay[entry.Display] = len(index.entries)
		index.entries = append(index.entries, entry)
		documents = append(documents, bm25.Document{
			Name:   entry.Display,
			Fields: []bm25.Field{{Text: distinctTerms(entry.Display), Weight: 1}},
		})
	}
	index.search = bm25.New(documents)
	return index
}

// distinctTerms drops repeated tokens from a display string, so a
// display that names its city twice ("Reunion, Réunion") does not
// outscore the bare city.
func distinctTerms(display string) string {
	var terms []string
	for _, token := range bm25.Tokenize(display) {
		if !slices.Contains(terms, token) {
			terms = append(terms, token)
		}
	}
	return strings.Join(terms, " ")
}

// Search returns up to limit entries ranked by relevance.
func (index *Index) Search(query Query, limit int) ([]Entry, error) {
	if index.closed.Load() {
		return nil, ErrClosed
	}
	if query.Empty() {
		return nil, nil
	}
	results := index.search.SearchClauses(query.clauses, 0)
	// Equal scores go to the shorter display string: "Reunion" before
	// "Reunion, Réunion".
	slices.SortStableFunc(results, func(a, b bm25.Result) int {
		if a.Score != b.Score {
			return cmp.Compare(b.Score, a.Score)
		}
		return cmp.Compare(len(a.Name), len(b.Name))
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	entries := make([]Entry, len(results))
	for i, result := range results {
		entries[i] = index.entries[result.Document]
	}
	return entries, nil
}

// Lookup finds the entry whose display string is exactly display,
// ignoring surrounding whitespace.
func (index *Index) Lookup(display string) (Entry, bool) {
	position, exists := index.byDisplay[strings.TrimSpace(display)]
	if !exists {
		return Entry{}, false
	}
	return index.entries[position], true
}

// Entries returns a copy of the indexed entries in index order.
func (index *Index) Entries() []Entry {
	return slices.Clone(index.entries)
}

// Len returns the number of entries.
func (index *Index) Len() int {
	return len(index.entries)
}

// ZoneSet is the part of a catalog Drift needs.
type ZoneSet interface {
	Contains(name string) bool
}

// Drift returns the entries whose zone is not in catalog. A non-empty
// result means the index was built against a different tz database
// than the one compiled into this binary.
func (index *Index) Drift(catalog ZoneSet) []Entry {
	var drifted []Entry
	for _, entry := range index.entries {
		if !catalog.Contains(string(entry.Zone)) {
			drifted = append(drifted, entry)
		}
	}
	return drifted
}

// Close marks the index unusable. Lookups keep working; Search fails
// with ErrClosed.
func (index *Index) Close() error {
	index.closed.Store(true)
	return nil
}
