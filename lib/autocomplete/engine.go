// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package autocomplete

import (
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/bureau-foundation/timezoner/lib/tzindex"
)

const (
	// MinInputLength is the number of runes a partial value needs
	// before the index is queried.
	MinInputLength = 3

	// MaxSuggestions caps the suggestion list.
	MaxSuggestions = 10
)

// Searcher is the index query surface. *tzindex.Index satisfies it.
type Searcher interface {
	Search(query tzindex.Query, limit int) ([]tzindex.Entry, error)
}

// Engine produces suggestions. Safe for concurrent use when the
// Searcher is.
type Engine struct {
	index  Searcher
	logger *slog.Logger
}

// New creates an engine over index. A nil logger discards.
func New(index Searcher, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{index: index, logger: logger}
}

// Suggest returns up to MaxSuggestions display strings for partial in
// relevance order. Short input and unparseable input yield an empty
// result. Only an index failure is returned as an error.
func (e *Engine) Suggest(partial string) ([]string, error) {
	if utf8.RuneCountInString(partial) < MinInputLength {
		return nil, nil
	}

	query, err := tzindex.ParseQuery(partial)
	if err != nil {
		var syntaxErr *tzindex.SyntaxError
		if errors.As(err, &syntaxErr) {
			e.logger.Debug("ignoring unparseable autocomplete input",
				"offset", syntaxErr.Offset,
				"reason", syntaxErr.Reason,
			)
			return nil, nil
		}
		return nil, fmt.Errorf("autocomplete: parsing %q: %w", partial, err)
	}

	entries, err := e.index.Search(query, MaxSuggestions)
	if err != nil {
		return nil, fmt.Errorf("autocomplete: searching: %w", err)
	}

	suggestions := make([]string, len(entries))
	for i, entry := range entries {
		suggestions[i] = entry.Display
	}
	return suggestions, nil
}
