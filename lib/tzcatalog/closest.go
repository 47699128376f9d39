// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tzcatalog

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// initFuzzy sets fzf's scoring scheme. FuzzyMatchV2 rejects every
// input until it has run.
var initFuzzy = sync.OnceFunc(func() { algo.Init("default") })

// Closest returns up to limit catalog zones that fuzzy-match raw, best
// first. Whitespace and underscores in raw are ignored so "new york"
// matches "America/New_York". Returns nil when nothing matches.
func (c *Catalog) Closest(raw string, limit int) []Zone {
	pattern := fuzzyPattern(raw)
	if len(pattern) == 0 || limit <= 0 {
		return nil
	}
	initFuzzy()

	type candidate struct {
		name  string
		score int
	}
	var candidates []candidate

	// Slabs are scratch space and not safe to share between goroutines.
	slab := util.MakeSlab(100*1024, 2048)
	for _, name := range c.names {
		chars := util.ToChars([]byte(name))
		result, _ := algo.FuzzyMatchV2(false, false, true, &chars, pattern, false, slab)
		if result.Start < 0 || result.Score <= 0 {
			continue
		}
		candidates = append(candidates, candidate{name: name, score: result.Score})
	}

	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].score != candidates[b].score {
			return candidates[a].score > candidates[b].score
		}
		if len(candidates[a].name) != len(candidates[b].name) {
			return len(candidates[a].name) < len(candidates[b].name)
		}
		return candidates[a].name < candidates[b].name
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	zones := make([]Zone, len(candidates))
	for i, candidate := range candidates {
		zones[i] = Zone(candidate.name)
	}
	return zones
}

// fuzzyPattern lower-cases raw and drops separators. fzf expects a
// lower-case pattern for case-insensitive matching.
func fuzzyPattern(raw string) []rune {
	var pattern []rune
	for _, r := range strings.ToLower(raw) {
		if unicode.IsSpace(r) || r == '_' {
			continue
		}
		pattern = append(pattern, r)
	}
	return pattern
}
