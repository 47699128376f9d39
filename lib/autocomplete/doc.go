// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package autocomplete turns partially typed timezone text into a short
// ranked list of display strings.
//
// Suggestions are meant to be echoed back verbatim: every string the
// engine returns is an index display string, so submitting it takes the
// confirmed resolution path. Input shorter than [MinInputLength] runes
// returns nothing without touching the index. Malformed query syntax is
// not an error at this layer; the user is mid-typing and simply gets no
// suggestions.
package autocomplete
