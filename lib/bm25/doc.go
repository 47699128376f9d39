// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bm25 provides relevance-ranked full-text search using the
// Okapi BM25 algorithm. The index accepts documents with named,
// weighted text fields and scores queries against them using
// term-frequency and inverse-document-frequency weighting with
// document-length normalization.
//
// Queries are either free text ([Index.Search]) or structured clauses
// ([Index.SearchClauses]) carrying Should/Must/MustNot occurrence and
// an optional prefix flag. Prefix clauses expand against the sorted
// index vocabulary, which is what makes search-as-you-type work:
// "tok" reaches "tokyo" and "tokelau".
//
// Tokens are letter and digit runs, lower-cased with diacritics folded,
// so "reunion" and "Réunion" index to the same term.
//
// The index is built at construction time and is immutable thereafter.
// It is safe for concurrent read access.
package bm25
