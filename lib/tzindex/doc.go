// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tzindex is the read-only full-text index over time zone
// aliases.
//
// Each [Entry] pairs a display string ("Tokyo", "Tokyo, Japan", "JST",
// "Asia/Tokyo") with the canonical zone it stands for. Several entries
// may share a zone; display strings are unique, and the first entry
// for a display string wins when building.
//
// Queries are parsed by [ParseQuery] into BM25 clauses. Malformed
// input yields a [*SyntaxError]; the caller decides whether that is
// worth surfacing (autocomplete deliberately collapses it into "no
// suggestions").
//
// The index is built offline by [BuildEntries] and [Write] and opened
// once at startup with [Open]. An opened [Index] is immutable and safe
// for any number of concurrent readers.
//
// File layout:
//
//	"TZIX" | version (1 byte) | BLAKE3 digest of payload (32 bytes) | payload
//
// where payload is the zstd-compressed CBOR encoding of the entry list.
package tzindex
