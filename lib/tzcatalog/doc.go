// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tzcatalog is the fixed catalog of valid time zone identifiers.
//
// The catalog is every Zone and Link name from the IANA tz database,
// embedded at build time. A [Zone] obtained from a [Catalog] is always
// a member of it: there is no partial or malformed identifier. Lookups
// are exact and case-sensitive, matching how the identifiers are
// written in the tz database itself.
//
// [Catalog.Closest] ranks near misses with fzf's matching algorithm for
// "did you mean" hints. It never resolves anything on its own.
//
// [Locations] and [Abbreviations] expose the embedded zone.tab,
// iso3166.tab and abbreviation tables for building search aliases.
package tzcatalog
