// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens a pool of SQLite connections
// (zombiezen.com/go/sqlite) with the pragmas timezoner relies on.
//
// Every connection gets WAL journaling, so readers and the single writer
// do not block each other, plus a busy timeout so concurrent upserts
// wait for the write lock instead of failing with SQLITE_BUSY.
// synchronous=FULL is used because the database is the only copy of
// user records.
//
// Callers either [Pool.Take] and [Pool.Put] a connection themselves or
// hand a function to [Pool.With]. A connection belongs to one goroutine
// between Take and Put.
package sqlitepool
