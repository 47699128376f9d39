// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tzstore persists each user's time zone, encrypted at rest.
//
// A record is sealed with XChaCha20-Poly1305 under one process-wide
// [Key]:
//
//	[version 0x01][nonce: 24 bytes][ciphertext + tag]
//
// The version byte, a purpose label, and the user identifier are bound
// as additional data, so a ciphertext copied onto another user's row
// fails to open. There is one row per user; [Store.Upsert] replaces it
// in a single statement and the database decides which of two racing
// writes lands last.
//
// A wrong key is fatal rather than degraded: [Store.VerifyKey] keeps a
// sealed canary in the backend's metadata and fails startup when the
// configured key cannot open it.
//
// Two backends implement [Backend]: SQLite through lib/sqlitepool, and
// PostgreSQL through pgx.
package tzstore
