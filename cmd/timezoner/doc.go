// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Timezoner is a Matrix bot that records each user's time zone.
//
// Users pick a zone either by typing it (!timezone Europe/Paris) or
// through live suggestions in clients that send
// dev.timezoner.interaction events. Suggestions come from an
// on-disk search index built by timezoner-index; typed values must be
// exact IANA identifiers. Records are sealed with XChaCha20-Poly1305
// before they reach SQLite or PostgreSQL.
//
// Configuration is a YAML file (--config or TIMEZONER_CONFIG); secrets
// come from the environment: TIMEZONER_ACCESS_TOKEN, TIMEZONER_STORAGE_KEY
// or TIMEZONER_STORAGE_KEY_FILE, and TIMEZONER_POSTGRES_URL for the
// postgres backend. Run with --generate-key to create a storage key.
package main
