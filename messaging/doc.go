// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package messaging is the Matrix client-server API surface timezoner
// needs: identity, /sync long-polling, joining rooms, and sending
// events.
//
// A [Client] holds the homeserver URL, HTTP transport, and an outbound
// rate limiter shared by every session built from it. A [DirectSession]
// adds an access token held in locked memory (lib/secret). Code that
// only needs to talk to Matrix depends on the [Session] interface so
// tests can substitute a fake.
//
// Every API failure is a [*MatrixError] carrying the Matrix errcode and
// the HTTP status. Sends that hit M_LIMIT_EXCEEDED are retried with the
// same transaction ID after the server's retry_after_ms, which keeps
// them idempotent.
package messaging
