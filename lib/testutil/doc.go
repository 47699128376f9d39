// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for timezoner packages.
//
// [RequireReceive], [RequireSend], [RequireClosed] and
// [RequireNoReceive] wrap channel operations in a wall-clock safety
// timeout so a broken test fails instead of hanging. They are the only
// place tests wait on real time; everything that is itself timed runs
// on lib/clock's fake clock.
//
// [UniqueID] hands out distinct request and transaction identifiers.
//
// Helpers call t.Fatalf on failure.
package testutil
