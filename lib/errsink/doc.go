// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package errsink delivers failure reports to the bot owner.
//
// A [Reporter] stamps each failure with an ID and time and hands it to
// a [Sink]. [LogSink] and [FileSink] keep a local record; [RoomSink]
// posts the report into an owner Matrix room. [Multi] fans one report
// out to several sinks.
//
// Delivery is best effort. A sink failure is logged and never returned
// to the caller that hit the original error.
package errsink
