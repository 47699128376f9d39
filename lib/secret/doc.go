// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret keeps key material and access tokens out of the Go
// heap.
//
// A [Buffer] is an anonymous mmap region locked into RAM and excluded
// from core dumps. Close zeroes and releases it. The garbage collector
// never sees the region, so it cannot leave stale copies behind.
//
// timezoner holds two secrets this way: the record encryption key and
// the homeserver access token. [ReadFromPath] loads either from a file;
// [NewFromString] takes one from the environment.
package secret
