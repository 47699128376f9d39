// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"strconv"
	"sync/atomic"
)

var lastID atomic.Uint64

// UniqueID returns prefix followed by a process-wide counter:
// "req-1", "req-2", and so on.
func UniqueID(prefix string) string {
	return prefix + "-" + strconv.FormatUint(lastID.Add(1), 10)
}
