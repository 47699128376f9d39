// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock is the subset of the time package timezoner depends on.
type Clock interface {
	Now() time.Time

	// After delivers the current time on the returned channel once d
	// has elapsed. d <= 0 delivers immediately.
	After(d time.Duration) <-chan time.Time
}
