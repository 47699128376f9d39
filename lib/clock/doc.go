// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock lets code that waits or timestamps run against a fake
// clock in tests.
//
// Production wiring passes [Real]. Tests pass [Fake] and move time with
// [FakeClock.Advance]. Use [FakeClock.WaitForTimers] before advancing so
// the goroutine under test has registered its wait:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go gateway.Run(ctx, events) // waits via fake.After on failure
//	fake.WaitForTimers(1)
//	fake.Advance(time.Second)
package clock
