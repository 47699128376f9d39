// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake returns a FakeClock stopped at initial.
func Fake(initial time.Time) *FakeClock {
	clock := &FakeClock{current: initial}
	clock.changed = sync.NewCond(&clock.mu)
	return clock
}

// FakeClock only moves when Advance is called. Safe for concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	waiters []fakeWaiter
	changed *sync.Cond
}

type fakeWaiter struct {
	deadline time.Time
	channel  chan time.Time
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- c.current
		return channel
	}
	c.waiters = append(c.waiters, fakeWaiter{deadline: c.current.Add(d), channel: channel})
	c.changed.Broadcast()
	return channel
}

// Advance moves time forward by d and fires every wait whose deadline
// has been reached, earliest first.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	now := c.current

	var due, pending []fakeWaiter
	for _, waiter := range c.waiters {
		if waiter.deadline.After(now) {
			pending = append(pending, waiter)
		} else {
			due = append(due, waiter)
		}
	}
	c.waiters = pending
	c.changed.Broadcast()
	c.mu.Unlock()

	sort.SliceStable(due, func(a, b int) bool {
		return due[a].deadline.Before(due[b].deadline)
	})
	for _, waiter := range due {
		waiter.channel <- now
	}
}

// WaitForTimers blocks until at least n waits are pending.
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.waiters) < n {
		c.changed.Wait()
	}
}

// PendingCount returns the number of waits that have not fired.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}
