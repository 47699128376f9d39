// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"time"
)

// TB is the subset of testing.TB the helpers use.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// RequireReceive returns the next value from ch, failing the test if
// none arrives within timeout or ch is closed.
//
//	event := testutil.RequireReceive(t, events, 5*time.Second, "waiting for room_joined")
func RequireReceive[T any](t TB, ch <-chan T, timeout time.Duration, msgAndArgs ...any) T {
	t.Helper()
	select {
	case value, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed before a value arrived: %s", formatMessage(msgAndArgs))
		}
		return value
	case <-time.After(timeout):
		t.Fatalf("nothing received after %v: %s", timeout, formatMessage(msgAndArgs))
	}
	panic("unreachable")
}

// RequireSend sends value on ch, failing the test if the send blocks
// longer than timeout.
func RequireSend[T any](t TB, ch chan<- T, value T, timeout time.Duration, msgAndArgs ...any) {
	t.Helper()
	select {
	case ch <- value:
	case <-time.After(timeout):
		t.Fatalf("send blocked for %v: %s", timeout, formatMessage(msgAndArgs))
	}
}

// RequireClosed fails the test unless ch is closed within timeout.
// Values still buffered in ch are drained first.
func RequireClosed[T any](t TB, ch <-chan T, timeout time.Duration, msgAndArgs ...any) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("channel still open after %v: %s", timeout, formatMessage(msgAndArgs))
		}
	}
}

// RequireNoReceive fails the test if ch yields a value within wait.
func RequireNoReceive[T any](t TB, ch <-chan T, wait time.Duration, msgAndArgs ...any) {
	t.Helper()
	select {
	case value, ok := <-ch:
		if ok {
			t.Fatalf("unexpected value %v: %s", value, formatMessage(msgAndArgs))
		}
		t.Fatalf("channel unexpectedly closed: %s", formatMessage(msgAndArgs))
	case <-time.After(wait):
	}
}

func formatMessage(msgAndArgs []any) string {
	switch len(msgAndArgs) {
	case 0:
		return "(no message)"
	case 1:
		return fmt.Sprint(msgAndArgs[0])
	}
	if format, ok := msgAndArgs[0].(string); ok {
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
	return fmt.Sprint(msgAndArgs...)
}
