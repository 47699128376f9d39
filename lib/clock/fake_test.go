// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeNow(t *testing.T) {
	fake := Fake(epoch)
	if !fake.Now().Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", fake.Now(), epoch)
	}
	fake.Advance(90 * time.Minute)
	if want := epoch.Add(90 * time.Minute); !fake.Now().Equal(want) {
		t.Errorf("Now() after Advance = %v, want %v", fake.Now(), want)
	}
}

func TestFakeAfter(t *testing.T) {
	fake := Fake(epoch)
	short := fake.After(time.Second)
	long := fake.After(time.Minute)

	if fake.PendingCount() != 2 {
		t.Fatalf("PendingCount() = %d, want 2", fake.PendingCount())
	}

	fake.Advance(999 * time.Millisecond)
	select {
	case <-short:
		t.Fatal("fired before its deadline")
	default:
	}

	fake.Advance(time.Millisecond)
	select {
	case fired := <-short:
		if !fired.Equal(epoch.Add(time.Second)) {
			t.Errorf("fired at %v", fired)
		}
	default:
		t.Fatal("did not fire at its deadline")
	}

	select {
	case <-long:
		t.Fatal("long wait fired early")
	default:
	}
	if fake.PendingCount() != 1 {
		t.Errorf("PendingCount() = %d, want 1", fake.PendingCount())
	}
}

func TestFakeAfterNonPositive(t *testing.T) {
	fake := Fake(epoch)
	select {
	case <-fake.After(0):
	default:
		t.Fatal("After(0) should deliver immediately")
	}
	if fake.PendingCount() != 0 {
		t.Errorf("After(0) registered a waiter")
	}
}

func TestWaitForTimers(t *testing.T) {
	fake := Fake(epoch)
	done := make(chan struct{})
	go func() {
		<-fake.After(5 * time.Second)
		close(done)
	}()

	fake.WaitForTimers(1)
	fake.Advance(5 * time.Second)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("goroutine did not wake after Advance")
	}
}

func TestReal(t *testing.T) {
	system := Real()
	before := time.Now()
	if system.Now().Before(before) {
		t.Error("Real().Now() is behind time.Now()")
	}
	select {
	case <-system.After(0):
	case <-time.After(time.Second):
		t.Fatal("Real().After(0) did not fire")
	}
}
