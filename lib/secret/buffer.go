// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// ErrEmpty is returned when a secret would be zero bytes long.
var ErrEmpty = errors.New("secret: empty secret")

// Buffer is locked, non-dumpable memory holding one secret. Accessing a
// closed Buffer panics. A Buffer must not be copied.
type Buffer struct {
	mu     sync.Mutex
	region []byte
	closed bool
}

// New maps size zeroed bytes of protected memory.
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret: size must be positive, got %d", size)
	}

	region, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap: %w", err)
	}
	if err := unix.Mlock(region); err != nil {
		unix.Munmap(region)
		return nil, fmt.Errorf("secret: mlock: %w", err)
	}
	if err := unix.Madvise(region, unix.MADV_DONTDUMP); err != nil {
		unix.Munlock(region)
		unix.Munmap(region)
		return nil, fmt.Errorf("secret: madvise(MADV_DONTDUMP): %w", err)
	}
	return &Buffer{region: region}, nil
}

// NewFromBytes moves source into protected memory and zeroes source.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, ErrEmpty
	}
	buffer, err := New(len(source))
	if err != nil {
		return nil, err
	}
	copy(buffer.region, source)
	Zero(source)
	return buffer, nil
}

// NewFromString copies value into protected memory. The string itself
// is immutable and stays wherever the runtime put it, so prefer
// NewFromBytes when the caller controls the source.
func NewFromString(value string) (*Buffer, error) {
	return NewFromBytes([]byte(value))
}

// Bytes returns the secret. The slice aliases the protected region and
// is invalid after Close.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mustBeOpen()
	return b.region
}

// String returns a heap copy of the secret, for APIs that need a
// string (HTTP headers, driver DSNs).
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mustBeOpen()
	return string(b.region)
}

// Len returns the secret's length in bytes, or 0 after Close.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.region)
}

// Equal compares the secret with other in constant time.
func (b *Buffer) Equal(other []byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mustBeOpen()
	return subtle.ConstantTimeCompare(b.region, other) == 1
}

// Close zeroes and releases the memory. Calling it again is a no-op.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	Zero(b.region)
	err := errors.Join(unix.Munlock(b.region), unix.Munmap(b.region))
	b.region = nil
	if err != nil {
		return fmt.Errorf("secret: releasing buffer: %w", err)
	}
	return nil
}

func (b *Buffer) mustBeOpen() {
	if b.closed {
		panic("secret: use of closed buffer")
	}
}

// Zero overwrites data with zeroes.
func Zero(data []byte) {
	clear(data)
}
