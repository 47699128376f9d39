// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tzstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a user or metadata entry has no row.
var ErrNotFound = errors.New("tzstore: not found")

// StorageError wraps a failure of the storage engine or of the stored
// bytes themselves.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("tzstore: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Backend stores sealed rows. Implementations only move opaque bytes;
// sealing happens in Store. Put must replace an existing row for the
// same user atomically.
type Backend interface {
	Put(ctx context.Context, userID string, sealed []byte, updatedAt time.Time) error

	// Get returns ErrNotFound when userID has no row.
	Get(ctx context.Context, userID string) (sealed []byte, updatedAt time.Time, err error)

	// Count returns the number of user rows.
	Count(ctx context.Context) (int64, error)

	PutMeta(ctx context.Context, name string, value []byte) error

	// GetMeta returns ErrNotFound when name has no row.
	GetMeta(ctx context.Context, name string) ([]byte, error)

	Close() error
}
