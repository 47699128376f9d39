// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tzstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/timezoner/lib/clock"
	"github.com/bureau-foundation/timezoner/lib/tzcatalog"
)

// ErrKeyMismatch means the configured key cannot open the key canary
// written by an earlier run. Past records are unreadable with it.
var ErrKeyMismatch = errors.New("tzstore: configured key does not match stored records")

const canaryName = "key_check"

var canaryPlaintext = []byte("timezoner key check")

// Record is one user's stored time zone.
type Record struct {
	UserID    string
	Zone      tzcatalog.Zone
	UpdatedAt time.Time
}

// Config wires a Store.
type Config struct {
	Backend Backend

	// Key is owned by the Store from here on and wiped by Close.
	Key *Key

	// Catalog is the set of zones Upsert accepts. Defaults to
	// tzcatalog.Default().
	Catalog *tzcatalog.Catalog

	// Clock stamps UpdatedAt. Defaults to the system clock.
	Clock clock.Clock

	Logger *slog.Logger

	// Observe, if set, is called after every operation with its name
	// ("upsert", "get", "verify_key") and result.
	Observe func(op string, err error)
}

// Store seals and persists user records. Safe for concurrent use; no
// application-level locking is done around writes.
type Store struct {
	backend Backend
	key     *Key
	catalog *tzcatalog.Catalog
	clock   clock.Clock
	logger  *slog.Logger
	observe func(op string, err error)
}

// New creates a Store.
func New(cfg Config) (*Store, error) {
	if cfg.Backend == nil {
		return nil, fmt.Errorf("tzstore: Backend is required")
	}
	if cfg.Key == nil {
		return nil, fmt.Errorf("tzstore: Key is required")
	}
	store := &Store{
		backend: cfg.Backend,
		key:     cfg.Key,
		catalog: cfg.Catalog,
		clock:   cfg.Clock,
		logger:  cfg.Logger,
		observe: cfg.Observe,
	}
	if store.catalog == nil {
		store.catalog = tzcatalog.Default()
	}
	if store.clock == nil {
		store.clock = clock.Real()
	}
	if store.logger == nil {
		store.logger = slog.New(slog.DiscardHandler)
	}
	if store.observe == nil {
		store.observe = func(string, error) {}
	}
	return store, nil
}

// Upsert stores zone as userID's time zone, replacing any previous
// value. A zone outside the catalog is rejected with
// tzcatalog.ErrUnknownZone before anything is written. Storage
// failures are returned as *StorageError and not retried.
func (s *Store) Upsert(ctx context.Context, userID string, zone tzcatalog.Zone) (err error) {
	defer func() { s.observe("upsert", err) }()

	if userID == "" {
		return fmt.Errorf("tzstore: empty user id")
	}
	if !s.catalog.Contains(string(zone)) {
		return fmt.Errorf("tzstore: refusing to store %q: %w", zone, tzcatalog.ErrUnknownZone)
	}
	sealed, err := s.key.seal(purposeRecord, userID, []byte(zone))
	if err != nil {
		return err
	}
	if err := s.backend.Put(ctx, userID, sealed, s.clock.Now()); err != nil {
		return &StorageError{Op: "upsert", Err: err}
	}
	return nil
}

// Get returns userID's record. A user with no record gets ErrNotFound;
// a record that fails authentication is a *StorageError wrapping
// ErrUndecryptable.
func (s *Store) Get(ctx context.Context, userID string) (record Record, err error) {
	defer func() {
		if errors.Is(err, ErrNotFound) {
			s.observe("get", nil)
			return
		}
		s.observe("get", err)
	}()

	sealed, updatedAt, err := s.backend.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Record{}, err
	}
	if err != nil {
		return Record{}, &StorageError{Op: "get", Err: err}
	}
	plaintext, err := s.key.open(purposeRecord, userID, sealed)
	if err != nil {
		s.logger.Error("stored record failed authentication", "user_id", userID)
		return Record{}, &StorageError{Op: "get", Err: err}
	}
	return Record{UserID: userID, Zone: tzcatalog.Zone(plaintext), UpdatedAt: updatedAt}, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	count, err := s.backend.Count(ctx)
	if err != nil {
		return 0, &StorageError{Op: "count", Err: err}
	}
	return count, nil
}

// VerifyKey checks the configured key against the canary from earlier
// runs, writing the canary on first use. ErrKeyMismatch must stop the
// process.
func (s *Store) VerifyKey(ctx context.Context) (err error) {
	defer func() { s.observe("verify_key", err) }()

	sealed, err := s.backend.GetMeta(ctx, canaryName)
	if errors.Is(err, ErrNotFound) {
		sealed, err := s.key.seal(purposeCanary, canaryName, canaryPlaintext)
		if err != nil {
			return err
		}
		if err := s.backend.PutMeta(ctx, canaryName, sealed); err != nil {
			return &StorageError{Op: "verify_key", Err: err}
		}
		s.logger.Info("wrote key check canary")
		return nil
	}
	if err != nil {
		return &StorageError{Op: "verify_key", Err: err}
	}
	if _, err := s.key.open(purposeCanary, canaryName, sealed); err != nil {
		return ErrKeyMismatch
	}
	return nil
}

// Close releases the backend and wipes the key.
func (s *Store) Close() error {
	return errors.Join(s.backend.Close(), s.key.Close())
}
