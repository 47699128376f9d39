// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitepool

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Config describes a pool. Only Path is required.
type Config struct {
	// Path of the database file, created if missing. ":memory:" gives
	// every connection its own empty database, so pair it with
	// PoolSize 1.
	Path string

	// PoolSize defaults to max(runtime.NumCPU(), 4).
	PoolSize int

	// BusyTimeoutMillis defaults to 5000.
	BusyTimeoutMillis int

	// Schema, if set, runs on every new connection after the pragmas.
	// It must be idempotent (CREATE TABLE IF NOT EXISTS).
	Schema string

	// Logger defaults to discarding.
	Logger *slog.Logger
}

// Pool hands out prepared connections. Safe for concurrent use;
// connections are not.
type Pool struct {
	inner  *sqlitex.Pool
	logger *slog.Logger
	path   string
}

// Open creates the pool. Connections are prepared lazily on first Take,
// so schema errors surface there.
func Open(cfg Config) (*Pool, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlitepool: Path is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = max(runtime.NumCPU(), 4)
	}
	busyTimeout := cfg.BusyTimeoutMillis
	if busyTimeout <= 0 {
		busyTimeout = 5000
	}

	inner, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize: poolSize,
		PrepareConn: func(conn *sqlite.Conn) error {
			return prepare(conn, busyTimeout, cfg.Schema)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitepool: opening %s: %w", cfg.Path, err)
	}

	logger.Info("sqlite pool opened", "path", cfg.Path, "pool_size", poolSize)
	return &Pool{inner: inner, logger: logger, path: cfg.Path}, nil
}

// Take borrows a connection, blocking until one is free or ctx ends.
// Every successful Take must be paired with Put.
func (p *Pool) Take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := p.inner.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlitepool: take: %w", err)
	}
	return conn, nil
}

// Put returns conn to the pool. A nil conn is ignored.
func (p *Pool) Put(conn *sqlite.Conn) {
	p.inner.Put(conn)
}

// With runs fn on a borrowed connection and returns it afterwards.
func (p *Pool) With(ctx context.Context, fn func(conn *sqlite.Conn) error) error {
	conn, err := p.Take(ctx)
	if err != nil {
		return err
	}
	defer p.Put(conn)
	return fn(conn)
}

// Close waits for borrowed connections to come back, then closes them
// all.
func (p *Pool) Close() error {
	if err := p.inner.Close(); err != nil {
		p.logger.Error("sqlite pool close failed", "path", p.path, "error", err)
		return fmt.Errorf("sqlitepool: closing %s: %w", p.path, err)
	}
	p.logger.Info("sqlite pool closed", "path", p.path)
	return nil
}

func prepare(conn *sqlite.Conn, busyTimeoutMillis int, schema string) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeoutMillis),
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("sqlitepool: %s: %w", pragma, err)
		}
	}
	if schema != "" {
		if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
			return fmt.Errorf("sqlitepool: applying schema: %w", err)
		}
	}
	return nil
}
