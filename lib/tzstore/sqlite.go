// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tzstore

import (
	"context"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/timezoner/lib/sqlitepool"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS user_timezones (
	user_id    TEXT PRIMARY KEY,
	sealed     BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS store_meta (
	name  TEXT PRIMARY KEY,
	value BLOB NOT NULL
);`

// SQLiteBackend keeps rows in a local SQLite database.
type SQLiteBackend struct {
	pool *sqlitepool.Pool
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string, poolSize int, logger *slog.Logger) (*SQLiteBackend, error) {
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     path,
		PoolSize: poolSize,
		Schema:   sqliteSchema,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	return &SQLiteBackend{pool: pool}, nil
}

func (b *SQLiteBackend) Put(ctx context.Context, userID string, sealed []byte, updatedAt time.Time) error {
	return b.pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `
			INSERT INTO user_timezones (user_id, sealed, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(user_id) DO UPDATE SET sealed = excluded.sealed, updated_at = excluded.updated_at`,
			&sqlitex.ExecOptions{Args: []any{userID, sealed, updatedAt.UnixMilli()}})
	})
}

func (b *SQLiteBackend) Get(ctx context.Context, userID string) ([]byte, time.Time, error) {
	var (
		sealed    []byte
		updatedAt time.Time
		found     bool
	)
	err := b.pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT sealed, updated_at FROM user_timezones WHERE user_id = ?",
			&sqlitex.ExecOptions{
				Args: []any{userID},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					found = true
					sealed = columnBytes(stmt, 0)
					updatedAt = time.UnixMilli(stmt.ColumnInt64(1)).UTC()
					return nil
				},
			})
	})
	if err != nil {
		return nil, time.Time{}, err
	}
	if !found {
		return nil, time.Time{}, ErrNotFound
	}
	return sealed, updatedAt, nil
}

func (b *SQLiteBackend) Count(ctx context.Context) (int64, error) {
	var count int64
	err := b.pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT COUNT(*) FROM user_timezones", &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				count = stmt.ColumnInt64(0)
				return nil
			},
		})
	})
	return count, err
}

func (b *SQLiteBackend) PutMeta(ctx context.Context, name string, value []byte) error {
	return b.pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `
			INSERT INTO store_meta (name, value) VALUES (?, ?)
			ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
			&sqlitex.ExecOptions{Args: []any{name, value}})
	})
}

func (b *SQLiteBackend) GetMeta(ctx context.Context, name string) ([]byte, error) {
	var (
		value []byte
		found bool
	)
	err := b.pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT value FROM store_meta WHERE name = ?", &sqlitex.ExecOptions{
			Args: []any{name},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				value = columnBytes(stmt, 0)
				return nil
			},
		})
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return value, nil
}

func (b *SQLiteBackend) Close() error {
	return b.pool.Close()
}

func columnBytes(stmt *sqlite.Stmt, column int) []byte {
	data := make([]byte, stmt.ColumnLen(column))
	stmt.ColumnBytes(column, data)
	return data
}
