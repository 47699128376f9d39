// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tzstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS user_timezones (
		user_id    TEXT PRIMARY KEY,
		sealed     BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS store_meta (
		name  TEXT PRIMARY KEY,
		value BYTEA NOT NULL
	)`,
}

// PostgresBackend keeps rows in PostgreSQL.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to connString and creates the tables if they
// are missing.
func OpenPostgres(ctx context.Context, connString string, maxConns int32) (*PostgresBackend, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("tzstore: parsing postgres url: %w", err)
	}
	if maxConns > 0 {
		config.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("tzstore: connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("tzstore: pinging postgres: %w", err)
	}
	for _, statement := range postgresSchema {
		if _, err := pool.Exec(ctx, statement); err != nil {
			pool.Close()
			return nil, fmt.Errorf("tzstore: creating postgres schema: %w", err)
		}
	}
	return &PostgresBackend{pool: pool}, nil
}

func (b *PostgresBackend) Put(ctx context.Context, userID string, sealed []byte, updatedAt time.Time) error {
	_, err := b.pool.Exec(ctx, `
		INSERT INTO user_timezones (user_id, sealed, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET sealed = EXCLUDED.sealed, updated_at = EXCLUDED.updated_at`,
		userID, sealed, updatedAt)
	return err
}

func (b *PostgresBackend) Get(ctx context.Context, userID string) ([]byte, time.Time, error) {
	var (
		sealed    []byte
		updatedAt time.Time
	)
	err := b.pool.QueryRow(ctx,
		"SELECT sealed, updated_at FROM user_timezones WHERE user_id = $1", userID,
	).Scan(&sealed, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	return sealed, updatedAt.UTC(), nil
}

func (b *PostgresBackend) Count(ctx context.Context) (int64, error) {
	var count int64
	err := b.pool.QueryRow(ctx, "SELECT COUNT(*) FROM user_timezones").Scan(&count)
	return count, err
}

func (b *PostgresBackend) PutMeta(ctx context.Context, name string, value []byte) error {
	_, err := b.pool.Exec(ctx, `
		INSERT INTO store_meta (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value`,
		name, value)
	return err
}

func (b *PostgresBackend) GetMeta(ctx context.Context, name string) ([]byte, error) {
	var value []byte
	err := b.pool.QueryRow(ctx, "SELECT value FROM store_meta WHERE name = $1", name).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return value, err
}

func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}
