// Package postgres implements the property store on PostgreSQL with pgx.
//
// The schema is owned outside this repository. The adapter expects:
//
//	CREATE TABLE properties (
//	    id          text PRIMARY KEY,
//	    name        text        NOT NULL,
//	    address     text,
//	    room_number text,
//	    rent        bigint,
//	    area        double precision,
//	    category    smallint    NOT NULL,
//	    created_at  timestamptz NOT NULL DEFAULT now(),
//	    updated_at  timestamptz NOT NULL DEFAULT now()
//	);
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/propimport/internal/config"
	"github.com/JonMunkholm/propimport/internal/core"
)

// DefaultTable is the table imports are written to.
const DefaultTable = "properties"

// Connect opens a connection pool using the database settings and verifies
// it with a ping.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Store is a core.Store backed by a pgx pool.
type Store struct {
	pool  *pgxpool.Pool
	table string
}

// New creates a store writing to DefaultTable.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, table: DefaultTable}
}

// Begin starts the transaction that scopes one import run.
func (s *Store) Begin(ctx context.Context) (core.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, table: s.table}, nil
}

// Count returns the number of stored properties.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	query := "SELECT count(*) FROM " + pgx.Identifier{s.table}.Sanitize()
	if err := s.pool.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", s.table, err)
	}
	return n, nil
}

// Truncate deletes every stored property.
func (s *Store) Truncate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "TRUNCATE "+pgx.Identifier{s.table}.Sanitize()); err != nil {
		return fmt.Errorf("truncate %s: %w", s.table, err)
	}
	return nil
}

// Ping checks the connection for health endpoints.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Tx is a core.Tx wrapping a pgx transaction.
type Tx struct {
	tx    pgx.Tx
	table string
}

// UpsertBatch writes records with one multi-row INSERT ... ON CONFLICT.
// The affected count comes from the command tag; PostgreSQL reports one row
// per inserted or updated record.
func (t *Tx) UpsertBatch(ctx context.Context, records []core.PropertyRecord, uniqueKey string) (int64, error) {
	query, args, err := BuildUpsert(t.table, uniqueKey, records)
	if err != nil {
		return 0, err
	}

	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("upsert %d records: %w", len(records), err)
	}
	return tag.RowsAffected(), nil
}

// Commit commits the run.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback discards the run.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
