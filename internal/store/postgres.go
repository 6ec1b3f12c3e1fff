// Package store provides the Postgres-backed listing document store.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alpentrace/harvester/internal/listing"
)

const listingsTable = "listings"

const createTableSQL = `
CREATE TABLE IF NOT EXISTS listings (
	id          bigint GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	collection  text NOT NULL,
	scrape_date text NOT NULL,
	doc         jsonb NOT NULL
)`

// Config controls the Postgres connection pool behind the store.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type querierCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Close()
}

// Store keeps normalized listing documents as JSONB rows, one row per
// record, partitioned logically by collection and scrape date.
type Store struct {
	pool querierCloser
}

// New connects a pool, verifies the connection and ensures the
// listings table exists.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure listings table: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewWithPool constructs a Store from an existing pool (primarily for
// testing).
func NewWithPool(pool querierCloser) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// StoredSize reports the listings table's total on-disk size,
// including indexes and toast data.
func (s *Store) StoredSize(ctx context.Context) (int64, error) {
	var size int64
	err := s.pool.QueryRow(ctx, `SELECT pg_total_relation_size($1)`, listingsTable).Scan(&size)
	if err != nil {
		return 0, fmt.Errorf("read table size: %w", err)
	}
	return size, nil
}

// OldestDate returns the smallest scrape date present, or ok=false for
// an empty table.
func (s *Store) OldestDate(ctx context.Context) (string, bool, error) {
	var date *string
	err := s.pool.QueryRow(ctx, `SELECT min(scrape_date) FROM listings`).Scan(&date)
	if err != nil {
		return "", false, fmt.Errorf("find oldest scrape date: %w", err)
	}
	if date == nil {
		return "", false, nil
	}
	return *date, true, nil
}

// DeleteDate removes every row with the given scrape date and reports
// how many went.
func (s *Store) DeleteDate(ctx context.Context, date string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM listings WHERE scrape_date = $1`, date)
	if err != nil {
		return 0, fmt.Errorf("delete scrape date %s: %w", date, err)
	}
	return tag.RowsAffected(), nil
}

// Clear drops every row of the collection.
func (s *Store) Clear(ctx context.Context, collection string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM listings WHERE collection = $1`, collection); err != nil {
		return fmt.Errorf("clear collection %s: %w", collection, err)
	}
	return nil
}

// Insert stores the records as JSONB documents under the collection.
// The scrape date column mirrors each record's date field so eviction
// never has to open the documents.
func (s *Store) Insert(ctx context.Context, collection string, records []listing.Record) error {
	for _, rec := range records {
		date, _ := rec[listing.FieldDate].(string)
		if date == "" {
			return fmt.Errorf("record without a scrape date")
		}
		doc, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO listings (collection, scrape_date, doc) VALUES ($1, $2, $3)`,
			collection, date, doc,
		)
		if err != nil {
			return fmt.Errorf("insert listing: %w", err)
		}
	}
	return nil
}
