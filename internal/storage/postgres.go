package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS blobs (
	key TEXT PRIMARY KEY,
	data BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresBlobStore stores blobs in a PostgreSQL table.
type PostgresBlobStore struct {
	pool *pgxpool.Pool
}

// NewPostgresBlobStore connects to dsn and ensures the blobs table exists.
func NewPostgresBlobStore(ctx context.Context, dsn string) (*PostgresBlobStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn cannot be empty")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create blobs table: %w", err)
	}

	return &PostgresBlobStore{pool: pool}, nil
}

// Get returns the blob stored under key.
func (p *PostgresBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateAccess(ctx, key); err != nil {
		return nil, err
	}

	var data []byte
	err := p.pool.QueryRow(ctx, `SELECT data FROM blobs WHERE key = $1`, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return data, nil
}

// Put inserts or replaces the blob stored under key.
func (p *PostgresBlobStore) Put(ctx context.Context, key string, data []byte) error {
	if err := validateAccess(ctx, key); err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO blobs (key, data, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		key, data)
	if err != nil {
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	return nil
}

// Close releases the pool.
func (p *PostgresBlobStore) Close() error {
	p.pool.Close()
	return nil
}
