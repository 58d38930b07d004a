package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultPostgresTable is the table created by NewPostgres when none is configured.
const DefaultPostgresTable = "umlboard_kv"

// PostgresConfig holds connection settings for the PostgreSQL backend.
type PostgresConfig struct {
	DSN   string
	Table string
}

// Postgres stores payloads in a two column key/value table.
type Postgres struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgres opens a connection pool and creates the table if needed.
func NewPostgres(ctx context.Context, cfg PostgresConfig) (*Postgres, error) {
	table := cfg.Table
	if table == "" {
		table = DefaultPostgresTable
	}

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := withRetry(ctx, func() error { return pool.Ping(ctx) }); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	ident := pgx.Identifier{table}.Sanitize()
	_, err = pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+ident+` (
		key        TEXT PRIMARY KEY,
		data       BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create table %s: %w", table, err)
	}
	return &Postgres{pool: pool, table: ident}, nil
}

func (s *Postgres) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM `+s.table+` WHERE key = $1`, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres load %s: %w", key, err)
	}
	return data, nil
}

func (s *Postgres) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO `+s.table+` (key, data, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`, key, data)
	if err != nil {
		return fmt.Errorf("postgres save %s: %w", key, err)
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM `+s.table+` WHERE key = $1`, key); err != nil {
		return fmt.Errorf("postgres delete %s: %w", key, err)
	}
	return nil
}

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}

// Ensure Postgres implements Store.
var _ Store = (*Postgres)(nil)
