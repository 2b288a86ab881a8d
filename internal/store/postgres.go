package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresKV is a PostgreSQL-backed KV substrate: one row per collection
// in a key/value table.
type PostgresKV struct {
	pool *pgxpool.Pool
}

// NewPostgresKV creates a Postgres-backed KV.
func NewPostgresKV(pool *pgxpool.Pool) *PostgresKV {
	return &PostgresKV{pool: pool}
}

// EnsureSchema creates the collections table if it does not exist.
func (p *PostgresKV) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS collections (
			name    TEXT PRIMARY KEY,
			payload BYTEA NOT NULL
		)
	`

	_, err := p.pool.Exec(ctx, query)

	return err
}

func (p *PostgresKV) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT payload FROM collections WHERE name = $1`

	var payload []byte

	err := p.pool.QueryRow(ctx, query, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return payload, nil
}

func (p *PostgresKV) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO collections (name, payload)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload
	`

	_, err := p.pool.Exec(ctx, query, key, value)

	return err
}
