package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agent8/licensing/internal/model"
)

// PostgresStore persists entitlements in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore with a connection pool and
// ensures the entitlements table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS entitlements (
			email      TEXT PRIMARY KEY,
			entitled   BOOLEAN NOT NULL DEFAULT TRUE,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create entitlements table: %w", err)
	}
	return nil
}

// Grant upserts the entitlement row for the email.
func (s *PostgresStore) Grant(ctx context.Context, email string) error {
	email = model.NormalizeEmail(email)
	if email == "" {
		return nil
	}

	query := `
		INSERT INTO entitlements (email, entitled, updated_at)
		VALUES ($1, TRUE, now())
		ON CONFLICT (email) DO UPDATE
		SET entitled = TRUE, updated_at = now()
	`

	if _, err := s.pool.Exec(ctx, query, email); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// IsEntitled reports whether the email has an entitled row. A missing
// row is a valid negative result, not an error.
func (s *PostgresStore) IsEntitled(ctx context.Context, email string) (bool, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return false, nil
	}

	query := `
		SELECT entitled
		FROM entitlements
		WHERE email = $1
	`

	var entitled bool
	err := s.pool.QueryRow(ctx, query, email).Scan(&entitled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read entitlement: %w", err)
	}

	return entitled, nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
