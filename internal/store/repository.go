package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const storeColumns = `id, key, domain, scopes, token, extra, created_at, updated_at`

// Upsert creates or updates the store identified by key; reinstalling overwrites
// domain, token and scopes.
func (r *Repository) Upsert(ctx context.Context, key, domain, token, scopes string) (*Store, error) {
	const q = `
INSERT INTO stores (key, domain, token, scopes)
VALUES ($1, $2, $3, $4)
ON CONFLICT (key) DO UPDATE SET
  domain = EXCLUDED.domain,
  token = EXCLUDED.token,
  scopes = EXCLUDED.scopes,
  updated_at = NOW()
RETURNING ` + storeColumns
	s, err := scanStore(r.db.QueryRow(ctx, q, key, domain, token, scopes))
	if err != nil {
		return nil, fmt.Errorf("upsert store %s: %w", key, err)
	}
	return s, nil
}

func (r *Repository) FindByKey(ctx context.Context, key string) (*Store, error) {
	const q = `SELECT ` + storeColumns + ` FROM stores WHERE key = $1`
	return scanStore(r.db.QueryRow(ctx, q, key))
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*Store, error) {
	const q = `SELECT ` + storeColumns + ` FROM stores WHERE id = $1`
	return scanStore(r.db.QueryRow(ctx, q, id))
}

// SaveExtra persists the extra blob of s.
func (r *Repository) SaveExtra(ctx context.Context, s *Store) error {
	const q = `UPDATE stores SET extra = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, q, s.ID, s.Extra)
	if err != nil {
		return fmt.Errorf("save extra for store %d: %w", s.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanStore(row pgx.Row) (*Store, error) {
	s := &Store{}
	if err := row.Scan(
		&s.ID, &s.Key, &s.Domain, &s.Scopes, &s.Token, &s.Extra, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}
