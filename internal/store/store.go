// Package store persists canonical provider records with single-row
// idempotent upserts (INSERT ... ON CONFLICT DO UPDATE). Partial updates
// COALESCE missing fields to their stored values so a poll that omits a
// field never nulls it out.
package store

import (
	"context"

	"github.com/cardfolio/cardfolio-data/internal/db"
	"github.com/cardfolio/cardfolio-data/internal/provider"
)

// Store writes canonical records to Postgres.
type Store struct {
	pool *db.Pool
}

// New creates a store over the given pool.
func New(pool *db.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureHero inserts a minimal hero stub (id + best-known name) when a
// time-series feed references a hero the directory has not reported yet.
// Existing rows are never touched.
func (s *Store) EnsureHero(ctx context.Context, id, name string) error {
	_, err := s.pool.Exec(ctx, "hero_stub", id, name)
	return err
}

// UpsertPlayer writes a player record (optional poll path).
func (s *Store) UpsertPlayer(ctx context.Context, p provider.Player) error {
	_, err := s.pool.Exec(ctx, "player_upsert", p.ID, p.Name)
	return err
}

// nilEmpty returns nil for empty strings (maps to SQL NULL so COALESCE
// keeps the stored value).
func nilEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
