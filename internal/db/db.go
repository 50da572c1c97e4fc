// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cardfolio/cardfolio-data/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers the statements the poller issues on
// every cycle. Prepared statements eliminate parse overhead on the hot
// upsert paths; the wide hero upsert lives inline in internal/store.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Reconciliation: minimal stub insert for heroes referenced by a
		// time-series feed before the directory has reported them
		"hero_stub": "INSERT INTO " + config.HeroesTable + " (id, name) VALUES ($1, $2) " +
			"ON CONFLICT (id) DO NOTHING",

		// Time-series upserts — issued once per point, every cycle
		"hero_score_upsert": "INSERT INTO " + config.HeroScoresTable + " (hero_id, date, score) " +
			"VALUES ($1, $2, $3) " +
			"ON CONFLICT (hero_id, date) DO UPDATE SET score = EXCLUDED.score",
		"tournament_score_upsert": "INSERT INTO " + config.TournamentScoresTable + " (hero_id, index, score) " +
			"VALUES ($1, $2, $3) " +
			"ON CONFLICT (hero_id, index) DO UPDATE SET score = EXCLUDED.score",

		// Rarity-keyed children
		"floor_price_upsert": "INSERT INTO " + config.FloorPricesTable + " (hero_id, rarity, price) " +
			"VALUES ($1, $2, $3) " +
			"ON CONFLICT (hero_id, rarity) DO UPDATE SET price = EXCLUDED.price",
		"highest_bid_upsert": "INSERT INTO " + config.HighestBidsTable + " (hero_id, rarity, price) " +
			"VALUES ($1, $2, $3) " +
			"ON CONFLICT (hero_id, rarity) DO UPDATE SET price = EXCLUDED.price",
		"card_supply_upsert": "INSERT INTO " + config.CardSuppliesTable + " (hero_id, rarity, amount, burnt, total) " +
			"VALUES ($1, $2, $3, $4, $5) " +
			"ON CONFLICT (hero_id, rarity) DO UPDATE SET " +
			"amount = EXCLUDED.amount, burnt = EXCLUDED.burnt, total = EXCLUDED.total",

		// Players (optional poll path)
		"player_upsert": "INSERT INTO " + config.PlayersTable + " (id, name) VALUES ($1, $2) " +
			"ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
