package store

import (
	"context"

	"github.com/cardfolio/cardfolio-data/internal/provider"
)

// UpsertHeroScore writes one (hero, date) sample. Re-polling the same
// date overwrites the score.
func (s *Store) UpsertHeroScore(ctx context.Context, heroID string, point provider.ScorePoint) error {
	_, err := s.pool.Exec(ctx, "hero_score_upsert", heroID, point.Date, point.Score)
	return err
}

// UpsertTournamentScore writes one (hero, index) sample.
func (s *Store) UpsertTournamentScore(ctx context.Context, heroID string, index int, score float64) error {
	_, err := s.pool.Exec(ctx, "tournament_score_upsert", heroID, index, score)
	return err
}

// UpsertFloorPrice replaces the floor price for one rarity tier.
func (s *Store) UpsertFloorPrice(ctx context.Context, heroID string, fp provider.FloorPrice) error {
	_, err := s.pool.Exec(ctx, "floor_price_upsert", heroID, fp.Rarity, fp.Price)
	return err
}

// UpsertHighestBid replaces the highest bid for one rarity tier.
func (s *Store) UpsertHighestBid(ctx context.Context, heroID string, hb provider.HighestBid) error {
	_, err := s.pool.Exec(ctx, "highest_bid_upsert", heroID, hb.Rarity, hb.Price)
	return err
}

// UpsertCardSupply replaces the supply counters for one rarity tier.
func (s *Store) UpsertCardSupply(ctx context.Context, heroID string, cs provider.CardSupply) error {
	_, err := s.pool.Exec(ctx, "card_supply_upsert", heroID, cs.Rarity, cs.Amount, cs.Burnt, cs.Total)
	return err
}
