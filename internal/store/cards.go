package store

import (
	"context"

	"github.com/cardfolio/cardfolio-data/internal/config"
	"github.com/cardfolio/cardfolio-data/internal/provider"
)

// UpsertCard writes a card provenance record (optional poll path).
// Cards are keyed by external card id, independent of the hero cascade.
func (s *Store) UpsertCard(ctx context.Context, c provider.Card) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO `+config.CardsTable+` (
			id, owner, hero_id, rarity, hero_rarity_index, token_id,
			season, tx_hash, blocknumber, picture,
			created_at, updated_at, timestamp
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO UPDATE SET
			owner = EXCLUDED.owner,
			hero_id = EXCLUDED.hero_id,
			rarity = EXCLUDED.rarity,
			hero_rarity_index = EXCLUDED.hero_rarity_index,
			token_id = EXCLUDED.token_id,
			season = EXCLUDED.season,
			tx_hash = EXCLUDED.tx_hash,
			blocknumber = COALESCE(EXCLUDED.blocknumber, `+config.CardsTable+`.blocknumber),
			picture = COALESCE(EXCLUDED.picture, `+config.CardsTable+`.picture),
			created_at = COALESCE(EXCLUDED.created_at, `+config.CardsTable+`.created_at),
			updated_at = COALESCE(EXCLUDED.updated_at, `+config.CardsTable+`.updated_at),
			timestamp = COALESCE(EXCLUDED.timestamp, `+config.CardsTable+`.timestamp)`,
		c.ID, c.Owner, c.HeroID, c.Rarity, c.HeroRarityIndex, c.TokenID,
		c.Season, c.TxHash, c.BlockNumber, nilEmpty(c.Picture),
		c.CreatedAt, c.UpdatedAt, c.Timestamp,
	)
	return err
}
