// Package reconcile applies normalized provider batches to storage with
// at-least-once-safe upsert semantics. Per-record failures are logged and
// counted, never aborting the rest of a batch; re-applying the same batch
// produces identical stored state.
package reconcile

import (
	"context"
	"log/slog"

	"github.com/cardfolio/cardfolio-data/internal/provider"
)

// Store is the storage surface the reconciler drives. Implemented by
// internal/store against Postgres and by an in-memory fake in tests.
type Store interface {
	UpsertHero(ctx context.Context, h provider.Hero, detail *provider.HeroDetail) error
	EnsureHero(ctx context.Context, id, name string) error
	UpdateScoreSummary(ctx context.Context, series provider.ScoreSeries) error
	UpsertHeroScore(ctx context.Context, heroID string, point provider.ScorePoint) error
	UpsertTournamentScore(ctx context.Context, heroID string, index int, score float64) error
	UpsertFloorPrice(ctx context.Context, heroID string, fp provider.FloorPrice) error
	UpsertHighestBid(ctx context.Context, heroID string, hb provider.HighestBid) error
	UpsertCardSupply(ctx context.Context, heroID string, cs provider.CardSupply) error
	UpsertCard(ctx context.Context, c provider.Card) error
	UpsertPlayer(ctx context.Context, p provider.Player) error
}

// Reconciler writes provider batches to a Store.
type Reconciler struct {
	store  Store
	logger *slog.Logger
}

// New creates a reconciler.
func New(store Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: store, logger: logger}
}

// HeroBatch pairs a directory record with its optional detail record.
type HeroBatch struct {
	Hero   provider.Hero
	Detail *provider.HeroDetail
}

// Heroes upserts a directory batch: the hero row, then each rarity-keyed
// child present in the detail record. Absent rarities are left as-is —
// nothing is ever deleted. A failure on one hero or one child is recorded
// and the batch continues.
func (r *Reconciler) Heroes(ctx context.Context, batch []HeroBatch, result *Result) {
	for _, b := range batch {
		if err := r.store.UpsertHero(ctx, b.Hero, b.Detail); err != nil {
			result.AddErrorf("upsert hero %s: %v", b.Hero.ID, err)
			r.logger.Error("hero upsert failed", "hero_id", b.Hero.ID, "error", err)
			continue
		}
		result.HeroesUpserted++

		if b.Detail == nil {
			continue
		}
		for _, fp := range b.Detail.FloorPrices {
			if err := r.store.UpsertFloorPrice(ctx, b.Hero.ID, fp); err != nil {
				result.AddErrorf("upsert floor price %s/%s: %v", b.Hero.ID, fp.Rarity, err)
				r.logger.Error("floor price upsert failed",
					"hero_id", b.Hero.ID, "rarity", fp.Rarity, "error", err)
				continue
			}
			result.PricesUpserted++
		}
		for _, hb := range b.Detail.HighestBids {
			if err := r.store.UpsertHighestBid(ctx, b.Hero.ID, hb); err != nil {
				result.AddErrorf("upsert highest bid %s/%s: %v", b.Hero.ID, hb.Rarity, err)
				r.logger.Error("highest bid upsert failed",
					"hero_id", b.Hero.ID, "rarity", hb.Rarity, "error", err)
				continue
			}
			result.PricesUpserted++
		}
		for _, cs := range b.Detail.CardSupply {
			if err := r.store.UpsertCardSupply(ctx, b.Hero.ID, cs); err != nil {
				result.AddErrorf("upsert card supply %s/%s: %v", b.Hero.ID, cs.Rarity, err)
				r.logger.Error("card supply upsert failed",
					"hero_id", b.Hero.ID, "rarity", cs.Rarity, "error", err)
				continue
			}
			result.SuppliesUpserted++
		}
	}
}

// Scores upserts hero score series. A series referencing a hero the
// directory has not reported yet gets a minimal stub row first, so a feed
// ordering race never fails the batch. Every point is independently
// upserted on (hero, date).
func (r *Reconciler) Scores(ctx context.Context, series []provider.ScoreSeries, result *Result) {
	for _, s := range series {
		if s.HeroID == "" {
			result.AddError("score series without hero_id dropped")
			continue
		}
		if err := r.store.EnsureHero(ctx, s.HeroID, s.Name); err != nil {
			result.AddErrorf("ensure hero %s: %v", s.HeroID, err)
			r.logger.Error("hero stub failed", "hero_id", s.HeroID, "error", err)
			continue
		}
		if err := r.store.UpdateScoreSummary(ctx, s); err != nil {
			result.AddErrorf("score summary %s: %v", s.HeroID, err)
			r.logger.Error("score summary update failed", "hero_id", s.HeroID, "error", err)
		}
		for _, p := range s.Points {
			if err := r.store.UpsertHeroScore(ctx, s.HeroID, p); err != nil {
				result.AddErrorf("upsert score %s@%s: %v",
					s.HeroID, p.Date.Format("2006-01-02"), err)
				r.logger.Error("score upsert failed",
					"hero_id", s.HeroID, "date", p.Date, "error", err)
				continue
			}
			result.ScoresUpserted++
		}
	}
}

// Tournaments upserts tournament score series on (hero, index), with the
// same stub-on-unseen-hero behavior as Scores.
func (r *Reconciler) Tournaments(ctx context.Context, series []provider.TournamentSeries, result *Result) {
	for _, s := range series {
		if s.HeroID == "" {
			result.AddError("tournament series without hero_id dropped")
			continue
		}
		if err := r.store.EnsureHero(ctx, s.HeroID, s.Name); err != nil {
			result.AddErrorf("ensure hero %s: %v", s.HeroID, err)
			r.logger.Error("hero stub failed", "hero_id", s.HeroID, "error", err)
			continue
		}
		for i, score := range s.Scores {
			if err := r.store.UpsertTournamentScore(ctx, s.HeroID, i, score); err != nil {
				result.AddErrorf("upsert tournament score %s[%d]: %v", s.HeroID, i, err)
				r.logger.Error("tournament score upsert failed",
					"hero_id", s.HeroID, "index", i, "error", err)
				continue
			}
			result.TournamentScoresUpserted++
		}
	}
}

// Cards upserts a card batch (optional poll path).
func (r *Reconciler) Cards(ctx context.Context, cards []provider.Card, result *Result) {
	for _, c := range cards {
		if err := r.store.UpsertCard(ctx, c); err != nil {
			result.AddErrorf("upsert card %s: %v", c.ID, err)
			r.logger.Error("card upsert failed", "card_id", c.ID, "error", err)
			continue
		}
		result.CardsUpserted++
	}
}

// Players upserts a player batch (optional poll path).
func (r *Reconciler) Players(ctx context.Context, players []provider.Player, result *Result) {
	for _, p := range players {
		if err := r.store.UpsertPlayer(ctx, p); err != nil {
			result.AddErrorf("upsert player %s: %v", p.ID, err)
			r.logger.Error("player upsert failed", "player_id", p.ID, "error", err)
			continue
		}
		result.PlayersUpserted++
	}
}
