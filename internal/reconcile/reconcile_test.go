package reconcile_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardfolio/cardfolio-data/internal/provider"
	"github.com/cardfolio/cardfolio-data/internal/reconcile"
)

// memStore is an in-memory Store keyed the same way the Postgres schema
// keys its tables. failOn makes a single upsert target fail, to exercise
// per-record isolation.
type memStore struct {
	heroes           map[string]provider.Hero
	summaries        map[string]provider.ScoreSeries
	heroScores       map[string]float64 // "heroID|date"
	tournamentScores map[string]float64 // "heroID|index"
	floorPrices      map[string]provider.FloorPrice
	highestBids      map[string]provider.HighestBid
	cardSupplies     map[string]provider.CardSupply
	cards            map[string]provider.Card
	players          map[string]provider.Player

	failOn string
}

func newMemStore() *memStore {
	return &memStore{
		heroes:           map[string]provider.Hero{},
		summaries:        map[string]provider.ScoreSeries{},
		heroScores:       map[string]float64{},
		tournamentScores: map[string]float64{},
		floorPrices:      map[string]provider.FloorPrice{},
		highestBids:      map[string]provider.HighestBid{},
		cardSupplies:     map[string]provider.CardSupply{},
		cards:            map[string]provider.Card{},
		players:          map[string]provider.Player{},
	}
}

func (m *memStore) fail(key string) error {
	if m.failOn != "" && m.failOn == key {
		return errors.New("store unavailable")
	}
	return nil
}

func (m *memStore) UpsertHero(_ context.Context, h provider.Hero, _ *provider.HeroDetail) error {
	if err := m.fail("hero:" + h.ID); err != nil {
		return err
	}
	m.heroes[h.ID] = h
	return nil
}

func (m *memStore) EnsureHero(_ context.Context, id, name string) error {
	if err := m.fail("ensure:" + id); err != nil {
		return err
	}
	if _, ok := m.heroes[id]; !ok {
		m.heroes[id] = provider.Hero{ID: id, Name: name, Status: provider.StatusHero}
	}
	return nil
}

func (m *memStore) UpdateScoreSummary(_ context.Context, s provider.ScoreSeries) error {
	m.summaries[s.HeroID] = s
	return nil
}

func (m *memStore) UpsertHeroScore(_ context.Context, heroID string, p provider.ScorePoint) error {
	key := heroID + "|" + p.Date.Format("2006-01-02")
	if err := m.fail("score:" + key); err != nil {
		return err
	}
	m.heroScores[key] = p.Score
	return nil
}

func (m *memStore) UpsertTournamentScore(_ context.Context, heroID string, index int, score float64) error {
	m.tournamentScores[fmt.Sprintf("%s|%d", heroID, index)] = score
	return nil
}

func (m *memStore) UpsertFloorPrice(_ context.Context, heroID string, fp provider.FloorPrice) error {
	if err := m.fail("floor:" + heroID + "|" + fp.Rarity); err != nil {
		return err
	}
	m.floorPrices[heroID+"|"+fp.Rarity] = fp
	return nil
}

func (m *memStore) UpsertHighestBid(_ context.Context, heroID string, hb provider.HighestBid) error {
	m.highestBids[heroID+"|"+hb.Rarity] = hb
	return nil
}

func (m *memStore) UpsertCardSupply(_ context.Context, heroID string, cs provider.CardSupply) error {
	m.cardSupplies[heroID+"|"+cs.Rarity] = cs
	return nil
}

func (m *memStore) UpsertCard(_ context.Context, c provider.Card) error {
	m.cards[c.ID] = c
	return nil
}

func (m *memStore) UpsertPlayer(_ context.Context, p provider.Player) error {
	m.players[p.ID] = p
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
}

func price(v float64) *float64 { return &v }

func sampleBatch() []reconcile.HeroBatch {
	return []reconcile.HeroBatch{
		{
			Hero: provider.Hero{ID: "h1", Handle: "alpha", Name: "Alpha", Status: provider.StatusHero},
			Detail: &provider.HeroDetail{
				Volume: decimal.NewFromInt(1500),
				FloorPrices: []provider.FloorPrice{
					{Rarity: "1", Price: price(0.42)},
					{Rarity: "2", Price: nil},
				},
				HighestBids: []provider.HighestBid{{Rarity: "1", Price: 9}},
				CardSupply:  []provider.CardSupply{{Rarity: "1", Amount: 10, Burnt: 2, Total: 12}},
			},
		},
		{
			Hero: provider.Hero{ID: "h2", Handle: "beta", Name: "Beta", Status: provider.StatusPendingHero},
		},
	}
}

func TestHeroesUpsertsDirectoryAndChildren(t *testing.T) {
	store := newMemStore()
	r := reconcile.New(store, discard())

	var result reconcile.Result
	r.Heroes(context.Background(), sampleBatch(), &result)

	if result.HeroesUpserted != 2 {
		t.Fatalf("heroes upserted = %d, want 2", result.HeroesUpserted)
	}
	if result.PricesUpserted != 3 {
		t.Errorf("prices upserted = %d, want 3", result.PricesUpserted)
	}
	if result.SuppliesUpserted != 1 {
		t.Errorf("supplies upserted = %d, want 1", result.SuppliesUpserted)
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if fp := store.floorPrices["h1|2"]; fp.Price != nil {
		t.Errorf("nil floor price should stay nil, got %v", *fp.Price)
	}
}

func TestHeroesIsIdempotent(t *testing.T) {
	store := newMemStore()
	r := reconcile.New(store, discard())

	var first, second reconcile.Result
	r.Heroes(context.Background(), sampleBatch(), &first)
	r.Heroes(context.Background(), sampleBatch(), &second)

	if len(store.heroes) != 2 {
		t.Errorf("hero rows = %d, want 2 after double apply", len(store.heroes))
	}
	if len(store.floorPrices) != 2 || len(store.highestBids) != 1 || len(store.cardSupplies) != 1 {
		t.Errorf("child rows grew on re-apply: floors=%d bids=%d supplies=%d",
			len(store.floorPrices), len(store.highestBids), len(store.cardSupplies))
	}
	if second.HeroesUpserted != first.HeroesUpserted {
		t.Errorf("second pass upserted %d heroes, first %d", second.HeroesUpserted, first.HeroesUpserted)
	}
}

func TestHeroesOneFailureDoesNotAbortBatch(t *testing.T) {
	store := newMemStore()
	store.failOn = "hero:h1"
	r := reconcile.New(store, discard())

	var result reconcile.Result
	r.Heroes(context.Background(), sampleBatch(), &result)

	if result.HeroesUpserted != 1 {
		t.Errorf("heroes upserted = %d, want 1", result.HeroesUpserted)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v, want exactly one", result.Errors)
	}
	if _, ok := store.heroes["h2"]; !ok {
		t.Error("h2 should be upserted despite h1 failing")
	}
	// Children of the failed hero are skipped, not attempted against a
	// missing parent row.
	if len(store.floorPrices) != 0 {
		t.Errorf("children of failed hero were written: %v", store.floorPrices)
	}
}

func TestHeroesChildFailureKeepsSiblings(t *testing.T) {
	store := newMemStore()
	store.failOn = "floor:h1|1"
	r := reconcile.New(store, discard())

	var result reconcile.Result
	r.Heroes(context.Background(), sampleBatch(), &result)

	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v, want exactly one", result.Errors)
	}
	if _, ok := store.floorPrices["h1|2"]; !ok {
		t.Error("sibling floor price should survive one rarity failing")
	}
	if len(store.highestBids) != 1 || len(store.cardSupplies) != 1 {
		t.Error("later child kinds should still be written")
	}
}

func sampleScores() []provider.ScoreSeries {
	day := func(s string) time.Time {
		d, _ := time.Parse("2006-01-02", s)
		return d
	}
	return []provider.ScoreSeries{
		{
			HeroID:       "h1",
			Name:         "Alpha",
			CurrentScore: 41.5,
			Points: []provider.ScorePoint{
				{Date: day("2026-08-26"), Score: 40},
				{Date: day("2026-08-27"), Score: 41.5},
			},
		},
		{
			HeroID: "new-hero",
			Name:   "Newcomer",
			Points: []provider.ScorePoint{{Date: day("2026-08-27"), Score: 7}},
		},
	}
}

func TestScoresCreatesStubForUnseenHero(t *testing.T) {
	store := newMemStore()
	r := reconcile.New(store, discard())

	var result reconcile.Result
	r.Scores(context.Background(), sampleScores(), &result)

	if result.ScoresUpserted != 3 {
		t.Errorf("scores upserted = %d, want 3", result.ScoresUpserted)
	}
	stub, ok := store.heroes["new-hero"]
	if !ok {
		t.Fatal("expected stub row for unseen hero")
	}
	if stub.Name != "Newcomer" {
		t.Errorf("stub name = %q, want Newcomer", stub.Name)
	}
	if _, ok := store.summaries["h1"]; !ok {
		t.Error("score summary not written for h1")
	}
}

func TestScoresReapplySamePointsOverwrites(t *testing.T) {
	store := newMemStore()
	r := reconcile.New(store, discard())

	var result reconcile.Result
	r.Scores(context.Background(), sampleScores(), &result)
	r.Scores(context.Background(), sampleScores(), &result)

	if len(store.heroScores) != 3 {
		t.Errorf("score rows = %d, want 3 after double apply", len(store.heroScores))
	}
}

func TestScoresDropsSeriesWithoutHeroID(t *testing.T) {
	store := newMemStore()
	r := reconcile.New(store, discard())

	series := []provider.ScoreSeries{
		{HeroID: "", Name: "ghost"},
		{HeroID: "h1", Name: "Alpha"},
	}
	var result reconcile.Result
	r.Scores(context.Background(), series, &result)

	if len(result.Errors) != 1 {
		t.Errorf("errors = %v, want one for missing hero_id", result.Errors)
	}
	if _, ok := store.heroes["h1"]; !ok {
		t.Error("valid series should still apply")
	}
}

func TestScoresPointFailureKeepsLaterPoints(t *testing.T) {
	store := newMemStore()
	store.failOn = "score:h1|2026-08-26"
	r := reconcile.New(store, discard())

	var result reconcile.Result
	r.Scores(context.Background(), sampleScores(), &result)

	if result.ScoresUpserted != 2 {
		t.Errorf("scores upserted = %d, want 2", result.ScoresUpserted)
	}
	if _, ok := store.heroScores["h1|2026-08-27"]; !ok {
		t.Error("later point should survive an earlier one failing")
	}
}

func TestTournamentsUpsertsByIndex(t *testing.T) {
	store := newMemStore()
	r := reconcile.New(store, discard())

	series := []provider.TournamentSeries{
		{HeroID: "h1", Name: "Alpha", Scores: []float64{12, 7.5, 0}},
	}
	var result reconcile.Result
	r.Tournaments(context.Background(), series, &result)
	r.Tournaments(context.Background(), series, &result)

	if len(store.tournamentScores) != 3 {
		t.Errorf("tournament rows = %d, want 3 after double apply", len(store.tournamentScores))
	}
	if got := store.tournamentScores["h1|1"]; got != 7.5 {
		t.Errorf("score at index 1 = %v, want 7.5", got)
	}
	if result.TournamentScoresUpserted != 6 {
		t.Errorf("tournament upserts counted = %d, want 6", result.TournamentScoresUpserted)
	}
}

func TestResultSummaryAndMerge(t *testing.T) {
	a := reconcile.Result{HeroesUpserted: 2, ScoresUpserted: 5}
	b := reconcile.Result{HeroesUpserted: 1, Errors: []string{"boom"}}
	a.Add(b)

	if a.HeroesUpserted != 3 || a.ScoresUpserted != 5 || len(a.Errors) != 1 {
		t.Fatalf("merge produced %+v", a)
	}
	sum := a.Summary()
	for _, want := range []string{"heroes=3", "scores=5", "errors=1"} {
		if !strings.Contains(sum, want) {
			t.Errorf("summary %q missing %q", sum, want)
		}
	}
}
