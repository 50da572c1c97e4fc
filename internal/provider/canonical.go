// Package provider defines canonical data types that all upstream clients
// normalize into. These structs are the contract between provider clients
// and the reconciler — clients output these, the reconciler writes them to
// Postgres.
//
// Adding a new upstream means implementing functions that return these
// types. The reconciler and the schema never change.
package provider

import (
	"time"

	"github.com/shopspring/decimal"
)

// Hero statuses the directory is known to report. The upstream enum is
// open-ended; anything else is stored verbatim.
const (
	StatusHero        = "HERO"
	StatusPendingHero = "PENDING_HERO"
)

// Hero is the canonical directory-record shape written to the heroes table.
type Hero struct {
	ID     string
	Handle string
	Name   string
	Status string

	Description   string
	Location      string
	PlayerAddress string

	ProfileImageURL  string
	ProfileBannerURL string

	IsPlayer            bool
	IsBlueVerified      bool
	Verified            bool
	PossiblySensitive   bool
	DefaultProfileImage bool
	HasBanner           bool
	CanBePacked         bool

	FollowersCount     int64
	FastFollowersCount int64
	FavouritesCount    int64
	FriendsCount       int64
	ListedCount        int64
	MediaCount         int64
	StatusesCount      int64

	PreviousRank  *int64
	Stars         int64
	PreviousStars int64
	StarGain      int64
}

// HeroDetail carries the per-hero detail fields and rarity-keyed child
// collections, fetched only for heroes with status HERO.
type HeroDetail struct {
	CurrentRank       *int64
	FantasyScore      float64
	TacticImagePrefix string
	Volume            decimal.Decimal
	LastSale          int64

	FloorPrices []FloorPrice
	HighestBids []HighestBid
	CardSupply  []CardSupply
}

// FloorPrice is the current floor price for one rarity tier.
// Price is nil when the upstream reports no active listing.
type FloorPrice struct {
	Rarity string
	Price  *float64
}

// HighestBid is the current highest bid for one rarity tier.
type HighestBid struct {
	Rarity string
	Price  int64
}

// CardSupply is the circulating supply for one rarity tier.
type CardSupply struct {
	Rarity string
	Amount int64
	Burnt  int64
	Total  int64
}

// ScorePoint is one (date, score) sample of a hero's historical series.
type ScorePoint struct {
	Date  time.Time
	Score float64
}

// ScoreSeries is one hero's entry in the heroes-scores analytics feed:
// summary metrics plus the zipped historical series.
type ScoreSeries struct {
	HeroID string
	Name   string

	CurrentScore float64
	Median7Days  float64
	Median14Days float64
	Change1Day   float64
	Change7Days  float64

	Points []ScorePoint
}

// TournamentSeries is one hero's entry in the tournament-scores feed,
// an index-ordered list of scores.
type TournamentSeries struct {
	HeroID string
	Name   string
	Scores []float64
}

// Card is the canonical tradeable-card record (optional ingestion path).
type Card struct {
	ID              string
	Owner           string
	HeroID          string
	Rarity          int64
	HeroRarityIndex string
	TokenID         string
	Season          int64
	TxHash          string
	BlockNumber     *int64
	Picture         string
	CreatedAt       *time.Time
	UpdatedAt       *time.Time
	Timestamp       *time.Time
}

// Player is the minimal keyed player entity (optional ingestion path).
type Player struct {
	ID   string
	Name string
}
