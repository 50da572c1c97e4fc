package portal

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/cardfolio/cardfolio-data/internal/normalize"
	"github.com/cardfolio/cardfolio-data/internal/provider"
)

// Card and player ingestion are optional poll paths, disabled by default
// (POLL_CARDS / POLL_PLAYERS). The endpoints are kept current because the
// card provenance data backfills marketplace history when enabled.

const cardPageLimit = 100

// --------------------------------------------------------------------------
// Cards ($limit/$skip pagination, terminates on empty page)
// --------------------------------------------------------------------------

type rawCard struct {
	ID              string `json:"id"`
	Owner           string `json:"owner"`
	HeroID          string `json:"hero_id"`
	Rarity          any    `json:"rarity"`
	HeroRarityIndex string `json:"hero_rarity_index"`
	TokenID         string `json:"token_id"`
	Season          any    `json:"season"`
	TxHash          string `json:"tx_hash"`
	BlockNumber     any    `json:"blocknumber"`
	Picture         string `json:"picture"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
	Timestamp       string `json:"timestamp"`
}

type cardPage struct {
	Data []rawCard `json:"data"`
}

// EachCard iterates the full card collection, calling fn for each record.
// The card endpoint reports no total; iteration stops at the first empty
// page.
func (c *Client) EachCard(ctx context.Context, fn func(provider.Card) error) error {
	skip := 0
	for {
		params := url.Values{
			"$limit": {strconv.Itoa(cardPageLimit)},
			"$skip":  {strconv.Itoa(skip)},
		}

		var page cardPage
		if err := c.getJSON(ctx, "/card", params, &page); err != nil {
			return fmt.Errorf("fetch card page skip=%d: %w", skip, err)
		}
		if len(page.Data) == 0 {
			return nil
		}

		for _, raw := range page.Data {
			if err := fn(c.normalizeCard(raw)); err != nil {
				return err
			}
		}
		skip += cardPageLimit
	}
}

func (c *Client) normalizeCard(raw rawCard) provider.Card {
	rarity, _ := normalize.Count(raw.Rarity)
	season, _ := normalize.Count(raw.Season)
	blockNumber, _ := normalize.NullableCount(raw.BlockNumber)

	return provider.Card{
		ID:              raw.ID,
		Owner:           raw.Owner,
		HeroID:          raw.HeroID,
		Rarity:          rarity,
		HeroRarityIndex: raw.HeroRarityIndex,
		TokenID:         raw.TokenID,
		Season:          season,
		TxHash:          raw.TxHash,
		BlockNumber:     blockNumber,
		Picture:         raw.Picture,
		CreatedAt:       c.timestamp(raw.ID, "created_at", raw.CreatedAt),
		UpdatedAt:       c.timestamp(raw.ID, "updated_at", raw.UpdatedAt),
		Timestamp:       c.timestamp(raw.ID, "timestamp", raw.Timestamp),
	}
}

// timestamp parses an RFC 3339 card timestamp, degrading to nil with a
// warning on malformed input.
func (c *Client) timestamp(cardID, field, s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		c.logger.Warn("unparsable card timestamp",
			"card_id", cardID, "field", field, "value", s)
		return nil
	}
	return &t
}

// --------------------------------------------------------------------------
// Players (single call)
// --------------------------------------------------------------------------

type rawPlayer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Players fetches the full player list in one call.
func (c *Client) Players(ctx context.Context) ([]provider.Player, error) {
	var raw []rawPlayer
	if err := c.getJSON(ctx, "/players", nil, &raw); err != nil {
		return nil, fmt.Errorf("fetch players: %w", err)
	}

	players := make([]provider.Player, len(raw))
	for i, p := range raw {
		players[i] = provider.Player{ID: p.ID, Name: p.Name}
	}
	return players, nil
}
