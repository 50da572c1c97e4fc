package portal

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/cardfolio/cardfolio-data/internal/normalize"
	"github.com/cardfolio/cardfolio-data/internal/provider"
)

// --------------------------------------------------------------------------
// Hero directory (offset-paginated)
// --------------------------------------------------------------------------

// rawHero is the directory-record shape as the portal actually sends it.
// Count fields arrive as numbers or as strings with thousands separators
// depending on the record, so anything dirty is typed `any` and coerced
// through the normalize package.
type rawHero struct {
	ID                   string `json:"id"`
	Handle               string `json:"handle"`
	Name                 string `json:"name"`
	Status               string `json:"status"`
	Description          string `json:"description"`
	Location             string `json:"location"`
	PlayerAddress        string `json:"player_address"`
	ProfileImageURLHTTPS string `json:"profile_image_url_https"`
	ProfileBannerURL     string `json:"profile_banner_url"`

	IsPlayer            any `json:"is_player"`
	IsBlueVerified      any `json:"is_blue_verified"`
	Verified            any `json:"verified"`
	PossiblySensitive   any `json:"possibly_sensitive"`
	DefaultProfileImage any `json:"default_profile_image"`
	HasBanner           any `json:"has_banner"`
	CanBePacked         any `json:"can_be_packed"`

	FollowersCount     any `json:"followers_count"`
	FastFollowersCount any `json:"fast_followers_count"`
	FavouritesCount    any `json:"favourites_count"`
	FriendsCount       any `json:"friends_count"`
	ListedCount        any `json:"listed_count"`
	MediaCount         any `json:"media_count"`
	StatusesCount      any `json:"statuses_count"`

	PreviousRank  any `json:"previous_rank"`
	Stars         any `json:"stars"`
	PreviousStars any `json:"previous_stars"`
	StarGain      any `json:"star_gain"`
}

// heroPage is the directory response wrapper.
type heroPage struct {
	Data  []rawHero `json:"data"`
	Total int       `json:"total"`
}

// HeroPage fetches one directory page starting at the given offset and
// returns the normalized records plus the upstream total.
func (c *Client) HeroPage(ctx context.Context, skip int) ([]provider.Hero, int, error) {
	params := url.Values{"$skip": {strconv.Itoa(skip)}}

	var page heroPage
	if err := c.getJSON(ctx, "/hero", params, &page); err != nil {
		return nil, 0, fmt.Errorf("fetch hero page skip=%d: %w", skip, err)
	}

	heroes := make([]provider.Hero, len(page.Data))
	for i, raw := range page.Data {
		heroes[i] = c.normalizeHero(raw)
	}
	return heroes, page.Total, nil
}

// EachHero iterates the full hero directory, calling fn for each record.
// The first request establishes the total; the offset advances by the
// number of records actually returned (not the requested page size), so a
// short page never skips records. Terminates once skip >= total or a page
// comes back empty.
func (c *Client) EachHero(ctx context.Context, fn func(provider.Hero) error) error {
	skip := 0
	for {
		heroes, total, err := c.HeroPage(ctx, skip)
		if err != nil {
			return err
		}
		for _, h := range heroes {
			if err := fn(h); err != nil {
				return err
			}
		}
		if len(heroes) == 0 {
			return nil
		}
		skip += len(heroes)
		if skip >= total {
			return nil
		}
	}
}

func (c *Client) normalizeHero(raw rawHero) provider.Hero {
	h := provider.Hero{
		ID:               raw.ID,
		Handle:           raw.Handle,
		Name:             raw.Name,
		Status:           raw.Status,
		Description:      raw.Description,
		Location:         raw.Location,
		PlayerAddress:    raw.PlayerAddress,
		ProfileImageURL:  raw.ProfileImageURLHTTPS,
		ProfileBannerURL: raw.ProfileBannerURL,

		IsPlayer:            normalize.Flag(raw.IsPlayer),
		IsBlueVerified:      normalize.Flag(raw.IsBlueVerified),
		Verified:            normalize.Flag(raw.Verified),
		PossiblySensitive:   normalize.Flag(raw.PossiblySensitive),
		DefaultProfileImage: normalize.Flag(raw.DefaultProfileImage),
		HasBanner:           normalize.Flag(raw.HasBanner),
		CanBePacked:         normalize.Flag(raw.CanBePacked),

		FollowersCount:     c.count(raw.ID, "followers_count", raw.FollowersCount),
		FastFollowersCount: c.count(raw.ID, "fast_followers_count", raw.FastFollowersCount),
		FavouritesCount:    c.count(raw.ID, "favourites_count", raw.FavouritesCount),
		FriendsCount:       c.count(raw.ID, "friends_count", raw.FriendsCount),
		ListedCount:        c.count(raw.ID, "listed_count", raw.ListedCount),
		MediaCount:         c.count(raw.ID, "media_count", raw.MediaCount),
		StatusesCount:      c.count(raw.ID, "statuses_count", raw.StatusesCount),

		Stars:         c.count(raw.ID, "stars", raw.Stars),
		PreviousStars: c.count(raw.ID, "previous_stars", raw.PreviousStars),
		StarGain:      c.count(raw.ID, "star_gain", raw.StarGain),
	}

	rank, ok := normalize.NullableCount(raw.PreviousRank)
	if !ok {
		c.logger.Warn("unparsable rank field",
			"hero_id", raw.ID, "field", "previous_rank", "value", raw.PreviousRank)
	}
	h.PreviousRank = rank

	return h
}

// count coerces an integer-like field, logging a warning when a present
// value could not be parsed.
func (c *Client) count(heroID, field string, v any) int64 {
	n, ok := normalize.Count(v)
	if !ok && v != nil {
		c.logger.Warn("unparsable count field", "hero_id", heroID, "field", field, "value", v)
	}
	return n
}

// --------------------------------------------------------------------------
// Hero detail (single record + rarity children)
// --------------------------------------------------------------------------

type rawRarityEntry struct {
	Rarity any `json:"rarity"`
	Price  any `json:"price"`
	Amount any `json:"amount"`
	Burnt  any `json:"burnt"`
	Total  any `json:"total"`
}

type rawHeroDetail struct {
	CurrentRank       any    `json:"current_rank"`
	FantasyScore      any    `json:"fantasy_score"`
	TacticImagePrefix string `json:"tactic_image_prefix"`
	Volume            any    `json:"volume"`
	LastSale          any    `json:"last_sale"`

	FloorPrices []rawRarityEntry `json:"floor_prices"`
	HighestBids []rawRarityEntry `json:"highest_bids"`
	CardSupply  []rawRarityEntry `json:"card_supply"`
}

// HeroDetail fetches the detail record for one hero. Callers should only
// request detail for heroes with status HERO; the endpoint is the
// rate-limit hot spot (one call per hero per cycle).
func (c *Client) HeroDetail(ctx context.Context, heroID string) (*provider.HeroDetail, error) {
	var raw rawHeroDetail
	if err := c.getJSON(ctx, "/hero/"+heroID, nil, &raw); err != nil {
		return nil, fmt.Errorf("fetch hero detail %s: %w", heroID, err)
	}

	volume, ok := normalize.Decimal(raw.Volume)
	if !ok && raw.Volume != nil {
		c.logger.Warn("unparsable volume", "hero_id", heroID, "value", raw.Volume)
	}
	fantasyScore, _ := normalize.Float(raw.FantasyScore)
	lastSale, _ := normalize.Count(raw.LastSale)
	currentRank, _ := normalize.NullableCount(raw.CurrentRank)

	detail := &provider.HeroDetail{
		CurrentRank:       currentRank,
		FantasyScore:      fantasyScore,
		TacticImagePrefix: raw.TacticImagePrefix,
		Volume:            volume,
		LastSale:          lastSale,
	}

	for _, e := range raw.FloorPrices {
		fp := provider.FloorPrice{Rarity: rarityKey(e.Rarity)}
		if e.Price != nil {
			if p, ok := normalize.Float(e.Price); ok {
				fp.Price = &p
			} else {
				c.logger.Warn("unparsable floor price",
					"hero_id", heroID, "rarity", fp.Rarity, "value", e.Price)
			}
		}
		detail.FloorPrices = append(detail.FloorPrices, fp)
	}

	for _, e := range raw.HighestBids {
		price, ok := normalize.Count(e.Price)
		if !ok && e.Price != nil {
			c.logger.Warn("unparsable bid price",
				"hero_id", heroID, "rarity", rarityKey(e.Rarity), "value", e.Price)
		}
		detail.HighestBids = append(detail.HighestBids, provider.HighestBid{
			Rarity: rarityKey(e.Rarity),
			Price:  price,
		})
	}

	for _, e := range raw.CardSupply {
		amount, _ := normalize.Count(e.Amount)
		burnt, _ := normalize.Count(e.Burnt)
		total, _ := normalize.Count(e.Total)
		detail.CardSupply = append(detail.CardSupply, provider.CardSupply{
			Rarity: rarityKey(e.Rarity),
			Amount: amount,
			Burnt:  burnt,
			Total:  total,
		})
	}

	return detail, nil
}

// rarityKey renders a rarity identifier as its storage key. The portal
// sends rarities as strings on some endpoints and numbers on others.
func rarityKey(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatInt(int64(val), 10)
	default:
		return ""
	}
}
