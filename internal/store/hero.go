package store

import (
	"context"

	"github.com/cardfolio/cardfolio-data/internal/config"
	"github.com/cardfolio/cardfolio-data/internal/provider"
)

// UpsertHero writes a directory record, and when detail is non-nil the
// detail scalar fields with it. Directory counts and flags overwrite on
// every poll; free-text profile fields and all detail fields COALESCE to
// the stored value when this poll did not supply them.
func (s *Store) UpsertHero(ctx context.Context, h provider.Hero, detail *provider.HeroDetail) error {
	var (
		currentRank  any
		fantasyScore any
		tacticPrefix any
		volume       any
		lastSale     any
	)
	if detail != nil {
		currentRank = detail.CurrentRank
		fantasyScore = detail.FantasyScore
		tacticPrefix = nilEmpty(detail.TacticImagePrefix)
		volume = detail.Volume.String()
		lastSale = detail.LastSale
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO `+config.HeroesTable+` (
			id, handle, name, description, location, player_address,
			profile_image_url_https, profile_banner_url, status,
			is_player, is_blue_verified, verified, possibly_sensitive,
			default_profile_image, has_banner, can_be_packed,
			followers_count, fast_followers_count, favourites_count,
			friends_count, listed_count, media_count, statuses_count,
			previous_rank, stars, previous_stars, star_gain,
			current_rank, fantasy_score, tactic_image_prefix, volume, last_sale
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,
			$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32
		)
		ON CONFLICT (id) DO UPDATE SET
			handle = EXCLUDED.handle,
			name = EXCLUDED.name,
			description = COALESCE(EXCLUDED.description, `+config.HeroesTable+`.description),
			location = COALESCE(EXCLUDED.location, `+config.HeroesTable+`.location),
			player_address = COALESCE(EXCLUDED.player_address, `+config.HeroesTable+`.player_address),
			profile_image_url_https = COALESCE(EXCLUDED.profile_image_url_https, `+config.HeroesTable+`.profile_image_url_https),
			profile_banner_url = COALESCE(EXCLUDED.profile_banner_url, `+config.HeroesTable+`.profile_banner_url),
			status = EXCLUDED.status,
			is_player = EXCLUDED.is_player,
			is_blue_verified = EXCLUDED.is_blue_verified,
			verified = EXCLUDED.verified,
			possibly_sensitive = EXCLUDED.possibly_sensitive,
			default_profile_image = EXCLUDED.default_profile_image,
			has_banner = EXCLUDED.has_banner,
			can_be_packed = EXCLUDED.can_be_packed,
			followers_count = EXCLUDED.followers_count,
			fast_followers_count = EXCLUDED.fast_followers_count,
			favourites_count = EXCLUDED.favourites_count,
			friends_count = EXCLUDED.friends_count,
			listed_count = EXCLUDED.listed_count,
			media_count = EXCLUDED.media_count,
			statuses_count = EXCLUDED.statuses_count,
			previous_rank = COALESCE(EXCLUDED.previous_rank, `+config.HeroesTable+`.previous_rank),
			stars = EXCLUDED.stars,
			previous_stars = EXCLUDED.previous_stars,
			star_gain = EXCLUDED.star_gain,
			current_rank = COALESCE(EXCLUDED.current_rank, `+config.HeroesTable+`.current_rank),
			fantasy_score = COALESCE(EXCLUDED.fantasy_score, `+config.HeroesTable+`.fantasy_score),
			tactic_image_prefix = COALESCE(EXCLUDED.tactic_image_prefix, `+config.HeroesTable+`.tactic_image_prefix),
			volume = COALESCE(EXCLUDED.volume, `+config.HeroesTable+`.volume),
			last_sale = COALESCE(EXCLUDED.last_sale, `+config.HeroesTable+`.last_sale),
			updated_at = NOW()`,
		h.ID, h.Handle, h.Name,
		nilEmpty(h.Description), nilEmpty(h.Location), nilEmpty(h.PlayerAddress),
		nilEmpty(h.ProfileImageURL), nilEmpty(h.ProfileBannerURL), h.Status,
		h.IsPlayer, h.IsBlueVerified, h.Verified, h.PossiblySensitive,
		h.DefaultProfileImage, h.HasBanner, h.CanBePacked,
		h.FollowersCount, h.FastFollowersCount, h.FavouritesCount,
		h.FriendsCount, h.ListedCount, h.MediaCount, h.StatusesCount,
		h.PreviousRank, h.Stars, h.PreviousStars, h.StarGain,
		currentRank, fantasyScore, tacticPrefix, volume, lastSale,
	)
	return err
}

// UpdateScoreSummary writes the analytics feed's summary metrics onto an
// existing hero row. Callers ensure the row exists first.
func (s *Store) UpdateScoreSummary(ctx context.Context, series provider.ScoreSeries) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE `+config.HeroesTable+` SET
			name = COALESCE(NULLIF($2, ''), name),
			current_score = $3,
			median_7_days = $4,
			median_14_days = $5,
			change_1_day = $6,
			change_7_days = $7,
			updated_at = NOW()
		WHERE id = $1`,
		series.HeroID, series.Name,
		series.CurrentScore, series.Median7Days, series.Median14Days,
		series.Change1Day, series.Change7Days,
	)
	return err
}
