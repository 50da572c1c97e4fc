// Package config provides centralized configuration loaded from environment
// variables. Shared by every poller subcommand.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Table names — single source of truth, matches schema.sql
// --------------------------------------------------------------------------

const (
	HeroesTable           = "heroes"
	HeroScoresTable       = "hero_scores"
	TournamentScoresTable = "tournament_scores"
	FloorPricesTable      = "floor_prices"
	HighestBidsTable      = "highest_bids"
	CardSuppliesTable     = "card_supplies"
	CardsTable            = "cards"
	PlayersTable          = "players"
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// Portal API (hero directory, detail, cards, players)
	PortalBaseURL string
	PortalAPIKey  string
	PortalRPM     int // requests per minute against the portal

	// Analytics API (bearer-protected scores feeds)
	AnalyticsBaseURL string
	AnalyticsToken   string // seed token; the credential manager owns it afterwards
	AnalyticsRPM     int

	// Credential refresh helper (interactive browser login, external binary)
	RefreshCommand    string
	RefreshTimeout    time.Duration
	RefreshScreenshot string

	// Poll loop
	PollInterval time.Duration
	PollCards    bool
	PollPlayers  bool

	// Operational HTTP listener; empty disables it
	StatusAddr       string
	CORSAllowOrigins []string

	Environment string // development, staging, production
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		PortalBaseURL: envOr("PORTAL_BASE_URL", "https://portal.fantasy.top"),
		PortalAPIKey:  envOr("PORTAL_API_KEY", ""),
		PortalRPM:     envInt("PORTAL_RPM", 60),

		AnalyticsBaseURL: envOr("ANALYTICS_BASE_URL", "https://api.huddle.wtf"),
		AnalyticsToken:   envOr("ANALYTICS_TOKEN", ""),
		AnalyticsRPM:     envInt("ANALYTICS_RPM", 60),

		RefreshCommand:    envOr("TOKEN_REFRESH_CMD", ""),
		RefreshTimeout:    time.Duration(envInt("TOKEN_REFRESH_TIMEOUT_SECONDS", 120)) * time.Second,
		RefreshScreenshot: envOr("TOKEN_REFRESH_SCREENSHOT", "error_screenshot.png"),

		PollInterval: time.Duration(envInt("POLL_INTERVAL_SECONDS", 60)) * time.Second,
		PollCards:    envBool("POLL_CARDS", false),
		PollPlayers:  envBool("POLL_PLAYERS", false),

		StatusAddr: envOr("STATUS_ADDR", ""),
		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
		}),

		Environment: envOr("ENVIRONMENT", "development"),
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
