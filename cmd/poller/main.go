// Command poller is the Cardfolio marketplace data poller.
//
// Usage:
//
//	cardfolio-poller run
//	cardfolio-poller run --interval 120s
//	cardfolio-poller once
//	POLL_CARDS=true cardfolio-poller once
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cardfolio/cardfolio-data/internal/config"
	"github.com/cardfolio/cardfolio-data/internal/credential"
	"github.com/cardfolio/cardfolio-data/internal/db"
	"github.com/cardfolio/cardfolio-data/internal/ops"
	"github.com/cardfolio/cardfolio-data/internal/poll"
	"github.com/cardfolio/cardfolio-data/internal/provider/analytics"
	"github.com/cardfolio/cardfolio-data/internal/provider/portal"
	"github.com/cardfolio/cardfolio-data/internal/reconcile"
	"github.com/cardfolio/cardfolio-data/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")
	slog.SetDefault(logger)

	root := &cobra.Command{
		Use:   "cardfolio-poller",
		Short: "Cardfolio marketplace data poller",
	}

	root.AddCommand(runCmd())
	root.AddCommand(onceCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// run command — continuous poll loop
// --------------------------------------------------------------------------

func runCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll the marketplace continuously until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(ctx context.Context, cfg *config.Config, deps *deps) error {
				if interval > 0 {
					cfg.PollInterval = interval
				}

				runner := newRunner(cfg, deps)

				if cfg.StatusAddr != "" {
					srv := ops.NewServer(deps.pool, runner, deps.credentials, logger)
					go func() {
						if err := srv.ListenAndServe(ctx, cfg.StatusAddr, cfg); err != nil {
							logger.Error("status listener failed", "error", err)
						}
					}()
				}

				logger.Info("poller starting",
					"interval", cfg.PollInterval,
					"poll_cards", cfg.PollCards,
					"poll_players", cfg.PollPlayers,
					"environment", cfg.Environment)

				err := runner.Run(ctx)
				if err != nil && ctx.Err() != nil {
					logger.Info("poller stopped")
					return nil
				}
				return err
			})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "Override POLL_INTERVAL_SECONDS")
	return cmd
}

// --------------------------------------------------------------------------
// once command — single cycle, then exit
// --------------------------------------------------------------------------

func onceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single collect-and-reconcile cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(ctx context.Context, cfg *config.Config, deps *deps) error {
				runner := newRunner(cfg, deps)

				start := time.Now()
				result, err := runner.Cycle(ctx)
				if err != nil {
					return fmt.Errorf("poll cycle: %w", err)
				}

				logger.Info("poll cycle finished",
					"duration", time.Since(start).Round(time.Second),
					"summary", result.Summary())
				for _, e := range result.Errors {
					logger.Error("cycle error", "error", e)
				}
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// deps bundles everything a poll cycle needs.
type deps struct {
	pool        *db.Pool
	directory   *portal.Client
	analytics   *analytics.Client
	credentials *credential.Manager
	reconciler  *reconcile.Reconciler
}

// withDeps handles config loading, DB connection, client construction, and
// context cancellation.
func withDeps(fn func(ctx context.Context, cfg *config.Config, deps *deps) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.PortalAPIKey == "" {
		return fmt.Errorf("PORTAL_API_KEY is required")
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	analyticsClient := analytics.NewClient(cfg.AnalyticsBaseURL, cfg.AnalyticsRPM, logger)
	refresher := &credential.ExecRefresher{
		Command:    cfg.RefreshCommand,
		Timeout:    cfg.RefreshTimeout,
		Screenshot: cfg.RefreshScreenshot,
		Logger:     logger,
	}

	d := &deps{
		pool:        pool,
		directory:   portal.NewClient(cfg.PortalBaseURL, cfg.PortalAPIKey, cfg.PortalRPM, logger),
		analytics:   analyticsClient,
		credentials: credential.NewManager(cfg.AnalyticsToken, analyticsClient, refresher, logger),
		reconciler:  reconcile.New(store.New(pool), logger),
	}
	return fn(ctx, cfg, d)
}

func newRunner(cfg *config.Config, d *deps) *poll.Runner {
	return poll.NewRunner(d.directory, d.analytics, d.credentials, d.reconciler,
		poll.Options{
			Interval:    cfg.PollInterval,
			PollCards:   cfg.PollCards,
			PollPlayers: cfg.PollPlayers,
		}, logger)
}
