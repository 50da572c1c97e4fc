// Package poll drives the repeating collect-and-reconcile cycle: validate
// the analytics credential, pull the hero directory and score feeds, apply
// them to storage, sleep, repeat. One cycle failing never stops the loop.
package poll

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cardfolio/cardfolio-data/internal/provider"
	"github.com/cardfolio/cardfolio-data/internal/reconcile"
)

// Phase is where the runner currently is in its cycle.
type Phase string

const (
	PhaseIdle            Phase = "IDLE"
	PhaseCredentialCheck Phase = "CREDENTIAL_CHECK"
	PhaseCollecting      Phase = "COLLECTING"
	PhaseReconciling     Phase = "RECONCILING"
	PhaseSleeping        Phase = "SLEEPING"
	PhaseStopped         Phase = "STOPPED"
)

// Directory is the hero marketplace portal surface the runner collects from.
type Directory interface {
	EachHero(ctx context.Context, fn func(provider.Hero) error) error
	HeroDetail(ctx context.Context, heroID string) (*provider.HeroDetail, error)
	EachCard(ctx context.Context, fn func(provider.Card) error) error
	Players(ctx context.Context) ([]provider.Player, error)
}

// Analytics is the score-feed surface the runner collects from.
type Analytics interface {
	HeroScores(ctx context.Context, token string) ([]provider.ScoreSeries, error)
	TournamentScores(ctx context.Context, token string) ([]provider.TournamentSeries, error)
}

// Credentials supplies a usable bearer token before each cycle.
type Credentials interface {
	EnsureValid(ctx context.Context) (string, error)
}

// Applier writes collected batches to storage. Implemented by
// reconcile.Reconciler.
type Applier interface {
	Heroes(ctx context.Context, batch []reconcile.HeroBatch, result *reconcile.Result)
	Scores(ctx context.Context, series []provider.ScoreSeries, result *reconcile.Result)
	Tournaments(ctx context.Context, series []provider.TournamentSeries, result *reconcile.Result)
	Cards(ctx context.Context, cards []provider.Card, result *reconcile.Result)
	Players(ctx context.Context, players []provider.Player, result *reconcile.Result)
}

// Options tunes the runner.
type Options struct {
	Interval    time.Duration
	PollCards   bool
	PollPlayers bool
}

// Snapshot is a point-in-time view of the runner for the status listener.
type Snapshot struct {
	Phase           Phase     `json:"phase"`
	CyclesCompleted int       `json:"cycles_completed"`
	CyclesFailed    int       `json:"cycles_failed"`
	LastCycleAt     time.Time `json:"last_cycle_at"`
	LastSummary     string    `json:"last_summary,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
	LastErrorCount  int       `json:"last_error_count"`
}

// Runner owns the poll loop.
type Runner struct {
	directory   Directory
	analytics   Analytics
	credentials Credentials
	applier     Applier
	opts        Options
	logger      *slog.Logger

	mu   sync.Mutex
	snap Snapshot
}

// NewRunner wires a runner. A zero Interval defaults to one minute.
func NewRunner(directory Directory, analytics Analytics, credentials Credentials,
	applier Applier, opts Options, logger *slog.Logger) *Runner {
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		directory:   directory,
		analytics:   analytics,
		credentials: credentials,
		applier:     applier,
		opts:        opts,
		logger:      logger,
		snap:        Snapshot{Phase: PhaseIdle},
	}
}

// Snapshot returns the current runner state.
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

func (r *Runner) setPhase(p Phase) {
	r.mu.Lock()
	r.snap.Phase = p
	r.mu.Unlock()
}

// Run executes cycles at a constant interval until ctx is canceled. The
// interval does not stretch after a failed cycle: the next attempt is the
// retry. Sleep is interruptible, so cancellation during the wait returns
// promptly.
func (r *Runner) Run(ctx context.Context) error {
	defer r.setPhase(PhaseStopped)

	for {
		result, err := r.Cycle(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		r.mu.Lock()
		r.snap.LastCycleAt = time.Now()
		if err != nil {
			r.snap.CyclesFailed++
			r.snap.LastError = err.Error()
		} else {
			r.snap.CyclesCompleted++
			r.snap.LastSummary = result.Summary()
			r.snap.LastError = ""
			r.snap.LastErrorCount = len(result.Errors)
		}
		r.mu.Unlock()

		if err != nil {
			r.logger.Error("poll cycle failed", "error", err)
		} else {
			r.logger.Info("poll cycle complete", "summary", result.Summary())
		}

		r.setPhase(PhaseSleeping)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.opts.Interval):
		}
	}
}

// Cycle runs one poll pass as a sequence of stages, each collected and
// applied before the next begins: directory+details, hero scores,
// tournament scores, then the optional card and player paths. A stage
// failing to collect aborts the remainder of the cycle; stages already
// applied stay applied. Within a stage, per-record failures are recorded
// and skipped.
func (r *Runner) Cycle(ctx context.Context) (reconcile.Result, error) {
	var result reconcile.Result

	r.setPhase(PhaseCredentialCheck)
	token, err := r.credentials.EnsureValid(ctx)
	if err != nil {
		return result, fmt.Errorf("credential check: %w", err)
	}

	r.setPhase(PhaseCollecting)
	batch, err := r.collectHeroes(ctx, &result)
	if err != nil {
		return result, fmt.Errorf("collect heroes: %w", err)
	}
	r.setPhase(PhaseReconciling)
	r.applier.Heroes(ctx, batch, &result)

	r.setPhase(PhaseCollecting)
	scores, err := r.analytics.HeroScores(ctx, token)
	if err != nil {
		return result, fmt.Errorf("collect hero scores: %w", err)
	}
	r.setPhase(PhaseReconciling)
	r.applier.Scores(ctx, scores, &result)

	r.setPhase(PhaseCollecting)
	tournaments, err := r.analytics.TournamentScores(ctx, token)
	if err != nil {
		return result, fmt.Errorf("collect tournament scores: %w", err)
	}
	r.setPhase(PhaseReconciling)
	r.applier.Tournaments(ctx, tournaments, &result)

	if r.opts.PollCards {
		r.setPhase(PhaseCollecting)
		var cards []provider.Card
		if err := r.directory.EachCard(ctx, func(c provider.Card) error {
			cards = append(cards, c)
			return ctx.Err()
		}); err != nil {
			return result, fmt.Errorf("collect cards: %w", err)
		}
		r.setPhase(PhaseReconciling)
		r.applier.Cards(ctx, cards, &result)
	}

	if r.opts.PollPlayers {
		r.setPhase(PhaseCollecting)
		players, err := r.directory.Players(ctx)
		if err != nil {
			return result, fmt.Errorf("collect players: %w", err)
		}
		r.setPhase(PhaseReconciling)
		r.applier.Players(ctx, players, &result)
	}

	return result, nil
}

// collectHeroes walks the directory and fetches detail for full heroes.
// A detail fetch failing keeps the directory record with nil detail, so a
// single flaky hero page never loses the rest of the batch. Directory
// pagination failing aborts the whole collection: a partial directory walk
// would look like the missing heroes were never listed.
func (r *Runner) collectHeroes(ctx context.Context, result *reconcile.Result) ([]reconcile.HeroBatch, error) {
	var batch []reconcile.HeroBatch
	err := r.directory.EachHero(ctx, func(h provider.Hero) error {
		b := reconcile.HeroBatch{Hero: h}
		if h.Status == provider.StatusHero {
			detail, err := r.directory.HeroDetail(ctx, h.ID)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				result.AddErrorf("hero detail %s: %v", h.ID, err)
				r.logger.Warn("hero detail fetch failed", "hero_id", h.ID, "error", err)
			} else {
				b.Detail = detail
			}
		}
		batch = append(batch, b)
		return ctx.Err()
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}
