// Package credential owns the bearer credential for the analytics upstream:
// one current token, validated by a cheap probe and replaced through an
// out-of-band interactive refresh when the upstream rejects it.
//
// The refresh procedure itself (a headful browser login) is injected
// behind the Refresher interface and never runs inside the poll core.
package credential

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/cardfolio/cardfolio-data/internal/provider/analytics"
)

// State is the credential lifecycle state.
type State string

const (
	StateValid      State = "VALID"
	StateUnknown    State = "UNKNOWN"
	StateRefreshing State = "REFRESHING"
	StateFailed     State = "FAILED"
)

// Prober issues a cheap authenticated request with the given token and
// returns analytics.ErrUnauthorized when the upstream rejects it.
type Prober interface {
	Probe(ctx context.Context, token string) error
}

// Refresher obtains a fresh bearer token through an interactive login.
// Implementations may take tens of seconds; Refresh blocks.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// Manager holds the current bearer credential. Single writer: the poll
// loop is the only caller of EnsureValid, but the mutex keeps the status
// listener's reads consistent.
type Manager struct {
	prober    Prober
	refresher Refresher
	logger    *slog.Logger

	mu    sync.Mutex
	token string
	state State
}

// NewManager creates a manager seeded with an initial token, which may be
// empty or long expired — the first EnsureValid sorts it out.
func NewManager(seedToken string, prober Prober, refresher Refresher, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		prober:    prober,
		refresher: refresher,
		logger:    logger,
		token:     seedToken,
		state:     StateUnknown,
	}
}

// EnsureValid probes the current token and refreshes it if the upstream
// rejects it. On refresh failure the stale token is returned with a nil
// error: the caller's next authenticated call will fail with another auth
// error and the next cycle retries the refresh. Non-auth probe failures
// are returned unchanged — a 500 is not an expired credential.
func (m *Manager) EnsureValid(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.prober.Probe(ctx, m.token)
	switch {
	case err == nil:
		m.state = StateValid
		return m.token, nil

	case errors.Is(err, analytics.ErrUnauthorized):
		m.state = StateRefreshing
		m.logger.Warn("bearer token rejected, refreshing", "error", err)

		fresh, refreshErr := m.refresher.Refresh(ctx)
		fresh = trimToken(fresh)
		if refreshErr != nil || fresh == "" {
			m.state = StateFailed
			m.logger.Error("token refresh failed, keeping stale credential",
				"error", refreshErr)
			return m.token, nil
		}

		m.token = fresh
		m.state = StateValid
		m.logger.Info("bearer token refreshed")
		return m.token, nil

	default:
		m.state = StateUnknown
		return m.token, err
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// trimToken strips whitespace and the surrounding quote characters some
// refresh helpers leave around tokens extracted from browser storage.
func trimToken(token string) string {
	token = strings.TrimSpace(token)
	token = strings.Trim(token, `"'`)
	return strings.TrimSpace(token)
}
