package credential

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// ExecRefresher runs an external helper command that performs the
// interactive browser login and prints the fresh bearer token on stdout.
// On failure the helper is expected to save a screenshot of the page it
// was stuck on; its path is logged here for debugging.
type ExecRefresher struct {
	Command    string        // shell command line, e.g. "node refresh-token.js"
	Timeout    time.Duration // hard cap on the interactive session
	Screenshot string        // where the helper saves its failure screenshot
	Logger     *slog.Logger
}

// Refresh runs the helper and returns the token it printed.
func (r *ExecRefresher) Refresh(ctx context.Context) (string, error) {
	if r.Command == "" {
		return "", errors.New("no refresh command configured (TOKEN_REFRESH_CMD)")
	}

	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Info("running token refresh helper", "command", r.Command)

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", r.Command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// The helper's stderr carries its last known page state.
		logger.Error("refresh helper failed",
			"error", err,
			"stderr", tail(stderr.String(), 500),
			"screenshot", r.Screenshot)
		return "", fmt.Errorf("refresh helper: %w", err)
	}

	token := strings.TrimSpace(stdout.String())
	if token == "" {
		logger.Error("refresh helper produced no token",
			"stderr", tail(stderr.String(), 500),
			"screenshot", r.Screenshot)
		return "", errors.New("refresh helper produced no token")
	}
	return token, nil
}

// tail returns the last maxLen bytes of s for log context.
func tail(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}
