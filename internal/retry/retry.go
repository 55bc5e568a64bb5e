package retry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/api/googleapi"

	"newsflow/internal/metrics"
)

// Config bounds a guarded unit of work. A unit can be one external call or a
// whole per-topic workflow; the caller picks the granularity.
type Config struct {
	MaxAttempts   int
	Delay         time.Duration
	Backoff       bool // escalate delay per attempt
	QuotaCooldown time.Duration
}

// Default matches the production tuning: a few attempts with a short pause,
// and a much longer sit-out when the generation quota is exhausted.
func Default() Config {
	return Config{
		MaxAttempts:   3,
		Delay:         5 * time.Second,
		QuotaCooldown: 60 * time.Second,
	}
}

// IsQuotaExhausted reports whether err is the text-generation quota signal.
// Gemini surfaces it as RESOURCE_EXHAUSTED, and over plain HTTP as a 429.
func IsQuotaExhausted(err error) bool {
	if err == nil {
		return false
	}
	if apiErr, ok := err.(*googleapi.Error); ok && apiErr.Code == 429 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "429")
}

// Do runs fn up to MaxAttempts times. Between attempts it waits Delay
// (escalated per attempt when Backoff is set), except when the failure is a
// quota signal: then it waits QuotaCooldown regardless of the schedule.
// After the last failed attempt the last error is wrapped and returned.
func Do(ctx context.Context, config Config, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if err := fn(); err != nil {
			lastErr = err

			if attempt == config.MaxAttempts {
				return fmt.Errorf("failed after %d attempts: %w", config.MaxAttempts, err)
			}

			delay := config.Delay
			if config.Backoff {
				delay = time.Duration(attempt) * config.Delay
			}
			if IsQuotaExhausted(err) {
				metrics.Global.IncrementQuotaCooldowns()
				slog.Warn("quota exhausted, cooling down", "cooldown", config.QuotaCooldown, "attempt", attempt)
				delay = config.QuotaCooldown
			} else {
				slog.Warn("attempt failed", "attempt", attempt, "max", config.MaxAttempts, "error", err)
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				continue
			}
		}
		return nil
	}

	return lastErr
}
