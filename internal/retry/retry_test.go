package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	cfg := Config{MaxAttempts: 5, Delay: time.Millisecond, QuotaCooldown: time.Millisecond}

	err := Do(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected exactly 3 calls, got %d", calls)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	cfg := Config{MaxAttempts: 3, Delay: time.Millisecond, QuotaCooldown: time.Millisecond}

	err := Do(context.Background(), cfg, func() error {
		calls++
		return errors.New("still broken")
	})

	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("expected exactly 3 calls, got %d", calls)
	}
}

func TestDo_ElapsesConfiguredDelays(t *testing.T) {
	cfg := Config{MaxAttempts: 3, Delay: 20 * time.Millisecond, QuotaCooldown: time.Millisecond}

	start := time.Now()
	_ = Do(context.Background(), cfg, func() error {
		return errors.New("nope")
	})
	elapsed := time.Since(start)

	// Two sleeps between three attempts.
	if elapsed < 40*time.Millisecond {
		t.Errorf("expected at least 40ms of delay, got %v", elapsed)
	}
}

func TestDo_QuotaCooldownOverridesSchedule(t *testing.T) {
	cfg := Config{MaxAttempts: 2, Delay: time.Millisecond, QuotaCooldown: 50 * time.Millisecond}

	start := time.Now()
	_ = Do(context.Background(), cfg, func() error {
		return errors.New("generate: RESOURCE_EXHAUSTED")
	})
	elapsed := time.Since(start)

	if elapsed < 50*time.Millisecond {
		t.Errorf("quota error should wait the cooldown, waited only %v", elapsed)
	}
}

func TestDo_ContextCancelDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{MaxAttempts: 3, Delay: time.Minute, QuotaCooldown: time.Minute}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := Do(ctx, cfg, func() error {
		return errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestIsQuotaExhausted(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"resource exhausted marker", errors.New("rpc error: RESOURCE_EXHAUSTED: quota"), true},
		{"http 429 text", errors.New("googleapi: Error 429: rate limit"), true},
		{"ordinary error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsQuotaExhausted(tt.err); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
