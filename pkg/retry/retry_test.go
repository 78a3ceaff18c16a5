package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() *Config {
	return &Config{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastConfig(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("503 service unavailable")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	attempts := 0
	permanent := errors.New("400 bad request")
	err := Do(context.Background(), fastConfig(), func() error {
		attempts++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("err = %v, want %v", err, permanent)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retries for permanent errors)", attempts)
	}
}

func TestDoWithResultExhaustsRetries(t *testing.T) {
	attempts := 0
	_, err := DoWithResult(context.Background(), fastConfig(), func() (int, error) {
		attempts++
		return 0, errors.New("connection refused")
	})
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if attempts != 4 {
		t.Errorf("attempts = %d, want 4 (1 initial + 3 retries)", attempts)
	}
}

func TestDoRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, &Config{MaxRetries: 5, InitialDelay: time.Minute, Multiplier: 2.0}, func() error {
		return errors.New("timeout")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "nil", err: nil, retryable: false},
		{name: "rate limited", err: errors.New("HTTP 429 too many requests"), retryable: true},
		{name: "gateway timeout", err: errors.New("504 gateway timeout"), retryable: true},
		{name: "connection reset", err: errors.New("read tcp: connection reset by peer"), retryable: true},
		{name: "bad request", err: errors.New("HTTP 400 bad request"), retryable: false},
		{name: "parse failure", err: errors.New("invalid character '<'"), retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.retryable)
			}
		})
	}
}
