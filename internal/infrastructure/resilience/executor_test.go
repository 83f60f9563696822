package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2.0,
		BreakerEnabled:      false,
	}
}

func retryAll(error) ErrorClassification {
	return ErrorClassification{Retryable: true, RecordFailure: true}
}

func retryNone(error) ErrorClassification {
	return ErrorClassification{Retryable: false, RecordFailure: true}
}

func TestExecuteRetriesUntilSuccess(t *testing.T) {
	executor := NewExecutor(fastConfig())

	calls := 0
	err := executor.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	}, retryAll)

	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestExecuteStopsAtMaxAttempts(t *testing.T) {
	executor := NewExecutor(fastConfig())

	calls := 0
	wantErr := errors.New("always down")
	err := executor.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return wantErr
	}, retryAll)

	if !errors.Is(err, wantErr) {
		t.Fatalf("expected final error surfaced, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestExecuteDoesNotRetryFinalErrors(t *testing.T) {
	executor := NewExecutor(fastConfig())

	calls := 0
	err := executor.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return errors.New("bad request")
	}, retryNone)

	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected single attempt for non-retryable error, got %d", calls)
	}
}

func TestExecuteHonorsContextCancellation(t *testing.T) {
	cfg := fastConfig()
	cfg.RetryInitialBackoff = 50 * time.Millisecond
	cfg.RetryMaxBackoff = 50 * time.Millisecond
	executor := NewExecutor(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := executor.Execute(ctx, "op", func(context.Context) error {
		calls++
		return errors.New("down")
	}, retryAll)

	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if calls >= 3 {
		t.Fatalf("expected cancellation to cut retries short, got %d calls", calls)
	}
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	cfg := fastConfig()
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 3
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = time.Minute
	cfg.RetryMaxAttempts = 1
	executor := NewExecutor(cfg)

	fail := func(context.Context) error { return errors.New("down") }
	for i := 0; i < 3; i++ {
		_ = executor.Execute(context.Background(), "op", fail, retryNone)
	}

	err := executor.Execute(context.Background(), "op", fail, retryNone)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}

func TestBreakerIsolatesOperations(t *testing.T) {
	cfg := fastConfig()
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 3
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = time.Minute
	cfg.RetryMaxAttempts = 1
	executor := NewExecutor(cfg)

	fail := func(context.Context) error { return errors.New("down") }
	for i := 0; i < 4; i++ {
		_ = executor.Execute(context.Background(), "broken_op", fail, retryNone)
	}

	err := executor.Execute(context.Background(), "healthy_op", func(context.Context) error {
		return nil
	}, retryNone)
	if err != nil {
		t.Fatalf("expected independent breaker per operation, got %v", err)
	}
}

func TestNormalizeFillsZeroValues(t *testing.T) {
	cfg := Config{}.normalize()
	def := DefaultConfig()

	if cfg.RetryMaxAttempts != def.RetryMaxAttempts {
		t.Fatalf("expected default attempts, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.RetryInitialBackoff != def.RetryInitialBackoff {
		t.Fatalf("expected default backoff, got %s", cfg.RetryInitialBackoff)
	}
	if cfg.BreakerMinRequests != def.BreakerMinRequests {
		t.Fatalf("expected default min requests, got %d", cfg.BreakerMinRequests)
	}
}
