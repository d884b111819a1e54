package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func fastRetries(attempts int) Config {
	return Config{
		RetryMaxAttempts:    attempts,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
	}
}

func TestDefaultConfigIsSingleShot(t *testing.T) {
	exec := NewExecutor(Config{})
	attempts := 0
	errTemp := errors.New("temporary")

	err := exec.Execute(context.Background(), "llm", func(context.Context) error {
		attempts++
		return errTemp
	}, func(error) ErrorClassification { return ErrorClassification{Retryable: true, RecordFailure: true} })
	if !errors.Is(err, errTemp) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", attempts)
	}
}

func TestExecuteRetriesTemporaryFailure(t *testing.T) {
	exec := NewExecutor(fastRetries(3))

	attempts := 0
	errTemp := errors.New("temporary")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTemp
		}
		return nil
	}, func(err error) ErrorClassification {
		return ErrorClassification{Retryable: errors.Is(err, errTemp), RecordFailure: true}
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteDoesNotRetryPermanentFailure(t *testing.T) {
	exec := NewExecutor(fastRetries(3))

	attempts := 0
	errPermanent := errors.New("permanent")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errPermanent
	}, func(error) ErrorClassification { return ErrorClassification{} })
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestCallReturnsValue(t *testing.T) {
	exec := NewExecutor(fastRetries(1))

	got, err := Call(context.Background(), exec, "op", func(context.Context) (string, error) {
		return "summary", nil
	}, nil)
	if err != nil || got != "summary" {
		t.Fatalf("Call() = %q, %v", got, err)
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	cfg := fastRetries(1)
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 2
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = 50 * time.Millisecond
	cfg.BreakerHalfOpenMaxCalls = 1

	var transitions []string
	exec := NewExecutor(cfg, WithStateListener(func(op, from, to string) {
		transitions = append(transitions, op+":"+from+"->"+to)
	}))

	errTemp := errors.New("temporary")
	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "llm.gemini.generate", func(context.Context) error {
			return errTemp
		}, nil)
		if !errors.Is(err, errTemp) {
			t.Fatalf("expected temporary error on iteration %d, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "llm.gemini.generate", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, nil)
	if !errors.Is(err, gobreaker.ErrOpenState) || !IsCircuitOpen(err) {
		t.Fatalf("expected open state error, got %v", err)
	}
	if len(transitions) != 1 || transitions[0] != "llm.gemini.generate:closed->open" {
		t.Fatalf("unexpected transitions %v", transitions)
	}
}

func TestExecuteHonoursCancelledContext(t *testing.T) {
	exec := NewExecutor(fastRetries(3))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := exec.Execute(ctx, "op", func(context.Context) error {
		called = true
		return nil
	}, nil)
	if !errors.Is(err, context.Canceled) || called {
		t.Fatalf("expected cancellation before the call, got %v (called=%v)", err, called)
	}
}
