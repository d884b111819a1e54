package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/kirillkom/medreport-assistant/internal/core/domain"
	"github.com/kirillkom/medreport-assistant/internal/infrastructure/resilience"
)

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type observerFake struct {
	calls  int
	failed int
}

func (o *observerFake) ObserveLLMCall(_ string, _ time.Duration, err error) {
	o.calls++
	if err != nil {
		o.failed++
	}
}

func singleShot() *resilience.Executor {
	return resilience.NewExecutor(resilience.Config{RetryMaxAttempts: 1})
}

func TestGuardedTrimsCompletion(t *testing.T) {
	obs := &observerFake{}
	g := NewGuarded("fake", generatorFunc(func(context.Context, string) (string, error) {
		return "  hello  \n", nil
	}), singleShot(), obs, time.Second)

	got, err := g.Generate(context.Background(), "prompt")
	if err != nil || got != "hello" {
		t.Fatalf("Generate() = %q, %v", got, err)
	}
	if obs.calls != 1 || obs.failed != 0 {
		t.Fatalf("unexpected observer counts %+v", obs)
	}
}

func TestGuardedWrapsFailures(t *testing.T) {
	obs := &observerFake{}
	g := NewGuarded("fake", generatorFunc(func(context.Context, string) (string, error) {
		return "", &HTTPStatusError{Provider: "fake", Operation: "generate", StatusCode: http.StatusServiceUnavailable, Status: "503 Service Unavailable"}
	}), singleShot(), obs, 0)

	_, err := g.Generate(context.Background(), "prompt")
	if !domain.IsKind(err, domain.ErrLLMFailure) {
		t.Fatalf("expected ErrLLMFailure, got %v", err)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected 503 to be marked temporary, got %v", err)
	}
	if obs.failed != 1 {
		t.Fatalf("expected failure to be observed")
	}
}

func TestGuardedPermanentFailureIsNotTemporary(t *testing.T) {
	g := NewGuarded("fake", generatorFunc(func(context.Context, string) (string, error) {
		return "", &HTTPStatusError{StatusCode: http.StatusUnauthorized, Status: "401 Unauthorized"}
	}), singleShot(), nil, 0)

	_, err := g.Generate(context.Background(), "prompt")
	if !domain.IsKind(err, domain.ErrLLMFailure) || domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected permanent LLM failure, got %v", err)
	}
}

func TestGuardedRejectsEmptyCompletion(t *testing.T) {
	g := NewGuarded("fake", generatorFunc(func(context.Context, string) (string, error) {
		return "   ", nil
	}), singleShot(), nil, 0)

	_, err := g.Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrEmptyCompletion) || !domain.IsKind(err, domain.ErrLLMFailure) {
		t.Fatalf("expected empty completion failure, got %v", err)
	}
}

func TestGuardedAppliesTimeout(t *testing.T) {
	g := NewGuarded("fake", generatorFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), singleShot(), nil, 10*time.Millisecond)

	_, err := g.Generate(context.Background(), "prompt")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	if c := Classify(&HTTPStatusError{StatusCode: http.StatusTooManyRequests}); !c.Retryable || !c.RecordFailure {
		t.Fatalf("429 should be retryable, got %+v", c)
	}
	if c := Classify(&HTTPStatusError{StatusCode: http.StatusBadRequest}); c.Retryable || c.RecordFailure {
		t.Fatalf("400 should be permanent and not trip the breaker, got %+v", c)
	}
	if c := Classify(context.Canceled); c.Retryable || c.RecordFailure {
		t.Fatalf("cancellation should be ignored, got %+v", c)
	}
	if c := Classify(errors.New("boom")); c.Retryable || !c.RecordFailure {
		t.Fatalf("unknown errors should count as failures, got %+v", c)
	}
}
