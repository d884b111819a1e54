package llm

import (
	"context"
	"strings"
	"time"

	"github.com/kirillkom/medreport-assistant/internal/core/domain"
	"github.com/kirillkom/medreport-assistant/internal/core/ports"
	"github.com/kirillkom/medreport-assistant/internal/infrastructure/resilience"
)

// CallObserver records the latency and result of every provider call.
type CallObserver interface {
	ObserveLLMCall(provider string, duration time.Duration, err error)
}

// Guarded runs a provider through the resilience executor and reports every
// failure as domain.ErrLLMFailure. Retryable failures additionally carry
// domain.ErrTemporary.
type Guarded struct {
	provider string
	next     ports.TextGenerator
	executor *resilience.Executor
	observer CallObserver
	timeout  time.Duration
}

func NewGuarded(provider string, next ports.TextGenerator, executor *resilience.Executor, observer CallObserver, timeout time.Duration) *Guarded {
	return &Guarded{
		provider: provider,
		next:     next,
		executor: executor,
		observer: observer,
		timeout:  timeout,
	}
}

func (g *Guarded) Generate(ctx context.Context, prompt string) (string, error) {
	op := "llm." + g.provider + ".generate"

	started := time.Now()
	text, err := resilience.Call(ctx, g.executor, op, g.attempt(prompt), Classify)
	if g.observer != nil {
		g.observer.ObserveLLMCall(g.provider, time.Since(started), err)
	}
	if err != nil {
		if Classify(err).Retryable {
			err = domain.WrapError(domain.ErrTemporary, op, err)
		}
		return "", domain.WrapError(domain.ErrLLMFailure, op, err)
	}
	return text, nil
}

func (g *Guarded) attempt(prompt string) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		if g.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, g.timeout)
			defer cancel()
		}
		text, err := g.next.Generate(ctx, prompt)
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return "", ErrEmptyCompletion
		}
		return text, nil
	}
}
