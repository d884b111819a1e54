package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/medreport-assistant/internal/core/domain"
)

func TestParseSeverity(t *testing.T) {
	cases := []struct {
		answer string
		want   domain.Severity
	}{
		{answer: "A", want: domain.SeverityAbnormal},
		{answer: " a\n", want: domain.SeverityAbnormal},
		{answer: "B", want: domain.SeverityMild},
		{answer: "b - mild", want: domain.SeverityMild},
		{answer: "C", want: domain.SeverityNormal},
		{answer: "", want: domain.SeverityNormal},
		{answer: "?", want: domain.SeverityNormal},
		{answer: "BA", want: domain.SeverityAbnormal},
	}
	for _, tc := range cases {
		if got := ParseSeverity(tc.answer); got != tc.want {
			t.Fatalf("ParseSeverity(%q) = %q, want %q", tc.answer, got, tc.want)
		}
	}
}

func TestSeverityClassifierReturnsParsedTier(t *testing.T) {
	var captured string
	gen := generatorFunc(func(_ context.Context, prompt string) (string, error) {
		captured = prompt
		return "b", nil
	})
	classifier := NewSeverityClassifier(gen, promptFake{})

	got := classifier.Classify(context.Background(), "mild anaemia")
	if got.Severity != domain.SeverityMild || got.Outcome != domain.OutcomeOK {
		t.Fatalf("unexpected assessment: %+v", got)
	}
	if !strings.Contains(captured, "mild anaemia") {
		t.Fatalf("expected summary in prompt, got %q", captured)
	}
}

func TestSeverityClassifierDefaultsToNormalOnFailure(t *testing.T) {
	gen := generatorFunc(func(context.Context, string) (string, error) {
		return "", errLLMDown
	})
	classifier := NewSeverityClassifier(gen, promptFake{})

	got := classifier.Classify(context.Background(), "anything")
	if got.Severity != domain.SeverityNormal {
		t.Fatalf("expected C on failure, got %q", got.Severity)
	}
	if got.Outcome != domain.OutcomeDegraded {
		t.Fatalf("expected degraded outcome, got %q", got.Outcome)
	}
}

func TestSeverityClassifierDefaultsToNormalOnPromptError(t *testing.T) {
	called := false
	gen := generatorFunc(func(context.Context, string) (string, error) {
		called = true
		return "A", nil
	})
	classifier := NewSeverityClassifier(gen, promptFake{err: errors.New("bad template")})

	got := classifier.Classify(context.Background(), "anything")
	if called {
		t.Fatalf("generator must not be called without a prompt")
	}
	if got.Severity != domain.SeverityNormal || got.Outcome != domain.OutcomeDegraded {
		t.Fatalf("unexpected assessment: %+v", got)
	}
}
