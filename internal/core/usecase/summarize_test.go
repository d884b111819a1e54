package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/medreport-assistant/internal/core/domain"
	"github.com/kirillkom/medreport-assistant/internal/core/textproc"
)

func newTestSummarizer(gen *scriptedGenerator, renderer rendererFake) *Summarizer {
	return NewSummarizer(gen, promptFake{}, renderer, NewSeverityClassifier(gen, promptFake{}))
}

func TestSummarizeHighlightsAndAppendsAdvisory(t *testing.T) {
	gen := &scriptedGenerator{
		summary:  "Hello, your Hemoglobin 9.0 (12.0-15.0) is low.",
		severity: "A",
	}
	s := newTestSummarizer(gen, rendererFake{})

	got := s.Summarize(context.Background(), "Hemoglobin 9.0 (12.0-15.0)", domain.DocumentBloodTest)

	if got.Outcome != domain.OutcomeOK {
		t.Fatalf("expected ok outcome, got %q", got.Outcome)
	}
	if got.Severity != domain.SeverityAbnormal {
		t.Fatalf("expected severity A, got %q", got.Severity)
	}
	if !strings.HasPrefix(got.HTML, "<p>") {
		t.Fatalf("expected rendered summary, got %q", got.HTML)
	}
	if !strings.Contains(got.HTML, textproc.OutOfRangeOpen) {
		t.Fatalf("expected out-of-range highlight, got %q", got.HTML)
	}
	if !strings.HasSuffix(got.HTML, Advisory(domain.SeverityAbnormal)) {
		t.Fatalf("expected abnormal advisory, got %q", got.HTML)
	}
}

func TestSummarizeSendsHighlightedSummaryToSeverityReviewer(t *testing.T) {
	gen := &scriptedGenerator{summary: "Platelets 250 (150-400)", severity: "C"}
	s := newTestSummarizer(gen, rendererFake{})

	s.Summarize(context.Background(), "report", domain.DocumentGeneral)

	if len(gen.prompts) != 2 {
		t.Fatalf("expected exactly two LLM calls, got %d", len(gen.prompts))
	}
	if !strings.HasPrefix(gen.prompts[0], "SUMMARY[General Medical Report]:report") {
		t.Fatalf("unexpected summary prompt %q", gen.prompts[0])
	}
	if !strings.Contains(gen.prompts[1], textproc.InRangeOpen) {
		t.Fatalf("severity prompt should see highlighted summary, got %q", gen.prompts[1])
	}
}

func TestSummarizeFallsBackWhenGenerationFails(t *testing.T) {
	gen := &scriptedGenerator{summaryErr: errLLMDown, severity: "B"}
	s := newTestSummarizer(gen, rendererFake{})

	got := s.Summarize(context.Background(), "report", domain.DocumentGeneral)

	if !strings.HasPrefix(got.HTML, SummaryFallback) {
		t.Fatalf("expected fallback text, got %q", got.HTML)
	}
	if !strings.HasSuffix(got.HTML, Advisory(domain.SeverityMild)) {
		t.Fatalf("expected mild advisory, got %q", got.HTML)
	}
	if got.Outcome != domain.OutcomeDegraded {
		t.Fatalf("expected degraded outcome, got %q", got.Outcome)
	}
}

func TestSummarizeMarksDegradedWhenSeverityFails(t *testing.T) {
	gen := &scriptedGenerator{summary: "all good", severityErr: errLLMDown}
	s := newTestSummarizer(gen, rendererFake{})

	got := s.Summarize(context.Background(), "report", domain.DocumentGeneral)

	if got.Severity != domain.SeverityNormal || got.Outcome != domain.OutcomeDegraded {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if !strings.HasSuffix(got.HTML, Advisory(domain.SeverityNormal)) {
		t.Fatalf("expected normal advisory, got %q", got.HTML)
	}
}

func TestSummarizeEscapesRawTextWhenRenderFails(t *testing.T) {
	gen := &scriptedGenerator{summary: "<script>x</script>", severity: "C"}
	s := newTestSummarizer(gen, rendererFake{err: errors.New("render failed")})

	got := s.Summarize(context.Background(), "report", domain.DocumentGeneral)
	if strings.Contains(got.HTML, "<script>") {
		t.Fatalf("expected escaped output, got %q", got.HTML)
	}
}
