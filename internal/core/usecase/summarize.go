package usecase

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/kirillkom/medreport-assistant/internal/core/domain"
	"github.com/kirillkom/medreport-assistant/internal/core/ports"
	"github.com/kirillkom/medreport-assistant/internal/core/textproc"
)

const SummaryFallback = "⚠️ Could not generate summary."

const (
	advisoryAbnormal = "<br><br>⚠️ <b>Some findings require follow-up with your doctor.</b> " +
		"These results indicate notable abnormalities or tissue pattern changes " +
		"that may need further medical evaluation to rule out potential risks."
	advisoryMild = "<br><br>🟡 <b>Mild variations observed.</b> " +
		"Some readings are slightly outside normal limits, " +
		"but they typically do not indicate serious problems. " +
		"Monitoring and lifestyle adjustments may be advised."
	advisoryNormal = "<br><br>✅ <b>All parameters appear within normal limits.</b> " +
		"No major concerns detected in this report."
)

type Summarizer struct {
	generator ports.TextGenerator
	prompts   ports.PromptBuilder
	renderer  ports.HTMLRenderer
	severity  *SeverityClassifier
}

func NewSummarizer(
	generator ports.TextGenerator,
	prompts ports.PromptBuilder,
	renderer ports.HTMLRenderer,
	severity *SeverityClassifier,
) *Summarizer {
	return &Summarizer{
		generator: generator,
		prompts:   prompts,
		renderer:  renderer,
		severity:  severity,
	}
}

// Summarize always returns a summary. Post-processing (highlighting, severity,
// advisory) runs even when the LLM call fails and the fallback text is used.
func (s *Summarizer) Summarize(ctx context.Context, report string, docType domain.DocumentType) domain.Summary {
	outcome := domain.OutcomeOK

	text, err := s.generate(ctx, report, docType)
	if err != nil {
		slog.Warn("summary_generation_failed", "request_id", domain.RequestIDFromContext(ctx), "error", err)
		text = SummaryFallback
		outcome = domain.OutcomeDegraded
	} else {
		text = s.render(ctx, text)
	}

	text = textproc.HighlightRanges(text)
	assessment := s.severity.Classify(ctx, text)
	text += Advisory(assessment.Severity)

	return domain.Summary{
		HTML:     text,
		Severity: assessment.Severity,
		Outcome:  outcome.Worst(assessment.Outcome),
	}
}

func (s *Summarizer) generate(ctx context.Context, report string, docType domain.DocumentType) (string, error) {
	prompt, err := s.prompts.SummaryPrompt(report, docType)
	if err != nil {
		return "", fmt.Errorf("build summary prompt: %w", err)
	}
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", domain.WrapError(domain.ErrLLMFailure, "generate summary", err)
	}
	return text, nil
}

func (s *Summarizer) render(ctx context.Context, raw string) string {
	if s.renderer == nil {
		return raw
	}
	rendered, err := s.renderer.Render(raw)
	if err != nil {
		slog.Warn("summary_render_failed", "request_id", domain.RequestIDFromContext(ctx), "error", err)
		return html.EscapeString(raw)
	}
	return rendered
}

func Advisory(severity domain.Severity) string {
	switch severity {
	case domain.SeverityAbnormal:
		return advisoryAbnormal
	case domain.SeverityMild:
		return advisoryMild
	default:
		return advisoryNormal
	}
}
