package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kirillkom/medreport-assistant/internal/core/domain"
	"github.com/kirillkom/medreport-assistant/internal/core/ports"
)

type SeverityClassifier struct {
	generator ports.TextGenerator
	prompts   ports.PromptBuilder
}

func NewSeverityClassifier(generator ports.TextGenerator, prompts ports.PromptBuilder) *SeverityClassifier {
	return &SeverityClassifier{
		generator: generator,
		prompts:   prompts,
	}
}

// Classify never fails: when the reviewer cannot be reached the summary is
// treated as normal and the assessment is marked degraded.
func (c *SeverityClassifier) Classify(ctx context.Context, summary string) domain.SeverityAssessment {
	prompt, err := c.prompts.SeverityPrompt(summary)
	if err != nil {
		slog.Warn("severity_prompt_failed", "request_id", domain.RequestIDFromContext(ctx), "error", err)
		return degradedSeverity()
	}

	answer, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("severity_classification_failed",
			"request_id", domain.RequestIDFromContext(ctx),
			"error", domain.WrapError(domain.ErrLLMFailure, "classify severity", err),
		)
		return degradedSeverity()
	}

	severity := ParseSeverity(answer)
	slog.Debug("severity_classified", "request_id", domain.RequestIDFromContext(ctx), "answer", answer, "severity", string(severity))
	return domain.SeverityAssessment{
		Severity: severity,
		Outcome:  domain.OutcomeOK,
		Raw:      answer,
	}
}

// ParseSeverity maps a free-form reviewer answer onto a tier: any "A" wins,
// then any "B", and everything else is normal.
func ParseSeverity(answer string) domain.Severity {
	normalized := strings.ToUpper(strings.TrimSpace(answer))
	switch {
	case strings.Contains(normalized, "A"):
		return domain.SeverityAbnormal
	case strings.Contains(normalized, "B"):
		return domain.SeverityMild
	default:
		return domain.SeverityNormal
	}
}

func degradedSeverity() domain.SeverityAssessment {
	return domain.SeverityAssessment{
		Severity: domain.SeverityNormal,
		Outcome:  domain.OutcomeDegraded,
	}
}
