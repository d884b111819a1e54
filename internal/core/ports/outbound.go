package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/medreport-assistant/internal/core/domain"
)

// ScratchStorage holds uploads and rendered pages while a request is in flight.
type ScratchStorage interface {
	Save(ctx context.Context, key string, data io.Reader) (path string, size int64, err error)
	Remove(ctx context.Context, key string) error
	TempDir(ctx context.Context, prefix string) (dir string, cleanup func(), err error)
}

// TextExtractor turns a stored upload into raw text.
type TextExtractor interface {
	Extract(ctx context.Context, file domain.StoredFile) (domain.Extraction, error)
}

// OCREngine recognizes text lines in one encoded raster image.
type OCREngine interface {
	Name() string
	Recognize(ctx context.Context, image []byte) ([]string, error)
}

// PageRenderer rasterizes every page of a PDF into outDir and returns image paths in page order.
type PageRenderer interface {
	RenderPages(ctx context.Context, pdfPath, outDir string) ([]string, error)
}

// SpellDictionary proposes a correction for a single alphabetic token.
type SpellDictionary interface {
	Correction(word string) (string, bool)
}

// TextGenerator is the single-shot LLM contract.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PromptBuilder renders the LLM prompts.
type PromptBuilder interface {
	SummaryPrompt(report string, docType domain.DocumentType) (string, error)
	SeverityPrompt(summary string) (string, error)
}

// HTMLRenderer turns raw LLM output into safe HTML.
type HTMLRenderer interface {
	Render(raw string) (string, error)
}

// EventPublisher publishes processed-report events.
type EventPublisher interface {
	PublishReportProcessed(ctx context.Context, event domain.ReportProcessed) error
}

// EventSubscriber consumes processed-report events until ctx is done.
type EventSubscriber interface {
	SubscribeReportProcessed(ctx context.Context, handler func(context.Context, domain.ReportProcessed) error) error
}

// AuditRepository persists processed-report events.
type AuditRepository interface {
	SaveRun(ctx context.Context, event domain.ReportProcessed) error
}

// PipelineObserver receives per-stage timings and per-file results.
type PipelineObserver interface {
	ObserveStage(stage string, duration time.Duration, err error)
	RecordResult(result domain.DocumentResult)
}

// AuditObserver receives per-event timings from the audit worker.
type AuditObserver interface {
	StartEvent()
	FinishEvent(service string, duration time.Duration, err error)
	ObserveEventLag(service string, lag time.Duration)
}
