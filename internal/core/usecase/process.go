package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/medreport-assistant/internal/core/domain"
	"github.com/kirillkom/medreport-assistant/internal/core/ports"
	"github.com/kirillkom/medreport-assistant/internal/core/textproc"
)

const (
	ExtractionFailureNotice = "⚠️ Could not read text from this file. Please upload a clearer scan or a supported image/PDF."
	StorageFailureNotice    = "⚠️ Could not store this file for processing."
)

const (
	StageStore     = "store"
	StageExtract   = "extract"
	StageClean     = "clean"
	StageSummarize = "summarize"
)

type ProcessReportUseCase struct {
	storage    ports.ScratchStorage
	extractor  ports.TextExtractor
	corrector  *textproc.Corrector
	summarizer *Summarizer
	publisher  ports.EventPublisher
	observer   ports.PipelineObserver
	logger     *slog.Logger
	now        func() time.Time
}

func NewProcessReportUseCase(
	storage ports.ScratchStorage,
	extractor ports.TextExtractor,
	corrector *textproc.Corrector,
	summarizer *Summarizer,
	publisher ports.EventPublisher,
	observer ports.PipelineObserver,
) *ProcessReportUseCase {
	return &ProcessReportUseCase{
		storage:    storage,
		extractor:  extractor,
		corrector:  corrector,
		summarizer: summarizer,
		publisher:  publisher,
		observer:   observer,
		logger:     slog.Default(),
		now:        time.Now,
	}
}

// ProcessFile drives one upload through save → extract → clean → correct →
// classify → summarize. Failures are isolated to this file and reported in
// the returned result instead of an error.
func (uc *ProcessReportUseCase) ProcessFile(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) domain.DocumentResult {
	start := uc.now()
	result := domain.DocumentResult{
		ID:       uuid.NewString(),
		Filename: SanitizeFilename(filename),
		Outcome:  domain.OutcomeOK,
	}
	pages := 0
	defer func() {
		uc.finish(ctx, result, pages, start)
	}()

	stageStart := uc.now()
	file, cleanup, err := uc.storeUpload(ctx, result.ID, result.Filename, mimeType, body)
	uc.observe(StageStore, stageStart, err)
	defer cleanup()
	if err != nil {
		result = uc.fail(ctx, result, StorageFailureNotice, err)
		return result
	}

	stageStart = uc.now()
	extraction, err := uc.extractor.Extract(ctx, file)
	uc.observe(StageExtract, stageStart, err)
	if err != nil {
		result = uc.fail(ctx, result, ExtractionFailureNotice, fmt.Errorf("extract text: %w", err))
		return result
	}
	pages = extraction.Pages

	stageStart = uc.now()
	cleaned := uc.corrector.Correct(textproc.Normalize(extraction.Text))
	result.DocumentType = textproc.ClassifyDocument(cleaned)
	uc.observe(StageClean, stageStart, nil)

	stageStart = uc.now()
	summary := uc.summarizer.Summarize(ctx, cleaned, result.DocumentType)
	uc.observe(StageSummarize, stageStart, nil)

	result.SummaryHTML = summary.HTML
	result.Severity = summary.Severity
	result.Outcome = summary.Outcome
	return result
}

func (uc *ProcessReportUseCase) fail(ctx context.Context, result domain.DocumentResult, notice string, err error) domain.DocumentResult {
	uc.logger.Error("report_processing_failed",
		"request_id", domain.RequestIDFromContext(ctx),
		"report_id", result.ID,
		"filename", result.Filename,
		"error", err,
	)
	result.DocumentType = domain.DocumentUnreadable
	result.SummaryHTML = notice
	result.Outcome = domain.OutcomeFailed
	result.Error = err.Error()
	return result
}

func (uc *ProcessReportUseCase) finish(ctx context.Context, result domain.DocumentResult, pages int, start time.Time) {
	duration := uc.now().Sub(start)
	if uc.observer != nil {
		uc.observer.RecordResult(result)
	}

	uc.logger.Info("report_processed",
		"request_id", domain.RequestIDFromContext(ctx),
		"report_id", result.ID,
		"filename", result.Filename,
		"document_type", string(result.DocumentType),
		"severity", string(result.Severity),
		"outcome", string(result.Outcome),
		"pages", pages,
		"duration_ms", float64(duration.Microseconds())/1000.0,
	)

	if uc.publisher == nil {
		return
	}
	event := domain.ReportProcessed{
		ID:           result.ID,
		RequestID:    domain.RequestIDFromContext(ctx),
		Filename:     result.Filename,
		DocumentType: result.DocumentType,
		Severity:     result.Severity,
		Outcome:      result.Outcome,
		Pages:        pages,
		DurationMS:   duration.Milliseconds(),
		ProcessedAt:  uc.now().UTC(),
	}
	if err := uc.publisher.PublishReportProcessed(context.WithoutCancel(ctx), event); err != nil {
		uc.logger.Warn("report_event_publish_failed", "request_id", event.RequestID, "report_id", event.ID, "error", err)
	}
}

func (uc *ProcessReportUseCase) observe(stage string, start time.Time, err error) {
	if uc.observer == nil {
		return
	}
	uc.observer.ObserveStage(stage, uc.now().Sub(start), err)
}
