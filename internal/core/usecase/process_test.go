package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/kirillkom/medreport-assistant/internal/core/domain"
	"github.com/kirillkom/medreport-assistant/internal/core/textproc"
)

type correctionMap map[string]string

func (c correctionMap) Correction(word string) (string, bool) {
	fixed, ok := c[word]
	return fixed, ok
}

type processHarness struct {
	storage   *storageFake
	extractor *extractorFake
	generator *scriptedGenerator
	publisher *publisherFake
	observer  *observerFake
	uc        *ProcessReportUseCase
}

func newProcessHarness(extractor *extractorFake, gen *scriptedGenerator) *processHarness {
	h := &processHarness{
		storage:   newStorageFake(),
		extractor: extractor,
		generator: gen,
		publisher: &publisherFake{},
		observer:  &observerFake{},
	}
	severity := NewSeverityClassifier(gen, promptFake{})
	summarizer := NewSummarizer(gen, promptFake{}, nil, severity)
	h.uc = NewProcessReportUseCase(
		h.storage,
		extractor,
		textproc.NewCorrector(correctionMap{"Hemoglobn": "Hemoglobin"}),
		summarizer,
		h.publisher,
		h.observer,
	)
	return h
}

func TestProcessFileRunsFullPipeline(t *testing.T) {
	h := newProcessHarness(
		&extractorFake{text: "COMPLETE BLOOD COUNT\nHemoglobn   9.0 (12.0-15.0) ###", pages: 2},
		&scriptedGenerator{summary: "Hemoglobin 9.0 (12.0-15.0) is low.", severity: "A"},
	)

	got := h.uc.ProcessFile(context.Background(), "../scan report.png", "image/png", strings.NewReader("img"))

	if got.Filename != "scan_report.png" {
		t.Fatalf("expected sanitized filename, got %q", got.Filename)
	}
	if got.DocumentType != domain.DocumentBloodTest {
		t.Fatalf("expected blood test, got %q", got.DocumentType)
	}
	if got.Outcome != domain.OutcomeOK || got.Severity != domain.SeverityAbnormal {
		t.Fatalf("unexpected result: %+v", got)
	}
	if !strings.Contains(got.SummaryHTML, textproc.OutOfRangeOpen) {
		t.Fatalf("expected highlighted summary, got %q", got.SummaryHTML)
	}

	wantPrompt := "SUMMARY[Blood Test Report]:COMPLETE BLOOD COUNT Hemoglobin 9.0 (12.0-15.0)"
	if h.generator.prompts[0] != wantPrompt {
		t.Fatalf("summary prompt = %q, want %q", h.generator.prompts[0], wantPrompt)
	}
	if len(h.extractor.files) != 1 || !strings.HasSuffix(h.extractor.files[0].Key, "_scan_report.png") {
		t.Fatalf("unexpected stored file: %+v", h.extractor.files)
	}
	if len(h.storage.removed) != 1 || h.storage.removed[0] != h.extractor.files[0].Key {
		t.Fatalf("expected scratch file removed, got %+v", h.storage.removed)
	}
	if len(h.publisher.events) != 1 || h.publisher.events[0].Pages != 2 || h.publisher.events[0].ID != got.ID {
		t.Fatalf("unexpected events: %+v", h.publisher.events)
	}
	if len(h.observer.results) != 1 {
		t.Fatalf("expected one recorded result, got %d", len(h.observer.results))
	}
	if strings.Join(h.observer.stages, ",") != "store,extract,clean,summarize" {
		t.Fatalf("unexpected stage sequence: %v", h.observer.stages)
	}
}

func TestProcessFileIsolatesExtractionFailure(t *testing.T) {
	h := newProcessHarness(
		&extractorFake{err: domain.WrapError(domain.ErrOCRFailure, "ocr", errors.New("tesseract crashed"))},
		&scriptedGenerator{summary: "unused", severity: "A"},
	)

	got := h.uc.ProcessFile(context.Background(), "broken.pdf", "application/pdf", strings.NewReader("%PDF"))

	if got.Outcome != domain.OutcomeFailed {
		t.Fatalf("expected failed outcome, got %q", got.Outcome)
	}
	if got.DocumentType != domain.DocumentUnreadable || got.SummaryHTML != ExtractionFailureNotice {
		t.Fatalf("unexpected failure result: %+v", got)
	}
	if !strings.Contains(got.Error, "tesseract crashed") {
		t.Fatalf("expected cause in error, got %q", got.Error)
	}
	if len(h.generator.prompts) != 0 {
		t.Fatalf("LLM must not be called after extraction failure")
	}
	if len(h.storage.removed) != 1 {
		t.Fatalf("expected scratch cleanup on failure, got %+v", h.storage.removed)
	}
	if len(h.publisher.events) != 1 || h.publisher.events[0].Outcome != domain.OutcomeFailed {
		t.Fatalf("expected failed event, got %+v", h.publisher.events)
	}
}

func TestProcessFileReportsStorageFailure(t *testing.T) {
	h := newProcessHarness(&extractorFake{text: "x"}, &scriptedGenerator{})
	h.storage.saveErr = errors.New("disk full")

	got := h.uc.ProcessFile(context.Background(), "a.png", "image/png", strings.NewReader("img"))

	if got.Outcome != domain.OutcomeFailed || got.SummaryHTML != StorageFailureNotice {
		t.Fatalf("unexpected result: %+v", got)
	}
	if len(h.extractor.files) != 0 {
		t.Fatalf("extractor must not run without a stored file")
	}
}

func TestProcessFileIgnoresPublishErrors(t *testing.T) {
	h := newProcessHarness(&extractorFake{text: "pap smear"}, &scriptedGenerator{summary: "fine", severity: "C"})
	h.publisher.err = errors.New("nats down")

	got := h.uc.ProcessFile(context.Background(), "pap.jpg", "image/jpeg", strings.NewReader("img"))

	if got.Outcome != domain.OutcomeOK || got.DocumentType != domain.DocumentPAPTest {
		t.Fatalf("publish failure must not change the result: %+v", got)
	}
}

func TestProcessFileCarriesRequestIDIntoEvent(t *testing.T) {
	h := newProcessHarness(&extractorFake{text: "x"}, &scriptedGenerator{summary: "ok", severity: "C"})
	ctx := domain.WithRequestID(context.Background(), "req-42")

	h.uc.ProcessFile(ctx, "a.png", "image/png", strings.NewReader("img"))

	if h.publisher.events[0].RequestID != "req-42" {
		t.Fatalf("expected request id in event, got %+v", h.publisher.events[0])
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"report.pdf":           "report.pdf",
		"../../etc/passwd":     "passwd",
		`C:\scans\blood 1.jpg`: "blood_1.jpg",
		"résumé.png":           "r_sum_.png",
		"":                     "document.bin",
		"...":                  "document.bin",
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Fatalf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeFilenameCapsLength(t *testing.T) {
	long := strings.Repeat("blood_report_", 40)
	tests := []struct {
		name   string
		in     string
		suffix string
	}{
		{name: "keeps extension", in: long + ".pdf", suffix: ".pdf"},
		{name: "no extension", in: long, suffix: "blood"},
		{name: "multibyte input", in: strings.Repeat("é", 300) + ".png", suffix: ".png"},
		{name: "oversized extension dropped", in: long + "." + strings.Repeat("x", 40), suffix: "blood"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.in)
			if len(got) != MaxFilenameBytes {
				t.Fatalf("expected %d bytes, got %d", MaxFilenameBytes, len(got))
			}
			if !strings.HasSuffix(got, tt.suffix) {
				t.Fatalf("expected suffix %q, got %q", tt.suffix, got)
			}
			if key := uuid.NewString() + "_" + got; len(key) > 255 {
				t.Fatalf("storage key too long: %d bytes", len(key))
			}
		})
	}
}
