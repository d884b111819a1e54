package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/medreport-assistant/internal/core/domain"
)

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// scriptedGenerator answers summary and severity prompts independently.
type scriptedGenerator struct {
	mu          sync.Mutex
	summary     string
	summaryErr  error
	severity    string
	severityErr error
	prompts     []string
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()

	if strings.HasPrefix(prompt, "SEVERITY:") {
		return g.severity, g.severityErr
	}
	return g.summary, g.summaryErr
}

type promptFake struct {
	err error
}

func (p promptFake) SummaryPrompt(report string, docType domain.DocumentType) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return "SUMMARY[" + string(docType) + "]:" + report, nil
}

func (p promptFake) SeverityPrompt(summary string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return "SEVERITY:" + summary, nil
}

type rendererFake struct {
	err error
}

func (r rendererFake) Render(raw string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "<p>" + raw + "</p>", nil
}

type storageFake struct {
	saveErr error
	saved   map[string]string
	removed []string
}

func newStorageFake() *storageFake {
	return &storageFake{saved: map[string]string{}}
}

func (s *storageFake) Save(_ context.Context, key string, data io.Reader) (string, int64, error) {
	if s.saveErr != nil {
		return "", 0, s.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return "", 0, err
	}
	s.saved[key] = string(raw)
	return "/scratch/" + key, int64(len(raw)), nil
}

func (s *storageFake) Remove(_ context.Context, key string) error {
	s.removed = append(s.removed, key)
	return nil
}

func (s *storageFake) TempDir(context.Context, string) (string, func(), error) {
	return "/scratch/tmp", func() {}, nil
}

type extractorFake struct {
	text  string
	pages int
	err   error
	files []domain.StoredFile
}

func (f *extractorFake) Extract(_ context.Context, file domain.StoredFile) (domain.Extraction, error) {
	f.files = append(f.files, file)
	if f.err != nil {
		return domain.Extraction{}, f.err
	}
	return domain.Extraction{Text: f.text, Pages: f.pages}, nil
}

type publisherFake struct {
	events []domain.ReportProcessed
	err    error
}

func (p *publisherFake) PublishReportProcessed(_ context.Context, event domain.ReportProcessed) error {
	p.events = append(p.events, event)
	return p.err
}

type observerFake struct {
	stages  []string
	results []domain.DocumentResult
}

func (o *observerFake) ObserveStage(stage string, _ time.Duration, _ error) {
	o.stages = append(o.stages, stage)
}

func (o *observerFake) RecordResult(result domain.DocumentResult) {
	o.results = append(o.results, result)
}

var errLLMDown = errors.New("llm unavailable")
