package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	httpadapter "github.com/kirillkom/medreport-assistant/internal/adapters/http"
	"github.com/kirillkom/medreport-assistant/internal/config"
	"github.com/kirillkom/medreport-assistant/internal/core/ports"
	"github.com/kirillkom/medreport-assistant/internal/core/textproc"
	"github.com/kirillkom/medreport-assistant/internal/core/usecase"
	ocrextractor "github.com/kirillkom/medreport-assistant/internal/infrastructure/extractor/ocr"
	"github.com/kirillkom/medreport-assistant/internal/infrastructure/ocr/preprocess"
	"github.com/kirillkom/medreport-assistant/internal/infrastructure/ocr/tesseract"
	"github.com/kirillkom/medreport-assistant/internal/infrastructure/pdf/poppler"
	"github.com/kirillkom/medreport-assistant/internal/infrastructure/prompts"
	"github.com/kirillkom/medreport-assistant/internal/infrastructure/queue/nats"
	"github.com/kirillkom/medreport-assistant/internal/infrastructure/render"
	"github.com/kirillkom/medreport-assistant/internal/infrastructure/resilience"
	"github.com/kirillkom/medreport-assistant/internal/infrastructure/spelling/fuzzy"
	"github.com/kirillkom/medreport-assistant/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/medreport-assistant/internal/observability/metrics"
)

const apiService = "medreport-api"

// API holds the wired HTTP side of the service.
type API struct {
	Config  config.Config
	Handler http.Handler

	closeFn func()
}

func NewAPI(_ context.Context, cfg config.Config) (*API, error) {
	if _, err := httpadapter.LoadOpenAPI(); err != nil {
		return nil, fmt.Errorf("openapi document: %w", err)
	}

	storage, err := localfs.New(cfg.ScratchDir)
	if err != nil {
		return nil, fmt.Errorf("init scratch storage: %w", err)
	}

	httpMetrics := metrics.NewHTTPServerMetrics(apiService)
	pipelineMetrics := metrics.NewPipelineMetrics(apiService, httpMetrics.Registry())

	extractor := ocrextractor.NewExtractor(
		newOCREngine(cfg),
		poppler.New(cfg.PDFToPPMPath, cfg.OCRDPI),
		storage,
	)

	corrector, err := newCorrector(cfg)
	if err != nil {
		return nil, err
	}

	promptBuilder, err := prompts.Load(cfg.PromptsFile)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	executor := resilience.NewExecutor(
		resilienceConfig(cfg),
		resilience.WithStateListener(pipelineMetrics.BreakerStateChanged),
	)
	generator, err := newTextGenerator(cfg, executor, pipelineMetrics)
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}

	severity := usecase.NewSeverityClassifier(generator, promptBuilder)
	summarizer := usecase.NewSummarizer(generator, promptBuilder, render.New(cfg.RenderMarkdown), severity)

	publisher, closePublisher, err := newPublisher(cfg)
	if err != nil {
		return nil, err
	}

	processor := usecase.NewProcessReportUseCase(storage, extractor, corrector, summarizer, publisher, pipelineMetrics)
	router := httpadapter.NewRouter(cfg, processor, httpMetrics)

	return &API{
		Config:  cfg,
		Handler: router.Handler(),
		closeFn: closePublisher,
	}, nil
}

func (a *API) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func newOCREngine(cfg config.Config) ports.OCREngine {
	var engine ports.OCREngine = tesseract.New(tesseract.Config{
		Languages:   cfg.OCRLanguages,
		DPI:         cfg.OCRDPI,
		PageSegMode: cfg.OCRPageSeg,
	})
	if !cfg.OCRPreprocess {
		return engine
	}
	opts := preprocess.DefaultOptions()
	opts.Contrast = cfg.OCRContrast
	opts.Binarize = cfg.OCRBinarize
	return preprocess.NewEngine(engine, opts)
}

func newCorrector(cfg config.Config) (*textproc.Corrector, error) {
	if !cfg.SpellEnabled {
		return textproc.NewCorrector(nil), nil
	}
	dict, err := fuzzy.New(fuzzy.Options{
		ExtraWordsPath: cfg.SpellDictionaryPath,
		MinWordLength:  cfg.SpellMinWordLength,
		MaxDistance:    cfg.SpellMaxDistance,
		MinFrequency:   cfg.SpellMinFrequency,
	})
	if err != nil {
		return nil, fmt.Errorf("init spelling dictionary: %w", err)
	}
	slog.Info("spelling_dictionary_loaded", "words", dict.Size())
	return textproc.NewCorrector(dict), nil
}

// newPublisher connects to NATS when NATS_URL is set. Without it events are dropped.
func newPublisher(cfg config.Config) (ports.EventPublisher, func(), error) {
	if cfg.NATSURL == "" {
		slog.Info("report_events_disabled", "reason", "NATS_URL is empty")
		return nats.Discard{}, func() {}, nil
	}
	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		Name:               apiService,
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init event publisher: %w", err)
	}
	return queue, queue.Close, nil
}

func resilienceConfig(cfg config.Config) resilience.Config {
	rc := resilience.DefaultConfig()
	rc.RetryMaxAttempts = cfg.LLMRetryMaxAttempts
	rc.RetryInitialBackoff = cfg.LLMRetryInitialBackoff
	rc.BreakerEnabled = cfg.LLMBreakerEnabled
	if cfg.LLMBreakerMinRequests > 0 {
		rc.BreakerMinRequests = uint32(cfg.LLMBreakerMinRequests)
	}
	rc.BreakerFailureRatio = cfg.LLMBreakerFailureRatio
	rc.BreakerOpenTimeout = cfg.LLMBreakerOpenTimeout
	return rc
}
