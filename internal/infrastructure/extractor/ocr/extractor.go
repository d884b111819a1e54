// Package ocr extracts text from uploaded images and PDFs by running OCR over
// every page.
package ocr

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kirillkom/medreport-assistant/internal/core/domain"
	"github.com/kirillkom/medreport-assistant/internal/core/ports"
)

const sniffLen = 16

type Extractor struct {
	engine   ports.OCREngine
	renderer ports.PageRenderer
	storage  ports.ScratchStorage
}

func NewExtractor(engine ports.OCREngine, renderer ports.PageRenderer, storage ports.ScratchStorage) *Extractor {
	return &Extractor{engine: engine, renderer: renderer, storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, file domain.StoredFile) (domain.Extraction, error) {
	const op = "extractor.ocr.Extract"

	head, err := readHead(file.Path)
	if err != nil {
		return domain.Extraction{}, domain.WrapError(domain.ErrOCRFailure, op, err)
	}

	switch Detect(head, file.Filename) {
	case KindPDF:
		return e.extractPDF(ctx, file)
	case KindImage:
		return e.extractImage(ctx, file)
	default:
		return domain.Extraction{}, domain.WrapError(domain.ErrUnsupportedFile, op, fmt.Errorf("cannot read %s as an image or PDF", file.Filename))
	}
}

func (e *Extractor) extractImage(ctx context.Context, file domain.StoredFile) (domain.Extraction, error) {
	const op = "extractor.ocr.extractImage"

	lines, err := e.recognizeFile(ctx, file.Path)
	if err != nil {
		return domain.Extraction{}, domain.WrapError(domain.ErrOCRFailure, op, err)
	}
	return domain.Extraction{Text: strings.Join(lines, "\n"), Pages: 1}, nil
}

func (e *Extractor) extractPDF(ctx context.Context, file domain.StoredFile) (domain.Extraction, error) {
	const op = "extractor.ocr.extractPDF"

	dir, cleanup, err := e.storage.TempDir(ctx, "pages-")
	if err != nil {
		return domain.Extraction{}, domain.WrapError(domain.ErrOCRFailure, op, err)
	}
	defer cleanup()

	pages, err := e.renderer.RenderPages(ctx, file.Path, dir)
	if err != nil {
		return domain.Extraction{}, domain.WrapError(domain.ErrOCRFailure, op, fmt.Errorf("render pages: %w", err))
	}

	texts := make([]string, 0, len(pages))
	for i, page := range pages {
		lines, err := e.recognizeFile(ctx, page)
		if err != nil {
			return domain.Extraction{}, domain.WrapError(domain.ErrOCRFailure, op, fmt.Errorf("page %d: %w", i+1, err))
		}
		texts = append(texts, strings.Join(lines, "\n"))
	}
	return domain.Extraction{Text: strings.Join(texts, "\n"), Pages: len(pages)}, nil
}

func (e *Extractor) recognizeFile(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	lines, err := e.engine.Recognize(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.engine.Name(), err)
	}
	return lines, nil
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return buf[:n], nil
}
