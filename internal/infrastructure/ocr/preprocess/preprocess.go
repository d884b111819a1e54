// Package preprocess prepares scanned pages for OCR: grayscale, contrast and
// optional binarization, re-encoded as PNG.
package preprocess

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/kirillkom/medreport-assistant/internal/core/ports"
)

type Options struct {
	// Contrast is a percentage in [-100, 100] passed to imaging.AdjustContrast.
	Contrast float64
	// MaxDimension downsizes larger images to fit inside a square of this size. Zero disables it.
	MaxDimension int
	Binarize     bool
	// Threshold is the gray level separating ink from paper when Binarize is set.
	Threshold uint8
}

func DefaultOptions() Options {
	return Options{
		Contrast:     20,
		MaxDimension: 4000,
		Threshold:    150,
	}
}

// Engine decorates an OCR engine with image preprocessing.
type Engine struct {
	next ports.OCREngine
	opts Options
}

func NewEngine(next ports.OCREngine, opts Options) *Engine {
	return &Engine{next: next, opts: opts}
}

func (e *Engine) Name() string { return e.next.Name() + "+preprocess" }

func (e *Engine) Recognize(ctx context.Context, data []byte) ([]string, error) {
	prepared, err := Prepare(data, e.opts)
	if err != nil {
		return nil, fmt.Errorf("preprocess image: %w", err)
	}
	return e.next.Recognize(ctx, prepared)
}

func Prepare(data []byte, opts Options) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if opts.MaxDimension > 0 && (bounds.Dx() > opts.MaxDimension || bounds.Dy() > opts.MaxDimension) {
		img = imaging.Fit(img, opts.MaxDimension, opts.MaxDimension, imaging.Lanczos)
	}

	gray := imaging.Grayscale(img)
	if opts.Contrast != 0 {
		gray = imaging.AdjustContrast(gray, opts.Contrast)
	}

	var out image.Image = gray
	if opts.Binarize {
		out = segment.Threshold(gray, opts.Threshold)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
