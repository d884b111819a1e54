//go:build cgo

package tesseract

import (
	"context"
	"fmt"
	"strconv"

	"github.com/otiai10/gosseract/v2"
)

func (e *Engine) Recognize(ctx context.Context, image []byte) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.cfg.Languages...); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}
	if e.cfg.DPI > 0 {
		if err := client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(e.cfg.DPI)); err != nil {
			return nil, fmt.Errorf("set dpi: %w", err)
		}
	}
	if e.cfg.PageSegMode > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(e.cfg.PageSegMode)); err != nil {
			return nil, fmt.Errorf("set page segmentation mode: %w", err)
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}
	return SplitLines(text), nil
}
