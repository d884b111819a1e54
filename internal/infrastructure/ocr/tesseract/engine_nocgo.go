//go:build !cgo

package tesseract

import (
	"context"
	"errors"

	"github.com/kirillkom/medreport-assistant/internal/core/domain"
)

func (e *Engine) Recognize(context.Context, []byte) ([]string, error) {
	return nil, domain.WrapError(domain.ErrEngineUnavailable, "tesseract", errors.New("binary built without cgo"))
}
