package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNoFile            = errors.New("no file uploaded")
	ErrPayloadTooLarge   = errors.New("payload too large")
	ErrUnsupportedFile   = errors.New("unsupported file format")
	ErrOCRFailure        = errors.New("ocr failure")
	ErrLLMFailure        = errors.New("llm failure")
	ErrTemporary         = errors.New("temporary failure")
	ErrEngineUnavailable = errors.New("engine unavailable")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
