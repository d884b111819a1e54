package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/kirillkom/medreport-assistant/internal/core/domain"
)

// storeUpload writes the upload to scratch storage under a per-file unique key.
// The returned cleanup removes it again and is safe to call on every exit path.
func (uc *ProcessReportUseCase) storeUpload(
	ctx context.Context,
	id, filename, mimeType string,
	body io.Reader,
) (domain.StoredFile, func(), error) {
	key := fmt.Sprintf("%s_%s", id, filename)
	path, size, err := uc.storage.Save(ctx, key, body)
	if err != nil {
		return domain.StoredFile{}, func() {}, fmt.Errorf("save to scratch storage: %w", err)
	}

	cleanup := func() {
		if err := uc.storage.Remove(context.WithoutCancel(ctx), key); err != nil {
			uc.logger.Warn("scratch_cleanup_failed", "request_id", domain.RequestIDFromContext(ctx), "key", key, "error", err)
		}
	}

	return domain.StoredFile{
		Filename: filename,
		MimeType: mimeType,
		Key:      key,
		Path:     path,
		Size:     size,
	}, cleanup, nil
}

const (
	// MaxFilenameBytes keeps "<uuid>_<name>" within the usual 255-byte file name limit.
	MaxFilenameBytes  = 200
	maxExtensionBytes = 16
)

// SanitizeFilename strips directories and maps every character outside
// [A-Za-z0-9._-] to an underscore. Long names are cut to MaxFilenameBytes,
// keeping a short extension.
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		base = ""
	}
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	base = strings.TrimLeft(base, ".")
	if base == "" {
		return "document.bin"
	}
	if len(base) > MaxFilenameBytes {
		ext := filepath.Ext(base)
		if len(ext) > maxExtensionBytes {
			ext = ""
		}
		base = base[:MaxFilenameBytes-len(ext)] + ext
	}
	return base
}
