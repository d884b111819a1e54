package ports

import (
	"context"
	"io"

	"github.com/kirillkom/medreport-assistant/internal/core/domain"
)

// ReportProcessor is the inbound contract for summarizing a single uploaded report.
type ReportProcessor interface {
	ProcessFile(ctx context.Context, filename, mimeType string, body io.Reader) domain.DocumentResult
}

// AuditRecorder is the inbound contract for persisting processed-report events.
type AuditRecorder interface {
	Record(ctx context.Context, event domain.ReportProcessed) error
}
