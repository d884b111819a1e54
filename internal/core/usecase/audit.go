package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/medreport-assistant/internal/core/domain"
	"github.com/kirillkom/medreport-assistant/internal/core/ports"
)

const auditService = "medreport-worker"

// RecordAuditUseCase stores processed-report events. Redelivered events are
// written once; the repository ignores duplicate ids.
type RecordAuditUseCase struct {
	repo     ports.AuditRepository
	observer ports.AuditObserver
	logger   *slog.Logger
	now      func() time.Time
}

func NewRecordAuditUseCase(repo ports.AuditRepository, observer ports.AuditObserver) *RecordAuditUseCase {
	return &RecordAuditUseCase{
		repo:     repo,
		observer: observer,
		logger:   slog.Default(),
		now:      time.Now,
	}
}

func (uc *RecordAuditUseCase) Record(ctx context.Context, event domain.ReportProcessed) (err error) {
	const op = "usecase.RecordAudit"

	if strings.TrimSpace(event.ID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, op, errors.New("event id is required"))
	}

	start := uc.now()
	if uc.observer != nil {
		uc.observer.StartEvent()
		if !event.ProcessedAt.IsZero() {
			uc.observer.ObserveEventLag(auditService, start.Sub(event.ProcessedAt))
		}
		defer func() {
			uc.observer.FinishEvent(auditService, uc.now().Sub(start), err)
		}()
	}

	if err = uc.repo.SaveRun(ctx, event); err != nil {
		uc.logger.Error("audit_save_failed", "request_id", event.RequestID, "report_id", event.ID, "error", err)
		return domain.WrapError(domain.ErrTemporary, op, err)
	}

	uc.logger.Info("audit_saved",
		"request_id", event.RequestID,
		"report_id", event.ID,
		"outcome", string(event.Outcome),
		"document_type", string(event.DocumentType),
	)
	return nil
}
