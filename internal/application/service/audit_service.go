package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ajabadia/caseflow/internal/application/port"
	"github.com/ajabadia/caseflow/internal/domain/entity"
)

// AuditRecorder appends entries to the audit ledger. Recording is
// fire-and-forget from the caller's perspective: a failed append is logged
// but never blocks the business write it describes. Entries are appended
// synchronously within the request, which preserves ordering per
// correlation id.
type AuditRecorder interface {
	Record(ctx context.Context, entry *entity.AuditEntry)
}

type auditRecorderImpl struct {
	auditRepo port.AuditRepository
	logger    Logger
}

// NewAuditRecorder creates a new AuditRecorder
func NewAuditRecorder(auditRepo port.AuditRepository, logger Logger) AuditRecorder {
	return &auditRecorderImpl{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Record appends one audit entry, filling in id and timestamp.
func (s *auditRecorderImpl) Record(ctx context.Context, entry *entity.AuditEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to write audit entry",
			"error", err,
			"action", entry.Action,
			"correlation_id", entry.CorrelationID)
	}
}
