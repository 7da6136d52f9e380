package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ajabadia/caseflow/internal/application/port"
	"github.com/ajabadia/caseflow/internal/domain/entity"
)

// FeedbackRecorder captures (AI suggestion, human decision) pairs for
// offline model tuning. It is explicitly best-effort: losing a
// training-signal write must not block a user-visible workflow action, so
// persistence failures are logged with the triggering request's
// correlation id and swallowed. Retried requests may produce duplicate
// records; deduplication is an offline concern.
type FeedbackRecorder interface {
	Record(ctx context.Context, record *entity.FeedbackRecord, correlationID string)
}

type feedbackRecorderImpl struct {
	feedbackRepo port.FeedbackRepository
	auditRepo    port.AuditRepository
	tx           port.TransactionManager
	logger       Logger
}

// NewFeedbackRecorder creates a new FeedbackRecorder
func NewFeedbackRecorder(
	feedbackRepo port.FeedbackRepository,
	auditRepo port.AuditRepository,
	tx port.TransactionManager,
	logger Logger,
) FeedbackRecorder {
	return &feedbackRecorderImpl{
		feedbackRepo: feedbackRepo,
		auditRepo:    auditRepo,
		tx:           tx,
		logger:       logger,
	}
}

// Record persists one feedback record together with its audit entry, never
// returning an error. The two writes commit atomically so the ledger never
// references a record that was rolled back.
func (s *feedbackRecorderImpl) Record(ctx context.Context, record *entity.FeedbackRecord, correlationID string) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CorrelationID == "" {
		record.CorrelationID = correlationID
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	entry := &entity.AuditEntry{
		ID:            uuid.NewString(),
		CorrelationID: record.CorrelationID,
		TenantID:      record.TenantID,
		Action:        entity.AuditActionFeedbackRecorded,
		TaskID:        record.TaskID,
		Details: map[string]any{
			"model_suggestion": record.ModelSuggestion,
			"human_decision":   record.HumanDecision,
		},
		CreatedAt: record.CreatedAt,
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.feedbackRepo.Create(ctx, record); err != nil {
			return err
		}
		return s.auditRepo.Create(ctx, entry)
	})
	if err != nil {
		s.logger.Error("Failed to record feedback",
			"error", err,
			"task_id", record.TaskID,
			"correlation_id", correlationID)
		return
	}

	s.logger.Info("Feedback recorded",
		"task_id", record.TaskID,
		"model_suggestion", record.ModelSuggestion,
		"human_decision", record.HumanDecision,
		"correlation_id", correlationID)
}
