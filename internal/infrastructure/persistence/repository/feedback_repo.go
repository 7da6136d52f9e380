package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ajabadia/caseflow/internal/application/port"
	"github.com/ajabadia/caseflow/internal/domain/entity"
	"github.com/ajabadia/caseflow/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// FeedbackRepository implements port.FeedbackRepository
type FeedbackRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *sql.DB, logger *zap.Logger) port.FeedbackRepository {
	return &FeedbackRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists one feedback record
func (r *FeedbackRepository) Create(ctx context.Context, record *entity.FeedbackRecord) error {
	query := `
		INSERT INTO feedback_records (
			id, tenant_id, task_id, workflow_id, node_label, model_suggestion,
			human_decision, category, rejection_reason, correlation_id,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		record.ID,
		record.TenantID,
		record.TaskID,
		nullString(record.WorkflowID),
		nullString(record.NodeLabel),
		record.ModelSuggestion,
		record.HumanDecision,
		nullString(record.Category),
		nullString(record.RejectionReason),
		record.CorrelationID,
		record.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create feedback record", zap.String("task_id", record.TaskID), zap.Error(err))
		return fmt.Errorf("failed to create feedback record: %w", err)
	}

	return nil
}

// getExecutor routes statements through the transaction in ctx, if any
func (r *FeedbackRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

// Verify interface compliance
var _ port.FeedbackRepository = (*FeedbackRepository)(nil)
