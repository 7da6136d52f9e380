package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ajabadia/caseflow/internal/application/port"
	"github.com/ajabadia/caseflow/internal/domain/entity"
	"github.com/ajabadia/caseflow/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// AuditRepository implements port.AuditRepository. The ledger is insert-only;
// there are no update or delete paths.
type AuditRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB, logger *zap.Logger) port.AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends one audit entry
func (r *AuditRepository) Create(ctx context.Context, entry *entity.AuditEntry) error {
	var details sql.NullString
	if len(entry.Details) > 0 {
		data, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal audit details: %w", err)
		}
		details = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		INSERT INTO audit_log (
			id, correlation_id, actor_id, tenant_id, action,
			case_id, task_id, details, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		entry.ID,
		entry.CorrelationID,
		entry.ActorID,
		entry.TenantID,
		entry.Action,
		nullString(entry.CaseID),
		nullString(entry.TaskID),
		details,
		entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create audit entry", zap.String("action", entry.Action), zap.Error(err))
		return fmt.Errorf("failed to create audit entry: %w", err)
	}

	return nil
}

// getExecutor routes statements through the transaction in ctx, if any
func (r *AuditRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

// Verify interface compliance
var _ port.AuditRepository = (*AuditRepository)(nil)
