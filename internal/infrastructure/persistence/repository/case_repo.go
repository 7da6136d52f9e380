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

// CaseRepository implements port.CaseRepository
type CaseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *sql.DB, logger *zap.Logger) port.CaseRepository {
	return &CaseRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a new case
func (r *CaseRepository) Create(ctx context.Context, c *entity.Case) error {
	history, err := json.Marshal(c.StateHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal state history: %w", err)
	}

	query := `
		INSERT INTO cases (
			id, tenant_id, workflow_template_id, current_state,
			state_history, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.getExecutor(ctx).ExecContext(ctx, query,
		c.ID,
		c.TenantID,
		c.WorkflowTemplateID,
		c.CurrentState.String(),
		string(history),
		c.Version,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create case", zap.String("case_id", c.ID), zap.Error(err))
		return fmt.Errorf("failed to create case: %w", err)
	}

	return nil
}

// GetByID retrieves a case by id scoped to a tenant
func (r *CaseRepository) GetByID(ctx context.Context, id, tenantID string) (*entity.Case, error) {
	query := `
		SELECT id, tenant_id, workflow_template_id, current_state,
			state_history, version, created_at, updated_at
		FROM cases
		WHERE id = ? AND tenant_id = ?
	`

	var c entity.Case
	var history string

	err := r.getExecutor(ctx).QueryRowContext(ctx, query, id, tenantID).Scan(
		&c.ID,
		&c.TenantID,
		&c.WorkflowTemplateID,
		&c.CurrentState,
		&history,
		&c.Version,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get case by ID", zap.String("case_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get case: %w", err)
	}

	if err := json.Unmarshal([]byte(history), &c.StateHistory); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state history: %w", err)
	}

	return &c, nil
}

// UpdateState performs the conditional write backing optimistic concurrency.
// The UPDATE only matches the row while its stored version still equals
// expectedVersion; zero rows affected means a concurrent writer won.
func (r *CaseRepository) UpdateState(ctx context.Context, c *entity.Case, expectedVersion int64) (bool, error) {
	history, err := json.Marshal(c.StateHistory)
	if err != nil {
		return false, fmt.Errorf("failed to marshal state history: %w", err)
	}

	query := `
		UPDATE cases
		SET current_state = ?, state_history = ?, version = ?, updated_at = ?
		WHERE id = ? AND tenant_id = ? AND version = ?
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		c.CurrentState.String(),
		string(history),
		c.Version,
		c.UpdatedAt,
		c.ID,
		c.TenantID,
		expectedVersion,
	)
	if err != nil {
		r.logger.Error("Failed to update case state", zap.String("case_id", c.ID), zap.Error(err))
		return false, fmt.Errorf("failed to update case state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected == 1, nil
}

// getExecutor routes statements through the transaction in ctx, if any
func (r *CaseRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

// Verify interface compliance
var _ port.CaseRepository = (*CaseRepository)(nil)
