package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ajabadia/caseflow/internal/application/port"
	"github.com/ajabadia/caseflow/internal/domain/workflow"
	"github.com/ajabadia/caseflow/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// TemplateRepository implements port.TemplateRepository. Template rows are
// authored by the external template service; this side only reads the JSON
// definition column and decodes it.
type TemplateRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *sql.DB, logger *zap.Logger) port.TemplateRepository {
	return &TemplateRepository{
		db:     db,
		logger: logger,
	}
}

// GetDefinition retrieves a template definition by id scoped to a tenant
func (r *TemplateRepository) GetDefinition(ctx context.Context, templateID, tenantID string) (*workflow.TemplateDefinition, error) {
	query := `
		SELECT definition
		FROM workflow_templates
		WHERE id = ? AND tenant_id = ?
	`

	var raw string
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, templateID, tenantID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get template definition", zap.String("template_id", templateID), zap.Error(err))
		return nil, fmt.Errorf("failed to get template definition: %w", err)
	}

	var def workflow.TemplateDefinition
	if err := json.Unmarshal([]byte(raw), &def); err != nil {
		return nil, fmt.Errorf("failed to unmarshal template definition: %w", err)
	}

	return &def, nil
}

// getExecutor routes statements through the transaction in ctx, if any
func (r *TemplateRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

// Verify interface compliance
var _ port.TemplateRepository = (*TemplateRepository)(nil)
