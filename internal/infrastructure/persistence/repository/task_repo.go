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

// TaskRepository implements port.WorkflowTaskRepository
type TaskRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sql.DB, logger *zap.Logger) port.WorkflowTaskRepository {
	return &TaskRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a new workflow task
func (r *TaskRepository) Create(ctx context.Context, task *entity.WorkflowTask) error {
	metadata, err := marshalMetadata(task.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO workflow_tasks (
			id, tenant_id, case_id, type, status, priority,
			title, description, assigned_role, assignee_id,
			metadata, notes, completed_at, completed_by,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.getExecutor(ctx).ExecContext(ctx, query,
		task.ID,
		task.TenantID,
		task.CaseID,
		task.Type,
		task.Status,
		task.Priority,
		nullString(task.Title),
		nullString(task.Description),
		nullString(task.AssignedRole),
		nullString(task.AssigneeID),
		metadata,
		nullString(task.Notes),
		task.CompletedAt,
		nullString(task.CompletedBy),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create task", zap.String("task_id", task.ID), zap.Error(err))
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by id scoped to a tenant
func (r *TaskRepository) GetByID(ctx context.Context, id, tenantID string) (*entity.WorkflowTask, error) {
	query := `
		SELECT id, tenant_id, case_id, type, status, priority,
			title, description, assigned_role, assignee_id,
			metadata, notes, completed_at, completed_by,
			created_at, updated_at
		FROM workflow_tasks
		WHERE id = ? AND tenant_id = ?
	`

	task, err := scanTask(r.getExecutor(ctx).QueryRowContext(ctx, query, id, tenantID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get task by ID", zap.String("task_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// Update persists the task's mutable fields
func (r *TaskRepository) Update(ctx context.Context, task *entity.WorkflowTask) error {
	metadata, err := marshalMetadata(task.Metadata)
	if err != nil {
		return err
	}

	query := `
		UPDATE workflow_tasks
		SET status = ?, priority = ?, assignee_id = ?, metadata = ?,
			notes = ?, completed_at = ?, completed_by = ?, updated_at = ?
		WHERE id = ? AND tenant_id = ?
	`

	_, err = r.getExecutor(ctx).ExecContext(ctx, query,
		task.Status,
		task.Priority,
		nullString(task.AssigneeID),
		metadata,
		nullString(task.Notes),
		task.CompletedAt,
		nullString(task.CompletedBy),
		task.UpdatedAt,
		task.ID,
		task.TenantID,
	)
	if err != nil {
		r.logger.Error("Failed to update task", zap.String("task_id", task.ID), zap.Error(err))
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

// List retrieves tasks for a tenant, narrowed by the filter, ordered by
// priority then recency.
func (r *TaskRepository) List(ctx context.Context, tenantID string, filter port.TaskFilter) ([]*entity.WorkflowTask, error) {
	query := `
		SELECT id, tenant_id, case_id, type, status, priority,
			title, description, assigned_role, assignee_id,
			metadata, notes, completed_at, completed_by,
			created_at, updated_at
		FROM workflow_tasks
		WHERE tenant_id = ?
	`
	args := []interface{}{tenantID}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.AssignedRole != "" {
		query += " AND assigned_role = ?"
		args = append(args, filter.AssignedRole)
	}
	if filter.AssigneeID != "" {
		query += " AND assignee_id = ?"
		args = append(args, filter.AssigneeID)
	}
	if filter.CaseID != "" {
		query += " AND case_id = ?"
		args = append(args, filter.CaseID)
	}

	query += `
		ORDER BY CASE priority
			WHEN 'CRITICAL' THEN 0
			WHEN 'HIGH' THEN 1
			WHEN 'MEDIUM' THEN 2
			ELSE 3
		END, created_at DESC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list tasks", zap.Error(err))
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*entity.WorkflowTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*entity.WorkflowTask, error) {
	var task entity.WorkflowTask
	var title, description, assignedRole, assigneeID sql.NullString
	var metadata, notes, completedBy sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&task.ID,
		&task.TenantID,
		&task.CaseID,
		&task.Type,
		&task.Status,
		&task.Priority,
		&title,
		&description,
		&assignedRole,
		&assigneeID,
		&metadata,
		&notes,
		&completedAt,
		&completedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Title = title.String
	task.Description = description.String
	task.AssignedRole = assignedRole.String
	task.AssigneeID = assigneeID.String
	task.Notes = notes.String
	task.CompletedBy = completedBy.String
	if completedAt.Valid {
		task.CompletedAt = &completedAt.Time
	}
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &task.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal task metadata: %w", err)
		}
	}

	return &task, nil
}

func marshalMetadata(m map[string]any) (sql.NullString, error) {
	if len(m) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal task metadata: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// getExecutor routes statements through the transaction in ctx, if any
func (r *TaskRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

// Verify interface compliance
var _ port.WorkflowTaskRepository = (*TaskRepository)(nil)
