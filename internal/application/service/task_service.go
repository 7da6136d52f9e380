package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ajabadia/caseflow/internal/apperror"
	"github.com/ajabadia/caseflow/internal/application/port"
	"github.com/ajabadia/caseflow/internal/domain/entity"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// CreateTaskRequest carries the parameters for creating a workflow task.
// Tasks are created by an external orchestrator when a case reaches a step
// requiring action; decision tasks carry the AI proposal in Metadata.
type CreateTaskRequest struct {
	TenantID      string
	CaseID        string
	Type          string
	Title         string
	Description   string
	AssignedRole  string
	AssigneeID    string
	Priority      string
	Metadata      map[string]any
	ActorID       string
	CorrelationID string
}

// UpdateStatusRequest carries the parameters for a task status update.
type UpdateStatusRequest struct {
	TaskID        string
	TenantID      string
	ActorID       string
	ActorName     string
	Status        string
	Notes         string
	Metadata      map[string]any
	CorrelationID string
}

// TaskService manages the workflow-task lifecycle. UpdateStatus is a pure
// data operation: deciding whether a status change triggers a case
// transition is the caller's responsibility (see WorkflowService).
type TaskService interface {
	// Create creates a new task in PENDING status
	Create(ctx context.Context, req CreateTaskRequest) (*entity.WorkflowTask, error)

	// GetByID retrieves a task scoped to a tenant
	GetByID(ctx context.Context, taskID, tenantID string) (*entity.WorkflowTask, error)

	// List retrieves tasks for a tenant with optional filters
	List(ctx context.Context, tenantID string, filter port.TaskFilter) ([]*entity.WorkflowTask, error)

	// UpdateStatus loads the task, enforces tenant isolation and the
	// terminal-status guard, merges metadata, persists and returns the
	// updated task
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*entity.WorkflowTask, error)
}

type taskServiceImpl struct {
	taskRepo port.WorkflowTaskRepository
	auditor  AuditRecorder
	logger   Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo port.WorkflowTaskRepository, auditor AuditRecorder, logger Logger) TaskService {
	return &taskServiceImpl{
		taskRepo: taskRepo,
		auditor:  auditor,
		logger:   logger,
	}
}

// Create creates a new task in PENDING status.
func (s *taskServiceImpl) Create(ctx context.Context, req CreateTaskRequest) (*entity.WorkflowTask, error) {
	if req.CaseID == "" {
		return nil, apperror.NewValidation("caseId is required")
	}
	if req.Type == "" {
		return nil, apperror.NewValidation("task type is required")
	}

	now := time.Now().UTC()
	task := &entity.WorkflowTask{
		ID:           uuid.NewString(),
		CaseID:       req.CaseID,
		TenantID:     req.TenantID,
		Type:         req.Type,
		Status:       entity.TaskStatusPending,
		Title:        req.Title,
		Description:  req.Description,
		AssignedRole: req.AssignedRole,
		AssigneeID:   req.AssigneeID,
		Priority:     req.Priority,
		Metadata:     req.Metadata,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if task.Priority == "" {
		task.Priority = entity.TaskPriorityMedium
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		s.logger.Error("Failed to create task",
			"error", err,
			"case_id", req.CaseID,
			"correlation_id", req.CorrelationID)
		return nil, apperror.NewPersistence("create task", err)
	}

	s.auditor.Record(ctx, &entity.AuditEntry{
		CorrelationID: req.CorrelationID,
		ActorID:       req.ActorID,
		TenantID:      req.TenantID,
		Action:        entity.AuditActionTaskCreated,
		CaseID:        req.CaseID,
		TaskID:        task.ID,
		Details:       map[string]any{"type": task.Type, "assigned_role": task.AssignedRole},
	})

	s.logger.Info("Task created",
		"task_id", task.ID,
		"case_id", task.CaseID,
		"type", task.Type,
		"correlation_id", req.CorrelationID)

	return task, nil
}

// GetByID retrieves a task scoped to a tenant.
func (s *taskServiceImpl) GetByID(ctx context.Context, taskID, tenantID string) (*entity.WorkflowTask, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID, tenantID)
	if err != nil {
		s.logger.Error("Failed to get task", "error", err, "task_id", taskID)
		return nil, apperror.NewPersistence("get task", err)
	}
	if task == nil {
		return nil, apperror.NewNotFound("task", taskID)
	}
	return task, nil
}

// List retrieves tasks for a tenant with optional filters.
func (s *taskServiceImpl) List(ctx context.Context, tenantID string, filter port.TaskFilter) ([]*entity.WorkflowTask, error) {
	tasks, err := s.taskRepo.List(ctx, tenantID, filter)
	if err != nil {
		s.logger.Error("Failed to list tasks", "error", err, "tenant_id", tenantID)
		return nil, apperror.NewPersistence("list tasks", err)
	}
	return tasks, nil
}

// UpdateStatus applies a status change to a task.
//
// Tenant isolation: a task belonging to another tenant is reported as not
// found, never as forbidden. Terminal guard: tasks in COMPLETED, REJECTED
// or CANCELLED reject any further status write, including a repeat of the
// same status, so double submissions surface instead of silently passing.
func (s *taskServiceImpl) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*entity.WorkflowTask, error) {
	if !entity.IsValidTaskStatus(req.Status) {
		return nil, apperror.NewValidation("invalid task status: %s", req.Status)
	}

	task, err := s.taskRepo.GetByID(ctx, req.TaskID, req.TenantID)
	if err != nil {
		s.logger.Error("Failed to load task",
			"error", err,
			"task_id", req.TaskID,
			"correlation_id", req.CorrelationID)
		return nil, apperror.NewPersistence("load task", err)
	}
	if task == nil {
		return nil, apperror.NewNotFound("task", req.TaskID)
	}

	if task.IsTerminal() {
		return nil, apperror.NewInvalidState("task %s is already %s", task.ID, task.Status)
	}

	task.MergeMetadata(req.Metadata)
	task.Status = req.Status
	if req.Notes != "" {
		task.Notes = req.Notes
	}
	now := time.Now().UTC()
	task.UpdatedAt = now
	if req.Status == entity.TaskStatusCompleted {
		task.CompletedAt = &now
		task.CompletedBy = req.ActorID
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		s.logger.Error("Failed to update task status",
			"error", err,
			"task_id", task.ID,
			"status", req.Status,
			"correlation_id", req.CorrelationID)
		return nil, apperror.NewPersistence("update task", err)
	}

	s.auditor.Record(ctx, &entity.AuditEntry{
		CorrelationID: req.CorrelationID,
		ActorID:       req.ActorID,
		TenantID:      req.TenantID,
		Action:        entity.AuditActionTaskStatusUpdate,
		CaseID:        task.CaseID,
		TaskID:        task.ID,
		Details:       map[string]any{"status": req.Status, "notes": req.Notes},
	})

	s.logger.Info("Task status updated",
		"task_id", task.ID,
		"status", req.Status,
		"actor_id", req.ActorID,
		"correlation_id", req.CorrelationID)

	return task, nil
}
