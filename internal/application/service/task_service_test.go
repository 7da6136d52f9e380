package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ajabadia/caseflow/internal/apperror"
	"github.com/ajabadia/caseflow/internal/application/port"
	"github.com/ajabadia/caseflow/internal/domain/entity"
)

func pendingTask(id string) *entity.WorkflowTask {
	return &entity.WorkflowTask{
		ID:       id,
		CaseID:   "case-1",
		TenantID: "tenant-a",
		Type:     entity.TaskTypeWorkflowDecision,
		Status:   entity.TaskStatusPending,
		Metadata: map[string]any{"a": "keep"},
	}
}

func TestTaskService_UpdateStatus(t *testing.T) {
	repo := newMemTaskRepo(pendingTask("task-1"))
	auditor := &recordingAuditor{}
	svc := NewTaskService(repo, auditor, &mockLogger{})

	task, err := svc.UpdateStatus(context.Background(), UpdateStatusRequest{
		TaskID:        "task-1",
		TenantID:      "tenant-a",
		ActorID:       "user-1",
		ActorName:     "Ana",
		Status:        entity.TaskStatusCompleted,
		Notes:         "looks good",
		Metadata:      map[string]any{"b": "new"},
		CorrelationID: "corr-1",
	})
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	if task.Status != entity.TaskStatusCompleted {
		t.Errorf("Status = %v, want COMPLETED", task.Status)
	}
	if task.Notes != "looks good" {
		t.Errorf("Notes = %v, want looks good", task.Notes)
	}
	if task.Metadata["a"] != "keep" || task.Metadata["b"] != "new" {
		t.Errorf("Metadata = %v, want shallow merge", task.Metadata)
	}
	if task.CompletedAt == nil || task.CompletedBy != "user-1" {
		t.Errorf("completion info = (%v, %v), want set", task.CompletedAt, task.CompletedBy)
	}

	actions := auditor.actions()
	if len(actions) != 1 || actions[0] != entity.AuditActionTaskStatusUpdate {
		t.Errorf("audit actions = %v, want [TASK_STATUS_UPDATE]", actions)
	}
}

func TestTaskService_UpdateStatus_TenantIsolation(t *testing.T) {
	repo := newMemTaskRepo(pendingTask("task-1"))
	svc := NewTaskService(repo, &recordingAuditor{}, &mockLogger{})

	// A task in another tenant must look exactly like a missing task.
	_, err := svc.UpdateStatus(context.Background(), UpdateStatusRequest{
		TaskID:   "task-1",
		TenantID: "tenant-b",
		Status:   entity.TaskStatusInProgress,
	})
	var nf *apperror.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
}

func TestTaskService_UpdateStatus_TerminalGuard(t *testing.T) {
	for _, terminal := range []string{entity.TaskStatusCompleted, entity.TaskStatusRejected, entity.TaskStatusCancelled} {
		t.Run(terminal, func(t *testing.T) {
			task := pendingTask("task-1")
			task.Status = terminal
			repo := newMemTaskRepo(task)
			svc := NewTaskService(repo, &recordingAuditor{}, &mockLogger{})

			// Repeating the same terminal status is rejected too.
			for _, next := range []string{entity.TaskStatusInProgress, terminal} {
				_, err := svc.UpdateStatus(context.Background(), UpdateStatusRequest{
					TaskID:   "task-1",
					TenantID: "tenant-a",
					Status:   next,
				})
				var ise *apperror.InvalidStateError
				if !errors.As(err, &ise) {
					t.Errorf("UpdateStatus(%s -> %s) error = %v, want InvalidStateError", terminal, next, err)
				}
			}
		})
	}
}

func TestTaskService_UpdateStatus_InvalidStatus(t *testing.T) {
	svc := NewTaskService(newMemTaskRepo(pendingTask("task-1")), &recordingAuditor{}, &mockLogger{})

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusRequest{
		TaskID:   "task-1",
		TenantID: "tenant-a",
		Status:   "DONE",
	})
	var ve *apperror.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("error = %v, want ValidationError", err)
	}
}

func TestTaskService_UpdateStatus_PersistenceFailure(t *testing.T) {
	repo := newMemTaskRepo(pendingTask("task-1"))
	repo.updateErr = errors.New("locked")
	svc := NewTaskService(repo, &recordingAuditor{}, &mockLogger{})

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusRequest{
		TaskID:   "task-1",
		TenantID: "tenant-a",
		Status:   entity.TaskStatusInProgress,
	})
	var pe *apperror.PersistenceError
	if !errors.As(err, &pe) {
		t.Errorf("error = %v, want PersistenceError", err)
	}
}

func TestTaskService_Create(t *testing.T) {
	repo := newMemTaskRepo()
	auditor := &recordingAuditor{}
	svc := NewTaskService(repo, auditor, &mockLogger{})

	task, err := svc.Create(context.Background(), CreateTaskRequest{
		TenantID:     "tenant-a",
		CaseID:       "case-1",
		Type:         entity.TaskTypeWorkflowDecision,
		Title:        "Review AI decision",
		AssignedRole: "REVIEWER",
		Metadata: map[string]any{
			entity.MetadataKeyProposal: map[string]any{"suggestedNextState": "APPROVED"},
		},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if task.ID == "" {
		t.Error("ID not assigned")
	}
	if task.Status != entity.TaskStatusPending {
		t.Errorf("Status = %v, want PENDING", task.Status)
	}
	if task.Priority != entity.TaskPriorityMedium {
		t.Errorf("Priority = %v, want MEDIUM default", task.Priority)
	}

	actions := auditor.actions()
	if len(actions) != 1 || actions[0] != entity.AuditActionTaskCreated {
		t.Errorf("audit actions = %v, want [TASK_CREATED]", actions)
	}
}

func TestTaskService_Create_Validation(t *testing.T) {
	svc := NewTaskService(newMemTaskRepo(), &recordingAuditor{}, &mockLogger{})

	tests := []struct {
		name string
		req  CreateTaskRequest
	}{
		{"missing case id", CreateTaskRequest{TenantID: "tenant-a", Type: entity.TaskTypeDocumentReview}},
		{"missing type", CreateTaskRequest{TenantID: "tenant-a", CaseID: "case-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			var ve *apperror.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("error = %v, want ValidationError", err)
			}
		})
	}
}

func TestTaskService_List_Filters(t *testing.T) {
	t1 := pendingTask("task-1")
	t2 := pendingTask("task-2")
	t2.Status = entity.TaskStatusInProgress
	t3 := pendingTask("task-3")
	t3.CaseID = "case-2"
	other := pendingTask("task-4")
	other.TenantID = "tenant-b"

	svc := NewTaskService(newMemTaskRepo(t1, t2, t3, other), &recordingAuditor{}, &mockLogger{})

	tasks, err := svc.List(context.Background(), "tenant-a", port.TaskFilter{Status: entity.TaskStatusPending})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("len(tasks) = %d, want 2", len(tasks))
	}

	tasks, err = svc.List(context.Background(), "tenant-a", port.TaskFilter{CaseID: "case-2"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "task-3" {
		t.Errorf("tasks = %v, want [task-3]", tasks)
	}
}
