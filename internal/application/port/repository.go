package port

import (
	"context"

	"github.com/ajabadia/caseflow/internal/domain/entity"
	"github.com/ajabadia/caseflow/internal/domain/workflow"
)

// CaseRepository defines persistence operations for Case.
// All reads are tenant-scoped; a lookup with the wrong tenant behaves
// exactly like a lookup of a missing id.
type CaseRepository interface {
	// Create persists a new case
	Create(ctx context.Context, c *entity.Case) error

	// GetByID retrieves a case by (id, tenantID)
	GetByID(ctx context.Context, id, tenantID string) (*entity.Case, error)

	// UpdateState performs the conditional state write backing optimistic
	// concurrency: it persists c's CurrentState, StateHistory, Version and
	// UpdatedAt only where the stored version still equals expectedVersion.
	// Returns false (and no error) when the condition failed.
	UpdateState(ctx context.Context, c *entity.Case, expectedVersion int64) (bool, error)
}

// TaskFilter narrows a workflow-task listing.
type TaskFilter struct {
	Status       string
	AssignedRole string
	AssigneeID   string
	CaseID       string
}

// WorkflowTaskRepository defines persistence operations for WorkflowTask.
type WorkflowTaskRepository interface {
	// Create persists a new task
	Create(ctx context.Context, task *entity.WorkflowTask) error

	// GetByID retrieves a task by (id, tenantID)
	GetByID(ctx context.Context, id, tenantID string) (*entity.WorkflowTask, error)

	// Update persists the task's mutable fields (status, notes, metadata,
	// completion info, updatedAt)
	Update(ctx context.Context, task *entity.WorkflowTask) error

	// List retrieves tasks for a tenant ordered by priority then recency
	List(ctx context.Context, tenantID string, filter TaskFilter) ([]*entity.WorkflowTask, error)
}

// TemplateRepository loads workflow template definitions authored by the
// external template service. This core only consumes definitions, never
// writes them.
type TemplateRepository interface {
	// GetDefinition retrieves a template definition by (templateID, tenantID)
	GetDefinition(ctx context.Context, templateID, tenantID string) (*workflow.TemplateDefinition, error)
}

// FeedbackRepository defines persistence operations for FeedbackRecord.
// Records are write-once; there is deliberately no read path here.
type FeedbackRepository interface {
	Create(ctx context.Context, record *entity.FeedbackRecord) error
}

// AuditRepository defines persistence operations for the append-only
// audit ledger.
type AuditRepository interface {
	Create(ctx context.Context, entry *entity.AuditEntry) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
