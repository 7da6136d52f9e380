package entity

import "time"

// WorkflowTask is an actionable unit of work attached to exactly one Case.
// Tasks have their own short lifecycle, independent of the case state graph:
// PENDING -> IN_PROGRESS -> {COMPLETED, REJECTED, CANCELLED}. Once a task
// reaches a terminal status, no further status writes are accepted.
//
// Decision-bearing tasks (TaskTypeWorkflowDecision) carry an AI proposal in
// Metadata under MetadataKeyProposal; a human accepts or overrides it when
// completing the task.
type WorkflowTask struct {
	ID       string `json:"id"`
	CaseID   string `json:"case_id"`
	TenantID string `json:"tenant_id"`

	Type   string `json:"type"`
	Status string `json:"status"`

	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	AssignedRole string `json:"assigned_role,omitempty"`
	AssigneeID   string `json:"assignee_id,omitempty"`
	Priority     string `json:"priority,omitempty"`

	// Metadata is an open extension map. Decision tasks carry the AI
	// proposal here; orchestrators may attach arbitrary keys.
	Metadata map[string]any `json:"metadata,omitempty"`

	Notes string `json:"notes,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CompletedBy string     `json:"completed_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Task type constants
const (
	TaskTypeDocumentReview      = "DOCUMENT_REVIEW"
	TaskTypeSecuritySignature   = "SECURITY_SIGNATURE"
	TaskTypeTechnicalValidation = "TECHNICAL_VALIDATION"
	TaskTypeComplianceCheck     = "COMPLIANCE_CHECK"
	TaskTypeWorkflowDecision    = "WORKFLOW_DECISION"
)

// Task status constants
const (
	TaskStatusPending    = "PENDING"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusCompleted  = "COMPLETED"
	TaskStatusRejected   = "REJECTED"
	TaskStatusCancelled  = "CANCELLED"
)

// Task priority constants
const (
	TaskPriorityLow      = "LOW"
	TaskPriorityMedium   = "MEDIUM"
	TaskPriorityHigh     = "HIGH"
	TaskPriorityCritical = "CRITICAL"
)

// HITL decision constants
const (
	DecisionAccept   = "ACCEPT"
	DecisionOverride = "OVERRIDE"
	DecisionReject   = "REJECT"
)

var validTaskStatuses = map[string]bool{
	TaskStatusPending:    true,
	TaskStatusInProgress: true,
	TaskStatusCompleted:  true,
	TaskStatusRejected:   true,
	TaskStatusCancelled:  true,
}

var terminalTaskStatuses = map[string]bool{
	TaskStatusCompleted: true,
	TaskStatusRejected:  true,
	TaskStatusCancelled: true,
}

// IsValidTaskStatus reports whether s is a known task status.
func IsValidTaskStatus(s string) bool {
	return validTaskStatuses[s]
}

// IsTerminalTaskStatus reports whether s is a terminal task status.
func IsTerminalTaskStatus(s string) bool {
	return terminalTaskStatuses[s]
}

// IsTerminal reports whether the task has reached a terminal status.
func (t *WorkflowTask) IsTerminal() bool {
	return terminalTaskStatuses[t.Status]
}

// Proposal returns the AI proposal attached to the task, if any.
func (t *WorkflowTask) Proposal() (*LLMProposal, bool) {
	if t.Metadata == nil {
		return nil, false
	}
	raw, ok := t.Metadata[MetadataKeyProposal].(map[string]any)
	if !ok {
		return nil, false
	}
	return ProposalFromMap(raw), true
}

// MergeMetadata shallow-merges patch into the task's metadata map.
// New keys win over existing ones; keys absent from patch are kept.
func (t *WorkflowTask) MergeMetadata(patch map[string]any) {
	if len(patch) == 0 {
		return
	}
	if t.Metadata == nil {
		t.Metadata = make(map[string]any, len(patch))
	}
	for k, v := range patch {
		t.Metadata[k] = v
	}
}
