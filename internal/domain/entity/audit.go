package entity

import "time"

// AuditEntry is one row of the append-only audit ledger. Every component
// writes an entry on every state-changing operation; no business component
// owns the ledger. Entries for one logical operation share a correlation id.
type AuditEntry struct {
	ID            string         `json:"id"`
	CorrelationID string         `json:"correlation_id"`
	ActorID       string         `json:"actor_id"`
	TenantID      string         `json:"tenant_id"`
	Action        string         `json:"action"`
	CaseID        string         `json:"case_id,omitempty"`
	TaskID        string         `json:"task_id,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Audit action constants
const (
	AuditActionTaskCreated      = "TASK_CREATED"
	AuditActionTaskStatusUpdate = "TASK_STATUS_UPDATE"
	AuditActionHITLDecisionMade = "HITL_DECISION_MADE"
	AuditActionStateTransition  = "STATE_TRANSITION"
	AuditActionTransitionFailed = "TRANSITION_FAILED"
	AuditActionCaseCreated      = "CASE_CREATED"
	AuditActionFeedbackRecorded = "FEEDBACK_RECORDED"
)
