package entity

import "time"

// FeedbackRecord captures one (AI suggestion, human decision) pair for
// offline model tuning. Records are write-once and append-only; nothing in
// the transition path ever reads them back. Duplicate records from retried
// requests are acceptable; deduplication is an offline concern.
type FeedbackRecord struct {
	ID              string    `json:"id"`
	TenantID        string    `json:"tenant_id"`
	TaskID          string    `json:"task_id"`
	WorkflowID      string    `json:"workflow_id,omitempty"`
	NodeLabel       string    `json:"node_label,omitempty"`
	ModelSuggestion string    `json:"model_suggestion"`
	HumanDecision   string    `json:"human_decision"`
	Category        string    `json:"category,omitempty"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	CorrelationID   string    `json:"correlation_id"`
	CreatedAt       time.Time `json:"created_at"`
}
