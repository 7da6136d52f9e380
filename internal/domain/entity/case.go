package entity

import (
	"time"

	"github.com/ajabadia/caseflow/internal/domain/workflow"
)

// Case is the long-lived unit of work whose lifecycle is tracked through
// a workflow template's state graph. Cases are never hard-deleted; terminal
// states are final nodes in the graph, not deletions.
//
// CurrentState is mutated exclusively by the transition engine through a
// conditional write keyed on Version. All other components treat a Case
// as read-only.
type Case struct {
	ID                 string         `json:"id"`
	TenantID           string         `json:"tenant_id"`
	WorkflowTemplateID string         `json:"workflow_template_id"`
	CurrentState       workflow.State `json:"current_state"`

	// StateHistory is append-only: one entry per successful transition
	// plus the initial state, in chronological order.
	StateHistory []StateChange `json:"state_history"`

	// Version increments on every successful transition and backs the
	// optimistic concurrency check.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StateChange records one entry of a case's state history.
type StateChange struct {
	State         workflow.State `json:"state"`
	EnteredAt     time.Time      `json:"entered_at"`
	ActorID       string         `json:"actor_id"`
	CorrelationID string         `json:"correlation_id"`
}
