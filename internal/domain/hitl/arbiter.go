// Package hitl implements the human-in-the-loop arbitration protocol:
// resolving a human decision (accept or override) against an AI proposal
// into the single target state a case should transition to.
package hitl

import (
	"github.com/ajabadia/caseflow/internal/apperror"
	"github.com/ajabadia/caseflow/internal/domain/entity"
	"github.com/ajabadia/caseflow/internal/domain/workflow"
)

// Input describes a completed task-status update as seen by the arbiter.
type Input struct {
	TaskType        string
	Status          string
	Decision        string
	ChosenNextState workflow.State
	Proposal        *entity.LLMProposal
}

// Outcome is the arbitration result. When Applicable is false the update
// carries no workflow decision and no transition should follow.
type Outcome struct {
	Applicable     bool
	FinalState     workflow.State
	SuggestedState workflow.State
}

// Arbitrate resolves a human decision plus an optional AI proposal into the
// final target state. It is pure and side-effect-free so every branch can
// be tested in isolation.
//
// Arbitration applies only to WORKFLOW_DECISION tasks being completed. For
// those, a decision is mandatory; an OVERRIDE additionally requires the
// chosen next state. ACCEPT takes the proposal's suggestion, which must
// therefore be present.
func Arbitrate(in Input) (Outcome, error) {
	if in.TaskType != entity.TaskTypeWorkflowDecision || in.Status != entity.TaskStatusCompleted {
		return Outcome{}, nil
	}

	if in.Decision == "" {
		return Outcome{}, apperror.NewValidation("decision is required for WORKFLOW_DECISION tasks")
	}

	if in.Decision == entity.DecisionOverride && in.ChosenNextState == "" {
		return Outcome{}, apperror.NewValidation("chosenNextState is required when overriding")
	}

	var suggested workflow.State
	if in.Proposal != nil {
		suggested = workflow.State(in.Proposal.SuggestedNextState)
	}

	final := in.ChosenNextState
	if in.Decision == entity.DecisionAccept {
		final = suggested
	}

	if final == "" {
		return Outcome{}, apperror.NewValidation("cannot determine next state")
	}

	return Outcome{
		Applicable:     true,
		FinalState:     final,
		SuggestedState: suggested,
	}, nil
}
