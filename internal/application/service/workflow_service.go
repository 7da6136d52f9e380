package service

import (
	"context"

	"github.com/ajabadia/caseflow/internal/apperror"
	"github.com/ajabadia/caseflow/internal/domain/entity"
	"github.com/ajabadia/caseflow/internal/domain/hitl"
	"github.com/ajabadia/caseflow/internal/domain/workflow"
)

// Actor is the authenticated identity on whose behalf an operation runs.
type Actor struct {
	ID       string
	Name     string
	TenantID string
	Roles    []workflow.Role
}

// TaskDecisionRequest carries a task status update together with the
// optional HITL decision parameters.
type TaskDecisionRequest struct {
	TaskID           string
	Actor            Actor
	Status           string
	Notes            string
	Decision         string
	ChosenNextState  workflow.State
	Metadata         map[string]any
	FeedbackCategory string
	RejectionReason  string
	CorrelationID    string
}

// TaskDecisionResult is returned to the caller of a task status update.
type TaskDecisionResult struct {
	Task               *entity.WorkflowTask
	TransitionExecuted bool
	NewCaseState       workflow.State
}

// WorkflowService composes the task store, the feedback recorder, the HITL
// arbiter and the transition engine into the single operation behind
// PATCH /workflow-tasks/{id}.
type WorkflowService interface {
	CompleteTaskStatusUpdate(ctx context.Context, req TaskDecisionRequest) (*TaskDecisionResult, error)
}

type workflowServiceImpl struct {
	tasks    TaskService
	engine   TransitionEngine
	feedback FeedbackRecorder
	auditor  AuditRecorder
	logger   Logger
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(
	tasks TaskService,
	engine TransitionEngine,
	feedback FeedbackRecorder,
	auditor AuditRecorder,
	logger Logger,
) WorkflowService {
	return &workflowServiceImpl{
		tasks:    tasks,
		engine:   engine,
		feedback: feedback,
		auditor:  auditor,
		logger:   logger,
	}
}

// CompleteTaskStatusUpdate runs the orchestration sequence:
//
//  1. update the task status (pure data operation);
//  2. if the task is decision-bearing and reached COMPLETED or REJECTED,
//     record feedback — regardless of whether the transition below
//     succeeds, so the training signal captures rejected suggestions too;
//  3. if the task is a completed WORKFLOW_DECISION, arbitrate and execute
//     the case transition.
//
// Feedback failures are swallowed by the recorder; transition failures are
// surfaced to the caller as errors.
func (s *workflowServiceImpl) CompleteTaskStatusUpdate(ctx context.Context, req TaskDecisionRequest) (*TaskDecisionResult, error) {
	task, err := s.tasks.UpdateStatus(ctx, UpdateStatusRequest{
		TaskID:        req.TaskID,
		TenantID:      req.Actor.TenantID,
		ActorID:       req.Actor.ID,
		ActorName:     req.Actor.Name,
		Status:        req.Status,
		Notes:         req.Notes,
		Metadata:      req.Metadata,
		CorrelationID: req.CorrelationID,
	})
	if err != nil {
		return nil, err
	}

	s.maybeRecordFeedback(ctx, req, task)

	result := &TaskDecisionResult{Task: task}

	outcome, err := hitl.Arbitrate(hitl.Input{
		TaskType:        task.Type,
		Status:          task.Status,
		Decision:        req.Decision,
		ChosenNextState: req.ChosenNextState,
		Proposal:        proposalOf(task),
	})
	if err != nil {
		return nil, err
	}
	if !outcome.Applicable {
		return result, nil
	}

	s.auditor.Record(ctx, &entity.AuditEntry{
		CorrelationID: req.CorrelationID,
		ActorID:       req.Actor.ID,
		TenantID:      req.Actor.TenantID,
		Action:        entity.AuditActionHITLDecisionMade,
		CaseID:        task.CaseID,
		TaskID:        task.ID,
		Details: map[string]any{
			"decision":        req.Decision,
			"suggested_state": outcome.SuggestedState,
			"final_state":     outcome.FinalState,
		},
	})

	transition, err := s.engine.ExecuteTransition(ctx, TransitionRequest{
		CaseID:        task.CaseID,
		TargetState:   outcome.FinalState,
		TenantID:      req.Actor.TenantID,
		ActorID:       req.Actor.ID,
		ActorRoles:    req.Actor.Roles,
		CorrelationID: req.CorrelationID,
	})
	if err != nil {
		return nil, err
	}
	if !transition.Success {
		return nil, apperror.NewTransition(transition.ErrorKind)
	}

	result.TransitionExecuted = true
	result.NewCaseState = transition.NewState
	return result, nil
}

// maybeRecordFeedback captures the (suggestion, decision) pair when a
// decision-bearing task reaches COMPLETED or REJECTED and carries a
// proposal. Runs before arbitration so a forbidden or conflicting
// transition still leaves a feedback record behind.
func (s *workflowServiceImpl) maybeRecordFeedback(ctx context.Context, req TaskDecisionRequest, task *entity.WorkflowTask) {
	if task.Status != entity.TaskStatusCompleted && task.Status != entity.TaskStatusRejected {
		return
	}

	proposal := proposalOf(task)
	if proposal == nil {
		return
	}

	humanDecision := req.Decision
	if humanDecision == "" {
		if task.Status == entity.TaskStatusCompleted {
			humanDecision = entity.DecisionAccept
		} else {
			humanDecision = entity.DecisionReject
		}
	}
	if req.ChosenNextState != "" {
		humanDecision = req.ChosenNextState.String()
	}

	suggestion := proposal.SuggestedAction
	if suggestion == "" {
		suggestion = proposal.SuggestedNextState
	}

	rejectionReason := req.RejectionReason
	if rejectionReason == "" {
		rejectionReason = req.Notes
	}

	workflowID, _ := task.Metadata[entity.MetadataKeyWorkflowID].(string)
	nodeLabel, _ := task.Metadata[entity.MetadataKeyNodeLabel].(string)

	s.feedback.Record(ctx, &entity.FeedbackRecord{
		TenantID:        req.Actor.TenantID,
		TaskID:          task.ID,
		WorkflowID:      workflowID,
		NodeLabel:       nodeLabel,
		ModelSuggestion: suggestion,
		HumanDecision:   humanDecision,
		Category:        req.FeedbackCategory,
		RejectionReason: rejectionReason,
	}, req.CorrelationID)
}

func proposalOf(task *entity.WorkflowTask) *entity.LLMProposal {
	p, ok := task.Proposal()
	if !ok {
		return nil
	}
	return p
}
