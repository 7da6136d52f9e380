package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ajabadia/caseflow/internal/apperror"
	"github.com/ajabadia/caseflow/internal/application/port"
	"github.com/ajabadia/caseflow/internal/domain/entity"
	"github.com/ajabadia/caseflow/internal/domain/workflow"
)

// Transition failure kinds. These are expected, frequently-exercised
// outcomes returned as values, not errors: only unexpected faults
// (persistence outages) travel the error path.
const (
	TransitionErrorIllegal   = "ILLEGAL_TRANSITION"
	TransitionErrorForbidden = "FORBIDDEN_TRANSITION"
	TransitionErrorStale     = "STALE_STATE_CONFLICT"
)

// TransitionRequest carries the parameters for a case-state transition.
type TransitionRequest struct {
	CaseID        string
	TargetState   workflow.State
	TenantID      string
	ActorID       string
	ActorRoles    []workflow.Role
	CorrelationID string
}

// TransitionResult is the outcome of a transition attempt. ErrorKind is
// one of the Transition* constants when Success is false.
type TransitionResult struct {
	Success   bool
	NewState  workflow.State
	ErrorKind string
}

// CreateCaseRequest carries the parameters for starting a new workflow
// instance.
type CreateCaseRequest struct {
	TenantID           string
	WorkflowTemplateID string
	ActorID            string
	CorrelationID      string
}

// TransitionEngine validates and atomically applies case-state changes
// against the workflow template's transition table and the caller's roles.
// It is the only component permitted to mutate Case.CurrentState.
type TransitionEngine interface {
	// ExecuteTransition attempts to move a case to targetState. Expected
	// failures (illegal edge, missing role, version conflict) come back in
	// the result; the error return is reserved for not-found and
	// persistence faults.
	ExecuteTransition(ctx context.Context, req TransitionRequest) (*TransitionResult, error)

	// CreateCase starts a new case in the template's initial state
	CreateCase(ctx context.Context, req CreateCaseRequest) (*entity.Case, error)

	// GetCase retrieves a case scoped to a tenant
	GetCase(ctx context.Context, caseID, tenantID string) (*entity.Case, error)
}

type transitionEngineImpl struct {
	caseRepo     port.CaseRepository
	templateRepo port.TemplateRepository
	auditor      AuditRecorder
	logger       Logger

	// Compiled transition tables are immutable, so they are cached per
	// (tenant, template) and shared across concurrent requests.
	mu     sync.RWMutex
	tables map[string]*workflow.TransitionTable
}

// NewTransitionEngine creates a new TransitionEngine
func NewTransitionEngine(
	caseRepo port.CaseRepository,
	templateRepo port.TemplateRepository,
	auditor AuditRecorder,
	logger Logger,
) TransitionEngine {
	return &transitionEngineImpl{
		caseRepo:     caseRepo,
		templateRepo: templateRepo,
		auditor:      auditor,
		logger:       logger,
		tables:       make(map[string]*workflow.TransitionTable),
	}
}

// table returns the compiled transition table for a template, loading and
// compiling it on first use.
func (s *transitionEngineImpl) table(ctx context.Context, templateID, tenantID string) (*workflow.TransitionTable, error) {
	key := tenantID + "/" + templateID

	s.mu.RLock()
	table, ok := s.tables[key]
	s.mu.RUnlock()
	if ok {
		return table, nil
	}

	def, err := s.templateRepo.GetDefinition(ctx, templateID, tenantID)
	if err != nil {
		return nil, apperror.NewPersistence("load workflow template", err)
	}
	if def == nil {
		return nil, apperror.NewNotFound("workflow template", templateID)
	}

	table, err = workflow.NewTransitionTable(*def)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.tables[key] = table
	s.mu.Unlock()

	return table, nil
}

// ExecuteTransition applies one state change.
//
// The optimistic-concurrency check is a conditional write keyed on the
// case version. On a version conflict the caller must retry with fresh
// state; the engine never retries on its own, so double-submission bugs
// stay visible.
func (s *transitionEngineImpl) ExecuteTransition(ctx context.Context, req TransitionRequest) (*TransitionResult, error) {
	c, err := s.caseRepo.GetByID(ctx, req.CaseID, req.TenantID)
	if err != nil {
		s.logger.Error("Failed to load case",
			"error", err,
			"case_id", req.CaseID,
			"correlation_id", req.CorrelationID)
		return nil, apperror.NewPersistence("load case", err)
	}
	if c == nil {
		return nil, apperror.NewNotFound("case", req.CaseID)
	}

	table, err := s.table(ctx, c.WorkflowTemplateID, req.TenantID)
	if err != nil {
		return nil, err
	}

	edge, ok := table.Edge(c.CurrentState, req.TargetState)
	if !ok {
		s.recordTransitionFailure(ctx, req, c, TransitionErrorIllegal)
		return &TransitionResult{ErrorKind: TransitionErrorIllegal}, nil
	}

	if !edge.Allows(req.ActorRoles) {
		s.recordTransitionFailure(ctx, req, c, TransitionErrorForbidden)
		return &TransitionResult{ErrorKind: TransitionErrorForbidden}, nil
	}

	expectedVersion := c.Version
	now := time.Now().UTC()
	c.CurrentState = req.TargetState
	c.StateHistory = append(c.StateHistory, entity.StateChange{
		State:         req.TargetState,
		EnteredAt:     now,
		ActorID:       req.ActorID,
		CorrelationID: req.CorrelationID,
	})
	c.Version = expectedVersion + 1
	c.UpdatedAt = now

	swapped, err := s.caseRepo.UpdateState(ctx, c, expectedVersion)
	if err != nil {
		s.logger.Error("Failed to persist case transition",
			"error", err,
			"case_id", c.ID,
			"correlation_id", req.CorrelationID)
		return nil, apperror.NewPersistence("update case state", err)
	}
	if !swapped {
		s.recordTransitionFailure(ctx, req, c, TransitionErrorStale)
		return &TransitionResult{ErrorKind: TransitionErrorStale}, nil
	}

	s.auditor.Record(ctx, &entity.AuditEntry{
		CorrelationID: req.CorrelationID,
		ActorID:       req.ActorID,
		TenantID:      req.TenantID,
		Action:        entity.AuditActionStateTransition,
		CaseID:        c.ID,
		Details: map[string]any{
			"from":    c.StateHistory[len(c.StateHistory)-2].State,
			"to":      req.TargetState,
			"version": c.Version,
		},
	})

	s.logger.Info("Case transitioned",
		"case_id", c.ID,
		"to", req.TargetState,
		"version", c.Version,
		"correlation_id", req.CorrelationID)

	return &TransitionResult{Success: true, NewState: req.TargetState}, nil
}

func (s *transitionEngineImpl) recordTransitionFailure(ctx context.Context, req TransitionRequest, c *entity.Case, kind string) {
	s.auditor.Record(ctx, &entity.AuditEntry{
		CorrelationID: req.CorrelationID,
		ActorID:       req.ActorID,
		TenantID:      req.TenantID,
		Action:        entity.AuditActionTransitionFailed,
		CaseID:        c.ID,
		Details: map[string]any{
			"target": req.TargetState,
			"kind":   kind,
		},
	})

	s.logger.Info("Case transition rejected",
		"case_id", c.ID,
		"target", req.TargetState,
		"kind", kind,
		"correlation_id", req.CorrelationID)
}

// CreateCase starts a new case in its template's initial state, with the
// state history seeded with a single entry.
func (s *transitionEngineImpl) CreateCase(ctx context.Context, req CreateCaseRequest) (*entity.Case, error) {
	table, err := s.table(ctx, req.WorkflowTemplateID, req.TenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := &entity.Case{
		ID:                 uuid.NewString(),
		TenantID:           req.TenantID,
		WorkflowTemplateID: req.WorkflowTemplateID,
		CurrentState:       table.InitialState(),
		StateHistory: []entity.StateChange{{
			State:         table.InitialState(),
			EnteredAt:     now,
			ActorID:       req.ActorID,
			CorrelationID: req.CorrelationID,
		}},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.caseRepo.Create(ctx, c); err != nil {
		s.logger.Error("Failed to create case",
			"error", err,
			"template_id", req.WorkflowTemplateID,
			"correlation_id", req.CorrelationID)
		return nil, apperror.NewPersistence("create case", err)
	}

	s.auditor.Record(ctx, &entity.AuditEntry{
		CorrelationID: req.CorrelationID,
		ActorID:       req.ActorID,
		TenantID:      req.TenantID,
		Action:        entity.AuditActionCaseCreated,
		CaseID:        c.ID,
		Details:       map[string]any{"template_id": req.WorkflowTemplateID, "initial_state": c.CurrentState},
	})

	s.logger.Info("Case created",
		"case_id", c.ID,
		"template_id", req.WorkflowTemplateID,
		"initial_state", c.CurrentState,
		"correlation_id", req.CorrelationID)

	return c, nil
}

// GetCase retrieves a case scoped to a tenant.
func (s *transitionEngineImpl) GetCase(ctx context.Context, caseID, tenantID string) (*entity.Case, error) {
	c, err := s.caseRepo.GetByID(ctx, caseID, tenantID)
	if err != nil {
		s.logger.Error("Failed to get case", "error", err, "case_id", caseID)
		return nil, apperror.NewPersistence("get case", err)
	}
	if c == nil {
		return nil, apperror.NewNotFound("case", caseID)
	}
	return c, nil
}
