package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ajabadia/caseflow/internal/apperror"
	"github.com/ajabadia/caseflow/internal/application/port"
	"github.com/ajabadia/caseflow/internal/application/service"
	"github.com/ajabadia/caseflow/internal/domain/entity"
	"github.com/ajabadia/caseflow/internal/domain/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	workflowService service.WorkflowService
	taskService     service.TaskService
	engine          service.TransitionEngine
	logger          Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	workflowService service.WorkflowService,
	taskService service.TaskService,
	engine service.TransitionEngine,
	logger Logger,
) *Handlers {
	return &Handlers{
		workflowService: workflowService,
		taskService:     taskService,
		engine:          engine,
		logger:          logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// UpdateTaskRequest represents the body of PATCH /api/workflow-tasks/:id
type UpdateTaskRequest struct {
	Status           string         `json:"status" binding:"required"`
	Notes            string         `json:"notes"`
	Decision         string         `json:"decision"`
	ChosenNextState  string         `json:"chosenNextState"`
	Metadata         map[string]any `json:"metadata"`
	FeedbackCategory string         `json:"feedbackCategory"`
	RejectionReason  string         `json:"rejectionReason"`
}

// UpdateTaskResponse represents the result of a task update
type UpdateTaskResponse struct {
	Task               *entity.WorkflowTask `json:"task"`
	TransitionExecuted bool                 `json:"transition_executed"`
	NewCaseState       string               `json:"new_case_state,omitempty"`
}

// CreateTaskRequest represents the body of POST /api/workflow-tasks
type CreateTaskRequest struct {
	CaseID       string         `json:"caseId" binding:"required"`
	Type         string         `json:"type" binding:"required"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	AssignedRole string         `json:"assignedRole"`
	AssigneeID   string         `json:"assigneeId"`
	Priority     string         `json:"priority"`
	Metadata     map[string]any `json:"metadata"`
}

// CreateCaseRequest represents the body of POST /api/cases
type CreateCaseRequest struct {
	WorkflowTemplateID string `json:"workflowTemplateId" binding:"required"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// UpdateTask handles PATCH /api/workflow-tasks/:id
func (h *Handlers) UpdateTask(c *gin.Context) {
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid task update body", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	if !validDecision(req.Decision) {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "decision must be ACCEPT or OVERRIDE",
		})
		return
	}

	result, err := h.workflowService.CompleteTaskStatusUpdate(c.Request.Context(), service.TaskDecisionRequest{
		TaskID:           c.Param("id"),
		Actor:            actorFrom(c),
		Status:           req.Status,
		Notes:            req.Notes,
		Decision:         req.Decision,
		ChosenNextState:  workflow.State(req.ChosenNextState),
		Metadata:         req.Metadata,
		FeedbackCategory: req.FeedbackCategory,
		RejectionReason:  req.RejectionReason,
		CorrelationID:    correlationIDFrom(c),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: UpdateTaskResponse{
			Task:               result.Task,
			TransitionExecuted: result.TransitionExecuted,
			NewCaseState:       result.NewCaseState.String(),
		},
	})
}

// CreateTask handles POST /api/workflow-tasks
func (h *Handlers) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid task create body", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	actor := actorFrom(c)
	task, err := h.taskService.Create(c.Request.Context(), service.CreateTaskRequest{
		TenantID:      actor.TenantID,
		CaseID:        req.CaseID,
		Type:          req.Type,
		Title:         req.Title,
		Description:   req.Description,
		AssignedRole:  req.AssignedRole,
		AssigneeID:    req.AssigneeID,
		Priority:      req.Priority,
		Metadata:      req.Metadata,
		ActorID:       actor.ID,
		CorrelationID: correlationIDFrom(c),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    task,
	})
}

// GetTask handles GET /api/workflow-tasks/:id
func (h *Handlers) GetTask(c *gin.Context) {
	actor := actorFrom(c)
	task, err := h.taskService.GetByID(c.Request.Context(), c.Param("id"), actor.TenantID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    task,
	})
}

// ListTasks handles GET /api/workflow-tasks
func (h *Handlers) ListTasks(c *gin.Context) {
	actor := actorFrom(c)
	tasks, err := h.taskService.List(c.Request.Context(), actor.TenantID, port.TaskFilter{
		Status:       c.Query("status"),
		AssignedRole: c.Query("assignedRole"),
		AssigneeID:   c.Query("assigneeId"),
		CaseID:       c.Query("caseId"),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	if tasks == nil {
		tasks = []*entity.WorkflowTask{}
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    tasks,
	})
}

// CreateCase handles POST /api/cases
func (h *Handlers) CreateCase(c *gin.Context) {
	var req CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid case create body", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	actor := actorFrom(c)
	created, err := h.engine.CreateCase(c.Request.Context(), service.CreateCaseRequest{
		TenantID:           actor.TenantID,
		WorkflowTemplateID: req.WorkflowTemplateID,
		ActorID:            actor.ID,
		CorrelationID:      correlationIDFrom(c),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    created,
	})
}

// GetCase handles GET /api/cases/:id
func (h *Handlers) GetCase(c *gin.Context) {
	actor := actorFrom(c)
	found, err := h.engine.GetCase(c.Request.Context(), c.Param("id"), actor.TenantID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    found,
	})
}

// writeError maps application errors to HTTP statuses. Expected failures
// carry their own type; anything unrecognized is treated as internal.
func (h *Handlers) writeError(c *gin.Context, err error) {
	var (
		validationErr   *apperror.ValidationError
		notFoundErr     *apperror.NotFoundError
		invalidStateErr *apperror.InvalidStateError
		transitionErr   *apperror.TransitionError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: validationErr.Msg})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: notFoundErr.Error()})
	case errors.As(err, &invalidStateErr):
		c.JSON(http.StatusConflict, Response{Success: false, Error: invalidStateErr.Msg})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, Response{Success: false, Error: transitionErr.Kind})
	default:
		h.logger.Error("Request failed", "error", err, "correlation_id", correlationIDFrom(c))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}

// validDecision admits the two explicit arbitration verbs. REJECT is
// only ever derived internally from a REJECTED status, never submitted.
func validDecision(decision string) bool {
	switch decision {
	case "", entity.DecisionAccept, entity.DecisionOverride:
		return true
	}
	return false
}
