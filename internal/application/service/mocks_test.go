package service

import (
	"context"
	"sync"

	"github.com/ajabadia/caseflow/internal/application/port"
	"github.com/ajabadia/caseflow/internal/domain/entity"
	"github.com/ajabadia/caseflow/internal/domain/workflow"
)

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

// memCaseRepo is an in-memory CaseRepository with real compare-and-swap
// semantics so concurrency behavior can be exercised.
type memCaseRepo struct {
	mu    sync.Mutex
	cases map[string]*entity.Case

	createErr error
	getErr    error
	updateErr error

	// loadBarrier, when set, blocks GetByID until all expected loaders
	// have arrived, forcing concurrent callers to read the same version.
	loadBarrier *sync.WaitGroup
}

func newMemCaseRepo(cases ...*entity.Case) *memCaseRepo {
	r := &memCaseRepo{cases: make(map[string]*entity.Case)}
	for _, c := range cases {
		r.cases[c.ID] = copyCase(c)
	}
	return r
}

func copyCase(c *entity.Case) *entity.Case {
	dup := *c
	dup.StateHistory = append([]entity.StateChange(nil), c.StateHistory...)
	return &dup
}

func (r *memCaseRepo) Create(ctx context.Context, c *entity.Case) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cases[c.ID] = copyCase(c)
	return nil
}

func (r *memCaseRepo) GetByID(ctx context.Context, id, tenantID string) (*entity.Case, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	c, ok := r.cases[id]
	var dup *entity.Case
	if ok && c.TenantID == tenantID {
		dup = copyCase(c)
	}
	r.mu.Unlock()

	if r.loadBarrier != nil {
		r.loadBarrier.Done()
		r.loadBarrier.Wait()
	}
	if dup == nil {
		return nil, nil
	}
	return dup, nil
}

func (r *memCaseRepo) UpdateState(ctx context.Context, c *entity.Case, expectedVersion int64) (bool, error) {
	if r.updateErr != nil {
		return false, r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.cases[c.ID]
	if !ok || cur.TenantID != c.TenantID || cur.Version != expectedVersion {
		return false, nil
	}
	r.cases[c.ID] = copyCase(c)
	return true, nil
}

func (r *memCaseRepo) stored(id string) *entity.Case {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyCase(r.cases[id])
}

// memTaskRepo is an in-memory WorkflowTaskRepository.
type memTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*entity.WorkflowTask

	createErr error
	getErr    error
	updateErr error
	listErr   error
}

func newMemTaskRepo(tasks ...*entity.WorkflowTask) *memTaskRepo {
	r := &memTaskRepo{tasks: make(map[string]*entity.WorkflowTask)}
	for _, task := range tasks {
		r.tasks[task.ID] = copyTask(task)
	}
	return r
}

func copyTask(t *entity.WorkflowTask) *entity.WorkflowTask {
	dup := *t
	if t.Metadata != nil {
		dup.Metadata = make(map[string]any, len(t.Metadata))
		for k, v := range t.Metadata {
			dup.Metadata[k] = v
		}
	}
	return &dup
}

func (r *memTaskRepo) Create(ctx context.Context, task *entity.WorkflowTask) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = copyTask(task)
	return nil
}

func (r *memTaskRepo) GetByID(ctx context.Context, id, tenantID string) (*entity.WorkflowTask, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok || task.TenantID != tenantID {
		return nil, nil
	}
	return copyTask(task), nil
}

func (r *memTaskRepo) Update(ctx context.Context, task *entity.WorkflowTask) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = copyTask(task)
	return nil
}

func (r *memTaskRepo) List(ctx context.Context, tenantID string, filter port.TaskFilter) ([]*entity.WorkflowTask, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.WorkflowTask
	for _, task := range r.tasks {
		if task.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.CaseID != "" && task.CaseID != filter.CaseID {
			continue
		}
		if filter.AssignedRole != "" && task.AssignedRole != filter.AssignedRole {
			continue
		}
		if filter.AssigneeID != "" && task.AssigneeID != filter.AssigneeID {
			continue
		}
		out = append(out, copyTask(task))
	}
	return out, nil
}

// mockTemplateRepo serves a fixed definition.
type mockTemplateRepo struct {
	def    *workflow.TemplateDefinition
	getErr error
	calls  int
}

func (r *mockTemplateRepo) GetDefinition(ctx context.Context, templateID, tenantID string) (*workflow.TemplateDefinition, error) {
	r.calls++
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.def == nil || r.def.ID != templateID {
		return nil, nil
	}
	return r.def, nil
}

// recordingAuditor collects audit entries.
type recordingAuditor struct {
	mu      sync.Mutex
	entries []*entity.AuditEntry
}

func (a *recordingAuditor) Record(ctx context.Context, entry *entity.AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *recordingAuditor) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

// recordingFeedback collects feedback records.
type recordingFeedback struct {
	mu      sync.Mutex
	records []*entity.FeedbackRecord
}

func (f *recordingFeedback) Record(ctx context.Context, record *entity.FeedbackRecord, correlationID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record.CorrelationID = correlationID
	f.records = append(f.records, record)
}

// mockFeedbackRepo backs FeedbackRecorder tests.
type mockFeedbackRepo struct {
	createErr error
	created   []*entity.FeedbackRecord
}

func (r *mockFeedbackRepo) Create(ctx context.Context, record *entity.FeedbackRecord) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, record)
	return nil
}

// passthroughTx runs the function without a real transaction.
type passthroughTx struct {
	beginErr error
}

func (t *passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if t.beginErr != nil {
		return t.beginErr
	}
	return fn(ctx)
}

// mockAuditRepo backs AuditRecorder tests.
type mockAuditRepo struct {
	createErr error
	created   []*entity.AuditEntry
}

func (r *mockAuditRepo) Create(ctx context.Context, entry *entity.AuditEntry) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, entry)
	return nil
}

// testTemplate returns the template definition used across service tests.
func testTemplate() *workflow.TemplateDefinition {
	return &workflow.TemplateDefinition{
		ID:           "tpl-1",
		Name:         "Case Review",
		InitialState: "INTAKE",
		States:       []workflow.State{"INTAKE", "UNDER_REVIEW", "APPROVED", "REJECTED_BY_AI", "CLOSED"},
		Edges: []workflow.TransitionEdge{
			{From: "INTAKE", To: "UNDER_REVIEW", AllowedRoles: []workflow.Role{workflow.RoleReviewer}},
			{From: "UNDER_REVIEW", To: "APPROVED", AllowedRoles: []workflow.Role{workflow.RoleReviewer, workflow.RoleCompliance}},
			{From: "UNDER_REVIEW", To: "REJECTED_BY_AI", AllowedRoles: []workflow.Role{workflow.RoleCompliance}},
			{From: "APPROVED", To: "CLOSED"},
		},
	}
}
