package workflow

import (
	"errors"
	"testing"
)

func testDefinition() TemplateDefinition {
	return TemplateDefinition{
		ID:           "tpl-elevator-v1",
		Name:         "Elevator Case Workflow",
		InitialState: "INTAKE",
		States:       []State{"INTAKE", "UNDER_REVIEW", "APPROVED", "REJECTED_BY_AI", "CLOSED"},
		Edges: []TransitionEdge{
			{From: "INTAKE", To: "UNDER_REVIEW", AllowedRoles: []Role{RoleReviewer, RoleAdmin}},
			{From: "UNDER_REVIEW", To: "APPROVED", AllowedRoles: []Role{RoleCompliance}},
			{From: "UNDER_REVIEW", To: "REJECTED_BY_AI", AllowedRoles: []Role{RoleReviewer}},
			{From: "APPROVED", To: "CLOSED"},
		},
	}
}

func TestNewTransitionTable(t *testing.T) {
	table, err := NewTransitionTable(testDefinition())
	if err != nil {
		t.Fatalf("NewTransitionTable() error = %v", err)
	}

	if table.InitialState() != "INTAKE" {
		t.Errorf("InitialState() = %v, want INTAKE", table.InitialState())
	}
	if table.TemplateID() != "tpl-elevator-v1" {
		t.Errorf("TemplateID() = %v, want tpl-elevator-v1", table.TemplateID())
	}
}

func TestNewTransitionTable_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TemplateDefinition)
		wantErr error
	}{
		{
			name:    "missing initial state",
			mutate:  func(d *TemplateDefinition) { d.InitialState = "" },
			wantErr: ErrNoInitialState,
		},
		{
			name:    "undeclared initial state",
			mutate:  func(d *TemplateDefinition) { d.InitialState = "NOWHERE" },
			wantErr: ErrUnknownState,
		},
		{
			name: "edge from undeclared state",
			mutate: func(d *TemplateDefinition) {
				d.Edges = append(d.Edges, TransitionEdge{From: "GHOST", To: "CLOSED"})
			},
			wantErr: ErrUnknownState,
		},
		{
			name: "edge to undeclared state",
			mutate: func(d *TemplateDefinition) {
				d.Edges = append(d.Edges, TransitionEdge{From: "INTAKE", To: "GHOST"})
			},
			wantErr: ErrUnknownState,
		},
		{
			name: "duplicate edge",
			mutate: func(d *TemplateDefinition) {
				d.Edges = append(d.Edges, TransitionEdge{From: "APPROVED", To: "CLOSED"})
			},
			wantErr: ErrDuplicateEdge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := testDefinition()
			tt.mutate(&def)
			if _, err := NewTransitionTable(def); !errors.Is(err, tt.wantErr) {
				t.Errorf("NewTransitionTable() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransitionTable_Edge(t *testing.T) {
	table, err := NewTransitionTable(testDefinition())
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := table.Edge("INTAKE", "UNDER_REVIEW"); !ok {
		t.Error("Edge(INTAKE, UNDER_REVIEW) not found, want declared edge")
	}

	// Every undeclared pair must be absent, including the reverse direction
	// of a declared edge and self-loops.
	absent := [][2]State{
		{"INTAKE", "APPROVED"},
		{"UNDER_REVIEW", "INTAKE"},
		{"INTAKE", "INTAKE"},
		{"CLOSED", "INTAKE"},
		{"GHOST", "CLOSED"},
	}
	for _, pair := range absent {
		if _, ok := table.Edge(pair[0], pair[1]); ok {
			t.Errorf("Edge(%s, %s) found, want absent", pair[0], pair[1])
		}
	}
}

func TestTransitionTable_IsTerminal(t *testing.T) {
	table, err := NewTransitionTable(testDefinition())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		state    State
		expected bool
	}{
		{"CLOSED", true},
		{"REJECTED_BY_AI", true},
		{"INTAKE", false},
		{"UNDER_REVIEW", false},
		{"APPROVED", false},
		{"GHOST", false}, // undeclared states are not terminal, just unknown
	}
	for _, tt := range tests {
		if got := table.IsTerminal(tt.state); got != tt.expected {
			t.Errorf("IsTerminal(%s) = %v, want %v", tt.state, got, tt.expected)
		}
	}
}

func TestTransitionEdge_Allows(t *testing.T) {
	tests := []struct {
		name     string
		edge     TransitionEdge
		roles    []Role
		expected bool
	}{
		{
			name:     "matching role",
			edge:     TransitionEdge{AllowedRoles: []Role{RoleCompliance}},
			roles:    []Role{RoleReviewer, RoleCompliance},
			expected: true,
		},
		{
			name:     "no intersection",
			edge:     TransitionEdge{AllowedRoles: []Role{RoleCompliance}},
			roles:    []Role{RoleReviewer},
			expected: false,
		},
		{
			name:     "empty actor roles",
			edge:     TransitionEdge{AllowedRoles: []Role{RoleCompliance}},
			roles:    nil,
			expected: false,
		},
		{
			name:     "unrestricted edge",
			edge:     TransitionEdge{},
			roles:    []Role{RoleReviewer},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.edge.Allows(tt.roles); got != tt.expected {
				t.Errorf("Allows() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNewTransitionTable_CopiesRoles(t *testing.T) {
	def := testDefinition()
	table, err := NewTransitionTable(def)
	if err != nil {
		t.Fatal(err)
	}

	// Mutating the definition after compilation must not affect the table.
	def.Edges[1].AllowedRoles[0] = RoleAdmin

	edge, ok := table.Edge("UNDER_REVIEW", "APPROVED")
	if !ok {
		t.Fatal("edge not found")
	}
	if edge.AllowedRoles[0] != RoleCompliance {
		t.Errorf("compiled edge role = %v, want COMPLIANCE", edge.AllowedRoles[0])
	}
}
