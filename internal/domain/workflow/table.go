package workflow

import "fmt"

// TransitionEdge is a single legal state transition with its role gate.
// An edge with an empty AllowedRoles set is open to any authenticated actor.
type TransitionEdge struct {
	From         State  `json:"from"`
	To           State  `json:"to"`
	AllowedRoles []Role `json:"allowedRoles,omitempty"`
}

// Allows reports whether an actor holding the given roles may execute
// this edge. The check is a simple set intersection; this is the single
// source of truth for transition authorization.
func (e TransitionEdge) Allows(roles []Role) bool {
	if len(e.AllowedRoles) == 0 {
		return true
	}
	for _, allowed := range e.AllowedRoles {
		for _, r := range roles {
			if r == allowed {
				return true
			}
		}
	}
	return false
}

// TemplateDefinition is the wire form of a workflow template as authored
// by the external template service. It is decoded from the stored JSON
// definition and compiled into a TransitionTable.
type TemplateDefinition struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	InitialState State            `json:"initialState"`
	States       []State          `json:"states"`
	Edges        []TransitionEdge `json:"edges"`
}

type edgeKey struct {
	from State
	to   State
}

// TransitionTable is the compiled, immutable transition graph of one
// workflow template. It is read-only after construction and safe to share
// across concurrent requests without synchronization.
type TransitionTable struct {
	templateID   string
	initialState State
	states       map[State]bool
	edges        map[edgeKey]TransitionEdge
	outgoing     map[State]int
}

// NewTransitionTable validates a template definition and compiles it.
// Every edge must connect two declared states, and the initial state must
// be declared.
func NewTransitionTable(def TemplateDefinition) (*TransitionTable, error) {
	if def.InitialState == "" {
		return nil, fmt.Errorf("template %s: %w", def.ID, ErrNoInitialState)
	}

	states := make(map[State]bool, len(def.States))
	for _, s := range def.States {
		states[s] = true
	}
	if !states[def.InitialState] {
		return nil, fmt.Errorf("template %s: initial state %s: %w", def.ID, def.InitialState, ErrUnknownState)
	}

	edges := make(map[edgeKey]TransitionEdge, len(def.Edges))
	outgoing := make(map[State]int)
	for _, e := range def.Edges {
		if !states[e.From] {
			return nil, fmt.Errorf("template %s: edge from %s: %w", def.ID, e.From, ErrUnknownState)
		}
		if !states[e.To] {
			return nil, fmt.Errorf("template %s: edge to %s: %w", def.ID, e.To, ErrUnknownState)
		}
		key := edgeKey{from: e.From, to: e.To}
		if _, exists := edges[key]; exists {
			return nil, fmt.Errorf("template %s: %s -> %s: %w", def.ID, e.From, e.To, ErrDuplicateEdge)
		}
		// Copy the role slice so later mutation of the definition cannot
		// alter the compiled table.
		edge := TransitionEdge{
			From:         e.From,
			To:           e.To,
			AllowedRoles: append([]Role(nil), e.AllowedRoles...),
		}
		edges[key] = edge
		outgoing[e.From]++
	}

	return &TransitionTable{
		templateID:   def.ID,
		initialState: def.InitialState,
		states:       states,
		edges:        edges,
		outgoing:     outgoing,
	}, nil
}

// TemplateID returns the id of the template this table was compiled from.
func (t *TransitionTable) TemplateID() string {
	return t.templateID
}

// InitialState returns the state new cases start in.
func (t *TransitionTable) InitialState() State {
	return t.initialState
}

// IsState reports whether s is a declared state of this template.
func (t *TransitionTable) IsState(s State) bool {
	return t.states[s]
}

// IsTerminal reports whether s is a final node: a declared state with no
// outgoing edges. Cases in a terminal state reject further transitions.
func (t *TransitionTable) IsTerminal(s State) bool {
	return t.states[s] && t.outgoing[s] == 0
}

// Edge looks up the transition edge from -> to. The second return value
// is false when no such edge is declared.
func (t *TransitionTable) Edge(from, to State) (TransitionEdge, bool) {
	e, ok := t.edges[edgeKey{from: from, to: to}]
	return e, ok
}
