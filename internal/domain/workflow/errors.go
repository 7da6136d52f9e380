package workflow

import "errors"

var (
	// ErrUnknownState is returned when a template references a state
	// outside its declared state set
	ErrUnknownState = errors.New("unknown state")

	// ErrNoInitialState is returned when a template declares no initial state
	ErrNoInitialState = errors.New("template has no initial state")

	// ErrDuplicateEdge is returned when a template declares the same
	// (from, to) edge twice
	ErrDuplicateEdge = errors.New("duplicate transition edge")
)
