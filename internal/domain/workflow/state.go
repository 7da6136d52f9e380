package workflow

// State represents a workflow state in a case lifecycle.
// Unlike task statuses, the set of valid states is defined per workflow
// template, so validity checks live on TransitionTable rather than here.
type State string

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Role represents an actor role that may be required to execute a transition.
type Role string

// Well-known roles. Templates may reference roles outside this list;
// the transition table treats roles as opaque strings.
const (
	RoleAdmin      Role = "ADMIN"
	RoleTechnical  Role = "TECHNICAL"
	RoleCompliance Role = "COMPLIANCE"
	RoleReviewer   Role = "REVIEWER"
	RoleSecurity   Role = "SECURITY"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}
