package roadmap

import "fmt"

// ContractViolationError marks an event addressed to a skill or task in
// an ineligible state. This is an integration bug in the caller and is
// rejected outright; the aggregate is left unchanged.
type ContractViolationError struct {
	Op     string
	Skill  string
	State  SkillState
	Reason string
}

func (e *ContractViolationError) Error() string {
	if e.Skill != "" {
		return fmt.Sprintf("%s: skill %q in state %q: %s", e.Op, e.Skill, e.State, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// CollaboratorError wraps a failure from an external collaborator
// (content discovery, test generation). The engine never partially
// applies an update when one occurs.
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s collaborator failed: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }
