package roadmap

// SkillState represents a skill's position in the roadmap lifecycle.
// Skills strictly pipeline: at most one skill sits in a non-terminal
// state at a time, and a skill only leaves locked once its predecessor
// reaches passed.
type SkillState string

const (
	StateLocked         SkillState = "locked"
	StateContentPending SkillState = "content_pending"
	StateActive         SkillState = "active"
	StateTested         SkillState = "tested"
	StateFailed         SkillState = "failed"
	StateRemediation    SkillState = "remediation"
	StateRetesting      SkillState = "retesting"
	StatePassed         SkillState = "passed"
)

// Terminal reports whether the state is final for a skill.
func (s SkillState) Terminal() bool { return s == StatePassed }

// InProgress reports whether the skill occupies the pipeline slot
// (anything between locked and passed).
func (s SkillState) InProgress() bool {
	return s != StateLocked && s != StatePassed
}

// acceptsCompletion reports whether a task completion event is admissible.
func (s SkillState) acceptsCompletion() bool {
	switch s {
	case StateActive, StateRemediation, StateRetesting:
		return true
	}
	return false
}

// acceptsTestResult reports whether a test outcome is admissible.
func (s SkillState) acceptsTestResult() bool {
	return s == StateTested || s == StateRetesting
}

// StateTransition records a single state-machine hop for event logging
// and display.
type StateTransition struct {
	Skill   string
	From    SkillState
	To      SkillState
	Trigger string // "content-selected", "study-complete", "test-passed", "test-failed", "remediation-start", "revision-complete", "predecessor-passed"
}
