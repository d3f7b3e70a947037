package roadmap

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Aggregate is the persistent unit combining the goal, the ordered
// skills, their tasks, and the current allocation. All schedule
// mutations flow through the replanner; reads and writes happen
// atomically against the store.
type Aggregate struct {
	ID             string
	Goal           Goal
	Skills         []*Skill
	CapacityPerDay int // max tasks per calendar day
	TargetMinutes  int // study-task sizing target per day

	LastReplannedAt time.Time
}

// New creates an aggregate for the given goal: all skills start locked
// except the first, which immediately awaits content selection.
func New(goalText string, skillNames []string, start, deadline time.Time, capacityPerDay, targetMinutes int) *Aggregate {
	a := &Aggregate{
		ID:             uuid.NewString(),
		CapacityPerDay: capacityPerDay,
		TargetMinutes:  targetMinutes,
	}

	order := make([]string, 0, len(skillNames))
	seen := make(map[string]bool)
	for _, name := range skillNames {
		slug := Slugify(name)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		order = append(order, slug)

		state := StateLocked
		if len(a.Skills) == 0 {
			state = StateContentPending
		}
		a.Skills = append(a.Skills, &Skill{
			Slug:     slug,
			Name:     strings.TrimSpace(name),
			Position: len(a.Skills),
			State:    state,
		})
	}

	a.Goal = Goal{
		Text:       strings.TrimSpace(goalText),
		StartDate:  start,
		Deadline:   deadline,
		SkillOrder: order,
	}
	return a
}

// Slugify normalizes a skill name into a stable identifier.
func Slugify(name string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	return strings.Join(fields, "-")
}

// SkillBySlug returns the skill with the given slug, or nil.
func (a *Aggregate) SkillBySlug(slug string) *Skill {
	for _, s := range a.Skills {
		if s.Slug == slug {
			return s
		}
	}
	return nil
}

// CurrentSkill returns the skill whose tasks are eligible for
// scheduling today: the single in-progress skill, or nil when every
// skill has passed.
func (a *Aggregate) CurrentSkill() *Skill {
	for _, s := range a.Skills {
		if s.State.InProgress() {
			return s
		}
	}
	return nil
}

// TaskByID finds a task anywhere in the aggregate.
func (a *Aggregate) TaskByID(id string) (*Skill, *Task) {
	for _, s := range a.Skills {
		if t := s.TaskByID(id); t != nil {
			return s, t
		}
	}
	return nil, nil
}

// Done reports whether every skill has passed.
func (a *Aggregate) Done() bool {
	for _, s := range a.Skills {
		if s.State != StatePassed {
			return false
		}
	}
	return len(a.Skills) > 0
}

// SelectContent moves the current skill from content_pending to active
// and attaches the chosen playlist. Study tasks are generated and
// scheduled by the replanner afterwards.
func (a *Aggregate) SelectContent(slug string, ref ContentRef) (StateTransition, error) {
	s := a.SkillBySlug(slug)
	if s == nil {
		return StateTransition{}, &ContractViolationError{Op: "select content", Skill: slug, Reason: "unknown skill"}
	}
	if s.State != StateContentPending {
		return StateTransition{}, &ContractViolationError{
			Op: "select content", Skill: slug, State: s.State,
			Reason: "playlist selection requires content_pending",
		}
	}
	s.Content = &ref
	s.State = StateActive
	return StateTransition{Skill: slug, From: StateContentPending, To: StateActive, Trigger: "content-selected"}, nil
}

// RecordCompletion marks a task complete. The owning skill must be in a
// state that admits work; anything else is a caller bug.
func (a *Aggregate) RecordCompletion(taskID string, completedAt time.Time) ([]StateTransition, error) {
	s, t := a.TaskByID(taskID)
	if t == nil {
		return nil, &ContractViolationError{Op: "record completion", Reason: "unknown task " + taskID}
	}
	if !s.State.acceptsCompletion() {
		return nil, &ContractViolationError{
			Op: "record completion", Skill: s.Slug, State: s.State,
			Reason: "completion events require active, remediation, or retesting",
		}
	}
	if t.Completed {
		return nil, &ContractViolationError{
			Op: "record completion", Skill: s.Slug, State: s.State,
			Reason: "task " + taskID + " already completed",
		}
	}

	t.Completed = true
	at := completedAt
	t.CompletedAt = &at

	var transitions []StateTransition
	switch {
	case s.State == StateActive && s.studyComplete():
		s.State = StateTested
		transitions = append(transitions, StateTransition{Skill: s.Slug, From: StateActive, To: StateTested, Trigger: "study-complete"})
	case s.State == StateRemediation && s.revisionComplete():
		s.State = StateRetesting
		transitions = append(transitions, StateTransition{Skill: s.Slug, From: StateRemediation, To: StateRetesting, Trigger: "revision-complete"})
	}
	return transitions, nil
}

// ApplyTestResult advances or reverts the skill based on a test
// outcome. A pass is terminal for the skill and unlocks its successor;
// a fail records the reported weak topics and re-enters remediation.
func (a *Aggregate) ApplyTestResult(result TestResult) ([]StateTransition, error) {
	s := a.SkillBySlug(result.SkillSlug)
	if s == nil {
		return nil, &ContractViolationError{Op: "apply test result", Skill: result.SkillSlug, Reason: "unknown skill"}
	}
	if !s.State.acceptsTestResult() {
		return nil, &ContractViolationError{
			Op: "apply test result", Skill: s.Slug, State: s.State,
			Reason: "test results require tested or retesting",
		}
	}

	from := s.State
	if result.Passed {
		s.State = StatePassed
		transitions := []StateTransition{
			{Skill: s.Slug, From: from, To: StatePassed, Trigger: "test-passed"},
		}
		if next := a.nextLocked(s.Position); next != nil {
			next.State = StateContentPending
			transitions = append(transitions, StateTransition{
				Skill: next.Slug, From: StateLocked, To: StateContentPending, Trigger: "predecessor-passed",
			})
		}
		return transitions, nil
	}

	s.WeakTopics = append(s.WeakTopics, result.WeakTopics...)
	s.State = StateRemediation
	return []StateTransition{
		{Skill: s.Slug, From: from, To: StateFailed, Trigger: "test-failed"},
		{Skill: s.Slug, From: StateFailed, To: StateRemediation, Trigger: "remediation-start"},
	}, nil
}

func (a *Aggregate) nextLocked(afterPos int) *Skill {
	for _, s := range a.Skills {
		if s.Position > afterPos && s.State == StateLocked {
			return s
		}
	}
	return nil
}

// CheckInvariants verifies the pipelining invariant: at most one skill
// in progress, and no in-progress or passed skill after a locked one.
func (a *Aggregate) CheckInvariants() error {
	inProgress := 0
	locked := false
	for _, s := range a.Skills {
		if s.State.InProgress() {
			inProgress++
		}
		if s.State == StateLocked {
			locked = true
		} else if locked {
			return &ContractViolationError{
				Op: "invariant", Skill: s.Slug, State: s.State,
				Reason: "skill advanced past a locked predecessor",
			}
		}
	}
	if inProgress > 1 {
		return &ContractViolationError{Op: "invariant", Reason: "more than one skill in progress"}
	}
	return nil
}
